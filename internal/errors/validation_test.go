package errors_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

type ValidationTestSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) fields(err error) map[string][]string {
	fields, ok := errors.GetMeta(err)[errors.MetaValidationErrors].(map[string][]string)
	s.Require().True(ok)
	return fields
}

func (s *ValidationTestSuite) TestBuilderCollectsFields() {
	err := errors.NewValidationBuilder().
		RequiredField("Characters").
		Fieldf("Tier", "must be at least %d", 1).
		InvalidField("Type", "unknown requirement").
		Build()
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	fields := s.fields(err)
	s.Equal([]string{"is required"}, fields["Characters"])
	s.Equal([]string{"must be at least 1"}, fields["Tier"])
	s.Equal([]string{"is invalid: unknown requirement"}, fields["Type"])
}

func (s *ValidationTestSuite) TestBuildMessageIsSorted() {
	err := errors.NewValidationBuilder().
		Field("Zeta", "bad").
		Field("Alpha", "worse").
		Field("Alpha", "again").
		Build()

	s.Equal("INVALID_ARGUMENT: validation failed: Alpha: worse, again; Zeta: bad", err.Error())
}

func (s *ValidationTestSuite) TestBuilderNoErrors() {
	s.NoError(errors.NewValidationBuilder().Build())
}

func (s *ValidationTestSuite) TestValidateRequired() {
	testCases := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{"valid value", "char_1", false},
		{"empty string", "", true},
		{"whitespace only", "   ", true},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			vb := errors.NewValidationBuilder()
			errors.ValidateRequired("CharacterID", tc.value, vb)
			if tc.shouldErr {
				s.Error(vb.Build())
			} else {
				s.NoError(vb.Build())
			}
		})
	}
}

func (s *ValidationTestSuite) TestValidateRangeAndEnum() {
	vb := errors.NewValidationBuilder()
	errors.ValidateRange("GRPCPort", 70000, 1, 65535, vb)
	errors.ValidateRange("Workers", 4, 1, 64, vb)
	errors.ValidateEnum("Backend", "mongo", []string{"redis", "postgres"}, vb)

	fields := s.fields(vb.Build())
	s.Equal([]string{"must be between 1 and 65535, got 70000"}, fields["GRPCPort"])
	s.Equal([]string{`must be one of redis, postgres, got "mongo"`}, fields["Backend"])
	s.NotContains(fields, "Workers")
}
