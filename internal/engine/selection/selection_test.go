package selection_test

import (
	"testing"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-advancement/internal/engine/selection"
	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

// scriptedRoller returns queued results and records the sizes asked for
type scriptedRoller struct {
	results []int
	sizes   []int
}

func (r *scriptedRoller) Roll(size int) (int, error) {
	r.sizes = append(r.sizes, size)
	if len(r.results) == 0 {
		return 1, nil
	}
	next := r.results[0]
	r.results = r.results[1:]
	return next, nil
}

func (r *scriptedRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i], _ = r.Roll(size)
	}
	return out, nil
}

type failingRoller struct{}

func (failingRoller) Roll(int) (int, error)          { return 0, errors.Internal("dice jammed") }
func (failingRoller) RollN(int, int) ([]int, error) { return nil, errors.Internal("dice jammed") }

type SelectionTestSuite struct {
	suite.Suite
}

func TestSelectionSuite(t *testing.T) {
	suite.Run(t, new(SelectionTestSuite))
}

func (s *SelectionTestSuite) TestDrawWalksCumulativeWeights() {
	testCases := []struct {
		name    string
		weights []int32
		roll    int
		want    int
	}{
		{name: "first bucket low edge", weights: []int32{70, 30}, roll: 1, want: 0},
		{name: "first bucket high edge", weights: []int32{70, 30}, roll: 70, want: 0},
		{name: "second bucket", weights: []int32{70, 30}, roll: 71, want: 1},
		{name: "last value", weights: []int32{70, 30}, roll: 100, want: 1},
		{name: "zero weight never wins", weights: []int32{0, 5, 0, 5}, roll: 6, want: 3},
		{name: "zero weight skipped at start", weights: []int32{0, 5}, roll: 1, want: 1},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			roller := &scriptedRoller{results: []int{tc.roll}}
			got, err := selection.Draw(roller, tc.weights)
			s.Require().NoError(err)
			s.Equal(tc.want, got)
		})
	}
}

func (s *SelectionTestSuite) TestDrawRollsTotalWeight() {
	roller := &scriptedRoller{results: []int{1}}
	_, err := selection.Draw(roller, []int32{70, 30})
	s.Require().NoError(err)
	s.Equal([]int{100}, roller.sizes)
}

func (s *SelectionTestSuite) TestDrawZeroTotalFallsBackToUniform() {
	roller := &scriptedRoller{results: []int{2}}
	got, err := selection.Draw(roller, []int32{0, 0, 0})
	s.Require().NoError(err)
	s.Equal(1, got)
	s.Equal([]int{3}, roller.sizes, "uniform index draw over the candidates")
}

func (s *SelectionTestSuite) TestDrawErrors() {
	_, err := selection.Draw(&scriptedRoller{}, nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = selection.Draw(failingRoller{}, []int32{1, 2})
	s.Error(err)
}

func (s *SelectionTestSuite) TestUniformSingleCandidateSkipsRoll() {
	roller := &scriptedRoller{}
	got, err := selection.Uniform(roller, 1)
	s.Require().NoError(err)
	s.Zero(got)
	s.Empty(roller.sizes)
}

func (s *SelectionTestSuite) TestDrawDistribution() {
	const trials = 10000

	s.Run("70/30", func() {
		first := 0
		for i := 0; i < trials; i++ {
			idx, err := selection.Draw(dice.DefaultRoller, []int32{70, 30})
			s.Require().NoError(err)
			if idx == 0 {
				first++
			}
		}
		s.InDelta(0.70, float64(first)/trials, 0.03)
	})

	s.Run("0/0 falls back to 50/50", func() {
		first := 0
		for i := 0; i < trials; i++ {
			idx, err := selection.Draw(dice.DefaultRoller, []int32{0, 0})
			s.Require().NoError(err)
			if idx == 0 {
				first++
			}
		}
		s.InDelta(0.50, float64(first)/trials, 0.03)
	})
}

func (s *SelectionTestSuite) TestAwakeningCandidates() {
	mappings := []*entities.AdvancementMapping{
		{ID: "a10", LevelRequired: 10, IsAwakening: true},
		{ID: "a15", LevelRequired: 15, IsAwakening: true},
		{ID: "p10", LevelRequired: 10},
	}

	ids := func(ms []*entities.AdvancementMapping) []string {
		var out []string
		for _, m := range ms {
			out = append(out, m.ID)
		}
		return out
	}

	s.Equal([]string{"a10"}, ids(selection.AwakeningCandidates(mappings, 9, 10)))
	s.Equal([]string{"a10", "a15"}, ids(selection.AwakeningCandidates(mappings, 8, 20)))
	s.Empty(selection.AwakeningCandidates(mappings, 10, 11), "threshold already crossed")
	s.Empty(selection.AwakeningCandidates(mappings, 5, 9))
}

func (s *SelectionTestSuite) TestPromotionCandidates() {
	mappings := []*entities.AdvancementMapping{
		{ID: "regular", LevelRequired: 20},
		{ID: "too_high", LevelRequired: 40},
		{ID: "early_awakening", LevelRequired: 10, IsAwakening: true},
		{ID: "late_awakening", LevelRequired: 25, IsAwakening: true},
	}

	got := selection.PromotionCandidates(mappings, 30, selection.DefaultLateAwakeningLevel)
	s.Require().Len(got, 2)
	s.Equal("regular", got[0].ID)
	s.Equal("late_awakening", got[1].ID)
}

func (s *SelectionTestSuite) TestDecide() {
	auto := &entities.AdvancementMapping{ID: "auto"}
	choice := &entities.AdvancementMapping{ID: "choice", AllowPlayerChoice: true}

	s.Run("nothing passes", func() {
		d := selection.Decide([]selection.Candidate{
			{Mapping: auto, Passed: false},
			{Mapping: choice, Passed: false},
		})
		s.Equal(selection.ModeNone, d.Mode)
		s.Empty(d.Passing)
	})

	s.Run("choice wins when it passes", func() {
		d := selection.Decide([]selection.Candidate{
			{Mapping: auto, Passed: true},
			{Mapping: choice, Passed: true},
		})
		s.Equal(selection.ModePlayerChoice, d.Mode)
		s.Len(d.Passing, 2)
	})

	s.Run("failed choice candidate does not force a choice", func() {
		d := selection.Decide([]selection.Candidate{
			{Mapping: auto, Passed: true},
			{Mapping: choice, Passed: false},
		})
		s.Equal(selection.ModeAutomatic, d.Mode)
		s.Equal([]*entities.AdvancementMapping{auto}, selection.Mappings(d.Passing))
	})
}
