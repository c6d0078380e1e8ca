package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

// Document is the authored catalog: every class and mapping the engine knows,
// plus the class restrictions of equippable items
type Document struct {
	Classes  []entities.CharacterClass     `yaml:"classes"`
	Mappings []entities.AdvancementMapping `yaml:"mappings"`
	Items    []ItemDefinition              `yaml:"items,omitempty"`
}

// ItemDefinition carries the class restrictions of one item
type ItemDefinition struct {
	ID           string                    `yaml:"id"`
	Name         string                    `yaml:"name,omitempty"`
	Restrictions entities.ItemRestrictions `yaml:"restrictions"`
}

// LoadDocument reads and validates a YAML catalog file
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator supplied catalog path
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog %s", path)
	}
	return ParseDocument(data)
}

// ParseDocument decodes and validates a YAML catalog
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse catalog")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the structural rules of the class hierarchy
func (d *Document) Validate() error {
	vb := errors.NewValidationBuilder()

	classes := make(map[string]*entities.CharacterClass, len(d.Classes))
	for i := range d.Classes {
		c := &d.Classes[i]
		field := fmt.Sprintf("classes[%d]", i)
		if c.ID == "" {
			vb.RequiredField(field + ".id")
			continue
		}
		if _, dup := classes[c.ID]; dup {
			vb.Field(field+".id", "duplicate class id "+c.ID)
		}
		classes[c.ID] = c
		if !c.Type.IsValid() {
			vb.Field(field+".type", fmt.Sprintf("unknown class type %q", c.Type))
		}
		if c.Tier < entities.MinTier || c.Tier > entities.MaxTier {
			vb.Field(field+".tier", fmt.Sprintf("must be between %d and %d", entities.MinTier, entities.MaxTier))
		}
	}

	for i := range d.Classes {
		c := &d.Classes[i]
		if c.PreviousClassID == "" {
			continue
		}
		prev, ok := classes[c.PreviousClassID]
		if !ok {
			vb.Field(fmt.Sprintf("classes[%d].previous_class_id", i), "unknown class "+c.PreviousClassID)
			continue
		}
		if prev.Tier+1 != c.Tier {
			vb.Field(fmt.Sprintf("classes[%d].previous_class_id", i), "previous class must be one tier lower")
		}
	}

	mappings := make(map[string]struct{}, len(d.Mappings))
	for i := range d.Mappings {
		m := &d.Mappings[i]
		field := fmt.Sprintf("mappings[%d]", i)
		if m.ID == "" {
			vb.RequiredField(field + ".id")
			continue
		}
		if _, dup := mappings[m.ID]; dup {
			vb.Field(field+".id", "duplicate mapping id "+m.ID)
		}
		mappings[m.ID] = struct{}{}
		if m.Weight < 0 {
			vb.Field(field+".weight", "must be non-negative")
		}
		from, fromOK := classes[m.FromClassID]
		to, toOK := classes[m.ToClassID]
		if !fromOK {
			vb.Field(field+".from_class_id", "unknown class "+m.FromClassID)
		}
		if !toOK {
			vb.Field(field+".to_class_id", "unknown class "+m.ToClassID)
		}
		if !fromOK || !toOK {
			continue
		}
		if to.Tier != from.Tier+1 {
			vb.Field(field, "mappings must advance exactly one tier")
		}
		if m.IsAwakening && from.Tier != 1 {
			vb.Field(field+".is_awakening", "awakening mappings must lead from tier 1 to tier 2")
		}
	}

	for i := range d.Items {
		it := &d.Items[i]
		field := fmt.Sprintf("items[%d]", i)
		if it.ID == "" {
			vb.RequiredField(field + ".id")
		}
		for _, t := range append(append([]entities.ClassType{}, it.Restrictions.AllowedClassTypes...), it.Restrictions.RestrictedClassTypes...) {
			if !t.IsValid() {
				vb.Field(field+".restrictions", fmt.Sprintf("unknown class type %q", t))
			}
		}
	}

	return vb.Build()
}
