package sqlite

import (
	"database/sql/driver"

	"github.com/neomorfeo/catalogue/internal/domain"
)

var nounSchema = schema[domain.Noun]{
	class:   domain.ClassNoun,
	table:   "nouns",
	columns: []string{"name", "abbreviation", "description"},
	fields: func(r *domain.Noun) (*domain.Master, []any) {
		return &r.Master, []any{&r.Name, &r.Abbreviation, &r.Description}
	},
}

var modifierSchema = schema[domain.Modifier]{
	class:   domain.ClassModifier,
	table:   "modifiers",
	columns: []string{"name", "abbreviation", "description"},
	fields: func(r *domain.Modifier) (*domain.Master, []any) {
		return &r.Master, []any{&r.Name, &r.Abbreviation, &r.Description}
	},
}

var nounModifierSchema = schema[domain.NounModifier]{
	class:   domain.ClassNounModifier,
	table:   "noun_modifiers",
	columns: []string{"noun_id", "modifier_id", "name", "abbreviation", "description"},
	refs:    []ref{{"noun_id", domain.ClassNoun}, {"modifier_id", domain.ClassModifier}},
	fields: func(r *domain.NounModifier) (*domain.Master, []any) {
		return &r.Master, []any{&r.NounID, &r.ModifierID, &r.Name, &r.Abbreviation, &r.Description}
	},
}

var attributeSchema = schema[domain.Attribute]{
	class:   domain.ClassAttribute,
	table:   "attributes",
	columns: []string{"noun_modifier_id", "name", "abbreviation", "description"},
	parent:  "noun_modifier_id",
	refs:    []ref{{"noun_modifier_id", domain.ClassNounModifier}},
	fields: func(r *domain.Attribute) (*domain.Master, []any) {
		return &r.Master, []any{&r.NounModifierID, &r.Name, &r.Abbreviation, &r.Description}
	},
}

var attributeValueSchema = schema[domain.AttributeValue]{
	class:   domain.ClassAttributeValue,
	table:   "attribute_values",
	columns: []string{"noun_modifier_id", "value", "abbreviation", "description", "remarks"},
	parent:  "noun_modifier_id",
	refs:    []ref{{"noun_modifier_id", domain.ClassNounModifier}},
	fields: func(r *domain.AttributeValue) (*domain.Master, []any) {
		return &r.Master, []any{&r.NounModifierID, &r.Value, &r.Abbreviation, &r.Description, &r.Remarks}
	},
}

var manufacturerSchema = schema[domain.Manufacturer]{
	class:   domain.ClassManufacturer,
	table:   "manufacturers",
	columns: []string{"noun_modifier_id", "name", "description", "remarks"},
	parent:  "noun_modifier_id",
	refs:    []ref{{"noun_modifier_id", domain.ClassNounModifier}},
	fields: func(r *domain.Manufacturer) (*domain.Master, []any) {
		return &r.Master, []any{nullable{&r.NounModifierID}, &r.Name, &r.Description, &r.Remarks}
	},
}

// nullable stores an empty string as NULL and reads NULL back as empty,
// for optional foreign keys.
type nullable struct {
	s *string
}

func (n nullable) Value() (driver.Value, error) {
	if *n.s == "" {
		return nil, nil
	}
	return *n.s, nil
}

func (n nullable) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n.s = ""
	case string:
		*n.s = v
	case []byte:
		*n.s = string(v)
	}
	return nil
}
