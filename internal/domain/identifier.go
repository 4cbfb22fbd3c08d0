package domain

import (
	"math"
	"strconv"
	"strings"
)

// Separator joins an identifier's prefix and its numeric suffix.
const Separator = "_"

// Class is a category of master record with its own identifier sequence.
type Class struct {
	Name   string // stable key used in storage and URLs
	Prefix string
	Width  int    // zero-padding width of the numeric suffix, 0 for none
	Seed   uint64 // counter assigned to the first record of the class
}

var (
	ClassNoun           = Class{Name: "noun", Prefix: "N", Width: 0, Seed: 1}
	ClassModifier       = Class{Name: "modifier", Prefix: "M", Width: 4, Seed: 1}
	ClassNounModifier   = Class{Name: "noun_modifier", Prefix: "NM", Width: 4, Seed: 1}
	ClassAttribute      = Class{Name: "attribute", Prefix: "ATR", Width: 4, Seed: 1}
	ClassAttributeValue = Class{Name: "attribute_value", Prefix: "ATRV", Width: 4, Seed: 1}
	ClassManufacturer   = Class{Name: "manufacturer", Prefix: "MFR", Width: 4, Seed: 1}
)

// Classes returns every identifier class in a stable order.
func Classes() []Class {
	return []Class{
		ClassNoun,
		ClassModifier,
		ClassNounModifier,
		ClassAttribute,
		ClassAttributeValue,
		ClassManufacturer,
	}
}

// ClassByName looks up a class by its Name.
func ClassByName(name string) (Class, bool) {
	for _, c := range Classes() {
		if c.Name == name {
			return c, true
		}
	}
	return Class{}, false
}

func (c Class) String() string { return c.Name }

// SeedIdentifier is the identifier given to the first record of the class.
func (c Class) SeedIdentifier() Identifier {
	return Identifier{Class: c, Seq: c.Seed}
}

// Parse splits a stored identifier into its counter, validating the format
// and the prefix against the class.
func (c Class) Parse(value string) (Identifier, error) {
	parts := strings.Split(value, Separator)
	if len(parts) != 2 || parts[1] == "" {
		return Identifier{}, &MalformedIdentifierError{Class: c, Value: value}
	}

	// ParseUint also rejects signs and whitespace.
	seq, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return Identifier{}, &MalformedIdentifierError{Class: c, Value: value}
	}

	if parts[0] != c.Prefix {
		return Identifier{}, &PrefixMismatchError{Class: c, Value: value, Prefix: parts[0]}
	}

	return Identifier{Class: c, Seq: seq}, nil
}

// Next computes the identifier that follows the greatest of the stored
// values. Empty values are ignored; with nothing stored it returns the seed.
func (c Class) Next(stored ...string) (Identifier, error) {
	var (
		last  Identifier
		found bool
	)
	for _, v := range stored {
		if v == "" {
			continue
		}
		id, err := c.Parse(v)
		if err != nil {
			return Identifier{}, err
		}
		if !found || id.Seq > last.Seq {
			last, found = id, true
		}
	}

	if !found {
		return c.SeedIdentifier(), nil
	}
	if last.Seq == math.MaxUint64 {
		return Identifier{}, &MalformedIdentifierError{Class: c, Value: last.String()}
	}
	return Identifier{Class: c, Seq: last.Seq + 1}, nil
}

// Identifier is the typed form of a record identifier: a class and a counter.
type Identifier struct {
	Class Class
	Seq   uint64
}

// String formats the identifier as PREFIX_NNNN.
func (id Identifier) String() string {
	digits := strconv.FormatUint(id.Seq, 10)
	if pad := id.Class.Width - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return id.Class.Prefix + Separator + digits
}
