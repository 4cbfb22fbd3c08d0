package domain

import (
	"strings"
	"time"
)

// Status represents the lifecycle state of a master record.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Event represents an action that triggers a state transition.
type Event string

const (
	EventActivate   Event = "activate"
	EventDeactivate Event = "deactivate"
)

// Transition defines a valid state change: an event moves a record from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// Transitions lists every allowed lifecycle change. Consumed by the FSM adapter.
var Transitions = []Transition{
	{Event: EventDeactivate, Src: StatusActive, Dst: StatusInactive},
	{Event: EventActivate, Src: StatusInactive, Dst: StatusActive},
}

// Master holds the fields every catalogue record carries. The ID is assigned
// once at creation and never changes.
type Master struct {
	ID        string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Meta gives generic code access to the embedded metadata.
func (m *Master) Meta() *Master { return m }

// Record is satisfied by pointers to the catalogue entities.
type Record[T any] interface {
	*T
	Meta() *Master
}

func newMaster() Master {
	now := time.Now().UTC()
	return Master{Status: StatusActive, CreatedAt: now, UpdatedAt: now}
}

// Noun is the head term of a classification, e.g. "BEARING".
type Noun struct {
	Master
	Name         string
	Abbreviation string
	Description  string
}

// NewNoun creates an active noun without an identifier.
func NewNoun(name, abbreviation, description string) Noun {
	return Noun{Master: newMaster(), Name: name, Abbreviation: abbreviation, Description: description}
}

// Modifier qualifies a noun, e.g. "BALL".
type Modifier struct {
	Master
	Name         string
	Abbreviation string
	Description  string
}

// NewModifier creates an active modifier without an identifier.
func NewModifier(name, abbreviation, description string) Modifier {
	return Modifier{Master: newMaster(), Name: name, Abbreviation: abbreviation, Description: description}
}

// NounModifier pairs a noun with a modifier. Attributes, attribute values and
// manufacturers hang off it.
type NounModifier struct {
	Master
	NounID       string
	ModifierID   string
	Name         string
	Abbreviation string
	Description  string
}

// NounModifierName builds the display name of a pair, e.g. "BEARING, BALL".
func NounModifierName(noun, modifier string) string {
	return strings.TrimSpace(noun) + ", " + strings.TrimSpace(modifier)
}

// NewNounModifier creates an active pair without an identifier or name.
func NewNounModifier(nounID, modifierID, abbreviation, description string) NounModifier {
	return NounModifier{
		Master:       newMaster(),
		NounID:       nounID,
		ModifierID:   modifierID,
		Abbreviation: abbreviation,
		Description:  description,
	}
}

// Attribute is a property name defined for a noun-modifier, e.g. "BORE DIAMETER".
type Attribute struct {
	Master
	NounModifierID string
	Name           string
	Abbreviation   string
	Description    string
}

// NewAttribute creates an active attribute without an identifier.
func NewAttribute(nounModifierID, name, abbreviation, description string) Attribute {
	return Attribute{
		Master:         newMaster(),
		NounModifierID: nounModifierID,
		Name:           name,
		Abbreviation:   abbreviation,
		Description:    description,
	}
}

// AttributeValue is an allowed value for the attributes of a noun-modifier.
type AttributeValue struct {
	Master
	NounModifierID string
	Value          string
	Abbreviation   string
	Description    string
	Remarks        string
}

// NewAttributeValue creates an active attribute value without an identifier.
func NewAttributeValue(nounModifierID, value, abbreviation, description, remarks string) AttributeValue {
	return AttributeValue{
		Master:         newMaster(),
		NounModifierID: nounModifierID,
		Value:          value,
		Abbreviation:   abbreviation,
		Description:    description,
		Remarks:        remarks,
	}
}

// Manufacturer is a maker of catalogued items. NounModifierID is optional.
type Manufacturer struct {
	Master
	NounModifierID string
	Name           string
	Description    string
	Remarks        string
}

// NewManufacturer creates an active manufacturer without an identifier.
func NewManufacturer(nounModifierID, name, description, remarks string) Manufacturer {
	return Manufacturer{
		Master:         newMaster(),
		NounModifierID: nounModifierID,
		Name:           name,
		Description:    description,
		Remarks:        remarks,
	}
}

// ChangeKind classifies a published change.
type ChangeKind string

const (
	ChangeCreated      ChangeKind = "created"
	ChangeUpdated      ChangeKind = "updated"
	ChangeDeleted      ChangeKind = "deleted"
	ChangeTransitioned ChangeKind = "transitioned"
)

// Change describes a committed modification of a master record.
type Change struct {
	Kind     ChangeKind
	Class    Class
	RecordID string
	Status   Status
	Event    Event // set for ChangeTransitioned only
}
