package http

import (
	"github.com/neomorfeo/catalogue/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// Meta carries the fields every record response shares.
type Meta struct {
	ID        string `json:"id" doc:"Sequential identifier, e.g. MFR_0001"`
	Status    string `json:"status" enum:"active,inactive" doc:"Lifecycle state"`
	CreatedAt string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toMeta(m domain.Master) Meta {
	return Meta{
		ID:        m.ID,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt.Format(timeFormat),
		UpdatedAt: m.UpdatedAt.Format(timeFormat),
	}
}

// set overwrites *dst when the patch carries a value.
func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// --- Nouns ---

// NounResponse is the API representation of a noun.
type NounResponse struct {
	Meta
	Name         string `json:"name" doc:"Noun, e.g. BEARING"`
	Abbreviation string `json:"abbreviation"`
	Description  string `json:"description"`
}

func toNounResponse(n domain.Noun) NounResponse {
	return NounResponse{Meta: toMeta(n.Master), Name: n.Name, Abbreviation: n.Abbreviation, Description: n.Description}
}

type NounCreate struct {
	Name         string `json:"name" minLength:"1" maxLength:"255" doc:"Noun, e.g. BEARING"`
	Abbreviation string `json:"abbreviation" minLength:"1" maxLength:"50"`
	Description  string `json:"description,omitempty" maxLength:"1000"`
}

func (b NounCreate) record() domain.Noun {
	return domain.NewNoun(b.Name, b.Abbreviation, b.Description)
}

type NounPatch struct {
	Name         *string `json:"name,omitempty" maxLength:"255"`
	Abbreviation *string `json:"abbreviation,omitempty" maxLength:"50"`
	Description  *string `json:"description,omitempty" maxLength:"1000"`
}

func (b NounPatch) apply(n *domain.Noun) {
	set(&n.Name, b.Name)
	set(&n.Abbreviation, b.Abbreviation)
	set(&n.Description, b.Description)
}

// --- Modifiers ---

// ModifierResponse is the API representation of a modifier.
type ModifierResponse struct {
	Meta
	Name         string `json:"name" doc:"Modifier, e.g. BALL"`
	Abbreviation string `json:"abbreviation"`
	Description  string `json:"description"`
}

func toModifierResponse(m domain.Modifier) ModifierResponse {
	return ModifierResponse{Meta: toMeta(m.Master), Name: m.Name, Abbreviation: m.Abbreviation, Description: m.Description}
}

type ModifierCreate struct {
	Name         string `json:"name" minLength:"1" maxLength:"255" doc:"Modifier, e.g. BALL"`
	Abbreviation string `json:"abbreviation" minLength:"1" maxLength:"50"`
	Description  string `json:"description,omitempty" maxLength:"1000"`
}

func (b ModifierCreate) record() domain.Modifier {
	return domain.NewModifier(b.Name, b.Abbreviation, b.Description)
}

type ModifierPatch struct {
	Name         *string `json:"name,omitempty" maxLength:"255"`
	Abbreviation *string `json:"abbreviation,omitempty" maxLength:"50"`
	Description  *string `json:"description,omitempty" maxLength:"1000"`
}

func (b ModifierPatch) apply(m *domain.Modifier) {
	set(&m.Name, b.Name)
	set(&m.Abbreviation, b.Abbreviation)
	set(&m.Description, b.Description)
}

// --- Noun-modifiers ---

// NounModifierResponse is the API representation of a noun-modifier pair.
type NounModifierResponse struct {
	Meta
	NounID       string `json:"noun_id"`
	ModifierID   string `json:"modifier_id"`
	Name         string `json:"name" doc:"Derived as \"NOUN, MODIFIER\""`
	Abbreviation string `json:"abbreviation"`
	Description  string `json:"description"`
}

func toNounModifierResponse(nm domain.NounModifier) NounModifierResponse {
	return NounModifierResponse{
		Meta:         toMeta(nm.Master),
		NounID:       nm.NounID,
		ModifierID:   nm.ModifierID,
		Name:         nm.Name,
		Abbreviation: nm.Abbreviation,
		Description:  nm.Description,
	}
}

type NounModifierCreate struct {
	NounID       string `json:"noun_id" minLength:"1" doc:"Noun identifier, e.g. N_1"`
	ModifierID   string `json:"modifier_id" minLength:"1" doc:"Modifier identifier, e.g. M_0001"`
	Abbreviation string `json:"abbreviation,omitempty" maxLength:"50"`
	Description  string `json:"description,omitempty" maxLength:"1000"`
}

func (b NounModifierCreate) record() domain.NounModifier {
	return domain.NewNounModifier(b.NounID, b.ModifierID, b.Abbreviation, b.Description)
}

type NounModifierPatch struct {
	NounID       *string `json:"noun_id,omitempty"`
	ModifierID   *string `json:"modifier_id,omitempty"`
	Abbreviation *string `json:"abbreviation,omitempty" maxLength:"50"`
	Description  *string `json:"description,omitempty" maxLength:"1000"`
}

func (b NounModifierPatch) apply(nm *domain.NounModifier) {
	set(&nm.NounID, b.NounID)
	set(&nm.ModifierID, b.ModifierID)
	set(&nm.Abbreviation, b.Abbreviation)
	set(&nm.Description, b.Description)
}

// --- Attributes ---

// AttributeResponse is the API representation of an attribute.
type AttributeResponse struct {
	Meta
	NounModifierID string `json:"noun_modifier_id"`
	Name           string `json:"name"`
	Abbreviation   string `json:"abbreviation"`
	Description    string `json:"description"`
}

func toAttributeResponse(a domain.Attribute) AttributeResponse {
	return AttributeResponse{
		Meta:           toMeta(a.Master),
		NounModifierID: a.NounModifierID,
		Name:           a.Name,
		Abbreviation:   a.Abbreviation,
		Description:    a.Description,
	}
}

type AttributeCreate struct {
	NounModifierID string `json:"noun_modifier_id" minLength:"1"`
	Name           string `json:"name" minLength:"1" maxLength:"255" doc:"Attribute name, e.g. BORE DIAMETER"`
	Abbreviation   string `json:"abbreviation,omitempty" maxLength:"50"`
	Description    string `json:"description,omitempty" maxLength:"1000"`
}

func (b AttributeCreate) record() domain.Attribute {
	return domain.NewAttribute(b.NounModifierID, b.Name, b.Abbreviation, b.Description)
}

type AttributePatch struct {
	NounModifierID *string `json:"noun_modifier_id,omitempty"`
	Name           *string `json:"name,omitempty" maxLength:"255"`
	Abbreviation   *string `json:"abbreviation,omitempty" maxLength:"50"`
	Description    *string `json:"description,omitempty" maxLength:"1000"`
}

func (b AttributePatch) apply(a *domain.Attribute) {
	set(&a.NounModifierID, b.NounModifierID)
	set(&a.Name, b.Name)
	set(&a.Abbreviation, b.Abbreviation)
	set(&a.Description, b.Description)
}

// --- Attribute values ---

// AttributeValueResponse is the API representation of an attribute value.
type AttributeValueResponse struct {
	Meta
	NounModifierID string `json:"noun_modifier_id"`
	Value          string `json:"value"`
	Abbreviation   string `json:"abbreviation"`
	Description    string `json:"description"`
	Remarks        string `json:"remarks"`
}

func toAttributeValueResponse(v domain.AttributeValue) AttributeValueResponse {
	return AttributeValueResponse{
		Meta:           toMeta(v.Master),
		NounModifierID: v.NounModifierID,
		Value:          v.Value,
		Abbreviation:   v.Abbreviation,
		Description:    v.Description,
		Remarks:        v.Remarks,
	}
}

type AttributeValueCreate struct {
	NounModifierID string `json:"noun_modifier_id" minLength:"1"`
	Value          string `json:"value" minLength:"1" maxLength:"255" doc:"Allowed value, e.g. 10 MM"`
	Abbreviation   string `json:"abbreviation,omitempty" maxLength:"50"`
	Description    string `json:"description,omitempty" maxLength:"1000"`
	Remarks        string `json:"remarks,omitempty" maxLength:"1000"`
}

func (b AttributeValueCreate) record() domain.AttributeValue {
	return domain.NewAttributeValue(b.NounModifierID, b.Value, b.Abbreviation, b.Description, b.Remarks)
}

type AttributeValuePatch struct {
	NounModifierID *string `json:"noun_modifier_id,omitempty"`
	Value          *string `json:"value,omitempty" maxLength:"255"`
	Abbreviation   *string `json:"abbreviation,omitempty" maxLength:"50"`
	Description    *string `json:"description,omitempty" maxLength:"1000"`
	Remarks        *string `json:"remarks,omitempty" maxLength:"1000"`
}

func (b AttributeValuePatch) apply(v *domain.AttributeValue) {
	set(&v.NounModifierID, b.NounModifierID)
	set(&v.Value, b.Value)
	set(&v.Abbreviation, b.Abbreviation)
	set(&v.Description, b.Description)
	set(&v.Remarks, b.Remarks)
}

// --- Manufacturers ---

// ManufacturerResponse is the API representation of a manufacturer.
type ManufacturerResponse struct {
	Meta
	NounModifierID string `json:"noun_modifier_id,omitempty"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Remarks        string `json:"remarks"`
}

func toManufacturerResponse(m domain.Manufacturer) ManufacturerResponse {
	return ManufacturerResponse{
		Meta:           toMeta(m.Master),
		NounModifierID: m.NounModifierID,
		Name:           m.Name,
		Description:    m.Description,
		Remarks:        m.Remarks,
	}
}

type ManufacturerCreate struct {
	NounModifierID string `json:"noun_modifier_id,omitempty" doc:"Optional noun-modifier the manufacturer is listed under"`
	Name           string `json:"name" minLength:"1" maxLength:"255"`
	Description    string `json:"description,omitempty" maxLength:"1000"`
	Remarks        string `json:"remarks,omitempty" maxLength:"1000"`
}

func (b ManufacturerCreate) record() domain.Manufacturer {
	return domain.NewManufacturer(b.NounModifierID, b.Name, b.Description, b.Remarks)
}

type ManufacturerPatch struct {
	NounModifierID *string `json:"noun_modifier_id,omitempty" doc:"Empty string detaches the manufacturer"`
	Name           *string `json:"name,omitempty" maxLength:"255"`
	Description    *string `json:"description,omitempty" maxLength:"1000"`
	Remarks        *string `json:"remarks,omitempty" maxLength:"1000"`
}

func (b ManufacturerPatch) apply(m *domain.Manufacturer) {
	set(&m.NounModifierID, b.NounModifierID)
	set(&m.Name, b.Name)
	set(&m.Description, b.Description)
	set(&m.Remarks, b.Remarks)
}
