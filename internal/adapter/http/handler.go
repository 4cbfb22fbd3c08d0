package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/catalogue/internal/app"
	"github.com/neomorfeo/catalogue/internal/domain"
)

const basePath = "/api/v1"

// --- Shared inputs and outputs ---

type IDInput struct {
	ID string `path:"id" doc:"Record identifier"`
}

type CreateInput[C any] struct {
	Body C
}

type PatchInput[U any] struct {
	ID   string `path:"id" doc:"Record identifier"`
	Body U
}

type ListInput struct {
	Status         string `query:"status" required:"false" enum:"active,inactive" doc:"Filter by status"`
	NounModifierID string `query:"noun_modifier_id" required:"false" doc:"Filter child records by noun-modifier"`
	Limit          int    `query:"limit" required:"false" default:"50" minimum:"1" maximum:"500" doc:"Max results"`
	Offset         int    `query:"offset" required:"false" default:"0" minimum:"0" doc:"Pagination offset"`
}

type TransitionInput struct {
	ID   string `path:"id" doc:"Record identifier"`
	Body struct {
		Event string `json:"event" enum:"activate,deactivate" doc:"Lifecycle event to trigger"`
	}
}

type ItemOutput[R any] struct {
	Body R
}

type ListOutput[R any] struct {
	Body []R
}

// resource describes the routes of one record type.
type resource[T any, P domain.Record[T], R any, C interface{ record() T }, U interface{ apply(*T) }] struct {
	path     string // e.g. "/nouns"
	singular string // e.g. "noun", used in operation IDs
	plural   string
	tag      string
	svc      *app.Collection[T, P]
	respond  func(T) R
}

// Register adds all catalogue API routes to the Huma API.
func Register(api huma.API, svc *app.Catalogue) {
	registerResource(api, resource[domain.Noun, *domain.Noun, NounResponse, NounCreate, NounPatch]{
		path: "/nouns", singular: "noun", plural: "nouns", tag: "Nouns",
		svc: svc.Nouns, respond: toNounResponse,
	})
	registerResource(api, resource[domain.Modifier, *domain.Modifier, ModifierResponse, ModifierCreate, ModifierPatch]{
		path: "/modifiers", singular: "modifier", plural: "modifiers", tag: "Modifiers",
		svc: svc.Modifiers, respond: toModifierResponse,
	})
	registerResource(api, resource[domain.NounModifier, *domain.NounModifier, NounModifierResponse, NounModifierCreate, NounModifierPatch]{
		path: "/noun-modifiers", singular: "noun-modifier", plural: "noun-modifiers", tag: "Noun-modifiers",
		svc: svc.NounModifiers, respond: toNounModifierResponse,
	})
	registerResource(api, resource[domain.Attribute, *domain.Attribute, AttributeResponse, AttributeCreate, AttributePatch]{
		path: "/attributes", singular: "attribute", plural: "attributes", tag: "Attributes",
		svc: svc.Attributes, respond: toAttributeResponse,
	})
	registerResource(api, resource[domain.AttributeValue, *domain.AttributeValue, AttributeValueResponse, AttributeValueCreate, AttributeValuePatch]{
		path: "/attribute-values", singular: "attribute-value", plural: "attribute-values", tag: "Attribute values",
		svc: svc.AttributeValues, respond: toAttributeValueResponse,
	})
	registerResource(api, resource[domain.Manufacturer, *domain.Manufacturer, ManufacturerResponse, ManufacturerCreate, ManufacturerPatch]{
		path: "/manufacturers", singular: "manufacturer", plural: "manufacturers", tag: "Manufacturers",
		svc: svc.Manufacturers, respond: toManufacturerResponse,
	})

	registerIdentifiers(api, svc.Identifiers)
}

func registerResource[T any, P domain.Record[T], R any, C interface{ record() T }, U interface{ apply(*T) }](api huma.API, r resource[T, P, R, C, U]) {
	collection := basePath + r.path
	item := collection + "/{id}"
	tags := []string{r.tag}

	huma.Register(api, huma.Operation{
		OperationID:   "create-" + r.singular,
		Method:        http.MethodPost,
		Path:          collection,
		Summary:       "Create a " + r.singular,
		Description:   "Assigns the next sequential identifier of the class.",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateInput[C]) (*ItemOutput[R], error) {
		rec, err := r.svc.Create(ctx, input.Body.record())
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &ItemOutput[R]{Body: r.respond(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-" + r.singular,
		Method:      http.MethodGet,
		Path:        item,
		Summary:     "Get a " + r.singular + " by ID",
		Tags:        tags,
	}, func(ctx context.Context, input *IDInput) (*ItemOutput[R], error) {
		rec, err := r.svc.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &ItemOutput[R]{Body: r.respond(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-" + r.plural,
		Method:      http.MethodGet,
		Path:        collection,
		Summary:     "List " + r.plural,
		Description: "Records are ordered by identifier.",
		Tags:        tags,
	}, func(ctx context.Context, input *ListInput) (*ListOutput[R], error) {
		filter := domain.ListFilter{
			NounModifierID: input.NounModifierID,
			Limit:          input.Limit,
			Offset:         input.Offset,
		}
		if input.Status != "" {
			s := domain.Status(input.Status)
			filter.Status = &s
		}

		recs, err := r.svc.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}

		resp := make([]R, len(recs))
		for i, rec := range recs {
			resp[i] = r.respond(rec)
		}
		return &ListOutput[R]{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-" + r.singular,
		Method:      http.MethodPatch,
		Path:        item,
		Summary:     "Update a " + r.singular,
		Description: "Omitted fields keep their value. The identifier never changes.",
		Tags:        tags,
	}, func(ctx context.Context, input *PatchInput[U]) (*ItemOutput[R], error) {
		rec, err := r.svc.Update(ctx, input.ID, func(rec *T) error {
			input.Body.apply(rec)
			return nil
		})
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &ItemOutput[R]{Body: r.respond(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-" + r.singular,
		Method:        http.MethodDelete,
		Path:          item,
		Summary:       "Delete a " + r.singular,
		Description:   "Refused while other records reference it. Its identifier is not reused.",
		Tags:          tags,
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *IDInput) (*struct{}, error) {
		if err := r.svc.Delete(ctx, input.ID); err != nil {
			return nil, toHumaError(ctx, err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-" + r.singular,
		Method:      http.MethodPost,
		Path:        item + "/events",
		Summary:     "Trigger a lifecycle event",
		Tags:        tags,
	}, func(ctx context.Context, input *TransitionInput) (*ItemOutput[R], error) {
		rec, err := r.svc.Transition(ctx, input.ID, domain.Event(input.Body.Event))
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &ItemOutput[R]{Body: r.respond(rec)}, nil
	})
}
