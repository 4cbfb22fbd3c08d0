package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/catalogue/internal/app"
	"github.com/neomorfeo/catalogue/internal/domain"
)

// IdentifierClassResponse describes how one class of identifiers is formed.
type IdentifierClassResponse struct {
	Class  string `json:"class" doc:"Record class"`
	Prefix string `json:"prefix" doc:"Identifier prefix"`
	Width  int    `json:"width" doc:"Minimum digits; 0 means unpadded"`
	Seed   string `json:"seed" doc:"First identifier of the class"`
}

// NextIdentifierResponse previews the identifier the next create would get.
type NextIdentifierResponse struct {
	Class string `json:"class"`
	Next  string `json:"next"`
}

type ListIdentifierClassesOutput struct {
	Body []IdentifierClassResponse
}

type NextIdentifierInput struct {
	Class string `path:"class" doc:"Record class"`
}

type NextIdentifierOutput struct {
	Body NextIdentifierResponse
}

func registerIdentifiers(api huma.API, gen *app.IdentifierGenerator) {
	classes := domain.Classes()
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.Name
	}

	huma.Register(api, huma.Operation{
		OperationID: "list-identifier-classes",
		Method:      http.MethodGet,
		Path:        basePath + "/identifiers",
		Summary:     "List identifier classes",
		Tags:        []string{"Identifiers"},
	}, func(_ context.Context, _ *struct{}) (*ListIdentifierClassesOutput, error) {
		resp := make([]IdentifierClassResponse, len(classes))
		for i, c := range classes {
			resp[i] = IdentifierClassResponse{
				Class:  c.Name,
				Prefix: c.Prefix,
				Width:  c.Width,
				Seed:   c.SeedIdentifier().String(),
			}
		}
		return &ListIdentifierClassesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "next-identifier",
		Method:      http.MethodGet,
		Path:        basePath + "/identifiers/{class}/next",
		Summary:     "Preview the next identifier",
		Description: "Reads without reserving: a concurrent create may take the value first. " +
			"Classes: " + strings.Join(names, ", ") + ".",
		Tags: []string{"Identifiers"},
	}, func(ctx context.Context, input *NextIdentifierInput) (*NextIdentifierOutput, error) {
		class, ok := domain.ClassByName(input.Class)
		if !ok {
			return nil, huma.Error404NotFound("unknown identifier class " + input.Class)
		}

		next, err := gen.NextIdentifier(ctx, class)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &NextIdentifierOutput{Body: NextIdentifierResponse{Class: class.Name, Next: next.String()}}, nil
	})
}
