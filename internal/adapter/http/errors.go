package http

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/catalogue/internal/domain"
)

// toHumaError translates domain errors to Huma HTTP errors. Anything that
// ends up as a 500 is logged, since the client only sees a generic message.
func toHumaError(ctx context.Context, err error) error {
	var (
		notFound   *domain.NotFoundError
		conflict   *domain.ConflictError
		inUse      *domain.InUseError
		duplicate  *domain.DuplicateIdentifierError
		reference  *domain.ReferenceError
		validation *domain.ValidationError
		transition *domain.TransitionError
		malformed  *domain.MalformedIdentifierError
		mismatch   *domain.PrefixMismatchError
		store      *domain.StoreUnavailableError
	)

	switch {
	case errors.As(err, &notFound):
		return huma.Error404NotFound(notFound.Error())
	case errors.As(err, &conflict):
		return huma.Error409Conflict(conflict.Error())
	case errors.As(err, &inUse):
		return huma.Error409Conflict(inUse.Error())
	case errors.As(err, &duplicate):
		return huma.Error409Conflict("could not assign a free identifier, retry the request")
	case errors.As(err, &reference):
		return huma.Error422UnprocessableEntity(reference.Error())
	case errors.As(err, &validation):
		return huma.Error422UnprocessableEntity(validation.Error())
	case errors.As(err, &transition):
		return huma.Error422UnprocessableEntity(transition.Error())
	case errors.As(err, &malformed), errors.As(err, &mismatch):
		slog.ErrorContext(ctx, "stored identifiers are inconsistent", "error", err)
		return huma.Error500InternalServerError("identifier data is inconsistent")
	case errors.As(err, &store):
		slog.WarnContext(ctx, "store unavailable", "error", err)
		return huma.Error503ServiceUnavailable("store temporarily unavailable, retry later")
	}

	slog.ErrorContext(ctx, "request failed", "error", err)
	return huma.Error500InternalServerError("internal server error")
}
