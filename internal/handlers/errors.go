package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/SICout9010/K-Camp/internal/i18n"
	"github.com/SICout9010/K-Camp/internal/lifecycle"
	"github.com/SICout9010/K-Camp/internal/registrar"
	"github.com/SICout9010/K-Camp/internal/store"
	"github.com/danielgtaylor/huma/v2"
)

// problem converts a domain error into a localized huma error. Unexpected
// errors are logged under op and reported generically.
func problem(ctx context.Context, op string, err error) error {
	var transition *registrar.TransitionError
	switch {
	case errors.Is(err, registrar.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return huma.Error404NotFound(i18n.T(ctx, i18n.KeyNotFound))
	case errors.Is(err, registrar.ErrPermissionDenied):
		return huma.Error403Forbidden(i18n.T(ctx, i18n.KeyForbidden))
	case errors.Is(err, registrar.ErrLoginRequired):
		return huma.Error401Unauthorized(i18n.T(ctx, i18n.KeyLoginRequired))
	case errors.Is(err, registrar.ErrConflict):
		return huma.Error409Conflict(i18n.T(ctx, i18n.KeyConflict))
	case errors.Is(err, registrar.ErrHasAcceptedRegistrations):
		return huma.Error409Conflict(i18n.T(ctx, i18n.KeyHasAccepted))
	case errors.Is(err, lifecycle.ErrWindowUpcoming):
		return huma.Error409Conflict(i18n.T(ctx, i18n.KeyWindowUpcoming))
	case errors.Is(err, lifecycle.ErrWindowEnded):
		return huma.Error409Conflict(i18n.T(ctx, i18n.KeyWindowEnded))
	case errors.Is(err, lifecycle.ErrWindowClosed):
		return huma.Error409Conflict(i18n.T(ctx, i18n.KeyWindowClosed))
	case errors.Is(err, lifecycle.ErrFull):
		return huma.Error409Conflict(i18n.T(ctx, i18n.KeyWindowFull))
	case errors.Is(err, lifecycle.ErrAlreadyRegistered):
		return huma.Error409Conflict(i18n.T(ctx, i18n.KeyAlreadyRegistered))
	case errors.As(err, &transition) && errors.Is(err, lifecycle.ErrInvalidPayment):
		return huma.Error422UnprocessableEntity(i18n.T(ctx, i18n.KeyInvalidPayment, transition.From, transition.To))
	case errors.As(err, &transition):
		return huma.Error422UnprocessableEntity(i18n.T(ctx, i18n.KeyInvalidMove, transition.From, transition.To))
	case errors.Is(err, lifecycle.ErrUnknownStatus):
		return huma.Error400BadRequest(i18n.T(ctx, i18n.KeyInvalidStatus))
	}

	log.Printf("%s failed: %v", op, err)
	return huma.Error500InternalServerError(i18n.T(ctx, i18n.KeyGenericError))
}

// ActionResult is the body of a successful form action.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ok(ctx context.Context, key string, args ...interface{}) ActionResult {
	return ActionResult{Success: true, Message: i18n.T(ctx, key, args...)}
}
