package handler

import (
	"errors"
	"log/slog"

	"github.com/tablefolk/api/internal/model"
	"github.com/tablefolk/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Authentication Errors → 401 =====
	case errors.Is(err, service.ErrInvalidCredentials):
		return model.NewUnauthorizedError("invalid email or password")
	case errors.Is(err, service.ErrInvalidRefreshToken),
		errors.Is(err, service.ErrRefreshTokenExpired),
		errors.Is(err, service.ErrRefreshTokenRevoked):
		return model.NewUnauthorizedError("invalid or expired refresh token")
	case errors.Is(err, service.ErrInvalidIDToken),
		errors.Is(err, service.ErrEmailNotVerified):
		return model.NewUnauthorizedError(err.Error())

	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrNotSessionHost),
		errors.Is(err, service.ErrNotDiscussionCreator),
		errors.Is(err, service.ErrNotMessageAuthor),
		errors.Is(err, service.ErrNotParticipant),
		errors.Is(err, service.ErrNotShopOwner),
		errors.Is(err, service.ErrNotListingOwner),
		errors.Is(err, service.ErrNotNotificationOwner),
		errors.Is(err, service.ErrNotDeviceOwner),
		errors.Is(err, service.ErrRoleNotPermitted),
		errors.Is(err, service.ErrBlockedByAccount),
		errors.Is(err, service.ErrAccountBlocked),
		errors.Is(err, service.ErrSessionNotVisible):
		return model.NewForbiddenError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrAccountNotFound):
		return model.NewNotFoundError("account")
	case errors.Is(err, service.ErrRelationshipNotFound):
		return model.NewNotFoundError("relationship")
	case errors.Is(err, service.ErrNotificationNotFound):
		return model.NewNotFoundError("notification")
	case errors.Is(err, service.ErrDiscussionNotFound):
		return model.NewNotFoundError("discussion")
	case errors.Is(err, service.ErrMessageNotFound):
		return model.NewNotFoundError("message")
	case errors.Is(err, service.ErrSessionNotFound):
		return model.NewNotFoundError("session")
	case errors.Is(err, service.ErrShopNotFound):
		return model.NewNotFoundError("shop")
	case errors.Is(err, service.ErrListingNotFound):
		return model.NewNotFoundError("space listing")
	case errors.Is(err, service.ErrDeviceNotFound):
		return model.NewNotFoundError("device")
	case errors.Is(err, service.ErrNoPendingRequest),
		errors.Is(err, service.ErrNotBlocked):
		return model.NewNotFoundError("friend request")
	case errors.Is(err, service.ErrNoGeocodeResults):
		return model.NewNotFoundError("location")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrEmailAlreadyExists):
		return model.NewConflictError("email already registered")
	case errors.Is(err, service.ErrHandleTaken):
		return model.NewConflictError("handle already taken")
	case errors.Is(err, service.ErrRequestAlreadySent),
		errors.Is(err, service.ErrAlreadyFriends),
		errors.Is(err, service.ErrAlreadyBlocked),
		errors.Is(err, service.ErrAlreadyJoined),
		errors.Is(err, service.ErrAlreadyParticipant),
		errors.Is(err, service.ErrShopExists),
		errors.Is(err, service.ErrListingExists):
		return model.NewConflictError(err.Error())
	case errors.Is(err, service.ErrSessionNotJoinable),
		errors.Is(err, service.ErrHostCannotLeave),
		errors.Is(err, service.ErrCreatorCannotLeave),
		errors.Is(err, service.ErrBadStatusChange),
		errors.Is(err, service.ErrNotSessionMember):
		return model.NewConflictError(err.Error())

	// ===== Validation Errors → 400/422 =====
	case errors.Is(err, service.ErrInvalidEmail):
		return model.NewValidationError([]model.FieldError{
			{Field: "email", Message: "invalid email format"},
		})
	case errors.Is(err, service.ErrInvalidHandle):
		return model.NewValidationError([]model.FieldError{
			{Field: "handle", Message: "handle must be 3-32 lowercase letters, digits or underscores"},
		})
	case errors.Is(err, service.ErrPasswordRequired):
		return model.NewValidationError([]model.FieldError{
			{Field: "password", Message: "password is required"},
		})
	case errors.Is(err, service.ErrPasswordTooShort):
		return model.NewValidationError([]model.FieldError{
			{Field: "password", Message: "password must be at least 8 characters"},
		})
	case errors.Is(err, service.ErrPasswordTooLong):
		return model.NewValidationError([]model.FieldError{
			{Field: "password", Message: "password must be at most 128 characters"},
		})
	case errors.Is(err, service.ErrCannotRelateSelf),
		errors.Is(err, service.ErrCannotBlockSelf),
		errors.Is(err, service.ErrSessionInPast):
		return model.NewBadRequestError(err.Error())

	// ===== Limit Errors → 422 =====
	case errors.Is(err, service.ErrParticipantLimit):
		return model.NewLimitExceededError("participants",
			model.MaxDiscussionParticipants, model.MaxDiscussionParticipants)
	case errors.Is(err, service.ErrDeviceLimitReached):
		return model.NewLimitExceededError("devices",
			model.MaxDevicesPerAccount, model.MaxDevicesPerAccount)
	case errors.Is(err, service.ErrSessionFull):
		return model.NewConflictError("session is full")

	// ===== Deleted Content → 410-ish, reported as conflict =====
	case errors.Is(err, service.ErrMessageDeleted):
		return model.NewConflictError("message was deleted")

	// ===== Upstream Errors → 502 =====
	case errors.Is(err, service.ErrGeocodeUnavailable),
		errors.Is(err, service.ErrProviderError):
		return model.NewBadGatewayError("upstream service unavailable")

	// ===== Push Errors =====
	case errors.Is(err, service.ErrPushDisabled):
		return model.NewConflictError("push notifications are disabled")
	case errors.Is(err, service.ErrNoDeviceTokens):
		return model.NewNotFoundError("device tokens")

	default:
		slog.Error("unhandled service error", "error", err)
		return model.NewInternalError("internal server error")
	}
}
