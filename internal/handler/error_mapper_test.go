package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/tablefolk/api/internal/service"
)

func TestMapServiceError_StatusCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"revoked refresh token", service.ErrRefreshTokenRevoked, http.StatusUnauthorized},
		{"invalid id token", service.ErrInvalidIDToken, http.StatusUnauthorized},
		{"not session host", service.ErrNotSessionHost, http.StatusForbidden},
		{"blocked by account", service.ErrBlockedByAccount, http.StatusForbidden},
		{"private session hidden", service.ErrSessionNotVisible, http.StatusForbidden},
		{"account not found", service.ErrAccountNotFound, http.StatusNotFound},
		{"session not found", service.ErrSessionNotFound, http.StatusNotFound},
		{"no geocode results", service.ErrNoGeocodeResults, http.StatusNotFound},
		{"email taken", service.ErrEmailAlreadyExists, http.StatusConflict},
		{"handle taken", service.ErrHandleTaken, http.StatusConflict},
		{"already friends", service.ErrAlreadyFriends, http.StatusConflict},
		{"session full", service.ErrSessionFull, http.StatusConflict},
		{"bad status change", service.ErrBadStatusChange, http.StatusConflict},
		{"self friend request", service.ErrCannotRelateSelf, http.StatusBadRequest},
		{"session in past", service.ErrSessionInPast, http.StatusBadRequest},
		{"short password", service.ErrPasswordTooShort, http.StatusUnprocessableEntity},
		{"participant limit", service.ErrParticipantLimit, http.StatusUnprocessableEntity},
		{"geocoder down", service.ErrGeocodeUnavailable, http.StatusBadGateway},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			problem := MapServiceError(tt.err)
			if problem.Status != tt.wantStatus {
				t.Errorf("MapServiceError(%v) status = %d, want %d", tt.err, problem.Status, tt.wantStatus)
			}
		})
	}
}

func TestMapServiceError_NilError(t *testing.T) {
	t.Parallel()
	if problem := MapServiceError(nil); problem != nil {
		t.Errorf("expected nil for nil error, got %v", problem)
	}
}
