package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tavrin/realmportal/internal/common"
)

// errorBody is the machine-readable failure shape: a short user-facing
// message plus an error kind. Store internals never appear here.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind, message := classify(err)

	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			"path", r.URL.Path, "request_id", r.Context().Value(requestIDKey), "error", err.Error())
	}

	writeJSON(w, status, errorBody{Success: false, Error: kind, Message: message})
}

func classify(err error) (int, string, string) {
	var ife *common.InsufficientFundsError
	if errors.As(err, &ife) {
		return http.StatusPaymentRequired, "insufficient_funds",
			fmt.Sprintf("not enough money: %d more needed", ife.Shortfall)
	}

	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "invalid username or password"
	case errors.Is(err, common.ErrAccountBanned):
		return http.StatusForbidden, "account_banned", "this account is banned"
	case errors.Is(err, common.ErrAccountExists):
		return http.StatusConflict, "account_exists", "that username is taken"
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "unauthorized", "authentication required"
	case errors.Is(err, common.ErrRealmNotFound):
		return http.StatusNotFound, "realm_not_found", "unknown realm"
	case errors.Is(err, common.ErrCharacterNotFound):
		return http.StatusNotFound, "character_not_found", "character not found"
	case errors.Is(err, common.ErrItemTemplateNotFound):
		return http.StatusNotFound, "item_not_found", "item not found"
	case errors.Is(err, common.ErrTooManyMailSlots):
		return http.StatusBadRequest, "too_many_mail_slots", "too many item stacks for one parcel"
	case errors.Is(err, common.ErrCategoryNotAllowed):
		return http.StatusBadRequest, "category_not_allowed", "this item cannot be bought in the shop"
	case errors.Is(err, common.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request", "invalid request"
	case errors.Is(err, common.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable", "game store temporarily unavailable, try again"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
