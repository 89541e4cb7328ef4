package httpx

import (
	"errors"
	"net/http"

	"github.com/fixwave/fixwave-api/internal/core"
	"github.com/fixwave/fixwave-api/internal/data"
	"github.com/fixwave/fixwave-api/internal/domain/profile"
	"github.com/fixwave/fixwave-api/internal/service"
)

// ProfileHandlers provides HTTP handlers for profile and address operations.
// All routes require an authenticated session; the session's user ID scopes
// every operation, so callers can never touch another user's rows.
type ProfileHandlers struct {
	Svc *service.ProfileService
}

// Get handles GET /api/profile.
func (h *ProfileHandlers) Get(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	prof, err := h.Svc.Get(r.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, data.ErrProfileNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "profile_not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "get_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, prof)
}

// Upsert handles PUT /api/profile.
func (h *ProfileHandlers) Upsert(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	var req profile.UpsertProfileRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.UserID = session.UserID

	prof, err := h.Svc.Upsert(r.Context(), &req)
	if err != nil {
		switch {
		case isValidationError(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		default:
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "upsert_failed", Err: err})
		}
		return
	}

	WriteJSON(w, http.StatusOK, prof)
}

// CompleteOnboarding handles POST /api/profile/onboarding/complete.
func (h *ProfileHandlers) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	prof, err := h.Svc.CompleteOnboarding(r.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, data.ErrProfileNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "profile_not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "onboarding_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, prof)
}

// Delete handles DELETE /api/profile.
func (h *ProfileHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	if err := h.Svc.Delete(r.Context(), session.UserID); err != nil {
		if errors.Is(err, data.ErrProfileNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "profile_not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "delete_failed", Err: err})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateAddress handles POST /api/profile/addresses.
func (h *ProfileHandlers) CreateAddress(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	var req profile.CreateAddressRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.UserID = session.UserID

	addr, err := h.Svc.CreateAddress(r.Context(), &req)
	if err != nil {
		switch {
		case isValidationError(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		default:
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "create_failed", Err: err})
		}
		return
	}

	WriteJSON(w, http.StatusCreated, addr)
}

// ListAddresses handles GET /api/profile/addresses.
func (h *ProfileHandlers) ListAddresses(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	addrs, err := h.Svc.ListAddresses(r.Context(), session.UserID)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"addresses": addrs})
}

// UpdateAddress handles PATCH /api/profile/addresses/{id}.
func (h *ProfileHandlers) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("address id is required")},
		)
		return
	}

	var req profile.UpdateAddressRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	addr, err := h.Svc.UpdateAddress(r.Context(), core.UpdateAddressParams{
		UserID:    session.UserID,
		AddressID: id,
		Req:       &req,
	})
	if err != nil {
		switch {
		case errors.Is(err, data.ErrAddressNotFound):
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "address_not_found", Err: err})
		case isValidationError(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		default:
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "update_failed", Err: err})
		}
		return
	}

	WriteJSON(w, http.StatusOK, addr)
}

// DeleteAddress handles DELETE /api/profile/addresses/{id}.
func (h *ProfileHandlers) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("address id is required")},
		)
		return
	}

	if err := h.Svc.DeleteAddress(r.Context(), session.UserID, id); err != nil {
		if errors.Is(err, data.ErrAddressNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "address_not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "delete_failed", Err: err})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
