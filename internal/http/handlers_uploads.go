package httpx

import (
	"errors"
	"net/http"

	"github.com/fixwave/fixwave-api/internal/service"
)

// UploadHandlers provides HTTP handlers for file upload operations.
type UploadHandlers struct {
	Svc *service.UploadService
}

// uploadMemoryLimit bounds how much of a multipart body is buffered in memory
// before spilling to disk. Payload size itself is enforced by the service.
const uploadMemoryLimit = 8 << 20

// Upload handles POST /api/uploads/{kind} with a multipart "file" field.
func (h *UploadHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	kind := service.UploadKind(r.PathValue("kind"))

	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_multipart", Err: err})
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_file",
			Err:     errors.New("multipart field \"file\" is required"),
		})
		return
	}
	defer file.Close()

	result, err := h.Svc.Upload(r.Context(), service.UploadInput{
		UserID: session.UserID,
		Kind:   kind,
		Body:   file,
	})
	if err != nil {
		h.writeUploadError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, result)
}

// importRequest is the body for import-from-URL.
type importRequest struct {
	URL string `json:"url"`
}

// ImportAvatar handles POST /api/uploads/avatar/import.
func (h *UploadHandlers) ImportAvatar(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	var req importRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.URL == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_url",
			Err:     errors.New("url is required"),
		})
		return
	}

	result, err := h.Svc.ImportAvatarFromURL(r.Context(), session.UserID, req.URL)
	if err != nil {
		h.writeUploadError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, result)
}

// Delete handles DELETE /api/uploads?key=<key>.
func (h *UploadHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	key, ok := h.ownedKey(w, r)
	if !ok {
		return
	}

	if err := h.Svc.Delete(r.Context(), key); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "delete_failed", Err: err})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Presign handles GET /api/uploads/presign?key=<key>.
func (h *UploadHandlers) Presign(w http.ResponseWriter, r *http.Request) {
	key, ok := h.ownedKey(w, r)
	if !ok {
		return
	}

	url, err := h.Svc.PresignDownload(r.Context(), key)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "presign_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"key": key, "url": url})
}

// ownedKey reads the key query param and verifies the object belongs to the
// calling user. Keys embed the owner as their second path segment.
func (h *UploadHandlers) ownedKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	session := GetSessionFromContext(r.Context())

	key := r.URL.Query().Get("key")
	if key == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_key",
			Err:     errors.New("key is required"),
		})
		return "", false
	}
	if !service.KeyOwnedBy(key, session.UserID) {
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: "not_owner",
			Err:     errors.New("object does not belong to the caller"),
		})
		return "", false
	}
	return key, true
}

// writeUploadError maps service sentinels to HTTP statuses.
func (h *UploadHandlers) writeUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownUploadKind):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "unknown_upload_kind", Err: err})
	case errors.Is(err, service.ErrUploadTooLarge):
		WriteError(w, ErrorParams{Code: http.StatusRequestEntityTooLarge, ErrCode: "file_too_large", Err: err})
	case errors.Is(err, service.ErrUnsupportedFileType):
		WriteError(w, ErrorParams{Code: http.StatusUnsupportedMediaType, ErrCode: "unsupported_file_type", Err: err})
	case errors.Is(err, service.ErrImportHostNotAllowed):
		WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "import_host_not_allowed", Err: err})
	case isValidationError(err):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
	default:
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "upload_failed", Err: err})
	}
}
