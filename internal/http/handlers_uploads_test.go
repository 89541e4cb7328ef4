package httpx

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fixwave/fixwave-api/internal/ports"
)

var uploadPNGHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// multipartFile builds a multipart body with one "file" field.
func multipartFile(t *testing.T, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "upload.bin")
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUpload_Avatar(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	h.Store.EXPECT().Put(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in ports.PutObjectInput) (ports.PutObjectResult, error) {
			assert.True(t, strings.HasPrefix(in.Key, "avatars/u-1/"))
			return ports.PutObjectResult{Key: in.Key, URL: "https://cdn.fixwave.dev/" + in.Key}, nil
		})

	body, contentType := multipartFile(t, uploadPNGHeader)
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/avatar", body)
	req.Header.Set("Content-Type", contentType)

	rec := h.do(req, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeBody(t, rec)
	assert.Equal(t, "image/png", resp["content_type"])
	assert.Contains(t, resp["url"], "cdn.fixwave.dev")
}

func TestUpload_RequiresAuth(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	body, contentType := multipartFile(t, uploadPNGHeader)
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/avatar", body)
	req.Header.Set("Content-Type", contentType)

	rec := h.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpload_UnknownKind(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	body, contentType := multipartFile(t, uploadPNGHeader)
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/archive", body)
	req.Header.Set("Content-Type", contentType)

	rec := h.do(req, cookie)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown_upload_kind", decodeBody(t, rec)["error"])
}

func TestUpload_UnsupportedType(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	body, contentType := multipartFile(t, []byte("%PDF-1.7\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/avatar", body)
	req.Header.Set("Content-Type", contentType)

	rec := h.do(req, cookie)
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, "unsupported_file_type", decodeBody(t, rec)["error"])
}

func TestUpload_MissingFileField(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "not-a-file"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := h.do(req, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_file", decodeBody(t, rec)["error"])
}

func TestImportAvatar_DisallowedHost(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	body := strings.NewReader(`{"url": "https://evil.example.org/a.png"}`)
	rec := h.do(httptest.NewRequest(http.MethodPost, "/api/uploads/avatar/import", body), cookie)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "import_host_not_allowed", decodeBody(t, rec)["error"])
}

func TestDeleteUpload_OwnershipEnforced(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	rec := h.do(httptest.NewRequest(http.MethodDelete, "/api/uploads?key=avatars/u-2/pic.png", nil), cookie)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not_owner", decodeBody(t, rec)["error"])
}

func TestDeleteUpload(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	h.Store.EXPECT().Delete(gomock.Any(), "avatars/u-1/pic.png").Return(nil)

	rec := h.do(httptest.NewRequest(http.MethodDelete, "/api/uploads?key=avatars/u-1/pic.png", nil), cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPresignUpload(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	h.Store.EXPECT().PresignGet(gomock.Any(), "documents/u-1/doc.pdf", gomock.Any()).
		Return("https://bucket.s3/signed", nil)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/uploads/presign?key=documents/u-1/doc.pdf", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://bucket.s3/signed", decodeBody(t, rec)["url"])
}
