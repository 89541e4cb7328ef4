package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fixwave/fixwave-api/internal/core"
	"github.com/fixwave/fixwave-api/internal/data"
	"github.com/fixwave/fixwave-api/internal/domain/profile"
)

func TestProfileRoutes_RequireAuth(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/profile"},
		{http.MethodPut, "/api/profile"},
		{http.MethodDelete, "/api/profile"},
		{http.MethodPost, "/api/profile/onboarding/complete"},
		{http.MethodGet, "/api/profile/addresses"},
		{http.MethodPost, "/api/profile/addresses"},
	} {
		rec := h.do(httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestProfileGet(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	h.Profiles.EXPECT().GetByUserID(gomock.Any(), "u-1").
		Return(&profile.Profile{ID: "p-1", UserID: "u-1", DisplayName: "Ada"}, nil)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/profile", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada", decodeBody(t, rec)["display_name"])
}

func TestProfileGet_NotFound(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	h.Profiles.EXPECT().GetByUserID(gomock.Any(), "u-1").
		Return(nil, data.ErrProfileNotFound)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/profile", nil), cookie)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "profile_not_found", decodeBody(t, rec)["error"])
}

func TestProfileUpsert(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	h.Profiles.EXPECT().Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req *profile.UpsertProfileRequest) (*profile.Profile, error) {
			assert.Equal(t, "u-1", req.UserID, "user ID comes from the session, never the body")
			return &profile.Profile{ID: "p-1", UserID: req.UserID, DisplayName: req.DisplayName}, nil
		})

	body := strings.NewReader(`{"display_name": "Ada", "categories": ["plumbing"]}`)
	rec := h.do(httptest.NewRequest(http.MethodPut, "/api/profile", body), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada", decodeBody(t, rec)["display_name"])
}

func TestProfileUpsert_ValidationFailure(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	body := strings.NewReader(`{"display_name": "  "}`)
	rec := h.do(httptest.NewRequest(http.MethodPut, "/api/profile", body), cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", decodeBody(t, rec)["error"])
}

func TestProfileUpsert_RejectsUnknownFields(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	body := strings.NewReader(`{"display_name": "Ada", "role": "admin"}`)
	rec := h.do(httptest.NewRequest(http.MethodPut, "/api/profile", body), cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", decodeBody(t, rec)["error"])
}

func TestCompleteOnboarding(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	h.Profiles.EXPECT().SetOnboardingComplete(gomock.Any(), "u-1").
		Return(&profile.Profile{ID: "p-1", UserID: "u-1", OnboardingComplete: true}, nil)

	rec := h.do(httptest.NewRequest(http.MethodPost, "/api/profile/onboarding/complete", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["onboarding_complete"])
}

func TestProfileDelete(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	h.Profiles.EXPECT().Delete(gomock.Any(), "u-1").Return(nil)

	rec := h.do(httptest.NewRequest(http.MethodDelete, "/api/profile", nil), cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreateAddress(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	h.Addresses.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req *profile.CreateAddressRequest) (*profile.Address, error) {
			assert.Equal(t, "u-1", req.UserID)
			return &profile.Address{ID: "a-1", UserID: req.UserID, Street: req.Street, IsDefault: true}, nil
		})

	body := strings.NewReader(`{"label": "Home", "street": "1 Main St", "city": "Springfield", "country": "US"}`)
	rec := h.do(httptest.NewRequest(http.MethodPost, "/api/profile/addresses", body), cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["is_default"])
}

func TestCreateAddress_ValidationFailure(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	body := strings.NewReader(`{"label": "Home"}`)
	rec := h.do(httptest.NewRequest(http.MethodPost, "/api/profile/addresses", body), cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", decodeBody(t, rec)["error"])
}

func TestListAddresses(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	h.Addresses.EXPECT().ListByUser(gomock.Any(), "u-1").
		Return([]*profile.Address{{ID: "a-1"}, {ID: "a-2"}}, nil)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/profile/addresses", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	addrs, ok := decodeBody(t, rec)["addresses"].([]any)
	require.True(t, ok)
	assert.Len(t, addrs, 2)
}

func TestUpdateAddress(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	h.Addresses.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, params core.UpdateAddressParams) (*profile.Address, error) {
			assert.Equal(t, "u-1", params.UserID)
			assert.Equal(t, "a-1", params.AddressID)
			return &profile.Address{ID: "a-1", UserID: "u-1", Label: *params.Req.Label}, nil
		})

	body := strings.NewReader(`{"label": "Work"}`)
	rec := h.do(httptest.NewRequest(http.MethodPatch, "/api/profile/addresses/a-1", body), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Work", decodeBody(t, rec)["label"])
}

func TestUpdateAddress_EmptyBodyIsRejected(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	rec := h.do(httptest.NewRequest(http.MethodPatch, "/api/profile/addresses/a-1", strings.NewReader(`{}`)), cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", decodeBody(t, rec)["error"])
}

func TestDeleteAddress_NotFound(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)
	cookie := h.signIn(t, testSession("sess-1", "u-1"))

	h.Addresses.EXPECT().Delete(gomock.Any(), "u-1", "a-404").
		Return(data.ErrAddressNotFound)

	rec := h.do(httptest.NewRequest(http.MethodDelete, "/api/profile/addresses/a-404", nil), cookie)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "address_not_found", decodeBody(t, rec)["error"])
}
