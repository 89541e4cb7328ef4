package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/fixwave/fixwave-api/internal/domain/auth"
	"github.com/fixwave/fixwave-api/internal/mocks"
	mocksauth "github.com/fixwave/fixwave-api/internal/mocks/auth"
	"github.com/fixwave/fixwave-api/internal/service"
	"github.com/fixwave/fixwave-api/internal/testutil"
)

// routerHarness bundles the in-memory backends behind a real router so
// handler tests exercise the full middleware and routing stack.
type routerHarness struct {
	Provider  *mocksauth.MockAuthProvider
	Sessions  *mocksauth.MemorySessionStore
	Directory *mocksauth.MemoryDirectory
	Profiles  *mocks.MockProfileRepository
	Addresses *mocks.MockAddressRepository
	Store     *mocks.MockObjectStore
	Scheduler *testutil.FakeScheduler
	Auth      *service.AuthService
	Monitors  *service.MonitorRegistry
	Handler   http.Handler
}

// newRouterHarness builds a router over in-memory backends and gomock repos.
func newRouterHarness(t *testing.T) *routerHarness {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	h := &routerHarness{
		Provider:  mocksauth.NewMockAuthProvider(),
		Sessions:  mocksauth.NewMemorySessionStore(),
		Directory: mocksauth.NewMemoryDirectory(),
		Profiles:  mocks.NewMockProfileRepository(ctrl),
		Addresses: mocks.NewMockAddressRepository(ctrl),
		Store:     mocks.NewMockObjectStore(ctrl),
		Scheduler: testutil.NewFakeScheduler(),
	}

	notifier := domainauth.NewNotifier()
	h.Auth = service.NewAuthService(service.AuthServiceOptions{
		Provider: h.Provider,
		Sessions: h.Sessions,
		Roles: mocksauth.StaticRoleMapper{
			AdminGroup:    "admins",
			ProviderGroup: "providers",
			CustomerGroup: "customers",
		},
		Notifier: notifier,
	})
	h.Monitors = service.NewMonitorRegistry(service.MonitorRegistryOptions{
		Backends: service.StateManagerBackends{
			Sessions:  h.Sessions,
			Directory: h.Directory,
			Profiles:  h.Profiles,
		},
		Polling:  service.PollerOptions{Scheduler: h.Scheduler},
		Notifier: notifier,
	})

	profileSvc := service.NewProfileService(service.ProfileServiceOptions{
		Profiles:  h.Profiles,
		Addresses: h.Addresses,
	})
	uploadSvc := service.NewUploadService(service.UploadServiceOptions{Store: h.Store})

	h.Handler = NewRouter(RouterServices{
		Auth:      h.Auth,
		Monitors:  h.Monitors,
		Profiles:  profileSvc,
		Uploads:   uploadSvc,
		Directory: h.Directory,
	})
	return h
}

// signIn seeds a session directly in the store and returns its cookie.
func (h *routerHarness) signIn(t *testing.T, sess domainauth.Session) *http.Cookie {
	t.Helper()
	require.NoError(t, h.Sessions.Save(t.Context(), sess))
	return &http.Cookie{Name: "session_id", Value: sess.ID}
}

// do runs a request through the router and returns the recorder.
func (h *routerHarness) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.Handler.ServeHTTP(rec, req)
	return rec
}

// decodeBody decodes a JSON response body into a generic map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
