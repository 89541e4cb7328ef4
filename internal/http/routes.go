package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fixwave/fixwave-api/internal/ports"
	"github.com/fixwave/fixwave-api/internal/search"
	"github.com/fixwave/fixwave-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth      *service.AuthService
	Monitors  *service.MonitorRegistry
	Profiles  *service.ProfileService
	Uploads   *service.UploadService
	Directory ports.IdentityDirectory

	// Matcher is the category search matcher. If nil, the built-in catalog
	// is used.
	Matcher *search.Matcher

	CookieDomain string
	SessionTTL   time.Duration
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	matcher := services.Matcher
	if matcher == nil {
		matcher = search.NewDefaultMatcher()
	}

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Monitors:     services.Monitors,
		Directory:    services.Directory,
		CookieDomain: services.CookieDomain,
		SessionTTL:   services.SessionTTL,
		Logger:       logger,
	}
	profileHandlers := &ProfileHandlers{Svc: services.Profiles}
	searchHandlers := &SearchHandlers{Matcher: matcher}
	uploadHandlers := &UploadHandlers{Svc: services.Uploads}

	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	registerAuthRoutes(mux, authHandlers)
	registerProfileRoutes(mux, profileHandlers, authHandlers.Svc)
	registerSearchRoutes(mux, searchHandlers)
	registerUploadRoutes(mux, uploadHandlers, authHandlers.Svc)

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

// registerAuthRoutes wires the login flow and the auth-state endpoints.
func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.Handle("GET /auth/login", http.HandlerFunc(h.Login))
	mux.Handle("GET /auth/callback", http.HandlerFunc(h.Callback))
	mux.Handle("POST /auth/logout", http.HandlerFunc(h.Logout))

	// Auth-state endpoints resolve the session themselves so that an
	// expired or missing session folds into "unauthenticated" instead of 401.
	mux.Handle("GET /api/auth/status", http.HandlerFunc(h.Status))
	mux.Handle("POST /api/auth/refresh", http.HandlerFunc(h.Refresh))
	mux.Handle("POST /api/auth/session/refresh", http.HandlerFunc(h.RefreshSession))

	mux.Handle("POST /api/auth/verification/poll", http.HandlerFunc(h.StartPolling))
	mux.Handle("DELETE /api/auth/verification/poll", http.HandlerFunc(h.StopPolling))
	mux.Handle("POST /api/auth/verification/resend", RequireAuth(h.Svc)(http.HandlerFunc(h.ResendVerification)))
}

// registerProfileRoutes wires profile and address CRUD behind RequireAuth.
func registerProfileRoutes(mux *http.ServeMux, h *ProfileHandlers, auth AuthServiceInterface) {
	requireAuth := RequireAuth(auth)

	mux.Handle("GET /api/profile", requireAuth(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /api/profile", requireAuth(http.HandlerFunc(h.Upsert)))
	mux.Handle("DELETE /api/profile", requireAuth(http.HandlerFunc(h.Delete)))
	mux.Handle("POST /api/profile/onboarding/complete", requireAuth(http.HandlerFunc(h.CompleteOnboarding)))

	mux.Handle("POST /api/profile/addresses", requireAuth(http.HandlerFunc(h.CreateAddress)))
	mux.Handle("GET /api/profile/addresses", requireAuth(http.HandlerFunc(h.ListAddresses)))
	mux.Handle("PATCH /api/profile/addresses/{id}", requireAuth(http.HandlerFunc(h.UpdateAddress)))
	mux.Handle("DELETE /api/profile/addresses/{id}", requireAuth(http.HandlerFunc(h.DeleteAddress)))
}

// registerSearchRoutes wires category search. Search is public; onboarding
// screens hit it before a session exists.
func registerSearchRoutes(mux *http.ServeMux, h *SearchHandlers) {
	mux.Handle("GET /api/categories/search", http.HandlerFunc(h.Categories))
}

// registerUploadRoutes wires file upload endpoints behind RequireAuth.
func registerUploadRoutes(mux *http.ServeMux, h *UploadHandlers, auth AuthServiceInterface) {
	requireAuth := RequireAuth(auth)

	mux.Handle("POST /api/uploads/avatar/import", requireAuth(http.HandlerFunc(h.ImportAvatar)))
	mux.Handle("POST /api/uploads/{kind}", requireAuth(http.HandlerFunc(h.Upload)))
	mux.Handle("DELETE /api/uploads", requireAuth(http.HandlerFunc(h.Delete)))
	mux.Handle("GET /api/uploads/presign", requireAuth(http.HandlerFunc(h.Presign)))
}
