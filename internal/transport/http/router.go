package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/virtnum/gateway/internal/transport/http/middleware"
)

// RouterDeps bundles everything the router mounts.
type RouterDeps struct {
	Auth     AuthService
	Sessions middleware.SessionValidator
	Wallet   WalletService
	Numbers  NumberService
	Messages MessageService
	Logger   *slog.Logger
}

// NewRouter builds the full HTTP surface: public auth endpoints, the
// session-protected API, health and metrics.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(MetricsMiddleware)

	authHandler := NewAuthHandler(deps.Auth, deps.Logger)
	walletHandler := NewWalletHandler(deps.Wallet, deps.Logger)
	numbersHandler := NewNumbersHandler(deps.Numbers, deps.Logger)
	messagesHandler := NewMessagesHandler(deps.Messages, deps.Logger)

	r.Route("/api", func(api chi.Router) {
		authHandler.RegisterPublicRoutes(api)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.SessionMiddleware(deps.Sessions, deps.Logger))
			authHandler.RegisterProtectedRoutes(protected)
			walletHandler.RegisterRoutes(protected)
			numbersHandler.RegisterRoutes(protected)
			messagesHandler.RegisterRoutes(protected)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
