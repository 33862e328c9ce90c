// Package api exposes the service over HTTP: authentication, CRUD for the
// six record collections, the migration flow and the financial reports.
// Routing uses chi; all data access goes through the persistence gateway.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tallerhq/backoffice/internal/auth"
	"github.com/tallerhq/backoffice/internal/gateway"
	"github.com/tallerhq/backoffice/internal/i18n"
	"github.com/tallerhq/backoffice/internal/metrics"
	"github.com/tallerhq/backoffice/internal/migration"
)

// Server holds the wired application components behind the HTTP surface.
type Server struct {
	gw      *gateway.Gateway
	auth    auth.Authenticator
	jwt     *auth.JWTManager
	orch    *migration.Orchestrator
	tr      *i18n.Translator
	metrics *metrics.Metrics
	log     *slog.Logger

	// registry backs the /metrics endpoint.
	registry *prometheus.Registry
}

// New assembles the HTTP server over the given components.
func New(gw *gateway.Gateway, authenticator auth.Authenticator, jwt *auth.JWTManager,
	orch *migration.Orchestrator, tr *i18n.Translator, m *metrics.Metrics,
	registry *prometheus.Registry, log *slog.Logger) *Server {
	return &Server{
		gw:       gw,
		auth:     authenticator,
		jwt:      jwt,
		orch:     orch,
		tr:       tr,
		metrics:  m,
		registry: registry,
		log:      log,
	}
}

// Router builds the route tree. Everything under /api except the auth
// endpoints requires a valid session token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/auth/logout", s.handleLogout)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", s.handleListOrders)
				r.Post("/", s.handleCreateOrder)
				r.Put("/{id}", s.handleUpdateOrder)
				r.Delete("/{id}", s.handleDeleteOrder)
			})
			r.Route("/expenses/casual", func(r chi.Router) {
				r.Get("/", s.handleListCasualExpenses)
				r.Post("/", s.handleCreateCasualExpense)
				r.Put("/{id}", s.handleUpdateCasualExpense)
				r.Delete("/{id}", s.handleDeleteCasualExpense)
			})
			r.Route("/expenses/budget", func(r chi.Router) {
				r.Get("/", s.handleListBudgetExpenses)
				r.Post("/", s.handleCreateBudgetExpense)
				r.Put("/{id}", s.handleUpdateBudgetExpense)
				r.Delete("/{id}", s.handleDeleteBudgetExpense)
			})
			r.Route("/licenses", func(r chi.Router) {
				r.Get("/", s.handleListLicenses)
				r.Post("/", s.handleCreateLicense)
				r.Put("/{id}", s.handleUpdateLicense)
				r.Delete("/{id}", s.handleDeleteLicense)
			})
			r.Route("/passwords", func(r chi.Router) {
				r.Get("/", s.handleListPasswords)
				r.Post("/", s.handleCreatePassword)
				r.Put("/{id}", s.handleUpdatePassword)
				r.Delete("/{id}", s.handleDeletePassword)
				r.Post("/{id}/verify", s.handleVerifyPassword)
			})
			r.Route("/servers", func(r chi.Router) {
				r.Get("/", s.handleListServers)
				r.Post("/", s.handleCreateServer)
				r.Put("/{id}", s.handleUpdateServer)
				r.Delete("/{id}", s.handleDeleteServer)
			})

			r.Route("/migration", func(r chi.Router) {
				r.Get("/", s.handleMigrationCheck)
				r.Post("/run", s.handleMigrationRun)
				r.Post("/skip", s.handleMigrationSkip)
			})

			r.Get("/reports/summary", s.handleReportsSummary)
		})
	})

	return r
}
