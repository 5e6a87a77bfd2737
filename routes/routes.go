package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Rackosdra/kt-ex/handlers"
	"github.com/Rackosdra/kt-ex/middleware"
	"github.com/Rackosdra/kt-ex/services"
)

// Handlers bundles everything SetupRoutes mounts. AdminAuth may be nil, in
// which case the admin surface (except login) is not mounted.
type Handlers struct {
	Health     *handlers.HealthHandler
	Webhook    *handlers.WebhookHandler
	Tournament *handlers.TournamentHandler
	Group      *handlers.GroupHandler
	Match      *handlers.MatchHandler
	Court      *handlers.CourtHandler
	Admin      *handlers.AdminHandler
	WebSocket  *handlers.WebSocketHandler

	AdminAuth *services.AuthService
}

func SetupRoutes(router *chi.Mux, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/health", h.Health.Handler)

	router.Route("/webhook", func(r chi.Router) {
		r.Post("/kickertool", h.Webhook.ReceiveHandler)
		r.Post("/test", h.Webhook.TestHandler)
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListHandler)
		r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)
		r.Get("/{tournamentID}/entries", h.Tournament.ListEntriesHandler)
		r.Get("/{tournamentID}/matches", h.Tournament.ListMatchesHandler)
		r.Get("/{tournamentID}/courts", h.Tournament.ListCourtsHandler)
		r.Get("/{tournamentID}/search", h.Tournament.SearchHandler)

		r.Put("/{tournamentID}/matches/{matchID}/result", h.Match.SetResultHandler)
		r.Put("/{tournamentID}/matches/{matchID}/live-result", h.Match.SetLiveResultHandler)
	})

	router.Get("/groups/{groupID}", h.Group.GetDetailHandler)
	router.Get("/matches/{matchID}", h.Match.GetByIDHandler)
	router.Get("/courts/{courtID}", h.Court.GetByIDHandler)

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	if h.AdminAuth != nil && h.Admin != nil {
		router.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Admin.LoginHandler)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(h.AdminAuth))

				r.Post("/tournaments/{tournamentID}/sync", h.Admin.TriggerSyncHandler)
				r.Delete("/tournaments/{tournamentID}", h.Admin.DeleteTournamentHandler)
				r.Get("/tournaments/{tournamentID}/webhook-logs", h.Admin.ListWebhookLogsHandler)
				r.Delete("/webhook-logs", h.Admin.ResetWebhookLogsHandler)
			})
		})
	}

	router.Get("/docs/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "docs/swagger.json")
	})
	router.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.json"),
	))
}
