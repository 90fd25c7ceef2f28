package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scorevo/internal/service"
)

// API wires the core services into HTTP handlers.
type API struct {
	users       *service.UserService
	activities  *service.ActivityService
	scores      *service.ScoreService
	invitations *service.InvitationService
}

// New returns an API over the given services.
func New(users *service.UserService, activities *service.ActivityService, scores *service.ScoreService, invitations *service.InvitationService) *API {
	return &API{
		users:       users,
		activities:  activities,
		scores:      scores,
		invitations: invitations,
	}
}

// RouterOptions controls cross-cutting router behaviour.
type RouterOptions struct {
	AllowedOrigins []string
}

// Router builds the chi router with health, metrics, and all API endpoints.
func (a *API) Router(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	allowed := opts.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", callerHeader},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))
	r.Use(httprate.Limit(100, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/users", a.handleRegisterUser)

		r.Route("/activities", func(r chi.Router) {
			r.Post("/", a.handleCreateActivity)
			r.Get("/", a.handleListActivities)

			r.Route("/{activityID}", func(r chi.Router) {
				r.Get("/", a.handleGetActivity)
				r.Put("/", a.handleUpdateActivity)
				r.Delete("/", a.handleDeleteActivity)

				r.Post("/participants", a.handleAddParticipant)
				r.Post("/participants/email", a.handleAddParticipantByEmail)
				r.Get("/participants/{userID}", a.handleIsParticipant)
				r.Delete("/participants/{userID}", a.handleRemoveParticipant)

				r.Post("/scores/free-increment", a.handleAddFreeIncrementScore)
				r.Post("/scores/penalty-balance", a.handleAddPenaltyBalanceScore)
				r.Get("/scores", a.handleListActivityScores)
				r.Get("/scores/user/{userID}", a.handleListUserScores)
				r.Get("/totals", a.handleCurrentTotals)
			})
		})

		r.Delete("/scores/{scoreID}", a.handleDeleteScore)

		r.Route("/invitations", func(r chi.Router) {
			r.Post("/", a.handleCreateInvitation)
			r.Get("/pending", a.handleListPendingInvitations)
			r.Get("/token/{token}", a.handleGetInvitationByToken)
			r.Post("/{token}/accept", a.handleAcceptInvitation)
			r.Post("/{token}/decline", a.handleDeclineInvitation)
		})
	})

	return r
}
