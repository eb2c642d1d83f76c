package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/handler/http/linebot"
	"github.com/cmlabs-hris/kintai-line-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/kintai-line-go/internal/handler/http/response"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

const requestTimeout = 30 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Auth          AuthHandler
	User          UserHandler
	Company       CompanyHandler
	Attendance    AttendanceHandler
	ChangeRequest ChangeRequestHandler
	Share         ShareHandler
	Event         EventHandler
	Webhook       linebot.WebhookHandler
}

func NewRouter(logger *slog.Logger, allowedOrigins []string, JWTService jwt.Service, db Pinger, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			response.ServiceUnavailable(w, "Database unreachable")
			return
		}
		response.Success(w, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Post("/webhook/line", h.Webhook.Callback)

	authenticated := func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
		r.Use(chiMiddleware.Timeout(requestTimeout))
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/liff", h.Auth.LoginWithLIFF)
			r.Get("/login/line", h.Auth.LoginWithLine)
			r.Get("/oauth/callback/line", h.Auth.OAuthCallbackLine)
			r.Post("/verify-email", h.Auth.VerifyEmail)
		})

		// Anyone holding the token
		r.Get("/public/shares/{token}", h.Share.Resolve)

		r.Group(func(r chi.Router) {
			authenticated(r)
			r.Get("/me", h.User.Me)
			r.Put("/me", h.User.UpdateMe)
		})

		r.Route("/companies", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				authenticated(r)
				r.Get("/", h.Company.List)
				r.Post("/", h.Company.Create)
				r.Post("/link", h.Company.Link)
			})

			r.Route("/{companyID}", func(r chi.Router) {
				r.Use(middleware.RequireCompany)

				// Authenticated by a stream token in the query string
				r.Get("/events", h.Event.Stream)

				r.Group(func(r chi.Router) {
					authenticated(r)

					r.Get("/", h.Company.Get)
					r.Get("/members", h.Company.ListMembers)
					r.Put("/members/{userID}", h.Company.SetAdmin)
					r.Post("/join-code", h.Company.RegenerateJoinCode)
					r.Post("/events/token", h.Event.StreamToken)

					r.Route("/attendance", func(r chi.Router) {
						r.Get("/", h.Attendance.List)
						r.Post("/", h.Attendance.Upsert)
						r.Post("/actions", h.Attendance.RecordAction)
						r.Get("/today", h.Attendance.Today)
						r.Get("/export", h.Attendance.Export)
						r.Put("/{id}", h.Attendance.Update)
					})

					r.Route("/change-requests", func(r chi.Router) {
						r.Get("/", h.ChangeRequest.List)
						r.Post("/", h.ChangeRequest.Create)
						r.Get("/{id}", h.ChangeRequest.Get)
						r.Post("/{id}/review", h.ChangeRequest.Review)
						r.Delete("/{id}", h.ChangeRequest.Withdraw)
					})

					r.Route("/shares", func(r chi.Router) {
						r.Get("/", h.Share.List)
						r.Post("/", h.Share.Create)
						r.Delete("/{id}", h.Share.Delete)
					})
				})
			})
		})
	})
	return r
}
