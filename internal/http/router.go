package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stoptracker/internal/auth"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/backup"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/expense"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/export"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/reconcile"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/settings"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/stats"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/stream"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/workday"
)

type Options struct {
	JWTSecret      string
	DefaultScope   string
	AllowedOrigins []string
	Timeout        time.Duration
}

type Handlers struct {
	Workdays  *workday.Handler
	Expenses  *expense.Handler
	Settings  *settings.Handler
	Stats     *stats.Handler
	Reconcile *reconcile.Handler
	Export    *export.Handler
	Backup    *backup.Handler
	Stream    *stream.Handler
}

func New(opts Options, h Handlers, logger *zap.Logger) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(opts.JWTSecret, opts.DefaultScope, logger))

		// Streams stay open, so only the request/response routes get a timeout.
		r.Route("/stream", h.Stream.Routes)

		r.Group(func(r chi.Router) {
			if opts.Timeout > 0 {
				r.Use(middleware.Timeout(opts.Timeout))
			}

			r.Route("/workdays", h.Workdays.Routes)
			r.Route("/expenses", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Expenses.Routes(r)
			})
			r.Route("/settings", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Settings.Routes(r)
			})
			r.Route("/stats", h.Stats.Routes)
			r.Route("/reconcile", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Reconcile.Routes(r)
			})
			r.Route("/export", h.Export.Routes)
			r.Route("/backup", h.Backup.Routes)
		})
	})

	return router
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
