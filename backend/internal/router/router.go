package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/klauspost/compress/gzhttp"

	"github.com/oboe-board/oboe/backend/internal/handler"
	mw "github.com/oboe-board/oboe/shared/middleware"
	"github.com/oboe-board/oboe/shared/middleware/metrics"
)

type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	HTTPS          bool
}

// New creates and configures a new chi router with all the routes.
func New(h *handler.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", mw.RequestIDHeader},
		ExposedHeaders: []string{"Location", mw.RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(mw.SecurityHeaders(opts.HTTPS))

	// probes and metrics skip compression and the request timeout
	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.Ready)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) })
		if opts.RequestTimeout > 0 {
			r.Use(chimw.Timeout(opts.RequestTimeout))
		}

		r.Get("/threads", h.ListThreads)
		r.Post("/threads", h.CreateThread)
		r.Get("/threads/{thread}", h.GetThread)
		r.Post("/threads/{thread}/replies", h.CreateReply)
		r.Get("/threads/{thread}/replies", h.RepliesAfter)
		r.Get("/threads/{thread}/latest", h.LatestPost)
		r.Get("/gallery", h.Gallery)
	})

	return r
}
