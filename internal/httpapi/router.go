package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mediakit/internal/httpapi/handlers"
	"mediakit/internal/httpkit"
	"mediakit/internal/pkg/logger"
	"mediakit/internal/pkg/middleware"
	"mediakit/internal/ports"
)

type Deps struct {
	Jobs  handlers.JobStore
	Queue handlers.JobQueue
	DB    handlers.Pinger
	SP    ports.StorageProvider

	APIKey      string
	CORSOrigins string
	Log         *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))

	allowedOrigins := httpkit.SplitOrigins(d.CORSOrigins)
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173"}
	}
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Accept", middleware.APIKeyHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAgeSeconds:  600,
	}))

	h := handlers.New(handlers.Deps{
		Jobs:  d.Jobs,
		Queue: d.Queue,
		DB:    d.DB,
		SP:    d.SP,
		Log:   log,
	})
	wrap := func(fn middleware.ErrorHandlerFunc) http.HandlerFunc {
		return middleware.WrapHandler(log, fn)
	}

	// ---- HEALTH ----
	r.Get("/health", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.APIKey(d.APIKey))

		// ---- JOB SUBMISSION ----
		r.Post("/ffmpeg/compose", wrap(h.PostCompose))
		r.Post("/caption-video", wrap(h.PostCaption))
		r.Post("/media/download", wrap(h.PostMediaDownload))
		r.Post("/media/transcribe", wrap(h.PostMediaTranscribe))

		// ---- JOBS ----
		r.Get("/jobs", wrap(h.ListJobs))
		r.Get("/jobs/{jobId}", wrap(h.GetJob))
	})

	return r
}
