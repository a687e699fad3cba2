// Package gateway exposes the POI database functions over HTTP.
package gateway

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"poimap/internal/logging"
	"poimap/internal/metrics"
	"poimap/internal/mutation"
	"poimap/internal/poi"
)

// Store is the database side of the gateway. postgres.POIRepo implements it.
type Store interface {
	FeatureCollection(ctx context.Context, q poi.Query) ([]byte, error)
	Insert(ctx context.Context, lat, lon float64, name string) (int64, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Ping(ctx context.Context) error
}

type Options struct {
	BasePath    string
	CORSOrigins []string
	// RateLimit is requests per minute per client IP; 0 disables it.
	RateLimit   int
	DefaultName string
}

// Server holds the handlers and their dependencies.
type Server struct {
	store    Store
	opts     Options
	validate *validator.Validate
}

func New(store Store, opts Options) *Server {
	opts.BasePath = "/" + strings.Trim(opts.BasePath, "/")
	if opts.BasePath == "/" {
		opts.BasePath = ""
	}
	if opts.DefaultName == "" {
		opts.DefaultName = mutation.DefaultName
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{
		store:    store,
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Accept"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         86400,
	}))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	api := func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.opts.RateLimit, time.Minute))
		}
		r.Get("/poi", s.listPOI)
		r.Post("/poi_insert", s.insertPOI)
		r.Post("/poi_delete", s.deletePOI)
	}
	if s.opts.BasePath == "" {
		r.Group(api)
	} else {
		r.Route(s.opts.BasePath, api)
	}
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
