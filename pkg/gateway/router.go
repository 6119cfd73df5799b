package gateway

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/patientor/platform/pkg/gateway/middleware"
	"github.com/patientor/platform/pkg/observability/metrics"
)

// Registrar is implemented by the domain HTTP handlers.
type Registrar interface {
	Register(router *mux.Router)
}

type Options struct {
	CORSAllowedOrigin string
	RateLimitRPS      int
	RateLimitBurst    int
}

// NewRouter assembles the middleware chain, the service endpoints and every
// handler under /api.
func NewRouter(opts Options, handlers ...Registrar) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.CORS(opts.CORSAllowedOrigin))
	router.Use(middleware.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/metrics", metrics.Handler).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "pong")
	}).Methods(http.MethodGet)

	for _, h := range handlers {
		h.Register(api)
	}

	// Preflight requests only need a matching route; CORS answers them.
	api.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return router
}
