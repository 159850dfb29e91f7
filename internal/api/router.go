// Package api wires handlers and middleware into the HTTP surface.
package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eventbase/server/internal/api/handlers"
	"github.com/eventbase/server/internal/api/middleware"
	"github.com/eventbase/server/internal/config"
	"github.com/eventbase/server/internal/domain/events"
	"github.com/eventbase/server/internal/metrics"
	storagemongo "github.com/eventbase/server/internal/storage/mongo"
)

// BuildInfo carries version identifiers stamped at build time.
type BuildInfo struct {
	Version   string
	GitCommit string
}

// NewRouter assembles the full HTTP handler: routes plus the middleware
// chain. The caller owns the mongo client lifecycle.
func NewRouter(cfg config.Config, logger zerolog.Logger, client *mongo.Client, build BuildInfo) http.Handler {
	db := client.Database(cfg.Database.Name)
	repo := storagemongo.NewEventRepository(db)
	service := events.NewService(repo, logger)

	eventsHandler := handlers.NewEventsHandler(service, cfg.Environment)
	healthChecker := handlers.NewHealthChecker(client, build.Version, build.GitCommit)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handlers.Healthz)
	mux.Handle("/readyz", healthChecker.Readyz())
	mux.Handle("/health", healthChecker.Health())
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/api/v1/events", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.List),
		http.MethodPost: http.HandlerFunc(eventsHandler.Create),
	}))
	mux.Handle("/api/v1/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(eventsHandler.Get),
		http.MethodPatch:  http.HandlerFunc(eventsHandler.Update),
		http.MethodDelete: http.HandlerFunc(eventsHandler.Delete),
	}))

	// Outermost first: recover wraps everything, correlation before tracing
	// so request IDs land on spans, metrics and logging observe the final
	// status, CORS and limits run closest to the handlers.
	var handler http.Handler = mux
	handler = middleware.RequestSize(middleware.DefaultMaxBodySize)(handler)
	handler = middleware.RateLimit(cfg.RateLimit)(handler)
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(logger)(handler)
	handler = middleware.Recover(logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
