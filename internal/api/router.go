package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/edge10/backend/pkg/logger"
)

func newRouter(store Store, log *logger.Logger) *mux.Router {
	h := newHandlers(store, log)

	r := mux.NewRouter()
	r.Use(recoveryMiddleware(log))
	r.Use(loggingMiddleware(log))

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/runs/latest", h.latestRun).Methods(http.MethodGet)
	v1.HandleFunc("/runs/latest/candidates", h.latestCandidates).Methods(http.MethodGet)
	v1.HandleFunc("/runs/latest/exclusions", h.latestExclusions).Methods(http.MethodGet)

	return r
}

func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
			}).Debug("Handled request")
		})
	}
}

func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.WithField("panic", rec).Error("Handler panicked")
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
