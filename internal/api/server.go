// Package api exposes the report aggregator over HTTP.
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/dyike/compdata/config"
	"github.com/dyike/compdata/internal/logging"
	"github.com/dyike/compdata/models"
)

const requestIDHeader = "X-Request-ID"

// Headroom past the worst-case report for encoding and writing the response.
const writeMargin = 10 * time.Second

// Reporter builds the report for one company query.
type Reporter interface {
	Report(ctx context.Context, company string) (*models.AggregatedReport, error)
}

// NewRouter wires the routes behind CORS, panic recovery, request ids and
// access logging.
func NewRouter(reporter Reporter, logger *logrus.Logger) http.Handler {
	h := &handler{reporter: reporter, logger: logger}

	router := mux.NewRouter()
	router.HandleFunc("/", h.root).Methods(http.MethodGet)
	router.HandleFunc("/get_compdata", h.getCompData).Methods(http.MethodPost)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	router.Use(requestIDMiddleware(logger))

	var root http.Handler = router
	root = handlers.CustomLoggingHandler(io.Discard, root, accessLogFormatter(logger))
	root = handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger),
		handlers.PrintRecoveryStack(true),
	)(root)
	root = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Accept", "Authorization", "Content-Type", "Origin", requestIDHeader}),
	)(root)
	return root
}

// NewServer returns the HTTP server for cfg. The write timeout outlasts
// cfg.RequestBudget so a degraded report still reaches the client.
func NewServer(cfg *config.Config, reporter Reporter, logger *logrus.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewRouter(reporter, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestBudget() + writeMargin,
		IdleTimeout:       120 * time.Second,
	}
}

func requestIDMiddleware(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			entry := logger.WithField("request_id", requestID)
			next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), entry)))
		})
	}
}

func accessLogFormatter(logger *logrus.Logger) handlers.LogFormatter {
	return func(_ io.Writer, params handlers.LogFormatterParams) {
		logger.WithFields(logrus.Fields{
			"method":   params.Request.Method,
			"path":     params.URL.Path,
			"status":   params.StatusCode,
			"size":     params.Size,
			"duration": time.Since(params.TimeStamp).String(),
			"remote":   params.Request.RemoteAddr,
		}).Info("http request")
	}
}
