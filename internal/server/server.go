// Package server exposes the table rows over a read-only HTTP API.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"tabula/internal/db"
	"tabula/internal/source"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

var (
	reset = "\033[0m"
	red   = "\033[31m"
	green = "\033[32m"
)

// APIServer serves the table-data endpoint.
type APIServer struct {
	addr string
	db   *sql.DB
}

// NewAPIServer creates a server listening on addr and reading from database.
func NewAPIServer(addr string, database *sql.DB) *APIServer {
	return &APIServer{
		addr: addr,
		db:   database,
	}
}

type wrappedWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
}

func (w *wrappedWriter) WriteHeader(statusCode int) {
	if w.headerWritten {
		return
	}

	w.ResponseWriter.WriteHeader(statusCode)
	w.statusCode = statusCode
	w.headerWritten = true
}

func (w *wrappedWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *APIServer) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/table-data", s.getTableData).Methods(http.MethodGet)
	router.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet)

	middlewareChain := MiddlewareChain(
		RequestIDMiddleware,
		RequestLoggerMiddleware,
	)
	return middlewareChain(router)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *APIServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server at http://%s", s.addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Printf("Shutting down server")
		return server.Shutdown(shutdownCtx)
	}
}

func (s *APIServer) getTableData(w http.ResponseWriter, r *http.Request) {
	records, err := db.ListTableData(s.db)
	if err != nil {
		log.Printf("Database error: %v", err)
		http.Error(w, "Error fetching data", http.StatusInternalServerError)
		return
	}
	log.Printf("Fetched %d rows", len(records))
	writeJSON(w, http.StatusOK, records)
}

func (s *APIServer) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// RequestIDMiddleware keeps the caller's X-Request-ID, generating one when
// absent, and echoes it on the response.
func RequestIDMiddleware(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(source.RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(source.RequestIDHeader, id)
		}
		w.Header().Set(source.RequestIDHeader, id)
		next.ServeHTTP(w, r)
	}
}

// RequestLoggerMiddleware logs one line per request and allows any origin.
func RequestLoggerMiddleware(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")

		start := time.Now()

		wrapped := &wrappedWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		color := red
		if wrapped.statusCode >= 200 && wrapped.statusCode < 300 {
			color = green
		}

		log.Printf("%s[%d %s]%s %s %s %v", color, wrapped.statusCode, r.Method, reset, r.Header.Get(source.RequestIDHeader), r.URL.Path, time.Since(start))
	}
}

type Middleware func(http.Handler) http.HandlerFunc

// MiddlewareChain applies middlewares so that the first one listed runs
// outermost.
func MiddlewareChain(middlewares ...Middleware) Middleware {
	return func(next http.Handler) http.HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}

		return next.ServeHTTP
	}
}
