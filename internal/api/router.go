package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wonny/swingscan/internal/api/handlers"
	"github.com/wonny/swingscan/pkg/logger"
)

// Handlers groups the endpoint handlers mounted by NewRouter
type Handlers struct {
	Health *handlers.HealthHandler
	Scan   *handlers.ScanHandler
	Market *handlers.MarketHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = jsonStatusHandler(http.StatusNotFound, "Not found")
	r.MethodNotAllowedHandler = jsonStatusHandler(http.StatusMethodNotAllowed, "Method not allowed")

	// Health check
	r.HandleFunc("/health", h.Health.Check).Methods("GET")

	// Routes stay on the root router so a method mismatch yields 405
	// Ranking
	r.HandleFunc("/api/scan", h.Scan.Scan).Methods("POST")

	// Upstream passthrough
	r.HandleFunc("/api/quote/{symbol}", h.Market.GetQuote).Methods("GET")
	r.HandleFunc("/api/fundamentals/{symbol}", h.Market.GetFundamentals).Methods("GET")
	r.HandleFunc("/api/technical/{symbol}/{indicator}", h.Market.GetTechnical).Methods("GET")
	r.HandleFunc("/api/news/{symbol}", h.Market.GetNews).Methods("GET")

	// Apply middleware (first registered runs outermost)
	r.Use(requestIDMiddleware(log))
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

func jsonStatusHandler(status int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": message})
	})
}

// requestIDMiddleware echoes X-Request-ID or assigns a short one, and
// attaches a request-scoped logger to the context
func requestIDMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.New().String()[:8]
			}
			w.Header().Set("X-Request-ID", id)

			ctx := log.WithField("request_id", id).IntoContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			entry := logger.FromContext(r.Context(), log).WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			})
			if rec.status >= http.StatusInternalServerError {
				entry.Warn("HTTP request")
			} else {
				entry.Debug("HTTP request")
			}
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
