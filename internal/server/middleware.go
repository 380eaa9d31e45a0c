package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"radiocode/internal/shared"
)

const headerRequestID = "X-Request-Id"

type ctxKey struct{}

func newUUID() string {
	return uuid.NewString()
}

// RequestID returns the id assigned by the request-id middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Handler wires every route behind request ids, access logging and gzip.
// gatherer serves /metrics; nil disables the endpoint.
func (a *API) Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.Health)
	mux.HandleFunc("/manufacturers", a.Manufacturers)
	mux.HandleFunc("/decode", a.RequireAPIKey(a.Decode))
	if a.History != nil {
		mux.HandleFunc("/history", a.RequireAPIKey(a.ListHistory))
	}
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{DisableCompression: true}))
	}
	mux.HandleFunc("/", a.Root) // exact "/" only, see Root

	return a.withRequestID(a.withAccessLog(gzhttp.GzipHandler(mux)))
}

func (a *API) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" || len(id) > 128 {
			id = newUUID()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

func (a *API) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		a.logger().Info("http request",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// RequireAPIKey rejects requests without a valid X-API-Key header when a
// key is configured.
func (a *API) RequireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.APIKeyDigest == "" {
			next(w, r)
			return
		}
		if !shared.VerifyAPIKey(a.APIKeyDigest, r.Header.Get("X-API-Key")) {
			a.logger().Info("auth rejected",
				zap.String("request_id", RequestID(r.Context())),
				zap.String("path", r.URL.Path))
			writeError(w, http.StatusUnauthorized, "Invalid API key")
			return
		}
		next(w, r)
	}
}
