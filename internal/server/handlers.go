package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"radiocode/internal/decoder"
	"radiocode/internal/shared"
)

const (
	ServiceName = "Car Radio Decoder API"
	Version     = "1.0.0"

	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

type API struct {
	Registry *decoder.Registry
	History  HistoryStore
	Metrics  *Metrics
	Log      *zap.Logger

	// APIKeyDigest is shared.HashAPIKey of the configured key; empty
	// disables authentication.
	APIKeyDigest string
	MaxBodyBytes int64
}

func (a *API) logger() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	hint := hintClient
	if code >= 500 {
		hint = hintServer
	}
	writeJSON(w, code, shared.ErrorEnvelope{Error: shared.ErrorBody{Code: code, Message: msg, Hint: hint}})
}

func (a *API) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	limit := a.MaxBodyBytes
	if limit <= 0 {
		limit = 64 << 10
	}
	return io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
}

func (a *API) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, shared.ServiceInfo{
		Service:       ServiceName,
		Status:        "running",
		Version:       Version,
		Health:        "/health",
		Metrics:       "/metrics",
		Manufacturers: a.Registry.Names(),
	})
}

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, shared.HealthResponse{Status: "ok"})
}

func (a *API) Manufacturers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, shared.ManufacturersResponse{Manufacturers: a.Registry.Names()})
}

func (a *API) Decode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	body, err := a.readBody(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var req shared.DecodeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	start := time.Now()
	resp, err := a.Registry.Decode(req)
	status, msg := http.StatusOK, ""
	if err != nil {
		status, msg = classify(err)
		if status >= 500 {
			a.logger().Error("decode failed",
				zap.String("request_id", RequestID(r.Context())),
				zap.String("make", req.Make),
				zap.Error(err))
		}
	}
	a.Metrics.observeDecode(metricMake(a.Registry, req.Make), outcomeFor(status), time.Since(start))
	a.record(r, req, status, msg)

	if err != nil {
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) record(r *http.Request, req shared.DecodeRequest, status int, msg string) {
	if a.History == nil {
		return
	}
	rec := DecodeRecord{
		ID:        newUUID(),
		RequestID: RequestID(r.Context()),
		Make:      req.Make,
		Field:     fieldOf(req),
		Status:    outcomeFor(status),
		Message:   msg,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.History.Record(r.Context(), rec); err != nil {
		a.logger().Warn("history write failed", zap.String("request_id", rec.RequestID), zap.Error(err))
	}
}

// ListHistory lists recent decode attempts, newest first.
func (a *API) ListHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	recs, err := a.History.Recent(r.Context(), limit)
	if err != nil {
		a.logger().Error("history read failed", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	out := shared.HistoryResponse{Entries: make([]shared.HistoryEntry, 0, len(recs))}
	for _, rec := range recs {
		out.Entries = append(out.Entries, rec.View())
	}
	writeJSON(w, http.StatusOK, out)
}

func fieldOf(req shared.DecodeRequest) string {
	switch {
	case req.SerialNumber != "":
		return "serial_number"
	case req.SecurityHash != "":
		return "security_hash"
	case req.VIN != "":
		return "vin"
	}
	return ""
}

// metricMake keeps label cardinality bounded to registered makes.
func metricMake(reg *decoder.Registry, name string) string {
	if _, ok := reg.Lookup(name); ok {
		return strings.ToLower(strings.TrimSpace(name))
	}
	return "unsupported"
}
