package server

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiocode/internal/decoder"
	"radiocode/internal/shared"
)

type testEnv struct {
	api    *API
	server *httptest.Server
	table  string
}

func newTestEnv(t *testing.T, table string, apiKey string) *testEnv {
	t.Helper()
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	api := &API{
		Registry:     decoder.Builtin(decoder.Options{FordTable: table}),
		History:      NewMemoryStore(100),
		Metrics:      NewMetrics(reg),
		MaxBodyBytes: 1024,
	}
	if apiKey != "" {
		api.APIKeyDigest = shared.HashAPIKey(apiKey)
	}
	srv := httptest.NewServer(api.Handler(reg))
	t.Cleanup(srv.Close)
	return &testEnv{api: api, server: srv, table: table}
}

func writeFordTable(t *testing.T, size int, entries map[int]uint16) string {
	t.Helper()
	buf := make([]byte, size)
	for off, v := range entries {
		binary.LittleEndian.PutUint16(buf[off:], v)
	}
	path := filepath.Join(t.TempDir(), "radiocodes.bin")
	require.NoError(t, os.WriteFile(path, buf, 0o600))
	return path
}

func (e *testEnv) do(t *testing.T, method, path, body string, header map[string]string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func decodeEnvelope(t *testing.T, b []byte) shared.ErrorBody {
	t.Helper()
	var env shared.ErrorEnvelope
	require.NoError(t, json.Unmarshal(b, &env), string(b))
	return env.Error
}

func TestRootHealthManufacturers(t *testing.T) {
	e := newTestEnv(t, "", "")
	want := []string{"dacia", "ford", "renault"}

	resp, b := e.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info shared.ServiceInfo
	require.NoError(t, json.Unmarshal(b, &info))
	assert.Equal(t, ServiceName, info.Service)
	assert.Equal(t, "running", info.Status)
	assert.Equal(t, Version, info.Version)
	if diff := cmp.Diff(want, info.Manufacturers); diff != "" {
		t.Fatalf("root manufacturers mismatch (-want +got):\n%s", diff)
	}

	resp, b = e.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(b))

	resp, b = e.do(t, http.MethodGet, "/manufacturers", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"manufacturers":["dacia","ford","renault"]}`, string(b))
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	e := newTestEnv(t, "", "")

	resp, b := e.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, decodeEnvelope(t, b).Code)

	resp, b = e.do(t, http.MethodGet, "/decode", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "Method not allowed", decodeEnvelope(t, b).Message)
}

func TestDecodeSuccess(t *testing.T) {
	table := writeFordTable(t, 4_000_000, map[int]uint16{0: 7, 2_000_000: 1234})
	e := newTestEnv(t, table, "")

	tests := []struct {
		name string
		body string
		want string
	}{
		{"dacia", `{"make":"dacia","security_hash":"B123"}`, `{"make":"Dacia","unlock_code":"683","security_hash":"B123"}`},
		{"renault mixed case", `{"make":" Renault ","security_hash":"b123","vin":"VF1"}`, `{"make":"Renault","unlock_code":"683","security_hash":"b123"}`},
		{"ford M", `{"make":"FORD","serial_number":"M000000"}`, `{"make":"Ford","unlock_code":"0007","serial_number":"M000000"}`},
		{"ford V", `{"make":"ford","serial_number":"V000000"}`, `{"make":"Ford","unlock_code":"1234","serial_number":"V000000"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, b := e.do(t, http.MethodPost, "/decode", tt.body, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(b))
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}

func TestDecodeClientErrors(t *testing.T) {
	table := writeFordTable(t, 10, nil)
	e := newTestEnv(t, table, "")

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"unsupported", `{"make":"toyota","serial_number":"M000000"}`, "Unsupported manufacturer: toyota"},
		{"leading A0", `{"make":"dacia","security_hash":"A0123"}`, "Invalid Dacia security hash format (Expected format: B123, C321, D456, etc.)"},
		{"missing hash", `{"make":"renault"}`, "Renault requires a security_hash"},
		{"missing serial", `{"make":"ford"}`, "Ford requires a serial_number"},
		{"bad serial", `{"make":"ford","serial_number":"X000000"}`, "Invalid Ford serial format (Expected format: M123456 or V123456)"},
		{"out of range", `{"make":"ford","serial_number":"M999999"}`, "Serial number out of range"},
		{"missing make", `{"security_hash":"B123"}`, "Missing required field: make"},
		{"bad json", `{"make":`, "Invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, b := e.do(t, http.MethodPost, "/decode", tt.body, nil)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(b))
			if diff := cmp.Diff(shared.ErrorBody{Code: 400, Message: tt.msg, Hint: hintClient}, decodeEnvelope(t, b)); diff != "" {
				t.Fatalf("envelope mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeServerErrorHidesDetail(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "radiocodes.bin")
	e := newTestEnv(t, missing, "")

	resp, b := e.do(t, http.MethodPost, "/decode", `{"make":"ford","serial_number":"M000000"}`, nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, shared.ErrorBody{Code: 500, Message: "Internal server error", Hint: hintServer}, decodeEnvelope(t, b))
	assert.NotContains(t, string(b), missing)
}

func TestDecodeBodyTooLarge(t *testing.T) {
	e := newTestEnv(t, "", "")
	body := `{"make":"dacia","vin":"` + strings.Repeat("x", 2048) + `"}`
	resp, _ := e.do(t, http.MethodPost, "/decode", body, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestRequireAPIKey(t *testing.T) {
	e := newTestEnv(t, "", "s3cret")
	body := `{"make":"dacia","security_hash":"B123"}`

	resp, b := e.do(t, http.MethodPost, "/decode", body, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid API key", decodeEnvelope(t, b).Message)

	resp, _ = e.do(t, http.MethodPost, "/decode", body, map[string]string{"X-API-Key": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/decode", body, map[string]string{"X-API-Key": "s3cret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// read-only endpoints stay open
	resp, _ = e.do(t, http.MethodGet, "/manufacturers", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequestID(t *testing.T) {
	e := newTestEnv(t, "", "")

	resp, _ := e.do(t, http.MethodGet, "/health", "", map[string]string{"X-Request-Id": "abc-123"})
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-Id"))

	resp, _ = e.do(t, http.MethodGet, "/health", "", nil)
	assert.Len(t, resp.Header.Get("X-Request-Id"), 36)
}

func TestHistory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.bin")
	e := newTestEnv(t, missing, "")

	e.do(t, http.MethodPost, "/decode", `{"make":"dacia","security_hash":"B123"}`, map[string]string{"X-Request-Id": "r1"})
	e.do(t, http.MethodPost, "/decode", `{"make":"toyota","vin":"JT1"}`, map[string]string{"X-Request-Id": "r2"})
	e.do(t, http.MethodPost, "/decode", `{"make":"ford","serial_number":"M000000"}`, map[string]string{"X-Request-Id": "r3"})

	resp, b := e.do(t, http.MethodGet, "/history?limit=2", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hr shared.HistoryResponse
	require.NoError(t, json.Unmarshal(b, &hr))
	require.Len(t, hr.Entries, 2)

	assert.Equal(t, "r3", hr.Entries[0].RequestID)
	assert.Equal(t, "server_error", hr.Entries[0].Status)
	assert.Equal(t, "Internal server error", hr.Entries[0].Message)
	assert.Equal(t, "serial_number", hr.Entries[0].Field)

	assert.Equal(t, "r2", hr.Entries[1].RequestID)
	assert.Equal(t, "client_error", hr.Entries[1].Status)
	assert.Equal(t, "Unsupported manufacturer: toyota", hr.Entries[1].Message)

	n, err := e.api.History.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	resp, _ = e.do(t, http.MethodGet, "/history?limit=zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t, "", "")
	e.do(t, http.MethodPost, "/decode", `{"make":"renault","security_hash":"B123"}`, nil)
	e.do(t, http.MethodPost, "/decode", `{"make":"toyota"}`, nil)

	resp, b := e.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := string(b)
	assert.Contains(t, out, `radiocode_decode_requests_total{make="renault",outcome="ok"} 1`)
	assert.Contains(t, out, `radiocode_decode_requests_total{make="unsupported",outcome="client_error"} 1`)
	assert.Contains(t, out, "radiocode_decode_duration_seconds_bucket")
}

func TestResponsesAreCompressed(t *testing.T) {
	e := newTestEnv(t, "", "")
	req, err := http.NewRequest(http.MethodGet, e.server.URL+"/metrics", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
}

type brokenStore struct{ MemoryStore }

func (*brokenStore) Record(context.Context, DecodeRecord) error {
	return errors.New("disk full")
}

func TestHistoryFailureDoesNotFailDecode(t *testing.T) {
	e := newTestEnv(t, "", "")
	e.api.History = &brokenStore{}

	resp, b := e.do(t, http.MethodPost, "/decode", `{"make":"dacia","security_hash":"B123"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"make":"Dacia","unlock_code":"683","security_hash":"B123"}`, string(b))
}

func TestClassify(t *testing.T) {
	status, msg := classify(&decoder.Error{Kind: decoder.ErrOutOfRange, Msg: "Serial number out of range"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Serial number out of range", msg)

	status, msg = classify(&decoder.Error{Kind: decoder.ErrResourceUnavailable, Msg: "table gone", Err: os.ErrNotExist})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, msgInternal, msg)

	status, _ = classify(bytes.ErrTooLarge)
	assert.Equal(t, http.StatusInternalServerError, status)
}
