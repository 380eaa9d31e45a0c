package shared

// DecodeRequest is the body of POST /decode. Which optional field is
// required depends on the manufacturer; decoders enforce that themselves.
type DecodeRequest struct {
	Make         string `json:"make"`
	SerialNumber string `json:"serial_number,omitempty"`
	VIN          string `json:"vin,omitempty"`
	SecurityHash string `json:"security_hash,omitempty"`
}

// DecodeResponse echoes the input field the decoder consumed.
type DecodeResponse struct {
	Make         string `json:"make"`
	UnlockCode   string `json:"unlock_code"`
	SerialNumber string `json:"serial_number,omitempty"`
	VIN          string `json:"vin,omitempty"`
	SecurityHash string `json:"security_hash,omitempty"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

type ManufacturersResponse struct {
	Manufacturers []string `json:"manufacturers"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ServiceInfo struct {
	Service       string   `json:"service"`
	Status        string   `json:"status"`
	Version       string   `json:"version"`
	Health        string   `json:"health"`
	Metrics       string   `json:"metrics"`
	Manufacturers []string `json:"manufacturers"`
}

// HistoryEntry is one decode attempt as returned by GET /history.
type HistoryEntry struct {
	ID        string `json:"id"`
	RequestID string `json:"request_id"`
	Make      string `json:"make"`
	Field     string `json:"field,omitempty"`
	Status    string `json:"status"` // "ok" | "client_error" | "server_error"
	Message   string `json:"message,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}
