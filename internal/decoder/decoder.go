package decoder

import "radiocode/internal/shared"

// Decoder computes an unlock code for one request.
type Decoder interface {
	// Compute validates the relevant input field and returns the unlock code.
	Compute() (string, error)
	// Decode checks the required field is present, calls Compute and
	// builds the response.
	Decode() (*shared.DecodeResponse, error)
}

// Factory builds a Decoder bound to a request. It may fail with
// ErrResourceUnavailable when a backing resource is missing.
type Factory func(req shared.DecodeRequest) (Decoder, error)
