package server

import (
	"errors"
	"net/http"

	"radiocode/internal/decoder"
)

const (
	hintClient = "Check your request and try again"
	hintServer = "Contact support if this persists"

	msgInternal = "Internal server error"
)

// classify maps a decode error to a status code and the message safe to
// return. Client-caused errors surface their message verbatim.
func classify(err error) (int, string) {
	var de *decoder.Error
	if decoder.IsClientError(err) && errors.As(err, &de) {
		return http.StatusBadRequest, de.Message()
	}
	return http.StatusInternalServerError, msgInternal
}

func outcomeFor(status int) string {
	switch {
	case status < 400:
		return "ok"
	case status < 500:
		return "client_error"
	default:
		return "server_error"
	}
}
