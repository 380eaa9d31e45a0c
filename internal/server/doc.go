// Package server implements the radio code decoder HTTP API.
//
// Owns:
//   - HTTP routing, handlers, and request/response contracts
//   - translation of decoder errors into the JSON error envelope
//   - the optional API key check, request ids, access logging and metrics
//   - decode history (in-memory or SQLite)
//
// Does not own:
//   - decoding algorithms or the manufacturer registry (package decoder)
//
// Invariants:
//   - JSON responses go through writeJSON / writeError
//   - 5xx responses never carry internal detail; the cause is only logged
//   - a failed history write never fails the decode response
package server
