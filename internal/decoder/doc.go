// Package decoder turns a manufacturer-specific input (serial number or
// security hash) into a car radio unlock code.
//
// Owns:
//   - the Decoder contract and the closed set of builtin decoders
//   - the manufacturer Registry and request dispatch
//   - the error taxonomy used by the HTTP layer to pick a status code
//
// Invariants:
//   - registry keys are trimmed and lowercased on Register and Lookup
//   - decoders are pure apart from the Ford lookup-table read
//   - the Registry is fully built by Builtin before any request is served
package decoder
