// Package types holds the wire envelopes shared by every API response so
// terminal clients can decode success and failure uniformly.
package types

// SuccessEnvelope wraps every 2xx JSON body under a "data" key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error body. Details carries field-level
// validation messages when the error code allows them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every non-2xx JSON body under an "error" key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
