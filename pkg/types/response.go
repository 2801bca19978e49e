package types

// SuccessEnvelope wraps every successful response body so clients can
// always read the payload from the data field.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing half of a coded error. Details is
// populated only for codes that allow exposing them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under the error field, mirroring
// SuccessEnvelope for failures.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
