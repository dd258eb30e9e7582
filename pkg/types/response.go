package types

// SuccessEnvelope wraps every successful response body under a data key so
// clients unmarshal one shape regardless of endpoint.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorDetail is the client-facing error payload. Code is a stable machine
// identifier; Message is safe to show to users.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an ErrorDetail under an error key, mirroring the
// success envelope.
type ErrorEnvelope struct {
	Error ErrorDetail `json:"error"`
}
