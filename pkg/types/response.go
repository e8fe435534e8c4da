// Package types defines the JSON envelopes shared by every API response.
package types

// Meta is echoed alongside every payload so clients can log the status
// without inspecting transport headers.
type Meta struct {
	HTTPStatus int `json:"http_status"`
}

type SuccessEnvelope struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
	Meta  Meta     `json:"meta"`
}
