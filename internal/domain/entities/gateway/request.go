// Package gateway defines the transport-agnostic request and response
// shapes exchanged with the USSD gateway in front of this service.
package gateway

// Request is one inbound exchange: a single line of user input for an
// ongoing (or new) session.
type Request struct {
	SessionID   string `json:"session_id" binding:"required"`
	MSISDN      string `json:"msisdn" binding:"required"`
	Input       string `json:"input"`
	Language    string `json:"language"`
	ServiceCode string `json:"service_code"`
}

// Response is the display text returned for one exchange. EndSession tells
// the transport to close the dialog after showing the message.
type Response struct {
	SessionID  string `json:"session_id"`
	MSISDN     string `json:"msisdn"`
	Message    string `json:"message"`
	EndSession bool   `json:"end_session"`
}
