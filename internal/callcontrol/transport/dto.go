// Package transport defines the call-control webhook payload.
package transport

// CallEventRequest is the lifecycle update pushed by the call-control
// provider. Events map onto engine commands: ringing and answered move
// the session forward, the rest conclude it.
type CallEventRequest struct {
	CallID string `json:"callId" validate:"required"`
	Event  string `json:"event" validate:"required,oneof=ringing answered no_answer busy voicemail completed failed"`
}
