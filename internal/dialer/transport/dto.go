// Package transport defines request DTOs for the dialer command surface.
package transport

import "github.com/google/uuid"

// SelectLeadRequest marks a queued lead as next to dial.
type SelectLeadRequest struct {
	LeadID uuid.UUID `json:"leadId" validate:"required"`
}

// EndCallRequest ends the in-flight call with an outcome. Outcome values
// mirror the quick-outcome buttons plus the terminal dispositions the
// engine itself produces.
type EndCallRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=interested not_interested callback completed missed voicemail failed"`
	Notes   string `json:"notes,omitempty" validate:"max=2000"`
}

// MoveLeadRequest moves a lead between the rep and AI queues.
type MoveLeadRequest struct {
	LeadID uuid.UUID `json:"leadId" validate:"required"`
	From   string    `json:"from" validate:"required,oneof=rep ai"`
	To     string    `json:"to" validate:"required,oneof=rep ai,nefield=From"`
}

// ReorderQueueRequest re-sorts a queue on demand.
type ReorderQueueRequest struct {
	Queue string `json:"queue" validate:"required,oneof=rep ai"`
}

// SetAuditRequest toggles the audit-logging compliance signal.
type SetAuditRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}
