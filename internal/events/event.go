// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"dialer_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Call Lifecycle Events
// =============================================================================

// CallStarted is published when the engine hands a dial attempt to the
// call-control service.
type CallStarted struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Phone  string    `json:"phone"`
	CallID string    `json:"callId,omitempty"`
}

func (e CallStarted) EventName() string { return "dialer.call.started" }

// CallAnswered is published when a dialing call connects.
type CallAnswered struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	CallID string    `json:"callId,omitempty"`
}

func (e CallAnswered) EventName() string { return "dialer.call.answered" }

// CallMissed is published when a dial attempt ends unanswered
// (missed or voicemail). Streak carries the consecutive-miss count
// after this miss.
type CallMissed struct {
	BaseEvent
	LeadID  uuid.UUID `json:"leadId"`
	Outcome string    `json:"outcome"`
	Streak  int       `json:"streak"`
}

func (e CallMissed) EventName() string { return "dialer.call.missed" }

// CallEnded is published when a call session reaches a terminal outcome.
type CallEnded struct {
	BaseEvent
	LeadID          uuid.UUID `json:"leadId"`
	Outcome         string    `json:"outcome"`
	DurationSeconds int       `json:"durationSeconds"`
}

func (e CallEnded) EventName() string { return "dialer.call.ended" }

// =============================================================================
// Queue Events
// =============================================================================

// QueueReordered is published when a queue is re-sorted, either
// manually or by the miss-streak monitor.
type QueueReordered struct {
	BaseEvent
	Queue   string `json:"queue"`
	Trigger string `json:"trigger"` // "manual" or "miss_streak"
	Size    int    `json:"size"`
}

func (e QueueReordered) EventName() string { return "dialer.queue.reordered" }

// LeadQueueChanged is published when a lead moves between queues.
type LeadQueueChanged struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	From   string    `json:"from"`
	To     string    `json:"to"`
}

func (e LeadQueueChanged) EventName() string { return "dialer.lead.queue_changed" }

// =============================================================================
// Compliance Events
// =============================================================================

// ComplianceUpdated is published whenever any compliance signal changes.
type ComplianceUpdated struct {
	BaseEvent
	DNCChecked    bool `json:"dncChecked"`
	TimeCompliant bool `json:"timeCompliant"`
	AuditEnabled  bool `json:"auditEnabled"`
}

func (e ComplianceUpdated) EventName() string { return "dialer.compliance.updated" }
