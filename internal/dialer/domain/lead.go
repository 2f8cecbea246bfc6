// Package domain provides core types and business rules for the dialer
// bounded context.
package domain

import "github.com/google/uuid"

// Priority is the CRM-assigned lead priority band.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// QueueName identifies one of the two dial queues.
type QueueName string

const (
	// QueueRep is the human-handled dial queue.
	QueueRep QueueName = "rep"
	// QueueAI is the autopilot-eligible dial queue.
	QueueAI QueueName = "ai"
)

// ValidQueue reports whether q names a known queue.
func ValidQueue(q QueueName) bool {
	return q == QueueRep || q == QueueAI
}

// Lead is the engine's view of a prospect record. Leads are owned by the
// lead store; the engine references them by ID and never deletes them,
// only removes them from a queue.
type Lead struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Phone                string    `json:"phone"`
	Priority             Priority  `json:"priority"`
	Score                int       `json:"score"`                // 0-100 quality estimate
	ConversionLikelihood int       `json:"conversionLikelihood"` // 0-100
	// SpeedToLeadMinutes is minutes elapsed since the lead entered the
	// system. Absent means the lead is very old.
	SpeedToLeadMinutes *int `json:"speedToLeadMinutes,omitempty"`
	DoNotCall          bool `json:"doNotCall"`
	AutopilotEnabled   bool `json:"autopilotEnabled"`
}
