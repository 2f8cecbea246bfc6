package engine

import (
	"dialer_backend/internal/dialer/compliance"
	"dialer_backend/internal/dialer/domain"
	"dialer_backend/internal/dialer/scoring"
	"dialer_backend/internal/dialer/session"

	"github.com/google/uuid"
)

// QueuedLead is a lead enriched with its derived dial rank and urgency
// tier for rendering.
type QueuedLead struct {
	domain.Lead
	DialScore float64         `json:"dialScore"`
	Urgency   scoring.Urgency `json:"urgency"`
}

// CallSnapshot is the renderable view of the in-flight call session.
type CallSnapshot struct {
	LeadID          uuid.UUID      `json:"leadId"`
	CallID          string         `json:"callId,omitempty"`
	State           session.State  `json:"state"`
	Outcome         domain.Outcome `json:"outcome,omitempty"`
	DurationSeconds int            `json:"durationSeconds"`
	IsRecording     bool           `json:"isRecording"`
}

// Snapshot is the full engine state returned by every command for
// re-rendering. The engine exposes state and accepts commands; it never
// calls back into the UI.
type Snapshot struct {
	RepQueue    []QueuedLead      `json:"repQueue"`
	AIQueue     []QueuedLead      `json:"aiQueue"`
	CurrentLead *domain.Lead      `json:"currentLead,omitempty"`
	Call        *CallSnapshot     `json:"call,omitempty"`
	Compliance  compliance.Status `json:"compliance"`
	IsDialing   bool              `json:"isDialing"`
	MissStreak  int               `json:"missStreak"`
}

// snapshotLocked assembles the snapshot. Callers must hold e.mu.
func (e *Engine) snapshotLocked() Snapshot {
	rep, ai := e.queues.Snapshot()

	snap := Snapshot{
		RepQueue:   annotate(rep),
		AIQueue:    annotate(ai),
		Compliance: e.gate.Status(),
		IsDialing:  e.autoDialing,
		MissStreak: e.missStreak,
	}

	if e.currentLead != nil {
		lead := *e.currentLead
		snap.CurrentLead = &lead
	}

	if e.session != nil {
		snap.Call = &CallSnapshot{
			LeadID:          e.session.Lead().ID,
			CallID:          e.session.CallID(),
			State:           e.session.State(),
			Outcome:         e.session.Outcome(),
			DurationSeconds: e.session.DurationSeconds(),
			IsRecording:     e.session.IsRecording(),
		}
	}

	return snap
}

func annotate(leads []domain.Lead) []QueuedLead {
	out := make([]QueuedLead, 0, len(leads))
	for _, lead := range leads {
		out = append(out, QueuedLead{
			Lead:      lead,
			DialScore: scoring.Score(lead),
			Urgency:   scoring.Classify(lead.SpeedToLeadMinutes),
		})
	}
	return out
}
