// Package queue owns the two dial queues and their mutation operations.
// All operations are serialized behind a single mutex: Move is a
// read-then-write sequence that is not safe under concurrent execution.
package queue

import (
	"sync"

	"dialer_backend/internal/dialer/domain"
	"dialer_backend/internal/dialer/scoring"

	"github.com/google/uuid"
)

// Manager holds the rep and AI dial queues. Invariant: a lead ID appears
// in at most one queue at any time, and a do-not-call lead appears in
// neither.
type Manager struct {
	mu     sync.Mutex
	queues map[domain.QueueName][]domain.Lead
}

// NewManager creates an empty queue manager.
func NewManager() *Manager {
	return &Manager{
		queues: map[domain.QueueName][]domain.Lead{
			domain.QueueRep: {},
			domain.QueueAI:  {},
		},
	}
}

// Seed partitions an externally supplied lead list into the two queues.
// Do-not-call leads are dropped outright. High-priority leads fill the
// rep queue (best first) up to repCap; the remainder fills the AI queue
// up to aiCap, autopilot-enabled leads first. Insertion order is not
// semantically significant: both queues are sorted on every
// prioritization pass.
func (m *Manager) Seed(leads []domain.Lead, repCap, aiCap int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	eligible := make([]domain.Lead, 0, len(leads))
	for _, lead := range leads {
		if lead.DoNotCall {
			continue
		}
		eligible = append(eligible, lead)
	}
	scoring.Sort(eligible)

	rep := make([]domain.Lead, 0, repCap)
	rest := make([]domain.Lead, 0, len(eligible))
	for _, lead := range eligible {
		if lead.Priority == domain.PriorityHigh && len(rep) < repCap {
			rep = append(rep, lead)
			continue
		}
		rest = append(rest, lead)
	}

	// Autopilot-eligible leads take AI queue slots first.
	ai := make([]domain.Lead, 0, aiCap)
	for _, lead := range rest {
		if lead.AutopilotEnabled && len(ai) < aiCap {
			ai = append(ai, lead)
		}
	}
	for _, lead := range rest {
		if len(ai) >= aiCap {
			break
		}
		if !lead.AutopilotEnabled {
			ai = append(ai, lead)
		}
	}
	scoring.Sort(ai)

	m.queues[domain.QueueRep] = rep
	m.queues[domain.QueueAI] = ai
}

// Move removes the lead from the `from` queue and appends it to the `to`
// queue. It is a silent no-op when the lead is not in `from`, and it
// refuses to create a duplicate in `to`. Returns whether a move happened.
func (m *Manager) Move(id uuid.UUID, from, to domain.QueueName) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.queues[from]
	if !ok {
		return false
	}
	dst, ok := m.queues[to]
	if !ok {
		return false
	}

	idx := indexOf(src, id)
	if idx < 0 {
		return false
	}
	if containsID(dst, id) {
		// Should be unreachable while the invariant holds; drop the
		// source copy rather than duplicate.
		m.queues[from] = append(src[:idx], src[idx+1:]...)
		return false
	}

	lead := src[idx]
	m.queues[from] = append(src[:idx], src[idx+1:]...)
	m.queues[to] = append(dst, lead)
	return true
}

// Next returns the highest-priority lead in the queue without mutating
// it. Callers explicitly remove the lead when its call concludes.
func (m *Manager) Next(q domain.QueueName) (domain.Lead, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	leads := m.queues[q]
	if len(leads) == 0 {
		return domain.Lead{}, false
	}

	best := leads[0]
	for _, lead := range leads[1:] {
		if scoring.Less(lead, best) {
			best = lead
		}
	}
	return best, true
}

// Find locates a lead in either queue.
func (m *Manager) Find(id uuid.UUID) (domain.Lead, domain.QueueName, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range []domain.QueueName{domain.QueueRep, domain.QueueAI} {
		if idx := indexOf(m.queues[name], id); idx >= 0 {
			return m.queues[name][idx], name, true
		}
	}
	return domain.Lead{}, "", false
}

// RemoveCompleted removes a lead from whichever queue holds it after its
// call concludes. A lead that has been called is not returned to the
// queue automatically. No-op when the lead is in neither queue.
func (m *Manager) RemoveCompleted(id uuid.UUID) (domain.QueueName, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range []domain.QueueName{domain.QueueRep, domain.QueueAI} {
		leads := m.queues[name]
		if idx := indexOf(leads, id); idx >= 0 {
			m.queues[name] = append(leads[:idx], leads[idx+1:]...)
			return name, true
		}
	}
	return "", false
}

// Reorder re-sorts a queue in place using the priority scorer. Triggered
// by the miss-streak monitor and available as a manual command.
func (m *Manager) Reorder(q domain.QueueName) {
	m.mu.Lock()
	defer m.mu.Unlock()
	scoring.Sort(m.queues[q])
}

// Snapshot returns copies of both queues in their current order.
func (m *Manager) Snapshot() (rep, ai []domain.Lead) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rep = make([]domain.Lead, len(m.queues[domain.QueueRep]))
	copy(rep, m.queues[domain.QueueRep])
	ai = make([]domain.Lead, len(m.queues[domain.QueueAI]))
	copy(ai, m.queues[domain.QueueAI])
	return rep, ai
}

// Len returns the number of leads waiting in a queue.
func (m *Manager) Len(q domain.QueueName) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues[q])
}

func indexOf(leads []domain.Lead, id uuid.UUID) int {
	for i, lead := range leads {
		if lead.ID == id {
			return i
		}
	}
	return -1
}

func containsID(leads []domain.Lead, id uuid.UUID) bool {
	return indexOf(leads, id) >= 0
}
