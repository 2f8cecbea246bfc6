package queue

import (
	"testing"

	"dialer_backend/internal/dialer/domain"

	"github.com/google/uuid"
)

func minutes(v int) *int {
	return &v
}

func lead(priority domain.Priority, conversion int, speedToLead *int) domain.Lead {
	return domain.Lead{
		ID:                   uuid.New(),
		Priority:             priority,
		ConversionLikelihood: conversion,
		SpeedToLeadMinutes:   speedToLead,
	}
}

func assertDisjoint(t *testing.T, m *Manager) {
	t.Helper()
	rep, ai := m.Snapshot()
	seen := make(map[uuid.UUID]bool, len(rep))
	for _, l := range rep {
		if seen[l.ID] {
			t.Fatalf("lead %s appears twice in rep queue", l.ID)
		}
		seen[l.ID] = true
	}
	for _, l := range ai {
		if seen[l.ID] {
			t.Fatalf("lead %s appears in both queues", l.ID)
		}
		seen[l.ID] = true
	}
}

func TestSeedDropsDoNotCallLeads(t *testing.T) {
	m := NewManager()
	blocked := lead(domain.PriorityHigh, 90, minutes(2))
	blocked.DoNotCall = true
	allowed := lead(domain.PriorityHigh, 50, minutes(10))

	m.Seed([]domain.Lead{blocked, allowed}, 10, 10)

	if _, _, found := m.Find(blocked.ID); found {
		t.Fatal("do-not-call lead must not enter any queue")
	}
	if _, _, found := m.Find(allowed.ID); !found {
		t.Fatal("expected allowed lead to be queued")
	}
}

func TestSeedPartitionsHighPriorityToRepQueueUpToCap(t *testing.T) {
	m := NewManager()
	leads := []domain.Lead{
		lead(domain.PriorityHigh, 90, minutes(2)),
		lead(domain.PriorityHigh, 80, minutes(4)),
		lead(domain.PriorityHigh, 70, minutes(8)),
		lead(domain.PriorityMedium, 95, minutes(1)),
	}

	m.Seed(leads, 2, 10)

	if got := m.Len(domain.QueueRep); got != 2 {
		t.Fatalf("expected rep queue capped at 2, got %d", got)
	}
	// Overflow high-priority lead and the medium lead both land in AI.
	if got := m.Len(domain.QueueAI); got != 2 {
		t.Fatalf("expected 2 leads in AI queue, got %d", got)
	}

	rep, _ := m.Snapshot()
	if rep[0].ConversionLikelihood != 90 || rep[1].ConversionLikelihood != 80 {
		t.Fatal("expected the two best high-priority leads to take rep slots")
	}
	assertDisjoint(t, m)
}

func TestSeedGivesAutopilotLeadsAIQueueSlotsFirst(t *testing.T) {
	m := NewManager()
	autopilot := lead(domain.PriorityLow, 20, nil)
	autopilot.AutopilotEnabled = true
	manualA := lead(domain.PriorityLow, 90, minutes(5))
	manualB := lead(domain.PriorityLow, 80, minutes(5))

	m.Seed([]domain.Lead{manualA, manualB, autopilot}, 5, 2)

	if _, queue, found := m.Find(autopilot.ID); !found || queue != domain.QueueAI {
		t.Fatal("autopilot lead must hold an AI queue slot")
	}
	if got := m.Len(domain.QueueAI); got != 2 {
		t.Fatalf("expected AI queue capped at 2, got %d", got)
	}
}

func TestMoveRoundTripRestoresMembership(t *testing.T) {
	m := NewManager()
	l := lead(domain.PriorityHigh, 60, minutes(3))
	m.Seed([]domain.Lead{l}, 10, 10)

	if !m.Move(l.ID, domain.QueueRep, domain.QueueAI) {
		t.Fatal("expected move rep -> ai to happen")
	}
	if _, queue, _ := m.Find(l.ID); queue != domain.QueueAI {
		t.Fatalf("expected lead in AI queue, got %s", queue)
	}

	if !m.Move(l.ID, domain.QueueAI, domain.QueueRep) {
		t.Fatal("expected move ai -> rep to happen")
	}
	if _, queue, _ := m.Find(l.ID); queue != domain.QueueRep {
		t.Fatalf("expected lead back in rep queue, got %s", queue)
	}
	assertDisjoint(t, m)
}

func TestMoveMissingLeadIsSilentNoOp(t *testing.T) {
	m := NewManager()
	m.Seed([]domain.Lead{lead(domain.PriorityHigh, 60, minutes(3))}, 10, 10)
	repBefore, aiBefore := m.Snapshot()

	if m.Move(uuid.New(), domain.QueueRep, domain.QueueAI) {
		t.Fatal("moving an unknown lead must not report a move")
	}

	repAfter, aiAfter := m.Snapshot()
	if len(repAfter) != len(repBefore) || len(aiAfter) != len(aiBefore) {
		t.Fatal("no-op move must not change queue contents")
	}
}

func TestNextReturnsBestLeadWithoutMutating(t *testing.T) {
	m := NewManager()
	best := lead(domain.PriorityHigh, 90, minutes(2))
	other := lead(domain.PriorityHigh, 40, minutes(30))
	m.Seed([]domain.Lead{other, best}, 10, 10)

	got, ok := m.Next(domain.QueueRep)
	if !ok || got.ID != best.ID {
		t.Fatalf("expected best lead %s, got %s", best.ID, got.ID)
	}
	if m.Len(domain.QueueRep) != 2 {
		t.Fatal("Next must not remove the lead from the queue")
	}
}

func TestNextOnEmptyQueueReportsNoLead(t *testing.T) {
	m := NewManager()
	if _, ok := m.Next(domain.QueueRep); ok {
		t.Fatal("expected no lead from an empty queue")
	}
}

func TestRemoveCompletedRemovesFromWhicheverQueueHoldsTheLead(t *testing.T) {
	m := NewManager()
	repLead := lead(domain.PriorityHigh, 60, minutes(3))
	aiLead := lead(domain.PriorityLow, 40, minutes(20))
	m.Seed([]domain.Lead{repLead, aiLead}, 10, 10)

	if queue, removed := m.RemoveCompleted(aiLead.ID); !removed || queue != domain.QueueAI {
		t.Fatalf("expected removal from AI queue, got %s removed=%v", queue, removed)
	}
	if _, _, found := m.Find(aiLead.ID); found {
		t.Fatal("removed lead must not be returned to any queue")
	}

	if _, removed := m.RemoveCompleted(uuid.New()); removed {
		t.Fatal("removing an unknown lead must be a no-op")
	}
}

func TestReorderSortsQueueBestFirst(t *testing.T) {
	m := NewManager()
	worse := lead(domain.PriorityHigh, 20, minutes(90))
	better := lead(domain.PriorityHigh, 90, minutes(2))
	m.Seed([]domain.Lead{worse, better}, 10, 10)

	// Force a stale order by moving the better lead out and back.
	m.Move(better.ID, domain.QueueRep, domain.QueueAI)
	m.Move(better.ID, domain.QueueAI, domain.QueueRep)
	rep, _ := m.Snapshot()
	if rep[len(rep)-1].ID != better.ID {
		t.Fatal("test setup expects the better lead appended last")
	}

	m.Reorder(domain.QueueRep)

	rep, _ = m.Snapshot()
	if rep[0].ID != better.ID {
		t.Fatal("expected reorder to put the better lead first")
	}
}

func TestSnapshotReturnsCopies(t *testing.T) {
	m := NewManager()
	m.Seed([]domain.Lead{lead(domain.PriorityHigh, 60, minutes(3))}, 10, 10)

	rep, _ := m.Snapshot()
	rep[0].Name = "mutated"

	fresh, _ := m.Snapshot()
	if fresh[0].Name == "mutated" {
		t.Fatal("snapshot must not alias internal queue storage")
	}
}
