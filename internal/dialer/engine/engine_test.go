package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dialer_backend/internal/dialer/compliance"
	"dialer_backend/internal/dialer/domain"
	"dialer_backend/internal/dialer/queue"
	"dialer_backend/internal/dialer/session"
	"dialer_backend/internal/events"
	"dialer_backend/platform/apperr"
	"dialer_backend/platform/logger"

	"github.com/google/uuid"
)

// testCfg satisfies config.DialerConfig with fixed values.
type testCfg struct {
	repCap    int
	aiCap     int
	threshold int
}

func (c testCfg) GetRepQueueCap() int                         { return c.repCap }
func (c testCfg) GetAIQueueCap() int                          { return c.aiCap }
func (c testCfg) GetMissStreakThreshold() int                 { return c.threshold }
func (c testCfg) GetCallTickInterval() time.Duration          { return time.Hour }
func (c testCfg) GetComplianceRecheckInterval() time.Duration { return time.Minute }
func (c testCfg) GetCallWindowStartHour() int                 { return 0 }
func (c testCfg) GetCallWindowEndHour() int                   { return 24 }
func (c testCfg) GetPhoneRegion() string                      { return "US" }

type fakeCalls struct {
	mu        sync.Mutex
	initiated []string
	ended     []string
	failErr   error
}

func (f *fakeCalls) InitiateCall(_ context.Context, phoneNumber string, _ uuid.UUID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return "", f.failErr
	}
	f.initiated = append(f.initiated, phoneNumber)
	return "call-" + uuid.NewString(), nil
}

func (f *fakeCalls) EndCall(_ context.Context, callID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended = append(f.ended, callID)
	return nil
}

func (f *fakeCalls) initiatedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.initiated)
}

// recordingBus captures published events synchronously.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) countByName(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.EventName() == name {
			n++
		}
	}
	return n
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []OutcomeRecord
}

func (r *fakeRecorder) RecordOutcome(_ context.Context, rec OutcomeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

type clearRegistry struct{}

func (clearRegistry) Check(_ context.Context) (bool, error) { return true, nil }

func highLead(conversion, minutes int) domain.Lead {
	m := minutes
	return domain.Lead{
		ID:                   uuid.New(),
		Name:                 "Lead",
		Phone:                "+12025550123",
		Priority:             domain.PriorityHigh,
		ConversionLikelihood: conversion,
		SpeedToLeadMinutes:   &m,
	}
}

type engineFixture struct {
	eng      *Engine
	calls    *fakeCalls
	bus      *recordingBus
	recorder *fakeRecorder
	gate     *compliance.Gate
}

func newFixture(t *testing.T, cfg testCfg, leads []domain.Lead) *engineFixture {
	t.Helper()

	log := logger.New("development")
	bus := &recordingBus{}
	calls := &fakeCalls{}
	recorder := &fakeRecorder{}
	gate := compliance.NewGate(cfg.GetCallWindowStartHour(), cfg.GetCallWindowEndHour(), clearRegistry{}, nil, log)

	eng := New(cfg, queue.NewManager(), gate, calls, recorder, bus, log)
	eng.Seed(leads)

	if _, err := gate.CheckDNC(context.Background()); err != nil {
		t.Fatalf("unexpected registry error: %v", err)
	}

	return &engineFixture{eng: eng, calls: calls, bus: bus, recorder: recorder, gate: gate}
}

func TestStartDialingRejectedWhenRepQueueEmpty(t *testing.T) {
	f := newFixture(t, testCfg{repCap: 5, aiCap: 5, threshold: 10}, nil)

	snap, err := f.eng.StartDialing(context.Background())
	if err == nil || !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if snap.Call != nil {
		t.Fatal("rejection must not create a call session")
	}
	if snap.IsDialing {
		t.Fatal("rejection must not turn on auto-dial mode")
	}
	if f.calls.initiatedCount() != 0 {
		t.Fatal("rejection must not reach call control")
	}
}

func TestStartDialingRejectedWhenComplianceGateClosed(t *testing.T) {
	f := newFixture(t, testCfg{repCap: 5, aiCap: 5, threshold: 10}, []domain.Lead{highLead(80, 3)})
	f.gate.ResetDNC()

	snap, err := f.eng.StartDialing(context.Background())
	if err == nil || !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if snap.Call != nil || f.calls.initiatedCount() != 0 {
		t.Fatal("compliance rejection must not dial")
	}
}

func TestStartDialingDialsBestRepQueueLead(t *testing.T) {
	best := highLead(90, 2)
	other := highLead(40, 50)
	f := newFixture(t, testCfg{repCap: 5, aiCap: 5, threshold: 10}, []domain.Lead{other, best})

	snap, err := f.eng.StartDialing(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Call == nil || snap.Call.State != session.StateDialing {
		t.Fatal("expected a dialing call session")
	}
	if snap.Call.LeadID != best.ID {
		t.Fatalf("expected best lead %s dialed, got %s", best.ID, snap.Call.LeadID)
	}
	if snap.CurrentLead == nil || snap.CurrentLead.ID != best.ID {
		t.Fatal("expected current lead set to the dialed lead")
	}
	if !snap.IsDialing {
		t.Fatal("expected auto-dial mode on")
	}
}

func TestStartDialingConflictsWhileCallInProgress(t *testing.T) {
	f := newFixture(t, testCfg{repCap: 5, aiCap: 5, threshold: 10}, []domain.Lead{highLead(80, 3), highLead(70, 4)})

	if _, err := f.eng.StartDialing(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := f.eng.StartDialing(context.Background())
	if err == nil || !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAnswerResetsMissStreak(t *testing.T) {
	leads := []domain.Lead{highLead(90, 2), highLead(80, 3), highLead(70, 4), highLead(60, 5)}
	f := newFixture(t, testCfg{repCap: 10, aiCap: 5, threshold: 10}, leads)

	if _, err := f.eng.StartDialing(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		snap, err := f.eng.CallMissed(context.Background())
		if err != nil {
			t.Fatalf("miss %d failed: %v", i+1, err)
		}
		if snap.MissStreak != i+1 {
			t.Fatalf("expected streak %d, got %d", i+1, snap.MissStreak)
		}
	}

	snap, err := f.eng.CallAnswered(context.Background())
	if err != nil {
		t.Fatalf("unexpected answer error: %v", err)
	}
	if snap.MissStreak != 0 {
		t.Fatalf("expected streak reset on answer, got %d", snap.MissStreak)
	}
	if snap.Call == nil || snap.Call.State != session.StateActive {
		t.Fatal("expected active call after answer")
	}
}

func TestTenthConsecutiveMissReordersRepQueueExactlyOnce(t *testing.T) {
	leads := make([]domain.Lead, 0, 12)
	for i := 0; i < 12; i++ {
		leads = append(leads, highLead(90-i, i+1))
	}
	f := newFixture(t, testCfg{repCap: 12, aiCap: 5, threshold: 10}, leads)

	if _, err := f.eng.StartDialing(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var snap Snapshot
	for i := 0; i < 10; i++ {
		if f.bus.countByName("dialer.queue.reordered") != 0 {
			t.Fatalf("no reorder expected before the 10th miss (saw one after %d)", i)
		}
		var err error
		snap, err = f.eng.CallMissed(context.Background())
		if err != nil {
			t.Fatalf("miss %d failed: %v", i+1, err)
		}
	}

	if got := f.bus.countByName("dialer.queue.reordered"); got != 1 {
		t.Fatalf("expected exactly one reorder at the threshold, got %d", got)
	}
	if snap.MissStreak != 0 {
		t.Fatalf("expected streak reset after threshold, got %d", snap.MissStreak)
	}

	// The next miss starts a fresh streak, not another reorder.
	snap, err := f.eng.CallMissed(context.Background())
	if err != nil {
		t.Fatalf("unexpected miss error: %v", err)
	}
	if snap.MissStreak != 1 {
		t.Fatalf("expected new streak 1, got %d", snap.MissStreak)
	}
	if got := f.bus.countByName("dialer.queue.reordered"); got != 1 {
		t.Fatalf("still expected one reorder, got %d", got)
	}
}

func TestVoicemailCountsTowardMissStreak(t *testing.T) {
	f := newFixture(t, testCfg{repCap: 5, aiCap: 5, threshold: 10}, []domain.Lead{highLead(80, 3), highLead(70, 4)})

	if _, err := f.eng.StartDialing(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, err := f.eng.CallVoicemail(context.Background())
	if err != nil {
		t.Fatalf("unexpected voicemail error: %v", err)
	}
	if snap.MissStreak != 1 {
		t.Fatalf("expected voicemail to count as a miss, got streak %d", snap.MissStreak)
	}
}

func TestEndCallRecordsOutcomeAndAdvances(t *testing.T) {
	first := highLead(90, 2)
	second := highLead(80, 3)
	f := newFixture(t, testCfg{repCap: 5, aiCap: 5, threshold: 10}, []domain.Lead{first, second})

	if _, err := f.eng.StartDialing(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.eng.CallAnswered(context.Background()); err != nil {
		t.Fatalf("unexpected answer error: %v", err)
	}

	snap, err := f.eng.EndCall(context.Background(), domain.OutcomeInterested, "wants a demo")
	if err != nil {
		t.Fatalf("unexpected end error: %v", err)
	}

	f.recorder.mu.Lock()
	if len(f.recorder.records) != 1 {
		t.Fatalf("expected one recorded outcome, got %d", len(f.recorder.records))
	}
	rec := f.recorder.records[0]
	f.recorder.mu.Unlock()

	if rec.LeadID != first.ID || rec.Outcome != domain.OutcomeInterested || rec.Notes != "wants a demo" {
		t.Fatalf("unexpected outcome record: %+v", rec)
	}

	// The called lead left the queue; auto-advance dialed the next one.
	for _, queued := range snap.RepQueue {
		if queued.ID == first.ID {
			t.Fatal("concluded lead must leave the rep queue")
		}
	}
	if snap.Call == nil || snap.Call.LeadID != second.ID || snap.Call.State != session.StateDialing {
		t.Fatal("expected auto-advance to dial the next rep lead")
	}
}

func TestEndCallRejectsUnknownOutcome(t *testing.T) {
	f := newFixture(t, testCfg{repCap: 5, aiCap: 5, threshold: 10}, []domain.Lead{highLead(80, 3)})

	if _, err := f.eng.StartDialing(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := f.eng.EndCall(context.Background(), domain.Outcome("ghosted"), "")
	if err == nil || !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAutoDialStopsWhenRepQueueDrains(t *testing.T) {
	f := newFixture(t, testCfg{repCap: 5, aiCap: 5, threshold: 10}, []domain.Lead{highLead(80, 3)})

	if _, err := f.eng.StartDialing(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, err := f.eng.CallMissed(context.Background())
	if err != nil {
		t.Fatalf("unexpected miss error: %v", err)
	}

	if snap.IsDialing {
		t.Fatal("expected auto-dial off once the rep queue drained")
	}
	if snap.Call != nil {
		t.Fatal("expected no call session after the queue drained")
	}
}

func TestPauseDialingStopsAutoAdvance(t *testing.T) {
	f := newFixture(t, testCfg{repCap: 5, aiCap: 5, threshold: 10}, []domain.Lead{highLead(90, 2), highLead(80, 3)})

	if _, err := f.eng.StartDialing(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap := f.eng.PauseDialing(); snap.IsDialing {
		t.Fatal("expected auto-dial off after pause")
	}

	snap, err := f.eng.CallMissed(context.Background())
	if err != nil {
		t.Fatalf("unexpected miss error: %v", err)
	}
	if snap.Call != nil {
		t.Fatal("paused engine must not auto-dial the next lead")
	}
	if f.calls.initiatedCount() != 1 {
		t.Fatalf("expected one dial only, got %d", f.calls.initiatedCount())
	}
}

func TestCallInitiationFailureResolvesSessionToFailed(t *testing.T) {
	f := newFixture(t, testCfg{repCap: 5, aiCap: 5, threshold: 10}, []domain.Lead{highLead(80, 3)})
	f.calls.failErr = errors.New("provider down")

	snap, err := f.eng.StartDialing(context.Background())
	if err == nil || !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if snap.Call == nil || snap.Call.State != session.StateEnded {
		t.Fatal("expected the failed dial to resolve to an ended session")
	}
	if snap.Call.Outcome != domain.OutcomeFailed {
		t.Fatalf("expected outcome failed, got %s", snap.Call.Outcome)
	}
}

func TestUndialablePhoneNumberRejected(t *testing.T) {
	bad := highLead(80, 3)
	bad.Phone = "not-a-number"
	f := newFixture(t, testCfg{repCap: 5, aiCap: 5, threshold: 10}, []domain.Lead{bad})

	_, err := f.eng.StartDialing(context.Background())
	if err == nil || !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.calls.initiatedCount() != 0 {
		t.Fatal("undialable numbers must not reach call control")
	}
}

func TestSelectLeadRequiresQueueMembership(t *testing.T) {
	queued := highLead(80, 3)
	f := newFixture(t, testCfg{repCap: 5, aiCap: 5, threshold: 10}, []domain.Lead{queued})

	snap, err := f.eng.SelectLead(queued.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.CurrentLead == nil || snap.CurrentLead.ID != queued.ID {
		t.Fatal("expected selected lead as current")
	}

	if _, err := f.eng.SelectLead(uuid.New()); err == nil || !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMoveLeadBetweenQueues(t *testing.T) {
	l := highLead(80, 3)
	f := newFixture(t, testCfg{repCap: 5, aiCap: 5, threshold: 10}, []domain.Lead{l})

	snap, err := f.eng.MoveLead(context.Background(), l.ID, domain.QueueRep, domain.QueueAI)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.RepQueue) != 0 || len(snap.AIQueue) != 1 {
		t.Fatalf("expected lead in AI queue, got rep=%d ai=%d", len(snap.RepQueue), len(snap.AIQueue))
	}
	if got := f.bus.countByName("dialer.lead.queue_changed"); got != 1 {
		t.Fatalf("expected one queue-changed event, got %d", got)
	}

	// Moving a lead that is not in the source queue is a silent no-op.
	snap, err = f.eng.MoveLead(context.Background(), l.ID, domain.QueueRep, domain.QueueAI)
	if err != nil {
		t.Fatalf("no-op move must not error: %v", err)
	}
	if len(snap.AIQueue) != 1 {
		t.Fatal("no-op move must not duplicate the lead")
	}
}

func TestMoveLeadRejectsUnknownQueue(t *testing.T) {
	f := newFixture(t, testCfg{repCap: 5, aiCap: 5, threshold: 10}, nil)
	_, err := f.eng.MoveLead(context.Background(), uuid.New(), domain.QueueName("vip"), domain.QueueAI)
	if err == nil || !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSnapshotAnnotatesQueuedLeads(t *testing.T) {
	f := newFixture(t, testCfg{repCap: 5, aiCap: 5, threshold: 10}, []domain.Lead{highLead(70, 3)})

	snap := f.eng.Snapshot()
	if len(snap.RepQueue) != 1 {
		t.Fatalf("expected one rep lead, got %d", len(snap.RepQueue))
	}
	queued := snap.RepQueue[0]
	if queued.DialScore != 150 {
		t.Fatalf("expected dial score (30+70)*1.5 = 150, got %v", queued.DialScore)
	}
	if queued.Urgency != "critical" {
		t.Fatalf("expected critical urgency, got %s", queued.Urgency)
	}
	if !snap.Compliance.DNCChecked || !snap.Compliance.TimeCompliant {
		t.Fatal("expected open compliance gate in fixture")
	}
}
