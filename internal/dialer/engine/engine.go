// Package engine composes the queue manager, compliance gate, call
// session, and miss-streak monitor into the auto-dialer orchestration
// engine. The engine is command-driven: the UI layer calls commands and
// receives a state snapshot back; the engine never calls the UI.
package engine

import (
	"context"
	"sync"
	"time"

	"dialer_backend/internal/dialer/compliance"
	"dialer_backend/internal/dialer/domain"
	"dialer_backend/internal/dialer/queue"
	"dialer_backend/internal/dialer/session"
	"dialer_backend/internal/events"
	"dialer_backend/internal/telemetry"
	"dialer_backend/platform/apperr"
	"dialer_backend/platform/config"
	"dialer_backend/platform/logger"
	"dialer_backend/platform/phone"

	"github.com/google/uuid"
)

// CallController is the engine's port to the external call-control
// service. Implementations live in internal/callcontrol.
type CallController interface {
	InitiateCall(ctx context.Context, phoneNumber string, leadID uuid.UUID) (callID string, err error)
	EndCall(ctx context.Context, callID string) error
}

// OutcomeRecord captures a concluded call for asynchronous persistence.
type OutcomeRecord struct {
	LeadID          uuid.UUID
	Outcome         domain.Outcome
	DurationSeconds int
	Notes           string
	EndedAt         time.Time
}

// OutcomeRecorder hands concluded calls to the persistence pipeline.
// Recording failures are logged, never surfaced to the command caller.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, rec OutcomeRecord) error
}

// Engine is the single-writer orchestration core. Every command runs
// under one mutex: queue mutation and call commands share a logical
// thread, as the read-then-write sequences inside are not safe under
// concurrent execution.
type Engine struct {
	mu sync.Mutex

	cfg      config.DialerConfig
	queues   *queue.Manager
	gate     *compliance.Gate
	calls    CallController
	recorder OutcomeRecorder
	bus      events.Bus
	log      *logger.Logger

	session     *session.Session
	currentLead *domain.Lead
	autoDialing bool
	missStreak  int
}

// New creates the engine. Queues start empty; call Seed with the lead
// list fetched from the lead store.
func New(cfg config.DialerConfig, queues *queue.Manager, gate *compliance.Gate, calls CallController, recorder OutcomeRecorder, bus events.Bus, log *logger.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		queues:   queues,
		gate:     gate,
		calls:    calls,
		recorder: recorder,
		bus:      bus,
		log:      log,
	}
}

// Seed partitions the supplied lead list into the two queues using the
// configured caps and returns the resulting state.
func (e *Engine) Seed(leads []domain.Lead) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.queues.Seed(leads, e.cfg.GetRepQueueCap(), e.cfg.GetAIQueueCap())
	e.updateQueueGauges()
	e.log.QueueEvent("seeded", string(domain.QueueRep), e.queues.Len(domain.QueueRep))
	e.log.QueueEvent("seeded", string(domain.QueueAI), e.queues.Len(domain.QueueAI))
	return e.snapshotLocked()
}

// StartDialing turns auto-dial mode on and dials the current lead, or
// the best rep-queue lead when none is selected. Rejected without state
// change when compliance fails or the rep queue is empty.
func (e *Engine) StartDialing(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil && e.session.State() != session.StateEnded {
		return e.snapshotLocked(), apperr.Conflict("a call is already in progress")
	}

	if !e.gate.CanDial() {
		telemetry.ComplianceBlocks.Inc()
		return e.snapshotLocked(), apperr.Forbidden("dialing is blocked by compliance").WithDetails(e.gate.Status())
	}

	lead := e.currentLead
	if lead == nil {
		next, ok := e.queues.Next(domain.QueueRep)
		if !ok {
			return e.snapshotLocked(), apperr.Validation("no leads in rep queue")
		}
		lead = &next
	}

	e.autoDialing = true
	if err := e.dialLocked(ctx, *lead); err != nil {
		return e.snapshotLocked(), err
	}
	return e.snapshotLocked(), nil
}

// PauseDialing stops the auto-advance loop without terminating an
// already-active call.
func (e *Engine) PauseDialing() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.autoDialing = false
	return e.snapshotLocked()
}

// SelectLead marks a queued lead as the next one to dial.
func (e *Engine) SelectLead(id uuid.UUID) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	lead, _, ok := e.queues.Find(id)
	if !ok {
		return e.snapshotLocked(), apperr.NotFound("lead is not in any queue")
	}

	e.currentLead = &lead
	return e.snapshotLocked(), nil
}

// CallRinging records the optional ringing status from call control.
func (e *Engine) CallRinging() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return e.snapshotLocked(), apperr.Conflict("no call in progress")
	}
	if err := e.session.MarkRinging(); err != nil {
		return e.snapshotLocked(), err
	}

	e.log.CallEvent("ringing", e.session.Lead().ID.String(), string(e.session.State()))
	return e.snapshotLocked(), nil
}

// CallAnswered connects the call: recording starts, the duration timer
// runs, and the miss streak resets.
func (e *Engine) CallAnswered(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return e.snapshotLocked(), apperr.Conflict("no call in progress")
	}
	if err := e.session.Answer(); err != nil {
		return e.snapshotLocked(), err
	}

	e.missStreak = 0
	telemetry.CallsAnswered.Inc()
	lead := e.session.Lead()
	e.log.CallEvent("answered", lead.ID.String(), string(session.StateActive))
	e.bus.Publish(ctx, events.CallAnswered{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		CallID:    e.session.CallID(),
	})
	return e.snapshotLocked(), nil
}

// CallMissed concludes an unanswered dial attempt as missed.
func (e *Engine) CallMissed(ctx context.Context) (Snapshot, error) {
	return e.concludeMiss(ctx, domain.OutcomeMissed)
}

// CallVoicemail concludes an unanswered dial attempt as voicemail.
// Voicemail counts toward the miss streak like any other no-connect.
func (e *Engine) CallVoicemail(ctx context.Context) (Snapshot, error) {
	return e.concludeMiss(ctx, domain.OutcomeVoicemail)
}

func (e *Engine) concludeMiss(ctx context.Context, outcome domain.Outcome) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return e.snapshotLocked(), apperr.Conflict("no call in progress")
	}
	if err := e.session.Miss(outcome); err != nil {
		return e.snapshotLocked(), err
	}

	lead := e.session.Lead()
	e.missStreak++
	telemetry.CallsMissed.Inc()
	e.log.CallEvent(string(outcome), lead.ID.String(), string(session.StateEnded))
	e.bus.Publish(ctx, events.CallMissed{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Outcome:   string(outcome),
		Streak:    e.missStreak,
	})

	// Miss-streak monitor: at the threshold the rep queue is re-sorted
	// exactly once and the counter resets.
	if e.missStreak >= e.cfg.GetMissStreakThreshold() {
		e.reorderLocked(ctx, domain.QueueRep, "miss_streak")
		e.missStreak = 0
	}

	e.finalizeLocked(ctx, outcome, "")
	if e.autoDialing {
		e.advanceLocked(ctx)
	}
	return e.snapshotLocked(), nil
}

// EndCall ends the call with the given outcome. It is always reachable:
// a ringing or dialing call can be hung up just like an active one.
func (e *Engine) EndCall(ctx context.Context, outcome domain.Outcome, notes string) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return e.snapshotLocked(), apperr.Conflict("no call in progress")
	}
	if !domain.ValidOutcome(outcome) {
		return e.snapshotLocked(), apperr.Validation("unknown call outcome: " + string(outcome))
	}
	if err := e.session.End(outcome); err != nil {
		return e.snapshotLocked(), err
	}

	if callID := e.session.CallID(); callID != "" {
		// Best effort: the session is already terminal either way.
		if err := e.calls.EndCall(ctx, callID); err != nil {
			e.log.Error("call control hangup failed", "error", err, "callId", callID)
		}
	}

	e.finalizeLocked(ctx, outcome, notes)
	if e.autoDialing {
		e.advanceLocked(ctx)
	}
	return e.snapshotLocked(), nil
}

// MoveLead moves a lead between queues. A lead missing from the source
// queue is a silent no-op, not a failure.
func (e *Engine) MoveLead(ctx context.Context, id uuid.UUID, from, to domain.QueueName) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !domain.ValidQueue(from) || !domain.ValidQueue(to) {
		return e.snapshotLocked(), apperr.Validation("unknown queue name")
	}

	if e.queues.Move(id, from, to) {
		e.updateQueueGauges()
		e.log.QueueEvent("lead_moved", string(to), e.queues.Len(to))
		e.bus.Publish(ctx, events.LeadQueueChanged{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    id,
			From:      string(from),
			To:        string(to),
		})
	}
	return e.snapshotLocked(), nil
}

// ReorderQueue re-sorts a queue on demand.
func (e *Engine) ReorderQueue(ctx context.Context, q domain.QueueName) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !domain.ValidQueue(q) {
		return e.snapshotLocked(), apperr.Validation("unknown queue name")
	}

	e.reorderLocked(ctx, q, "manual")
	return e.snapshotLocked(), nil
}

// CheckDNC runs the external Do-Not-Call registry check now.
func (e *Engine) CheckDNC(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.gate.CheckDNC(ctx); err != nil {
		return e.snapshotLocked(), apperr.Wrap(apperr.KindUnavailable, "DNC registry check failed", err)
	}
	return e.snapshotLocked(), nil
}

// SetAudit toggles the audit-logging compliance signal.
func (e *Engine) SetAudit(enabled bool) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.gate.SetAudit(enabled)
	return e.snapshotLocked()
}

// Snapshot returns the engine state for rendering.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Close ends any in-flight session so its timer cannot outlive the
// engine.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.autoDialing = false
	if e.session != nil {
		e.session.Fail()
		e.session = nil
	}
}

// dialLocked creates a session for the lead and hands the dial attempt
// to call control. An initiation failure resolves the session straight
// to ended(failed) rather than leaving it stuck in dialing. Callers
// must hold e.mu.
func (e *Engine) dialLocked(ctx context.Context, lead domain.Lead) error {
	number := phone.NormalizeE164(lead.Phone, e.cfg.GetPhoneRegion())
	if !phone.IsDialable(number, e.cfg.GetPhoneRegion()) {
		return apperr.Validation("lead has no dialable phone number")
	}

	sess := session.New(lead, e.cfg.GetCallTickInterval())
	e.session = sess
	e.currentLead = &lead

	callID, err := e.calls.InitiateCall(ctx, number, lead.ID)
	if err != nil {
		sess.Fail()
		telemetry.CallsFailed.Inc()
		e.log.CallEvent("initiation_failed", lead.ID.String(), string(session.StateEnded))
		e.bus.Publish(ctx, events.CallEnded{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			Outcome:   string(domain.OutcomeFailed),
		})
		return apperr.Wrap(apperr.KindUnavailable, "call initiation failed", err)
	}

	sess.SetCallID(callID)
	telemetry.CallsStarted.Inc()
	e.log.CallEvent("dialing", lead.ID.String(), string(session.StateDialing))
	e.bus.Publish(ctx, events.CallStarted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Phone:     number,
		CallID:    callID,
	})
	return nil
}

// finalizeLocked records the concluded session and returns the engine
// to idle. A called lead leaves its queue and is not retried; the only
// corrective behavior is the miss-streak reorder. Callers must hold e.mu.
func (e *Engine) finalizeLocked(ctx context.Context, outcome domain.Outcome, notes string) {
	lead := e.session.Lead()
	duration := e.session.DurationSeconds()

	e.bus.Publish(ctx, events.CallEnded{
		BaseEvent:       events.NewBaseEvent(),
		LeadID:          lead.ID,
		Outcome:         string(outcome),
		DurationSeconds: duration,
	})

	if e.recorder != nil {
		rec := OutcomeRecord{
			LeadID:          lead.ID,
			Outcome:         outcome,
			DurationSeconds: duration,
			Notes:           notes,
			EndedAt:         time.Now().UTC(),
		}
		if err := e.recorder.RecordOutcome(ctx, rec); err != nil {
			e.log.Error("outcome record enqueue failed", "error", err, "leadId", lead.ID)
		}
	}

	if _, removed := e.queues.RemoveCompleted(lead.ID); removed {
		e.updateQueueGauges()
	}

	e.session = nil
	e.currentLead = nil
}

// advanceLocked dequeues the next rep-queue lead and dials it. The loop
// stops itself when the queue drains or compliance lapses. Callers must
// hold e.mu.
func (e *Engine) advanceLocked(ctx context.Context) {
	next, ok := e.queues.Next(domain.QueueRep)
	if !ok {
		e.autoDialing = false
		e.log.Info("auto-dial stopped: rep queue empty")
		return
	}

	if !e.gate.CanDial() {
		e.autoDialing = false
		telemetry.ComplianceBlocks.Inc()
		e.log.Info("auto-dial stopped: compliance gate closed")
		return
	}

	if err := e.dialLocked(ctx, next); err != nil {
		// Reported via events/metrics; no automatic retry.
		e.log.Error("auto-dial advance failed", "error", err, "leadId", next.ID)
	}
}

// reorderLocked re-sorts a queue and announces it. Callers must hold e.mu.
func (e *Engine) reorderLocked(ctx context.Context, q domain.QueueName, trigger string) {
	e.queues.Reorder(q)
	telemetry.QueueReorders.Inc()
	e.log.QueueEvent("reordered_"+trigger, string(q), e.queues.Len(q))
	e.bus.Publish(ctx, events.QueueReordered{
		BaseEvent: events.NewBaseEvent(),
		Queue:     string(q),
		Trigger:   trigger,
		Size:      e.queues.Len(q),
	})
}

func (e *Engine) updateQueueGauges() {
	telemetry.RepQueueDepth.Set(float64(e.queues.Len(domain.QueueRep)))
	telemetry.AIQueueDepth.Set(float64(e.queues.Len(domain.QueueAI)))
}
