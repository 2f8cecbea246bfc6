// Package session implements the call lifecycle state machine for a
// single call: dialing -> ringing (optional) -> active -> ended, with a
// cancellable once-per-interval duration timer while active.
package session

import (
	"context"
	"sync"
	"time"

	"dialer_backend/internal/dialer/domain"
	"dialer_backend/platform/apperr"
)

// State is a call session's lifecycle state. Idle is represented by the
// absence of a session; a session is created when dialing starts and
// discarded after its outcome is captured.
type State string

const (
	StateDialing State = "dialing"
	StateRinging State = "ringing"
	StateActive  State = "active"
	StateEnded   State = "ended"
)

// Session is a transient call. Created by "start call", mutated by
// answer/miss/end commands, never persisted by the engine itself.
type Session struct {
	mu sync.Mutex

	lead            domain.Lead
	callID          string
	state           State
	outcome         domain.Outcome
	durationSeconds int
	isRecording     bool

	tickInterval time.Duration
	cancelTimer  context.CancelFunc
}

// New creates a session in the dialing state with the duration reset to
// zero. tickInterval is one second in production; tests inject shorter
// intervals or drive tick directly.
func New(lead domain.Lead, tickInterval time.Duration) *Session {
	return &Session{
		lead:         lead,
		state:        StateDialing,
		tickInterval: tickInterval,
	}
}

// Lead returns the lead being called.
func (s *Session) Lead() domain.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lead
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CallID returns the call-control identifier for this session.
func (s *Session) CallID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callID
}

// SetCallID records the call-control identifier once initiation succeeds.
func (s *Session) SetCallID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callID = id
}

// DurationSeconds returns the elapsed talk time.
func (s *Session) DurationSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.durationSeconds
}

// IsRecording reports whether the call is being recorded.
func (s *Session) IsRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRecording
}

// Outcome returns the terminal outcome, empty until the session ends.
func (s *Session) Outcome() domain.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// MarkRinging moves dialing -> ringing. Used by call-control status
// events; the ringing state is optional and answer is accepted from
// either state.
func (s *Session) MarkRinging() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateDialing {
		return apperr.Conflict("call is not dialing")
	}
	s.state = StateRinging
	return nil
}

// Answer moves dialing/ringing -> active, flags recording, and starts
// the duration timer.
func (s *Session) Answer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateDialing && s.state != StateRinging {
		return apperr.Conflict("call cannot be answered in state " + string(s.state))
	}

	s.state = StateActive
	s.isRecording = true
	s.startTimerLocked()
	return nil
}

// Miss ends an unanswered dial attempt (missed or voicemail).
func (s *Session) Miss(outcome domain.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !outcome.IsMiss() {
		return apperr.Validation("outcome " + string(outcome) + " is not a miss")
	}
	if s.state != StateDialing && s.state != StateRinging {
		return apperr.Conflict("call cannot be missed in state " + string(s.state))
	}

	s.endLocked(outcome)
	return nil
}

// End moves the session to ended with the given outcome. It is
// unconditional from every non-terminal state so the caller is never
// stuck unable to hang up. Ending an already-ended session is a no-op
// conflict.
func (s *Session) End(outcome domain.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateEnded {
		return apperr.Conflict("call already ended")
	}

	s.endLocked(outcome)
	return nil
}

// Fail resolves a call-initiation failure to ended(failed) so the
// session is never left stuck in dialing.
func (s *Session) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateEnded {
		return
	}
	s.endLocked(domain.OutcomeFailed)
}

// endLocked stops the timer the instant the session leaves active.
// Callers must hold s.mu.
func (s *Session) endLocked(outcome domain.Outcome) {
	s.state = StateEnded
	s.outcome = outcome
	s.stopTimerLocked()
}

// startTimerLocked launches the once-per-interval duration tick. The
// nil check prevents a second timer if answer is ever re-entered.
// Callers must hold s.mu.
func (s *Session) startTimerLocked() {
	if s.cancelTimer != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelTimer = cancel
	go s.run(ctx)
}

// stopTimerLocked cancels the timer deterministically. Callers must
// hold s.mu.
func (s *Session) stopTimerLocked() {
	if s.cancelTimer != nil {
		s.cancelTimer()
		s.cancelTimer = nil
	}
}

func (s *Session) run(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick increments the duration by one. The active-state guard makes a
// straggling tick after hangup a no-op, so the duration freezes the
// instant the state leaves active.
func (s *Session) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return
	}
	s.durationSeconds++
}
