// Package compliance gates dialing on legal calling hours, Do-Not-Call
// clearance, and the audit-logging signal.
package compliance

import (
	"context"
	"sync"
	"time"

	"dialer_backend/internal/events"
	"dialer_backend/platform/logger"
)

// Status is the process-wide compliance state. DNCChecked is sticky
// until an explicit re-check or reset; TimeCompliant is recomputed from
// the wall clock; AuditEnabled is user-toggleable and surfaced as a
// separate signal that never blocks dialing.
type Status struct {
	DNCChecked    bool `json:"dncChecked"`
	TimeCompliant bool `json:"timeCompliant"`
	AuditEnabled  bool `json:"auditEnabled"`
}

// CanStartDialing is the pure gate predicate: dialing requires DNC
// clearance and an in-window clock. AuditEnabled does not block.
func CanStartDialing(s Status) bool {
	return s.DNCChecked && s.TimeCompliant
}

// RegistryChecker performs the external Do-Not-Call registry check.
// It returns true when the current dial set is clear to call.
type RegistryChecker interface {
	Check(ctx context.Context) (bool, error)
}

// Gate owns the compliance status and its recomputation. The calling
// window is [startHour, endHour) in local wall-clock hours: with the
// default 9 and 21, dialing is compliant from 09:00:00 through 20:59:59
// and blocked at 21:00:00.
type Gate struct {
	mu        sync.Mutex
	status    Status
	startHour int
	endHour   int
	registry  RegistryChecker
	bus       events.Bus
	log       *logger.Logger

	// now is swappable so tests can pin the clock.
	now func() time.Time
}

// NewGate creates a gate and computes the initial time-window signal.
func NewGate(startHour, endHour int, registry RegistryChecker, bus events.Bus, log *logger.Logger) *Gate {
	g := &Gate{
		startHour: startHour,
		endHour:   endHour,
		registry:  registry,
		bus:       bus,
		log:       log,
		now:       time.Now,
	}
	g.RecomputeTimeWindow()
	return g
}

// Status returns the current compliance status.
func (g *Gate) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// CanDial reports whether dialing is currently permitted.
func (g *Gate) CanDial() bool {
	return CanStartDialing(g.Status())
}

// RecomputeTimeWindow re-evaluates the calling-window signal against the
// local wall clock and returns the updated status.
func (g *Gate) RecomputeTimeWindow() Status {
	g.mu.Lock()
	hour := g.now().Hour()
	compliant := hour >= g.startHour && hour < g.endHour
	changed := compliant != g.status.TimeCompliant
	g.status.TimeCompliant = compliant
	status := g.status
	g.mu.Unlock()

	if changed {
		g.announce("time_window_changed", status)
	}
	return status
}

// CheckDNC runs the external registry check on demand. A clear result
// sets the sticky DNCChecked flag; a blocked result or a registry error
// clears it.
func (g *Gate) CheckDNC(ctx context.Context) (Status, error) {
	cleared, err := g.registry.Check(ctx)

	g.mu.Lock()
	g.status.DNCChecked = err == nil && cleared
	status := g.status
	g.mu.Unlock()

	g.announce("dnc_checked", status)
	return status, err
}

// ResetDNC clears the sticky DNC clearance, forcing a fresh check before
// the next dial.
func (g *Gate) ResetDNC() Status {
	g.mu.Lock()
	g.status.DNCChecked = false
	status := g.status
	g.mu.Unlock()

	g.announce("dnc_reset", status)
	return status
}

// SetAudit toggles the audit-logging signal.
func (g *Gate) SetAudit(enabled bool) Status {
	g.mu.Lock()
	changed := g.status.AuditEnabled != enabled
	g.status.AuditEnabled = enabled
	status := g.status
	g.mu.Unlock()

	if changed {
		g.announce("audit_toggled", status)
	}
	return status
}

// Watch recomputes the time window on the given interval until the
// context is cancelled. The ticker is stopped deterministically on exit
// so no leaked timer mutates a discarded gate.
func (g *Gate) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.RecomputeTimeWindow()
		}
	}
}

func (g *Gate) announce(event string, status Status) {
	if g.log != nil {
		g.log.ComplianceEvent(event, status.DNCChecked, status.TimeCompliant, status.AuditEnabled)
	}
	if g.bus != nil {
		g.bus.Publish(context.Background(), events.ComplianceUpdated{
			BaseEvent:     events.NewBaseEvent(),
			DNCChecked:    status.DNCChecked,
			TimeCompliant: status.TimeCompliant,
			AuditEnabled:  status.AuditEnabled,
		})
	}
}
