package client

import (
	"context"

	"dialer_backend/platform/logger"

	"github.com/google/uuid"
)

// Simulator is an in-process stand-in used when no call-control service
// is configured. Dials always succeed; lifecycle transitions are driven
// manually through the command surface.
type Simulator struct {
	log *logger.Logger
}

// NewSimulator creates the in-process call-control stand-in.
func NewSimulator(log *logger.Logger) *Simulator {
	return &Simulator{log: log}
}

// InitiateCall issues a synthetic call ID without leaving the process.
func (s *Simulator) InitiateCall(_ context.Context, phoneNumber string, leadID uuid.UUID) (string, error) {
	callID := "sim-" + uuid.NewString()
	s.log.Info("simulated call initiated", "phone", phoneNumber, "leadId", leadID, "callId", callID)
	return callID, nil
}

// EndCall is a no-op for simulated calls.
func (s *Simulator) EndCall(_ context.Context, callID string) error {
	s.log.Info("simulated call ended", "callId", callID)
	return nil
}
