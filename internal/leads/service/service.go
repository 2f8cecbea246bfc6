// Package service converts stored leads into the engine's dial view and
// persists concluded calls.
package service

import (
	"context"
	"errors"
	"time"

	"dialer_backend/internal/dialer/domain"
	"dialer_backend/internal/leads/repository"
	"dialer_backend/platform/apperr"
	"dialer_backend/platform/logger"
	"dialer_backend/platform/phone"

	"github.com/google/uuid"
)

// speedToLeadHorizon bounds how far back elapsed-minutes tracking goes.
// Older leads carry no speed-to-lead value at all: they are simply cold.
const speedToLeadHorizon = 24 * time.Hour

const defaultSeedLimit = 200

type Service struct {
	repo   *repository.Repository
	region string
	log    *logger.Logger
}

func New(repo *repository.Repository, region string, log *logger.Logger) *Service {
	return &Service{repo: repo, region: region, log: log}
}

// ListForDialing loads the current dial set and maps it into the
// engine's lead shape, deriving speed-to-lead from creation time and
// normalizing phone numbers to E.164.
func (s *Service) ListForDialing(ctx context.Context) ([]domain.Lead, error) {
	const op = "leads.ListForDialing"

	rows, err := s.repo.ListDialable(ctx, defaultSeedLimit)
	if err != nil {
		s.log.DatabaseError(op, err)
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load leads", err).WithOp(op)
	}

	now := time.Now().UTC()
	leads := make([]domain.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, s.toDomain(row, now))
	}
	return leads, nil
}

// GetByID returns one lead in engine shape.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	const op = "leads.GetByID"

	row, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Lead{}, apperr.NotFound("lead not found").WithOp(op)
	}
	if err != nil {
		s.log.DatabaseError(op, err)
		return domain.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err).WithOp(op)
	}
	return s.toDomain(row, time.Now().UTC()), nil
}

// CallHistory returns a lead's concluded calls, newest first.
func (s *Service) CallHistory(ctx context.Context, leadID uuid.UUID) ([]repository.CallLog, error) {
	const op = "leads.CallHistory"

	if _, err := s.GetByID(ctx, leadID); err != nil {
		return nil, err
	}

	logs, err := s.repo.ListCallLogs(ctx, leadID)
	if err != nil {
		s.log.DatabaseError(op, err)
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load call history", err).WithOp(op)
	}
	return logs, nil
}

// RecordOutcome persists one concluded call attempt.
func (s *Service) RecordOutcome(ctx context.Context, leadID uuid.UUID, outcome string, durationSeconds int, notes string, endedAt time.Time) error {
	const op = "leads.RecordOutcome"

	log := repository.CallLog{
		ID:              uuid.New(),
		LeadID:          leadID,
		Outcome:         outcome,
		DurationSeconds: durationSeconds,
		EndedAt:         endedAt,
	}
	if notes != "" {
		log.Notes = &notes
	}

	if err := s.repo.InsertCallLog(ctx, log); err != nil {
		s.log.DatabaseError(op, err)
		return apperr.Wrap(apperr.KindInternal, "failed to record call outcome", err).WithOp(op)
	}
	return nil
}

// SetDoNotCall updates a lead's registry flag.
func (s *Service) SetDoNotCall(ctx context.Context, leadID uuid.UUID, flag bool) error {
	const op = "leads.SetDoNotCall"

	err := s.repo.SetDoNotCall(ctx, leadID, flag)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found").WithOp(op)
	}
	if err != nil {
		s.log.DatabaseError(op, err)
		return apperr.Wrap(apperr.KindInternal, "failed to update do-not-call flag", err).WithOp(op)
	}
	return nil
}

func (s *Service) toDomain(row repository.Lead, now time.Time) domain.Lead {
	lead := domain.Lead{
		ID:                   row.ID,
		Name:                 row.Name,
		Phone:                phone.NormalizeE164(row.Phone, s.region),
		Priority:             domain.Priority(row.Priority),
		Score:                row.Score,
		ConversionLikelihood: row.ConversionLikelihood,
		DoNotCall:            row.DoNotCall,
		AutopilotEnabled:     row.AutopilotEnabled,
	}

	if age := now.Sub(row.CreatedAt); age >= 0 && age <= speedToLeadHorizon {
		minutes := int(age.Minutes())
		lead.SpeedToLeadMinutes = &minutes
	}
	return lead
}
