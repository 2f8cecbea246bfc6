// Package repository provides pgx data access for the lead store.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lead is a prospect row as stored. The engine derives speed-to-lead
// from CreatedAt at read time.
type Lead struct {
	ID                   uuid.UUID
	Name                 string
	Phone                string
	Priority             string
	Score                int
	ConversionLikelihood int
	DoNotCall            bool
	AutopilotEnabled     bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// CallLog is one concluded call attempt against a lead.
type CallLog struct {
	ID              uuid.UUID
	LeadID          uuid.UUID
	Outcome         string
	DurationSeconds int
	Notes           *string
	EndedAt         time.Time
	CreatedAt       time.Time
}

const leadColumns = `id, name, phone, priority, score, conversion_likelihood, do_not_call, autopilot_enabled, created_at, updated_at`

// ListDialable returns the current dial set, freshest leads first.
// Do-not-call leads are included: the engine drops them from queues but
// the directory still shows them.
func (r *Repository) ListDialable(ctx context.Context, limit int) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLeads(rows)
}

// GetByID returns one lead or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE id = $1
	`, id)

	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Phone, &lead.Priority, &lead.Score,
		&lead.ConversionLikelihood, &lead.DoNotCall, &lead.AutopilotEnabled,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

// InsertCallLog records a concluded call attempt.
func (r *Repository) InsertCallLog(ctx context.Context, log CallLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO call_logs (id, lead_id, outcome, duration_seconds, notes, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, log.ID, log.LeadID, log.Outcome, log.DurationSeconds, log.Notes, log.EndedAt)
	return err
}

// ListCallLogs returns a lead's call history, newest first.
func (r *Repository) ListCallLogs(ctx context.Context, leadID uuid.UUID) ([]CallLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, outcome, duration_seconds, notes, ended_at, created_at
		FROM call_logs
		WHERE lead_id = $1
		ORDER BY ended_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]CallLog, 0)
	for rows.Next() {
		var log CallLog
		if err := rows.Scan(&log.ID, &log.LeadID, &log.Outcome, &log.DurationSeconds, &log.Notes, &log.EndedAt, &log.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return logs, nil
}

// SetDoNotCall flags or clears a lead's do-not-call status, used by the
// registry re-verify task.
func (r *Repository) SetDoNotCall(ctx context.Context, leadID uuid.UUID, flag bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET do_not_call = $2, updated_at = now()
		WHERE id = $1
	`, leadID, flag)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanLeads(rows pgx.Rows) ([]Lead, error) {
	leads := make([]Lead, 0)
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(
			&lead.ID, &lead.Name, &lead.Phone, &lead.Priority, &lead.Score,
			&lead.ConversionLikelihood, &lead.DoNotCall, &lead.AutopilotEnabled,
			&lead.CreatedAt, &lead.UpdatedAt,
		); err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leads, nil
}
