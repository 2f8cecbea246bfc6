// Package transport defines response DTOs for the lead directory.
package transport

import (
	"time"

	"dialer_backend/internal/dialer/domain"
	"dialer_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// LeadResponse is the directory view of a lead, including the derived
// speed-to-lead value the dial queues rank on.
type LeadResponse struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Phone                string    `json:"phone"`
	Priority             string    `json:"priority"`
	Score                int       `json:"score"`
	ConversionLikelihood int       `json:"conversionLikelihood"`
	SpeedToLeadMinutes   *int      `json:"speedToLeadMinutes,omitempty"`
	DoNotCall            bool      `json:"doNotCall"`
	AutopilotEnabled     bool      `json:"autopilotEnabled"`
}

// CallLogResponse is one concluded call attempt.
type CallLogResponse struct {
	ID              uuid.UUID `json:"id"`
	LeadID          uuid.UUID `json:"leadId"`
	Outcome         string    `json:"outcome"`
	DurationSeconds int       `json:"durationSeconds"`
	Notes           string    `json:"notes,omitempty"`
	EndedAt         time.Time `json:"endedAt"`
}

// FromDomain maps an engine lead to its directory response.
func FromDomain(lead domain.Lead) LeadResponse {
	return LeadResponse{
		ID:                   lead.ID,
		Name:                 lead.Name,
		Phone:                lead.Phone,
		Priority:             string(lead.Priority),
		Score:                lead.Score,
		ConversionLikelihood: lead.ConversionLikelihood,
		SpeedToLeadMinutes:   lead.SpeedToLeadMinutes,
		DoNotCall:            lead.DoNotCall,
		AutopilotEnabled:     lead.AutopilotEnabled,
	}
}

// FromDomainList maps a lead list to directory responses.
func FromDomainList(leads []domain.Lead) []LeadResponse {
	out := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, FromDomain(lead))
	}
	return out
}

// FromCallLogs maps stored call logs to responses.
func FromCallLogs(logs []repository.CallLog) []CallLogResponse {
	out := make([]CallLogResponse, 0, len(logs))
	for _, log := range logs {
		resp := CallLogResponse{
			ID:              log.ID,
			LeadID:          log.LeadID,
			Outcome:         log.Outcome,
			DurationSeconds: log.DurationSeconds,
			EndedAt:         log.EndedAt,
		}
		if log.Notes != nil {
			resp.Notes = *log.Notes
		}
		out = append(out, resp)
	}
	return out
}
