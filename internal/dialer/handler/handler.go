// Package handler exposes the dialer engine's command surface over HTTP.
package handler

import (
	"net/http"

	"dialer_backend/internal/dialer/domain"
	"dialer_backend/internal/dialer/engine"
	"dialer_backend/internal/dialer/transport"
	"dialer_backend/platform/httpkit"
	"dialer_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for the dialer engine.
type Handler struct {
	eng *engine.Engine
	val *validator.Validator
}

// New creates a new dialer handler.
func New(eng *engine.Engine, val *validator.Validator) *Handler {
	return &Handler{eng: eng, val: val}
}

// RegisterRoutes registers the dialer command routes. Every command
// returns the full engine snapshot for re-rendering.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/state", h.State)

	rg.POST("/start", h.StartDialing)
	rg.POST("/pause", h.PauseDialing)
	rg.POST("/leads/select", h.SelectLead)

	rg.POST("/call/ringing", h.CallRinging)
	rg.POST("/call/answered", h.CallAnswered)
	rg.POST("/call/missed", h.CallMissed)
	rg.POST("/call/voicemail", h.CallVoicemail)
	rg.POST("/call/end", h.EndCall)

	rg.POST("/queues/move", h.MoveLead)
	rg.POST("/queues/reorder", h.ReorderQueue)

	rg.POST("/compliance/dnc-check", h.CheckDNC)
	rg.PUT("/compliance/audit", h.SetAudit)
}

// State handles GET /api/v1/dialer/state
func (h *Handler) State(c *gin.Context) {
	httpkit.OK(c, h.eng.Snapshot())
}

// StartDialing handles POST /api/v1/dialer/start
func (h *Handler) StartDialing(c *gin.Context) {
	snap, err := h.eng.StartDialing(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}

// PauseDialing handles POST /api/v1/dialer/pause
func (h *Handler) PauseDialing(c *gin.Context) {
	httpkit.OK(c, h.eng.PauseDialing())
}

// SelectLead handles POST /api/v1/dialer/leads/select
func (h *Handler) SelectLead(c *gin.Context) {
	var req transport.SelectLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	snap, err := h.eng.SelectLead(req.LeadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}

// CallRinging handles POST /api/v1/dialer/call/ringing
func (h *Handler) CallRinging(c *gin.Context) {
	snap, err := h.eng.CallRinging()
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}

// CallAnswered handles POST /api/v1/dialer/call/answered
func (h *Handler) CallAnswered(c *gin.Context) {
	snap, err := h.eng.CallAnswered(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}

// CallMissed handles POST /api/v1/dialer/call/missed
func (h *Handler) CallMissed(c *gin.Context) {
	snap, err := h.eng.CallMissed(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}

// CallVoicemail handles POST /api/v1/dialer/call/voicemail
func (h *Handler) CallVoicemail(c *gin.Context) {
	snap, err := h.eng.CallVoicemail(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}

// EndCall handles POST /api/v1/dialer/call/end
func (h *Handler) EndCall(c *gin.Context) {
	var req transport.EndCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	snap, err := h.eng.EndCall(c.Request.Context(), domain.Outcome(req.Outcome), req.Notes)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}

// MoveLead handles POST /api/v1/dialer/queues/move
func (h *Handler) MoveLead(c *gin.Context) {
	var req transport.MoveLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	snap, err := h.eng.MoveLead(c.Request.Context(), req.LeadID, domain.QueueName(req.From), domain.QueueName(req.To))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}

// ReorderQueue handles POST /api/v1/dialer/queues/reorder
func (h *Handler) ReorderQueue(c *gin.Context) {
	var req transport.ReorderQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	snap, err := h.eng.ReorderQueue(c.Request.Context(), domain.QueueName(req.Queue))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}

// CheckDNC handles POST /api/v1/dialer/compliance/dnc-check
func (h *Handler) CheckDNC(c *gin.Context) {
	snap, err := h.eng.CheckDNC(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}

// SetAudit handles PUT /api/v1/dialer/compliance/audit
func (h *Handler) SetAudit(c *gin.Context) {
	var req transport.SetAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	httpkit.OK(c, h.eng.SetAudit(*req.Enabled))
}
