// Package handler receives call lifecycle webhooks from the
// call-control provider and translates them into engine commands.
package handler

import (
	"crypto/subtle"
	"net/http"

	"dialer_backend/internal/callcontrol/transport"
	"dialer_backend/internal/dialer/domain"
	"dialer_backend/internal/dialer/engine"
	"dialer_backend/platform/httpkit"
	"dialer_backend/platform/logger"
	"dialer_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles call-control webhook requests.
type Handler struct {
	eng    *engine.Engine
	val    *validator.Validator
	secret string
	log    *logger.Logger
}

// New creates a new call-control webhook handler.
func New(eng *engine.Engine, val *validator.Validator, secret string, log *logger.Logger) *Handler {
	return &Handler{eng: eng, val: val, secret: secret, log: log}
}

// RegisterRoutes registers the webhook route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/call-control", h.SecretMiddleware(), h.CallEvent)
}

// SecretMiddleware validates the X-Webhook-Secret header against the
// configured shared secret.
func (h *Handler) SecretMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.secret == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "webhook secret not configured"})
			return
		}
		provided := c.GetHeader("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return
		}
		c.Next()
	}
}

// CallEvent handles POST /api/v1/webhooks/call-control
func (h *Handler) CallEvent(c *gin.Context) {
	var req transport.CallEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	ctx := c.Request.Context()
	h.log.Info("call-control webhook", "event", req.Event, "callId", req.CallID)

	var err error
	switch req.Event {
	case "ringing":
		_, err = h.eng.CallRinging()
	case "answered":
		_, err = h.eng.CallAnswered(ctx)
	case "no_answer", "busy":
		_, err = h.eng.CallMissed(ctx)
	case "voicemail":
		_, err = h.eng.CallVoicemail(ctx)
	case "completed":
		_, err = h.eng.EndCall(ctx, domain.OutcomeCompleted, "")
	case "failed":
		_, err = h.eng.EndCall(ctx, domain.OutcomeFailed, "")
	}

	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"received": true})
}
