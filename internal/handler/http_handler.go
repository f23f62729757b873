package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/domain"
	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/service"
	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/validator"
	"github.com/rafaeelnunesf/api-bate-papo-uol/pkg/log"
	"github.com/rafaeelnunesf/api-bate-papo-uol/pkg/response"
)

// headerUser carries the caller identity on every authenticated route.
const headerUser = "User"

// Handler exposes the chat service over HTTP.
type Handler struct {
	chatService service.ChatService
	validate    *validator.Validator
}

// NewHandler creates a new HTTP handler.
func NewHandler(chatService service.ChatService, validate *validator.Validator) *Handler {
	return &Handler{
		chatService: chatService,
		validate:    validate,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/participants", h.Join)
	r.GET("/participants", h.ListParticipants)
	r.POST("/status", h.Heartbeat)
	r.POST("/messages", h.PostMessage)
	r.GET("/messages", h.ListMessages)
	r.DELETE("/messages/:id", h.DeleteMessage)

	r.GET("/health", h.HealthCheck)
}

// Join registers a participant and records the arrival status message.
func (h *Handler) Join(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, "malformed participant payload", []string{err.Error()})
		return
	}
	if verr := h.validationDetails(h.validate.JoinRequest(req)); verr != nil {
		response.UnprocessableEntity(c, "invalid participant payload", verr)
		return
	}

	if err := h.chatService.Join(ctx, req.Name); err != nil {
		if errors.Is(err, service.ErrNameTaken) {
			response.Conflict(c, "participant name already taken")
			return
		}
		l.Error().Err(err).Str("name", req.Name).Msg("failed to register participant")
		response.InternalError(c, "failed to register participant")
		return
	}

	response.Created(c, domain.Participant{Name: req.Name})
}

// ListParticipants returns all active participants.
func (h *Handler) ListParticipants(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	participants, err := h.chatService.ListParticipants(ctx)
	if err != nil {
		l.Error().Err(err).Msg("failed to list participants")
		response.InternalError(c, "failed to list participants")
		return
	}

	response.Success(c, participants)
}

// Heartbeat renews the caller's staleness clock.
func (h *Handler) Heartbeat(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	user := c.GetHeader(headerUser)
	if verr := h.validationDetails(h.validate.Identity(user)); verr != nil {
		response.UnprocessableEntity(c, "invalid caller identity", verr)
		return
	}

	if err := h.chatService.Heartbeat(ctx, user); err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			response.NotFound(c, "participant not found")
			return
		}
		l.Error().Err(err).Str("user", user).Msg("failed to renew heartbeat")
		response.InternalError(c, "failed to renew heartbeat")
		return
	}

	response.Success(c, nil)
}

// PostMessage appends a chat message authored by the caller.
func (h *Handler) PostMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	user := c.GetHeader(headerUser)
	if verr := h.validationDetails(h.validate.Identity(user)); verr != nil {
		response.UnprocessableEntity(c, "invalid caller identity", verr)
		return
	}

	var req domain.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, "malformed message payload", []string{err.Error()})
		return
	}
	if verr := h.validationDetails(h.validate.PostMessageRequest(req)); verr != nil {
		response.UnprocessableEntity(c, "invalid message payload", verr)
		return
	}

	msg, err := h.chatService.PostMessage(ctx, user, req)
	if err != nil {
		if errors.Is(err, service.ErrUnknownParticipant) {
			response.Conflict(c, "unknown participant identity")
			return
		}
		l.Error().Err(err).Str("user", user).Msg("failed to post message")
		response.InternalError(c, "failed to post message")
		return
	}

	response.Created(c, msg)
}

// ListMessages returns the messages visible to the caller, newest first.
func (h *Handler) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	user := c.GetHeader(headerUser)
	if verr := h.validationDetails(h.validate.Identity(user)); verr != nil {
		response.UnprocessableEntity(c, "invalid caller identity", verr)
		return
	}

	limit := 0 // no truncation unless asked
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			response.UnprocessableEntity(c, "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}

	messages, err := h.chatService.ListMessages(ctx, user, limit)
	if err != nil {
		if errors.Is(err, service.ErrUnknownParticipant) {
			response.Conflict(c, "unknown participant identity")
			return
		}
		l.Error().Err(err).Str("user", user).Msg("failed to list messages")
		response.InternalError(c, "failed to list messages")
		return
	}

	response.Success(c, messages)
}

// DeleteMessage removes a message; only its author may do so.
func (h *Handler) DeleteMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	user := c.GetHeader(headerUser)
	if verr := h.validationDetails(h.validate.Identity(user)); verr != nil {
		response.UnprocessableEntity(c, "invalid caller identity", verr)
		return
	}

	id := c.Param("id")
	if err := h.chatService.DeleteMessage(ctx, id, user); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			response.NotFound(c, "message not found")
		case errors.Is(err, service.ErrNotMessageAuthor):
			response.Unauthorized(c, "only the author may delete a message")
		default:
			l.Error().Err(err).Str("id", id).Msg("failed to delete message")
			response.InternalError(c, "failed to delete message")
		}
		return
	}

	response.Success(c, nil)
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

// validationDetails unwraps a ValidationError into its detail list, or
// nil when err is nil.
func (h *Handler) validationDetails(err error) []string {
	if err == nil {
		return nil
	}
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		return verr.Details
	}
	return []string{err.Error()}
}
