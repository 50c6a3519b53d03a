package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"legalai-assistant/internal/app"
	"legalai-assistant/internal/model"
	"legalai-assistant/internal/transport/http/middleware"
	"legalai-assistant/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type QueryRequest struct {
	Query string `json:"query" binding:"required"`
}

type RenameRequest struct {
	Text string `json:"text" binding:"required"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Query appends the user's question, asks the legal upstream, and returns
// every message the exchange appended: the question, then the answer, then
// one message per key point.
func (h *ChatHandler) Query(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "session not found")
		return
	}

	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	messages, err := h.chatService.SendQuery(c.Request.Context(), session, req.Query)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrQueryEmpty):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "send query failed")
		}
		return
	}

	response.OK(c, gin.H{"messages": messages})
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "session not found")
		return
	}

	response.OK(c, gin.H{"messages": h.chatService.Transcript(session)})
}

// History is the sidebar view: user-authored messages only.
func (h *ChatHandler) History(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "session not found")
		return
	}

	response.OK(c, gin.H{"messages": h.chatService.History(session)})
}

func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "session not found")
		return
	}

	id := c.Param("id")
	if id == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid message id")
		return
	}

	// Deleting twice reports success twice; the second call changes nothing.
	h.chatService.DeleteMessage(session, id)
	response.OK(c, gin.H{"deleted_message_id": id})
}

func (h *ChatHandler) RenameMessage(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "session not found")
		return
	}

	id := c.Param("id")
	if id == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid message id")
		return
	}

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	updated, err := h.chatService.RenameMessage(session, id, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrMessageNotFound):
			response.Error(c, http.StatusNotFound, response.CodeMessageNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "rename message failed")
		}
		return
	}

	response.OK(c, gin.H{"message": updated})
}

func (h *ChatHandler) Categories(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "session not found")
		return
	}

	categories, err := h.chatService.Categories(c.Request.Context(), session)
	if err != nil {
		if errors.Is(err, app.ErrSessionNotFound) {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token")
			return
		}
		response.Error(c, http.StatusBadGateway, response.CodeUpstreamFailed, "fetch categories failed")
		return
	}

	response.OK(c, gin.H{"legal_categories": categories})
}

// AuditHistory returns the caller's persisted query records when the audit
// trail is enabled.
func (h *ChatHandler) AuditHistory(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "session not found")
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil {
			limit = parsed
		}
	}

	records, err := h.chatService.AuditHistory(session, limit)
	if err != nil {
		if errors.Is(err, app.ErrAuditDisabled) {
			response.Error(c, http.StatusNotFound, response.CodeAuditDisabled, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch audit history failed")
		return
	}
	if records == nil {
		records = []model.AuditRecord{}
	}

	response.OK(c, gin.H{"records": records})
}
