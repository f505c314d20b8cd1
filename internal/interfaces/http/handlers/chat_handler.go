package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/MemberPulse-Intelligence/internal/application/chat"
	"github.com/turtacn/MemberPulse-Intelligence/internal/application/operations"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/auth/statictoken"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// ChatHandler serves the conversational endpoints.
type ChatHandler struct {
	chat   *chat.Service
	logger logging.Logger
}

func NewChatHandler(svc *chat.Service, logger logging.Logger) *ChatHandler {
	if logger == nil {
		logger = logging.Default().Named("http.chat")
	}
	return &ChatHandler{chat: svc, logger: logger}
}

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id,omitempty"`
	SessionKey     string `json:"session_key,omitempty"`
}

// ChatResponse is the answer payload.
type ChatResponse struct {
	Answer         string `json:"answer"`
	Intent         string `json:"intent"`
	Tool           string `json:"tool,omitempty"`
	Source         string `json:"source"`
	ConversationID string `json:"conversation_id"`
	ResponseTimeMS int64  `json:"response_time_ms"`
}

// Handle answers one query. Anonymous callers are served through the
// session key; authenticated callers get member-scoped conversations.
func (h *ChatHandler) Handle(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	id := statictoken.IdentityFromContext(c)
	if req.SessionKey == "" {
		req.SessionKey = c.GetHeader("X-Session-Key")
	}

	ans, err := h.chat.Handle(c.Request.Context(), chat.Request{
		Query:          req.Query,
		ConversationID: common.ID(req.ConversationID),
		SessionKey:     req.SessionKey,
		Actor:          actorFor(id),
	})
	if err != nil {
		if !errors.IsCode(err, errors.ErrCodeEmptyQuery) {
			h.logger.Error("chat query failed", logging.Err(err))
		}
		respondError(c, err)
		return
	}

	respondOK(c, ChatResponse{
		Answer:         ans.Text,
		Intent:         string(ans.Intent),
		Tool:           string(ans.Tool),
		Source:         string(ans.Source),
		ConversationID: string(ans.ConversationID),
		ResponseTimeMS: ans.ResponseTimeMS,
	})
}

// Suggestions lists example queries for the caller's role.
func (h *ChatHandler) Suggestions(c *gin.Context) {
	id := statictoken.IdentityFromContext(c)
	respondOK(c, gin.H{"suggestions": h.chat.Suggestions(actorFor(id))})
}

func actorFor(id statictoken.Identity) operations.Actor {
	return operations.Actor{
		ID:   common.ID(id.UserID),
		Role: id.Role,
	}
}
