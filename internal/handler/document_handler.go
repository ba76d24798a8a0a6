package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spendbot/internal/domain"
	"spendbot/internal/middleware"
	"spendbot/internal/port"
	"spendbot/internal/wizard"
)

// SessionStarter begins a receipt session for a document.
type SessionStarter interface {
	StartDocument(ctx context.Context, t wizard.Trigger) error
}

// DocumentHandler lets trusted services route a stored document into a user's chat,
// where it goes through the same review flow as an uploaded photo.
type DocumentHandler struct {
	sessions SessionStarter
	users    port.UserRepository
	log      *zap.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(sessions SessionStarter, users port.UserRepository, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{sessions: sessions, users: users, log: log}
}

// CreateDocumentRequest is the body of POST /api/v1/documents.
type CreateDocumentRequest struct {
	UserID     int64  `json:"user_id" binding:"required"`
	ChatID     int64  `json:"chat_id"`
	DocumentID string `json:"document_id" binding:"required"`
}

// Create handles POST /api/v1/documents. The session runs in the background because
// extraction can take minutes; the caller only learns that it was accepted.
func (h *DocumentHandler) Create(c *gin.Context) {
	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.DocumentID) == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "user_id and document_id are required")
		return
	}

	chatID := req.ChatID
	if chatID == 0 {
		user, err := h.users.GetByID(c.Request.Context(), req.UserID)
		if err != nil {
			HandleError(c, err)
			return
		}
		chatID = user.ChatID
	}

	subject, _ := middleware.GetSubject(c)
	trig := wizard.Trigger{
		UserID:    req.UserID,
		ChatID:    chatID,
		Ref:       port.FileRef{ExternalDocumentID: req.DocumentID},
		SourceTag: domain.SourceExternal,
	}

	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		if err := h.sessions.StartDocument(ctx, trig); err != nil {
			h.log.Error("http: external document session failed",
				zap.Int64("user_id", trig.UserID),
				zap.String("document_id", req.DocumentID),
				zap.String("caller", subject),
				zap.Error(err))
		}
	}()

	RespondAccepted(c, gin.H{"user_id": req.UserID, "chat_id": chatID, "document_id": req.DocumentID})
}
