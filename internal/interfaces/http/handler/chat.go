package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	chatapp "github.com/worktally/backend/internal/application/chat"
	"github.com/worktally/backend/internal/domain/chat"
	"github.com/worktally/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// sseKeepaliveInterval is how often idle streams get a comment line so
// intermediaries do not drop the connection
const sseKeepaliveInterval = 25 * time.Second

// ChatHandler handles chat messages, the live chat stream, and presence
type ChatHandler struct {
	BaseHandler
	chatService     *chatapp.ChatService
	presenceService *chatapp.PresenceService
	relay           chatapp.Relay
	bus             chatapp.FeedBus
	userRepo        identity.UserRepository
	logger          *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(
	chatService *chatapp.ChatService,
	presenceService *chatapp.PresenceService,
	relay chatapp.Relay,
	bus chatapp.FeedBus,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		chatService:     chatService,
		presenceService: presenceService,
		relay:           relay,
		bus:             bus,
		userRepo:        userRepo,
		logger:          logger,
	}
}

// RegisterRoutes registers chat and presence endpoints
func (h *ChatHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ws := rg.Group("/workspaces/:workspace_id")

	chatGroup := ws.Group("/chat")
	chatGroup.GET("/messages", h.History)
	chatGroup.POST("/messages", h.Send)
	chatGroup.PUT("/messages/:message_id", h.Edit)
	chatGroup.DELETE("/messages/:message_id", h.Delete)
	chatGroup.GET("/stream", h.Stream)

	presence := ws.Group("/presence")
	presence.GET("", h.Roster)
	presence.POST("/heartbeat", h.Heartbeat)
	presence.DELETE("", h.LeavePresence)
	presence.GET("/stream", h.PresenceStream)
}

// channelKey builds the chat scope from the workspace and the optional
// tab_id query parameter
func (h *ChatHandler) channelKey(c *gin.Context, workspaceID uuid.UUID) (chat.ChannelKey, bool) {
	key := chat.ChannelKey{WorkspaceID: workspaceID}
	if raw := c.Query("tab_id"); raw != "" {
		tabID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid tab ID")
			return key, false
		}
		key.TabID = &tabID
	}
	return key, true
}

// History returns the scope's messages in insertion order
func (h *ChatHandler) History(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}
	key, ok := h.channelKey(c, workspaceID)
	if !ok {
		return
	}

	resp, err := h.chatService.HistoryForMember(c.Request.Context(), key, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Send posts a message to the workspace or tab scope
func (h *ChatHandler) Send(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	var req chatapp.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	key := chat.ChannelKey{WorkspaceID: workspaceID, TabID: req.TabID}
	resp, err := h.chatService.Send(c.Request.Context(), key, userID, req.Content)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Edit rewrites a message's content, sender only
func (h *ChatHandler) Edit(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}
	messageID, err := parseUUIDParam(c, "message_id")
	if err != nil {
		h.BadRequest(c, "Invalid message ID")
		return
	}

	var req chatapp.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	key := chat.ChannelKey{WorkspaceID: workspaceID}
	resp, err := h.chatService.Edit(c.Request.Context(), key, userID, messageID, req.Content)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a message, sender or moderator
func (h *ChatHandler) Delete(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}
	messageID, err := parseUUIDParam(c, "message_id")
	if err != nil {
		h.BadRequest(c, "Invalid message ID")
		return
	}

	key := chat.ChannelKey{WorkspaceID: workspaceID}
	if err := h.chatService.Delete(c.Request.Context(), key, userID, messageID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Stream opens an SSE connection carrying the scope's history snapshot
// followed by live inserts, edits, and deletes
func (h *ChatHandler) Stream(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}
	key, ok := h.channelKey(c, workspaceID)
	if !ok {
		return
	}

	if err := h.chatService.EnsureMember(c.Request.Context(), workspaceID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	session := chatapp.NewSession(key, h.chatService, h.relay, h.bus, h.userRepo, h.logger)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		_ = session.Run(ctx)
	}()

	setSSEHeaders(c)

	select {
	case <-session.Ready():
	case <-ctx.Done():
		return
	}

	if !h.writeSSEJSON(c, "snapshot", session.Snapshot()) {
		return
	}
	c.Writer.Flush()

	ticker := time.NewTicker(sseKeepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-session.Events():
			if !h.writeSSEJSON(c, string(ev.Kind), ev) {
				return
			}
			c.Writer.Flush()
		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}

// Heartbeat marks the caller present in the workspace
func (h *ChatHandler) Heartbeat(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.presenceService.Heartbeat(c.Request.Context(), workspaceID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// LeavePresence clears the caller's presence on clean teardown
func (h *ChatHandler) LeavePresence(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.presenceService.Leave(c.Request.Context(), workspaceID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Roster returns who is currently present in the workspace
func (h *ChatHandler) Roster(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.presenceService.Roster(c.Request.Context(), workspaceID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PresenceStream opens an SSE connection that pushes the full roster on
// every presence change. Each event replaces the previous roster.
func (h *ChatHandler) PresenceStream(c *gin.Context) {
	workspaceID, userID, ok := h.scope(c)
	if !ok {
		return
	}

	roster, err := h.presenceService.Roster(c.Request.Context(), workspaceID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	setSSEHeaders(c)

	if !h.writeSSEJSON(c, "roster", roster) {
		return
	}
	c.Writer.Flush()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	syncCh := make(chan struct{}, 1)
	go func() {
		err := h.presenceService.SubscribeSync(ctx, workspaceID, userID, func() {
			select {
			case syncCh <- struct{}{}:
			default:
			}
		})
		if err != nil && ctx.Err() == nil {
			h.logger.Warn("Presence sync subscription ended",
				zap.String("workspace_id", workspaceID.String()),
				zap.Error(err))
		}
	}()

	ticker := time.NewTicker(sseKeepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-syncCh:
			roster, err := h.presenceService.Roster(ctx, workspaceID, userID)
			if err != nil {
				h.logger.Warn("Failed to rebuild presence roster", zap.Error(err))
				continue
			}
			if !h.writeSSEJSON(c, "roster", roster) {
				return
			}
			c.Writer.Flush()
		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}

// setSSEHeaders prepares the response for server-sent events
func setSSEHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
}

// writeSSEJSON marshals the payload and writes one SSE event. Returns
// false when the payload cannot be serialized.
func (h *ChatHandler) writeSSEJSON(c *gin.Context, event string, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal SSE payload",
			zap.String("event", event),
			zap.Error(err))
		return false
	}
	writeSSEEvent(c.Writer, event, string(data))
	return true
}

// writeSSEEvent writes one SSE event to the response writer
func writeSSEEvent(w io.Writer, event, data string) {
	if event != "" {
		fmt.Fprintf(w, "event: %s\n", event)
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
