package handler

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ginsse "github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/sse"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

const defaultSSEHeartbeat = 30 * time.Second

// SSEHandler streams product events to the admin panel.
type SSEHandler struct {
	hub       *sse.Hub
	tokens    *utils.TokenIssuer
	heartbeat time.Duration
}

// NewSSEHandler creates a new SSEHandler.
func NewSSEHandler(hub *sse.Hub, tokens *utils.TokenIssuer) *SSEHandler {
	return &SSEHandler{hub: hub, tokens: tokens, heartbeat: defaultSSEHeartbeat}
}

// Stream handles GET /api/admin/events?token=<jwt>[&events=product.created,...]
// EventSource API cannot set custom headers, so JWT is passed via query param.
// Each product event carries an id; a client reconnecting with a
// Last-Event-ID older than the hub's latest gets a "resync" event first,
// since missed events are not replayed.
func (h *SSEHandler) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.Error(c, 401, utils.CodeUnauthorized, "Missing token query parameter")
		return
	}
	claims, err := h.tokens.Validate(token)
	if err != nil {
		utils.Error(c, 401, utils.CodeInvalidToken, "Invalid or expired token")
		return
	}

	kinds, ok := parseEventKinds(c.Query("events"))
	if !ok {
		utils.Error(c, 400, utils.CodeInvalidRequest, "Unknown event type in events parameter")
		return
	}

	clientID := fmt.Sprintf("admin-%d-%d", claims.UserID, time.Now().UnixNano())

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	client := h.hub.Register(clientID, kinds...)
	defer h.hub.Unregister(clientID)

	c.SSEvent("connected", gin.H{
		"clientId":  clientID,
		"lastId":    h.hub.LastID(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
	if seen, err := strconv.ParseUint(c.GetHeader("Last-Event-ID"), 10, 64); err == nil && seen < h.hub.LastID() {
		c.SSEvent("resync", gin.H{"missedFrom": seen + 1, "lastId": h.hub.LastID()})
	}
	c.Writer.Flush()

	log.Info().Str("client_id", clientID).Int("user_id", claims.UserID).Int("kinds", len(kinds)).Msg("Admin SSE stream started")

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client.Events:
			if !ok {
				return false
			}
			c.Render(-1, ginsse.Event{
				Id:    strconv.FormatUint(msg.ID, 10),
				Event: string(msg.Event),
				Data:  string(msg.Data),
			})
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// parseEventKinds reads a comma separated event filter. Empty means all.
func parseEventKinds(raw string) ([]sse.EventType, bool) {
	var kinds []sse.EventType
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, ok := sse.ParseEventType(part)
		if !ok {
			return nil, false
		}
		kinds = append(kinds, k)
	}
	return kinds, true
}
