package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/civicworks/grievance_redressal_app/internal/middleware"
	"github.com/civicworks/grievance_redressal_app/internal/realtime"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// RealtimeHandler attaches websocket clients to the event hub.
type RealtimeHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewRealtimeHandler creates a new RealtimeHandler.
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced by the CORS middleware on the
			// rest of the API; the websocket endpoint accepts any origin and
			// relies on the bearer token for access control.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// registerRealtimeRoutes sets up the websocket subscription endpoint.
func registerRealtimeRoutes(rg *gin.RouterGroup, hub *realtime.Hub) {
	h := NewRealtimeHandler(hub)
	rg.GET("/ws", h.Subscribe)
}

// Subscribe godoc
// @Summary Subscribe to change events
// @Description Upgrades to a websocket and streams change events for the requested topics. Topics is a comma separated list; "grievances", "workerRequests", "workerSignupRequests" or "grievances/{id}". Defaults to "grievances".
// @Tags realtime
// @Param topics query string false "Comma separated topic list"
// @Success 101 "Switching Protocols"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /ws [get]
func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	topics := parseTopics(c.Query("topics"))
	if len(topics) == 0 {
		topics = []string{realtime.TopicGrievances}
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", slog.String("error", err.Error()))
		// Upgrade already wrote the HTTP error response.
		return
	}

	sub := h.hub.Subscribe(topics, 32)

	go h.writePump(conn, sub, logger)
	go h.readPump(conn, sub, logger)
}

// writePump sends hub events and pings until the subscription is torn down.
func (h *RealtimeHandler) writePump(conn *websocket.Conn, sub *realtime.Subscriber, logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-sub.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				logger.Debug("Websocket write failed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages and unsubscribes when the peer goes away.
func (h *RealtimeHandler) readPump(conn *websocket.Conn, sub *realtime.Subscriber, logger *slog.Logger) {
	defer func() {
		h.hub.Unsubscribe(sub)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("Websocket closed unexpectedly", slog.String("error", err.Error()))
			}
			return
		}
	}
}

func parseTopics(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	topics := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}
