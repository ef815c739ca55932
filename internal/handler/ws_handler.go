package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/introly/introly-backend/internal/config"
	"github.com/introly/introly-backend/internal/middleware"
	"github.com/introly/introly-backend/internal/service"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams question change events to admin UIs.
type WSHandler struct {
	rdb             *redis.Client
	questionService *service.QuestionService
	log             zerolog.Logger
	upgrader        websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, questionService *service.QuestionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:             rdb,
		questionService: questionService,
		log:             log.With().Str("component", "ws_handler").Logger(),
		upgrader:        buildUpgrader(allowedOrigins),
	}
}

// QuestionStream godoc
// WS /ws/v1/admin/questions/stream?token=...&tenant=...
// Sends the current question list on connect, then forwards every change
// event published for the tenant until the client disconnects.
func (h *WSHandler) QuestionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tenantID := strings.TrimSpace(c.Query("tenant"))
	if tenantID == "" {
		tenantID = claims.TenantID
	}
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant is required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int64("admin_id", claims.AdminID).
		Str("tenant_id", tenantID).
		Logger()

	questions, err := h.questionService.List(c.Request.Context(), tenantID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Snapshot load failed")
		_ = conn.WriteJSON(gin.H{"event": "error", "message": "failed to load questions"})
		return
	}
	if err := conn.WriteJSON(gin.H{"event": "snapshot", "questions": questions}); err != nil {
		return
	}

	wsLog.Info().Msg("Admin connected to question stream")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Reader goroutine: we expect no client messages, but reading is the
	// only way to observe the peer closing the connection.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
		}
	}()

	if h.rdb == nil {
		<-ctx.Done()
		return
	}

	sub := h.rdb.Subscribe(ctx, config.CacheKey.QuestionEventsChannel(tenantID))
	defer sub.Close()

	events := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			wsLog.Debug().Msg("Question stream closed")
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				wsLog.Debug().Err(err).Msg("Event write failed")
				return
			}
		}
	}
}
