package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/wfunc/snake-talk/internal/middleware"
	ws "github.com/wfunc/snake-talk/internal/websocket"
	"go.uber.org/zap"
)

// WebSocketHandler WebSocket处理器
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(hub *ws.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// 生产环境应校验Origin
				return true
			},
		},
		logger: logger,
	}
}

// SessionWebSocket 对局推送长连接
// GET /api/v1/sessions/:code/ws?token=...
// 令牌在中间件验过了，这里直接用上下文里的身份
func (h *WebSocketHandler) SessionWebSocket(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	player, ok := middleware.GetPlayer(c)
	if !ok || sessionID == "" {
		c.JSON(http.StatusForbidden, gin.H{"message": "缺少玩家身份"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket升级失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn, sessionID, string(player))
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("WebSocket连接建立",
		zap.String("client_id", client.ID),
		zap.String("session_id", sessionID),
		zap.String("player", string(player)))
}
