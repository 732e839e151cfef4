package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/wfunc/snake-talk/internal/logger"
	"go.uber.org/zap"
)

// Hub WebSocket连接管理中心
// 按房间码分组推送：一局游戏最多两条活跃连接，掉线重连换新连接
type Hub struct {
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 房间码到客户端的映射
	rooms  map[string][]*Client
	roomMu sync.RWMutex

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	logger *zap.Logger
}

// Message WebSocket消息
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Player    string          `json:"player,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// 消息类型
const (
	// 系统消息
	MessageTypeConnected    = "connected"
	MessageTypeDisconnected = "disconnected"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeError        = "error"

	// 游戏消息
	MessageTypeGameState    = "game_state"    // 全量状态快照推送
	MessageTypeTurnResult   = "turn_result"   // 掷骰落定结果
	MessageTypePlayerJoined = "player_joined" // 第二名玩家入座
	MessageTypeGameOver     = "game_over"

	// 问答子协议
	MessageTypeQuestion         = "question"
	MessageTypeQuestionAnswer   = "question_answer"
	MessageTypeQuestionMirrored = "question_mirrored"
	MessageTypeQuestionSkipped  = "question_skipped"
	MessageTypeReaction         = "reaction"

	// 聊天
	MessageTypeChat = "chat"
)

// NewHub 创建Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string][]*Client),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run 运行Hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToRoom(message.SessionID, message)
		}
	}
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	h.roomMu.Lock()
	h.rooms[client.SessionID] = append(h.rooms[client.SessionID], client)
	h.roomMu.Unlock()

	h.logger.Info("WebSocket客户端连接",
		zap.String("client_id", client.ID),
		zap.String("session_id", client.SessionID),
		zap.String("player", client.Player))

	msg := &Message{
		Type:      MessageTypeConnected,
		SessionID: client.SessionID,
		Timestamp: time.Now().Unix(),
		Data:      json.RawMessage(`{"message":"连接成功"}`),
	}
	h.SendToClient(client.ID, msg)
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
	h.clientsMu.Unlock()

	h.roomMu.Lock()
	clients := h.rooms[client.SessionID]
	for i, c := range clients {
		if c.ID == client.ID {
			h.rooms[client.SessionID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.rooms[client.SessionID]) == 0 {
		delete(h.rooms, client.SessionID)
	}
	h.roomMu.Unlock()

	h.logger.Info("WebSocket客户端断开",
		zap.String("client_id", client.ID),
		zap.String("session_id", client.SessionID))
}

// broadcastToRoom 推送给房间内所有客户端
func (h *Hub) broadcastToRoom(sessionID string, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}

	h.roomMu.RLock()
	clients := h.rooms[sessionID]
	h.roomMu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("客户端发送缓冲区满",
				zap.String("client_id", client.ID),
				zap.String("session_id", sessionID))
		}
	}
}

// SendToClient 发送消息给指定客户端
func (h *Hub) SendToClient(clientID string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.clientsMu.RLock()
	client, ok := h.clients[clientID]
	h.clientsMu.RUnlock()

	if !ok {
		return ErrClientNotFound
	}

	select {
	case client.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// SendToRoom 推送给指定房间（同步接口，服务层直接调）
func (h *Hub) SendToRoom(sessionID string, message *Message) {
	if message.Timestamp == 0 {
		message.Timestamp = time.Now().Unix()
	}
	message.SessionID = sessionID
	logger.LogWebSocketMessage("send", message.Type, message.Data)
	h.broadcastToRoom(sessionID, message)
}

// RoomSize 房间当前连接数
func (h *Hub) RoomSize(sessionID string) int {
	h.roomMu.RLock()
	defer h.roomMu.RUnlock()
	return len(h.rooms[sessionID])
}

// OnlineCount 在线连接总数
func (h *Hub) OnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Register 注册客户端（公开方法）
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister 注销客户端（公开方法）
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
