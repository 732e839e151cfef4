package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(hub *Hub, sessionID, player string) *Client {
	return &Client{
		ID:        player + "@" + sessionID,
		SessionID: sessionID,
		Player:    player,
		Hub:       hub,
		Send:      make(chan []byte, 8),
	}
}

func drain(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case data := <-c.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(time.Second):
		t.Fatal("没有收到消息")
		return nil
	}
}

func TestRegisterSendsConnected(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient(hub, "AB12CD", "player1")

	hub.registerClient(c)
	msg := drain(t, c)
	assert.Equal(t, MessageTypeConnected, msg.Type)
	assert.Equal(t, "AB12CD", msg.SessionID)
	assert.Equal(t, 1, hub.RoomSize("AB12CD"))
}

func TestSendToRoomScopedToSession(t *testing.T) {
	hub := NewHub(zap.NewNop())
	p1 := newTestClient(hub, "AB12CD", "player1")
	p2 := newTestClient(hub, "AB12CD", "player2")
	other := newTestClient(hub, "ZZ9999", "player1")

	for _, c := range []*Client{p1, p2, other} {
		hub.registerClient(c)
		drain(t, c) // 吃掉connected
	}

	hub.SendToRoom("AB12CD", &Message{
		Type: MessageTypeGameState,
		Data: json.RawMessage(`{"player1_position":14}`),
	})

	for _, c := range []*Client{p1, p2} {
		msg := drain(t, c)
		assert.Equal(t, MessageTypeGameState, msg.Type)
		assert.Equal(t, "AB12CD", msg.SessionID)
		assert.NotZero(t, msg.Timestamp)
	}
	assert.Empty(t, other.Send)
}

func TestSendToClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient(hub, "AB12CD", "player1")
	hub.registerClient(c)
	drain(t, c)

	err := hub.SendToClient(c.ID, &Message{Type: MessageTypeQuestion})
	require.NoError(t, err)
	msg := drain(t, c)
	assert.Equal(t, MessageTypeQuestion, msg.Type)

	err = hub.SendToClient("ghost", &Message{Type: MessageTypeQuestion})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestUnregisterRemovesFromRoom(t *testing.T) {
	hub := NewHub(zap.NewNop())
	p1 := newTestClient(hub, "AB12CD", "player1")
	p2 := newTestClient(hub, "AB12CD", "player2")
	hub.registerClient(p1)
	hub.registerClient(p2)

	hub.unregisterClient(p1)
	assert.Equal(t, 1, hub.RoomSize("AB12CD"))
	assert.Equal(t, 1, hub.OnlineCount())

	hub.unregisterClient(p2)
	assert.Equal(t, 0, hub.RoomSize("AB12CD"))

	// Send通道已关闭
	_, open := <-p1.Send
	assert.False(t, open)
}

func TestChatRelayIncludesSender(t *testing.T) {
	hub := NewHub(zap.NewNop())
	p1 := newTestClient(hub, "AB12CD", "player1")
	p2 := newTestClient(hub, "AB12CD", "player2")
	hub.registerClient(p1)
	hub.registerClient(p2)
	drain(t, p1)
	drain(t, p2)

	payload, _ := json.Marshal(&Message{
		Type: MessageTypeChat,
		Data: json.RawMessage(`{"text":"hello"}`),
	})
	p1.handleMessage(payload)

	for _, c := range []*Client{p1, p2} {
		msg := drain(t, c)
		assert.Equal(t, MessageTypeChat, msg.Type)
		assert.Equal(t, "player1", msg.Player)
		assert.JSONEq(t, `{"text":"hello"}`, string(msg.Data))
	}
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient(hub, "AB12CD", "player1")
	hub.registerClient(c)
	drain(t, c)

	c.handleMessage([]byte("{not json"))
	msg := drain(t, c)
	assert.Equal(t, MessageTypeError, msg.Type)

	c.handleMessage([]byte(`{"type":"teleport"}`))
	msg = drain(t, c)
	assert.Equal(t, MessageTypeError, msg.Type)
}
