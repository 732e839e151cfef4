package service

import (
	"context"

	"github.com/wfunc/snake-talk/internal/game"
	"github.com/wfunc/snake-talk/internal/models"
)

// SessionService 对局会话服务接口
type SessionService interface {
	// CreateSession 开房：生成房间码，玩家1入座
	CreateSession(ctx context.Context, req *CreateSessionRequest) (*SessionGrant, error)
	// JoinSession 凭房间码入座为玩家2（原子认领，满员返回ErrRoomFull）
	JoinSession(ctx context.Context, req *JoinSessionRequest) (*SessionGrant, error)
	// GetSession 查询对局详情（含当前状态快照）
	GetSession(ctx context.Context, sessionID string) (*SessionDetail, error)
	// GetHistory 分页查询回合历史
	GetHistory(ctx context.Context, sessionID string, page, pageSize int) ([]*models.TurnRecord, int64, error)
}

// GameService 游戏动作服务接口
type GameService interface {
	// Roll 掷骰并落定一个回合
	Roll(ctx context.Context, sessionID string, actor game.Player) (*RollResult, error)
	// Answer 提交问题回答
	Answer(ctx context.Context, sessionID string, actor game.Player, text string) error
	// Mirror 把问题反问给对方
	Mirror(ctx context.Context, sessionID string, actor game.Player) error
	// Skip 跳过问题
	Skip(ctx context.Context, sessionID string, actor game.Player) error
	// React 对回答选表情回应
	React(ctx context.Context, sessionID string, actor game.Player, emoji string) error
	// State 当前游戏状态
	State(ctx context.Context, sessionID string) (*game.State, error)
}

// CreateSessionRequest 开房请求
type CreateSessionRequest struct {
	Nickname           string   `json:"nickname" binding:"required,max=100"`
	RelationshipType   string   `json:"relationship_type" binding:"required"`
	ConversationStyles []string `json:"conversation_styles"`
	CustomQuestion     string   `json:"custom_question" binding:"max=500"`
}

// JoinSessionRequest 入座请求
type JoinSessionRequest struct {
	RoomCode string `json:"room_code" binding:"required"`
	Nickname string `json:"nickname" binding:"required,max=100"`
}

// SessionGrant 入座凭证
// 返回给客户端的身份三元组：房间码 + 玩家槽位 + 后续动作用的令牌
type SessionGrant struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`
	Player    string `json:"player"`
	Token     string `json:"token"`
}

// SessionDetail 对局详情
type SessionDetail struct {
	SessionID          string      `json:"session_id"`
	Player1Nickname    string      `json:"player1_nickname"`
	Player2Nickname    string      `json:"player2_nickname"`
	HasPlayer2         bool        `json:"has_player2"`
	RelationshipType   string      `json:"relationship_type"`
	ConversationStyles []string    `json:"conversation_styles"`
	State              *game.State `json:"state"`
}

// RollResult 掷骰结果
type RollResult struct {
	Outcome  *game.TurnOutcome `json:"outcome"`
	State    *game.State       `json:"state"`
	Question string            `json:"question,omitempty"`
}
