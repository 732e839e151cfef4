package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	apperrors "github.com/wfunc/snake-talk/internal/errors"
	"github.com/wfunc/snake-talk/internal/game"
	"github.com/wfunc/snake-talk/internal/logger"
	"github.com/wfunc/snake-talk/internal/models"
	"github.com/wfunc/snake-talk/internal/repository"
	"github.com/wfunc/snake-talk/internal/utils"
	"github.com/wfunc/snake-talk/internal/websocket"
	"go.uber.org/zap"
)

// sessionService 对局会话服务实现
type sessionService struct {
	sessionRepo repository.SessionRepository
	turnRepo    repository.TurnRecordRepository
	manager     *game.Manager
	tokens      *utils.TokenManager
	hub         *websocket.Hub
	cfg         *Config
	log         *zap.Logger
}

// NewSessionService 创建对局会话服务
func NewSessionService(
	sessionRepo repository.SessionRepository,
	turnRepo repository.TurnRecordRepository,
	manager *game.Manager,
	tokens *utils.TokenManager,
	hub *websocket.Hub,
	cfg *Config,
	log *zap.Logger,
) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		turnRepo:    turnRepo,
		manager:     manager,
		tokens:      tokens,
		hub:         hub,
		cfg:         cfg,
		log:         log,
	}
}

// CreateSession 开房
func (s *sessionService) CreateSession(ctx context.Context, req *CreateSessionRequest) (*SessionGrant, error) {
	code, err := s.allocateRoomCode(ctx)
	if err != nil {
		return nil, err
	}

	playerID := uuid.New().String()

	initial, err := game.NewState().Marshal()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDataIntegrity)
	}

	session := &models.Session{
		SessionID:          code,
		Player1ID:          playerID,
		Player1Nickname:    req.Nickname,
		RelationshipType:   req.RelationshipType,
		ConversationStyles: models.StringSlice(req.ConversationStyles),
		CustomQuestion:     req.CustomQuestion,
		State:              initial,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "创建对局失败")
	}

	token, err := s.tokens.GeneratePlayerToken(code, playerID, string(game.Player1))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTokenInvalid, "签发令牌失败")
	}

	s.log.Info("创建对局",
		zap.String("session_id", code),
		zap.String("relationship", req.RelationshipType))
	logger.LogGameEvent("session_created", code, map[string]interface{}{
		"relationship": req.RelationshipType,
	})

	return &SessionGrant{
		SessionID: code,
		PlayerID:  playerID,
		Player:    string(game.Player1),
		Token:     token,
	}, nil
}

// allocateRoomCode 生成不冲突的房间码
// 生成后查重，撞码就换一个再试；真正的唯一性由数据库唯一索引兜底
func (s *sessionService) allocateRoomCode(ctx context.Context) (string, error) {
	retries := s.cfg.CodeRetries
	if retries <= 0 {
		retries = 5
	}

	for i := 0; i < retries; i++ {
		code, err := utils.GenerateRoomCode(s.cfg.RoomCodeLength)
		if err != nil {
			return "", apperrors.Wrap(err, apperrors.ErrUnknown, "生成房间码失败")
		}
		exists, err := s.sessionRepo.ExistsBySessionID(ctx, code)
		if err != nil {
			return "", apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
		}
		if !exists {
			return code, nil
		}
	}
	return "", apperrors.New(apperrors.ErrRoomCodeClash)
}

// JoinSession 入座为玩家2
func (s *sessionService) JoinSession(ctx context.Context, req *JoinSessionRequest) (*SessionGrant, error) {
	code := utils.NormalizeRoomCode(req.RoomCode)
	playerID := uuid.New().String()

	// 原子认领，并发时只有一个请求能成功
	if err := s.sessionRepo.ClaimPlayer2Slot(ctx, code, playerID, req.Nickname); err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.FindBySessionID(ctx, code)
	if err != nil {
		return nil, err
	}

	// 双人到齐即开局
	rt, err := s.manager.Acquire(code, session.State)
	if err != nil {
		return nil, err
	}
	rt.MarkStarted()

	snapshot, err := rt.SnapshotJSON()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDataIntegrity)
	}
	if err := s.sessionRepo.UpdateState(ctx, code, snapshot); err != nil {
		return nil, err
	}

	token, err := s.tokens.GeneratePlayerToken(code, playerID, string(game.Player2))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTokenInvalid, "签发令牌失败")
	}

	s.log.Info("玩家入座",
		zap.String("session_id", code),
		zap.String("nickname", req.Nickname))
	logger.LogGameEvent("player_joined", code, map[string]interface{}{
		"nickname": req.Nickname,
	})

	// 推送入座通知和开局后的完整状态
	joined, _ := json.Marshal(map[string]string{"nickname": req.Nickname})
	s.hub.SendToRoom(code, &websocket.Message{
		Type:   websocket.MessageTypePlayerJoined,
		Player: string(game.Player2),
		Data:   joined,
	})
	pushState(s.hub, s.log, code, rt.CloneState())

	return &SessionGrant{
		SessionID: code,
		PlayerID:  playerID,
		Player:    string(game.Player2),
		Token:     token,
	}, nil
}

// GetSession 查询对局详情
func (s *sessionService) GetSession(ctx context.Context, sessionID string) (*SessionDetail, error) {
	code := utils.NormalizeRoomCode(sessionID)
	session, err := s.sessionRepo.FindBySessionID(ctx, code)
	if err != nil {
		return nil, err
	}

	// 内存运行时比落库快照新，优先取运行时
	var st *game.State
	if rt, ok := s.manager.Peek(code); ok {
		st = rt.CloneState()
	} else {
		st, err = game.UnmarshalState(session.State)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrDataIntegrity, "对局快照损坏")
		}
	}

	return &SessionDetail{
		SessionID:          session.SessionID,
		Player1Nickname:    session.Player1Nickname,
		Player2Nickname:    session.Player2Nickname,
		HasPlayer2:         session.HasPlayer2(),
		RelationshipType:   session.RelationshipType,
		ConversationStyles: []string(session.ConversationStyles),
		State:              st,
	}, nil
}

// GetHistory 分页查询回合历史
func (s *sessionService) GetHistory(ctx context.Context, sessionID string, page, pageSize int) ([]*models.TurnRecord, int64, error) {
	code := utils.NormalizeRoomCode(sessionID)
	if _, err := s.sessionRepo.FindBySessionID(ctx, code); err != nil {
		return nil, 0, err
	}

	p := repository.NewPagination(page, pageSize)
	records, err := s.turnRepo.FindBySessionID(ctx, code, p)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return records, p.Total, nil
}
