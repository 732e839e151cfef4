package service

import (
	"encoding/json"
	"time"

	"github.com/wfunc/snake-talk/internal/board"
	"github.com/wfunc/snake-talk/internal/config"
	"github.com/wfunc/snake-talk/internal/game"
	"github.com/wfunc/snake-talk/internal/game/question"
	"github.com/wfunc/snake-talk/internal/repository"
	"github.com/wfunc/snake-talk/internal/utils"
	"github.com/wfunc/snake-talk/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config 服务配置
type Config struct {
	TokenSecret     string
	TokenExpiry     time.Duration
	RoomCodeLength  int
	CodeRetries     int
	Rules           game.Rules
	QuestionTiles   []int
	SkipAfterSnakes int
	RollDelay       time.Duration
	SlideDelay      time.Duration
	IdleTimeout     time.Duration
	MaxSessions     int
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		TokenSecret:     "change-me-in-production",
		TokenExpiry:     24 * time.Hour,
		RoomCodeLength:  6,
		CodeRetries:     5,
		Rules:           game.DefaultRules(),
		QuestionTiles:   game.DefaultQuestionTiles(),
		SkipAfterSnakes: 2,
		RollDelay:       time.Second,
		SlideDelay:      2 * time.Second,
		IdleTimeout:     2 * time.Hour,
		MaxSessions:     10000,
	}
}

// FromAppConfig 从应用配置转换
func FromAppConfig(cfg *config.Config, topo *board.Topology) (*Config, *board.Topology, error) {
	if topo == nil {
		var err error
		topo, err = board.FromConfig(&cfg.Game.Board)
		if err != nil {
			return nil, nil, err
		}
	}

	return &Config{
		TokenSecret:     cfg.Token.Secret,
		TokenExpiry:     cfg.Token.Expiry,
		RoomCodeLength:  cfg.Session.RoomCodeLength,
		CodeRetries:     cfg.Session.CodeRetries,
		Rules: game.Rules{
			TurnLocked:     cfg.Game.Rules.TurnLocked,
			SixToStart:     cfg.Game.Rules.SixToStart,
			ExtraTurnOnSix: cfg.Game.Rules.ExtraTurnOnSix,
		},
		QuestionTiles:   cfg.Game.QuestionTiles,
		SkipAfterSnakes: cfg.Game.SkipAfterSnakes,
		RollDelay:       cfg.Game.RollDelay,
		SlideDelay:      cfg.Game.SlideDelay,
		IdleTimeout:     cfg.Session.IdleTimeout,
		MaxSessions:     cfg.Session.MaxSessions,
	}, topo, nil
}

// Services 服务集合
type Services struct {
	Session SessionService
	Game    GameService
	Manager *game.Manager
	Hub     *websocket.Hub
	Tokens  *utils.TokenManager
}

// NewServices 创建服务集合
func NewServices(db *gorm.DB, cfg *Config, topo *board.Topology, hub *websocket.Hub, log *zap.Logger) *Services {
	sessionRepo := repository.NewSessionRepository(db)
	turnRepo := repository.NewTurnRecordRepository(db)

	engine := game.NewEngine(topo, game.NewDice(), cfg.Rules, cfg.QuestionTiles, log)
	manager := game.NewManager(&game.ManagerConfig{
		Engine:      engine,
		SkipAfter:   cfg.SkipAfterSnakes,
		Logger:      log,
		IdleTimeout: cfg.IdleTimeout,
		MaxSessions: cfg.MaxSessions,
	})

	tokens := utils.NewTokenManager(cfg.TokenSecret, cfg.TokenExpiry)
	picker := question.NewPicker()

	sessionService := NewSessionService(sessionRepo, turnRepo, manager, tokens, hub, cfg, log)
	gameService := NewGameService(sessionRepo, turnRepo, manager, picker, hub, cfg, log)

	return &Services{
		Session: sessionService,
		Game:    gameService,
		Manager: manager,
		Hub:     hub,
		Tokens:  tokens,
	}
}

// pushState 推送全量状态快照
func pushState(hub *websocket.Hub, log *zap.Logger, sessionID string, st *game.State) {
	data, err := json.Marshal(st)
	if err != nil {
		log.Error("序列化状态失败", zap.Error(err))
		return
	}
	hub.SendToRoom(sessionID, &websocket.Message{
		Type: websocket.MessageTypeGameState,
		Data: data,
	})
}
