package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wfunc/snake-talk/internal/board"
	apperrors "github.com/wfunc/snake-talk/internal/errors"
	"github.com/wfunc/snake-talk/internal/game"
	"github.com/wfunc/snake-talk/internal/game/question"
	"github.com/wfunc/snake-talk/internal/logger"
	"github.com/wfunc/snake-talk/internal/models"
	"github.com/wfunc/snake-talk/internal/repository"
	"github.com/wfunc/snake-talk/internal/utils"
	"github.com/wfunc/snake-talk/internal/websocket"
	"go.uber.org/zap"
)

// gameService 游戏动作服务实现
type gameService struct {
	sessionRepo repository.SessionRepository
	turnRepo    repository.TurnRecordRepository
	manager     *game.Manager
	picker      *question.Picker
	hub         *websocket.Hub
	cfg         *Config
	log         *zap.Logger
}

// NewGameService 创建游戏动作服务
func NewGameService(
	sessionRepo repository.SessionRepository,
	turnRepo repository.TurnRecordRepository,
	manager *game.Manager,
	picker *question.Picker,
	hub *websocket.Hub,
	cfg *Config,
	log *zap.Logger,
) GameService {
	return &gameService{
		sessionRepo: sessionRepo,
		turnRepo:    turnRepo,
		manager:     manager,
		picker:      picker,
		hub:         hub,
		cfg:         cfg,
		log:         log,
	}
}

// acquire 定位对局并水合运行时
func (s *gameService) acquire(ctx context.Context, sessionID string) (*models.Session, *game.Runtime, error) {
	code := utils.NormalizeRoomCode(sessionID)
	session, err := s.sessionRepo.FindBySessionID(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	rt, err := s.manager.Acquire(code, session.State)
	if err != nil {
		return nil, nil, err
	}
	return session, rt, nil
}

// Roll 掷骰并落定一个回合
//
// 节奏控制：掷骰停顿让双方看到骰子动画，踩蛇后再停顿一段滑行时间，
// 期间Sliding提示挂在状态上推送，动作门闩挡住并发的第二次掷骰。
func (s *gameService) Roll(ctx context.Context, sessionID string, actor game.Player) (*RollResult, error) {
	session, rt, err := s.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := rt.BeginAction(); err != nil {
		return nil, err
	}
	defer rt.EndAction()

	// 骰子动画停顿
	if err := pause(ctx, s.cfg.RollDelay); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCanceled)
	}

	out, err := rt.ApplyTurn(actor)
	if err != nil {
		return nil, err
	}

	s.broadcastTurn(session.SessionID, out)

	// 回合一旦落定立即落库，后面的演出停顿和问题触发都不能再把它弄丢，
	// 所以这里不用请求上下文：客户端断线不该吞掉已落定的回合
	if err := s.persist(context.Background(), session.SessionID, rt); err != nil {
		return nil, err
	}
	s.recordTurn(context.Background(), session.SessionID, out)

	// 踩蛇：挂上滑行提示推送，等动画播完再摘掉
	if out.Special != nil && out.Special.Kind == board.TileSnake {
		rt.SetSliding(&game.SlidingHint{
			Player: actor,
			Path:   game.SlidePath(out.Special.From, out.Special.To),
		})
		pushState(s.hub, s.log, session.SessionID, rt.CloneState())

		// 演出停顿被打断只是不再干等，回合继续收尾
		_ = pause(ctx, s.cfg.SlideDelay)
		rt.ClearSliding()
	}

	// 问题触发：按会话的关系风味选题
	var picked string
	if out.Question != nil {
		picked = s.picker.Pick(
			session.RelationshipType,
			[]string(session.ConversationStyles),
			session.CustomQuestion,
		)
		if picked != "" && rt.TriggerQuestion(actor, picked) {
			s.broadcastQuestion(session.SessionID, actor, picked, out.Question)
		} else {
			picked = ""
			if out.Question.Reason == game.ReasonMilestone {
				// 弹窗没开成，里程碑格归还，下次落上仍可触发
				rt.ReleaseQuestionTile(out.Question.Tile)
			}
		}

		if err := s.persist(context.Background(), session.SessionID, rt); err != nil {
			return nil, err
		}
	}

	pushState(s.hub, s.log, session.SessionID, rt.CloneState())
	if out.Won {
		s.broadcastGameOver(session.SessionID, actor)
	}

	logger.LogTurn(session.SessionID, string(actor), out.Roll, out.From, out.Final)

	return &RollResult{
		Outcome:  out,
		State:    rt.CloneState(),
		Question: picked,
	}, nil
}

// Answer 提交问题回答
func (s *gameService) Answer(ctx context.Context, sessionID string, actor game.Player, text string) error {
	session, rt, err := s.acquire(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := rt.Answer(actor, text); err != nil {
		return err
	}
	if err := s.persist(ctx, session.SessionID, rt); err != nil {
		return err
	}

	data, _ := json.Marshal(map[string]string{"answer": text})
	s.hub.SendToRoom(session.SessionID, &websocket.Message{
		Type:   websocket.MessageTypeQuestionAnswer,
		Player: string(actor),
		Data:   data,
	})
	pushState(s.hub, s.log, session.SessionID, rt.CloneState())
	return nil
}

// Mirror 把问题反问给对方
func (s *gameService) Mirror(ctx context.Context, sessionID string, actor game.Player) error {
	session, rt, err := s.acquire(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := rt.Mirror(actor); err != nil {
		return err
	}
	if err := s.persist(ctx, session.SessionID, rt); err != nil {
		return err
	}

	s.hub.SendToRoom(session.SessionID, &websocket.Message{
		Type:   websocket.MessageTypeQuestionMirrored,
		Player: string(actor),
	})
	pushState(s.hub, s.log, session.SessionID, rt.CloneState())
	return nil
}

// Skip 跳过问题
func (s *gameService) Skip(ctx context.Context, sessionID string, actor game.Player) error {
	session, rt, err := s.acquire(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := rt.Skip(actor); err != nil {
		return err
	}
	if err := s.persist(ctx, session.SessionID, rt); err != nil {
		return err
	}

	s.hub.SendToRoom(session.SessionID, &websocket.Message{
		Type:   websocket.MessageTypeQuestionSkipped,
		Player: string(actor),
	})
	pushState(s.hub, s.log, session.SessionID, rt.CloneState())
	return nil
}

// React 对回答选表情回应，回应后问答流程收拢
func (s *gameService) React(ctx context.Context, sessionID string, actor game.Player, emoji string) error {
	session, rt, err := s.acquire(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := rt.React(actor, emoji); err != nil {
		return err
	}
	rt.CloseQuestion()

	data, _ := json.Marshal(map[string]string{"emoji": emoji})
	s.hub.SendToRoom(session.SessionID, &websocket.Message{
		Type:   websocket.MessageTypeReaction,
		Player: string(actor),
		Data:   data,
	})
	return nil
}

// State 当前游戏状态
func (s *gameService) State(ctx context.Context, sessionID string) (*game.State, error) {
	_, rt, err := s.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return rt.CloneState(), nil
}

// persist 落库状态快照
func (s *gameService) persist(ctx context.Context, sessionID string, rt *game.Runtime) error {
	snapshot, err := rt.SnapshotJSON()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDataIntegrity)
	}
	return s.sessionRepo.UpdateState(ctx, sessionID, snapshot)
}

// recordTurn 写回合历史，失败只记日志不阻断游戏
func (s *gameService) recordTurn(ctx context.Context, sessionID string, out *game.TurnOutcome) {
	record := &models.TurnRecord{
		SessionID:  sessionID,
		Player:     string(out.Player),
		Roll:       out.Roll,
		FromTile:   out.From,
		TargetTile: out.Target,
		FinalTile:  out.Final,
		Won:        out.Won,
		PlayedAt:   time.Now(),
	}
	if out.Special != nil {
		record.SpecialKind = string(out.Special.Kind)
	}
	if out.Question != nil {
		record.QuestionTile = out.Question.Tile
	}

	if err := s.turnRepo.Create(ctx, record); err != nil {
		s.log.Error("写入回合记录失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}

func (s *gameService) broadcastTurn(sessionID string, out *game.TurnOutcome) {
	data, err := json.Marshal(out)
	if err != nil {
		return
	}
	s.hub.SendToRoom(sessionID, &websocket.Message{
		Type:   websocket.MessageTypeTurnResult,
		Player: string(out.Player),
		Data:   data,
	})
}

func (s *gameService) broadcastQuestion(sessionID string, actor game.Player, text string, trig *game.QuestionTrigger) {
	data, _ := json.Marshal(map[string]interface{}{
		"question": text,
		"tile":     trig.Tile,
		"reason":   trig.Reason,
	})
	s.hub.SendToRoom(sessionID, &websocket.Message{
		Type:   websocket.MessageTypeQuestion,
		Player: string(actor),
		Data:   data,
	})
}

func (s *gameService) broadcastGameOver(sessionID string, winner game.Player) {
	logger.LogGameEvent("game_over", sessionID, map[string]interface{}{
		"winner": string(winner),
	})
	data, _ := json.Marshal(map[string]string{"winner": string(winner)})
	s.hub.SendToRoom(sessionID, &websocket.Message{
		Type:   websocket.MessageTypeGameOver,
		Player: string(winner),
		Data:   data,
	})
}

// pause 可取消的停顿
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
