package service

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	apperrors "github.com/wfunc/snake-talk/internal/errors"
	"github.com/wfunc/snake-talk/internal/board"
	"github.com/wfunc/snake-talk/internal/game"
	"github.com/wfunc/snake-talk/internal/game/question"
	"github.com/wfunc/snake-talk/internal/repository"
	"github.com/wfunc/snake-talk/internal/utils"
	"github.com/wfunc/snake-talk/internal/websocket"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	session SessionService
	game    GameService
	hub     *websocket.Hub
	ctx     context.Context
}

// setup 用固定骰子序列和零动画延迟搭一套服务
func (s *ServiceTestSuite) setup(questionTiles []int, rolls ...int) {
	s.db = repository.SetupTestDB()
	s.hub = websocket.NewHub(zap.NewNop())
	s.ctx = context.Background()

	cfg := DefaultConfig()
	cfg.RollDelay = 0
	cfg.SlideDelay = 0
	cfg.QuestionTiles = questionTiles

	sessionRepo := repository.NewSessionRepository(s.db)
	turnRepo := repository.NewTurnRecordRepository(s.db)

	engine := game.NewEngine(board.Default(), game.NewFixedDice(rolls...), cfg.Rules, cfg.QuestionTiles, zap.NewNop())
	manager := game.NewManager(&game.ManagerConfig{
		Engine:    engine,
		SkipAfter: cfg.SkipAfterSnakes,
		Logger:    zap.NewNop(),
	})
	tokens := utils.NewTokenManager(cfg.TokenSecret, cfg.TokenExpiry)
	picker := question.NewPickerWithSource(rand.NewSource(1))

	s.session = NewSessionService(sessionRepo, turnRepo, manager, tokens, s.hub, cfg, zap.NewNop())
	s.game = NewGameService(sessionRepo, turnRepo, manager, picker, s.hub, cfg, zap.NewNop())
}

func (s *ServiceTestSuite) createRoom() *SessionGrant {
	grant, err := s.session.CreateSession(s.ctx, &CreateSessionRequest{
		Nickname:           "小明",
		RelationshipType:   "crush",
		ConversationStyles: []string{"Fun", "Deep"},
		CustomQuestion:     "Do you like me back?",
	})
	s.Require().NoError(err)
	return grant
}

func (s *ServiceTestSuite) joinRoom(code string) *SessionGrant {
	grant, err := s.session.JoinSession(s.ctx, &JoinSessionRequest{
		RoomCode: code,
		Nickname: "小红",
	})
	s.Require().NoError(err)
	return grant
}

func (s *ServiceTestSuite) TestCreateSession() {
	s.setup(nil, 1)

	grant := s.createRoom()
	s.Len(grant.SessionID, 6)
	s.Equal("player1", grant.Player)
	s.NotEmpty(grant.PlayerID)
	s.NotEmpty(grant.Token)

	detail, err := s.session.GetSession(s.ctx, grant.SessionID)
	s.Require().NoError(err)
	s.Equal("小明", detail.Player1Nickname)
	s.False(detail.HasPlayer2)
	s.False(detail.State.GameStarted)
}

func (s *ServiceTestSuite) TestJoinStartsGame() {
	s.setup(nil, 1)

	grant := s.createRoom()
	joined := s.joinRoom(grant.SessionID)
	s.Equal("player2", joined.Player)
	s.Equal(grant.SessionID, joined.SessionID)

	detail, err := s.session.GetSession(s.ctx, grant.SessionID)
	s.Require().NoError(err)
	s.True(detail.HasPlayer2)
	s.Equal("小红", detail.Player2Nickname)
	s.True(detail.State.GameStarted)

	// 房间码大小写不敏感
	_, err = s.session.GetSession(s.ctx, " "+grant.SessionID+" ")
	s.NoError(err)
}

func (s *ServiceTestSuite) TestJoinFullRoom() {
	s.setup(nil, 1)

	grant := s.createRoom()
	s.joinRoom(grant.SessionID)

	_, err := s.session.JoinSession(s.ctx, &JoinSessionRequest{
		RoomCode: grant.SessionID,
		Nickname: "小刚",
	})
	s.True(apperrors.Is(err, apperrors.ErrRoomFull))
}

func (s *ServiceTestSuite) TestJoinMissingRoom() {
	s.setup(nil, 1)
	_, err := s.session.JoinSession(s.ctx, &JoinSessionRequest{
		RoomCode: "GHOST9",
		Nickname: "小刚",
	})
	s.True(apperrors.Is(err, apperrors.ErrRoomNotFound))
}

func (s *ServiceTestSuite) TestRollBeforeJoin() {
	s.setup(nil, 4)
	grant := s.createRoom()

	_, err := s.game.Roll(s.ctx, grant.SessionID, game.Player1)
	s.True(apperrors.Is(err, apperrors.ErrGameNotStarted))
}

func (s *ServiceTestSuite) TestRollLifecycle() {
	s.setup(nil, 4)
	grant := s.createRoom()
	s.joinRoom(grant.SessionID)

	// 0+4=4，梯子升到14
	result, err := s.game.Roll(s.ctx, grant.SessionID, game.Player1)
	s.Require().NoError(err)
	s.Equal(4, result.Outcome.Roll)
	s.Equal(14, result.Outcome.Final)
	s.Equal(14, result.State.Player1Position)
	s.Equal(game.Player2, result.State.CurrentTurn)

	// 连掷被轮次挡住
	_, err = s.game.Roll(s.ctx, grant.SessionID, game.Player1)
	s.True(apperrors.Is(err, apperrors.ErrNotYourTurn))

	// 状态快照已落库
	detail, err := s.session.GetSession(s.ctx, grant.SessionID)
	s.Require().NoError(err)
	s.Equal(14, detail.State.Player1Position)

	// 回合历史可查
	records, total, err := s.session.GetHistory(s.ctx, grant.SessionID, 1, 10)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal("ladder", records[0].SpecialKind)
	s.Equal(14, records[0].FinalTile)
}

func (s *ServiceTestSuite) TestMilestoneQuestionFlow() {
	// p1掷6到6，p2掷1，p1掷4到10触发里程碑问题
	s.setup(nil, 6, 1, 4)
	grant := s.createRoom()
	s.joinRoom(grant.SessionID)

	_, err := s.game.Roll(s.ctx, grant.SessionID, game.Player1)
	s.Require().NoError(err)
	_, err = s.game.Roll(s.ctx, grant.SessionID, game.Player2)
	s.Require().NoError(err)

	result, err := s.game.Roll(s.ctx, grant.SessionID, game.Player1)
	s.Require().NoError(err)
	s.Require().NotNil(result.Outcome.Question)
	s.Equal(game.ReasonMilestone, result.Outcome.Question.Reason)
	s.NotEmpty(result.Question)

	// 问题问的是掷骰的人，对方不能抢答
	err = s.game.Answer(s.ctx, grant.SessionID, game.Player2, "nope")
	s.True(apperrors.Is(err, apperrors.ErrPermissionDenied))

	s.Require().NoError(s.game.Answer(s.ctx, grant.SessionID, game.Player1, "blue"))

	// 回答已同步进状态
	st, err := s.game.State(s.ctx, grant.SessionID)
	s.Require().NoError(err)
	s.Equal(result.Question, st.LastQuestionAsked)
	s.Equal("blue", st.LastQuestionAnswer)

	// 对方回应表情后流程收拢
	err = s.game.React(s.ctx, grant.SessionID, game.Player1, "👌")
	s.True(apperrors.Is(err, apperrors.ErrPermissionDenied))
	s.Require().NoError(s.game.React(s.ctx, grant.SessionID, game.Player2, "👌"))
}

func (s *ServiceTestSuite) TestSnakeRollTriggersQuestion() {
	// 限定里程碑只在90，排除干扰；p1: 6→10→16踩蛇滑到6
	s.setup([]int{90}, 6, 1, 4, 1, 6)
	grant := s.createRoom()
	s.joinRoom(grant.SessionID)

	for _, actor := range []game.Player{game.Player1, game.Player2, game.Player1, game.Player2} {
		_, err := s.game.Roll(s.ctx, grant.SessionID, actor)
		s.Require().NoError(err)
	}

	result, err := s.game.Roll(s.ctx, grant.SessionID, game.Player1)
	s.Require().NoError(err)
	s.Require().NotNil(result.Outcome.Special)
	s.Equal(board.TileSnake, result.Outcome.Special.Kind)
	s.Equal(6, result.Outcome.Final)
	s.Require().NotNil(result.Outcome.Question)
	s.Equal(game.ReasonSnake, result.Outcome.Question.Reason)
	s.NotEmpty(result.Question)
	s.Equal(1, result.State.Player1SnakeStreak)

	// 滑行提示是瞬态的，落定后的状态里已摘掉
	s.Nil(result.State.Sliding)

	// 蛇问题可以反问
	s.Require().NoError(s.game.Mirror(s.ctx, grant.SessionID, game.Player1))
	st, err := s.game.State(s.ctx, grant.SessionID)
	s.Require().NoError(err)
	s.True(st.Player1MirrorUsed)

	s.Require().NoError(s.game.Answer(s.ctx, grant.SessionID, game.Player2, "ok"))
}

func (s *ServiceTestSuite) TestRollDelayHonorsContext() {
	s.setup(nil, 4)
	grant := s.createRoom()
	s.joinRoom(grant.SessionID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := s.game.(*gameService)
	svc.cfg.RollDelay = time.Minute
	_, err := svc.Roll(ctx, grant.SessionID, game.Player1)
	s.True(apperrors.Is(err, apperrors.ErrCanceled))
}

// recvPush 从客户端发送缓冲里取一条推送
func (s *ServiceTestSuite) recvPush(c *websocket.Client) *websocket.Message {
	select {
	case data := <-c.Send:
		var msg websocket.Message
		s.Require().NoError(json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(time.Second):
		s.Require().FailNow("等待推送超时")
		return nil
	}
}

func (s *ServiceTestSuite) TestRollPushesStateToRoom() {
	s.setup(nil, 4)
	grant := s.createRoom()
	s.joinRoom(grant.SessionID)

	go s.hub.Run()
	client := websocket.NewClient(s.hub, nil, grant.SessionID, "player2")
	s.hub.Register(client)
	s.Equal(websocket.MessageTypeConnected, s.recvPush(client).Type)

	_, err := s.game.Roll(s.ctx, grant.SessionID, game.Player1)
	s.Require().NoError(err)

	// 回合结果先出，随后是全量状态快照
	s.Equal(websocket.MessageTypeTurnResult, s.recvPush(client).Type)
	msg := s.recvPush(client)
	s.Equal(websocket.MessageTypeGameState, msg.Type)

	var st game.State
	s.Require().NoError(json.Unmarshal(msg.Data, &st))
	s.Equal(14, st.Player1Position)
}

func (s *ServiceTestSuite) TestSlidePauseInterruptionKeepsTurn() {
	// p1: 6→10→16踩蛇；第五掷在滑行停顿中被请求方掐断
	s.setup([]int{90}, 6, 1, 4, 1, 6)
	grant := s.createRoom()
	s.joinRoom(grant.SessionID)

	for _, actor := range []game.Player{game.Player1, game.Player2, game.Player1, game.Player2} {
		_, err := s.game.Roll(s.ctx, grant.SessionID, actor)
		s.Require().NoError(err)
	}

	svc := s.game.(*gameService)
	svc.cfg.SlideDelay = 10 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := svc.Roll(ctx, grant.SessionID, game.Player1)
	s.Require().NoError(err)
	s.Less(time.Since(start), 5*time.Second)
	s.Equal(6, result.Outcome.Final)

	// 断线只掐掉演出等待，已落定的回合必须进快照和历史
	row, err := repository.NewSessionRepository(s.db).FindBySessionID(s.ctx, grant.SessionID)
	s.Require().NoError(err)
	snap, err := game.UnmarshalState(row.State)
	s.Require().NoError(err)
	s.Equal(6, snap.Player1Position)
	s.Equal(game.Player2, snap.CurrentTurn)

	_, total, err := s.session.GetHistory(s.ctx, grant.SessionID, 1, 10)
	s.Require().NoError(err)
	s.Equal(int64(5), total)
}

func (s *ServiceTestSuite) TestMilestoneTileReleasedWhenSuppressed() {
	// p1第五掷踩蛇开弹窗；p2第六掷落14被抑制，格子应归还；
	// 弹窗收拢后p1再落14仍要触发
	s.setup([]int{14}, 6, 6, 4, 4, 6, 4, 4, 1, 4)
	grant := s.createRoom()
	s.joinRoom(grant.SessionID)

	for _, actor := range []game.Player{game.Player1, game.Player2, game.Player1, game.Player2} {
		_, err := s.game.Roll(s.ctx, grant.SessionID, actor)
		s.Require().NoError(err)
	}

	// p1: 10+6=16踩蛇滑回6，蛇问题开弹窗
	result, err := s.game.Roll(s.ctx, grant.SessionID, game.Player1)
	s.Require().NoError(err)
	s.Equal(game.ReasonSnake, result.Outcome.Question.Reason)
	s.NotEmpty(result.Question)

	// p2: 10+4=14落里程碑，弹窗占用中触发被抑制，格子不算消耗
	result, err = s.game.Roll(s.ctx, grant.SessionID, game.Player2)
	s.Require().NoError(err)
	s.Require().NotNil(result.Outcome.Question)
	s.Empty(result.Question)

	st, err := s.game.State(s.ctx, grant.SessionID)
	s.Require().NoError(err)
	s.NotContains(st.QuestionsTriggered, 14)

	// 归还也要进快照，重启水合后不能把格子又算成已触发
	row, err := repository.NewSessionRepository(s.db).FindBySessionID(s.ctx, grant.SessionID)
	s.Require().NoError(err)
	snap, err := game.UnmarshalState(row.State)
	s.Require().NoError(err)
	s.NotContains(snap.QuestionsTriggered, 14)

	// 收拢蛇问题的弹窗
	s.Require().NoError(s.game.Answer(s.ctx, grant.SessionID, game.Player1, "嗯"))
	s.Require().NoError(s.game.React(s.ctx, grant.SessionID, game.Player2, "👌"))

	_, err = s.game.Roll(s.ctx, grant.SessionID, game.Player1)
	s.Require().NoError(err)
	_, err = s.game.Roll(s.ctx, grant.SessionID, game.Player2)
	s.Require().NoError(err)

	// p1: 10+4=14，归还过的里程碑这次要开出弹窗
	result, err = s.game.Roll(s.ctx, grant.SessionID, game.Player1)
	s.Require().NoError(err)
	s.Require().NotNil(result.Outcome.Question)
	s.Equal(game.ReasonMilestone, result.Outcome.Question.Reason)
	s.NotEmpty(result.Question)

	st, err = s.game.State(s.ctx, grant.SessionID)
	s.Require().NoError(err)
	s.Contains(st.QuestionsTriggered, 14)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
