package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/wfunc/snake-talk/internal/board"
	"github.com/wfunc/snake-talk/internal/errors"
)

type ManagerTestSuite struct {
	suite.Suite
	mgr *Manager
}

func (s *ManagerTestSuite) SetupTest() {
	engine := NewEngine(board.Default(), NewFixedDice(4), DefaultRules(), nil, nil)
	s.mgr = NewManager(&ManagerConfig{
		Engine:      engine,
		SkipAfter:   2,
		IdleTimeout: time.Hour,
		MaxSessions: 4,
	})
}

func (s *ManagerTestSuite) TestAcquireFreshRuntime() {
	rt, err := s.mgr.Acquire("ABC123", "")
	s.Require().NoError(err)
	s.Equal("ABC123", rt.SessionID)
	s.Equal(1, s.mgr.ActiveSessions())

	// 再次获取拿到同一个实例
	again, err := s.mgr.Acquire("ABC123", "")
	s.Require().NoError(err)
	s.Same(rt, again)
	s.Equal(1, s.mgr.ActiveSessions())
}

func (s *ManagerTestSuite) TestAcquireHydratesFromSnapshot() {
	st := NewState()
	st.GameStarted = true
	st.Player1Position = 34
	st.CurrentTurn = Player1
	snapshot, err := st.Marshal()
	s.Require().NoError(err)

	rt, err := s.mgr.Acquire("XYZ789", snapshot)
	s.Require().NoError(err)
	s.Equal(34, rt.CloneState().Player1Position)

	// 水合后的状态可以直接走回合：34掷4踩蛇到15
	out, err := rt.ApplyTurn(Player1)
	s.Require().NoError(err)
	s.Equal(15, out.Final)
}

func (s *ManagerTestSuite) TestAcquireCorruptSnapshot() {
	_, err := s.mgr.Acquire("BAD001", "{broken")
	s.True(errors.Is(err, errors.ErrDataIntegrity))
	s.Equal(0, s.mgr.ActiveSessions())
}

func (s *ManagerTestSuite) TestMaxSessions() {
	for _, id := range []string{"A", "B", "C", "D"} {
		_, err := s.mgr.Acquire(id, "")
		s.Require().NoError(err)
	}
	_, err := s.mgr.Acquire("E", "")
	s.True(errors.Is(err, errors.ErrSessionClosed))
}

func (s *ManagerTestSuite) TestActionGate() {
	rt, err := s.mgr.Acquire("GATE01", "")
	s.Require().NoError(err)

	s.Require().NoError(rt.BeginAction())
	err = rt.BeginAction()
	s.True(errors.Is(err, errors.ErrActionInFlight))
	s.True(errors.IsPrecondition(err))

	rt.EndAction()
	s.NoError(rt.BeginAction())
	rt.EndAction()
}

func (s *ManagerTestSuite) TestSnapshotStripsSliding() {
	rt, err := s.mgr.Acquire("SNAP01", "")
	s.Require().NoError(err)

	rt.SetSliding(&SlidingHint{Player: Player1, Path: SlidePath(38, 15)})
	snapshot, err := rt.SnapshotJSON()
	s.Require().NoError(err)
	s.NotContains(snapshot, "sliding")

	rt.ClearSliding()
	s.Nil(rt.CloneState().Sliding)
}

func (s *ManagerTestSuite) TestCleanupInactive() {
	engine := NewEngine(board.Default(), NewFixedDice(1), DefaultRules(), nil, nil)
	mgr := NewManager(&ManagerConfig{
		Engine:      engine,
		SkipAfter:   2,
		IdleTimeout: time.Millisecond,
	})

	rt, err := mgr.Acquire("OLD001", "")
	s.Require().NoError(err)
	rt.mu.Lock()
	rt.LastActivity = time.Now().Add(-time.Minute)
	rt.mu.Unlock()

	mgr.CleanupInactive()
	s.Equal(0, mgr.ActiveSessions())
}

func (s *ManagerTestSuite) TestRemove() {
	_, err := s.mgr.Acquire("RM0001", "")
	s.Require().NoError(err)
	s.mgr.Remove("RM0001")
	_, ok := s.mgr.Peek("RM0001")
	s.False(ok)
}

func TestManagerTestSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}
