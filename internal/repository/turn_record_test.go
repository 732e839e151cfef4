package repository

import (
	"context"
	"testing"
	"time"

	"github.com/wfunc/snake-talk/internal/models"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type TurnRecordRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo TurnRecordRepository
	ctx  context.Context
}

func (s *TurnRecordRepositoryTestSuite) SetupTest() {
	s.db = SetupTestDB()
	s.repo = NewTurnRecordRepository(s.db)
	s.ctx = context.Background()
}

func (s *TurnRecordRepositoryTestSuite) seedTurns(sessionID string, n int) {
	base := time.Now().Add(-time.Hour)
	for i := 0; i < n; i++ {
		record := &models.TurnRecord{
			SessionID: sessionID,
			Player:    "player1",
			Roll:      i%6 + 1,
			FromTile:  i,
			FinalTile: i + i%6 + 1,
			PlayedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		s.Require().NoError(s.repo.Create(s.ctx, record))
	}
}

func (s *TurnRecordRepositoryTestSuite) TestCreateAndFind() {
	record := &models.TurnRecord{
		SessionID:    "AB12CD",
		Player:       "player1",
		Roll:         4,
		FromTile:     34,
		TargetTile:   38,
		FinalTile:    15,
		SpecialKind:  "snake",
		QuestionTile: 38,
		PlayedAt:     time.Now(),
	}
	s.Require().NoError(s.repo.Create(s.ctx, record))

	p := NewPagination(1, 10)
	records, err := s.repo.FindBySessionID(s.ctx, "AB12CD", p)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(38, records[0].TargetTile)
	s.Equal(15, records[0].FinalTile)
	s.Equal("snake", records[0].SpecialKind)
	s.Equal(int64(1), p.Total)
}

func (s *TurnRecordRepositoryTestSuite) TestPaginationNewestFirst() {
	s.seedTurns("PG0001", 25)

	p := NewPagination(1, 10)
	records, err := s.repo.FindBySessionID(s.ctx, "PG0001", p)
	s.Require().NoError(err)
	s.Len(records, 10)
	s.Equal(int64(25), p.Total)

	// 倒序：第一页是最近的回合
	s.True(records[0].PlayedAt.After(records[9].PlayedAt))

	p3 := NewPagination(3, 10)
	records, err = s.repo.FindBySessionID(s.ctx, "PG0001", p3)
	s.Require().NoError(err)
	s.Len(records, 5)
}

func (s *TurnRecordRepositoryTestSuite) TestCountScopedToSession() {
	s.seedTurns("CT0001", 3)
	s.seedTurns("CT0002", 5)

	count, err := s.repo.CountBySessionID(s.ctx, "CT0001")
	s.Require().NoError(err)
	s.Equal(int64(3), count)
}

func TestTurnRecordRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TurnRecordRepositoryTestSuite))
}
