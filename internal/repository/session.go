package repository

import (
	"context"
	"time"

	apperrors "github.com/wfunc/snake-talk/internal/errors"
	"github.com/wfunc/snake-talk/internal/models"
	"gorm.io/gorm"
)

// SessionRepository 对局会话仓储接口
type SessionRepository interface {
	BaseRepository
	Create(ctx context.Context, session *models.Session) error
	FindBySessionID(ctx context.Context, sessionID string) (*models.Session, error)
	ExistsBySessionID(ctx context.Context, sessionID string) (bool, error)
	UpdateState(ctx context.Context, sessionID string, state string) error
	ClaimPlayer2Slot(ctx context.Context, sessionID, playerID, nickname string) error
	CleanupExpired(ctx context.Context, before time.Time) (int64, error)
}

// sessionRepo 对局会话仓储实现
type sessionRepo struct {
	*BaseRepo
}

// NewSessionRepository 创建对局会话仓储
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建对局会话
func (r *sessionRepo) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// FindBySessionID 根据房间码查找
func (r *sessionRepo) FindBySessionID(ctx context.Context, sessionID string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.New(apperrors.ErrRoomNotFound, sessionID)
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ExistsBySessionID 房间码是否已被占用（含软删除的记录）
// 生成房间码时用来查重，软删除的码也不复用
func (r *sessionRepo) ExistsBySessionID(ctx context.Context, sessionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.Session{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count > 0, err
}

// UpdateState 整体覆盖游戏状态快照
// 同步模型是行级last-write-wins，不做字段级合并
func (r *sessionRepo) UpdateState(ctx context.Context, sessionID string, state string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("session_id = ?", sessionID).
		Update("state", state)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.ErrRoomNotFound, sessionID)
	}
	return nil
}

// ClaimPlayer2Slot 原子认领第二名玩家席位
//
// 并发加入同一房间时用条件更新解决竞态：WHERE player2_id为空保证
// 只有一个更新能生效，输掉的一方拿到ErrRoomFull。
func (r *sessionRepo) ClaimPlayer2Slot(ctx context.Context, sessionID, playerID, nickname string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("session_id = ? AND player2_id = ''", sessionID).
		Updates(map[string]interface{}{
			"player2_id":       playerID,
			"player2_nickname": nickname,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// 没抢到席位：区分房间不存在和房间已满
	if _, err := r.FindBySessionID(ctx, sessionID); err != nil {
		return err
	}
	return apperrors.New(apperrors.ErrRoomFull, sessionID)
}

// CleanupExpired 清理过期对局
func (r *sessionRepo) CleanupExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("updated_at < ?", before).
		Delete(&models.Session{})
	return result.RowsAffected, result.Error
}
