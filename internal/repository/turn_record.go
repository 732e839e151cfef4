package repository

import (
	"context"

	"github.com/wfunc/snake-talk/internal/models"
	"gorm.io/gorm"
)

// TurnRecordRepository 回合记录仓储接口
type TurnRecordRepository interface {
	BaseRepository
	Create(ctx context.Context, record *models.TurnRecord) error
	FindBySessionID(ctx context.Context, sessionID string, p *Pagination) ([]*models.TurnRecord, error)
	CountBySessionID(ctx context.Context, sessionID string) (int64, error)
}

// turnRecordRepo 回合记录仓储实现
type turnRecordRepo struct {
	*BaseRepo
}

// NewTurnRecordRepository 创建回合记录仓储
func NewTurnRecordRepository(db *gorm.DB) TurnRecordRepository {
	return &turnRecordRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 写入回合记录
func (r *turnRecordRepo) Create(ctx context.Context, record *models.TurnRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindBySessionID 查询对局的回合历史（分页，按时间倒序）
func (r *turnRecordRepo) FindBySessionID(ctx context.Context, sessionID string, p *Pagination) ([]*models.TurnRecord, error) {
	var records []*models.TurnRecord

	r.db.WithContext(ctx).
		Model(&models.TurnRecord{}).
		Where("session_id = ?", sessionID).
		Count(&p.Total)

	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("played_at desc").
		Scopes(Paginate(p)).
		Find(&records).Error

	return records, err
}

// CountBySessionID 对局回合总数
func (r *turnRecordRepo) CountBySessionID(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TurnRecord{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}
