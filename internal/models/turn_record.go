package models

import (
	"time"
)

// TurnRecord 回合记录表
// 每次落定的掷骰写一行，作为会话的可查询历史
type TurnRecord struct {
	BaseModel
	SessionID    string    `gorm:"index;size:16;not null" json:"session_id"`
	Player       string    `gorm:"size:16;not null" json:"player"`
	Roll         int       `gorm:"not null" json:"roll"`
	FromTile     int       `gorm:"not null" json:"from_tile"`
	TargetTile   int       `gorm:"not null" json:"target_tile"` // 掷骰的落点（特殊格解析前）
	FinalTile    int       `gorm:"not null" json:"final_tile"`  // 最终停留位置
	SpecialKind  string    `gorm:"size:10" json:"special_kind"` // snake / ladder / 空
	QuestionTile int       `json:"question_tile"`               // 触发问题的格子，0表示未触发
	Won          bool      `gorm:"default:false" json:"won"`
	PlayedAt     time.Time `json:"played_at"`
}

// TableName 指定表名
func (TurnRecord) TableName() string {
	return "turn_records"
}
