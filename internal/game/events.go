package game

import (
	"github.com/wfunc/snake-talk/internal/board"
)

// QuestionReason 问题触发原因
type QuestionReason string

const (
	// ReasonSnake 踩到蛇头，无条件触发
	ReasonSnake QuestionReason = "snake"
	// ReasonMilestone 落在里程碑格上，每格每局只触发一次
	ReasonMilestone QuestionReason = "milestone"
)

// SpecialTileEvent 特殊格事件
type SpecialTileEvent struct {
	Kind board.TileKind `json:"kind"`
	From int            `json:"from"`
	To   int            `json:"to"`
}

// QuestionTrigger 问题触发事件
type QuestionTrigger struct {
	Tile   int            `json:"tile"`
	Reason QuestionReason `json:"reason"`
}

// TurnOutcome 一次掷骰的完整结果
type TurnOutcome struct {
	Player Player `json:"player"`
	Roll   int    `json:"roll"`
	// 起步位置
	From int `json:"from"`
	// 掷骰落点（封顶100，特殊格解析前）
	Target int `json:"target"`
	// 最终停留位置（特殊格解析后）
	Final int `json:"final"`
	// 命中的蛇或梯子，nil表示普通格
	Special *SpecialTileEvent `json:"special,omitempty"`
	// 触发的问题，nil表示本回合无问题
	Question *QuestionTrigger `json:"question,omitempty"`
	// 是否获胜（以最终停留位置判定）
	Won bool `json:"won"`
	// 回合是否移交给对方
	TurnPassed bool `json:"turn_passed"`
	// 六点起步规则下原地未动
	Blocked bool `json:"blocked,omitempty"`
}
