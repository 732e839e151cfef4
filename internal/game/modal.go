package game

import (
	"sync"

	"github.com/wfunc/snake-talk/internal/errors"
	"go.uber.org/zap"
)

// FlowPhase 问答流程阶段
type FlowPhase string

const (
	FlowIdle           FlowPhase = "idle"
	FlowQuestionShown  FlowPhase = "question_shown"
	FlowAnswerCaptured FlowPhase = "answer_captured"
	FlowReactionShown  FlowPhase = "reaction_shown"
)

// Reactions 可选的表情回应
var Reactions = []string{"🙃", "😒", "😌", "👌", "💘"}

// ValidReaction 判断表情是否在可选集内
func ValidReaction(emoji string) bool {
	for _, r := range Reactions {
		if r == emoji {
			return true
		}
	}
	return false
}

// QuestionFlow 问答流程状态机
//
// 叠在回合引擎之上的展示层门控：Idle → QuestionShown → AnswerCaptured →
// ReactionShown → Idle。回合移交在引擎里已经完成，关闭流程不再动轮次。
// 每个会话一个实例。
type QuestionFlow struct {
	mu       sync.Mutex
	phase    FlowPhase
	question string
	askedOf  Player // 当前应作答的玩家

	// 同一玩家连续踩蛇达到该次数后允许跳过（防挫败机制），0表示禁用跳过
	skipAfter int
	logger    *zap.Logger
}

// NewQuestionFlow 创建问答流程
func NewQuestionFlow(skipAfter int, logger *zap.Logger) *QuestionFlow {
	return &QuestionFlow{
		phase:     FlowIdle,
		skipAfter: skipAfter,
		logger:    logger,
	}
}

// Phase 当前阶段
func (f *QuestionFlow) Phase() FlowPhase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Question 当前问题文本
func (f *QuestionFlow) Question() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.question
}

// AskedOf 当前应作答的玩家
func (f *QuestionFlow) AskedOf() Player {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.askedOf
}

// Trigger 展示问题
//
// 已有问题待处理时新触发被抑制（返回false），这覆盖了
// 蛇落点恰好是未触发里程碑格的双触发边界
func (f *QuestionFlow) Trigger(st *State, actor Player, question string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.phase != FlowIdle {
		if f.logger != nil {
			f.logger.Debug("问题触发被抑制",
				zap.String("phase", string(f.phase)))
		}
		return false
	}

	f.phase = FlowQuestionShown
	f.question = question
	f.askedOf = actor

	st.LastQuestionAsked = question
	st.LastQuestionAnswer = ""
	return true
}

// CanSkip 是否允许跳过当前问题
func (f *QuestionFlow) CanSkip(st *State, actor Player) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canSkip(st, actor)
}

func (f *QuestionFlow) canSkip(st *State, actor Player) bool {
	return f.skipAfter > 0 && st.SnakeStreakOf(actor) >= f.skipAfter
}

// CanMirror 是否允许把问题反问回去
func (f *QuestionFlow) CanMirror(st *State, actor Player) bool {
	return !st.MirrorUsedBy(actor)
}

// Answer 提交回答
// 回答写入状态并随快照广播，对方玩家据此看到问答内容
func (f *QuestionFlow) Answer(st *State, actor Player, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.phase != FlowQuestionShown {
		return errors.New(errors.ErrNoQuestionOpen)
	}
	if actor != f.askedOf {
		return errors.New(errors.ErrPermissionDenied, "问题不是问你的")
	}

	f.phase = FlowAnswerCaptured
	st.LastQuestionAnswer = text
	return nil
}

// Mirror 把问题反问给对方，每名玩家每局一次
func (f *QuestionFlow) Mirror(st *State, actor Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.phase != FlowQuestionShown {
		return errors.New(errors.ErrNoQuestionOpen)
	}
	if actor != f.askedOf {
		return errors.New(errors.ErrPermissionDenied, "问题不是问你的")
	}
	if st.MirrorUsedBy(actor) {
		return errors.New(errors.ErrMirrorUsed)
	}

	st.markMirrorUsed(actor)
	f.askedOf = actor.Other()
	return nil
}

// Skip 跳过问题，需要连续踩蛇达到阈值
func (f *QuestionFlow) Skip(st *State, actor Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.phase != FlowQuestionShown {
		return errors.New(errors.ErrNoQuestionOpen)
	}
	if actor != f.askedOf {
		return errors.New(errors.ErrPermissionDenied, "问题不是问你的")
	}
	if !f.canSkip(st, actor) {
		return errors.New(errors.ErrSkipNotAllowed)
	}

	f.phase = FlowIdle
	f.question = ""
	f.askedOf = ""
	st.LastQuestionAsked = ""
	st.LastQuestionAnswer = ""
	return nil
}

// React 非作答方选一个表情回应
// 对游戏状态无影响，只推进流程到终态微步骤
func (f *QuestionFlow) React(actor Player, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.phase != FlowAnswerCaptured {
		return errors.New(errors.ErrNoQuestionOpen)
	}
	if actor == f.askedOf {
		return errors.New(errors.ErrPermissionDenied, "不能给自己的回答点表情")
	}
	if !ValidReaction(emoji) {
		return errors.New(errors.ErrInvalidReaction, emoji)
	}

	f.phase = FlowReactionShown
	return nil
}

// Close 关闭流程回到空闲
// 只收拢弹窗，不推进轮次——轮次在掷骰落定时已经移交
func (f *QuestionFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.phase = FlowIdle
	f.question = ""
	f.askedOf = ""
}
