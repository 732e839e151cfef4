package game

import (
	"fmt"

	"github.com/wfunc/snake-talk/internal/board"
	"github.com/wfunc/snake-talk/internal/errors"
	"go.uber.org/zap"
)

// Rules 规则变体开关
// 源玩法几个迭代版本互相矛盾的规则全部放在这里，默认严格轮流制
type Rules struct {
	// 严格轮流；关闭即自由掷骰（不校验轮次）
	TurnLocked bool
	// 必须掷出6才能进入棋盘
	SixToStart bool
	// 掷出6再走一次
	ExtraTurnOnSix bool
}

// DefaultRules 默认规则
func DefaultRules() Rules {
	return Rules{TurnLocked: true}
}

// DefaultQuestionTiles 默认里程碑问题格
func DefaultQuestionTiles() []int {
	return []int{10, 20, 30, 40, 50, 60, 70, 80, 90}
}

// Engine 回合引擎
// 无状态：棋盘拓扑和规则在创建后只读，游戏状态由调用方持有并传入
type Engine struct {
	topo          *board.Topology
	dice          Dice
	rules         Rules
	questionTiles map[int]bool
	logger        *zap.Logger
}

// NewEngine 创建回合引擎
func NewEngine(topo *board.Topology, dice Dice, rules Rules, questionTiles []int, logger *zap.Logger) *Engine {
	if len(questionTiles) == 0 {
		questionTiles = DefaultQuestionTiles()
	}
	tiles := make(map[int]bool, len(questionTiles))
	for _, t := range questionTiles {
		tiles[t] = true
	}

	return &Engine{
		topo:          topo,
		dice:          dice,
		rules:         rules,
		questionTiles: tiles,
		logger:        logger,
	}
}

// Rules 当前规则
func (e *Engine) Rules() Rules {
	return e.rules
}

// Topology 棋盘拓扑
func (e *Engine) Topology() *board.Topology {
	return e.topo
}

// ApplyTurn 执行一次掷骰回合
//
// 前置条件不满足时返回前置条件错误（调用方按静默无操作处理），
// 状态不会被修改。actor非法属于编程错误，直接panic。
//
// 问题触发策略：每次落定的移动最多触发一个问题，踩蛇优先于里程碑格；
// 里程碑触发每格每局一次，蛇触发无条件。
func (e *Engine) ApplyTurn(st *State, actor Player) (*TurnOutcome, error) {
	if !actor.Valid() {
		panic(fmt.Sprintf("game: 非法玩家标识 %q", actor))
	}

	// 前置条件
	if !st.GameStarted {
		return nil, errors.New(errors.ErrGameNotStarted)
	}
	if st.GameEnded {
		return nil, errors.New(errors.ErrGameEnded)
	}
	if e.rules.TurnLocked && actor != st.CurrentTurn {
		return nil, errors.New(errors.ErrNotYourTurn)
	}

	roll := e.dice.Roll()
	current := st.PositionOf(actor)

	outcome := &TurnOutcome{
		Player: actor,
		Roll:   roll,
		From:   current,
	}

	// 六点起步：未进棋盘且没掷出6，原地不动
	if e.rules.SixToStart && current == 0 && roll != DiceSides {
		outcome.Target = current
		outcome.Final = current
		outcome.Blocked = true
		e.advanceTurn(st, actor, roll, outcome)
		st.LastDiceRoll = roll
		return outcome, nil
	}

	// 封顶100：超出的点数被吸收，不反弹不拒绝
	target := current + roll
	if target > board.BoardSize {
		target = board.BoardSize
	}
	outcome.Target = target

	// 特殊格解析（最多一跳，拓扑校验保证）
	final := target
	if to, kind, ok := e.topo.DestinationOf(target); ok {
		final = to
		outcome.Special = &SpecialTileEvent{Kind: kind, From: target, To: to}
	}
	outcome.Final = final
	st.setPosition(actor, final)

	// 胜负以最终停留位置判定，不看特殊格解析前的落点
	if final == board.BoardSize {
		st.GameEnded = true
		st.Winner = actor
		st.LastDiceRoll = roll
		outcome.Won = true

		if e.logger != nil {
			e.logger.Info("游戏结束",
				zap.String("winner", string(actor)),
				zap.Int("roll", roll))
		}
		return outcome, nil
	}

	// 问答记账与触发
	if outcome.Special != nil && outcome.Special.Kind == board.TileSnake {
		st.setSnakeStreak(actor, st.SnakeStreakOf(actor)+1)
		outcome.Question = &QuestionTrigger{Tile: target, Reason: ReasonSnake}
	} else {
		st.setSnakeStreak(actor, 0)
		if e.questionTiles[final] && !st.HasTriggered(final) {
			st.markTriggered(final)
			outcome.Question = &QuestionTrigger{Tile: final, Reason: ReasonMilestone}
		}
	}

	e.advanceTurn(st, actor, roll, outcome)
	st.LastDiceRoll = roll

	if e.logger != nil {
		e.logger.Debug("回合落定",
			zap.String("player", string(actor)),
			zap.Int("roll", roll),
			zap.Int("from", current),
			zap.Int("final", final))
	}

	return outcome, nil
}

// advanceTurn 移交回合
func (e *Engine) advanceTurn(st *State, actor Player, roll int, outcome *TurnOutcome) {
	if !e.rules.TurnLocked {
		// 自由掷骰变体不维护轮次
		return
	}
	if e.rules.ExtraTurnOnSix && roll == DiceSides {
		return
	}
	st.CurrentTurn = actor.Other()
	outcome.TurnPassed = true
}

// SlidePath 蛇身滑行路径
// 从蛇头到蛇尾逐格的网格坐标序列，仅作为渲染提示
func SlidePath(from, to int) []Point {
	if from <= to {
		return nil
	}

	path := make([]Point, 0, from-to+1)
	for tile := from; tile >= to; tile-- {
		row, col := board.GridCoordinateOf(tile)
		path = append(path, Point{Row: row, Col: col})
	}
	return path
}
