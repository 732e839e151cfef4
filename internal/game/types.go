package game

import (
	"encoding/json"
)

// Player 玩家标识
type Player string

const (
	Player1 Player = "player1"
	Player2 Player = "player2"
)

// Valid 判断是否为合法玩家标识
func (p Player) Valid() bool {
	return p == Player1 || p == Player2
}

// Other 对方玩家
func (p Player) Other() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

// SlidingHint 滑蛇动画提示
// 纯渲染提示：只存在于本地内存和推送消息里，永远不落库，
// 远端快照合并时本地进行中的动画优先（见MergeRemote）
type SlidingHint struct {
	Player Player  `json:"player"`
	Path   []Point `json:"path"`
}

// Point 棋盘网格坐标点
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// State 游戏状态
// 唯一权威记录，只通过引擎定义的转换修改
type State struct {
	Player1Position int    `json:"player1_position"`
	Player2Position int    `json:"player2_position"`
	CurrentTurn     Player `json:"current_turn"`
	LastDiceRoll    int    `json:"last_dice_roll"`
	// 本局已触发过问题的里程碑格（防止重访重复触发）
	QuestionsTriggered []int  `json:"questions_triggered"`
	GameStarted        bool   `json:"game_started"`
	GameEnded          bool   `json:"game_ended"`
	Winner             Player `json:"winner,omitempty"`

	// 问答同步：最近一次问题和回答，推送给对方玩家展示
	LastQuestionAsked  string `json:"last_question_asked,omitempty"`
	LastQuestionAnswer string `json:"last_question_answer,omitempty"`

	// 问答子协议的记账字段，需要跨端同步所以放在状态里
	Player1SnakeStreak int  `json:"player1_snake_streak"`
	Player2SnakeStreak int  `json:"player2_snake_streak"`
	Player1MirrorUsed  bool `json:"player1_mirror_used"`
	Player2MirrorUsed  bool `json:"player2_mirror_used"`

	// 瞬态动画提示，不持久化
	Sliding *SlidingHint `json:"sliding,omitempty"`
}

// NewState 创建初始状态
func NewState() *State {
	return &State{
		CurrentTurn:        Player1,
		LastDiceRoll:       1,
		QuestionsTriggered: []int{},
	}
}

// PositionOf 玩家当前位置
func (s *State) PositionOf(p Player) int {
	if p == Player1 {
		return s.Player1Position
	}
	return s.Player2Position
}

// setPosition 更新玩家位置
func (s *State) setPosition(p Player, pos int) {
	if p == Player1 {
		s.Player1Position = pos
	} else {
		s.Player2Position = pos
	}
}

// SnakeStreakOf 玩家连续踩蛇次数
func (s *State) SnakeStreakOf(p Player) int {
	if p == Player1 {
		return s.Player1SnakeStreak
	}
	return s.Player2SnakeStreak
}

// setSnakeStreak 更新连续踩蛇次数
func (s *State) setSnakeStreak(p Player, n int) {
	if p == Player1 {
		s.Player1SnakeStreak = n
	} else {
		s.Player2SnakeStreak = n
	}
}

// MirrorUsedBy 玩家是否已用过反问
func (s *State) MirrorUsedBy(p Player) bool {
	if p == Player1 {
		return s.Player1MirrorUsed
	}
	return s.Player2MirrorUsed
}

// markMirrorUsed 标记反问已使用
func (s *State) markMirrorUsed(p Player) {
	if p == Player1 {
		s.Player1MirrorUsed = true
	} else {
		s.Player2MirrorUsed = true
	}
}

// HasTriggered 里程碑格是否已触发过问题
func (s *State) HasTriggered(tile int) bool {
	for _, t := range s.QuestionsTriggered {
		if t == tile {
			return true
		}
	}
	return false
}

// markTriggered 记录里程碑格已触发（幂等）
func (s *State) markTriggered(tile int) {
	if s.HasTriggered(tile) {
		return
	}
	s.QuestionsTriggered = append(s.QuestionsTriggered, tile)
}

// clearTriggered 撤销里程碑格的触发记录
func (s *State) clearTriggered(tile int) {
	for i, t := range s.QuestionsTriggered {
		if t == tile {
			s.QuestionsTriggered = append(s.QuestionsTriggered[:i], s.QuestionsTriggered[i+1:]...)
			return
		}
	}
}

// Clone 深拷贝状态
func (s *State) Clone() *State {
	out := *s
	out.QuestionsTriggered = append([]int{}, s.QuestionsTriggered...)
	if s.Sliding != nil {
		hint := *s.Sliding
		hint.Path = append([]Point{}, s.Sliding.Path...)
		out.Sliding = &hint
	}
	return &out
}

// Marshal 序列化为持久化快照
// 瞬态的Sliding字段被剥离，不跟随快照落库
func (s *State) Marshal() (string, error) {
	snapshot := s.Clone()
	snapshot.Sliding = nil

	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UnmarshalState 从持久化快照反序列化
func UnmarshalState(data string) (*State, error) {
	if data == "" {
		return NewState(), nil
	}

	st := &State{}
	if err := json.Unmarshal([]byte(data), st); err != nil {
		return nil, err
	}
	if st.QuestionsTriggered == nil {
		st.QuestionsTriggered = []int{}
	}
	if st.CurrentTurn == "" {
		st.CurrentTurn = Player1
	}
	return st, nil
}
