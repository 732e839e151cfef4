package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateDefaults(t *testing.T) {
	st := NewState()
	assert.Equal(t, Player1, st.CurrentTurn)
	assert.Equal(t, 1, st.LastDiceRoll)
	assert.Equal(t, 0, st.Player1Position)
	assert.Equal(t, 0, st.Player2Position)
	assert.False(t, st.GameStarted)
	assert.NotNil(t, st.QuestionsTriggered)
}

func TestPlayerOther(t *testing.T) {
	assert.Equal(t, Player2, Player1.Other())
	assert.Equal(t, Player1, Player2.Other())
	assert.False(t, Player("watcher").Valid())
}

func TestCloneIsDeep(t *testing.T) {
	st := NewState()
	st.QuestionsTriggered = []int{10, 20}
	st.Sliding = &SlidingHint{Player: Player1, Path: []Point{{Row: 1, Col: 2}}}

	cp := st.Clone()
	cp.QuestionsTriggered[0] = 99
	cp.Sliding.Path[0].Row = 99

	assert.Equal(t, 10, st.QuestionsTriggered[0])
	assert.Equal(t, 1, st.Sliding.Path[0].Row)
}

func TestMarshalStripsSlidingHint(t *testing.T) {
	st := NewState()
	st.GameStarted = true
	st.Player1Position = 15
	st.Sliding = &SlidingHint{Player: Player1, Path: SlidePath(38, 15)}

	data, err := st.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, data, "sliding")

	// 序列化不动原状态
	assert.NotNil(t, st.Sliding)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(data), &raw))
	assert.Equal(t, float64(15), raw["player1_position"])
}

func TestUnmarshalRoundTrip(t *testing.T) {
	st := NewState()
	st.GameStarted = true
	st.Player1Position = 38
	st.Player2Position = 14
	st.CurrentTurn = Player2
	st.QuestionsTriggered = []int{10, 30}
	st.LastQuestionAsked = "First impressions of me?"
	st.Player1SnakeStreak = 2
	st.Player2MirrorUsed = true

	data, err := st.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalState(data)
	require.NoError(t, err)
	assert.Equal(t, st.Player1Position, got.Player1Position)
	assert.Equal(t, st.CurrentTurn, got.CurrentTurn)
	assert.Equal(t, st.QuestionsTriggered, got.QuestionsTriggered)
	assert.Equal(t, st.LastQuestionAsked, got.LastQuestionAsked)
	assert.Equal(t, 2, got.Player1SnakeStreak)
	assert.True(t, got.Player2MirrorUsed)
}

func TestUnmarshalEmptySnapshot(t *testing.T) {
	st, err := UnmarshalState("")
	require.NoError(t, err)
	assert.Equal(t, Player1, st.CurrentTurn)

	_, err = UnmarshalState("{not json")
	assert.Error(t, err)
}

func TestUnmarshalFillsMissingFields(t *testing.T) {
	// 兼容旧快照：缺省字段补默认值
	st, err := UnmarshalState(`{"player1_position":5}`)
	require.NoError(t, err)
	assert.Equal(t, Player1, st.CurrentTurn)
	assert.NotNil(t, st.QuestionsTriggered)
}

func TestMergeRemotePreservesLocalSliding(t *testing.T) {
	local := NewState()
	local.Sliding = &SlidingHint{Player: Player1, Path: SlidePath(38, 15)}

	remote := NewState()
	remote.Player1Position = 15
	remote.CurrentTurn = Player2

	merged := MergeRemote(local, remote)
	assert.Equal(t, 15, merged.Player1Position)
	assert.Equal(t, Player2, merged.CurrentTurn)
	require.NotNil(t, merged.Sliding)
	assert.Equal(t, local.Sliding.Path, merged.Sliding.Path)
}

func TestMergeRemoteNilCases(t *testing.T) {
	local := NewState()
	assert.Same(t, local, MergeRemote(local, nil))

	remote := NewState()
	remote.Player2Position = 7
	merged := MergeRemote(nil, remote)
	assert.Equal(t, 7, merged.Player2Position)
	assert.Nil(t, merged.Sliding)
}
