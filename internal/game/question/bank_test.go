package question

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidatesStyleUnion(t *testing.T) {
	// 只选Fun时，候选 = funLively ∪ surprise
	got := Candidates(RelationshipFriend, []string{StyleFun}, "")
	assert.Len(t, got, 7)
	assert.Contains(t, got, "What's the funniest nickname you've ever had?")
	assert.Contains(t, got, "If you were to hit me with anything, what would it be?")
	assert.NotContains(t, got, "What's a secret talent you have?")
}

func TestCandidatesSurpriseAlwaysIncluded(t *testing.T) {
	// 未选任何风格也至少有惊喜组
	got := Candidates(RelationshipCrush, nil, "")
	require.Len(t, got, 2)
	assert.Contains(t, got, "Describe our relationship with a movie name.")
}

func TestCandidatesDeepAndRomanticShareThematic(t *testing.T) {
	deep := Candidates(RelationshipLover, []string{StyleDeep}, "")
	romantic := Candidates(RelationshipLover, []string{StyleRomantic}, "")
	assert.ElementsMatch(t, deep, romantic)
	assert.Contains(t, deep, "Where do you see us in five years?")
}

func TestCandidatesUnknownRelationshipFallsBack(t *testing.T) {
	got := Candidates("soulmate", []string{StyleCurious}, "")
	fallback := Candidates(RelationshipStranger, []string{StyleCurious}, "")
	assert.ElementsMatch(t, got, fallback)
}

func TestCandidatesCustomQuestionJoinsPool(t *testing.T) {
	custom := "Do you like me back?"
	got := Candidates(RelationshipCrush, []string{StyleFun}, custom)
	assert.Contains(t, got, custom)

	// 空自定义问题不产生空字符串候选
	got = Candidates(RelationshipCrush, []string{StyleFun}, "")
	assert.NotContains(t, got, "")
}

func TestCandidatesDeduplicates(t *testing.T) {
	// complicated的curiosity与crush的thematic各自含重复跨组条目时去重
	got := Candidates(RelationshipComplicated, []string{StyleFun, StyleCurious, StyleDeep}, "")
	seen := make(map[string]int)
	for _, q := range got {
		seen[q]++
	}
	for q, n := range seen {
		assert.Equal(t, 1, n, "重复问题: %s", q)
	}
}

func TestPickReturnsCandidate(t *testing.T) {
	pk := NewPickerWithSource(rand.NewSource(1))
	candidates := Candidates(RelationshipStranger, []string{StyleFun, StyleCurious, StyleDeep}, "")
	for i := 0; i < 50; i++ {
		q := pk.Pick(RelationshipStranger, []string{StyleFun, StyleCurious, StyleDeep}, "")
		assert.Contains(t, candidates, q)
	}
}

func TestPickDeterministicWithFixedSource(t *testing.T) {
	a := NewPickerWithSource(rand.NewSource(42))
	b := NewPickerWithSource(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		assert.Equal(t,
			a.Pick(RelationshipLover, []string{StyleDeep}, ""),
			b.Pick(RelationshipLover, []string{StyleDeep}, ""))
	}
}
