// Package question 按关系类型与聊天风格选取对话问题
package question

import (
	"math/rand"
	"sync"
	"time"
)

// 关系类型
const (
	RelationshipFriend      = "friend"
	RelationshipCrush       = "crush"
	RelationshipLover       = "lover"
	RelationshipStranger    = "stranger"
	RelationshipComplicated = "complicated"
)

// 聊天风格
const (
	StyleFun      = "Fun"
	StyleCurious  = "Curious"
	StyleDeep     = "Deep"
	StyleRomantic = "Romantic"
)

// pool 单一关系类型下的四组问题
type pool struct {
	funLively []string
	curiosity []string
	thematic  []string
	surprise  []string
}

var bank = map[string]pool{
	RelationshipFriend: {
		funLively: []string{
			"What's the most embarrassing thing you've done in public?",
			"What's the funniest nickname you've ever had?",
			"What's the weirdest food combination you've ever tried?",
			"What's the weirdest thing you've ever eaten?",
			"If you have to propose to someone, how would you do it?",
		},
		curiosity: []string{
			"What's a secret talent you have?",
			"What's a hobby you've always wanted to try?",
			"What's your favorite movie of all time?",
			"What's your favorite color?",
		},
		thematic: []string{
			"What's your favorite memory of us together?",
			"What's something you've always wanted to do with me but haven't?",
			"Tell me a gossip that you never told me.",
		},
		surprise: []string{
			"If we need to explain our relationship with a movie name, what would it be?",
			"If you were to hit me with anything, what would it be?",
		},
	},
	RelationshipCrush: {
		funLively: []string{
			"What's your most frequently played song?",
			"If we could travel anywhere together, where would we go?",
			"What's your idea of a perfect date night?",
			"What's your favorite thing to do with me and why?",
		},
		curiosity: []string{
			"If you could ask me anything, what would it be?",
			"What's one thing you've always wanted to try but haven't?",
			"What are the three songs you would listen to for the next 5 years?",
			"What's your favorite movie?",
		},
		thematic: []string{
			"Do you believe in love at first sight?",
			"If I would say yes to one thing, what would you ask me?",
			"What's the thing that makes you remember me?",
			"What do you expect from your partner?",
		},
		surprise: []string{
			"Describe our relationship with a movie name.",
			"If you have to dedicate a song to me, what would it be?",
		},
	},
	RelationshipLover: {
		funLively: []string{
			"What's the funniest thing that's happened to us together?",
			"What's a silly habit of mine that you secretly love?",
			"What's your favorite thing I do for you?",
			"How's your day?",
		},
		curiosity: []string{
			"What's a dream you've never shared?",
			"If we could take a class together, what would it be?",
			"What's something new you'd like us to try?",
		},
		thematic: []string{
			"Where do you see us in five years?",
			"What scares you the most about our relationship?",
			"What's your idea of a dream home - only you and me?",
			"What do you think we need to do to improve our relationship?",
			"What are the things that make you angry about me?",
			"What's a song that perfectly describes our relationship?",
		},
		surprise: []string{
			"If you had to kiss me only in one place for the rest of your life, where would that be?",
			"Describe our love using only emojis",
		},
	},
	RelationshipStranger: {
		funLively: []string{
			"What's your go-to comfort food?",
			"What's a fun fact about yourself that few people know?",
			"If you could have any superpower, what would it be?",
			"How's your day?",
		},
		curiosity: []string{
			"If you could live in any era, which would it be and why?",
			"What's your dream job?",
			"What's a book or movie that changed your perspective?",
			"What's your favorite color?",
		},
		thematic: []string{
			"What made you accept this invite?",
			"First impressions of me?",
			"What's a guilty pleasure you're into?",
			"Would you swipe right on me?",
			"What's a place you've always wanted to visit?",
			"What are three songs you'd never get bored of?",
		},
		surprise: []string{
			"If you had to kiss someone to avoid dying, where would you kiss them?",
			"If you could ask me one weird question and I had to answer honestly, what would it be?",
		},
	},
	RelationshipComplicated: {
		funLively: []string{
			"If our relationship were a movie genre, what would it be?",
			"What's a funny memory we share?",
			"What's a song that captures our dynamic?",
		},
		curiosity: []string{
			"How do you think we could improve our communication?",
			"If you had to pick one word to describe us, what would it be?",
			"What do you expect from your partner?",
		},
		thematic: []string{
			"What do we need to fix between us?",
			"Is there something unsaid that you wish I knew?",
			"When did things start changing?",
			"What would you change about how we talk?",
			"What scares you the most about our situation?",
			"What do you hope for us moving forward?",
			"What's something you've been hesitant to tell me?",
			"What do you think we need to do to improve our relationship?",
			"What are the things that make you angry about me?",
		},
		surprise: []string{
			"If I said yes to one thing, what would you ask?",
			"Rate our vibe from 1 to 10",
			"Describe our relationship with a movie name",
		},
	},
}

// Picker 问题选取器
// 按关系类型定位题库，按风格并集筛选，惊喜组始终加入
type Picker struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewPicker 创建选取器
func NewPicker() *Picker {
	return &Picker{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewPickerWithSource 指定随机源，测试用
func NewPickerWithSource(src rand.Source) *Picker {
	return &Picker{rand: rand.New(src)}
}

// Candidates 按关系类型与风格聚合候选问题
// 未知关系类型回落到stranger题库，自定义问题非空时并入候选池
func Candidates(relationship string, styles []string, custom string) []string {
	p, ok := bank[relationship]
	if !ok {
		p = bank[RelationshipStranger]
	}

	styleSet := make(map[string]bool, len(styles))
	for _, s := range styles {
		styleSet[s] = true
	}

	var out []string
	if styleSet[StyleFun] {
		out = append(out, p.funLively...)
	}
	if styleSet[StyleCurious] {
		out = append(out, p.curiosity...)
	}
	if styleSet[StyleDeep] || styleSet[StyleRomantic] {
		out = append(out, p.thematic...)
	}
	out = append(out, p.surprise...)

	if custom != "" {
		out = append(out, custom)
	}
	return dedupe(out)
}

// Pick 随机选一条问题
func (pk *Picker) Pick(relationship string, styles []string, custom string) string {
	candidates := Candidates(relationship, styles, custom)
	if len(candidates) == 0 {
		return ""
	}
	pk.mu.Lock()
	defer pk.mu.Unlock()
	return candidates[pk.rand.Intn(len(candidates))]
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, q := range in {
		if seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}
