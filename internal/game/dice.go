package game

import (
	"math/rand"
	"sync"
	"time"
)

// DiceSides 骰子面数
const DiceSides = 6

// Dice 骰子接口
// 系统里唯一的随机源；公平即可，不要求密码学强度
type Dice interface {
	Roll() int
}

// randDice 标准骰子
type randDice struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDice 创建标准骰子
func NewDice() Dice {
	return &randDice{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Roll 掷骰，均匀返回[1,6]
func (d *randDice) Roll() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Intn(DiceSides) + 1
}

// FixedDice 固定序列骰子（测试用）
type FixedDice struct {
	mu    sync.Mutex
	rolls []int
	next  int
}

// NewFixedDice 创建固定序列骰子，序列耗尽后循环
func NewFixedDice(rolls ...int) *FixedDice {
	return &FixedDice{rolls: rolls}
}

// Roll 按序列返回点数
func (d *FixedDice) Roll() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.rolls) == 0 {
		return 1
	}
	roll := d.rolls[d.next%len(d.rolls)]
	d.next++
	return roll
}
