package board

import (
	"fmt"
	"strconv"

	"github.com/wfunc/snake-talk/internal/config"
	"github.com/wfunc/snake-talk/internal/errors"
)

const (
	// BoardSize 棋盘格子总数
	BoardSize = 100
	// GridWidth 每行格子数
	GridWidth = 10
)

// TileKind 特殊格类型
type TileKind string

const (
	TileSnake  TileKind = "snake"  // 蛇头，向后滑
	TileLadder TileKind = "ladder" // 梯底，向前爬
)

// Topology 棋盘拓扑
// 启动时校验一次，之后只读，无任何可变状态
type Topology struct {
	snakes  map[int]int
	ladders map[int]int
}

// New 创建并校验棋盘拓扑
func New(snakes, ladders map[int]int) (*Topology, error) {
	t := &Topology{
		snakes:  make(map[int]int, len(snakes)),
		ladders: make(map[int]int, len(ladders)),
	}
	for from, to := range snakes {
		t.snakes[from] = to
	}
	for from, to := range ladders {
		t.ladders[from] = to
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// validate 校验拓扑不变量
func (t *Topology) validate() error {
	for from, to := range t.snakes {
		if from < 1 || from > BoardSize || to < 1 || to > BoardSize {
			return errors.Newf(errors.ErrBoardInvalid, "蛇 %d->%d 超出棋盘范围", from, to)
		}
		if from >= BoardSize {
			return errors.Newf(errors.ErrBoardInvalid, "格子 %d 是终点，不能作为蛇头", from)
		}
		if to >= from {
			return errors.Newf(errors.ErrBoardInvalid, "蛇 %d->%d 必须向后滑", from, to)
		}
		if _, dup := t.ladders[from]; dup {
			return errors.Newf(errors.ErrBoardInvalid, "格子 %d 同时是蛇头和梯底", from)
		}
	}

	for from, to := range t.ladders {
		if from < 1 || from > BoardSize || to < 1 || to > BoardSize {
			return errors.Newf(errors.ErrBoardInvalid, "梯子 %d->%d 超出棋盘范围", from, to)
		}
		if from >= BoardSize {
			return errors.Newf(errors.ErrBoardInvalid, "格子 %d 是终点，不能作为梯底", from)
		}
		if to <= from {
			return errors.Newf(errors.ErrBoardInvalid, "梯子 %d->%d 必须向前爬", from, to)
		}
	}

	// 禁止链式跳转：任何落点不能又是另一条蛇/梯的起点
	for from, to := range t.snakes {
		if t.isRoot(to) {
			return errors.Newf(errors.ErrBoardInvalid, "蛇 %d->%d 的落点又是特殊格起点", from, to)
		}
	}
	for from, to := range t.ladders {
		if t.isRoot(to) {
			return errors.Newf(errors.ErrBoardInvalid, "梯子 %d->%d 的落点又是特殊格起点", from, to)
		}
	}

	return nil
}

// isRoot 判断格子是否为蛇头或梯底
func (t *Topology) isRoot(tile int) bool {
	if _, ok := t.snakes[tile]; ok {
		return true
	}
	_, ok := t.ladders[tile]
	return ok
}

// DestinationOf 查询特殊格落点
// 返回落点、类型和是否命中；普通格返回ok=false
// 格子编号超出[1,100]属于调用方编程错误，直接panic
func (t *Topology) DestinationOf(tile int) (int, TileKind, bool) {
	if tile < 1 || tile > BoardSize {
		panic(fmt.Sprintf("board: 格子编号 %d 超出范围", tile))
	}

	if to, ok := t.snakes[tile]; ok {
		return to, TileSnake, true
	}
	if to, ok := t.ladders[tile]; ok {
		return to, TileLadder, true
	}
	return 0, "", false
}

// Snakes 返回蛇表的副本
func (t *Topology) Snakes() map[int]int {
	out := make(map[int]int, len(t.snakes))
	for k, v := range t.snakes {
		out[k] = v
	}
	return out
}

// Ladders 返回梯子表的副本
func (t *Topology) Ladders() map[int]int {
	out := make(map[int]int, len(t.ladders))
	for k, v := range t.ladders {
		out[k] = v
	}
	return out
}

// GridCoordinateOf 格子编号转网格坐标
// 蛇形编号：1号在底行最左，偶数行从左到右，奇数行从右到左，100号在顶行最左
// 返回(row, col)，row 0为底行
func GridCoordinateOf(tile int) (int, int) {
	if tile < 1 || tile > BoardSize {
		panic(fmt.Sprintf("board: 格子编号 %d 超出范围", tile))
	}

	row := (tile - 1) / GridWidth
	col := (tile - 1) % GridWidth
	if row%2 == 1 {
		col = GridWidth - 1 - col
	}
	return row, col
}

// Default 默认棋盘拓扑
// 蛇和梯子的布局取自线上版本，两张历史表合并后去掉了会形成链式跳转的三条
func Default() *Topology {
	t, err := New(
		map[int]int{
			16: 6, 29: 8, 38: 15, 47: 26, 49: 11, 53: 31,
			62: 19, 64: 60, 82: 65, 86: 54, 87: 24, 88: 24,
			92: 70, 93: 73, 94: 6, 95: 75, 97: 78, 98: 78,
		},
		map[int]int{
			4: 14, 5: 57, 9: 27, 28: 84, 36: 44,
			51: 67, 61: 81, 71: 91, 76: 84, 80: 100,
		},
	)
	if err != nil {
		// 默认表在测试中有校验，这里不可能发生
		panic(err)
	}
	return t
}

// FromConfig 从配置加载棋盘拓扑
// 配置为空则使用默认棋盘
func FromConfig(cfg *config.BoardConfig) (*Topology, error) {
	if cfg == nil || (len(cfg.Snakes) == 0 && len(cfg.Ladders) == 0) {
		return Default(), nil
	}

	snakes, err := parseTileMap(cfg.Snakes)
	if err != nil {
		return nil, err
	}
	ladders, err := parseTileMap(cfg.Ladders)
	if err != nil {
		return nil, err
	}

	return New(snakes, ladders)
}

// parseTileMap 解析字符串键的格子映射
func parseTileMap(in map[string]int) (map[int]int, error) {
	out := make(map[int]int, len(in))
	for key, to := range in {
		from, err := strconv.Atoi(key)
		if err != nil {
			return nil, errors.Newf(errors.ErrBoardInvalid, "非法的格子编号 %q", key)
		}
		out[from] = to
	}
	return out, nil
}
