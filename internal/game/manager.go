package game

import (
	"context"
	"sync"
	"time"

	"github.com/wfunc/snake-talk/internal/errors"
	"go.uber.org/zap"
)

// Manager 对局运行时管理器
// 数据库快照是权威记录，这里只缓存活跃对局的内存运行时，
// 掉线重连时从快照重新水合
type Manager struct {
	mu          sync.RWMutex
	runtimes    map[string]*Runtime
	engine      *Engine
	skipAfter   int
	logger      *zap.Logger
	idleTimeout time.Duration
	maxSessions int
}

// Runtime 单个对局的内存运行时
type Runtime struct {
	SessionID    string
	Engine       *Engine
	Flow         *QuestionFlow
	StartTime    time.Time
	LastActivity time.Time

	mu       sync.Mutex
	state    *State
	inFlight bool // 掷骰动作进行中，拒绝并发动作
}

// ManagerConfig 运行时管理器配置
type ManagerConfig struct {
	Engine      *Engine
	SkipAfter   int
	Logger      *zap.Logger
	IdleTimeout time.Duration
	MaxSessions int
}

// NewManager 创建运行时管理器
func NewManager(cfg *ManagerConfig) *Manager {
	return &Manager{
		runtimes:    make(map[string]*Runtime),
		engine:      cfg.Engine,
		skipAfter:   cfg.SkipAfter,
		logger:      cfg.Logger,
		idleTimeout: cfg.IdleTimeout,
		maxSessions: cfg.MaxSessions,
	}
}

// Acquire 获取或水合对局运行时
// 内存里没有时从持久化快照重建，支持服务重启后的会话恢复
func (m *Manager) Acquire(sessionID string, snapshot string) (*Runtime, error) {
	m.mu.RLock()
	rt, ok := m.runtimes[sessionID]
	m.mu.RUnlock()
	if ok {
		rt.touch()
		return rt, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// 双检：拿写锁期间别人可能已经水合过了
	if rt, ok = m.runtimes[sessionID]; ok {
		rt.touch()
		return rt, nil
	}

	if m.maxSessions > 0 && len(m.runtimes) >= m.maxSessions {
		return nil, errors.New(errors.ErrSessionClosed, "活跃对局数已达上限")
	}

	st, err := UnmarshalState(snapshot)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDataIntegrity, "对局快照损坏")
	}

	rt = &Runtime{
		SessionID:    sessionID,
		Engine:       m.engine,
		Flow:         NewQuestionFlow(m.skipAfter, m.logger),
		StartTime:    time.Now(),
		LastActivity: time.Now(),
		state:        st,
	}
	m.runtimes[sessionID] = rt

	if m.logger != nil {
		m.logger.Info("水合对局运行时",
			zap.String("session_id", sessionID),
			zap.Bool("from_snapshot", snapshot != ""))
	}
	return rt, nil
}

// Peek 只查内存，不水合
func (m *Manager) Peek(sessionID string) (*Runtime, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rt, ok := m.runtimes[sessionID]
	return rt, ok
}

// Remove 移除对局运行时
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runtimes, sessionID)
}

// ActiveSessions 活跃对局数
func (m *Manager) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runtimes)
}

// CleanupInactive 清理闲置对局
// 快照早已落库，丢掉运行时不丢数据
func (m *Manager) CleanupInactive() {
	if m.idleTimeout <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for sessionID, rt := range m.runtimes {
		if now.Sub(rt.LastActivity) > m.idleTimeout {
			delete(m.runtimes, sessionID)
			if m.logger != nil {
				m.logger.Info("清理闲置对局",
					zap.String("session_id", sessionID),
					zap.Duration("inactive", now.Sub(rt.LastActivity)))
			}
		}
	}
}

// StartCleanupTask 启动后台清理任务
func (m *Manager) StartCleanupTask(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				if m.logger != nil {
					m.logger.Info("停止对局清理任务")
				}
				return
			case <-ticker.C:
				m.CleanupInactive()
			}
		}
	}()
}

func (rt *Runtime) touch() {
	rt.mu.Lock()
	rt.LastActivity = time.Now()
	rt.mu.Unlock()
}

// BeginAction 抢占动作门闩
// 掷骰从出手到滑行落定有意不可中断，期间新动作直接拒绝
func (rt *Runtime) BeginAction() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.inFlight {
		return errors.New(errors.ErrActionInFlight)
	}
	rt.inFlight = true
	return nil
}

// EndAction 释放动作门闩
func (rt *Runtime) EndAction() {
	rt.mu.Lock()
	rt.inFlight = false
	rt.LastActivity = time.Now()
	rt.mu.Unlock()
}

// ApplyTurn 在运行时状态上执行一次掷骰回合
func (rt *Runtime) ApplyTurn(actor Player) (*TurnOutcome, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.Engine.ApplyTurn(rt.state, actor)
}

// MarkStarted 置game_started标志（第二名玩家入座时）
func (rt *Runtime) MarkStarted() {
	rt.mu.Lock()
	rt.state.GameStarted = true
	rt.mu.Unlock()
}

// SetSliding 设置滑行动画提示
func (rt *Runtime) SetSliding(hint *SlidingHint) {
	rt.mu.Lock()
	rt.state.Sliding = hint
	rt.mu.Unlock()
}

// ClearSliding 清除滑行动画提示
func (rt *Runtime) ClearSliding() {
	rt.mu.Lock()
	rt.state.Sliding = nil
	rt.mu.Unlock()
}

// TriggerQuestion 打开问答流程
func (rt *Runtime) TriggerQuestion(actor Player, question string) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.Flow.Trigger(rt.state, actor, question)
}

// ReleaseQuestionTile 归还未能开出弹窗的里程碑格
// 引擎在回合内记账了触发，但弹窗被抑制或没选出问题时格子不算消耗
func (rt *Runtime) ReleaseQuestionTile(tile int) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.state.clearTriggered(tile)
}

// Answer 提交回答
func (rt *Runtime) Answer(actor Player, text string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.Flow.Answer(rt.state, actor, text)
}

// Mirror 反问
func (rt *Runtime) Mirror(actor Player) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.Flow.Mirror(rt.state, actor)
}

// Skip 跳过问题
func (rt *Runtime) Skip(actor Player) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.Flow.Skip(rt.state, actor)
}

// React 表情回应
func (rt *Runtime) React(actor Player, emoji string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.Flow.React(actor, emoji)
}

// CloseQuestion 收拢问答流程
func (rt *Runtime) CloseQuestion() {
	rt.Flow.Close()
}

// CloneState 拷贝当前状态（推送和持久化用）
func (rt *Runtime) CloneState() *State {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.state.Clone()
}

// SnapshotJSON 序列化持久化快照
func (rt *Runtime) SnapshotJSON() (string, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.state.Marshal()
}
