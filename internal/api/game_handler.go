package api

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/snake-talk/internal/errors"
	"github.com/wfunc/snake-talk/internal/middleware"
	"github.com/wfunc/snake-talk/internal/service"
	"go.uber.org/zap"
)

// GameHandler 游戏动作处理器
// 所有动作都要玩家令牌，actor从令牌里取、永远不信请求体
type GameHandler struct {
	games  service.GameService
	logger *zap.Logger
}

// NewGameHandler 创建游戏动作处理器
func NewGameHandler(games service.GameService, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		games:  games,
		logger: logger,
	}
}

// AnswerRequest 回答请求
type AnswerRequest struct {
	Answer string `json:"answer" binding:"max=1000"`
}

// ReactRequest 表情回应请求
type ReactRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

// Roll 掷骰
// POST /api/v1/sessions/:code/roll
func (h *GameHandler) Roll(c *gin.Context) {
	actor, ok := middleware.GetPlayer(c)
	if !ok {
		respondError(c, apperrors.New(apperrors.ErrNotParticipant))
		return
	}

	result, err := h.games.Roll(c.Request.Context(), c.Param("code"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// Answer 提交问题回答
// POST /api/v1/sessions/:code/question/answer
func (h *GameHandler) Answer(c *gin.Context) {
	actor, ok := middleware.GetPlayer(c)
	if !ok {
		respondError(c, apperrors.New(apperrors.ErrNotParticipant))
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.ErrInvalidParam, "请求参数错误"))
		return
	}

	if err := h.games.Answer(c.Request.Context(), c.Param("code"), actor, req.Answer); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// Mirror 把问题反问给对方
// POST /api/v1/sessions/:code/question/mirror
func (h *GameHandler) Mirror(c *gin.Context) {
	actor, ok := middleware.GetPlayer(c)
	if !ok {
		respondError(c, apperrors.New(apperrors.ErrNotParticipant))
		return
	}

	if err := h.games.Mirror(c.Request.Context(), c.Param("code"), actor); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// Skip 跳过问题
// POST /api/v1/sessions/:code/question/skip
func (h *GameHandler) Skip(c *gin.Context) {
	actor, ok := middleware.GetPlayer(c)
	if !ok {
		respondError(c, apperrors.New(apperrors.ErrNotParticipant))
		return
	}

	if err := h.games.Skip(c.Request.Context(), c.Param("code"), actor); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// React 对回答选表情回应
// POST /api/v1/sessions/:code/question/react
func (h *GameHandler) React(c *gin.Context) {
	actor, ok := middleware.GetPlayer(c)
	if !ok {
		respondError(c, apperrors.New(apperrors.ErrNotParticipant))
		return
	}

	var req ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.ErrInvalidParam, "请求参数错误"))
		return
	}

	if err := h.games.React(c.Request.Context(), c.Param("code"), actor, req.Emoji); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// State 当前游戏状态
// GET /api/v1/sessions/:code/state
func (h *GameHandler) State(c *gin.Context) {
	st, err := h.games.State(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, st)
}
