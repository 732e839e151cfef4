package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/snake-talk/internal/errors"
	"github.com/wfunc/snake-talk/internal/service"
	"go.uber.org/zap"
)

// SessionHandler 对局会话处理器
type SessionHandler struct {
	sessions service.SessionService
	logger   *zap.Logger
}

// NewSessionHandler 创建对局会话处理器
func NewSessionHandler(sessions service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// Create 开房
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.ErrInvalidParam, "请求参数错误"))
		return
	}

	grant, err := h.sessions.CreateSession(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    grant,
	})
}

// Join 凭房间码入座
// POST /api/v1/sessions/join
func (h *SessionHandler) Join(c *gin.Context) {
	var req service.JoinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.ErrInvalidParam, "请求参数错误"))
		return
	}

	grant, err := h.sessions.JoinSession(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, grant)
}

// Get 查询对局详情
// GET /api/v1/sessions/:code
func (h *SessionHandler) Get(c *gin.Context) {
	detail, err := h.sessions.GetSession(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, detail)
}

// History 分页查询回合历史
// GET /api/v1/sessions/:code/history
func (h *SessionHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	records, total, err := h.sessions.GetHistory(c.Request.Context(), c.Param("code"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"records":   records,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
