package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/snake-talk/internal/game"
	"github.com/wfunc/snake-talk/internal/utils"
)

const (
	ctxKeySessionID = "sessionID"
	ctxKeyPlayerID  = "playerID"
	ctxKeyPlayer    = "player"
)

// PlayerMiddleware 玩家令牌中间件
// 不是账号体系：令牌只证明"这个请求来自某房间的某个席位"
type PlayerMiddleware struct {
	tokens *utils.TokenManager
}

// NewPlayerMiddleware 创建玩家令牌中间件
func NewPlayerMiddleware(tokens *utils.TokenManager) *PlayerMiddleware {
	return &PlayerMiddleware{tokens: tokens}
}

// RequirePlayer 需要玩家令牌的中间件
// 令牌里的房间码必须和路径参数一致，防止拿A房的令牌操作B房
func (m *PlayerMiddleware) RequirePlayer() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "NO_TOKEN",
				"message": "缺少玩家令牌",
			})
			c.Abort()
			return
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "INVALID_TOKEN",
				"message": "无效的玩家令牌",
				"details": err.Error(),
			})
			c.Abort()
			return
		}

		if code := c.Param("code"); code != "" &&
			!strings.EqualFold(strings.TrimSpace(code), claims.SessionID) {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    "SESSION_MISMATCH",
				"message": "令牌不属于该房间",
			})
			c.Abort()
			return
		}

		c.Set(ctxKeySessionID, claims.SessionID)
		c.Set(ctxKeyPlayerID, claims.PlayerID)
		c.Set(ctxKeyPlayer, claims.Player)

		c.Next()
	}
}

// extractToken 从请求中提取令牌
// 优先Authorization头，其次query参数（WebSocket握手用）
func (m *PlayerMiddleware) extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return c.Query("token")
}

// GetSessionID 从上下文取房间码
func GetSessionID(c *gin.Context) string {
	return c.GetString(ctxKeySessionID)
}

// GetPlayerID 从上下文取玩家ID
func GetPlayerID(c *gin.Context) string {
	return c.GetString(ctxKeyPlayerID)
}

// GetPlayer 从上下文取玩家槽位
func GetPlayer(c *gin.Context) (game.Player, bool) {
	p := game.Player(c.GetString(ctxKeyPlayer))
	return p, p.Valid()
}
