package api

import (
	"github.com/gin-gonic/gin"
	"github.com/wfunc/snake-talk/internal/board"
	"github.com/wfunc/snake-talk/internal/middleware"
	"github.com/wfunc/snake-talk/internal/service"
	"github.com/wfunc/snake-talk/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine           *gin.Engine
	db               *gorm.DB
	services         *service.Services
	sessionHandler   *SessionHandler
	gameHandler      *GameHandler
	wsHandler        *WebSocketHandler
	playerMiddleware *middleware.PlayerMiddleware
	log              *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, cfg *service.Config, topo *board.Topology, log *zap.Logger) *Router {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	hub := websocket.NewHub(log)
	go hub.Run()

	services := service.NewServices(db, cfg, topo, hub, log)

	router := &Router{
		engine:           engine,
		db:               db,
		services:         services,
		sessionHandler:   NewSessionHandler(services.Session, log),
		gameHandler:      NewGameHandler(services.Game, log),
		wsHandler:        NewWebSocketHandler(hub, log),
		playerMiddleware: middleware.NewPlayerMiddleware(services.Tokens),
		log:              log,
	}

	router.setupRoutes()
	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.healthCheck)

	v1 := r.engine.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			// 开房和入座不需要令牌（令牌就是在这里发的）
			sessions.POST("", r.sessionHandler.Create)
			sessions.POST("/join", r.sessionHandler.Join)
			sessions.GET("/:code", r.sessionHandler.Get)

			// 游戏动作需要对应房间的玩家令牌
			authed := sessions.Group("/:code")
			authed.Use(r.playerMiddleware.RequirePlayer())
			{
				authed.GET("/state", r.gameHandler.State)
				authed.GET("/history", r.sessionHandler.History)
				authed.POST("/roll", r.gameHandler.Roll)
				authed.POST("/question/answer", r.gameHandler.Answer)
				authed.POST("/question/mirror", r.gameHandler.Mirror)
				authed.POST("/question/skip", r.gameHandler.Skip)
				authed.POST("/question/react", r.gameHandler.React)
				authed.GET("/ws", r.wsHandler.SessionWebSocket)
			}
		}
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库ping失败",
		})
		return
	}

	c.JSON(200, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	})
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("启动API服务", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Services 获取服务集合
func (r *Router) Services() *service.Services {
	return r.services
}
