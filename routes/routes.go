package routes

import (
	"github.com/navitadamayantisyarif/pbl311-sub000/config"
	"github.com/navitadamayantisyarif/pbl311-sub000/controllers"
	_ "github.com/navitadamayantisyarif/pbl311-sub000/docs"
	"github.com/navitadamayantisyarif/pbl311-sub000/middleware"
	"github.com/navitadamayantisyarif/pbl311-sub000/services/container"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *gin.Engine {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg, redisClient)
	// 初始化中间件
	middleware.InitAuthMiddleware(cfg)
	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册需要认证的路由
	registerAuthenticatedRoutes(api, container)
	// 注册管理员路由
	registerAdminRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 健康检查
	api.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// 认证路由
	api.POST("/auth/login", controllers.HandleJWTFunc(container, "login"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	auth := api.Group("/")
	auth.Use(middleware.Authentication())

	// 门状态与控制
	auth.GET("/door/status", controllers.HandleDoorFunc(container, "getDoorStatus"))
	auth.POST("/door/control",
		middleware.RateLimitByIP(5, 10),
		controllers.HandleDoorFunc(container, "controlDoor"))

	// 门禁历史
	auth.GET("/history/access", controllers.HandleHistoryFunc(container, "getAccessHistory"))
	auth.GET("/history/stats", controllers.HandleHistoryFunc(container, "getAccessStats"))

	// 通知
	auth.GET("/notifications", controllers.HandleNotificationFunc(container, "getNotifications"))
	auth.PUT("/notifications/:id/read", controllers.HandleNotificationFunc(container, "markNotificationRead"))

	// 推送令牌注册
	auth.POST("/users/push-token", controllers.HandleUserFunc(container, "registerPushToken"))
}

// registerAdminRoutes 注册管理员路由
func registerAdminRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	admin := api.Group("/")
	admin.Use(middleware.AuthenticateAdmin())

	// 门设备管理
	admin.Group("/doors").GET("", controllers.HandleDoorFunc(container, "getDoors"))
	admin.Group("/doors").GET("/:id", controllers.HandleDoorFunc(container, "getDoor"))
	admin.Group("/doors").POST("", controllers.HandleDoorFunc(container, "createDoor"))
	admin.Group("/doors").PUT("/:id", controllers.HandleDoorFunc(container, "updateDoor"))
	admin.Group("/doors").DELETE("/:id", controllers.HandleDoorFunc(container, "deleteDoor"))
	// 门授权管理
	admin.Group("/doors").POST("/:id/access", controllers.HandleDoorFunc(container, "grantDoorAccess"))
	admin.Group("/doors").DELETE("/:id/access/:user_id", controllers.HandleDoorFunc(container, "revokeDoorAccess"))

	// 用户管理
	admin.Group("/users").GET("", controllers.HandleUserFunc(container, "getUsers"))
	admin.Group("/users").POST("", controllers.HandleUserFunc(container, "createUser"))
}
