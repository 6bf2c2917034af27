package container

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/navitadamayantisyarif/pbl311-sub000/config"
	"github.com/navitadamayantisyarif/pbl311-sub000/services"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// 基础服务
	jwtService   services.InterfaceJWTService
	redisService services.InterfaceRedisService

	// 推送服务
	mqttPushService services.InterfaceMQTTPushService

	// 业务服务
	userService         services.InterfaceUserService
	accessService       services.InterfaceAccessService
	doorService         services.InterfaceDoorService
	accessLogService    services.InterfaceAccessLogService
	notificationService services.InterfaceNotificationService
	doorControlService  services.InterfaceDoorControlService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if db == nil {
		panic("数据库连接为空")
	}

	if cfg == nil {
		panic("配置为空")
	}

	// 测试Redis连接
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis连接测试失败: %v，将不使用Redis缓存", err)
		}
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化基础服务
	c.jwtService = services.NewJWTService(c.config)
	if c.redis != nil {
		c.redisService = services.NewRedisService(c.config)
	}

	// 初始化MQTT推送服务
	c.mqttPushService = services.NewMQTTPushService(c.config)
	if err := c.mqttPushService.Connect(); err != nil {
		log.Printf("MQTT推送服务连接失败: %v，应用内通知不受影响", err)
	}

	// 初始化业务服务
	c.userService = services.NewUserService(c.db, c.config)
	c.accessService = services.NewAccessService(c.db, c.config)
	c.doorService = services.NewDoorService(c.db, c.config)
	c.accessLogService = services.NewAccessLogService(c.db, c.config)
	c.notificationService = services.NewNotificationService(c.db, c.config, c.accessService, c.mqttPushService, c.redisService)

	// 控制管道编排所有核心依赖
	c.doorControlService = services.NewDoorControlService(c.db, c.config, c.accessService, c.doorService, c.accessLogService, c.notificationService)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "mqtt_push":
		return c.mqttPushService
	case "user":
		return c.userService
	case "access":
		return c.accessService
	case "door":
		return c.doorService
	case "access_log":
		return c.accessLogService
	case "notification":
		return c.notificationService
	case "door_control":
		return c.doorControlService
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
