package middleware

import (
	"strings"

	"github.com/navitadamayantisyarif/pbl311-sub000/config"
	"github.com/navitadamayantisyarif/pbl311-sub000/internal/error/code"
	"github.com/navitadamayantisyarif/pbl311-sub000/internal/error/response"
	"github.com/navitadamayantisyarif/pbl311-sub000/models"
	"github.com/navitadamayantisyarif/pbl311-sub000/services"

	"github.com/gin-gonic/gin"
)

var jwtService services.InterfaceJWTService

// InitAuthMiddleware 初始化认证中间件
func InitAuthMiddleware(cfg *config.Config) {
	jwtService = services.NewJWTService(cfg)
}

// extractToken 从授权头中提取token
func extractToken(authHeader string) string {
	// 检查并移除 "Bearer " 前缀
	if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return authHeader
}

// Authentication 通用认证中间件，把请求主体注入上下文。
// 核心代码从不自己解析令牌，只消费这里注入的 {userID, role}。
func Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.FailWithMessage(c, code.CodeTokenInvalid, "Authorization header is required")
			c.Abort()
			return
		}

		tokenString := extractToken(authHeader)
		principal, err := jwtService.ExtractPrincipal(tokenString)
		if err != nil {
			response.FailWithMessage(c, code.CodeTokenInvalid, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		c.Set("userID", principal.UserID)
		c.Set("role", principal.Role)
		c.Next()
	}
}

// AuthenticateAdmin 验证管理员权限
func AuthenticateAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.FailWithMessage(c, code.CodeTokenInvalid, "Authorization header is required")
			c.Abort()
			return
		}

		tokenString := extractToken(authHeader)
		principal, err := jwtService.ExtractPrincipal(tokenString)
		if err != nil {
			response.FailWithMessage(c, code.CodeTokenInvalid, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		if principal.Role != models.UserRoleAdmin {
			response.FailWithMessage(c, code.CodeForbidden, "Insufficient permissions: requires admin role")
			c.Abort()
			return
		}

		c.Set("userID", principal.UserID)
		c.Set("role", principal.Role)
		c.Next()
	}
}

// GetPrincipal 从上下文读取认证中间件注入的请求主体
func GetPrincipal(c *gin.Context) (services.Principal, bool) {
	userID, ok := c.Get("userID")
	if !ok {
		return services.Principal{}, false
	}
	role, ok := c.Get("role")
	if !ok {
		return services.Principal{}, false
	}

	id, ok := userID.(uint)
	if !ok {
		return services.Principal{}, false
	}
	r, ok := role.(models.UserRole)
	if !ok {
		return services.Principal{}, false
	}

	return services.Principal{UserID: id, Role: r}, true
}
