package controllers

import (
	"errors"

	"github.com/navitadamayantisyarif/pbl311-sub000/internal/error/code"
	"github.com/navitadamayantisyarif/pbl311-sub000/internal/error/response"
	"github.com/navitadamayantisyarif/pbl311-sub000/services"
	"github.com/navitadamayantisyarif/pbl311-sub000/services/container"

	"github.com/gin-gonic/gin"
)

// JWTController 处理认证相关的请求
type JWTController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewJWTController 创建一个新的认证控制器
func NewJWTController(ctx *gin.Context, container *container.ServiceContainer) *JWTController {
	return &JWTController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// HandleJWTFunc 返回一个处理认证请求的Gin处理函数
func HandleJWTFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewJWTController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		default:
			response.ParamError(ctx, "无效的方法")
		}
	}
}

// 1. Login 用户登录
// @Summary 用户登录
// @Description 校验邮箱密码，返回JWT令牌
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (c *JWTController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "email和password是必填项")
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := userService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrLoginFailed) {
			response.Fail(c.Ctx, code.CodeLoginFailed)
			return
		}
		response.ServerError(c.Ctx)
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	token, err := jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		response.ServerError(c.Ctx)
		return
	}

	response.Success(c.Ctx, gin.H{
		"token": token,
		"user":  user,
	})
}
