package controllers

import (
	"errors"

	"github.com/navitadamayantisyarif/pbl311-sub000/internal/error/code"
	"github.com/navitadamayantisyarif/pbl311-sub000/internal/error/response"
	"github.com/navitadamayantisyarif/pbl311-sub000/middleware"
	"github.com/navitadamayantisyarif/pbl311-sub000/models"
	"github.com/navitadamayantisyarif/pbl311-sub000/services"
	"github.com/navitadamayantisyarif/pbl311-sub000/services/container"

	"github.com/gin-gonic/gin"
)

// UserController 处理用户相关的请求
type UserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUserController 创建一个新的用户控制器
func NewUserController(ctx *gin.Context, container *container.ServiceContainer) *UserController {
	return &UserController{
		Ctx:       ctx,
		Container: container,
	}
}

// UserRequest 用户创建请求
type UserRequest struct {
	Name     string `json:"name" binding:"required" example:"Navita"`
	Email    string `json:"email" binding:"required,email" example:"navita@example.com"`
	Phone    string `json:"phone" example:"081234567890"`
	Password string `json:"password" binding:"required,min=6" example:"secret123"`
	Role     string `json:"role" example:"user"` // user, admin
}

// PushTokenRequest 推送令牌注册请求
type PushTokenRequest struct {
	Token string `json:"token" binding:"required" example:"fcm-device-token"`
}

// HandleUserFunc 返回一个处理用户请求的Gin处理函数
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUserController(ctx, container)

		switch method {
		case "getUsers":
			controller.GetUsers()
		case "createUser":
			controller.CreateUser()
		case "registerPushToken":
			controller.RegisterPushToken()
		default:
			response.ParamError(ctx, "无效的方法")
		}
	}
}

// 1. GetUsers 获取所有用户列表（管理员）
// @Summary 获取所有用户
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /users [get]
func (c *UserController) GetUsers() {
	userService := c.Container.GetService("user").(services.InterfaceUserService)

	users, err := userService.GetAllUsers()
	if err != nil {
		response.Fail(c.Ctx, code.CodeDatabase)
		return
	}

	response.Success(c.Ctx, users)
}

// 2. CreateUser 创建新用户（管理员）
// @Summary 创建用户
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UserRequest true "用户信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users [post]
func (c *UserController) CreateUser() {
	var req UserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "name、email和password是必填项")
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     models.UserRole(req.Role),
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	if err := userService.CreateUser(&user); err != nil {
		if errors.Is(err, services.ErrUserExists) {
			response.Fail(c.Ctx, code.CodeUserAlreadyExist)
			return
		}
		response.Fail(c.Ctx, code.CodeDatabase)
		return
	}

	response.Success(c.Ctx, user)
}

// 3. RegisterPushToken 注册当前用户的推送令牌
// @Summary 注册推送令牌
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PushTokenRequest true "设备令牌"
// @Success 200 {object} response.Response
// @Router /users/push-token [post]
func (c *UserController) RegisterPushToken() {
	principal, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	var req PushTokenRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "token是必填项")
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	if err := userService.UpdatePushToken(principal.UserID, req.Token); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			response.Fail(c.Ctx, code.CodeUserNotFound)
			return
		}
		response.Fail(c.Ctx, code.CodeDatabase)
		return
	}

	response.Success(c.Ctx, gin.H{"registered": true})
}
