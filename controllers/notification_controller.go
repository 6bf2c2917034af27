package controllers

import (
	"errors"
	"strconv"

	"github.com/navitadamayantisyarif/pbl311-sub000/internal/error/code"
	"github.com/navitadamayantisyarif/pbl311-sub000/internal/error/response"
	"github.com/navitadamayantisyarif/pbl311-sub000/middleware"
	"github.com/navitadamayantisyarif/pbl311-sub000/models"
	"github.com/navitadamayantisyarif/pbl311-sub000/services"
	"github.com/navitadamayantisyarif/pbl311-sub000/services/container"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NotificationController 处理通知相关的请求
type NotificationController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewNotificationController 创建一个新的通知控制器
func NewNotificationController(ctx *gin.Context, container *container.ServiceContainer) *NotificationController {
	return &NotificationController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleNotificationFunc 返回一个处理通知请求的Gin处理函数
func HandleNotificationFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewNotificationController(ctx, container)

		switch method {
		case "getNotifications":
			controller.GetNotifications()
		case "markNotificationRead":
			controller.MarkNotificationRead()
		default:
			response.ParamError(ctx, "无效的方法")
		}
	}
}

// 1. GetNotifications 获取当前用户的通知列表
// @Summary 获取通知列表
// @Tags notification
// @Produce json
// @Security BearerAuth
// @Param limit query int false "每页条数"
// @Param offset query int false "偏移量"
// @Success 200 {object} response.Response
// @Router /notifications [get]
func (c *NotificationController) GetNotifications() {
	principal, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	var page models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&page); err != nil {
		response.ParamError(c.Ctx, "无效的分页参数")
		return
	}

	notificationService := c.Container.GetService("notification").(services.InterfaceNotificationService)
	notifications, pagination, err := notificationService.GetUserNotifications(principal.UserID, page)
	if err != nil {
		response.Fail(c.Ctx, code.CodeDatabase)
		return
	}

	response.Success(c.Ctx, gin.H{
		"notifications": notifications,
		"pagination":    pagination,
	})
}

// 2. MarkNotificationRead 标记通知为已读
// @Summary 标记通知已读
// @Tags notification
// @Produce json
// @Security BearerAuth
// @Param id path int true "通知ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /notifications/{id}/read [put]
func (c *NotificationController) MarkNotificationRead() {
	principal, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	id, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil || id <= 0 {
		response.ParamError(c.Ctx, "无效的通知ID")
		return
	}

	notificationService := c.Container.GetService("notification").(services.InterfaceNotificationService)
	if err := notificationService.MarkRead(principal.UserID, uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c.Ctx, code.CodeRecordNotFound)
			return
		}
		response.Fail(c.Ctx, code.CodeDatabase)
		return
	}

	response.Success(c.Ctx, gin.H{"read": id})
}
