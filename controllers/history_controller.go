package controllers

import (
	"strconv"

	"github.com/navitadamayantisyarif/pbl311-sub000/internal/error/code"
	"github.com/navitadamayantisyarif/pbl311-sub000/internal/error/response"
	"github.com/navitadamayantisyarif/pbl311-sub000/middleware"
	"github.com/navitadamayantisyarif/pbl311-sub000/models"
	"github.com/navitadamayantisyarif/pbl311-sub000/services"
	"github.com/navitadamayantisyarif/pbl311-sub000/services/container"

	"github.com/gin-gonic/gin"
)

// HistoryController 处理门禁历史相关的请求
type HistoryController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewHistoryController 创建一个新的历史记录控制器
func NewHistoryController(ctx *gin.Context, container *container.ServiceContainer) *HistoryController {
	return &HistoryController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleHistoryFunc 返回一个处理历史查询的Gin处理函数
func HandleHistoryFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHistoryController(ctx, container)

		switch method {
		case "getAccessHistory":
			controller.GetAccessHistory()
		case "getAccessStats":
			controller.GetAccessStats()
		default:
			response.ParamError(ctx, "无效的方法")
		}
	}
}

// 1. GetAccessHistory 分页查询门禁历史
// @Summary 查询门禁历史
// @Description 按门、用户、日期范围过滤，时间倒序分页返回
// @Tags history
// @Produce json
// @Security BearerAuth
// @Param door_id query int false "门ID"
// @Param user_id query int false "用户ID"
// @Param start_date query string false "开始日期 YYYY-MM-DD"
// @Param end_date query string false "结束日期 YYYY-MM-DD"
// @Param limit query int false "每页条数"
// @Param offset query int false "偏移量"
// @Success 200 {object} response.Response
// @Router /history/access [get]
func (c *HistoryController) GetAccessHistory() {
	principal, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	var filter services.AccessLogFilter
	if err := c.Ctx.ShouldBindQuery(&filter); err != nil {
		response.ParamError(c.Ctx, "无效的查询参数")
		return
	}

	var page models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&page); err != nil {
		response.ParamError(c.Ctx, "无效的分页参数")
		return
	}

	// 普通用户只能查自己的记录
	if principal.Role != models.UserRoleAdmin {
		filter.UserID = principal.UserID
	}

	logService := c.Container.GetService("access_log").(services.InterfaceAccessLogService)
	logs, pagination, err := logService.Query(filter, page)
	if err != nil {
		response.Fail(c.Ctx, code.CodeDatabase)
		return
	}

	response.Success(c.Ctx, gin.H{
		"logs":       logs,
		"pagination": pagination,
	})
}

// 2. GetAccessStats 按天聚合的门禁统计（仪表盘）
// @Summary 门禁统计
// @Tags history
// @Produce json
// @Security BearerAuth
// @Param days query int false "统计天数，默认7"
// @Success 200 {object} response.Response
// @Router /history/stats [get]
func (c *HistoryController) GetAccessStats() {
	days, _ := strconv.Atoi(c.Ctx.DefaultQuery("days", "7"))

	logService := c.Container.GetService("access_log").(services.InterfaceAccessLogService)
	stats, err := logService.DailyStats(days)
	if err != nil {
		response.Fail(c.Ctx, code.CodeDatabase)
		return
	}

	response.Success(c.Ctx, stats)
}
