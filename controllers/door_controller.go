package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/navitadamayantisyarif/pbl311-sub000/internal/error/code"
	"github.com/navitadamayantisyarif/pbl311-sub000/internal/error/response"
	"github.com/navitadamayantisyarif/pbl311-sub000/middleware"
	"github.com/navitadamayantisyarif/pbl311-sub000/models"
	"github.com/navitadamayantisyarif/pbl311-sub000/services"
	"github.com/navitadamayantisyarif/pbl311-sub000/services/container"

	"github.com/gin-gonic/gin"
)

// InterfaceDoorController 定义门设备控制器接口
type InterfaceDoorController interface {
	GetDoorStatus()
	ControlDoor()
	GetDoors()
	GetDoor()
	CreateDoor()
	UpdateDoor()
	DeleteDoor()
	GrantDoorAccess()
	RevokeDoorAccess()
}

// DoorController 处理门设备相关的请求
type DoorController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewDoorController 创建一个新的门设备控制器
func NewDoorController(ctx *gin.Context, container *container.ServiceContainer) *DoorController {
	return &DoorController{
		Ctx:       ctx,
		Container: container,
	}
}

// ControlDoorRequest 门禁控制请求
type ControlDoorRequest struct {
	DoorID uint   `json:"door_id" binding:"required" example:"1"`
	Action string `json:"action" binding:"required" example:"unlock"` // unlock/lock及同义词
	Method string `json:"method" example:"app"`
}

// DoorRequest 门设备创建/更新请求
type DoorRequest struct {
	Name         string `json:"name" binding:"required" example:"Pintu Depan"`
	Location     string `json:"location" example:"Lantai 1"`
	BatteryLevel *int   `json:"battery_level" example:"100"`
	WifiStrength string `json:"wifi_strength" example:"good"`
	CameraActive *bool  `json:"camera_active" example:"false"`
}

// DoorAccessRequest 门授权请求
type DoorAccessRequest struct {
	UserID uint `json:"user_id" binding:"required" example:"2"`
}

// HandleDoorFunc 返回一个处理门设备请求的Gin处理函数
func HandleDoorFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDoorController(ctx, container)

		switch method {
		case "getDoorStatus":
			controller.GetDoorStatus()
		case "controlDoor":
			controller.ControlDoor()
		case "getDoors":
			controller.GetDoors()
		case "getDoor":
			controller.GetDoor()
		case "createDoor":
			controller.CreateDoor()
		case "updateDoor":
			controller.UpdateDoor()
		case "deleteDoor":
			controller.DeleteDoor()
		case "grantDoorAccess":
			controller.GrantDoorAccess()
		case "revokeDoorAccess":
			controller.RevokeDoorAccess()
		default:
			response.ParamError(ctx, "无效的方法")
		}
	}
}

// 1. GetDoorStatus 获取当前用户可见的门状态列表
// @Summary 获取门状态
// @Description 返回当前用户有授权的门列表（管理员可见全部门）
// @Tags door
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /door/status [get]
func (c *DoorController) GetDoorStatus() {
	principal, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	// 短TTL缓存，控制提交后由扇出主动失效
	redisService, _ := c.Container.GetService("redis").(services.InterfaceRedisService)
	if redisService != nil {
		var cached []models.Door
		if err := redisService.GetDoorStatus(principal.UserID, &cached); err == nil {
			response.Success(c.Ctx, cached)
			return
		}
	}

	accessService := c.Container.GetService("access").(services.InterfaceAccessService)
	doors, err := accessService.ListAccessibleDoors(principal.UserID, principal.Role)
	if err != nil {
		response.Fail(c.Ctx, code.CodeDatabase)
		return
	}

	if redisService != nil {
		// 缓存写入失败不影响响应
		_ = redisService.CacheDoorStatus(principal.UserID, doors, 30*time.Second)
	}

	response.Success(c.Ctx, doors)
}

// 2. ControlDoor 执行门禁控制
// @Summary 控制门锁
// @Description 对指定门执行lock/unlock，需要显式授权记录
// @Tags door
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ControlDoorRequest true "控制请求"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /door/control [post]
func (c *DoorController) ControlDoor() {
	principal, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	var req ControlDoorRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "door_id和action是必填项")
		return
	}

	method := models.AccessMethod(req.Method)
	if method == "" {
		method = models.AccessMethodApp
	}

	controlService := c.Container.GetService("door_control").(services.InterfaceDoorControlService)
	result, ctrlErr := controlService.ControlDoor(principal, req.DoorID, req.Action, method, c.Ctx.ClientIP())
	if ctrlErr != nil {
		if ctrlErr.RetryAfter > 0 {
			response.FailWithRetry(c.Ctx, ctrlErr.Code, ctrlErr.Message, ctrlErr.RetryAfter)
			return
		}
		response.FailWithMessage(c.Ctx, ctrlErr.Code, ctrlErr.Message)
		return
	}

	response.Success(c.Ctx, result)
}

// 3. GetDoors 获取所有门设备（管理员）
// @Summary 获取所有门设备
// @Tags door
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /doors [get]
func (c *DoorController) GetDoors() {
	doorService := c.Container.GetService("door").(services.InterfaceDoorService)

	doors, err := doorService.GetAllDoors()
	if err != nil {
		response.Fail(c.Ctx, code.CodeDatabase)
		return
	}

	response.Success(c.Ctx, doors)
}

// 4. GetDoor 获取单个门设备详情（管理员）
// @Summary 获取单个门设备
// @Tags door
// @Produce json
// @Security BearerAuth
// @Param id path int true "门ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /doors/{id} [get]
func (c *DoorController) GetDoor() {
	doorID, ok := c.pathID()
	if !ok {
		return
	}

	doorService := c.Container.GetService("door").(services.InterfaceDoorService)
	door, err := doorService.GetDoorByID(doorID)
	if err != nil {
		if errors.Is(err, services.ErrDoorNotFound) {
			response.Fail(c.Ctx, code.CodeDoorNotFound)
			return
		}
		response.Fail(c.Ctx, code.CodeDatabase)
		return
	}

	response.Success(c.Ctx, door)
}

// 5. CreateDoor 创建新门设备（管理员）
// @Summary 创建门设备
// @Tags door
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DoorRequest true "门设备信息"
// @Success 200 {object} response.Response
// @Router /doors [post]
func (c *DoorController) CreateDoor() {
	var req DoorRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "name是必填项")
		return
	}

	door := models.Door{
		Name:       req.Name,
		Location:   req.Location,
		Locked:     true,
		LastUpdate: time.Now(),
	}
	if req.BatteryLevel != nil {
		door.BatteryLevel = *req.BatteryLevel
	} else {
		door.BatteryLevel = 100
	}
	if req.WifiStrength != "" {
		door.WifiStrength = models.WifiStrength(req.WifiStrength)
	}
	if req.CameraActive != nil {
		door.CameraActive = *req.CameraActive
	}

	doorService := c.Container.GetService("door").(services.InterfaceDoorService)
	if err := doorService.CreateDoor(&door); err != nil {
		response.Fail(c.Ctx, code.CodeDatabase)
		return
	}

	response.Success(c.Ctx, door)
}

// 6. UpdateDoor 更新门设备信息（管理员维护用）
// @Summary 更新门设备
// @Tags door
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "门ID"
// @Success 200 {object} response.Response
// @Router /doors/{id} [put]
func (c *DoorController) UpdateDoor() {
	doorID, ok := c.pathID()
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.Ctx.ShouldBindJSON(&updates); err != nil {
		response.ParamError(c.Ctx, "无效的请求体")
		return
	}

	// 锁状态只能通过控制管道修改
	delete(updates, "locked")
	delete(updates, "last_update")

	doorService := c.Container.GetService("door").(services.InterfaceDoorService)
	door, err := doorService.UpdateDoor(doorID, updates)
	if err != nil {
		if errors.Is(err, services.ErrDoorNotFound) {
			response.Fail(c.Ctx, code.CodeDoorNotFound)
			return
		}
		response.Fail(c.Ctx, code.CodeDatabase)
		return
	}

	response.Success(c.Ctx, door)
}

// 7. DeleteDoor 删除门设备（管理员）
// @Summary 删除门设备
// @Tags door
// @Produce json
// @Security BearerAuth
// @Param id path int true "门ID"
// @Success 200 {object} response.Response
// @Router /doors/{id} [delete]
func (c *DoorController) DeleteDoor() {
	doorID, ok := c.pathID()
	if !ok {
		return
	}

	doorService := c.Container.GetService("door").(services.InterfaceDoorService)
	if err := doorService.DeleteDoor(doorID); err != nil {
		if errors.Is(err, services.ErrDoorNotFound) {
			response.Fail(c.Ctx, code.CodeDoorNotFound)
			return
		}
		response.Fail(c.Ctx, code.CodeDatabase)
		return
	}

	response.Success(c.Ctx, gin.H{"deleted": doorID})
}

// 8. GrantDoorAccess 授予用户门的控制权限（管理员）
// @Summary 授予门访问权限
// @Tags door
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "门ID"
// @Param request body DoorAccessRequest true "授权对象"
// @Success 200 {object} response.Response
// @Router /doors/{id}/access [post]
func (c *DoorController) GrantDoorAccess() {
	doorID, ok := c.pathID()
	if !ok {
		return
	}

	var req DoorAccessRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "user_id是必填项")
		return
	}

	// 先确认门和用户都存在
	doorService := c.Container.GetService("door").(services.InterfaceDoorService)
	if _, err := doorService.GetDoorByID(doorID); err != nil {
		response.Fail(c.Ctx, code.CodeDoorNotFound)
		return
	}
	userService := c.Container.GetService("user").(services.InterfaceUserService)
	if _, err := userService.GetUserByID(req.UserID); err != nil {
		response.Fail(c.Ctx, code.CodeUserNotFound)
		return
	}

	accessService := c.Container.GetService("access").(services.InterfaceAccessService)
	grant, err := accessService.GrantAccess(req.UserID, doorID)
	if err != nil {
		response.Fail(c.Ctx, code.CodeDatabase)
		return
	}

	response.Success(c.Ctx, grant)
}

// 9. RevokeDoorAccess 撤销用户门的控制权限（管理员）
// @Summary 撤销门访问权限
// @Tags door
// @Produce json
// @Security BearerAuth
// @Param id path int true "门ID"
// @Param user_id path int true "用户ID"
// @Success 200 {object} response.Response
// @Router /doors/{id}/access/{user_id} [delete]
func (c *DoorController) RevokeDoorAccess() {
	doorID, ok := c.pathID()
	if !ok {
		return
	}

	userID, err := strconv.Atoi(c.Ctx.Param("user_id"))
	if err != nil || userID <= 0 {
		response.ParamError(c.Ctx, "无效的用户ID")
		return
	}

	accessService := c.Container.GetService("access").(services.InterfaceAccessService)
	if err := accessService.RevokeAccess(uint(userID), doorID); err != nil {
		response.Fail(c.Ctx, code.CodeDatabase)
		return
	}

	response.Success(c.Ctx, gin.H{"revoked": userID})
}

// pathID 解析路径中的门ID
func (c *DoorController) pathID() (uint, bool) {
	id, err := strconv.Atoi(c.Ctx.Param("id"))
	if err != nil || id <= 0 {
		response.ParamError(c.Ctx, "无效的门ID")
		return 0, false
	}
	return uint(id), true
}
