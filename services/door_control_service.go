package services

import (
	"errors"
	"strings"
	"time"

	"github.com/navitadamayantisyarif/pbl311-sub000/config"
	"github.com/navitadamayantisyarif/pbl311-sub000/internal/error/code"
	"github.com/navitadamayantisyarif/pbl311-sub000/models"

	"gorm.io/gorm"
)

// Principal 已认证的请求主体，由认证中间件从令牌解析注入
type Principal struct {
	UserID uint
	Role   models.UserRole
}

// ControlResult 控制成功的响应数据
type ControlResult struct {
	DoorID     uint              `json:"door_id"`
	Action     models.DoorAction `json:"action"`
	Timestamp  time.Time         `json:"timestamp"`
	DoorStatus models.DoorStatus `json:"door_status"`
}

// ControlError 控制失败，携带稳定的业务错误码供客户端分支
type ControlError struct {
	Code       string
	Message    string
	RetryAfter int // 秒，0表示不可重试
}

func (e *ControlError) Error() string {
	return e.Code + ": " + e.Message
}

func newControlError(errorCode string) *ControlError {
	return &ControlError{
		Code:    errorCode,
		Message: code.GetMessage(errorCode),
	}
}

// 动作同义词映射。移动端历史版本混用印尼语和英语的开关门说法，
// 这里统一归一化成两个规范动作，其余一律拒绝。
var actionSynonyms = map[string]models.DoorAction{
	"unlock": models.DoorActionUnlock,
	"open":   models.DoorActionUnlock,
	"buka":   models.DoorActionUnlock,
	"lock":   models.DoorActionLock,
	"close":  models.DoorActionLock,
	"kunci":  models.DoorActionLock,
}

// NormalizeAction 将原始动作字符串归一化为规范动作
func NormalizeAction(raw string) (models.DoorAction, bool) {
	action, ok := actionSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	return action, ok
}

// InterfaceDoorControlService defines the door control pipeline interface
type InterfaceDoorControlService interface {
	ControlDoor(principal Principal, doorID uint, rawAction string, method models.AccessMethod, ipAddress string) (*ControlResult, *ControlError)
}

// DoorControlService 门禁控制管道：校验、授权、独占状态变更、
// 审计日志、通知扇出的编排者
type DoorControlService struct {
	DB            *gorm.DB
	Config        *config.Config
	Access        InterfaceAccessService
	Doors         InterfaceDoorService
	Logs          InterfaceAccessLogService
	Notifications InterfaceNotificationService
}

// NewDoorControlService 创建一个新的门禁控制服务
func NewDoorControlService(
	db *gorm.DB,
	cfg *config.Config,
	access InterfaceAccessService,
	doors InterfaceDoorService,
	logs InterfaceAccessLogService,
	notifications InterfaceNotificationService,
) InterfaceDoorControlService {
	return &DoorControlService{
		DB:            db,
		Config:        cfg,
		Access:        access,
		Doors:         doors,
		Logs:          logs,
		Notifications: notifications,
	}
}

// ControlDoor 执行一次门禁控制请求。
//
// 校验阶段的失败（动作非法、无授权、门不存在、门离线）是同步终态，
// 不产生任何状态变更，也不写审计日志。事务阶段门状态变更与审计日志
// 在同一数据库事务中提交，失败则整体回滚，调用方可安全重试。
// 重复下发同一动作不会短路：照常写新日志、照常扇出。
func (s *DoorControlService) ControlDoor(principal Principal, doorID uint, rawAction string, method models.AccessMethod, ipAddress string) (*ControlResult, *ControlError) {
	// 1. 动作归一化
	action, ok := NormalizeAction(rawAction)
	if !ok {
		return nil, newControlError(code.CodeInvalidAction)
	}

	// 2. 授权检查。管理员控制门同样需要显式授权记录，
	// 未授权请求不写审计日志（请求者不是该门的合法操作者）
	if !s.Access.HasAccess(principal.UserID, doorID) {
		return nil, newControlError(code.CodeAccessDenied)
	}

	// 3. 加载门设备
	door, err := s.Doors.GetDoorByID(doorID)
	if err != nil {
		if errors.Is(err, ErrDoorNotFound) {
			return nil, newControlError(code.CodeDoorNotFound)
		}
		config.Error("读取门%d失败: %v", doorID, err)
		return s.hardwareError()
	}

	// 4. 离线保护：电量为0的门拒绝一切控制
	if door.IsOffline() {
		return nil, newControlError(code.CodeDoorOffline)
	}

	// 5. 独占事务：状态变更 + 审计日志，同时提交或同时回滚
	now := time.Now()
	updated, err := s.Doors.TransactionalUpdate(doorID, s.Config.DoorLockWait(), func(tx *gorm.DB, d *models.Door) error {
		d.Locked = action == models.DoorActionLock
		d.LastUpdate = now

		_, err := s.Logs.AppendTx(tx, AccessLogDraft{
			UserID:    principal.UserID,
			DoorID:    doorID,
			Action:    action,
			Success:   true,
			Method:    method,
			IPAddress: ipAddress,
			Timestamp: now,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, ErrDoorBusy) {
			ctrlErr := newControlError(code.CodeLockTimeout)
			ctrlErr.RetryAfter = s.Config.DoorLockWaitSeconds
			return nil, ctrlErr
		}
		if errors.Is(err, ErrDoorNotFound) {
			return nil, newControlError(code.CodeDoorNotFound)
		}
		config.Error("门%d控制事务失败，已回滚: %v", doorID, err)
		return s.hardwareError()
	}

	// 6. 提交后异步扇出通知，结果不影响本次响应，
	// 请求取消也不会中断投递
	go s.Notifications.NotifyDoorStateChange(updated, action, principal.UserID)

	// 7. 响应
	return &ControlResult{
		DoorID:    updated.ID,
		Action:    action,
		Timestamp: now,
		DoorStatus: models.DoorStatus{
			Locked:     updated.Locked,
			LastUpdate: updated.LastUpdate,
		},
	}, nil
}

func (s *DoorControlService) hardwareError() (*ControlResult, *ControlError) {
	ctrlErr := newControlError(code.CodeHardwareError)
	ctrlErr.RetryAfter = 5
	return nil, ctrlErr
}
