package services

import (
	"fmt"
	"time"

	"github.com/navitadamayantisyarif/pbl311-sub000/config"
	"github.com/navitadamayantisyarif/pbl311-sub000/models"

	"gorm.io/gorm"
)

// InterfaceNotificationService defines the notification fanout interface
type InterfaceNotificationService interface {
	NotifyDoorStateChange(door *models.Door, action models.DoorAction, actorUserID uint)
	GetUserNotifications(userID uint, page models.PaginationQuery) ([]models.Notification, models.PaginationResult, error)
	MarkRead(userID, notificationID uint) error
}

// NotificationService 提供状态变更通知的扇出服务
type NotificationService struct {
	DB         *gorm.DB
	Config     *config.Config
	Access     InterfaceAccessService
	PushSender InterfacePushSender   // 外部推送边界，可为nil
	Redis      InterfaceRedisService // 门状态缓存失效，可为nil
}

// NewNotificationService 创建一个新的通知服务
func NewNotificationService(db *gorm.DB, cfg *config.Config, access InterfaceAccessService, pushSender InterfacePushSender, redisService InterfaceRedisService) InterfaceNotificationService {
	return &NotificationService{
		DB:         db,
		Config:     cfg,
		Access:     access,
		PushSender: pushSender,
		Redis:      redisService,
	}
}

// 1 NotifyDoorStateChange 向所有对该门有授权的用户扇出状态变更通知，
// 操作者本人也会收到。整个过程是尽力而为的：应用内通知行对每个
// 接收者必定创建（失败仅记日志），推送投递失败不影响其他接收者，
// 更不会影响已提交的控制事务。调用方负责在事务提交后异步调用。
func (s *NotificationService) NotifyDoorStateChange(door *models.Door, action models.DoorAction, actorUserID uint) {
	userIDs, err := s.Access.ListUserIDsWithAccess(door.ID)
	if err != nil {
		config.Error("扇出失败，无法解析门%d的授权用户: %v", door.ID, err)
		return
	}

	verb := "unlocked"
	if action == models.DoorActionLock {
		verb = "locked"
	}
	title := "Door " + verb
	message := fmt.Sprintf("%s was %s", door.Name, verb)

	for _, userID := range userIDs {
		notification := models.Notification{
			UserID:    userID,
			Type:      models.NotificationTypeDoorState,
			Title:     title,
			Message:   message,
			CreatedAt: time.Now(),
		}
		if err := s.DB.Create(&notification).Error; err != nil {
			config.Error("创建应用内通知失败 user=%d door=%d: %v", userID, door.ID, err)
		}

		if s.Redis != nil {
			if err := s.Redis.InvalidateDoorStatus(userID); err != nil {
				config.Warning("门状态缓存失效失败 user=%d: %v", userID, err)
			}
		}

		if s.PushSender == nil {
			continue
		}
		token := s.pushToken(userID)
		if token == "" {
			continue
		}
		if err := s.PushSender.SendToTokens(title, message, []string{token}); err != nil {
			// 推送失败只记日志，应用内通知列表才是权威记录
			config.Warning("推送投递失败 user=%d door=%d: %v", userID, door.ID, err)
		}
	}
}

// 2 GetUserNotifications 获取用户的通知列表，未读在前、新的在前
func (s *NotificationService) GetUserNotifications(userID uint, page models.PaginationQuery) ([]models.Notification, models.PaginationResult, error) {
	page.Normalize()

	query := s.DB.Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, models.PaginationResult{}, err
	}

	var notifications []models.Notification
	if err := query.
		Order("`read` ASC, created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&notifications).Error; err != nil {
		return nil, models.PaginationResult{}, err
	}

	return notifications, models.NewPaginationResult(total, page.Limit, page.Offset), nil
}

// 3 MarkRead 将通知标记为已读，只能操作自己的通知
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	result := s.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// pushToken 查询用户的推送令牌
func (s *NotificationService) pushToken(userID uint) string {
	var user models.User
	if err := s.DB.Select("push_token").First(&user, userID).Error; err != nil {
		return ""
	}
	return user.PushToken
}
