package services

import (
	"errors"
	"time"

	"github.com/navitadamayantisyarif/pbl311-sub000/config"
	"github.com/navitadamayantisyarif/pbl311-sub000/models"

	"gorm.io/gorm"
)

// InterfaceAccessService defines the access registry interface
type InterfaceAccessService interface {
	HasAccess(userID, doorID uint) bool
	ListAccessibleDoors(userID uint, role models.UserRole) ([]models.Door, error)
	ListUserIDsWithAccess(doorID uint) ([]uint, error)
	GrantAccess(userID, doorID uint) (*models.AccessGrant, error)
	RevokeAccess(userID, doorID uint) error
}

// AccessService 提供门禁授权相关的服务
type AccessService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAccessService 创建一个新的授权服务
func NewAccessService(db *gorm.DB, cfg *config.Config) InterfaceAccessService {
	return &AccessService{
		DB:     db,
		Config: cfg,
	}
}

// 1 HasAccess 判断用户对指定门是否有授权记录。
// 没有记录是正常状态而不是错误，管理员控制门同样需要显式授权。
func (s *AccessService) HasAccess(userID, doorID uint) bool {
	var count int64
	if err := s.DB.Model(&models.AccessGrant{}).
		Where("user_id = ? AND door_id = ?", userID, doorID).
		Count(&count).Error; err != nil {
		return false
	}

	return count > 0
}

// 2 ListAccessibleDoors 获取用户可见的门列表。
// 管理员在读取路径上可以看到所有门，普通用户只能看到已授权的门。
func (s *AccessService) ListAccessibleDoors(userID uint, role models.UserRole) ([]models.Door, error) {
	var doors []models.Door

	if role == models.UserRoleAdmin {
		if err := s.DB.Order("id").Find(&doors).Error; err != nil {
			return nil, err
		}
		return doors, nil
	}

	if err := s.DB.
		Joins("JOIN access_grants ON access_grants.door_id = doors.id").
		Where("access_grants.user_id = ?", userID).
		Order("doors.id").
		Find(&doors).Error; err != nil {
		return nil, err
	}

	return doors, nil
}

// 3 ListUserIDsWithAccess 获取对指定门有授权的全部用户ID（通知扇出用）
func (s *AccessService) ListUserIDsWithAccess(doorID uint) ([]uint, error) {
	var userIDs []uint
	if err := s.DB.Model(&models.AccessGrant{}).
		Where("door_id = ?", doorID).
		Order("user_id").
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}

	return userIDs, nil
}

// 4 GrantAccess 为用户授予门的控制权限
func (s *AccessService) GrantAccess(userID, doorID uint) (*models.AccessGrant, error) {
	// 已存在的授权直接返回，(user, door)对是唯一的
	var existing models.AccessGrant
	err := s.DB.Where("user_id = ? AND door_id = ?", userID, doorID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	grant := models.AccessGrant{
		UserID:    userID,
		DoorID:    doorID,
		GrantedAt: time.Now(),
	}
	if err := s.DB.Create(&grant).Error; err != nil {
		return nil, err
	}

	return &grant, nil
}

// 5 RevokeAccess 撤销用户对门的控制权限
func (s *AccessService) RevokeAccess(userID, doorID uint) error {
	return s.DB.
		Where("user_id = ? AND door_id = ?", userID, doorID).
		Delete(&models.AccessGrant{}).Error
}
