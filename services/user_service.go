package services

import (
	"errors"

	"github.com/navitadamayantisyarif/pbl311-sub000/config"
	"github.com/navitadamayantisyarif/pbl311-sub000/models"

	"gorm.io/gorm"
)

var (
	// ErrLoginFailed 邮箱或密码错误
	ErrLoginFailed = errors.New("invalid email or password")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists 邮箱已被占用
	ErrUserExists = errors.New("user already exists")
)

// InterfaceUserService defines the user service interface
type InterfaceUserService interface {
	Login(email, password string) (*models.User, error)
	GetAllUsers() ([]models.User, error)
	GetUserByID(id uint) (*models.User, error)
	CreateUser(user *models.User) error
	UpdatePushToken(userID uint, token string) error
}

// UserService 提供用户相关的服务
type UserService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewUserService 创建一个新的用户服务
func NewUserService(db *gorm.DB, cfg *config.Config) InterfaceUserService {
	return &UserService{
		DB:     db,
		Config: cfg,
	}
}

// 1 Login 校验邮箱和密码。无论邮箱不存在还是密码错误都返回同一个
// 错误，避免泄露账号是否存在。
func (s *UserService) Login(email, password string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoginFailed
		}
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, ErrLoginFailed
	}

	return &user, nil
}

// 2 GetAllUsers 获取所有用户列表
func (s *UserService) GetAllUsers() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// 3 GetUserByID 根据ID获取用户
func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

// 4 CreateUser 创建新用户
func (s *UserService) CreateUser(user *models.User) error {
	// 验证邮箱唯一性
	var count int64
	if err := s.DB.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUserExists
	}

	if user.Role == "" {
		user.Role = models.UserRoleUser
	}

	return s.DB.Create(user).Error
}

// 5 UpdatePushToken 更新用户的推送令牌（客户端注册/刷新）
func (s *UserService) UpdatePushToken(userID uint, token string) error {
	result := s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("push_token", token)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
