package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/navitadamayantisyarif/pbl311-sub000/config"
	"github.com/navitadamayantisyarif/pbl311-sub000/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 预先生成的bcrypt哈希（明文: secret123），种子数据避免重复计算
const seededPasswordHash = "$2a$10$bowjUTdu8YHp3SyM9AclHO7IUuFOsfxy2YK326vvdGuThs4FCON/C"

// setupTestDB 建立内存sqlite库并迁移全部模型。
// 单连接保证goroutine间的数据库访问串行，内存库也不会被提前释放。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Door{},
		&models.AccessGrant{},
		&models.AccessLog{},
		&models.Notification{},
	))

	return db
}

func testConfig() *config.Config {
	return &config.Config{DoorLockWaitSeconds: 5}
}

func seedUser(t *testing.T, db *gorm.DB, name string, role models.UserRole, pushToken string) *models.User {
	t.Helper()

	user := models.User{
		Name:      name,
		Email:     name + "@example.com",
		Password:  seededPasswordHash,
		Role:      role,
		PushToken: pushToken,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedDoor(t *testing.T, db *gorm.DB, name string, battery int, locked bool) *models.Door {
	t.Helper()

	door := models.Door{
		Name:         name,
		Location:     "Lantai 1",
		Locked:       locked,
		BatteryLevel: battery,
		WifiStrength: models.WifiStrengthGood,
		LastUpdate:   time.Now(),
	}
	require.NoError(t, db.Create(&door).Error)
	// gorm因default标签在插入时跳过零值（locked=false、battery=0），用map更新强制写入
	require.NoError(t, db.Model(&door).Updates(map[string]interface{}{
		"locked":        locked,
		"battery_level": battery,
	}).Error)
	return &door
}

func seedGrant(t *testing.T, db *gorm.DB, userID, doorID uint) {
	t.Helper()

	require.NoError(t, db.Create(&models.AccessGrant{
		UserID:    userID,
		DoorID:    doorID,
		GrantedAt: time.Now(),
	}).Error)
}

var errDeliveryFailed = errors.New("push delivery failed")

// fakePushSender 记录每次投递，可按令牌注入失败
type fakePushSender struct {
	mu      sync.Mutex
	sent    [][]string
	failFor map[string]bool
}

func (f *fakePushSender) SendToTokens(title, body string, tokens []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, tokens)
	for _, token := range tokens {
		if f.failFor[token] {
			return errDeliveryFailed
		}
	}
	return nil
}

func (f *fakePushSender) sentTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []string
	for _, batch := range f.sent {
		all = append(all, batch...)
	}
	return all
}

// recordingNotifier 记录控制管道触发的扇出调用
type recordingNotifier struct {
	calls chan uint
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{calls: make(chan uint, 16)}
}

func (r *recordingNotifier) NotifyDoorStateChange(door *models.Door, action models.DoorAction, actorUserID uint) {
	r.calls <- door.ID
}

func (r *recordingNotifier) GetUserNotifications(userID uint, page models.PaginationQuery) ([]models.Notification, models.PaginationResult, error) {
	return nil, models.PaginationResult{}, nil
}

func (r *recordingNotifier) MarkRead(userID, notificationID uint) error {
	return nil
}

// waitForCall 等待一次扇出调用，控制事务提交后扇出是异步的
func (r *recordingNotifier) waitForCall(t *testing.T) uint {
	t.Helper()

	select {
	case doorID := <-r.calls:
		return doorID
	case <-time.After(2 * time.Second):
		t.Fatal("通知扇出未被触发")
		return 0
	}
}
