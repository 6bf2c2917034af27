package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/navitadamayantisyarif/pbl311-sub000/internal/error/code"
	"github.com/navitadamayantisyarif/pbl311-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newControlFixture 组装一套完整的控制管道，扇出用记录桩代替
func newControlFixture(t *testing.T) (*gorm.DB, InterfaceDoorControlService, *recordingNotifier) {
	t.Helper()

	db := setupTestDB(t)
	cfg := testConfig()
	access := NewAccessService(db, cfg)
	doors := NewDoorService(db, cfg)
	logs := NewAccessLogService(db, cfg)
	notifier := newRecordingNotifier()

	control := NewDoorControlService(db, cfg, access, doors, logs, notifier)
	return db, control, notifier
}

func principalOf(user *models.User) Principal {
	return Principal{UserID: user.ID, Role: user.Role}
}

func countAuditRows(t *testing.T, db *gorm.DB, doorID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.AccessLog{}).Where("door_id = ?", doorID).Count(&count).Error)
	return count
}

func TestNormalizeAction(t *testing.T) {
	tests := []struct {
		raw    string
		want   models.DoorAction
		wantOK bool
	}{
		{"lock", models.DoorActionLock, true},
		{"unlock", models.DoorActionUnlock, true},
		{"LOCK", models.DoorActionLock, true},
		{"  Unlock  ", models.DoorActionUnlock, true},
		{"open", models.DoorActionUnlock, true},
		{"close", models.DoorActionLock, true},
		{"buka", models.DoorActionUnlock, true},
		{"kunci", models.DoorActionLock, true},
		{"KUNCI", models.DoorActionLock, true},
		{"toggle", "", false},
		{"", "", false},
		{"lock the door", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeAction(tt.raw)
		assert.Equal(t, tt.wantOK, ok, "raw=%q", tt.raw)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
		}
	}
}

// 场景A: 授权用户锁门成功，状态翻转并产生一条成功日志
func TestControlDoorSuccess(t *testing.T) {
	db, control, notifier := newControlFixture(t)
	user := seedUser(t, db, "navita", models.UserRoleUser, "")
	door := seedDoor(t, db, "Pintu Depan", 80, false)
	seedGrant(t, db, user.ID, door.ID)

	result, ctrlErr := control.ControlDoor(principalOf(user), door.ID, "lock", models.AccessMethodApp, "10.0.0.1")
	require.Nil(t, ctrlErr)
	require.NotNil(t, result)

	assert.Equal(t, door.ID, result.DoorID)
	assert.Equal(t, models.DoorActionLock, result.Action)
	assert.True(t, result.DoorStatus.Locked)

	var updated models.Door
	require.NoError(t, db.First(&updated, door.ID).Error)
	assert.True(t, updated.Locked)

	var entry models.AccessLog
	require.NoError(t, db.Where("door_id = ?", door.ID).First(&entry).Error)
	assert.Equal(t, user.ID, entry.UserID)
	assert.Equal(t, models.DoorActionLock, entry.Action)
	assert.True(t, entry.Success)
	assert.Equal(t, "10.0.0.1", entry.IPAddress)
	assert.Equal(t, models.AccessMethodApp, entry.Method)

	assert.Equal(t, door.ID, notifier.waitForCall(t))
}

func TestControlDoorInvalidAction(t *testing.T) {
	db, control, _ := newControlFixture(t)
	user := seedUser(t, db, "navita", models.UserRoleUser, "")
	door := seedDoor(t, db, "Pintu Depan", 80, false)
	seedGrant(t, db, user.ID, door.ID)

	_, ctrlErr := control.ControlDoor(principalOf(user), door.ID, "toggle", models.AccessMethodApp, "")
	require.NotNil(t, ctrlErr)
	assert.Equal(t, code.CodeInvalidAction, ctrlErr.Code)

	// 无状态变更、无审计日志
	var updated models.Door
	require.NoError(t, db.First(&updated, door.ID).Error)
	assert.False(t, updated.Locked)
	assert.EqualValues(t, 0, countAuditRows(t, db, door.ID))
}

// 场景B / P3: 无授权记录的请求被拒绝且不留任何痕迹
func TestControlDoorAccessDenied(t *testing.T) {
	db, control, _ := newControlFixture(t)
	user := seedUser(t, db, "navita", models.UserRoleUser, "")
	door := seedDoor(t, db, "Pintu Belakang", 80, true)

	_, ctrlErr := control.ControlDoor(principalOf(user), door.ID, "unlock", models.AccessMethodApp, "")
	require.NotNil(t, ctrlErr)
	assert.Equal(t, code.CodeAccessDenied, ctrlErr.Code)

	var updated models.Door
	require.NoError(t, db.First(&updated, door.ID).Error)
	assert.True(t, updated.Locked)
	assert.EqualValues(t, 0, countAuditRows(t, db, door.ID))
}

// 管理员没有授权记录时同样不能控制门（读路径的特权不延伸到控制路径）
func TestControlDoorAdminStillNeedsGrant(t *testing.T) {
	db, control, _ := newControlFixture(t)
	admin := seedUser(t, db, "admin", models.UserRoleAdmin, "")
	door := seedDoor(t, db, "Pintu Depan", 80, true)

	_, ctrlErr := control.ControlDoor(principalOf(admin), door.ID, "unlock", models.AccessMethodApp, "")
	require.NotNil(t, ctrlErr)
	assert.Equal(t, code.CodeAccessDenied, ctrlErr.Code)
}

func TestControlDoorNotFound(t *testing.T) {
	db, control, _ := newControlFixture(t)
	user := seedUser(t, db, "navita", models.UserRoleUser, "")
	door := seedDoor(t, db, "Pintu Depan", 80, false)
	seedGrant(t, db, user.ID, door.ID+100)

	_, ctrlErr := control.ControlDoor(principalOf(user), door.ID+100, "lock", models.AccessMethodApp, "")
	require.NotNil(t, ctrlErr)
	assert.Equal(t, code.CodeDoorNotFound, ctrlErr.Code)
}

// 场景C / P4: 电量为0的门拒绝一切控制
func TestControlDoorOffline(t *testing.T) {
	db, control, _ := newControlFixture(t)
	user := seedUser(t, db, "navita", models.UserRoleUser, "")
	door := seedDoor(t, db, "Pintu Gudang", 0, true)
	seedGrant(t, db, user.ID, door.ID)

	for _, action := range []string{"unlock", "lock"} {
		_, ctrlErr := control.ControlDoor(principalOf(user), door.ID, action, models.AccessMethodApp, "")
		require.NotNil(t, ctrlErr)
		assert.Equal(t, code.CodeDoorOffline, ctrlErr.Code)
	}

	var updated models.Door
	require.NoError(t, db.First(&updated, door.ID).Error)
	assert.True(t, updated.Locked)
	assert.EqualValues(t, 0, countAuditRows(t, db, door.ID))
}

// P5: 重复下发同一动作不短路，每次都写新日志并扇出
func TestControlDoorRepeatedActionNotShortCircuited(t *testing.T) {
	db, control, notifier := newControlFixture(t)
	user := seedUser(t, db, "navita", models.UserRoleUser, "")
	door := seedDoor(t, db, "Pintu Depan", 80, false)
	seedGrant(t, db, user.ID, door.ID)

	for i := 0; i < 2; i++ {
		result, ctrlErr := control.ControlDoor(principalOf(user), door.ID, "lock", models.AccessMethodApp, "")
		require.Nil(t, ctrlErr)
		assert.True(t, result.DoorStatus.Locked)
		notifier.waitForCall(t)
	}

	var updated models.Door
	require.NoError(t, db.First(&updated, door.ID).Error)
	assert.True(t, updated.Locked)
	assert.EqualValues(t, 2, countAuditRows(t, db, door.ID))
}

// P1: 日志追加失败时门状态变更一并回滚
type failingLogService struct {
	InterfaceAccessLogService
}

func (f *failingLogService) AppendTx(tx *gorm.DB, draft AccessLogDraft) (*models.AccessLog, error) {
	return nil, errors.New("disk full")
}

func TestControlDoorAuditFailureRollsBack(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	access := NewAccessService(db, cfg)
	doors := NewDoorService(db, cfg)
	logs := &failingLogService{NewAccessLogService(db, cfg)}
	notifier := newRecordingNotifier()
	control := NewDoorControlService(db, cfg, access, doors, logs, notifier)

	user := seedUser(t, db, "navita", models.UserRoleUser, "")
	door := seedDoor(t, db, "Pintu Depan", 80, false)
	seedGrant(t, db, user.ID, door.ID)

	_, ctrlErr := control.ControlDoor(principalOf(user), door.ID, "lock", models.AccessMethodApp, "")
	require.NotNil(t, ctrlErr)
	assert.Equal(t, code.CodeHardwareError, ctrlErr.Code)
	assert.Greater(t, ctrlErr.RetryAfter, 0)

	// 事务整体回滚：门未锁、无日志、无扇出
	var updated models.Door
	require.NoError(t, db.First(&updated, door.ID).Error)
	assert.False(t, updated.Locked)
	assert.EqualValues(t, 0, countAuditRows(t, db, door.ID))

	select {
	case <-notifier.calls:
		t.Fatal("回滚的事务不应触发扇出")
	case <-time.After(100 * time.Millisecond):
	}
}

// LockTimeout: 锁被占用时在有界等待后返回可重试错误
func TestControlDoorLockTimeout(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	cfg.DoorLockWaitSeconds = 0
	access := NewAccessService(db, cfg)
	doors := NewDoorService(db, cfg)
	logs := NewAccessLogService(db, cfg)
	notifier := newRecordingNotifier()
	control := NewDoorControlService(db, cfg, access, doors, logs, notifier)

	user := seedUser(t, db, "navita", models.UserRoleUser, "")
	door := seedDoor(t, db, "Pintu Depan", 80, false)
	seedGrant(t, db, user.ID, door.ID)

	// 直接占住该门的进程内锁
	ds := doors.(*DoorService)
	require.True(t, ds.locks.acquire(door.ID, time.Second))
	defer ds.locks.release(door.ID)

	_, ctrlErr := control.ControlDoor(principalOf(user), door.ID, "lock", models.AccessMethodApp, "")
	require.NotNil(t, ctrlErr)
	assert.Equal(t, code.CodeLockTimeout, ctrlErr.Code)

	assert.EqualValues(t, 0, countAuditRows(t, db, door.ID))
}

// 场景D / P2: 同一扇门上的并发控制被全序化，
// 最终状态与最后提交的日志一致
func TestControlDoorConcurrentSerialization(t *testing.T) {
	db, control, notifier := newControlFixture(t)
	user := seedUser(t, db, "navita", models.UserRoleUser, "")
	door := seedDoor(t, db, "Pintu Depan", 80, true)
	seedGrant(t, db, user.ID, door.ID)

	actions := []string{"unlock", "lock", "unlock", "lock", "unlock", "lock"}

	var wg sync.WaitGroup
	for _, action := range actions {
		wg.Add(1)
		go func(a string) {
			defer wg.Done()
			_, ctrlErr := control.ControlDoor(principalOf(user), door.ID, a, models.AccessMethodApp, "")
			assert.Nil(t, ctrlErr)
		}(action)
	}
	wg.Wait()

	// 每次成功控制都有扇出
	for range actions {
		notifier.waitForCall(t)
	}

	assert.EqualValues(t, len(actions), countAuditRows(t, db, door.ID))

	// 提交顺序的最后一条日志决定最终状态
	var last models.AccessLog
	require.NoError(t, db.Where("door_id = ?", door.ID).Order("id DESC").First(&last).Error)

	var updated models.Door
	require.NoError(t, db.First(&updated, door.ID).Error)
	assert.Equal(t, last.Action == models.DoorActionLock, updated.Locked)
}

// 不同门之间互不阻塞
func TestControlDoorIndependentDoors(t *testing.T) {
	db, control, notifier := newControlFixture(t)
	user := seedUser(t, db, "navita", models.UserRoleUser, "")
	door1 := seedDoor(t, db, "Pintu Depan", 80, true)
	door2 := seedDoor(t, db, "Pintu Belakang", 80, false)
	seedGrant(t, db, user.ID, door1.ID)
	seedGrant(t, db, user.ID, door2.ID)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, ctrlErr := control.ControlDoor(principalOf(user), door1.ID, "unlock", models.AccessMethodApp, "")
		assert.Nil(t, ctrlErr)
	}()
	go func() {
		defer wg.Done()
		_, ctrlErr := control.ControlDoor(principalOf(user), door2.ID, "lock", models.AccessMethodApp, "")
		assert.Nil(t, ctrlErr)
	}()
	wg.Wait()

	notifier.waitForCall(t)
	notifier.waitForCall(t)

	var d1, d2 models.Door
	require.NoError(t, db.First(&d1, door1.ID).Error)
	require.NoError(t, db.First(&d2, door2.ID).Error)
	assert.False(t, d1.Locked)
	assert.True(t, d2.Locked)
}

// P1补充: 门状态时间戳与审计日志时间戳来自同一时刻
func TestControlDoorTimestampConsistency(t *testing.T) {
	db, control, _ := newControlFixture(t)
	user := seedUser(t, db, "navita", models.UserRoleUser, "")
	door := seedDoor(t, db, "Pintu Depan", 80, false)
	seedGrant(t, db, user.ID, door.ID)

	result, ctrlErr := control.ControlDoor(principalOf(user), door.ID, "lock", models.AccessMethodApp, "")
	require.Nil(t, ctrlErr)

	var entry models.AccessLog
	require.NoError(t, db.Where("door_id = ?", door.ID).First(&entry).Error)
	assert.Equal(t, result.Timestamp.Unix(), entry.Timestamp.Unix())
	assert.Equal(t, result.DoorStatus.LastUpdate.Unix(), entry.Timestamp.Unix())
}
