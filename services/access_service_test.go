package services

import (
	"testing"

	"github.com/navitadamayantisyarif/pbl311-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasAccess(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAccessService(db, testConfig())
	user := seedUser(t, db, "navita", models.UserRoleUser, "")
	door := seedDoor(t, db, "Pintu Depan", 80, false)

	assert.False(t, svc.HasAccess(user.ID, door.ID))

	seedGrant(t, db, user.ID, door.ID)
	assert.True(t, svc.HasAccess(user.ID, door.ID))

	// 授权不跨门生效
	assert.False(t, svc.HasAccess(user.ID, door.ID+1))
}

// 管理员在读取路径上看到所有门，普通用户只看到授权的门
func TestListAccessibleDoors(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAccessService(db, testConfig())
	admin := seedUser(t, db, "admin", models.UserRoleAdmin, "")
	user := seedUser(t, db, "navita", models.UserRoleUser, "")
	door1 := seedDoor(t, db, "Pintu Depan", 80, false)
	door2 := seedDoor(t, db, "Pintu Belakang", 80, true)
	seedDoor(t, db, "Pintu Gudang", 80, true)
	seedGrant(t, db, user.ID, door1.ID)
	seedGrant(t, db, user.ID, door2.ID)

	adminDoors, err := svc.ListAccessibleDoors(admin.ID, admin.Role)
	require.NoError(t, err)
	assert.Len(t, adminDoors, 3)

	userDoors, err := svc.ListAccessibleDoors(user.ID, user.Role)
	require.NoError(t, err)
	require.Len(t, userDoors, 2)
	assert.Equal(t, door1.ID, userDoors[0].ID)
	assert.Equal(t, door2.ID, userDoors[1].ID)
}

func TestListUserIDsWithAccess(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAccessService(db, testConfig())
	user1 := seedUser(t, db, "navita", models.UserRoleUser, "")
	user2 := seedUser(t, db, "dimas", models.UserRoleUser, "")
	seedUser(t, db, "rina", models.UserRoleUser, "")
	door := seedDoor(t, db, "Pintu Depan", 80, false)
	seedGrant(t, db, user2.ID, door.ID)
	seedGrant(t, db, user1.ID, door.ID)

	userIDs, err := svc.ListUserIDsWithAccess(door.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{user1.ID, user2.ID}, userIDs)
}

func TestGrantAccessIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAccessService(db, testConfig())
	user := seedUser(t, db, "navita", models.UserRoleUser, "")
	door := seedDoor(t, db, "Pintu Depan", 80, false)

	first, err := svc.GrantAccess(user.ID, door.ID)
	require.NoError(t, err)

	// 重复授权返回已有记录，不产生新行
	second, err := svc.GrantAccess(user.ID, door.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.AccessGrant{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRevokeAccess(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAccessService(db, testConfig())
	user := seedUser(t, db, "navita", models.UserRoleUser, "")
	door := seedDoor(t, db, "Pintu Depan", 80, false)
	seedGrant(t, db, user.ID, door.ID)

	require.NoError(t, svc.RevokeAccess(user.ID, door.ID))
	assert.False(t, svc.HasAccess(user.ID, door.ID))

	// 撤销不存在的授权不报错
	require.NoError(t, svc.RevokeAccess(user.ID, door.ID))
}
