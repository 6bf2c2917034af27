package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/navitadamayantisyarif/pbl311-sub000/config"
	"github.com/navitadamayantisyarif/pbl311-sub000/internal/error/response"
	"github.com/navitadamayantisyarif/pbl311-sub000/models"
	"github.com/navitadamayantisyarif/pbl311-sub000/services"
	"github.com/navitadamayantisyarif/pbl311-sub000/services/container"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupControllerTest(t *testing.T) (*gorm.DB, *container.ServiceContainer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	cfg := &config.Config{
		JWTSecretKey:        "test-secret",
		DoorLockWaitSeconds: 5,
	}
	return db, container.NewServiceContainer(db, cfg, nil)
}

// asUser 在路由前注入已认证的请求主体，跳过真实的令牌解析
func asUser(principal services.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", principal.UserID)
		c.Set("role", principal.Role)
		c.Next()
	}
}

func controlRouter(svcContainer *container.ServiceContainer, principal services.Principal) *gin.Engine {
	r := gin.New()
	r.POST("/api/door/control", asUser(principal), HandleDoorFunc(svcContainer, "controlDoor"))
	r.GET("/api/door/status", asUser(principal), HandleDoorFunc(svcContainer, "getDoorStatus"))
	return r
}

func postControl(t *testing.T, r *gin.Engine, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/door/control", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestControlDoorEndpointSuccess(t *testing.T) {
	db, svcContainer := setupControllerTest(t)

	user := models.User{Name: "navita", Email: "navita@example.com", Password: "secret123"}
	require.NoError(t, db.Create(&user).Error)
	door := models.Door{Name: "Pintu Depan", BatteryLevel: 80, Locked: false, LastUpdate: time.Now()}
	require.NoError(t, db.Create(&door).Error)
	require.NoError(t, db.Create(&models.AccessGrant{UserID: user.ID, DoorID: door.ID, GrantedAt: time.Now()}).Error)

	r := controlRouter(svcContainer, services.Principal{UserID: user.ID, Role: models.UserRoleUser})
	w, resp := postControl(t, r, gin.H{"door_id": door.ID, "action": "lock"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	var updated models.Door
	require.NoError(t, db.First(&updated, door.ID).Error)
	assert.True(t, updated.Locked)
}

func TestControlDoorEndpointErrorEnvelope(t *testing.T) {
	db, svcContainer := setupControllerTest(t)

	user := models.User{Name: "navita", Email: "navita@example.com", Password: "secret123"}
	require.NoError(t, db.Create(&user).Error)
	granted := models.Door{Name: "Pintu Depan", BatteryLevel: 80, Locked: true, LastUpdate: time.Now()}
	require.NoError(t, db.Create(&granted).Error)
	offline := models.Door{Name: "Pintu Gudang", BatteryLevel: 0, Locked: true, LastUpdate: time.Now()}
	require.NoError(t, db.Create(&offline).Error)
	// gorm因default标签在插入时跳过零值电量，用map更新强制写回0
	require.NoError(t, db.Model(&offline).Update("battery_level", 0).Error)
	require.NoError(t, db.Create(&models.AccessGrant{UserID: user.ID, DoorID: granted.ID, GrantedAt: time.Now()}).Error)
	require.NoError(t, db.Create(&models.AccessGrant{UserID: user.ID, DoorID: offline.ID, GrantedAt: time.Now()}).Error)
	forbidden := models.Door{Name: "Pintu Belakang", BatteryLevel: 80, Locked: true, LastUpdate: time.Now()}
	require.NoError(t, db.Create(&forbidden).Error)

	r := controlRouter(svcContainer, services.Principal{UserID: user.ID, Role: models.UserRoleUser})

	tests := []struct {
		name       string
		body       gin.H
		wantStatus int
		wantCode   string
	}{
		{"invalid action", gin.H{"door_id": granted.ID, "action": "toggle"}, http.StatusBadRequest, "INVALID_ACTION"},
		{"access denied", gin.H{"door_id": forbidden.ID, "action": "unlock"}, http.StatusForbidden, "ACCESS_DENIED"},
		{"door not found", gin.H{"door_id": 999, "action": "unlock"}, http.StatusForbidden, "ACCESS_DENIED"},
		{"door offline", gin.H{"door_id": offline.ID, "action": "unlock"}, http.StatusBadRequest, "DOOR_OFFLINE"},
		{"missing fields", gin.H{"action": "unlock"}, http.StatusBadRequest, "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := postControl(t, r, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

// 可重试错误的信封带retry_after并映射到503
func TestRetryableErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/busy", func(c *gin.Context) {
		response.FailWithRetry(c, "LOCK_TIMEOUT", "door is busy, try again", 5)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/busy", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "LOCK_TIMEOUT", resp.Code)
	assert.Equal(t, 5, resp.RetryAfter)
}

func TestGetDoorStatusEndpoint(t *testing.T) {
	db, svcContainer := setupControllerTest(t)

	user := models.User{Name: "navita", Email: "navita@example.com", Password: "secret123"}
	require.NoError(t, db.Create(&user).Error)
	door := models.Door{Name: "Pintu Depan", BatteryLevel: 80, Locked: true, LastUpdate: time.Now()}
	require.NoError(t, db.Create(&door).Error)
	require.NoError(t, db.Create(&models.AccessGrant{UserID: user.ID, DoorID: door.ID, GrantedAt: time.Now()}).Error)
	// 未授权的门不出现在列表中
	other := models.Door{Name: "Pintu Belakang", BatteryLevel: 80, Locked: true, LastUpdate: time.Now()}
	require.NoError(t, db.Create(&other).Error)

	r := controlRouter(svcContainer, services.Principal{UserID: user.ID, Role: models.UserRoleUser})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/door/status", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool          `json:"success"`
		Data    []models.Door `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Pintu Depan", resp.Data[0].Name)
}
