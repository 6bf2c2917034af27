package services

import (
	"errors"
	"sync"
	"time"

	"github.com/navitadamayantisyarif/pbl311-sub000/config"
	"github.com/navitadamayantisyarif/pbl311-sub000/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrDoorNotFound 门设备不存在
	ErrDoorNotFound = errors.New("door not found")
	// ErrDoorBusy 在等待窗口内未能获得该门的独占事务
	ErrDoorBusy = errors.New("door is busy")
)

// InterfaceDoorService defines the door device service interface
type InterfaceDoorService interface {
	GetAllDoors() ([]models.Door, error)
	GetDoorByID(id uint) (*models.Door, error)
	CreateDoor(door *models.Door) error
	UpdateDoor(id uint, updates map[string]interface{}) (*models.Door, error)
	DeleteDoor(id uint) error
	TransactionalUpdate(doorID uint, wait time.Duration, mutate func(tx *gorm.DB, door *models.Door) error) (*models.Door, error)
}

// doorLockRegistry 为每个门维护一把进程内互斥锁。
// 数据库行锁保证提交原子性，这把锁保证获取超时是有界的。
type doorLockRegistry struct {
	mu    sync.Mutex
	locks map[uint]chan struct{}
}

func newDoorLockRegistry() *doorLockRegistry {
	return &doorLockRegistry{locks: make(map[uint]chan struct{})}
}

func (r *doorLockRegistry) slot(doorID uint) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.locks[doorID]
	if !ok {
		ch = make(chan struct{}, 1)
		r.locks[doorID] = ch
	}
	return ch
}

// acquire 在wait时间内尝试获得doorID的独占权，超时返回false
func (r *doorLockRegistry) acquire(doorID uint, wait time.Duration) bool {
	ch := r.slot(doorID)
	select {
	case ch <- struct{}{}:
		return true
	default:
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

func (r *doorLockRegistry) release(doorID uint) {
	<-r.slot(doorID)
}

// DoorService 提供门设备相关的服务
type DoorService struct {
	DB     *gorm.DB
	Config *config.Config
	locks  *doorLockRegistry
}

// NewDoorService 创建一个新的门设备服务
func NewDoorService(db *gorm.DB, cfg *config.Config) InterfaceDoorService {
	return &DoorService{
		DB:     db,
		Config: cfg,
		locks:  newDoorLockRegistry(),
	}
}

// 1 GetAllDoors 获取所有门设备列表
func (s *DoorService) GetAllDoors() ([]models.Door, error) {
	var doors []models.Door
	if err := s.DB.Order("id").Find(&doors).Error; err != nil {
		return nil, err
	}

	return doors, nil
}

// 2 GetDoorByID 根据ID获取门设备
func (s *DoorService) GetDoorByID(id uint) (*models.Door, error) {
	var door models.Door
	if err := s.DB.First(&door, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoorNotFound
		}
		return nil, err
	}

	return &door, nil
}

// 3 CreateDoor 创建新门设备
func (s *DoorService) CreateDoor(door *models.Door) error {
	if door.LastUpdate.IsZero() {
		door.LastUpdate = time.Now()
	}
	return s.DB.Create(door).Error
}

// 4 UpdateDoor 更新门设备信息（管理维护用，不走控制管道）
func (s *DoorService) UpdateDoor(id uint, updates map[string]interface{}) (*models.Door, error) {
	door, err := s.GetDoorByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(door).Updates(updates).Error; err != nil {
		return nil, err
	}

	// 重新获取更新后的门设备信息
	return s.GetDoorByID(id)
}

// 5 DeleteDoor 删除门设备
func (s *DoorService) DeleteDoor(id uint) error {
	door, err := s.GetDoorByID(id)
	if err != nil {
		return err
	}

	return s.DB.Delete(door).Error
}

// 6 TransactionalUpdate 在独占事务内对单个门执行读-改-写。
// 进程内按门串行化，超过wait仍未获得锁返回ErrDoorBusy；
// 事务内用 SELECT ... FOR UPDATE 重读行，mutate 对同一事务句柄追加
// 关联写入（如门禁日志），保证两表写入同时提交或同时回滚。
func (s *DoorService) TransactionalUpdate(doorID uint, wait time.Duration, mutate func(tx *gorm.DB, door *models.Door) error) (*models.Door, error) {
	if !s.locks.acquire(doorID, wait) {
		return nil, ErrDoorBusy
	}
	defer s.locks.release(doorID)

	var door models.Door
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		read := tx
		// sqlite不支持SELECT ... FOR UPDATE，事务本身已是串行的
		if tx.Dialector.Name() != "sqlite" {
			read = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := read.First(&door, doorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDoorNotFound
			}
			return err
		}

		if err := mutate(tx, &door); err != nil {
			return err
		}

		return tx.Save(&door).Error
	})
	if err != nil {
		return nil, err
	}

	return &door, nil
}
