package services

import (
	"time"

	"github.com/navitadamayantisyarif/pbl311-sub000/config"
	"github.com/navitadamayantisyarif/pbl311-sub000/models"

	"gorm.io/gorm"
)

// AccessLogDraft 待持久化的门禁日志条目，ID和最终行由AppendTx分配
type AccessLogDraft struct {
	UserID    uint
	DoorID    uint
	Action    models.DoorAction
	Success   bool
	Method    models.AccessMethod
	IPAddress string
	Timestamp time.Time
}

// AccessLogFilter 门禁历史查询条件
type AccessLogFilter struct {
	DoorID    uint       `form:"door_id"`
	UserID    uint       `form:"user_id"`
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
}

// AccessDayStat 按天聚合的门禁统计
type AccessDayStat struct {
	Day          string `json:"day"`
	Total        int64  `json:"total"`
	SuccessCount int64  `json:"success_count"`
}

// InterfaceAccessLogService defines the audit log service interface
type InterfaceAccessLogService interface {
	AppendTx(tx *gorm.DB, draft AccessLogDraft) (*models.AccessLog, error)
	Query(filter AccessLogFilter, page models.PaginationQuery) ([]models.AccessLog, models.PaginationResult, error)
	DailyStats(days int) ([]AccessDayStat, error)
}

// AccessLogService 提供门禁日志相关的服务
type AccessLogService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAccessLogService 创建一个新的门禁日志服务
func NewAccessLogService(db *gorm.DB, cfg *config.Config) InterfaceAccessLogService {
	return &AccessLogService{
		DB:     db,
		Config: cfg,
	}
}

// 1 AppendTx 在调用方的事务句柄上追加一条门禁日志。
// 必须与门状态变更在同一事务中调用，持久化失败会让整个事务回滚，
// 保证状态变更与日志记录要么同时存在要么都不存在。
func (s *AccessLogService) AppendTx(tx *gorm.DB, draft AccessLogDraft) (*models.AccessLog, error) {
	if draft.Timestamp.IsZero() {
		draft.Timestamp = time.Now()
	}

	entry := models.AccessLog{
		UserID:    draft.UserID,
		DoorID:    draft.DoorID,
		Action:    draft.Action,
		Success:   draft.Success,
		Method:    draft.Method,
		IPAddress: draft.IPAddress,
		Timestamp: draft.Timestamp,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}

	return &entry, nil
}

// 2 Query 按条件分页查询门禁历史。
// 按时间戳倒序排列，时间相同按插入ID倒序，与提交顺序一致。
func (s *AccessLogService) Query(filter AccessLogFilter, page models.PaginationQuery) ([]models.AccessLog, models.PaginationResult, error) {
	page.Normalize()

	query := s.DB.Model(&models.AccessLog{})
	if filter.DoorID != 0 {
		query = query.Where("door_id = ?", filter.DoorID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.StartDate != nil {
		query = query.Where("timestamp >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		// 结束日期按当天23:59:59计算
		query = query.Where("timestamp < ?", filter.EndDate.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, models.PaginationResult{}, err
	}

	var logs []models.AccessLog
	if err := query.
		Preload("User").
		Preload("Door").
		Order("timestamp DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&logs).Error; err != nil {
		return nil, models.PaginationResult{}, err
	}

	return logs, models.NewPaginationResult(total, page.Limit, page.Offset), nil
}

// 3 DailyStats 按天聚合最近days天的门禁次数（仪表盘用）
func (s *AccessLogService) DailyStats(days int) ([]AccessDayStat, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)

	var stats []AccessDayStat
	if err := s.DB.Model(&models.AccessLog{}).
		Select("DATE(timestamp) AS day, COUNT(*) AS total, SUM(CASE WHEN success THEN 1 ELSE 0 END) AS success_count").
		Where("timestamp >= ?", since).
		Group("DATE(timestamp)").
		Order("day").
		Scan(&stats).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
