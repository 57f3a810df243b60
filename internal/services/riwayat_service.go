package services

import (
	"time"

	"sinkrona/internal/models"

	"gorm.io/gorm"
)

// RiwayatService 审计日志查询服务
// 只读：日志由AuditService写入，应用层从不修改或删除
type RiwayatService struct {
	db *gorm.DB
}

// RiwayatFilter 日志筛选条件
type RiwayatFilter struct {
	Aksi      string
	Tabel     string
	UserID    uint
	StartDate *time.Time
	EndDate   *time.Time
	Sort      string
	Order     string
}

// RiwayatStats 日志统计信息
type RiwayatStats struct {
	TotalActivities  int64            `json:"totalActivities"`
	ByAksi           map[string]int64 `json:"byAksi"`
	ByTabel          map[string]int64 `json:"byTabel"`
	RecentActivities []DailyCount     `json:"recentActivities"`
}

// DailyCount 按天统计
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

func NewRiwayatService(db *gorm.DB) *RiwayatService {
	return &RiwayatService{db: db}
}

var riwayatSortColumns = map[string]bool{
	"created_at": true,
	"aksi":       true,
	"tabel":      true,
}

func (s *RiwayatService) applyFilter(filter RiwayatFilter) *gorm.DB {
	query := s.db.Model(&models.Riwayat{})

	if filter.Aksi != "" {
		query = query.Where("aksi = ?", filter.Aksi)
	}
	if filter.Tabel != "" {
		query = query.Where("tabel = ?", filter.Tabel)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		// 结束日期含当天
		query = query.Where("created_at <= ?", filter.EndDate.Add(24*time.Hour-time.Second))
	}

	return query
}

// GetWithFiltersAndPage 组合筛选分页查询
func (s *RiwayatService) GetWithFiltersAndPage(filter RiwayatFilter, page, pageSize int) ([]*models.Riwayat, int64, error) {
	query := s.applyFilter(filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var riwayat []*models.Riwayat
	err := query.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id_user", "nama_lengkap", "username", "role")
	}).
		Order(orderClause(filter.Sort, filter.Order, riwayatSortColumns)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&riwayat).Error
	return riwayat, total, err
}

// GetByID 获取单条日志
func (s *RiwayatService) GetByID(id uint) (*models.Riwayat, error) {
	var riwayat models.Riwayat
	err := s.db.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id_user", "nama_lengkap", "username", "role")
	}).First(&riwayat, "id_riwayat = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &riwayat, nil
}

// GetByAsetID 指定资产的变更历史
func (s *RiwayatService) GetByAsetID(asetID uint, page, pageSize int) ([]*models.Riwayat, int64, error) {
	query := s.db.Model(&models.Riwayat{}).
		Where("tabel = ? AND id_referensi = ?", "aset", asetID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var riwayat []*models.Riwayat
	err := query.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id_user", "nama_lengkap", "username", "role")
	}).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&riwayat).Error
	return riwayat, total, err
}

// GetByUser 指定用户的操作历史
func (s *RiwayatService) GetByUser(userID uint, page, pageSize int) ([]*models.Riwayat, int64, error) {
	query := s.db.Model(&models.Riwayat{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var riwayat []*models.Riwayat
	err := query.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id_user", "nama_lengkap", "username", "role")
	}).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&riwayat).Error
	return riwayat, total, err
}

// GetStats 日志统计，含最近7天的按日序列
func (s *RiwayatService) GetStats(startDate, endDate *time.Time) (*RiwayatStats, error) {
	stats := &RiwayatStats{
		ByAksi:  make(map[string]int64),
		ByTabel: make(map[string]int64),
	}

	filter := RiwayatFilter{StartDate: startDate, EndDate: endDate}

	if err := s.applyFilter(filter).Count(&stats.TotalActivities).Error; err != nil {
		return nil, err
	}

	var byAksi []struct {
		Aksi  string
		Count int64
	}
	if err := s.applyFilter(filter).Select("aksi, COUNT(*) as count").Group("aksi").Scan(&byAksi).Error; err != nil {
		return nil, err
	}
	for _, item := range byAksi {
		stats.ByAksi[item.Aksi] = item.Count
	}

	var byTabel []struct {
		Tabel string
		Count int64
	}
	if err := s.applyFilter(filter).Select("tabel, COUNT(*) as count").Group("tabel").Scan(&byTabel).Error; err != nil {
		return nil, err
	}
	for _, item := range byTabel {
		stats.ByTabel[item.Tabel] = item.Count
	}

	sevenDaysAgo := time.Now().AddDate(0, 0, -7)
	var recent []DailyCount
	err := s.db.Model(&models.Riwayat{}).
		Where("created_at >= ?", sevenDaysAgo).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&recent).Error
	if err != nil {
		return nil, err
	}
	stats.RecentActivities = recent

	return stats, nil
}
