package services

import (
	"fmt"

	"sinkrona/internal/models"

	"gorm.io/gorm"
)

// AsetService 资产服务
type AsetService struct {
	db *gorm.DB
}

// AsetFilter 资产列表筛选条件
type AsetFilter struct {
	Search string
	Status string
	Jenis  string
	Tahun  int
	Sort   string
	Order  string
}

// AsetStats 资产统计信息
type AsetStats struct {
	TotalAset  int64            `json:"totalAset"`
	TotalLuas  float64          `json:"totalLuas"`
	TotalNilai float64          `json:"totalNilai"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByJenis    map[string]int64 `json:"byJenis"`
}

func NewAsetService(db *gorm.DB) *AsetService {
	return &AsetService{db: db}
}

var asetSortColumns = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"kode_aset":       true,
	"nama_aset":       true,
	"status":          true,
	"luas":            true,
	"nilai_aset":      true,
	"tahun_perolehan": true,
}

// GetWithFiltersAndPage 组合筛选分页查询
func (s *AsetService) GetWithFiltersAndPage(filter AsetFilter, page, pageSize int) ([]*models.Aset, int64, error) {
	query := s.db.Model(&models.Aset{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("nama_aset ILIKE ? OR kode_aset ILIKE ? OR lokasi ILIKE ?", like, like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Jenis != "" {
		query = query.Where("jenis_aset = ?", filter.Jenis)
	}
	if filter.Tahun != 0 {
		query = query.Where("tahun_perolehan = ?", filter.Tahun)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var assets []*models.Aset
	err := query.Preload("Creator", func(db *gorm.DB) *gorm.DB {
		return db.Select("id_user", "nama_lengkap", "username")
	}).
		Order(orderClause(filter.Sort, filter.Order, asetSortColumns)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&assets).Error
	return assets, total, err
}

// GetByID 根据ID获取资产，带创建人信息
func (s *AsetService) GetByID(id uint) (*models.Aset, error) {
	var aset models.Aset
	err := s.db.Preload("Creator", func(db *gorm.DB) *gorm.DB {
		return db.Select("id_user", "nama_lengkap", "username")
	}).First(&aset, "id_aset = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &aset, nil
}

// GetForMap 获取有坐标的资产，可按状态和类型过滤
func (s *AsetService) GetForMap(status, jenis string) ([]*models.Aset, error) {
	query := s.db.Model(&models.Aset{}).
		Where("koordinat_lat IS NOT NULL AND koordinat_long IS NOT NULL")

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if jenis != "" {
		query = query.Where("jenis_aset = ?", jenis)
	}

	var assets []*models.Aset
	err := query.Find(&assets).Error
	return assets, err
}

// GetForMapByStatuses 获取指定状态集合的有坐标资产，用于图层投影
func (s *AsetService) GetForMapByStatuses(statuses ...string) ([]*models.Aset, error) {
	query := s.db.Model(&models.Aset{}).
		Where("koordinat_lat IS NOT NULL AND koordinat_long IS NOT NULL")

	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var assets []*models.Aset
	err := query.Find(&assets).Error
	return assets, err
}

// SearchOnMap 地图检索，只返回有坐标的匹配资产
func (s *AsetService) SearchOnMap(keyword string, limit int) ([]*models.Aset, error) {
	like := "%" + keyword + "%"

	var assets []*models.Aset
	err := s.db.Model(&models.Aset{}).
		Where("koordinat_lat IS NOT NULL AND koordinat_long IS NOT NULL").
		Where("nama_aset ILIKE ? OR kode_aset ILIKE ? OR lokasi ILIKE ?", like, like, like).
		Limit(limit).
		Find(&assets).Error
	return assets, err
}

// Create 创建资产，资产编码唯一
func (s *AsetService) Create(aset *models.Aset) error {
	var count int64
	s.db.Model(&models.Aset{}).Where("kode_aset = ?", aset.KodeAset).Count(&count)
	if count > 0 {
		return fmt.Errorf("Kode aset sudah digunakan")
	}

	if aset.Status == "" {
		aset.Status = models.AsetStatusAktif
	}

	return s.db.Create(aset).Error
}

// Update 更新资产，返回变更前快照
func (s *AsetService) Update(id uint, updates map[string]interface{}) (*models.Aset, *models.Aset, error) {
	aset, err := s.GetByID(id)
	if err != nil {
		return nil, nil, err
	}

	// 编码变更时检查新编码是否冲突
	if kode, ok := updates["kode_aset"].(string); ok && kode != aset.KodeAset {
		var count int64
		s.db.Model(&models.Aset{}).Where("kode_aset = ? AND id_aset <> ?", kode, id).Count(&count)
		if count > 0 {
			return nil, nil, fmt.Errorf("Kode aset sudah digunakan")
		}
	}

	oldCopy := *aset

	if err := s.db.Model(&models.Aset{}).Where("id_aset = ?", id).Updates(updates).Error; err != nil {
		return nil, nil, err
	}

	updated, err := s.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	return &oldCopy, updated, nil
}

// Delete 删除资产，返回删除前快照
func (s *AsetService) Delete(id uint) (*models.Aset, error) {
	aset, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Delete(&models.Aset{}, "id_aset = ?", id).Error; err != nil {
		return nil, err
	}
	return aset, nil
}

// GetStats 资产统计
func (s *AsetService) GetStats() (*AsetStats, error) {
	stats := &AsetStats{
		ByStatus: make(map[string]int64),
		ByJenis:  make(map[string]int64),
	}

	if err := s.db.Model(&models.Aset{}).Count(&stats.TotalAset).Error; err != nil {
		return nil, err
	}

	var totals struct {
		TotalLuas  float64
		TotalNilai float64
	}
	err := s.db.Model(&models.Aset{}).
		Select("COALESCE(SUM(luas), 0) as total_luas, COALESCE(SUM(nilai_aset), 0) as total_nilai").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	stats.TotalLuas = totals.TotalLuas
	stats.TotalNilai = totals.TotalNilai

	var byStatus []struct {
		Status string
		Count  int64
	}
	if err := s.db.Model(&models.Aset{}).Select("status, COUNT(*) as count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, item := range byStatus {
		stats.ByStatus[item.Status] = item.Count
	}

	var byJenis []struct {
		JenisAset *string
		Count     int64
	}
	if err := s.db.Model(&models.Aset{}).Select("jenis_aset, COUNT(*) as count").Group("jenis_aset").Scan(&byJenis).Error; err != nil {
		return nil, err
	}
	for _, item := range byJenis {
		if item.JenisAset != nil {
			stats.ByJenis[*item.JenisAset] = item.Count
		}
	}

	return stats, nil
}

// MapStats 地图统计信息
type MapStats struct {
	TotalMapped   int64              `json:"totalMapped"`
	TotalUnmapped int64              `json:"totalUnmapped"`
	ByStatus      map[string]int64   `json:"byStatus"`
	LuasByStatus  map[string]float64 `json:"luasByStatus"`
}

// GetMapStats 有坐标资产的统计
func (s *AsetService) GetMapStats() (*MapStats, error) {
	stats := &MapStats{
		ByStatus:     make(map[string]int64),
		LuasByStatus: make(map[string]float64),
	}

	mapped := s.db.Model(&models.Aset{}).
		Where("koordinat_lat IS NOT NULL AND koordinat_long IS NOT NULL")

	if err := mapped.Session(&gorm.Session{}).Count(&stats.TotalMapped).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Aset{}).
		Where("koordinat_lat IS NULL OR koordinat_long IS NULL").
		Count(&stats.TotalUnmapped).Error; err != nil {
		return nil, err
	}

	var byStatus []struct {
		Status    string
		Count     int64
		TotalLuas float64
	}
	err := mapped.Session(&gorm.Session{}).
		Select("status, COUNT(*) as count, COALESCE(SUM(luas), 0) as total_luas").
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return nil, err
	}
	for _, item := range byStatus {
		stats.ByStatus[item.Status] = item.Count
		stats.LuasByStatus[item.Status] = item.TotalLuas
	}

	return stats, nil
}
