package services

import (
	"time"

	"sinkrona/internal/models"
	"sinkrona/pkg/cache"
	"sinkrona/pkg/logger"

	"gorm.io/gorm"
)

// NotifikasiService 通知查询与已读管理服务
type NotifikasiService struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

// NotifikasiFilter 通知筛选条件
type NotifikasiFilter struct {
	UnreadOnly bool
	Kategori   string
	Sort       string
	Order      string
}

func NewNotifikasiService(db *gorm.DB, redisCache *cache.RedisCache) *NotifikasiService {
	return &NotifikasiService{db: db, cache: redisCache}
}

var notifikasiSortColumns = map[string]bool{
	"created_at": true,
	"dibaca":     true,
	"kategori":   true,
}

// 未读数缓存有效期
const unreadCountTTL = 5 * time.Minute

// GetForUser 当前用户的通知分页列表
func (s *NotifikasiService) GetForUser(userID uint, filter NotifikasiFilter, page, pageSize int) ([]*models.Notifikasi, int64, error) {
	query := s.db.Model(&models.Notifikasi{}).Where("user_id = ?", userID)

	if filter.UnreadOnly {
		query = query.Where("dibaca = ?", false)
	}
	if filter.Kategori != "" {
		query = query.Where("kategori = ?", filter.Kategori)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []*models.Notifikasi
	err := query.Order(orderClause(filter.Sort, filter.Order, notifikasiSortColumns)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error
	return notifications, total, err
}

// GetRecent 最近的若干条通知
func (s *NotifikasiService) GetRecent(userID uint, limit int) ([]*models.Notifikasi, error) {
	var notifications []*models.Notifikasi
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// GetUnreadCount 未读通知数，优先走缓存
func (s *NotifikasiService) GetUnreadCount(userID uint) (int64, error) {
	if s.cache != nil {
		if count, hit := s.cache.GetUnreadCount(userID); hit {
			return count, nil
		}
	}

	var count int64
	err := s.db.Model(&models.Notifikasi{}).
		Where("user_id = ? AND dibaca = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetUnreadCount(userID, count, unreadCountTTL); err != nil {
			logger.GetLogger().Debugf("未读数缓存写入失败: %v (user_id=%d)", err, userID)
		}
	}

	return count, nil
}

// MarkAsRead 标记单条通知为已读，只能操作自己的通知
func (s *NotifikasiService) MarkAsRead(userID, notifikasiID uint) (*models.Notifikasi, error) {
	var notifikasi models.Notifikasi
	err := s.db.First(&notifikasi, "id_notifikasi = ? AND user_id = ?", notifikasiID, userID).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	notifikasi.Dibaca = true
	notifikasi.DibacaAt = &now
	if err := s.db.Save(&notifikasi).Error; err != nil {
		return nil, err
	}

	s.invalidateUnread(userID)
	return &notifikasi, nil
}

// MarkAllAsRead 全部标记已读，返回更新条数
func (s *NotifikasiService) MarkAllAsRead(userID uint) (int64, error) {
	now := time.Now()
	result := s.db.Model(&models.Notifikasi{}).
		Where("user_id = ? AND dibaca = ?", userID, false).
		Updates(map[string]interface{}{"dibaca": true, "dibaca_at": &now})
	if result.Error != nil {
		return 0, result.Error
	}

	s.invalidateUnread(userID)
	return result.RowsAffected, nil
}

// Delete 删除单条通知，只能操作自己的通知
func (s *NotifikasiService) Delete(userID, notifikasiID uint) error {
	var notifikasi models.Notifikasi
	err := s.db.First(&notifikasi, "id_notifikasi = ? AND user_id = ?", notifikasiID, userID).Error
	if err != nil {
		return err
	}

	if err := s.db.Delete(&notifikasi).Error; err != nil {
		return err
	}

	s.invalidateUnread(userID)
	return nil
}

// ClearAll 清空当前用户全部通知，返回删除条数
func (s *NotifikasiService) ClearAll(userID uint) (int64, error) {
	result := s.db.Delete(&models.Notifikasi{}, "user_id = ?", userID)
	if result.Error != nil {
		return 0, result.Error
	}

	s.invalidateUnread(userID)
	return result.RowsAffected, nil
}

func (s *NotifikasiService) invalidateUnread(userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUnreadCount(userID); err != nil {
		logger.GetLogger().Debugf("未读数缓存失效失败: %v (user_id=%d)", err, userID)
	}
}
