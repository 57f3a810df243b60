package services

import (
	"fmt"
	"time"

	"sinkrona/internal/models"
	"sinkrona/pkg/cache"
	"sinkrona/pkg/logger"

	"gorm.io/gorm"
)

// NotifParams 发送通知的参数
type NotifParams struct {
	UserID         uint
	Judul          string
	Pesan          string
	Tipe           string // 默认 info
	Kategori       string // 默认 sistem
	ReferensiID    *uint
	ReferensiTabel string
}

// NotificationService 通知服务
// 与审计服务同一策略：通知属于旁路功能，发送失败记日志后丢弃，
// 不影响触发它的主业务操作
type NotificationService struct {
	db    *gorm.DB
	cache *cache.RedisCache
	hub   *NotificationHub
}

func NewNotificationService(db *gorm.DB, redisCache *cache.RedisCache, hub *NotificationHub) *NotificationService {
	return &NotificationService{
		db:    db,
		cache: redisCache,
		hub:   hub,
	}
}

// SendToUser 向指定用户发送通知
func (s *NotificationService) SendToUser(params NotifParams) *models.Notifikasi {
	if params.Tipe == "" {
		params.Tipe = models.NotifTipeInfo
	}
	if params.Kategori == "" {
		params.Kategori = models.NotifKategoriSistem
	}

	notifikasi := &models.Notifikasi{
		UserID:      params.UserID,
		Judul:       params.Judul,
		Pesan:       params.Pesan,
		Tipe:        params.Tipe,
		Kategori:    params.Kategori,
		ReferensiID: params.ReferensiID,
		Dibaca:      false,
		CreatedAt:   time.Now(),
	}
	if params.ReferensiTabel != "" {
		tabel := params.ReferensiTabel
		notifikasi.ReferensiTabel = &tabel
	}

	if err := s.db.Create(notifikasi).Error; err != nil {
		logger.GetLogger().Warnf("通知写入失败: %v (user_id=%d judul=%s)", err, params.UserID, params.Judul)
		return nil
	}

	// 未读数缓存失效，失败忽略
	if s.cache != nil {
		if err := s.cache.InvalidateUnreadCount(params.UserID); err != nil {
			logger.GetLogger().Debugf("未读数缓存失效失败: %v (user_id=%d)", err, params.UserID)
		}
	}

	// 在线连接实时推送
	if s.hub != nil {
		s.hub.Push(params.UserID, notifikasi)
	}

	return notifikasi
}

// SendToRole 向指定角色的所有激活用户发送通知
func (s *NotificationService) SendToRole(role string, params NotifParams) []*models.Notifikasi {
	var users []models.User
	err := s.db.Where("role = ? AND status_aktif = ?", role, true).
		Select("id_user").
		Find(&users).Error
	if err != nil {
		logger.GetLogger().Warnf("按角色查询通知接收人失败: %v (role=%s)", err, role)
		return nil
	}

	sent := make([]*models.Notifikasi, 0, len(users))
	for _, user := range users {
		params.UserID = user.IDUser
		if n := s.SendToUser(params); n != nil {
			sent = append(sent, n)
		}
	}
	return sent
}

// SendToAdmins 向所有管理员发送通知
func (s *NotificationService) SendToAdmins(params NotifParams) []*models.Notifikasi {
	return s.SendToRole(models.RoleAdmin, params)
}

// NotifyAsetCreated 资产新增通知
func (s *NotificationService) NotifyAsetCreated(aset *models.Aset, createdBy string) {
	for _, role := range []string{models.RoleAdmin, models.RoleDinasAset} {
		s.SendToRole(role, NotifParams{
			Judul:          "Aset Baru Ditambahkan",
			Pesan:          fmt.Sprintf("Aset %q (%s) telah ditambahkan oleh %s", aset.NamaAset, aset.KodeAset, createdBy),
			Tipe:           models.NotifTipeSuccess,
			Kategori:       models.NotifKategoriAset,
			ReferensiID:    &aset.IDAset,
			ReferensiTabel: "aset",
		})
	}
}

// NotifyAsetStatusChanged 资产状态变更通知，涉案状态按warning级别
func (s *NotificationService) NotifyAsetStatusChanged(aset *models.Aset, oldStatus, newStatus, changedBy string) {
	tipe := models.NotifTipeInfo
	if newStatus == models.AsetStatusBerperkara || newStatus == models.AsetStatusIndikasiPerkara {
		tipe = models.NotifTipeWarning
	}

	for _, role := range []string{models.RoleAdmin, models.RoleDinasAset, models.RoleBPN, models.RoleTataRuang} {
		s.SendToRole(role, NotifParams{
			Judul:          "Status Aset Berubah",
			Pesan:          fmt.Sprintf("Status aset %q berubah dari %q menjadi %q oleh %s", aset.NamaAset, oldStatus, newStatus, changedBy),
			Tipe:           tipe,
			Kategori:       models.NotifKategoriAset,
			ReferensiID:    &aset.IDAset,
			ReferensiTabel: "aset",
		})
	}
}

// NotifyAsetDeleted 资产删除通知
func (s *NotificationService) NotifyAsetDeleted(aset *models.Aset, deletedBy string) {
	s.SendToRole(models.RoleAdmin, NotifParams{
		Judul:    "Aset Dihapus",
		Pesan:    fmt.Sprintf("Aset %q (%s) telah dihapus oleh %s", aset.NamaAset, aset.KodeAset, deletedBy),
		Tipe:     models.NotifTipeWarning,
		Kategori: models.NotifKategoriAset,
	})
}

// NotifyLogin 登录通知，发给登录者本人
func (s *NotificationService) NotifyLogin(user *models.User, ipAddress string) {
	if ipAddress == "" {
		ipAddress = "unknown"
	}
	s.SendToUser(NotifParams{
		UserID:   user.IDUser,
		Judul:    "Login Berhasil",
		Pesan:    fmt.Sprintf("Anda login dari IP %s pada %s", ipAddress, time.Now().Format("02-01-2006 15:04:05")),
		Tipe:     models.NotifTipeInfo,
		Kategori: models.NotifKategoriSistem,
	})
}
