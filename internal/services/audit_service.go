package services

import (
	"encoding/json"
	"time"

	"sinkrona/internal/models"
	"sinkrona/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RequestMeta 请求元信息，用于审计记录来源IP和User-Agent
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// MetaFromContext 从gin上下文提取请求元信息
func MetaFromContext(c *gin.Context) *RequestMeta {
	if c == nil || c.Request == nil {
		return nil
	}
	return &RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// AuditParams 审计日志参数
type AuditParams struct {
	Aksi        string
	Tabel       string
	IDReferensi *uint
	DataLama    interface{} // 变更前快照，可为nil
	DataBaru    interface{} // 变更后快照，可为nil
	Keterangan  string
	UserID      uint
	Meta        *RequestMeta
}

// AuditService 审计日志服务
// 契约：Log及其快捷方法永不向调用方返回错误——主业务操作的成败
// 不受审计落库结果影响。写入失败只记录到应用日志后丢弃。
// 审计写入与业务写入不在同一事务内，两者之间进程崩溃会产生
// 缺失审计的变更，这是已知且接受的取舍。
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Log 持久化一条审计日志
func (s *AuditService) Log(params AuditParams) {
	entry, err := s.buildEntry(params)
	if err != nil {
		logger.GetLogger().Warnf("审计日志序列化失败: %v (aksi=%s tabel=%s)", err, params.Aksi, params.Tabel)
		return
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.GetLogger().Warnf("审计日志写入失败: %v (aksi=%s tabel=%s)", err, params.Aksi, params.Tabel)
	}
}

// buildEntry 构造审计记录，快照序列化为JSON
func (s *AuditService) buildEntry(params AuditParams) (*models.Riwayat, error) {
	entry := &models.Riwayat{
		Aksi:        params.Aksi,
		Tabel:       params.Tabel,
		IDReferensi: params.IDReferensi,
		UserID:      params.UserID,
		CreatedAt:   time.Now(),
	}

	if params.Keterangan != "" {
		keterangan := params.Keterangan
		entry.Keterangan = &keterangan
	}

	if params.Meta != nil {
		if params.Meta.IPAddress != "" {
			ip := params.Meta.IPAddress
			entry.IPAddress = &ip
		}
		if params.Meta.UserAgent != "" {
			ua := params.Meta.UserAgent
			entry.UserAgent = &ua
		}
	}

	if params.DataLama != nil {
		raw, err := json.Marshal(params.DataLama)
		if err != nil {
			return nil, err
		}
		entry.DataLama = datatypes.JSON(raw)
	}

	if params.DataBaru != nil {
		raw, err := json.Marshal(params.DataBaru)
		if err != nil {
			return nil, err
		}
		entry.DataBaru = datatypes.JSON(raw)
	}

	return entry, nil
}

// LogCreate 记录CREATE动作，只带变更后快照
func (s *AuditService) LogCreate(tabel string, idReferensi uint, dataBaru interface{}, keterangan string, userID uint, meta *RequestMeta) {
	s.Log(AuditParams{
		Aksi:        models.AksiCreate,
		Tabel:       tabel,
		IDReferensi: &idReferensi,
		DataBaru:    dataBaru,
		Keterangan:  keterangan,
		UserID:      userID,
		Meta:        meta,
	})
}

// LogUpdate 记录UPDATE动作，带变更前后快照
func (s *AuditService) LogUpdate(tabel string, idReferensi uint, dataLama, dataBaru interface{}, keterangan string, userID uint, meta *RequestMeta) {
	s.Log(AuditParams{
		Aksi:        models.AksiUpdate,
		Tabel:       tabel,
		IDReferensi: &idReferensi,
		DataLama:    dataLama,
		DataBaru:    dataBaru,
		Keterangan:  keterangan,
		UserID:      userID,
		Meta:        meta,
	})
}

// LogDelete 记录DELETE动作，只带变更前快照
func (s *AuditService) LogDelete(tabel string, idReferensi uint, dataLama interface{}, keterangan string, userID uint, meta *RequestMeta) {
	s.Log(AuditParams{
		Aksi:        models.AksiDelete,
		Tabel:       tabel,
		IDReferensi: &idReferensi,
		DataLama:    dataLama,
		Keterangan:  keterangan,
		UserID:      userID,
		Meta:        meta,
	})
}

// LogLogin 记录LOGIN动作，引用记录即操作者本人
func (s *AuditService) LogLogin(userID uint, keterangan string, meta *RequestMeta) {
	if keterangan == "" {
		keterangan = "User login"
	}
	s.Log(AuditParams{
		Aksi:        models.AksiLogin,
		Tabel:       "users",
		IDReferensi: &userID,
		Keterangan:  keterangan,
		UserID:      userID,
		Meta:        meta,
	})
}

// LogLogout 记录LOGOUT动作
func (s *AuditService) LogLogout(userID uint, keterangan string, meta *RequestMeta) {
	if keterangan == "" {
		keterangan = "User logout"
	}
	s.Log(AuditParams{
		Aksi:        models.AksiLogout,
		Tabel:       "users",
		IDReferensi: &userID,
		Keterangan:  keterangan,
		UserID:      userID,
		Meta:        meta,
	})
}
