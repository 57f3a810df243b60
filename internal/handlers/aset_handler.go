package handlers

import (
	"fmt"
	"strconv"

	"sinkrona/internal/middleware"
	"sinkrona/internal/models"
	"sinkrona/internal/services"
	"sinkrona/pkg/pagination"
	"sinkrona/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// asetStore 资产处理器对资产服务的依赖面，由*services.AsetService实现
type asetStore interface {
	GetWithFiltersAndPage(filter services.AsetFilter, page, pageSize int) ([]*models.Aset, int64, error)
	GetStats() (*services.AsetStats, error)
	GetForMap(status, jenis string) ([]*models.Aset, error)
	GetByID(id uint) (*models.Aset, error)
	Create(aset *models.Aset) error
	Update(id uint, updates map[string]interface{}) (*models.Aset, *models.Aset, error)
	Delete(id uint) (*models.Aset, error)
}

// asetNotifier 资产变更通知，由*services.NotificationService实现
type asetNotifier interface {
	NotifyAsetCreated(aset *models.Aset, createdBy string)
	NotifyAsetStatusChanged(aset *models.Aset, oldStatus, newStatus, changedBy string)
	NotifyAsetDeleted(aset *models.Aset, deletedBy string)
}

type AsetHandler struct {
	asetService  asetStore
	auditService auditRecorder
	notifService asetNotifier
}

func NewAsetHandler(asetService asetStore, auditService auditRecorder, notifService asetNotifier) *AsetHandler {
	return &AsetHandler{
		asetService:  asetService,
		auditService: auditService,
		notifService: notifService,
	}
}

// List 资产列表
func (h *AsetHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	tahun := 0
	if raw := c.Query("tahun"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil {
			tahun = val
		}
	}

	filter := services.AsetFilter{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Jenis:  c.Query("jenis"),
		Tahun:  tahun,
		Sort:   c.Query("sort"),
		Order:  c.Query("order"),
	}

	assets, total, err := h.asetService.GetWithFiltersAndPage(filter, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "Gagal mengambil data aset")
		return
	}

	response.SuccessWithPage(c, assets, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetStats 资产统计
func (h *AsetHandler) GetStats(c *gin.Context) {
	stats, err := h.asetService.GetStats()
	if err != nil {
		response.ServerError(c, "Gagal mengambil statistik aset")
		return
	}
	response.Success(c, stats)
}

// GetForMap 获取有坐标的资产，供前端地图展示
func (h *AsetHandler) GetForMap(c *gin.Context) {
	assets, err := h.asetService.GetForMap(c.Query("status"), c.Query("jenis"))
	if err != nil {
		response.ServerError(c, "Gagal mengambil data peta aset")
		return
	}
	response.Success(c, assets)
}

// GetByID 资产详情
func (h *AsetHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID aset tidak valid")
		return
	}

	aset, err := h.asetService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "Aset tidak ditemukan")
		return
	}
	response.Success(c, aset)
}

type CreateAsetRequest struct {
	KodeAset         string         `json:"kode_aset" binding:"required,kode_aset"`
	NamaAset         string         `json:"nama_aset" binding:"required"`
	Lokasi           string         `json:"lokasi" binding:"required"`
	KoordinatLat     *float64       `json:"koordinat_lat" binding:"omitempty,latitude"`
	KoordinatLong    *float64       `json:"koordinat_long" binding:"omitempty,longitude"`
	Luas             *float64       `json:"luas" binding:"omitempty,gt=0"`
	Status           string         `json:"status"`
	JenisAset        *string        `json:"jenis_aset"`
	NilaiAset        *float64       `json:"nilai_aset" binding:"omitempty,gte=0"`
	TahunPerolehan   *int           `json:"tahun_perolehan" binding:"omitempty,gte=1900,lte=2100"`
	NomorSertifikat  *string        `json:"nomor_sertifikat"`
	StatusSertifikat *string        `json:"status_sertifikat"`
	FotoAset         *string        `json:"foto_aset"`
	DokumenPendukung datatypes.JSON `json:"dokumen_pendukung"`
	Keterangan       *string        `json:"keterangan"`
}

// Create 创建资产
func (h *AsetHandler) Create(c *gin.Context) {
	var req CreateAsetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Data aset tidak valid: "+err.Error())
		return
	}

	actorID := c.GetUint(middleware.CtxUserID)
	aset := &models.Aset{
		KodeAset:         req.KodeAset,
		NamaAset:         req.NamaAset,
		Lokasi:           req.Lokasi,
		KoordinatLat:     req.KoordinatLat,
		KoordinatLong:    req.KoordinatLong,
		Luas:             req.Luas,
		Status:           req.Status,
		JenisAset:        req.JenisAset,
		NilaiAset:        req.NilaiAset,
		TahunPerolehan:   req.TahunPerolehan,
		NomorSertifikat:  req.NomorSertifikat,
		StatusSertifikat: req.StatusSertifikat,
		FotoAset:         req.FotoAset,
		DokumenPendukung: req.DokumenPendukung,
		Keterangan:       req.Keterangan,
		CreatedBy:        actorID,
	}

	if err := h.asetService.Create(aset); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.auditService.LogCreate("aset", aset.IDAset, aset,
		fmt.Sprintf("Menambahkan aset %s (%s)", aset.NamaAset, aset.KodeAset),
		actorID, services.MetaFromContext(c))
	h.notifService.NotifyAsetCreated(aset, c.GetString(middleware.CtxUsername))

	response.Created(c, "Aset berhasil ditambahkan", aset)
}

// Update 更新资产
// 请求体按字段名更新，未出现的字段保持不变
func (h *AsetHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID aset tidak valid")
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Data aset tidak valid: "+err.Error())
		return
	}

	updates := filterAsetUpdates(body)
	if len(updates) == 0 {
		response.BadRequest(c, "Tidak ada field yang diubah")
		return
	}

	old, updated, err := h.asetService.Update(uint(id), updates)
	if err != nil {
		if err.Error() == "Kode aset sudah digunakan" {
			response.BadRequest(c, err.Error())
		} else {
			response.NotFound(c, "Aset tidak ditemukan")
		}
		return
	}

	actorID := c.GetUint(middleware.CtxUserID)
	h.auditService.LogUpdate("aset", updated.IDAset, old, updated,
		fmt.Sprintf("Mengubah data aset %s (%s)", updated.NamaAset, updated.KodeAset),
		actorID, services.MetaFromContext(c))

	// 状态变化时广播通知
	if old.Status != updated.Status {
		h.notifService.NotifyAsetStatusChanged(updated, old.Status, updated.Status, c.GetString(middleware.CtxUsername))
	}

	response.SuccessWithMessage(c, "Aset berhasil diperbarui", updated)
}

// 允许通过Update修改的列
var asetUpdatableColumns = map[string]bool{
	"kode_aset":         true,
	"nama_aset":         true,
	"lokasi":            true,
	"koordinat_lat":     true,
	"koordinat_long":    true,
	"luas":              true,
	"status":            true,
	"jenis_aset":        true,
	"nilai_aset":        true,
	"tahun_perolehan":   true,
	"nomor_sertifikat":  true,
	"status_sertifikat": true,
	"foto_aset":         true,
	"dokumen_pendukung": true,
	"keterangan":        true,
}

// filterAsetUpdates 丢弃不在白名单内的字段，防止改写created_by等列
func filterAsetUpdates(body map[string]interface{}) map[string]interface{} {
	updates := make(map[string]interface{}, len(body))
	for key, value := range body {
		if asetUpdatableColumns[key] {
			updates[key] = value
		}
	}
	return updates
}

// Delete 删除资产
func (h *AsetHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID aset tidak valid")
		return
	}

	aset, err := h.asetService.Delete(uint(id))
	if err != nil {
		response.NotFound(c, "Aset tidak ditemukan")
		return
	}

	actorID := c.GetUint(middleware.CtxUserID)
	h.auditService.LogDelete("aset", aset.IDAset, aset,
		fmt.Sprintf("Menghapus aset %s (%s)", aset.NamaAset, aset.KodeAset),
		actorID, services.MetaFromContext(c))
	h.notifService.NotifyAsetDeleted(aset, c.GetString(middleware.CtxUsername))

	response.SuccessWithMessage(c, "Aset berhasil dihapus", nil)
}
