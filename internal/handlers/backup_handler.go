package handlers

import (
	"fmt"

	"sinkrona/internal/middleware"
	"sinkrona/internal/models"
	"sinkrona/internal/services"
	"sinkrona/pkg/response"

	"github.com/gin-gonic/gin"
)

type BackupHandler struct {
	backupService *services.BackupService
	auditService  auditRecorder
}

func NewBackupHandler(backupService *services.BackupService, auditService auditRecorder) *BackupHandler {
	return &BackupHandler{
		backupService: backupService,
		auditService:  auditService,
	}
}

// List 备份文件列表
func (h *BackupHandler) List(c *gin.Context) {
	files, err := h.backupService.ListFiles()
	if err != nil {
		response.ServerError(c, "Gagal mengambil daftar backup")
		return
	}
	response.Success(c, files)
}

// GetStats 备份统计
func (h *BackupHandler) GetStats(c *gin.Context) {
	stats, err := h.backupService.GetStats()
	if err != nil {
		response.ServerError(c, "Gagal mengambil statistik backup")
		return
	}
	response.Success(c, stats)
}

type ExportRequest struct {
	Tables []string `json:"tables"` // 空则默认只导出aset
}

// Export 导出JSON备份
func (h *BackupHandler) Export(c *gin.Context) {
	var req ExportRequest
	// 请求体可为空
	_ = c.ShouldBindJSON(&req)

	actorID := c.GetUint(middleware.CtxUserID)
	username := c.GetString(middleware.CtxUsername)

	filename, counts, err := h.backupService.ExportJSON(username, req.Tables)
	if err != nil {
		response.ServerError(c, "Gagal membuat backup")
		return
	}

	// 备份操作针对文件而非数据行，审计不带记录引用
	h.auditService.Log(services.AuditParams{
		Aksi:       models.AksiCreate,
		Tabel:      "backup",
		DataBaru:   gin.H{"filename": filename, "record_counts": counts},
		Keterangan: fmt.Sprintf("Export backup: %s", filename),
		UserID:     actorID,
		Meta:       services.MetaFromContext(c),
	})

	response.Created(c, "Backup berhasil dibuat", gin.H{
		"filename":      filename,
		"record_counts": counts,
		"created_by":    username,
	})
}

// ExportCSV 导出资产CSV，内容直接作为附件返回
func (h *BackupHandler) ExportCSV(c *gin.Context) {
	actorID := c.GetUint(middleware.CtxUserID)

	filename, data, total, err := h.backupService.ExportCSV()
	if err != nil {
		response.ServerError(c, "Gagal membuat export CSV")
		return
	}

	h.auditService.Log(services.AuditParams{
		Aksi:       models.AksiCreate,
		Tabel:      "backup",
		DataBaru:   gin.H{"filename": filename, "total_aset": total},
		Keterangan: fmt.Sprintf("Export CSV: %s", filename),
		UserID:     actorID,
		Meta:       services.MetaFromContext(c),
	})

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, "text/csv; charset=utf-8", data)
}

type ImportRequest struct {
	Filename string `json:"filename" binding:"required"`
	Options  struct {
		Overwrite bool `json:"overwrite"`
	} `json:"options"`
}

// Import 从备份目录中的JSON文件恢复数据
// overwrite=true时清空aset表后全量重建
func (h *BackupHandler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Filename diperlukan")
		return
	}

	actorID := c.GetUint(middleware.CtxUserID)
	result, err := h.backupService.ImportJSON(req.Filename, req.Options.Overwrite, actorID)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.auditService.Log(services.AuditParams{
		Aksi:       models.AksiCreate,
		Tabel:      "backup",
		DataBaru:   gin.H{"filename": req.Filename, "results": result},
		Keterangan: fmt.Sprintf("Import dari backup: %s", req.Filename),
		UserID:     actorID,
		Meta:       services.MetaFromContext(c),
	})

	response.SuccessWithMessage(c, "Import berhasil", result)
}

// Download 下载备份文件
func (h *BackupHandler) Download(c *gin.Context) {
	filename := c.Param("filename")

	path, err := h.backupService.ResolveFile(filename)
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	c.FileAttachment(path, filename)
}

// Delete 删除备份文件
func (h *BackupHandler) Delete(c *gin.Context) {
	filename := c.Param("filename")

	if err := h.backupService.DeleteFile(filename); err != nil {
		response.NotFound(c, err.Error())
		return
	}

	actorID := c.GetUint(middleware.CtxUserID)
	h.auditService.Log(services.AuditParams{
		Aksi:       models.AksiDelete,
		Tabel:      "backup",
		DataLama:   gin.H{"filename": filename},
		Keterangan: fmt.Sprintf("Menghapus file backup: %s", filename),
		UserID:     actorID,
		Meta:       services.MetaFromContext(c),
	})

	response.SuccessWithMessage(c, "File backup berhasil dihapus", nil)
}
