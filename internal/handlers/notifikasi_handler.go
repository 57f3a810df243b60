package handlers

import (
	"strconv"

	"sinkrona/internal/middleware"
	"sinkrona/internal/services"
	"sinkrona/pkg/pagination"
	"sinkrona/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotifikasiHandler struct {
	notifikasiService *services.NotifikasiService
}

func NewNotifikasiHandler(notifikasiService *services.NotifikasiService) *NotifikasiHandler {
	return &NotifikasiHandler{notifikasiService: notifikasiService}
}

// notifikasi接口每页默认20条
const notifikasiDefaultPageSize = 20

// List 当前用户的通知列表
func (h *NotifikasiHandler) List(c *gin.Context) {
	userID := c.GetUint(middleware.CtxUserID)
	params := pagination.ParsePageParamsWithDefault(c, notifikasiDefaultPageSize)

	filter := services.NotifikasiFilter{
		UnreadOnly: c.Query("unread") == "true",
		Kategori:   c.Query("kategori"),
		Sort:       c.Query("sort"),
		Order:      c.Query("order"),
	}

	notifications, total, err := h.notifikasiService.GetForUser(userID, filter, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "Gagal mengambil notifikasi")
		return
	}

	response.SuccessWithPage(c, notifications, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetUnreadCount 未读通知数
func (h *NotifikasiHandler) GetUnreadCount(c *gin.Context) {
	userID := c.GetUint(middleware.CtxUserID)

	count, err := h.notifikasiService.GetUnreadCount(userID)
	if err != nil {
		response.ServerError(c, "Gagal mengambil jumlah notifikasi belum dibaca")
		return
	}

	response.Success(c, gin.H{"unread_count": count})
}

// GetRecent 最近通知，用于顶栏下拉，固定最多10条
func (h *NotifikasiHandler) GetRecent(c *gin.Context) {
	userID := c.GetUint(middleware.CtxUserID)

	notifications, err := h.notifikasiService.GetRecent(userID, 10)
	if err != nil {
		response.ServerError(c, "Gagal mengambil notifikasi terbaru")
		return
	}

	response.Success(c, notifications)
}

// MarkAsRead 标记单条已读
func (h *NotifikasiHandler) MarkAsRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID notifikasi tidak valid")
		return
	}

	userID := c.GetUint(middleware.CtxUserID)
	notifikasi, err := h.notifikasiService.MarkAsRead(userID, uint(id))
	if err != nil {
		response.NotFound(c, "Notifikasi tidak ditemukan")
		return
	}

	response.SuccessWithMessage(c, "Notifikasi ditandai sudah dibaca", notifikasi)
}

// MarkAllAsRead 全部标记已读
func (h *NotifikasiHandler) MarkAllAsRead(c *gin.Context) {
	userID := c.GetUint(middleware.CtxUserID)

	updated, err := h.notifikasiService.MarkAllAsRead(userID)
	if err != nil {
		response.ServerError(c, "Gagal menandai notifikasi")
		return
	}

	response.SuccessWithMessage(c, "Semua notifikasi ditandai sudah dibaca", gin.H{
		"updated": updated,
	})
}

// Delete 删除单条通知
func (h *NotifikasiHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID notifikasi tidak valid")
		return
	}

	userID := c.GetUint(middleware.CtxUserID)
	if err := h.notifikasiService.Delete(userID, uint(id)); err != nil {
		response.NotFound(c, "Notifikasi tidak ditemukan")
		return
	}

	response.SuccessWithMessage(c, "Notifikasi berhasil dihapus", nil)
}

// ClearAll 清空当前用户全部通知
func (h *NotifikasiHandler) ClearAll(c *gin.Context) {
	userID := c.GetUint(middleware.CtxUserID)

	deleted, err := h.notifikasiService.ClearAll(userID)
	if err != nil {
		response.ServerError(c, "Gagal menghapus notifikasi")
		return
	}

	response.SuccessWithMessage(c, "Semua notifikasi berhasil dihapus", gin.H{
		"deleted": deleted,
	})
}
