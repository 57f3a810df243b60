package handlers

import (
	"strconv"
	"time"

	"sinkrona/internal/services"
	"sinkrona/pkg/pagination"
	"sinkrona/pkg/response"

	"github.com/gin-gonic/gin"
)

type RiwayatHandler struct {
	riwayatService *services.RiwayatService
}

func NewRiwayatHandler(riwayatService *services.RiwayatService) *RiwayatHandler {
	return &RiwayatHandler{riwayatService: riwayatService}
}

// riwayat接口每页默认20条
const riwayatDefaultPageSize = 20

// parseDateQuery 解析YYYY-MM-DD格式的日期参数
func parseDateQuery(c *gin.Context, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	val, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &val
}

// List 审计日志列表
func (h *RiwayatHandler) List(c *gin.Context) {
	params := pagination.ParsePageParamsWithDefault(c, riwayatDefaultPageSize)

	var userID uint
	if raw := c.Query("user_id"); raw != "" {
		if val, err := strconv.ParseUint(raw, 10, 32); err == nil {
			userID = uint(val)
		}
	}

	filter := services.RiwayatFilter{
		Aksi:      c.Query("aksi"),
		Tabel:     c.Query("tabel"),
		UserID:    userID,
		StartDate: parseDateQuery(c, "start_date"),
		EndDate:   parseDateQuery(c, "end_date"),
		Sort:      c.Query("sort"),
		Order:     c.Query("order"),
	}

	riwayat, total, err := h.riwayatService.GetWithFiltersAndPage(filter, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "Gagal mengambil data riwayat")
		return
	}

	response.SuccessWithPage(c, riwayat, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetStats 审计日志统计
func (h *RiwayatHandler) GetStats(c *gin.Context) {
	stats, err := h.riwayatService.GetStats(parseDateQuery(c, "start_date"), parseDateQuery(c, "end_date"))
	if err != nil {
		response.ServerError(c, "Gagal mengambil statistik riwayat")
		return
	}
	response.Success(c, stats)
}

// GetByID 单条日志详情
func (h *RiwayatHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID riwayat tidak valid")
		return
	}

	riwayat, err := h.riwayatService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "Riwayat tidak ditemukan")
		return
	}
	response.Success(c, riwayat)
}

// GetByAset 指定资产的变更历史
func (h *RiwayatHandler) GetByAset(c *gin.Context) {
	asetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID aset tidak valid")
		return
	}

	params := pagination.ParsePageParamsWithDefault(c, riwayatDefaultPageSize)
	riwayat, total, err := h.riwayatService.GetByAsetID(uint(asetID), params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "Gagal mengambil riwayat aset")
		return
	}

	response.SuccessWithPage(c, riwayat, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByUser 指定用户的操作历史
func (h *RiwayatHandler) GetByUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID user tidak valid")
		return
	}

	params := pagination.ParsePageParamsWithDefault(c, riwayatDefaultPageSize)
	riwayat, total, err := h.riwayatService.GetByUser(uint(userID), params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "Gagal mengambil riwayat user")
		return
	}

	response.SuccessWithPage(c, riwayat, pagination.NewPageInfo(params.Page, params.PageSize, total))
}
