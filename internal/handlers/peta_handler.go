package handlers

import (
	"strconv"
	"strings"

	"sinkrona/internal/middleware"
	"sinkrona/internal/models"
	"sinkrona/internal/services"
	"sinkrona/pkg/response"

	"github.com/gin-gonic/gin"
)

type PetaHandler struct {
	asetService *services.AsetService
}

func NewPetaHandler(asetService *services.AsetService) *PetaHandler {
	return &PetaHandler{asetService: asetService}
}

// ========== GeoJSON构造 ==========

// GeoJSONFeature GeoJSON要素
type GeoJSONFeature struct {
	Type       string                 `json:"type"`
	Geometry   GeoJSONGeometry        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// GeoJSONGeometry 点几何
type GeoJSONGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [longitude, latitude]
}

// GeoJSONCollection GeoJSON要素集合
type GeoJSONCollection struct {
	Type     string           `json:"type"`
	Features []GeoJSONFeature `json:"features"`
}

// newFeature 资产转GeoJSON点要素，坐标顺序为[经度, 纬度]
func newFeature(aset *models.Aset, properties map[string]interface{}) GeoJSONFeature {
	return GeoJSONFeature{
		Type: "Feature",
		Geometry: GeoJSONGeometry{
			Type:        "Point",
			Coordinates: []float64{*aset.KoordinatLong, *aset.KoordinatLat},
		},
		Properties: properties,
	}
}

// newCollection 构造要素集合，features保证非nil
func newCollection(features []GeoJSONFeature) GeoJSONCollection {
	if features == nil {
		features = []GeoJSONFeature{}
	}
	return GeoJSONCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// baseProperties 所有图层共用的基础属性
func baseProperties(aset *models.Aset) map[string]interface{} {
	return map[string]interface{}{
		"id_aset":    aset.IDAset,
		"kode_aset":  aset.KodeAset,
		"nama_aset":  aset.NamaAset,
		"lokasi":     aset.Lokasi,
		"status":     aset.Status,
		"jenis_aset": aset.JenisAset,
		"luas":       aset.Luas,
	}
}

// ========== 地图接口 ==========

// GetMarkers 地图标记点，可按状态和类型过滤
func (h *PetaHandler) GetMarkers(c *gin.Context) {
	assets, err := h.asetService.GetForMap(c.Query("status"), c.Query("jenis"))
	if err != nil {
		response.ServerError(c, "Gagal mengambil data peta")
		return
	}

	features := make([]GeoJSONFeature, 0, len(assets))
	for _, aset := range assets {
		features = append(features, newFeature(aset, baseProperties(aset)))
	}

	response.Success(c, newCollection(features))
}

// GetStats 地图统计
func (h *PetaHandler) GetStats(c *gin.Context) {
	stats, err := h.asetService.GetMapStats()
	if err != nil {
		response.ServerError(c, "Gagal mengambil statistik peta")
		return
	}
	response.Success(c, stats)
}

// Search 地图检索，关键字至少2个字符
func (h *PetaHandler) Search(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("q"))
	if len(keyword) < 2 {
		response.BadRequest(c, "Kata kunci pencarian minimal 2 karakter")
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 && val <= 100 {
			limit = val
		}
	}

	assets, err := h.asetService.SearchOnMap(keyword, limit)
	if err != nil {
		response.ServerError(c, "Gagal melakukan pencarian")
		return
	}

	features := make([]GeoJSONFeature, 0, len(assets))
	for _, aset := range assets {
		features = append(features, newFeature(aset, baseProperties(aset)))
	}

	response.Success(c, newCollection(features))
}

// GetDetail 地图上资产详情
func (h *PetaHandler) GetDetail(c *gin.Context) {
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
	if !aset.HasKoordinat() {
		response.NotFound(c, "Aset tidak memiliki koordinat")
		return
	}

	response.Success(c, aset)
}

// GetAvailableLayers 当前用户可访问的图层清单
func (h *PetaHandler) GetAvailableLayers(c *gin.Context) {
	role := c.GetString(middleware.CtxNormalizedRole)

	all := []struct {
		Name       string
		Permission string
	}{
		{"umum", models.PermLayerUmum},
		{"tata-ruang", models.PermLayerTataRuang},
		{"potensi-berperkara", models.PermLayerPotensiPerkara},
		{"sebaran-perkara", models.PermLayerSebaranPerkara},
	}

	layers := make([]string, 0, len(all))
	for _, layer := range all {
		if models.HasPermission(role, layer.Permission) {
			layers = append(layers, layer.Name)
		}
	}

	response.Success(c, gin.H{"layers": layers})
}

// GetLayerUmum 通用图层：全部有坐标的激活资产
func (h *PetaHandler) GetLayerUmum(c *gin.Context) {
	collection, err := h.buildUmumLayer()
	if err != nil {
		response.ServerError(c, "Gagal mengambil layer umum")
		return
	}
	response.Success(c, collection)
}

// GetPublicLayer 公开地图，无需登录
// 与umum图层同一数据集，面向masyarakat
func (h *PetaHandler) GetPublicLayer(c *gin.Context) {
	collection, err := h.buildUmumLayer()
	if err != nil {
		response.ServerError(c, "Gagal mengambil peta publik")
		return
	}
	response.Success(c, collection)
}

func (h *PetaHandler) buildUmumLayer() (*GeoJSONCollection, error) {
	assets, err := h.asetService.GetForMapByStatuses(models.AsetStatusAktif)
	if err != nil {
		return nil, err
	}

	features := make([]GeoJSONFeature, 0, len(assets))
	for _, aset := range assets {
		features = append(features, newFeature(aset, baseProperties(aset)))
	}

	collection := newCollection(features)
	return &collection, nil
}

// GetLayerTataRuang 空间规划图层，属性带证书信息
func (h *PetaHandler) GetLayerTataRuang(c *gin.Context) {
	assets, err := h.asetService.GetForMap("", "")
	if err != nil {
		response.ServerError(c, "Gagal mengambil layer tata ruang")
		return
	}

	features := make([]GeoJSONFeature, 0, len(assets))
	for _, aset := range assets {
		props := baseProperties(aset)
		props["nomor_sertifikat"] = aset.NomorSertifikat
		props["status_sertifikat"] = aset.StatusSertifikat
		props["tahun_perolehan"] = aset.TahunPerolehan
		features = append(features, newFeature(aset, props))
	}

	response.Success(c, newCollection(features))
}

// GetLayerPotensiBerperkara 涉案风险图层
// 属性带risk_level，响应附带各风险级别的汇总
func (h *PetaHandler) GetLayerPotensiBerperkara(c *gin.Context) {
	assets, err := h.asetService.GetForMapByStatuses(
		models.AsetStatusBerperkara, models.AsetStatusIndikasiPerkara)
	if err != nil {
		response.ServerError(c, "Gagal mengambil layer potensi berperkara")
		return
	}

	summary := map[string]int{"tinggi": 0, "sedang": 0}
	features := make([]GeoJSONFeature, 0, len(assets))
	for _, aset := range assets {
		riskLevel := "sedang"
		if aset.Status == models.AsetStatusBerperkara {
			riskLevel = "tinggi"
		}
		summary[riskLevel]++

		props := baseProperties(aset)
		props["risk_level"] = riskLevel
		props["keterangan"] = aset.Keterangan
		features = append(features, newFeature(aset, props))
	}

	response.Success(c, gin.H{
		"geojson": newCollection(features),
		"summary": summary,
	})
}

// GetLayerSebaranPerkara 案件分布图层：仅已确认涉案的资产
func (h *PetaHandler) GetLayerSebaranPerkara(c *gin.Context) {
	assets, err := h.asetService.GetForMapByStatuses(models.AsetStatusBerperkara)
	if err != nil {
		response.ServerError(c, "Gagal mengambil layer sebaran perkara")
		return
	}

	features := make([]GeoJSONFeature, 0, len(assets))
	for _, aset := range assets {
		props := baseProperties(aset)
		props["nilai_aset"] = aset.NilaiAset
		props["keterangan"] = aset.Keterangan
		features = append(features, newFeature(aset, props))
	}

	response.Success(c, newCollection(features))
}
