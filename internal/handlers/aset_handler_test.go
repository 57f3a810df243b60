package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"sinkrona/internal/models"
	"sinkrona/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAsetStore 资产服务桩，记录变更调用并返回预置数据
type stubAsetStore struct {
	created    *models.Aset
	deleted    *models.Aset
	updateOld  *models.Aset
	updateNew  *models.Aset
	failCreate bool
}

func (s *stubAsetStore) GetWithFiltersAndPage(filter services.AsetFilter, page, pageSize int) ([]*models.Aset, int64, error) {
	return nil, 0, nil
}

func (s *stubAsetStore) GetStats() (*services.AsetStats, error) { return &services.AsetStats{}, nil }

func (s *stubAsetStore) GetForMap(status, jenis string) ([]*models.Aset, error) { return nil, nil }

func (s *stubAsetStore) GetByID(id uint) (*models.Aset, error) { return nil, nil }

func (s *stubAsetStore) Create(aset *models.Aset) error {
	if s.failCreate {
		return fmt.Errorf("Kode aset sudah digunakan")
	}
	aset.IDAset = 7
	s.created = aset
	return nil
}

func (s *stubAsetStore) Update(id uint, updates map[string]interface{}) (*models.Aset, *models.Aset, error) {
	return s.updateOld, s.updateNew, nil
}

func (s *stubAsetStore) Delete(id uint) (*models.Aset, error) { return s.deleted, nil }

// stubAsetNotifier 通知服务桩，只统计调用次数
type stubAsetNotifier struct {
	created       int
	statusChanged int
	deleted       int
}

func (n *stubAsetNotifier) NotifyAsetCreated(aset *models.Aset, createdBy string) { n.created++ }

func (n *stubAsetNotifier) NotifyAsetStatusChanged(aset *models.Aset, oldStatus, newStatus, changedBy string) {
	n.statusChanged++
}

func (n *stubAsetNotifier) NotifyAsetDeleted(aset *models.Aset, deletedBy string) { n.deleted++ }

// 成功创建恰好产生一条CREATE审计，只带变更后快照
func TestAsetCreateRecordsOneAuditEntry(t *testing.T) {
	store := &stubAsetStore{}
	recorder := &stubAuditRecorder{}
	notifier := &stubAsetNotifier{}
	h := NewAsetHandler(store, recorder, notifier)

	body := `{"kode_aset":"AST-001","nama_aset":"Tanah Kantor","lokasi":"Jl. Merdeka No. 1"}`
	c, w := newAuditTestContext(http.MethodPost, "/api/aset", body, 7)

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, recorder.calls, 1)

	call := recorder.calls[0]
	assert.Equal(t, models.AksiCreate, call.aksi)
	assert.Equal(t, "aset", call.tabel)
	require.NotNil(t, call.idReferensi)
	assert.Equal(t, uint(7), *call.idReferensi)
	assert.Nil(t, call.dataLama)
	assert.NotNil(t, call.dataBaru)
	assert.Equal(t, uint(7), call.userID)
	assert.Equal(t, 1, notifier.created)
}

// 创建失败不产生审计
func TestAsetCreateFailureRecordsNoAudit(t *testing.T) {
	store := &stubAsetStore{failCreate: true}
	recorder := &stubAuditRecorder{}
	h := NewAsetHandler(store, recorder, &stubAsetNotifier{})

	body := `{"kode_aset":"AST-001","nama_aset":"Tanah Kantor","lokasi":"Jl. Merdeka No. 1"}`
	c, w := newAuditTestContext(http.MethodPost, "/api/aset", body, 7)

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, recorder.calls)
}

// 成功更新恰好产生一条UPDATE审计，带变更前后快照；状态变化触发通知
func TestAsetUpdateRecordsOneAuditEntry(t *testing.T) {
	store := &stubAsetStore{
		updateOld: &models.Aset{IDAset: 3, KodeAset: "AST-003", NamaAset: "Tanah Pasar", Status: models.AsetStatusAktif},
		updateNew: &models.Aset{IDAset: 3, KodeAset: "AST-003", NamaAset: "Tanah Pasar", Status: models.AsetStatusBerperkara},
	}
	recorder := &stubAuditRecorder{}
	notifier := &stubAsetNotifier{}
	h := NewAsetHandler(store, recorder, notifier)

	c, w := newAuditTestContext(http.MethodPut, "/api/aset/3", `{"status":"Berperkara"}`, 7)
	c.Params = gin.Params{{Key: "id", Value: "3"}}

	h.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, recorder.calls, 1)

	call := recorder.calls[0]
	assert.Equal(t, models.AksiUpdate, call.aksi)
	assert.Equal(t, "aset", call.tabel)
	assert.NotNil(t, call.dataLama)
	assert.NotNil(t, call.dataBaru)
	assert.Equal(t, 1, notifier.statusChanged)
}

// 删除id为42的资产恰好产生一条DELETE审计：tabel=aset、引用42、
// 只带变更前快照、操作者为user 7
func TestAsetDeleteRecordsOldSnapshotOnly(t *testing.T) {
	store := &stubAsetStore{
		deleted: &models.Aset{IDAset: 42, KodeAset: "AST-042", NamaAset: "Tanah Kelurahan", Lokasi: "Jl. Raya"},
	}
	recorder := &stubAuditRecorder{}
	notifier := &stubAsetNotifier{}
	h := NewAsetHandler(store, recorder, notifier)

	c, w := newAuditTestContext(http.MethodDelete, "/api/aset/42", "", 7)
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	h.Delete(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, recorder.calls, 1)

	call := recorder.calls[0]
	assert.Equal(t, models.AksiDelete, call.aksi)
	assert.Equal(t, "aset", call.tabel)
	require.NotNil(t, call.idReferensi)
	assert.Equal(t, uint(42), *call.idReferensi)
	assert.Equal(t, store.deleted, call.dataLama)
	assert.Nil(t, call.dataBaru)
	assert.Equal(t, uint(7), call.userID)
	assert.Equal(t, 1, notifier.deleted)
}

// 白名单外的字段（主键、created_by、时间戳）必须被丢弃
func TestFilterAsetUpdates(t *testing.T) {
	body := map[string]interface{}{
		"nama_aset":  "Tanah Baru",
		"status":     "Berperkara",
		"id_aset":    99,
		"created_by": 1,
		"created_at": "2020-01-01",
		"creator":    map[string]interface{}{"id_user": 1},
	}

	updates := filterAsetUpdates(body)

	assert.Equal(t, map[string]interface{}{
		"nama_aset": "Tanah Baru",
		"status":    "Berperkara",
	}, updates)
}

func TestFilterAsetUpdatesEmpty(t *testing.T) {
	assert.Empty(t, filterAsetUpdates(map[string]interface{}{"id_aset": 1}))
	assert.Empty(t, filterAsetUpdates(map[string]interface{}{}))
}
