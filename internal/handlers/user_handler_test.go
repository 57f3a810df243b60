package handlers

import (
	"net/http"
	"testing"

	"sinkrona/internal/models"
	"sinkrona/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUserStore 用户服务桩
type stubUserStore struct {
	user      *models.User
	oldStatus bool
}

func (s *stubUserStore) GetWithFiltersAndPage(filter services.UserFilter, page, pageSize int) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (s *stubUserStore) GetStats() (*services.UserStats, error) { return &services.UserStats{}, nil }

func (s *stubUserStore) GetByID(id uint) (*models.User, error) { return s.user, nil }

func (s *stubUserStore) Create(username, password, namaLengkap, email, role string, jabatan, instansi *string) (*models.User, error) {
	return s.user, nil
}

func (s *stubUserStore) Update(id uint, namaLengkap, email, role string, jabatan, instansi *string, statusAktif *bool) (*models.User, error) {
	return s.user, nil
}

func (s *stubUserStore) ResetPassword(id uint, newPassword string) (*models.User, error) {
	return s.user, nil
}

func (s *stubUserStore) ToggleStatus(id uint) (*models.User, bool, error) {
	return s.user, s.oldStatus, nil
}

func (s *stubUserStore) Delete(id uint) (*models.User, error) { return s.user, nil }

// 成功创建用户恰好产生一条CREATE审计，快照不含密码哈希
func TestUserCreateRecordsOneAuditEntry(t *testing.T) {
	store := &stubUserStore{
		user: &models.User{IDUser: 12, Username: "bpn_kota", NamaLengkap: "Petugas BPN", Role: models.RoleBPN, Password: "$2a$10$hash"},
	}
	recorder := &stubAuditRecorder{}
	h := NewUserHandler(store, recorder)

	body := `{"username":"bpn_kota","password":"rahasia1","nama_lengkap":"Petugas BPN","role":"bpn"}`
	c, w := newAuditTestContext(http.MethodPost, "/api/users", body, 1)

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, recorder.calls, 1)

	call := recorder.calls[0]
	assert.Equal(t, models.AksiCreate, call.aksi)
	assert.Equal(t, "users", call.tabel)
	require.NotNil(t, call.idReferensi)
	assert.Equal(t, uint(12), *call.idReferensi)
	assert.Equal(t, uint(1), call.userID)

	snapshot, ok := call.dataBaru.(gin.H)
	require.True(t, ok)
	assert.Equal(t, "bpn_kota", snapshot["username"])
	assert.NotContains(t, snapshot, "password")
}

// 成功删除用户恰好产生一条DELETE审计，只带变更前快照
func TestUserDeleteRecordsOneAuditEntry(t *testing.T) {
	store := &stubUserStore{
		user: &models.User{IDUser: 42, Username: "dinas_kota", Role: models.RoleDinasAset},
	}
	recorder := &stubAuditRecorder{}
	h := NewUserHandler(store, recorder)

	c, w := newAuditTestContext(http.MethodDelete, "/api/users/42", "", 1)
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	h.Delete(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, recorder.calls, 1)

	call := recorder.calls[0]
	assert.Equal(t, models.AksiDelete, call.aksi)
	assert.Equal(t, "users", call.tabel)
	assert.NotNil(t, call.dataLama)
	assert.Nil(t, call.dataBaru)
}

// 删除自己被拒绝且不产生审计
func TestUserSelfDeleteRejectedWithoutAudit(t *testing.T) {
	recorder := &stubAuditRecorder{}
	h := NewUserHandler(&stubUserStore{}, recorder)

	c, w := newAuditTestContext(http.MethodDelete, "/api/users/1", "", 1)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	h.Delete(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, recorder.calls)
}

// 状态切换恰好产生一条UPDATE审计，快照为前后状态
func TestUserToggleStatusRecordsOneAuditEntry(t *testing.T) {
	store := &stubUserStore{
		user:      &models.User{IDUser: 5, Username: "tata_kota", StatusAktif: false},
		oldStatus: true,
	}
	recorder := &stubAuditRecorder{}
	h := NewUserHandler(store, recorder)

	c, w := newAuditTestContext(http.MethodPut, "/api/users/5/toggle-status", "", 1)
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	h.ToggleStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, recorder.calls, 1)

	call := recorder.calls[0]
	assert.Equal(t, models.AksiUpdate, call.aksi)
	assert.Equal(t, gin.H{"status_aktif": true}, call.dataLama)
	assert.Equal(t, gin.H{"status_aktif": false}, call.dataBaru)
}
