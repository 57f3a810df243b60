package services

import (
	"encoding/json"
	"testing"

	"sinkrona/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestBuildEntryDeleteShape(t *testing.T) {
	s := NewAuditService(nil)

	id := uint(42)
	old := map[string]interface{}{"kode_aset": "AST-042", "nama_aset": "Tanah Kelurahan"}

	entry, err := s.buildEntry(AuditParams{
		Aksi:        models.AksiDelete,
		Tabel:       "aset",
		IDReferensi: &id,
		DataLama:    old,
		Keterangan:  "Menghapus aset Tanah Kelurahan",
		UserID:      7,
		Meta:        &RequestMeta{IPAddress: "10.0.0.5", UserAgent: "curl/8.0"},
	})
	require.NoError(t, err)

	assert.Equal(t, "DELETE", entry.Aksi)
	assert.Equal(t, "aset", entry.Tabel)
	require.NotNil(t, entry.IDReferensi)
	assert.Equal(t, uint(42), *entry.IDReferensi)
	assert.Equal(t, uint(7), entry.UserID)

	// DELETE只带变更前快照
	assert.NotEmpty(t, entry.DataLama)
	assert.Empty(t, entry.DataBaru)

	var snapshot map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.DataLama, &snapshot))
	assert.Equal(t, "AST-042", snapshot["kode_aset"])

	require.NotNil(t, entry.IPAddress)
	assert.Equal(t, "10.0.0.5", *entry.IPAddress)
	require.NotNil(t, entry.UserAgent)
	assert.Equal(t, "curl/8.0", *entry.UserAgent)
	require.NotNil(t, entry.Keterangan)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestBuildEntryUpdateShape(t *testing.T) {
	s := NewAuditService(nil)

	id := uint(3)
	entry, err := s.buildEntry(AuditParams{
		Aksi:        models.AksiUpdate,
		Tabel:       "aset",
		IDReferensi: &id,
		DataLama:    map[string]string{"status": "Aktif"},
		DataBaru:    map[string]string{"status": "Berperkara"},
		UserID:      1,
	})
	require.NoError(t, err)

	// UPDATE带前后两个快照
	assert.NotEmpty(t, entry.DataLama)
	assert.NotEmpty(t, entry.DataBaru)

	// 未提供的可选字段保持为空
	assert.Nil(t, entry.Keterangan)
	assert.Nil(t, entry.IPAddress)
	assert.Nil(t, entry.UserAgent)
}

func TestBuildEntryLoginShape(t *testing.T) {
	s := NewAuditService(nil)

	id := uint(5)
	entry, err := s.buildEntry(AuditParams{
		Aksi:        models.AksiLogin,
		Tabel:       "users",
		IDReferensi: &id,
		Keterangan:  "User budi login",
		UserID:      5,
	})
	require.NoError(t, err)

	// LOGIN不带快照，引用记录即操作者本人
	assert.Empty(t, entry.DataLama)
	assert.Empty(t, entry.DataBaru)
	assert.Equal(t, entry.UserID, *entry.IDReferensi)
}

func TestBuildEntryUnserializableSnapshot(t *testing.T) {
	s := NewAuditService(nil)

	_, err := s.buildEntry(AuditParams{
		Aksi:     models.AksiCreate,
		Tabel:    "aset",
		DataBaru: make(chan int), // 无法序列化为JSON
		UserID:   1,
	})
	assert.Error(t, err)
}

// unreachableDB 指向不可达地址的gorm连接，任何写入都会失败
func unreachableDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 port=1 user=none dbname=none sslmode=disable connect_timeout=1",
	}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

// 落库失败必须被吞掉，调用方不感知
func TestLogSwallowsPersistenceFailure(t *testing.T) {
	s := NewAuditService(unreachableDB(t))

	assert.NotPanics(t, func() {
		s.LogCreate("aset", 1, map[string]string{"kode_aset": "AST-001"}, "Menambahkan aset", 1, nil)
		s.LogDelete("aset", 1, map[string]string{"kode_aset": "AST-001"}, "Menghapus aset", 1, nil)
		s.LogLogin(1, "", nil)
		s.LogLogout(1, "", nil)
	})
}

// 快照序列化失败同样被吞掉
func TestLogSwallowsMarshalFailure(t *testing.T) {
	s := NewAuditService(nil)

	assert.NotPanics(t, func() {
		s.Log(AuditParams{
			Aksi:     models.AksiCreate,
			Tabel:    "aset",
			DataBaru: make(chan int),
			UserID:   1,
		})
	})
}

func TestMetaFromContextNil(t *testing.T) {
	assert.Nil(t, MetaFromContext(nil))
}
