package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"sinkrona/internal/models"
	"sinkrona/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 备份文件操作针对文件而非数据行，审计不得引用任何记录id
func TestBackupDeleteAuditsWithoutRecordReference(t *testing.T) {
	dir := t.TempDir()
	filename := "backup_20260101_120000_admin.json"
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte("{}"), 0644))

	recorder := &stubAuditRecorder{}
	h := NewBackupHandler(services.NewBackupService(nil, dir), recorder)

	c, w := newAuditTestContext(http.MethodDelete, "/api/backup/"+filename, "", 1)
	c.Params = gin.Params{{Key: "filename", Value: filename}}

	h.Delete(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, recorder.calls, 1)

	call := recorder.calls[0]
	assert.Equal(t, models.AksiDelete, call.aksi)
	assert.Equal(t, "backup", call.tabel)
	assert.Nil(t, call.idReferensi)
	assert.Equal(t, gin.H{"filename": filename}, call.dataLama)
	assert.Equal(t, uint(1), call.userID)

	// 文件确已删除
	_, err := os.Stat(filepath.Join(dir, filename))
	assert.True(t, os.IsNotExist(err))
}

// 删除不存在的文件不产生审计
func TestBackupDeleteMissingFileRecordsNoAudit(t *testing.T) {
	recorder := &stubAuditRecorder{}
	h := NewBackupHandler(services.NewBackupService(nil, t.TempDir()), recorder)

	c, w := newAuditTestContext(http.MethodDelete, "/api/backup/backup_x.json", "", 1)
	c.Params = gin.Params{{Key: "filename", Value: "backup_x.json"}}

	h.Delete(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, recorder.calls)
}
