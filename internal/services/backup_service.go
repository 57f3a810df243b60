package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"sinkrona/internal/models"
	"sinkrona/pkg/logger"

	"gorm.io/gorm"
)

// BackupService 数据备份服务
type BackupService struct {
	db  *gorm.DB
	dir string
}

// BackupFile 备份文件信息
type BackupFile struct {
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// BackupStats 备份统计信息
type BackupStats struct {
	TotalAset    int64      `json:"totalAset"`
	TotalUser    int64      `json:"totalUser"`
	TotalRiwayat int64      `json:"totalRiwayat"`
	TotalFiles   int64      `json:"totalFiles"`
	TotalSize    int64      `json:"totalSize"`
	LastBackup   *time.Time `json:"lastBackup"`
}

// BackupTables 备份文件内的各表数据
// User的密码哈希在模型层已排除出JSON序列化
type BackupTables struct {
	Aset    []*models.Aset    `json:"aset,omitempty"`
	User    []*models.User    `json:"user,omitempty"`
	Riwayat []*models.Riwayat `json:"riwayat,omitempty"`
}

// BackupPayload 备份文件的JSON结构
type BackupPayload struct {
	Version    string       `json:"version"`
	ExportedAt time.Time    `json:"exported_at"`
	ExportedBy string       `json:"exported_by"`
	Tables     BackupTables `json:"tables"`
}

// ImportResult 导入结果汇总
type ImportResult struct {
	Imported map[string]int `json:"imported"`
	Skipped  map[string]int `json:"skipped"`
	Errors   []string       `json:"errors"`
}

const backupVersion = "1.0"

func NewBackupService(db *gorm.DB, dir string) *BackupService {
	return &BackupService{db: db, dir: dir}
}

// ensureDir 确保备份目录存在
func (s *BackupService) ensureDir() error {
	return os.MkdirAll(s.dir, 0755)
}

// normalizeTables 表选择去重过滤，默认只导出aset
func normalizeTables(tables []string) []string {
	allowed := map[string]bool{"aset": true, "user": true, "riwayat": true}
	result := make([]string, 0, len(tables))
	seen := make(map[string]bool)
	for _, table := range tables {
		name := strings.ToLower(strings.TrimSpace(table))
		if allowed[name] && !seen[name] {
			result = append(result, name)
			seen[name] = true
		}
	}
	if len(result) == 0 {
		result = []string{"aset"}
	}
	return result
}

// ExportJSON 导出选定表为JSON备份文件
// 返回文件名和各表导出的记录数
func (s *BackupService) ExportJSON(username string, tables []string) (string, map[string]int, error) {
	if err := s.ensureDir(); err != nil {
		return "", nil, fmt.Errorf("gagal membuat direktori backup: %v", err)
	}

	payload := &BackupPayload{
		Version:    backupVersion,
		ExportedAt: time.Now(),
		ExportedBy: username,
	}
	counts := make(map[string]int)

	for _, table := range normalizeTables(tables) {
		switch table {
		case "aset":
			var assets []*models.Aset
			if err := s.db.Order("id_aset ASC").Find(&assets).Error; err != nil {
				return "", nil, err
			}
			payload.Tables.Aset = assets
			counts["aset"] = len(assets)
		case "user":
			var users []*models.User
			if err := s.db.Order("id_user ASC").Find(&users).Error; err != nil {
				return "", nil, err
			}
			payload.Tables.User = users
			counts["user"] = len(users)
		case "riwayat":
			var riwayat []*models.Riwayat
			if err := s.db.Order("id_riwayat ASC").Find(&riwayat).Error; err != nil {
				return "", nil, err
			}
			payload.Tables.Riwayat = riwayat
			counts["riwayat"] = len(riwayat)
		}
	}

	filename := backupFilename(username)
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", nil, err
	}
	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0644); err != nil {
		return "", nil, err
	}

	logger.GetLogger().Infof("备份导出完成: %s (%v, 操作人=%s)", filename, counts, username)
	return filename, counts, nil
}

// csv列顺序
var csvHeader = []string{
	"kode_aset", "nama_aset", "lokasi", "koordinat_lat", "koordinat_long",
	"luas", "status", "jenis_aset", "nilai_aset", "tahun_perolehan",
	"nomor_sertifikat", "status_sertifikat", "keterangan",
}

// ExportCSV 导出全部资产为CSV，内容直接返回给调用方下载，不落盘
func (s *BackupService) ExportCSV() (string, []byte, int, error) {
	var assets []*models.Aset
	if err := s.db.Order("id_aset ASC").Find(&assets).Error; err != nil {
		return "", nil, 0, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvHeader); err != nil {
		return "", nil, 0, err
	}
	for _, aset := range assets {
		if err := writer.Write(asetToCSVRecord(aset)); err != nil {
			return "", nil, 0, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", nil, 0, err
	}

	filename := fmt.Sprintf("aset_export_%s.csv", time.Now().Format("20060102_150405"))
	return filename, buf.Bytes(), len(assets), nil
}

// asetToCSVRecord 资产转CSV行
func asetToCSVRecord(aset *models.Aset) []string {
	return []string{
		aset.KodeAset,
		aset.NamaAset,
		aset.Lokasi,
		floatPtrString(aset.KoordinatLat),
		floatPtrString(aset.KoordinatLong),
		floatPtrString(aset.Luas),
		aset.Status,
		strPtrString(aset.JenisAset),
		floatPtrString(aset.NilaiAset),
		intPtrString(aset.TahunPerolehan),
		strPtrString(aset.NomorSertifikat),
		strPtrString(aset.StatusSertifikat),
		strPtrString(aset.Keterangan),
	}
}

func floatPtrString(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func intPtrString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func strPtrString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// backupFilename 生成备份文件名 backup_<时间戳>_<用户名>.json
func backupFilename(username string) string {
	ts := time.Now().Format("20060102_150405")
	return fmt.Sprintf("backup_%s_%s.json", ts, username)
}

// ImportJSON 从备份目录中的JSON文件导入资产，整个过程在单个事务内执行
// overwrite为true时清空aset表后全量重建，否则按nama_aset跳过已存在记录
func (s *BackupService) ImportJSON(filename string, overwrite bool, actorID uint) (*ImportResult, error) {
	path, err := s.ResolveFile(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gagal membaca file backup: %v", err)
	}

	var payload BackupPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("File backup tidak valid: %v", err)
	}
	if len(payload.Tables.Aset) == 0 {
		return nil, fmt.Errorf("File backup tidak berisi data aset")
	}

	result := &ImportResult{
		Imported: make(map[string]int),
		Skipped:  make(map[string]int),
		Errors:   []string{},
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if overwrite {
			if err := tx.Where("1 = 1").Delete(&models.Aset{}).Error; err != nil {
				return err
			}
		}

		imported := 0
		skipped := 0
		for _, aset := range payload.Tables.Aset {
			if aset.KodeAset == "" || aset.NamaAset == "" {
				skipped++
				continue
			}

			if !overwrite {
				var count int64
				if err := tx.Model(&models.Aset{}).Where("nama_aset = ?", aset.NamaAset).Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					skipped++
					continue
				}
			}

			record := *aset
			record.IDAset = 0 // 主键由数据库自增
			record.Creator = nil
			record.CreatedBy = actorID
			if record.Status == "" {
				record.Status = models.AsetStatusAktif
			}
			if err := tx.Create(&record).Error; err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Aset %s: %v", record.KodeAset, err))
				return err
			}
			imported++
		}

		result.Imported["aset"] = imported
		result.Skipped["aset"] = skipped
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.GetLogger().Infof("备份导入完成: %s 新增=%d 跳过=%d",
		filename, result.Imported["aset"], result.Skipped["aset"])
	return result, nil
}

// ListFiles 备份文件列表，按创建时间倒序
func (s *BackupService) ListFiles() ([]BackupFile, error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	files := make([]BackupFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isBackupFilename(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, BackupFile{
			Filename:  entry.Name(),
			Size:      info.Size(),
			CreatedBy: backupCreator(entry.Name()),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	return files, nil
}

// backupCreator 从文件名 backup_<日期>_<时间>_<用户名>.json 解析操作人
func backupCreator(filename string) string {
	name := strings.TrimSuffix(filename, ".json")
	parts := strings.Split(name, "_")
	if len(parts) < 4 {
		return "unknown"
	}
	return strings.Join(parts[3:], "_")
}

// GetStats 备份统计：行数与文件清单汇总
func (s *BackupService) GetStats() (*BackupStats, error) {
	stats := &BackupStats{}

	if err := s.db.Model(&models.Aset{}).Count(&stats.TotalAset).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).Count(&stats.TotalUser).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Riwayat{}).Count(&stats.TotalRiwayat).Error; err != nil {
		return nil, err
	}

	files, err := s.ListFiles()
	if err != nil {
		return nil, err
	}
	stats.TotalFiles = int64(len(files))
	for _, file := range files {
		stats.TotalSize += file.Size
	}
	if len(files) > 0 {
		last := files[0].CreatedAt
		stats.LastBackup = &last
	}
	return stats, nil
}

// ResolveFile 解析备份文件的完整路径，防止路径穿越
func (s *BackupService) ResolveFile(filename string) (string, error) {
	if !isBackupFilename(filename) {
		return "", fmt.Errorf("Nama file backup tidak valid")
	}

	path := filepath.Join(s.dir, filepath.Base(filename))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("File backup tidak ditemukan")
	}
	return path, nil
}

// DeleteFile 删除备份文件
func (s *BackupService) DeleteFile(filename string) error {
	path, err := s.ResolveFile(filename)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// isBackupFilename 校验备份文件名格式：backup_前缀的json且不含路径成分
func isBackupFilename(filename string) bool {
	if filename == "" || filename != filepath.Base(filename) {
		return false
	}
	if strings.Contains(filename, "..") {
		return false
	}
	return strings.HasPrefix(filename, "backup_") && strings.HasSuffix(filename, ".json")
}
