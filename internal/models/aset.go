package models

import (
	"time"

	"gorm.io/datatypes"
)

// Aset 土地资产模型
type Aset struct {
	IDAset           uint           `json:"id_aset" gorm:"column:id_aset;primaryKey"`
	KodeAset         string         `json:"kode_aset" gorm:"unique;not null;size:50;index"`
	NamaAset         string         `json:"nama_aset" gorm:"not null;size:150"`
	Lokasi           string         `json:"lokasi" gorm:"type:text;not null"`
	KoordinatLat     *float64       `json:"koordinat_lat" gorm:"type:decimal(10,8)"`
	KoordinatLong    *float64       `json:"koordinat_long" gorm:"type:decimal(11,8)"`
	Luas             *float64       `json:"luas" gorm:"type:decimal(15,2)"` // 面积（平方米）
	Status           string         `json:"status" gorm:"size:30;default:'Aktif';index"`
	JenisAset        *string        `json:"jenis_aset" gorm:"size:50;index"`
	NilaiAset        *float64       `json:"nilai_aset" gorm:"type:decimal(20,2)"` // 估值
	TahunPerolehan   *int           `json:"tahun_perolehan"`
	NomorSertifikat  *string        `json:"nomor_sertifikat" gorm:"size:100"`
	StatusSertifikat *string        `json:"status_sertifikat" gorm:"size:50"`
	FotoAset         *string        `json:"foto_aset" gorm:"size:255"`
	DokumenPendukung datatypes.JSON `json:"dokumen_pendukung" gorm:"type:jsonb"`
	Keterangan       *string        `json:"keterangan" gorm:"type:text"`
	CreatedBy        uint           `json:"created_by" gorm:"not null;index"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	// 关联关系
	Creator *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy;references:IDUser"`
}

// TableName 表名
func (a *Aset) TableName() string {
	return "aset"
}

// 资产状态常量
const (
	AsetStatusAktif           = "Aktif"
	AsetStatusBerperkara      = "Berperkara"          // 涉案
	AsetStatusIndikasiPerkara = "Indikasi Berperkara" // 有涉案迹象
	AsetStatusTidakAktif      = "Tidak Aktif"
)

// HasKoordinat 是否有坐标，可在地图上展示
func (a *Aset) HasKoordinat() bool {
	return a.KoordinatLat != nil && a.KoordinatLong != nil
}
