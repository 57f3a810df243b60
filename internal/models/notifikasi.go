package models

import "time"

// Notifikasi 通知模型
type Notifikasi struct {
	IDNotifikasi   uint       `json:"id_notifikasi" gorm:"column:id_notifikasi;primaryKey"`
	UserID         uint       `json:"user_id" gorm:"not null;index"`
	Judul          string     `json:"judul" gorm:"not null;size:150"`
	Pesan          string     `json:"pesan" gorm:"type:text;not null"`
	Tipe           string     `json:"tipe" gorm:"size:20;default:'info'"`
	Kategori       string     `json:"kategori" gorm:"size:20;default:'sistem';index"`
	ReferensiID    *uint      `json:"referensi_id"`
	ReferensiTabel *string    `json:"referensi_tabel" gorm:"size:50"`
	Dibaca         bool       `json:"dibaca" gorm:"default:false;index"`
	DibacaAt       *time.Time `json:"dibaca_at"`
	CreatedAt      time.Time  `json:"created_at"`

	// 关联关系
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:IDUser"`
}

// TableName 表名
func (n *Notifikasi) TableName() string {
	return "notifikasi"
}

// 通知类型常量
const (
	NotifTipeInfo    = "info"
	NotifTipeWarning = "warning"
	NotifTipeSuccess = "success"
	NotifTipeError   = "error"
)

// 通知分类常量
const (
	NotifKategoriAset    = "aset"
	NotifKategoriUser    = "user"
	NotifKategoriSistem  = "sistem"
	NotifKategoriRiwayat = "riwayat"
)
