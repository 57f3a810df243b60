package models

import (
	"time"

	"gorm.io/datatypes"
)

// Riwayat 审计日志模型
// 只新增不修改，被引用的记录删除后日志仍保留（无外键级联）
type Riwayat struct {
	IDRiwayat   uint           `json:"id_riwayat" gorm:"column:id_riwayat;primaryKey"`
	Aksi        string         `json:"aksi" gorm:"not null;size:20;index"`
	Tabel       string         `json:"tabel" gorm:"not null;size:50;index"`
	IDReferensi *uint          `json:"id_referensi" gorm:"index"`
	DataLama    datatypes.JSON `json:"data_lama" gorm:"type:jsonb"` // 变更前快照
	DataBaru    datatypes.JSON `json:"data_baru" gorm:"type:jsonb"` // 变更后快照
	Keterangan  *string        `json:"keterangan" gorm:"type:text"`
	IPAddress   *string        `json:"ip_address" gorm:"size:50"`
	UserAgent   *string        `json:"user_agent" gorm:"type:text"`
	UserID      uint           `json:"user_id" gorm:"not null;index"`
	CreatedAt   time.Time      `json:"created_at"`

	// 关联关系
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:IDUser"`
}

// TableName 表名
func (r *Riwayat) TableName() string {
	return "riwayat"
}

// 审计动作常量
const (
	AksiCreate = "CREATE"
	AksiUpdate = "UPDATE"
	AksiDelete = "DELETE"
	AksiLogin  = "LOGIN"
	AksiLogout = "LOGOUT"
)
