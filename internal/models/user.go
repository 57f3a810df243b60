package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User 用户模型
type User struct {
	IDUser      uint       `json:"id_user" gorm:"column:id_user;primaryKey"`
	Username    string     `json:"username" gorm:"unique;not null;size:50;index"`
	Password    string     `json:"-" gorm:"not null;size:255"` // bcrypt哈希
	NamaLengkap string     `json:"nama_lengkap" gorm:"not null;size:100"`
	Email       string     `json:"email" gorm:"size:100;index"`
	Role        string     `json:"role" gorm:"not null;size:30;index"`
	Jabatan     *string    `json:"jabatan" gorm:"size:100"`  // 职务
	Instansi    *string    `json:"instansi" gorm:"size:100"` // 所属机构
	StatusAktif bool       `json:"status_aktif" gorm:"default:true"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName 表名
func (u *User) TableName() string {
	return "users"
}

// SetPassword 设置密码
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
