package main

import (
	"fmt"

	"sinkrona/internal/database"
	"sinkrona/internal/models"
	"sinkrona/pkg/logger"

	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	if err := createDefaultUsers(db); err != nil {
		return fmt.Errorf("创建默认用户失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// seedUser 种子用户定义
type seedUser struct {
	Username    string
	Password    string
	NamaLengkap string
	Email       string
	Role        string
	Instansi    string
}

// createDefaultUsers 每个角色创建一个默认账号，已存在则跳过
// 默认密码仅供首次部署，上线后必须通过用户管理重置
func createDefaultUsers(db *gorm.DB) error {
	seeds := []seedUser{
		{"admin", "admin123", "Administrator", "admin@sinkrona.go.id", models.RoleAdmin, "Kantor Pertanahan"},
		{"dinas_aset", "dinas123", "Petugas Dinas Aset", "aset@sinkrona.go.id", models.RoleDinasAset, "Dinas Aset Pemkot"},
		{"bpn", "bpn123", "Petugas BPN", "bpn@sinkrona.go.id", models.RoleBPN, "Badan Pertanahan Nasional"},
		{"tata_ruang", "tataruang123", "Petugas Tata Ruang", "tataruang@sinkrona.go.id", models.RoleTataRuang, "Dinas Tata Ruang"},
	}

	for _, seed := range seeds {
		var count int64
		db.Model(&models.User{}).Where("username = ?", seed.Username).Count(&count)
		if count > 0 {
			continue
		}

		instansi := seed.Instansi
		user := &models.User{
			Username:    seed.Username,
			NamaLengkap: seed.NamaLengkap,
			Email:       seed.Email,
			Role:        seed.Role,
			Instansi:    &instansi,
			StatusAktif: true,
		}
		if err := user.SetPassword(seed.Password); err != nil {
			return err
		}
		if err := db.Create(user).Error; err != nil {
			return err
		}

		logger.GetLogger().Infof("默认用户创建成功: %s (role=%s)", seed.Username, seed.Role)
	}

	return nil
}
