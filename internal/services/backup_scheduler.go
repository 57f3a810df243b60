package services

import (
	"fmt"

	"sinkrona/pkg/logger"

	"github.com/robfig/cron/v3"
)

// BackupScheduler 自动备份调度器
type BackupScheduler struct {
	backupService *BackupService
	cron          *cron.Cron
	cronSpec      string
	running       bool
}

// 自动备份任务的操作人标识
const scheduledBackupUser = "sistem"

// NewBackupScheduler 创建自动备份调度器，cronSpec为空时调度器不启动
func NewBackupScheduler(backupService *BackupService, cronSpec string) *BackupScheduler {
	return &BackupScheduler{
		backupService: backupService,
		cron:          cron.New(),
		cronSpec:      cronSpec,
	}
}

// Start 启动调度器
func (s *BackupScheduler) Start() error {
	if s.running {
		return fmt.Errorf("调度器已经在运行")
	}
	if s.cronSpec == "" {
		logger.GetLogger().Info("未配置自动备份cron表达式，跳过备份调度器")
		return nil
	}

	_, err := s.cron.AddFunc(s.cronSpec, s.runBackup)
	if err != nil {
		return fmt.Errorf("无效的备份cron表达式 %q: %v", s.cronSpec, err)
	}

	s.cron.Start()
	s.running = true
	logger.GetLogger().Infof("自动备份调度器启动成功 (cron=%s)", s.cronSpec)
	return nil
}

// Stop 停止调度器
func (s *BackupScheduler) Stop() {
	if !s.running {
		return
	}
	logger.GetLogger().Info("停止自动备份调度器")
	s.cron.Stop()
	s.running = false
}

func (s *BackupScheduler) runBackup() {
	filename, counts, err := s.backupService.ExportJSON(scheduledBackupUser, []string{"aset"})
	if err != nil {
		logger.GetLogger().Errorf("自动备份失败: %v", err)
		return
	}
	logger.GetLogger().Infof("自动备份完成: %s (%d条资产)", filename, counts["aset"])
}
