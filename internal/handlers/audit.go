package handlers

import "sinkrona/internal/services"

// auditRecorder 处理器对审计服务的依赖面，由*services.AuditService实现
// 所有方法都不返回错误：审计失败不影响主业务操作
type auditRecorder interface {
	Log(params services.AuditParams)
	LogCreate(tabel string, idReferensi uint, dataBaru interface{}, keterangan string, userID uint, meta *services.RequestMeta)
	LogUpdate(tabel string, idReferensi uint, dataLama, dataBaru interface{}, keterangan string, userID uint, meta *services.RequestMeta)
	LogDelete(tabel string, idReferensi uint, dataLama interface{}, keterangan string, userID uint, meta *services.RequestMeta)
	LogLogin(userID uint, keterangan string, meta *services.RequestMeta)
	LogLogout(userID uint, keterangan string, meta *services.RequestMeta)
}
