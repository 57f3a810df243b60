package models

import "strings"

// 角色常量，统一使用小写作为规范形式
const (
	RoleAdmin      = "admin"      // 管理员（Kantor Pertanahan）
	RoleDinasAset  = "dinas_aset" // 资产管理部门（Dinas Aset Pemkot）
	RoleBPN        = "bpn"        // 国家土地局（Badan Pertanahan Nasional）
	RoleTataRuang  = "tata_ruang" // 空间规划部门（Dinas Tata Ruang）
	RoleMasyarakat = "masyarakat" // 公众，仅限未登录的公开地图访问
)

// 权限代码常量，格式 "模块:操作"，区分大小写
const (
	// 资产管理
	PermAsetCreate  = "aset:create"
	PermAsetRead    = "aset:read"
	PermAsetReadAll = "aset:read_all"
	PermAsetUpdate  = "aset:update"
	PermAsetDelete  = "aset:delete"

	// 地图图层
	PermPetaView            = "peta:view"
	PermLayerUmum           = "layer:umum"
	PermLayerTataRuang      = "layer:tata_ruang"
	PermLayerPotensiPerkara = "layer:potensi_berperkara"
	PermLayerSebaranPerkara = "layer:sebaran_perkara"

	// 系统功能
	PermRiwayatView    = "riwayat:view"
	PermNotifikasiView = "notifikasi:view"
	PermBackupManage   = "backup:manage"
	PermUserManage     = "user:manage"

	// 仪表盘
	PermDashboardFull    = "dashboard:full"
	PermDashboardLimited = "dashboard:limited"
)

// RolePermissions 角色到权限集合的静态映射
// 进程启动后只读，并发读取无需加锁；masyarakat不在表内（无任何已认证权限）
var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermAsetCreate,
		PermAsetRead,
		PermAsetReadAll,
		PermAsetUpdate,
		PermAsetDelete,
		PermPetaView,
		PermLayerUmum,
		PermLayerTataRuang,
		PermLayerPotensiPerkara,
		PermLayerSebaranPerkara,
		PermRiwayatView,
		PermNotifikasiView,
		PermBackupManage,
		PermUserManage,
		PermDashboardFull,
	},
	RoleDinasAset: {
		PermAsetCreate,
		PermAsetRead,
		PermAsetReadAll,
		PermAsetUpdate,
		PermAsetDelete,
		PermPetaView,
		PermLayerUmum,
		PermLayerTataRuang,
		PermLayerPotensiPerkara,
		PermRiwayatView,
		PermNotifikasiView,
		PermDashboardFull,
	},
	RoleBPN: {
		PermAsetRead,
		PermAsetReadAll,
		PermPetaView,
		PermLayerUmum,
		PermLayerTataRuang,
		PermLayerPotensiPerkara,
		PermNotifikasiView,
		PermDashboardLimited,
	},
	RoleTataRuang: {
		PermAsetRead,
		PermAsetReadAll,
		PermPetaView,
		PermLayerUmum,
		PermLayerPotensiPerkara,
		PermLayerSebaranPerkara,
		PermNotifikasiView,
		PermDashboardLimited,
	},
}

// PermissionsFor 返回角色的权限集合
// 角色比较不区分大小写；未知角色返回空集合而不是错误
func PermissionsFor(role string) []string {
	return RolePermissions[strings.ToLower(role)]
}

// HasPermission 判断角色是否持有指定权限
func HasPermission(role, permission string) bool {
	for _, p := range PermissionsFor(role) {
		if p == permission {
			return true
		}
	}
	return false
}

// IsValidRole 判断角色是否在权限表内（可分配给后台用户的角色）
func IsValidRole(role string) bool {
	_, ok := RolePermissions[strings.ToLower(role)]
	return ok
}

// ValidRoles 返回权限表内的全部角色，用于用户管理接口的校验提示
func ValidRoles() []string {
	return []string{RoleAdmin, RoleDinasAset, RoleBPN, RoleTataRuang}
}
