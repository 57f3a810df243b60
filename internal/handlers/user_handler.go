package handlers

import (
	"fmt"
	"strconv"

	"sinkrona/internal/middleware"
	"sinkrona/internal/models"
	"sinkrona/internal/services"
	"sinkrona/pkg/pagination"
	"sinkrona/pkg/response"

	"github.com/gin-gonic/gin"
)

// userStore 用户处理器对用户服务的依赖面，由*services.UserService实现
type userStore interface {
	GetWithFiltersAndPage(filter services.UserFilter, page, pageSize int) ([]*models.User, int64, error)
	GetStats() (*services.UserStats, error)
	GetByID(id uint) (*models.User, error)
	Create(username, password, namaLengkap, email, role string, jabatan, instansi *string) (*models.User, error)
	Update(id uint, namaLengkap, email, role string, jabatan, instansi *string, statusAktif *bool) (*models.User, error)
	ResetPassword(id uint, newPassword string) (*models.User, error)
	ToggleStatus(id uint) (*models.User, bool, error)
	Delete(id uint) (*models.User, error)
}

type UserHandler struct {
	userService  userStore
	auditService auditRecorder
}

func NewUserHandler(userService userStore, auditService auditRecorder) *UserHandler {
	return &UserHandler{
		userService:  userService,
		auditService: auditService,
	}
}

// auditSnapshot 用户的审计快照，不含密码哈希
func auditSnapshot(user *models.User) gin.H {
	return gin.H{
		"id_user":      user.IDUser,
		"username":     user.Username,
		"nama_lengkap": user.NamaLengkap,
		"email":        user.Email,
		"role":         user.Role,
		"jabatan":      user.Jabatan,
		"instansi":     user.Instansi,
		"status_aktif": user.StatusAktif,
	}
}

// List 用户列表
func (h *UserHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	var status *bool
	if raw := c.Query("status"); raw != "" {
		val := raw == "true" || raw == "aktif"
		status = &val
	}

	filter := services.UserFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Status: status,
		Sort:   c.Query("sort"),
		Order:  c.Query("order"),
	}

	users, total, err := h.userService.GetWithFiltersAndPage(filter, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "Gagal mengambil data user")
		return
	}

	response.SuccessWithPage(c, users, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetStats 用户统计
func (h *UserHandler) GetStats(c *gin.Context) {
	stats, err := h.userService.GetStats()
	if err != nil {
		response.ServerError(c, "Gagal mengambil statistik user")
		return
	}
	response.Success(c, stats)
}

// GetRoles 可分配角色及其权限列表
func (h *UserHandler) GetRoles(c *gin.Context) {
	roles := make([]gin.H, 0, len(models.ValidRoles()))
	for _, role := range models.ValidRoles() {
		roles = append(roles, gin.H{
			"role":        role,
			"permissions": models.PermissionsFor(role),
		})
	}
	response.Success(c, roles)
}

// GetByID 用户详情
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID user tidak valid")
		return
	}

	user, err := h.userService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "User tidak ditemukan")
		return
	}
	response.Success(c, user)
}

type CreateUserRequest struct {
	Username    string  `json:"username" binding:"required"`
	Password    string  `json:"password" binding:"required"`
	NamaLengkap string  `json:"nama_lengkap" binding:"required"`
	Email       string  `json:"email" binding:"omitempty,email"`
	Role        string  `json:"role" binding:"required"`
	Jabatan     *string `json:"jabatan"`
	Instansi    *string `json:"instansi"`
}

// Create 创建用户
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Data user tidak lengkap: "+err.Error())
		return
	}

	user, err := h.userService.Create(req.Username, req.Password, req.NamaLengkap, req.Email,
		req.Role, req.Jabatan, req.Instansi)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.auditService.LogCreate("users", user.IDUser, auditSnapshot(user),
		fmt.Sprintf("Menambahkan user %s (role %s)", user.Username, user.Role),
		c.GetUint(middleware.CtxUserID), services.MetaFromContext(c))

	response.Created(c, "User berhasil dibuat", user)
}

type UpdateUserRequest struct {
	NamaLengkap string  `json:"nama_lengkap"`
	Email       string  `json:"email" binding:"omitempty,email"`
	Role        string  `json:"role"`
	Jabatan     *string `json:"jabatan"`
	Instansi    *string `json:"instansi"`
	StatusAktif *bool   `json:"status_aktif"`
}

// Update 更新用户资料
func (h *UserHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID user tidak valid")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Data user tidak valid: "+err.Error())
		return
	}

	old, err := h.userService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "User tidak ditemukan")
		return
	}
	oldSnapshot := auditSnapshot(old)

	user, err := h.userService.Update(uint(id), req.NamaLengkap, req.Email, req.Role,
		req.Jabatan, req.Instansi, req.StatusAktif)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.auditService.LogUpdate("users", user.IDUser, oldSnapshot, auditSnapshot(user),
		fmt.Sprintf("Mengubah data user %s", user.Username),
		c.GetUint(middleware.CtxUserID), services.MetaFromContext(c))

	response.SuccessWithMessage(c, "User berhasil diperbarui", user)
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

// ResetPassword 重置密码
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID user tidak valid")
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Password baru wajib diisi")
		return
	}

	user, err := h.userService.ResetPassword(uint(id), req.NewPassword)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.auditService.LogUpdate("users", user.IDUser, nil, nil,
		fmt.Sprintf("Reset password user %s", user.Username),
		c.GetUint(middleware.CtxUserID), services.MetaFromContext(c))

	response.SuccessWithMessage(c, "Password berhasil direset", nil)
}

// ToggleStatus 切换激活状态，不允许停用自己
func (h *UserHandler) ToggleStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID user tidak valid")
		return
	}

	actorID := c.GetUint(middleware.CtxUserID)
	if uint(id) == actorID {
		response.BadRequest(c, "Tidak dapat menonaktifkan akun sendiri")
		return
	}

	user, oldStatus, err := h.userService.ToggleStatus(uint(id))
	if err != nil {
		response.NotFound(c, "User tidak ditemukan")
		return
	}

	h.auditService.LogUpdate("users", user.IDUser,
		gin.H{"status_aktif": oldStatus}, gin.H{"status_aktif": user.StatusAktif},
		fmt.Sprintf("Mengubah status user %s", user.Username),
		actorID, services.MetaFromContext(c))

	response.SuccessWithMessage(c, "Status user berhasil diubah", gin.H{
		"id_user":      user.IDUser,
		"status_aktif": user.StatusAktif,
	})
}

// Delete 删除用户，不允许删除自己
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID user tidak valid")
		return
	}

	actorID := c.GetUint(middleware.CtxUserID)
	if uint(id) == actorID {
		response.BadRequest(c, "Tidak dapat menghapus akun sendiri")
		return
	}

	user, err := h.userService.Delete(uint(id))
	if err != nil {
		response.NotFound(c, "User tidak ditemukan")
		return
	}

	h.auditService.LogDelete("users", user.IDUser, auditSnapshot(user),
		fmt.Sprintf("Menghapus user %s", user.Username),
		actorID, services.MetaFromContext(c))

	response.SuccessWithMessage(c, "User berhasil dihapus", nil)
}
