package handlers

import (
	"fmt"
	"time"

	"sinkrona/internal/middleware"
	"sinkrona/internal/models"
	"sinkrona/internal/services"
	"sinkrona/pkg/jwt"
	"sinkrona/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService  *services.UserService
	auditService auditRecorder
	notifService *services.NotificationService
	jwtManager   *jwt.JWTManager
}

func NewAuthHandler(userService *services.UserService, auditService auditRecorder, notifService *services.NotificationService) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		auditService: auditService,
		notifService: notifService,
		jwtManager:   jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	User      UserInfo `json:"user"`
}

type UserInfo struct {
	IDUser      uint     `json:"id_user"`
	Username    string   `json:"username"`
	NamaLengkap string   `json:"nama_lengkap"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Jabatan     *string  `json:"jabatan"`
	Instansi    *string  `json:"instansi"`
	Permissions []string `json:"permissions"`
}

func toUserInfo(user *models.User) UserInfo {
	return UserInfo{
		IDUser:      user.IDUser,
		Username:    user.Username,
		NamaLengkap: user.NamaLengkap,
		Email:       user.Email,
		Role:        user.Role,
		Jabatan:     user.Jabatan,
		Instansi:    user.Instansi,
		Permissions: models.PermissionsFor(user.Role),
	}
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Username dan password wajib diisi")
		return
	}

	// 根据用户名获取用户
	user, err := h.userService.GetByUsername(req.Username)
	if err != nil {
		response.Unauthorized(c, "Username atau password salah")
		return
	}

	// 检查用户状态，先于密码校验
	if !h.userService.IsActive(user) {
		response.Forbidden(c, "Akun tidak aktif. Hubungi administrator.")
		return
	}

	// 验证密码
	if !user.CheckPassword(req.Password) {
		response.Unauthorized(c, "Username atau password salah")
		return
	}

	// 生成Token
	token, err := h.jwtManager.GenerateToken(user.IDUser, user.Username, user.Role)
	if err != nil {
		response.ServerError(c, "Gagal membuat token")
		return
	}

	// 更新最后登录时间，失败不影响登录流程
	_ = h.userService.UpdateLastLogin(user.IDUser)

	meta := services.MetaFromContext(c)
	h.auditService.LogLogin(user.IDUser, fmt.Sprintf("User %s login", user.Username), meta)
	if meta != nil {
		h.notifService.NotifyLogin(user, meta.IPAddress)
	} else {
		h.notifService.NotifyLogin(user, "")
	}

	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()

	response.SuccessWithMessage(c, "Login berhasil", LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserInfo(user),
	})
}

type RegisterRequest struct {
	Username    string  `json:"username" binding:"required"`
	Password    string  `json:"password" binding:"required"`
	NamaLengkap string  `json:"nama_lengkap" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	Jabatan     *string `json:"jabatan"`
	Instansi    *string `json:"instansi"`
}

// Register 公开注册，注册用户一律为masyarakat角色
// 请求体中的role字段被忽略，角色只能由管理员分配
// masyarakat没有任何受保护接口的权限，只能访问公开地图
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Data registrasi tidak lengkap: "+err.Error())
		return
	}

	user, err := h.userService.Create(req.Username, req.Password, req.NamaLengkap, req.Email,
		models.RoleMasyarakat, req.Jabatan, req.Instansi)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, "Registrasi berhasil", toUserInfo(user))
}

// Me 获取当前登录用户的完整信息
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetUint(middleware.CtxUserID)

	user, err := h.userService.GetByID(userID)
	if err != nil {
		response.NotFound(c, "User tidak ditemukan")
		return
	}

	response.Success(c, gin.H{
		"user":          toUserInfo(user),
		"last_login_at": user.LastLoginAt,
		"created_at":    user.CreatedAt,
	})
}

// Logout 用户登出
// JWT是无状态的，登出只做审计记录，令牌由前端丢弃并在到期后失效
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetUint(middleware.CtxUserID)
	username := c.GetString(middleware.CtxUsername)

	h.auditService.LogLogout(userID, fmt.Sprintf("User %s logout", username), services.MetaFromContext(c))

	response.SuccessWithMessage(c, "Logout berhasil", gin.H{
		"logout_time": time.Now(),
	})
}
