package middleware

import (
	"strings"

	"sinkrona/internal/models"
	"sinkrona/pkg/jwt"
	"sinkrona/pkg/response"

	"github.com/gin-gonic/gin"
)

// 上下文键常量，下游handler通过这些键读取当前用户
const (
	CtxUserID         = "user_id"
	CtxUsername       = "username"
	CtxRole           = "role"            // 令牌中的原始角色
	CtxNormalizedRole = "normalized_role" // 小写归一化后的角色
	CtxPermissions    = "permissions"     // 归一化角色解析出的权限集合
)

// AuthMiddleware 认证与权限中间件
type AuthMiddleware struct {
	jwtManager *jwt.JWTManager
}

func NewAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

// RequireLogin 验证Bearer令牌并在上下文挂载当前用户
// 角色大小写归一化只在这里做一次，下游不再处理大小写
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从Authorization头获取JWT token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Token tidak ditemukan")
			c.Abort()
			return
		}

		// 检查Bearer格式
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "Format header otorisasi tidak valid")
			c.Abort()
			return
		}

		// 提取token
		tokenString := authHeader[7:] // 去掉 "Bearer "

		// 验证token，纯本地校验，不访问数据库
		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Token tidak valid atau sudah expired")
			c.Abort()
			return
		}

		normalizedRole := strings.ToLower(claims.Role)

		// 将用户信息保存到上下文
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxNormalizedRole, normalizedRole)
		c.Set(CtxPermissions, models.PermissionsFor(normalizedRole))

		c.Next()
	}
}

// RequireRole 要求归一化角色命中给定集合之一
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = strings.ToLower(r)
	}

	return func(c *gin.Context) {
		// 认证失败优先于权限判断
		role, exists := c.Get(CtxNormalizedRole)
		if !exists {
			response.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}

		userRole := role.(string)
		for _, r := range allowed {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.ForbiddenWithRoles(c, "Akses ditolak: role '"+c.GetString(CtxRole)+"' tidak memiliki akses ke resource ini", allowed)
		c.Abort()
	}
}

// RequirePermission 要求持有给定的全部权限
func (m *AuthMiddleware) RequirePermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userPerms, exists := currentPermissions(c)
		if !exists {
			response.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}

		for _, required := range permissions {
			if !containsPermission(userPerms, required) {
				// 只回报所需集合，不泄露比较细节
				response.ForbiddenWithPermissions(c, "Anda tidak memiliki izin untuk melakukan aksi ini", permissions)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// RequireAnyPermission 要求持有给定权限中的任意一个
func (m *AuthMiddleware) RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userPerms, exists := currentPermissions(c)
		if !exists {
			response.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}

		for _, required := range permissions {
			if containsPermission(userPerms, required) {
				c.Next()
				return
			}
		}

		response.ForbiddenWithPermissions(c, "Anda tidak memiliki izin untuk melakukan aksi ini", permissions)
		c.Abort()
	}
}

// currentPermissions 读取上下文中的权限集合
// 第二个返回值为false表示认证中间件未运行
func currentPermissions(c *gin.Context) ([]string, bool) {
	val, exists := c.Get(CtxPermissions)
	if !exists {
		return nil, false
	}
	perms, ok := val.([]string)
	if !ok {
		return nil, false
	}
	return perms, true
}

// containsPermission 权限代码精确匹配，区分大小写
func containsPermission(perms []string, required string) bool {
	for _, p := range perms {
		if p == required {
			return true
		}
	}
	return false
}
