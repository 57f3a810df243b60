package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sinkrona/internal/models"
	"sinkrona/pkg/config"
	"sinkrona/pkg/jwt"
	"sinkrona/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// tokenFor 用全局密钥签发测试令牌
func tokenFor(t *testing.T, userID uint, username, role string, duration time.Duration) string {
	t.Helper()
	manager := jwt.NewJWTManager(config.GetConfig().JWT.SecretKey, duration)
	token, err := manager.GenerateToken(userID, username, role)
	require.NoError(t, err)
	return token
}

func okHandler(c *gin.Context) {
	response.Success(c, gin.H{"ok": true})
}

func doRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireLoginMissingHeader(t *testing.T) {
	auth := NewAuthMiddleware()
	router := gin.New()
	router.GET("/protected", auth.RequireLogin(), okHandler)

	w := doRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireLoginBadPrefix(t *testing.T) {
	auth := NewAuthMiddleware()
	router := gin.New()
	router.GET("/protected", auth.RequireLogin(), okHandler)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireLoginInvalidToken(t *testing.T) {
	auth := NewAuthMiddleware()
	router := gin.New()
	router.GET("/protected", auth.RequireLogin(), okHandler)

	w := doRequest(router, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// 过期令牌必须得到401，即使载荷中的角色本可通过后续守卫
func TestExpiredAdminTokenGets401Not403(t *testing.T) {
	auth := NewAuthMiddleware()
	router := gin.New()
	router.GET("/protected", auth.RequireLogin(), auth.RequireRole(models.RoleAdmin), okHandler)

	token := tokenFor(t, 1, "admin", models.RoleAdmin, -time.Minute)
	w := doRequest(router, token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireLoginSetsContext(t *testing.T) {
	auth := NewAuthMiddleware()
	router := gin.New()
	router.GET("/protected", auth.RequireLogin(), func(c *gin.Context) {
		assert.Equal(t, uint(7), c.GetUint(CtxUserID))
		assert.Equal(t, "budi", c.GetString(CtxUsername))
		assert.Equal(t, "BPN", c.GetString(CtxRole))
		assert.Equal(t, "bpn", c.GetString(CtxNormalizedRole))

		perms, exists := currentPermissions(c)
		assert.True(t, exists)
		assert.Equal(t, models.PermissionsFor("bpn"), perms)
		okHandler(c)
	})

	// 大小写混合的角色在中间件中归一化
	token := tokenFor(t, 7, "budi", "BPN", time.Hour)
	w := doRequest(router, token)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleAllows(t *testing.T) {
	auth := NewAuthMiddleware()
	router := gin.New()
	router.GET("/protected", auth.RequireLogin(), auth.RequireRole(models.RoleAdmin, models.RoleDinasAset), okHandler)

	token := tokenFor(t, 1, "admin", models.RoleAdmin, time.Hour)
	w := doRequest(router, token)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleRejectsWithRequiredRoles(t *testing.T) {
	auth := NewAuthMiddleware()
	router := gin.New()
	router.GET("/protected", auth.RequireLogin(), auth.RequireRole(models.RoleAdmin), okHandler)

	token := tokenFor(t, 7, "budi", models.RoleBPN, time.Hour)
	w := doRequest(router, token)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var body response.ForbiddenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{models.RoleAdmin}, body.RequiredRoles)
}

// RequireRole的allowed集合在构造时归一化
func TestRequireRoleNormalizesAllowedSet(t *testing.T) {
	auth := NewAuthMiddleware()
	router := gin.New()
	router.GET("/protected", auth.RequireLogin(), auth.RequireRole("ADMIN"), okHandler)

	token := tokenFor(t, 1, "admin", "Admin", time.Hour)
	w := doRequest(router, token)

	assert.Equal(t, http.StatusOK, w.Code)
}

// bpn是只读角色，要求aset:update的守卫必须拒绝
func TestRequirePermissionRejectsReadOnlyRole(t *testing.T) {
	auth := NewAuthMiddleware()
	router := gin.New()
	router.GET("/protected", auth.RequireLogin(),
		auth.RequirePermission(models.PermAsetRead, models.PermAsetUpdate), okHandler)

	token := tokenFor(t, 7, "budi", models.RoleBPN, time.Hour)
	w := doRequest(router, token)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var body response.ForbiddenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{models.PermAsetRead, models.PermAsetUpdate}, body.RequiredPermissions)
}

func TestRequirePermissionAllOfPasses(t *testing.T) {
	auth := NewAuthMiddleware()
	router := gin.New()
	router.GET("/protected", auth.RequireLogin(),
		auth.RequirePermission(models.PermAsetCreate, models.PermAsetDelete), okHandler)

	token := tokenFor(t, 2, "dinas", models.RoleDinasAset, time.Hour)
	w := doRequest(router, token)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAnyPermissionPassesOnOneMatch(t *testing.T) {
	auth := NewAuthMiddleware()
	router := gin.New()
	// tata_ruang没有layer:tata_ruang，但有layer:sebaran_perkara
	router.GET("/protected", auth.RequireLogin(),
		auth.RequireAnyPermission(models.PermLayerTataRuang, models.PermLayerSebaranPerkara), okHandler)

	token := tokenFor(t, 3, "tataruang", models.RoleTataRuang, time.Hour)
	w := doRequest(router, token)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAnyPermissionRejectsWhenNoneMatch(t *testing.T) {
	auth := NewAuthMiddleware()
	router := gin.New()
	router.GET("/protected", auth.RequireLogin(),
		auth.RequireAnyPermission(models.PermBackupManage, models.PermUserManage), okHandler)

	token := tokenFor(t, 7, "budi", models.RoleBPN, time.Hour)
	w := doRequest(router, token)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// 守卫单独使用（缺少RequireLogin）时返回401而不是403
func TestGuardsWithoutPrincipalReturn401(t *testing.T) {
	auth := NewAuthMiddleware()

	cases := map[string]gin.HandlerFunc{
		"role":     auth.RequireRole(models.RoleAdmin),
		"perm":     auth.RequirePermission(models.PermAsetRead),
		"any_perm": auth.RequireAnyPermission(models.PermAsetRead),
	}

	for name, guard := range cases {
		router := gin.New()
		router.GET("/protected", guard, okHandler)

		w := doRequest(router, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}

// 未知角色的令牌通过认证，但权限集合为空，全部权限守卫拒绝
func TestUnknownRoleFailsClosed(t *testing.T) {
	auth := NewAuthMiddleware()
	router := gin.New()
	router.GET("/protected", auth.RequireLogin(),
		auth.RequirePermission(models.PermAsetRead), okHandler)

	token := tokenFor(t, 9, "ghost", "superuser", time.Hour)
	w := doRequest(router, token)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
