package handlers

import (
	"net/http"
	"strings"
	"time"

	"sinkrona/internal/models"
	"sinkrona/internal/services"
	"sinkrona/pkg/config"
	"sinkrona/pkg/jwt"
	"sinkrona/pkg/logger"
	"sinkrona/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// NotifikasiWSHandler 通知实时推送处理器
type NotifikasiWSHandler struct {
	upgrader   websocket.Upgrader
	hub        *services.NotificationHub
	jwtManager *jwt.JWTManager
}

func NewNotifikasiWSHandler(hub *services.NotificationHub) *NotifikasiWSHandler {
	allowedOrigins := config.GetConfig().CORS.AllowOrigins

	return &NotifikasiWSHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// 同源请求Origin为空，放行
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || matchOrigin(origin, allowed) {
						return true
					}
				}
				logger.GetLogger().Warnf("WebSocket连接被拒绝，非法Origin: %s", origin)
				return false
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		hub:        hub,
		jwtManager: jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

// Stream 建立通知推送连接
// WebSocket不支持自定义header，token通过查询参数传递
func (h *NotifikasiWSHandler) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Unauthorized(c, "Token tidak ditemukan")
		return
	}

	claims, err := h.jwtManager.VerifyToken(token)
	if err != nil {
		response.Unauthorized(c, "Token tidak valid atau sudah expired")
		return
	}

	// 只有notifikasi:view权限的角色可以订阅
	if !models.HasPermission(claims.Role, models.PermNotifikasiView) {
		response.Forbidden(c, "Anda tidak memiliki izin untuk melakukan aksi ini")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.GetLogger().Warnf("WebSocket升级失败: %v (user_id=%d)", err, claims.UserID)
		return
	}

	client := h.hub.Register(claims.UserID, conn)
	logger.GetLogger().Infof("通知推送连接建立 (user_id=%d username=%s)", claims.UserID, claims.Username)

	defer func() {
		h.hub.Unregister(client)
		conn.Close()
	}()

	// 读超时配合hub写goroutine的定期ping，收到pong即续期
	pongWait := 300 * time.Second
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// 读循环只用于感知断连，客户端不发业务消息
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// matchOrigin 检查origin是否匹配allowed模式
// 支持精确匹配和 *.example.com 形式的通配符
func matchOrigin(origin, allowed string) bool {
	if origin == allowed {
		return true
	}

	if strings.HasPrefix(allowed, "*.") {
		domain := allowed[2:]

		originHost := origin
		if idx := strings.Index(origin, "://"); idx != -1 {
			originHost = origin[idx+3:]
		}
		if idx := strings.Index(originHost, ":"); idx != -1 {
			originHost = originHost[:idx]
		}

		return originHost == domain || strings.HasSuffix(originHost, "."+domain)
	}

	return false
}
