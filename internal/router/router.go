package router

import (
	"time"

	"sinkrona/internal/database"
	"sinkrona/internal/handlers"
	"sinkrona/internal/middleware"
	"sinkrona/internal/models"
	"sinkrona/internal/services"
	"sinkrona/pkg/config"
	"sinkrona/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.RequestID())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine) {
	db := database.GetDB()
	redisCache := database.GetRedisCache()
	hub := services.GetNotificationHub()

	auth := middleware.NewAuthMiddleware()

	// 服务实例
	auditService := services.NewAuditService(db)
	notifService := services.NewNotificationService(db, redisCache, hub)
	userService := services.NewUserService(db)
	asetService := services.NewAsetService(db)
	riwayatService := services.NewRiwayatService(db)
	notifikasiService := services.NewNotifikasiService(db, redisCache)
	backupService := services.NewBackupService(db, config.GetConfig().Backup.Dir)

	api := router.Group("/api")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)

		// 认证路由
		authHandler := handlers.NewAuthHandler(userService, auditService, notifService)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/register", authHandler.Register)
			authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)
			authGroup.POST("/logout", auth.RequireLogin(), authHandler.Logout)
		}

		// 资产路由：读取对全部登录角色开放，写入按权限控制
		asetHandler := handlers.NewAsetHandler(asetService, auditService, notifService)
		aset := api.Group("/aset", auth.RequireLogin())
		{
			canView := auth.RequireRole(models.RoleAdmin, models.RoleDinasAset, models.RoleBPN, models.RoleTataRuang)

			aset.GET("", canView, asetHandler.List)
			aset.GET("/stats", canView, asetHandler.GetStats)
			aset.GET("/map", canView, asetHandler.GetForMap)
			aset.GET("/:id", canView, asetHandler.GetByID)

			aset.POST("", auth.RequirePermission(models.PermAsetCreate), asetHandler.Create)
			aset.PUT("/:id", auth.RequirePermission(models.PermAsetUpdate), asetHandler.Update)
			aset.DELETE("/:id", auth.RequirePermission(models.PermAsetDelete), asetHandler.Delete)
		}

		// 地图路由：图层按各自的layer权限控制
		petaHandler := handlers.NewPetaHandler(asetService)
		peta := api.Group("/peta", auth.RequireLogin())
		{
			canView := auth.RequirePermission(models.PermPetaView)

			peta.GET("/layers", petaHandler.GetAvailableLayers)
			peta.GET("/markers", canView, petaHandler.GetMarkers)
			peta.GET("/stats", canView, petaHandler.GetStats)
			peta.GET("/search", canView, petaHandler.Search)
			peta.GET("/detail/:id", canView, petaHandler.GetDetail)

			peta.GET("/layer/umum", auth.RequirePermission(models.PermLayerUmum), petaHandler.GetLayerUmum)
			peta.GET("/layer/tata-ruang", auth.RequirePermission(models.PermLayerTataRuang), petaHandler.GetLayerTataRuang)
			peta.GET("/layer/potensi-berperkara", auth.RequirePermission(models.PermLayerPotensiPerkara), petaHandler.GetLayerPotensiBerperkara)
			peta.GET("/layer/sebaran-perkara", auth.RequirePermission(models.PermLayerSebaranPerkara), petaHandler.GetLayerSebaranPerkara)
		}

		// 公开地图，无需登录，面向masyarakat
		api.GET("/peta-publik", petaHandler.GetPublicLayer)

		// 审计日志路由
		riwayatHandler := handlers.NewRiwayatHandler(riwayatService)
		riwayat := api.Group("/riwayat", auth.RequireLogin())
		{
			canView := auth.RequirePermission(models.PermRiwayatView)
			adminOnly := auth.RequirePermission(models.PermUserManage)

			riwayat.GET("", canView, riwayatHandler.List)
			riwayat.GET("/stats", canView, riwayatHandler.GetStats)
			riwayat.GET("/aset/:id", canView, riwayatHandler.GetByAset)
			riwayat.GET("/user/:id", adminOnly, riwayatHandler.GetByUser)
			riwayat.GET("/:id", canView, riwayatHandler.GetByID)
		}

		// 通知路由
		notifikasiHandler := handlers.NewNotifikasiHandler(notifikasiService)
		notifikasiWS := handlers.NewNotifikasiWSHandler(hub)
		notifikasi := api.Group("/notifikasi")
		{
			// WebSocket通过查询参数自行认证
			notifikasi.GET("/ws", notifikasiWS.Stream)

			canView := auth.RequirePermission(models.PermNotifikasiView)
			protected := notifikasi.Group("", auth.RequireLogin(), canView)
			{
				protected.GET("", notifikasiHandler.List)
				protected.GET("/unread-count", notifikasiHandler.GetUnreadCount)
				protected.GET("/recent", notifikasiHandler.GetRecent)
				protected.PUT("/read-all", notifikasiHandler.MarkAllAsRead)
				protected.PUT("/:id/read", notifikasiHandler.MarkAsRead)
				// clear-all在:id之前注册，避免路由冲突
				protected.DELETE("/clear-all", notifikasiHandler.ClearAll)
				protected.DELETE("/:id", notifikasiHandler.Delete)
			}
		}

		// 用户管理路由，全部仅限admin
		userHandler := handlers.NewUserHandler(userService, auditService)
		users := api.Group("/users", auth.RequireLogin(), auth.RequirePermission(models.PermUserManage))
		{
			users.GET("", userHandler.List)
			users.GET("/stats", userHandler.GetStats)
			users.GET("/roles", userHandler.GetRoles)
			users.GET("/:id", userHandler.GetByID)
			users.POST("", userHandler.Create)
			users.PUT("/:id", userHandler.Update)
			users.PUT("/:id/password", userHandler.ResetPassword)
			users.PUT("/:id/toggle-status", userHandler.ToggleStatus)
			users.DELETE("/:id", userHandler.Delete)
		}

		// 备份路由，全部仅限admin
		backupHandler := handlers.NewBackupHandler(backupService, auditService)
		backup := api.Group("/backup", auth.RequireLogin(), auth.RequirePermission(models.PermBackupManage))
		{
			backup.GET("", backupHandler.List)
			backup.GET("/stats", backupHandler.GetStats)
			backup.GET("/download/:filename", backupHandler.Download)
			backup.POST("/export", backupHandler.Export)
			backup.POST("/export-csv", backupHandler.ExportCSV)
			backup.POST("/import", backupHandler.Import)
			backup.DELETE("/:filename", backupHandler.Delete)
		}
	}
}

// healthCheck 健康检查
func healthCheck(c *gin.Context) {
	response.Success(c, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}
