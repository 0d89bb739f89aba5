package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cliffordobure/daycare-sub000/config"
	"github.com/cliffordobure/daycare-sub000/internal/api/handler"
	"github.com/cliffordobure/daycare-sub000/internal/api/middleware"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/pkg/redis"
)

// RegisterValidators 向 Gin 默认校验器注册自定义规则
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return dto.RegisterValidators(v)
}

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时限流降级放行；ws 为 nil 时不挂载 /ws
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	authn middleware.Authenticator,
	rdb *redis.Client,
	db *gorm.DB,
	ws http.Handler,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", healthCheck(db, rdb))

	// ── 实时推送（握手时自行校验 Token） ──
	if ws != nil {
		r.GET("/ws", gin.WrapH(ws))
	}

	admin := middleware.RoleAuth(model.RoleAdmin)
	staff := middleware.RoleAuth(model.RoleAdmin, model.RoleTeacher)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(rdb, "api", cfg.RateLimit.Requests, cfg.RateLimit.Window))
	{
		// 认证模块（无需认证）
		auth := api.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, "login", cfg.RateLimit.LoginRequests, cfg.RateLimit.LoginWindow), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(authn))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块（细粒度鉴权在 Service 层）
			users := authorized.Group("/users")
			{
				users.GET("", h.User.List)
				users.GET("/:id", h.User.Get)
				users.POST("", admin, h.User.Create)
				users.PUT("/:id", h.User.Update) // 管理员或本人
				users.PUT("/:id/status", admin, h.User.SetStatus)
				users.DELETE("/:id", admin, h.User.Delete)
			}

			// 园所模块
			centers := authorized.Group("/centers")
			{
				centers.GET("", h.Center.List)
				centers.GET("/:id", h.Center.Get)
				centers.GET("/:id/stats", admin, h.Center.Stats)
				centers.POST("", admin, h.Center.Create) // 仅超级管理员（Service 层校验）
				centers.PUT("/:id", admin, h.Center.Update)
				centers.PUT("/:id/status", admin, h.Center.SetStatus)
				centers.DELETE("/:id", admin, h.Center.Delete)
			}

			// 幼儿档案
			children := authorized.Group("/children")
			{
				children.GET("", h.Child.List)
				children.GET("/:id", h.Child.Get)
				children.POST("", staff, h.Child.Create)
				children.PUT("/:id", h.Child.Update) // 家长可修改本人子女
				children.PUT("/:id/class", staff, h.Child.AssignClass)
				children.PUT("/:id/status", admin, h.Child.SetStatus)
				children.DELETE("/:id", admin, h.Child.Delete)
			}

			// 班级模块
			classes := authorized.Group("/classes")
			{
				classes.GET("", h.Class.List)
				classes.GET("/:id", h.Class.Get)
				classes.GET("/:id/children", staff, h.Class.Roster)
				classes.GET("/:id/calendar.ics", h.Calendar.Class)
				classes.POST("", admin, h.Class.Create)
				classes.PUT("/:id", staff, h.Class.Update)
				classes.PUT("/:id/teachers", admin, h.Class.SetTeachers)
				classes.PUT("/:id/status", admin, h.Class.SetStatus)
				classes.DELETE("/:id", admin, h.Class.Delete)
			}

			// 考勤模块
			attendance := authorized.Group("/attendance")
			{
				attendance.GET("", h.Attendance.List)
				attendance.GET("/:id", h.Attendance.Get)
				attendance.POST("", staff, h.Attendance.Mark)
				attendance.POST("/bulk", staff, h.Attendance.Bulk)
				attendance.PUT("/:id", staff, h.Attendance.Update)
				attendance.PUT("/:id/status", staff, h.Attendance.SetStatus)
				attendance.DELETE("/:id", staff, h.Attendance.Delete)
			}

			// 活动模块
			activities := authorized.Group("/activities")
			{
				activities.GET("", h.Activity.List)
				activities.GET("/:id", h.Activity.Get)
				activities.POST("", staff, h.Activity.Create)
				activities.PUT("/:id", staff, h.Activity.Update)
				activities.PUT("/:id/status", staff, h.Activity.ChangeStatus)
				activities.POST("/:id/updates", staff, h.Activity.AddUpdate)
				activities.POST("/:id/photos", staff, h.Activity.AddPhoto)
				activities.DELETE("/:id", staff, h.Activity.Delete)
			}

			// 缴费模块
			payments := authorized.Group("/payments")
			{
				payments.GET("", h.Payment.List)
				payments.GET("/:id", h.Payment.Get)
				payments.POST("", admin, h.Payment.Create)
				payments.PUT("/:id", admin, h.Payment.Update)
				payments.POST("/:id/pay", admin, h.Payment.Pay)
				payments.PUT("/:id/status", admin, h.Payment.SetStatus)
				payments.DELETE("/:id", admin, h.Payment.Delete)
			}

			// 健康档案
			health := authorized.Group("/health-records")
			{
				health.GET("", h.HealthRecord.List)
				health.GET("/:id", h.HealthRecord.Get)
				health.POST("", staff, h.HealthRecord.Create)
				health.PUT("/:id", staff, h.HealthRecord.Update)
				health.POST("/:id/incidents", staff, h.HealthRecord.AddIncident)
				health.PUT("/:id/status", staff, h.HealthRecord.SetStatus)
				health.DELETE("/:id", staff, h.HealthRecord.Delete)
			}

			// 站内信
			messages := authorized.Group("/messages")
			{
				messages.GET("", h.Message.List)
				messages.GET("/unread-count", h.Message.UnreadCount)
				messages.GET("/:id", h.Message.Get)
				messages.POST("", h.Message.Send)
				messages.PUT("/:id/read", h.Message.MarkRead)
				messages.DELETE("/:id", h.Message.Delete)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/:id", h.Notification.Get)
				notifications.POST("", staff, h.Notification.Create)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.PUT("/:id/status", staff, h.Notification.SetStatus)
				notifications.DELETE("/:id", staff, h.Notification.Delete)
			}

			// 报表导出
			reports := authorized.Group("/reports")
			{
				reports.GET("/attendance.xlsx", staff, h.Report.Attendance)
				reports.GET("/payments.xlsx", admin, h.Report.Payments)
			}
		}
	}

	return r
}

// healthCheck 检查数据库与 Redis 连通性
func healthCheck(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "ok"}

		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
				checks["database"] = "unavailable"
				status = http.StatusServiceUnavailable
			}
		}

		if rdb == nil {
			checks["redis"] = "disabled"
		} else if err := rdb.Ping(ctx); err != nil {
			checks["redis"] = "unavailable"
			status = http.StatusServiceUnavailable
		} else {
			checks["redis"] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}
