package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/config"
	"github.com/cliffordobure/daycare-sub000/internal/api/handler"
	"github.com/cliffordobure/daycare-sub000/internal/api/router"
	"github.com/cliffordobure/daycare-sub000/internal/jobs"
	"github.com/cliffordobure/daycare-sub000/internal/realtime"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
	"github.com/cliffordobure/daycare-sub000/internal/service"
	"github.com/cliffordobure/daycare-sub000/pkg/database"
	"github.com/cliffordobure/daycare-sub000/pkg/jwt"
	applogger "github.com/cliffordobure/daycare-sub000/pkg/logger"
	"github.com/cliffordobure/daycare-sub000/pkg/notify"
	"github.com/cliffordobure/daycare-sub000/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// 0. 本地开发读取 .env（不存在时忽略）
	_ = godotenv.Load()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，Token 黑名单、限流与跨实例推送将不可用", zap.Error(err))
			rdb = nil
		}
	} else {
		logger.Info("Redis 未启用")
	}
	var blacklist service.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}

	// 5. 外部通知渠道（未配置时为空操作）
	mailer := notify.NewMailer(&cfg.Mail, cfg.Server.AppName, logger)
	sms := notify.NewSMSSender(&cfg.SMS, logger)
	dispatcher := service.NewDispatcher(mailer, sms, logger)

	// 6. 实时推送 Hub
	hub := realtime.NewHub(&cfg.Realtime, sms, logger)
	bridgeCtx, stopBridge := context.WithCancel(context.Background())
	defer stopBridge()
	if cfg.Realtime.RedisFanout && rdb != nil {
		bridge := realtime.NewRedisBridge(rdb, cfg.Realtime.RedisChannel, hub, logger)
		go func() {
			if err := bridge.Run(bridgeCtx); err != nil && bridgeCtx.Err() == nil {
				logger.Error("实时事件 Redis 桥接退出", zap.Error(err))
			}
		}()
	}

	// 7. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, service.Deps{
		Events:    hub,
		Blacklist: blacklist,
		Dispatch:  dispatcher,
	}, logger)
	h := handler.NewHandler(svc, cfg)
	ws := realtime.NewHandler(hub, svc.Auth, &cfg.Realtime, logger)

	// 8. 定时任务
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler, err = jobs.New(&cfg.Jobs, cfg.Realtime.HeartbeatTimeout, jobs.Tasks{
			Payments:      svc.Payment,
			Notifications: svc.Notification,
			Realtime:      hub,
		}, logger)
		if err != nil {
			logger.Fatal("定时任务注册失败", zap.Error(err))
		}
		scheduler.Start()
	}

	// 9. 初始化路由
	if err := router.RegisterValidators(); err != nil {
		logger.Fatal("注册校验规则失败", zap.Error(err))
	}
	engine := router.Setup(cfg, h, svc.Auth, rdb, db, ws, logger)

	// 10. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 等待正在执行的定时任务
	if scheduler != nil {
		select {
		case <-scheduler.Stop().Done():
		case <-ctx.Done():
			logger.Warn("定时任务未在超时内结束")
		}
	}

	// 关闭实时连接与桥接
	stopBridge()
	hub.Shutdown()

	// 等待未完成的邮件/短信发送
	dispatcher.Wait()

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Error("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
