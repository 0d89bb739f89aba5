package main

import (
	"database/sql"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/config"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
	"github.com/cliffordobure/daycare-sub000/internal/service"
	"github.com/cliffordobure/daycare-sub000/pkg/database"
	"github.com/cliffordobure/daycare-sub000/pkg/jwt"
	applogger "github.com/cliffordobure/daycare-sub000/pkg/logger"
)

// migrator 数据库迁移
type migrator interface {
	Up() error
	Down(steps int) error
}

// app 命令行运行时依赖
type app struct {
	configPath   string
	out          io.Writer
	readPassword func(fd int) ([]byte, error)

	// connect 加载配置并装配依赖；测试中为空，operator/migrate 由测试直接注入
	connect func() error

	operator service.OperatorService
	migrate  migrator
	closers  []func()
}

func (a *app) ensure() error {
	if a.connect == nil || a.operator != nil {
		return nil
	}
	return a.connect()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) connectDB() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return fmt.Errorf("数据库连接失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	a.closers = append(a.closers, func() { _ = sqlDB.Close() })

	svc := service.NewService(cfg, repository.NewRepository(db), jwt.NewManager(&cfg.Auth), service.Deps{}, logger)
	a.operator = svc.Operator
	a.migrate = &sqlMigrator{db: sqlDB, logger: logger}
	return nil
}

// sqlMigrator 基于 golang-migrate 的迁移实现
type sqlMigrator struct {
	db     *sql.DB
	logger *zap.Logger
}

func (m *sqlMigrator) Up() error { return database.RunMigrations(m.db, m.logger) }

func (m *sqlMigrator) Down(steps int) error { return database.RollbackMigrations(m.db, steps, m.logger) }
