package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/config"
)

const runTimeout = 2 * time.Minute

// OverdueMarker 账单逾期扫描
type OverdueMarker interface {
	MarkOverdue(ctx context.Context) (int64, error)
}

// DueDeliverer 计划通知投递
type DueDeliverer interface {
	DeliverDue(ctx context.Context) (int, error)
}

// Sweeper 清理心跳超时的实时连接
type Sweeper interface {
	Sweep(timeout time.Duration) int
}

// Tasks 定时任务的执行方，为空时对应任务不注册
type Tasks struct {
	Payments      OverdueMarker
	Notifications DueDeliverer
	Realtime      Sweeper
}

// Scheduler 基于 cron 的定时任务调度器
type Scheduler struct {
	cron             *cron.Cron
	tasks            Tasks
	heartbeatTimeout time.Duration
	logger           *zap.Logger
}

// New 按配置注册任务；cron 表达式为空的任务跳过
func New(cfg *config.JobsConfig, heartbeatTimeout time.Duration, tasks Tasks, logger *zap.Logger) (*Scheduler, error) {
	cl := cronLogger{logger: logger.Sugar()}
	s := &Scheduler{
		cron:             cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		tasks:            tasks,
		heartbeatTimeout: heartbeatTimeout,
		logger:           logger,
	}

	jobs := []struct {
		name string
		spec string
		run  func()
		ok   bool
	}{
		{"overdue_payments", cfg.OverduePayments, s.markOverdue, tasks.Payments != nil},
		{"due_notifications", cfg.DueNotifications, s.deliverDue, tasks.Notifications != nil},
		{"realtime_sweep", cfg.RealtimeSweep, s.sweep, tasks.Realtime != nil},
	}
	for _, j := range jobs {
		if j.spec == "" || !j.ok {
			continue
		}
		if _, err := s.cron.AddFunc(j.spec, j.run); err != nil {
			return nil, fmt.Errorf("注册定时任务 %s 失败: %w", j.name, err)
		}
		logger.Info("定时任务已注册", zap.String("job", j.name), zap.String("spec", j.spec))
	}
	return s, nil
}

// Start 后台启动调度
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度，返回的 context 在运行中的任务结束后关闭
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Len 已注册的任务数
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) markOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	n, err := s.tasks.Payments.MarkOverdue(ctx)
	if err != nil {
		s.logger.Error("逾期账单扫描失败", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("账单已标记逾期", zap.Int64("count", n))
	}
}

func (s *Scheduler) deliverDue() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	if _, err := s.tasks.Notifications.DeliverDue(ctx); err != nil {
		s.logger.Error("计划通知投递失败", zap.Error(err))
	}
}

func (s *Scheduler) sweep() {
	if n := s.tasks.Realtime.Sweep(s.heartbeatTimeout); n > 0 {
		s.logger.Info("清理超时连接", zap.Int("count", n))
	}
}

// cronLogger 将 cron 内部日志转到 zap
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
