package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cliffordobure/daycare-sub000/config"
)

type fakePayments struct {
	calls int
	err   error
}

func (f *fakePayments) MarkOverdue(_ context.Context) (int64, error) {
	f.calls++
	return 2, f.err
}

type fakeNotifications struct{ calls int }

func (f *fakeNotifications) DeliverDue(_ context.Context) (int, error) {
	f.calls++
	return 1, nil
}

type fakeSweeper struct{ timeout time.Duration }

func (f *fakeSweeper) Sweep(timeout time.Duration) int {
	f.timeout = timeout
	return 0
}

func defaultJobsConfig() *config.JobsConfig {
	return &config.JobsConfig{
		Enabled:          true,
		OverduePayments:  "0 * * * *",
		DueNotifications: "@every 1m",
		RealtimeSweep:    "@every 30s",
	}
}

func TestNew_RegistersAllJobs(t *testing.T) {
	s, err := New(defaultJobsConfig(), 90*time.Second, Tasks{
		Payments:      &fakePayments{},
		Notifications: &fakeNotifications{},
		Realtime:      &fakeSweeper{},
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("New 失败: %v", err)
	}
	if s.Len() != 3 {
		t.Errorf("期望注册 3 个任务，实际=%d", s.Len())
	}
}

func TestNew_SkipsMissingTasks(t *testing.T) {
	cfg := defaultJobsConfig()
	cfg.RealtimeSweep = ""

	s, err := New(cfg, time.Minute, Tasks{Payments: &fakePayments{}}, zap.NewNop())
	if err != nil {
		t.Fatalf("New 失败: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("期望注册 1 个任务，实际=%d", s.Len())
	}
}

func TestNew_InvalidSpec(t *testing.T) {
	cfg := defaultJobsConfig()
	cfg.OverduePayments = "every hour"

	if _, err := New(cfg, time.Minute, Tasks{Payments: &fakePayments{}}, zap.NewNop()); err == nil {
		t.Error("非法 cron 表达式应返回错误")
	}
}

func TestScheduler_RunsTasks(t *testing.T) {
	payments := &fakePayments{err: errors.New("db down")}
	notifications := &fakeNotifications{}
	sweeper := &fakeSweeper{}
	s, err := New(defaultJobsConfig(), 90*time.Second, Tasks{
		Payments:      payments,
		Notifications: notifications,
		Realtime:      sweeper,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("New 失败: %v", err)
	}

	// 任务失败只记录日志
	s.markOverdue()
	s.deliverDue()
	s.sweep()

	if payments.calls != 1 || notifications.calls != 1 {
		t.Errorf("期望各执行 1 次，实际 payments=%d notifications=%d", payments.calls, notifications.calls)
	}
	if sweeper.timeout != 90*time.Second {
		t.Errorf("期望按心跳超时清理，实际=%v", sweeper.timeout)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := New(defaultJobsConfig(), time.Minute, Tasks{}, zap.NewNop())
	if err != nil {
		t.Fatalf("New 失败: %v", err)
	}
	s.Start()
	select {
	case <-s.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("Stop 超时")
	}
}

func TestMarkOverdue_LogsOnce(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	payments := &fakePayments{}
	s, err := New(defaultJobsConfig(), time.Minute, Tasks{Payments: payments}, zap.New(core))
	if err != nil {
		t.Fatalf("New 失败: %v", err)
	}

	s.markOverdue()
	if payments.calls != 1 {
		t.Fatalf("期望调用 1 次，实际=%d", payments.calls)
	}
	entries := logs.FilterMessage("账单已标记逾期").All()
	if len(entries) != 1 || entries[0].ContextMap()["count"] != int64(2) {
		t.Errorf("期望一条 count=2 的日志，实际=%v", entries)
	}
}
