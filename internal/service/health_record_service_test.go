package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/realtime"
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
)

// ── 健康记录测试 ──

func (env *testEnv) addHealthRecord(id, childID, centerID, classID string) *model.HealthRecord {
	h := &model.HealthRecord{
		HealthRecordID: id,
		ChildID:        childID,
		RecordDate:     time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
		CenterID:       centerID,
		ClassID:        model.StrPtr(classID),
		RecordedBy:     "teacher-a",
	}
	h.IsActive = true
	env.healthRecords.records[id] = h
	return h
}

func TestAddIncident_NotifyParents(t *testing.T) {
	env := setupTestEnv()
	env.addHealthRecord("hr-1", testChildA1, testCenterA, testClassA1)

	h, err := env.svc.HealthRecord.AddIncident(context.Background(), adminActor(), "hr-1", &dto.IncidentRequest{
		Type:          "fall",
		Description:   "在操场摔倒，膝盖擦伤",
		Severity:      "minor",
		NotifyParents: true,
	})
	if err != nil {
		t.Fatalf("AddIncident 失败: %v", err)
	}
	env.dispatch.Wait()

	if len(h.Incidents) != 1 || !h.Incidents[0].ParentNotified || h.Incidents[0].NotifiedAt == nil {
		t.Fatalf("期望一条已通知家长的事故，实际=%+v", h.Incidents)
	}
	if h.Incidents[0].ReportedBy != "admin-a" {
		t.Errorf("期望 reported_by=admin-a，实际=%s", h.Incidents[0].ReportedBy)
	}
	if len(env.notifications.items) != 1 {
		t.Errorf("期望 1 条通知，实际=%d", len(env.notifications.items))
	}
	if !env.events.has(realtime.EventNotificationSend, realtime.UserRoom("parent-a")) {
		t.Error("应向家长推送实时通知")
	}
	if env.mailer.count() != 1 {
		t.Errorf("期望 1 封邮件，实际=%d", env.mailer.count())
	}
	if got := env.healthRecords.records["hr-1"].Incidents; len(got) != 1 {
		t.Errorf("事故应持久化，实际=%d", len(got))
	}
}

func TestAddIncident_WithoutNotify(t *testing.T) {
	env := setupTestEnv()
	env.addHealthRecord("hr-1", testChildA1, testCenterA, testClassA1)

	h, err := env.svc.HealthRecord.AddIncident(context.Background(), adminActor(), "hr-1", &dto.IncidentRequest{
		Type:        "rash",
		Description: "手臂出现红疹",
	})
	if err != nil {
		t.Fatalf("AddIncident 失败: %v", err)
	}
	if h.Incidents[0].ParentNotified {
		t.Error("未要求通知时不应标记 parent_notified")
	}
	if len(env.notifications.items) != 0 {
		t.Errorf("不应创建通知，实际=%d", len(env.notifications.items))
	}
}

func TestAddIncident_ParentDenied(t *testing.T) {
	env := setupTestEnv()
	env.addHealthRecord("hr-1", testChildA1, testCenterA, testClassA1)

	_, err := env.svc.HealthRecord.AddIncident(context.Background(), parentActor(), "hr-1", &dto.IncidentRequest{
		Type:        "fall",
		Description: "x",
	})
	if !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("期望 ErrAccessDenied，实际=%v", err)
	}
}

func TestHealthRecordGet_NotFound(t *testing.T) {
	env := setupTestEnv()

	if _, err := env.svc.HealthRecord.GetByID(context.Background(), adminActor(), "missing"); !errors.Is(err, ErrHealthRecordNotFound) {
		t.Errorf("期望 ErrHealthRecordNotFound，实际=%v", err)
	}
}
