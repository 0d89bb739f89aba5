package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
)

func seedActivity(env *testEnv, id, classID, status string) {
	start := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	a := &model.Activity{
		ActivityID: id,
		Title:      "秋季郊游",
		Type:       "outing",
		CenterID:   testCenterA,
		ClassID:    model.StrPtr(classID),
		TeacherID:  "teacher-a",
		StartTime:  start,
		EndTime:    start.Add(2 * time.Hour),
		Status:     status,
	}
	a.IsActive = true
	env.activities.activities[id] = a
}

func TestCalendarService_ClassCalendar(t *testing.T) {
	env := setupTestEnv()
	seedActivity(env, "act-1", testClassA1, model.ActivityScheduled)
	seedActivity(env, "act-2", testClassA1, model.ActivityCancelled)

	data, filename, err := env.svc.Calendar.ClassCalendar(context.Background(), adminActor(), testClassA1)
	if err != nil {
		t.Fatalf("ClassCalendar 失败: %v", err)
	}
	if _, _, err := env.svc.Calendar.ClassCalendar(context.Background(), parentActor(), testClassA1); err != nil {
		t.Errorf("家长应能订阅孩子所在班级的日历: %v", err)
	}
	if filename != "class_"+testClassA1+".ics" {
		t.Errorf("文件名不正确: %s", filename)
	}

	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("解析日历失败: %v", err)
	}
	events := cal.Events()
	if len(events) != 3 {
		t.Fatalf("期望 3 个事件（作息 + 2 个活动），实际=%d", len(events))
	}

	var schedule *ics.VEvent
	for _, ev := range events {
		if ev.Id() == "class-"+testClassA1 {
			schedule = ev
		}
	}
	if schedule == nil {
		t.Fatal("缺少班级作息事件")
	}
	rrule := schedule.GetProperty(ics.ComponentPropertyRrule)
	if rrule == nil {
		t.Fatal("作息事件缺少 RRULE")
	}
	if !strings.Contains(rrule.Value, "FREQ=WEEKLY") || !strings.Contains(rrule.Value, "BYDAY=MO,WE,FR") {
		t.Errorf("RRULE 不正确: %s", rrule.Value)
	}
	// 2026-09-01 为周二，首次上课为周三 08:00
	start := schedule.GetProperty(ics.ComponentPropertyDtStart)
	if start == nil || start.Value != "20260902T080000Z" {
		t.Errorf("期望 DTSTART=20260902T080000Z，实际=%v", start)
	}
}

func TestCalendarService_ClassCalendar_Forbidden(t *testing.T) {
	env := setupTestEnv()
	outsider := &authz.Actor{UserID: "parent-b", Role: model.RoleParent, CenterID: testCenterB, ChildClassIDs: []string{testClassB1}}

	_, _, err := env.svc.Calendar.ClassCalendar(context.Background(), outsider, testClassA1)
	if !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("期望 ErrAccessDenied，实际=%v", err)
	}
}

func TestCalendarService_ClassCalendar_NotFound(t *testing.T) {
	env := setupTestEnv()

	_, _, err := env.svc.Calendar.ClassCalendar(context.Background(), adminActor(), "class-missing")
	if !errors.Is(err, ErrClassNotFound) {
		t.Errorf("期望 ErrClassNotFound，实际=%v", err)
	}
}

// 时区跨日时 BYDAY 需按 UTC 日期平移
func TestAddClassSchedule_ShiftsWeekdays(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	class := &model.Class{
		ClassID:      "c1",
		Name:         "早班",
		ScheduleDays: []string{"monday"},
		StartTime:    "07:00",
		EndTime:      "09:00",
		StartDate:    time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	cal := ics.NewCalendar()
	if err := addClassSchedule(cal, class, loc, time.Now()); err != nil {
		t.Fatalf("addClassSchedule 失败: %v", err)
	}
	rrule := cal.Events()[0].GetProperty(ics.ComponentPropertyRrule)
	if !strings.Contains(rrule.Value, "BYDAY=SU") {
		t.Errorf("本地周一 07:00 对应 UTC 周日，实际 RRULE=%s", rrule.Value)
	}
}

func TestAddClassSchedule_NoDays(t *testing.T) {
	class := &model.Class{ClassID: "c1", StartTime: "08:00", EndTime: "09:00"}
	if err := addClassSchedule(ics.NewCalendar(), class, time.UTC, time.Now()); !errors.Is(err, errNoScheduleDays) {
		t.Errorf("期望 errNoScheduleDays，实际=%v", err)
	}
}
