package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
)

// ── 班级日历（iCalendar, RFC 5545）──
//
// 班级作息输出为一个按周重复的事件，活动逐条输出。
// 时间统一以 UTC 写出，BYDAY 按本地日期与 UTC 日期的偏移修正。

const icsProductID = "-//daycare//class calendar//EN"

var errNoScheduleDays = errors.New("班级未设置上课日")

var icsWeekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var icsDayCodes = [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// CalendarService 日历导出接口
type CalendarService interface {
	ClassCalendar(ctx context.Context, actor *authz.Actor, classID string) ([]byte, string, error)
}

type calendarService struct {
	*core
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(c *core) CalendarService {
	return &calendarService{core: c}
}

func (s *calendarService) ClassCalendar(ctx context.Context, actor *authz.Actor, classID string) ([]byte, string, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		return nil, "", s.lookupErr(err, ErrClassNotFound, "查询班级失败", zap.String("class_id", classID))
	}
	if err := authorize(actor, authz.ClassResource(class), authz.OpRead); err != nil {
		return nil, "", err
	}

	filters := &repository.ActivityListFilters{ClassID: classID}
	activities, _, err := s.repo.Activity.List(ctx, authz.ScopeFor(actor, authz.KindActivity), filters, repository.Unpaged)
	if err != nil {
		return nil, "", s.dbErr("查询班级活动失败", err, zap.String("class_id", classID))
	}

	now := s.now().UTC()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetName(class.Name)
	cal.SetXWRCalName(class.Name)

	loc := s.centerLocation(ctx, class.CenterID)
	if err := addClassSchedule(cal, class, loc, now); err != nil {
		s.logger.Warn("班级作息无法导出", zap.String("class_id", classID), zap.Error(err))
	}
	for i := range activities {
		addActivity(cal, &activities[i], now)
	}

	filename := fmt.Sprintf("class_%s.ics", class.ClassID)
	return []byte(cal.Serialize()), filename, nil
}

// addClassSchedule 首次上课日为开班日起第一个排课日
func addClassSchedule(cal *ics.Calendar, class *model.Class, loc *time.Location, now time.Time) error {
	days := make(map[time.Weekday]bool, len(class.ScheduleDays))
	for _, d := range class.ScheduleDays {
		if wd, ok := icsWeekdays[strings.ToLower(d)]; ok {
			days[wd] = true
		}
	}
	if len(days) == 0 {
		return errNoScheduleDays
	}
	startMin, err := model.ParseHHMM(class.StartTime)
	if err != nil {
		return err
	}
	endMin, err := model.ParseHHMM(class.EndTime)
	if err != nil {
		return err
	}

	first := time.Date(class.StartDate.Year(), class.StartDate.Month(), class.StartDate.Day(), 0, 0, 0, 0, loc)
	for i := 0; i < 7 && !days[first.Weekday()]; i++ {
		first = first.AddDate(0, 0, 1)
	}
	start := first.Add(time.Duration(startMin) * time.Minute)
	end := first.Add(time.Duration(endMin) * time.Minute)
	until := time.Date(class.EndDate.Year(), class.EndDate.Month(), class.EndDate.Day(), 23, 59, 59, 0, loc)

	// 本地日期与 UTC 日期相差的天数
	shift := int(start.UTC().Weekday()) - int(start.Weekday())
	switch {
	case shift > 1:
		shift -= 7
	case shift < -1:
		shift += 7
	}
	codes := make([]string, 0, len(days))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if days[wd] {
			codes = append(codes, icsDayCodes[(int(wd)+shift+7)%7])
		}
	}

	ev := cal.AddEvent("class-" + class.ClassID)
	ev.SetSummary(class.Name)
	if class.Description != "" {
		ev.SetDescription(class.Description)
	}
	if class.Room != "" {
		ev.SetLocation(class.Room)
	}
	ev.SetDtStampTime(now)
	ev.SetStartAt(start)
	ev.SetEndAt(end)
	ev.AddRrule(fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s;UNTIL=%s",
		strings.Join(codes, ","), until.UTC().Format("20060102T150405Z")))
	return nil
}

func addActivity(cal *ics.Calendar, a *model.Activity, now time.Time) {
	ev := cal.AddEvent("activity-" + a.ActivityID)
	ev.SetSummary(a.Title)
	if a.Description != "" {
		ev.SetDescription(a.Description)
	}
	if a.Location != "" {
		ev.SetLocation(a.Location)
	}
	ev.SetDtStampTime(now)
	ev.SetStartAt(a.StartTime)
	ev.SetEndAt(a.EndTime)
	if a.Status == model.ActivityCancelled {
		ev.SetStatus(ics.ObjectStatusCancelled)
	}
}
