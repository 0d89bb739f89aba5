package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// 本文件集中存放派生字段的纯函数，由写路径显式调用

// 机构固定作息（考勤迟到/早退计算基准）
const (
	InstitutionOpenHour  = 8
	InstitutionCloseHour = 16
)

// 派生/校验错误
var (
	ErrInvalidTimeRange = errors.New("结束时间必须晚于开始时间")
	ErrInvalidDateRange = errors.New("结束日期必须晚于开始日期")
	ErrInvalidAgeGroup  = errors.New("年龄段上限必须大于下限")
	ErrInvalidHHMM      = errors.New("时间格式必须为 HH:MM")
	ErrNoTeachers       = errors.New("班级至少需要一名教师")
	ErrInvalidCapacity  = errors.New("容量必须大于 0")
)

// ────────── Center ──────────

// OccupancyRate 入托率 = round(100 * occupancy / capacity)，限定在 [0,100]
// capacity <= 0 时返回 0
func OccupancyRate(occupancy, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	rate := int(math.Round(100 * float64(occupancy) / float64(capacity)))
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}

// ────────── Child ──────────

// Age 周岁与月龄（按日历计算，未满一月不计）
func Age(dob, now time.Time) (years, months int) {
	if now.Before(dob) {
		return 0, 0
	}
	months = (now.Year()-dob.Year())*12 + int(now.Month()) - int(dob.Month())
	if now.Day() < dob.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}
	return months / 12, months
}

// NormalizeEmergencyContacts 至多保留一个主联系人，多余的降级为非主联系人
func NormalizeEmergencyContacts(contacts []EmergencyContact) []EmergencyContact {
	out := make([]EmergencyContact, len(contacts))
	copy(out, contacts)
	seen := false
	for i := range out {
		if !out[i].IsPrimary {
			continue
		}
		if seen {
			out[i].IsPrimary = false
			continue
		}
		seen = true
	}
	return out
}

// ────────── Class ──────────

// ParseHHMM 解析 "HH:MM"，返回自零点起的分钟数
func ParseHHMM(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, ErrInvalidHHMM
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, ErrInvalidHHMM
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, ErrInvalidHHMM
	}
	return h*60 + m, nil
}

// ScheduleDuration 由开始/结束时间推导时长（分钟）
func ScheduleDuration(start, end string) (int, error) {
	s, err := ParseHHMM(start)
	if err != nil {
		return 0, fmt.Errorf("start_time: %w", err)
	}
	e, err := ParseHHMM(end)
	if err != nil {
		return 0, fmt.Errorf("end_time: %w", err)
	}
	if e <= s {
		return 0, ErrInvalidTimeRange
	}
	return e - s, nil
}

// PrepareClass 校验班级不变量并写入派生时长
func PrepareClass(c *Class) error {
	if c.AgeMinMonths >= c.AgeMaxMonths {
		return ErrInvalidAgeGroup
	}
	if c.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if !c.EndDate.After(c.StartDate) {
		return ErrInvalidDateRange
	}
	d, err := ScheduleDuration(c.StartTime, c.EndTime)
	if err != nil {
		return err
	}
	c.DurationMinutes = d
	return nil
}

// ────────── Activity ──────────

// ValidateTimeWindow start < end
func ValidateTimeWindow(start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidTimeRange
	}
	return nil
}

// ────────── Attendance ──────────

// DeriveAttendance 依据 08:00-16:00 作息计算迟到/早退分钟数
// loc 为中心所在时区；present 且迟到时状态转为 late
func DeriveAttendance(a *Attendance, loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	a.LateMinutes = 0
	a.EarlyDepartureMinutes = 0

	if a.CheckIn != nil {
		in := a.CheckIn.In(loc)
		open := time.Date(in.Year(), in.Month(), in.Day(), InstitutionOpenHour, 0, 0, 0, loc)
		if in.After(open) {
			a.LateMinutes = int(in.Sub(open) / time.Minute)
		}
	}
	if a.CheckOut != nil {
		out := a.CheckOut.In(loc)
		closing := time.Date(out.Year(), out.Month(), out.Day(), InstitutionCloseHour, 0, 0, 0, loc)
		if out.Before(closing) {
			a.EarlyDepartureMinutes = int(closing.Sub(out) / time.Minute)
		}
	}
	if a.Status == AttendancePresent && a.LateMinutes > 0 {
		a.Status = AttendanceLate
	}
}

// ────────── Payment ──────────

// PaymentTotal total = max(0, base + Σfees − Σdiscounts)，保留两位小数
func PaymentTotal(base float64, fees, discounts []LineItem) float64 {
	total := base
	for _, f := range fees {
		total += f.Amount
	}
	for _, d := range discounts {
		total -= d.Amount
	}
	if total < 0 {
		total = 0
	}
	return roundCents(total)
}

// DerivePayment 保存前重新计算总额与状态
// 已付 >= 总额（含折扣抵扣为 0）时转为 paid 并记录付款时间；总额上调导致欠款时回到 pending；pending 过期转为 overdue
func DerivePayment(p *Payment, now time.Time) {
	p.TotalAmount = PaymentTotal(p.BaseAmount, p.Fees, p.Discounts)
	p.PaidAmount = roundCents(p.PaidAmount)

	if p.Status == PaymentCancelled || p.Status == PaymentRefunded {
		return
	}
	if p.PaidAmount >= p.TotalAmount {
		p.Status = PaymentPaid
		if p.PaidDate == nil {
			t := now
			p.PaidDate = &t
		}
		return
	}
	if p.Status == PaymentPaid {
		p.Status = PaymentPending
		p.PaidDate = nil
	}
	if p.Status == PaymentPending && IsPastDue(p.DueDate, now) {
		p.Status = PaymentOverdue
	}
}

// IsPastDue 截止日（按日）已过
func IsPastDue(due, now time.Time) bool {
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.After(dueDay)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ────────── 日期 ──────────

// DateOnly 截断为 UTC 零点日期
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
