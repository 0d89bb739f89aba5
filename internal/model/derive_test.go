package model

import (
	"errors"
	"testing"
	"time"
)

func TestOccupancyRate(t *testing.T) {
	tests := []struct {
		name      string
		occupancy int
		capacity  int
		want      int
	}{
		{"空园", 0, 10, 0},
		{"半满", 5, 10, 50},
		{"四舍五入", 1, 3, 33},
		{"向上取整", 2, 3, 67},
		{"满员", 10, 10, 100},
		{"超员截断", 12, 10, 100},
		{"负数截断", -3, 10, 0},
		{"容量为零", 5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OccupancyRate(tt.occupancy, tt.capacity); got != tt.want {
				t.Errorf("期望 %d，实际=%d", tt.want, got)
			}
		})
	}
}

func TestCenterRecompute_Idempotent(t *testing.T) {
	c := &Center{Capacity: 10, CurrentOccupancy: 7, OccupancyRate: 3}
	c.Recompute()
	first := c.OccupancyRate
	c.Recompute()
	if c.OccupancyRate != first || first != 70 {
		t.Errorf("期望两次均为 70，实际=%d/%d", first, c.OccupancyRate)
	}
}

func TestPaymentTotal(t *testing.T) {
	tests := []struct {
		name      string
		base      float64
		fees      []LineItem
		discounts []LineItem
		want      float64
	}{
		{"无附加", 100, nil, nil, 100},
		{"空列表", 100, []LineItem{}, []LineItem{}, 100},
		{"附加费", 100, []LineItem{{Amount: 10}, {Amount: 5.5}}, nil, 115.5},
		{"折扣", 100, nil, []LineItem{{Amount: 30}}, 70},
		{"混合", 200, []LineItem{{Amount: 25}}, []LineItem{{Amount: 50}, {Amount: 5}}, 170},
		{"折扣超过总额", 50, nil, []LineItem{{Amount: 80}}, 0},
		{"分位取整", 10.001, []LineItem{{Amount: 0.005}}, nil, 10.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PaymentTotal(tt.base, tt.fees, tt.discounts)
			if got != tt.want {
				t.Errorf("期望 %.2f，实际=%.2f", tt.want, got)
			}
			if again := PaymentTotal(tt.base, tt.fees, tt.discounts); again != got {
				t.Errorf("重复计算结果不一致: %.2f != %.2f", again, got)
			}
		})
	}
}

func TestDerivePayment_Status(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("过期转为 overdue", func(t *testing.T) {
		p := &Payment{BaseAmount: 100, Status: PaymentPending, DueDate: now.AddDate(0, 0, -1)}
		DerivePayment(p, now)
		if p.Status != PaymentOverdue {
			t.Errorf("期望 overdue，实际=%s", p.Status)
		}
	})

	t.Run("截止当天仍为 pending", func(t *testing.T) {
		p := &Payment{BaseAmount: 100, Status: PaymentPending, DueDate: DateOnly(now)}
		DerivePayment(p, now)
		if p.Status != PaymentPending {
			t.Errorf("期望 pending，实际=%s", p.Status)
		}
	})

	t.Run("足额支付", func(t *testing.T) {
		p := &Payment{BaseAmount: 100, PaidAmount: 100, Status: PaymentOverdue, DueDate: now.AddDate(0, 0, -5)}
		DerivePayment(p, now)
		if p.Status != PaymentPaid {
			t.Errorf("期望 paid，实际=%s", p.Status)
		}
		if p.PaidDate == nil || !p.PaidDate.Equal(now) {
			t.Errorf("期望记录付款时间 %v，实际=%v", now, p.PaidDate)
		}
	})

	t.Run("折扣抵扣为 0 视为已付", func(t *testing.T) {
		p := &Payment{
			BaseAmount: 100,
			Discounts:  []LineItem{{Amount: 150}},
			Status:     PaymentPending,
			DueDate:    now.AddDate(0, 0, -2),
		}
		DerivePayment(p, now)
		if p.TotalAmount != 0 || p.Status != PaymentPaid {
			t.Errorf("期望 total=0 且 paid，实际=%.2f/%s", p.TotalAmount, p.Status)
		}
		if p.PaidDate == nil {
			t.Error("期望记录付款时间")
		}
	})

	t.Run("部分支付", func(t *testing.T) {
		p := &Payment{BaseAmount: 100, PaidAmount: 40, Status: PaymentPending, DueDate: now.AddDate(0, 0, 3)}
		DerivePayment(p, now)
		if p.Status != PaymentPending || p.PaidDate != nil {
			t.Errorf("期望 pending 且无付款时间，实际=%s/%v", p.Status, p.PaidDate)
		}
	})

	t.Run("取消状态不变", func(t *testing.T) {
		p := &Payment{BaseAmount: 100, PaidAmount: 100, Status: PaymentCancelled, DueDate: now.AddDate(0, 0, -3)}
		DerivePayment(p, now)
		if p.Status != PaymentCancelled {
			t.Errorf("期望 cancelled，实际=%s", p.Status)
		}
	})

	t.Run("追加费用后回到 pending", func(t *testing.T) {
		paid := now.AddDate(0, 0, -1)
		p := &Payment{
			BaseAmount: 100,
			PaidAmount: 100,
			Status:     PaymentPaid,
			PaidDate:   &paid,
			Fees:       []LineItem{{Amount: 20}},
			DueDate:    now.AddDate(0, 0, 3),
		}
		DerivePayment(p, now)
		if p.Status != PaymentPending || p.TotalAmount != 120 {
			t.Errorf("期望 pending/120，实际=%s/%.2f", p.Status, p.TotalAmount)
		}
	})
}

func TestValidateTimeWindow(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	if err := ValidateTimeWindow(start, start.Add(time.Hour)); err != nil {
		t.Errorf("end > start 应通过: %v", err)
	}
	if err := ValidateTimeWindow(start, start); !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("end == start 应失败，实际: %v", err)
	}
	if err := ValidateTimeWindow(start, start.Add(-time.Minute)); !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("end < start 应失败，实际: %v", err)
	}
}

func validClass() *Class {
	return &Class{
		AgeMinMonths: 12,
		AgeMaxMonths: 36,
		Capacity:     15,
		StartTime:    "08:30",
		EndTime:      "15:00",
		StartDate:    time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestPrepareClass(t *testing.T) {
	c := validClass()
	if err := PrepareClass(c); err != nil {
		t.Fatalf("PrepareClass 失败: %v", err)
	}
	if c.DurationMinutes != 390 {
		t.Errorf("期望时长 390，实际=%d", c.DurationMinutes)
	}

	tests := []struct {
		name   string
		mutate func(c *Class)
		want   error
	}{
		{"年龄段相等", func(c *Class) { c.AgeMaxMonths = c.AgeMinMonths }, ErrInvalidAgeGroup},
		{"年龄段颠倒", func(c *Class) { c.AgeMinMonths = 48 }, ErrInvalidAgeGroup},
		{"结束日期相同", func(c *Class) { c.EndDate = c.StartDate }, ErrInvalidDateRange},
		{"结束日期更早", func(c *Class) { c.EndDate = c.StartDate.AddDate(0, 0, -1) }, ErrInvalidDateRange},
		{"时间颠倒", func(c *Class) { c.EndTime = "08:00" }, ErrInvalidTimeRange},
		{"时间格式", func(c *Class) { c.StartTime = "8:30" }, ErrInvalidHHMM},
		{"容量为零", func(c *Class) { c.Capacity = 0 }, ErrInvalidCapacity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validClass()
			tt.mutate(c)
			if err := PrepareClass(c); !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
}

func TestDeriveAttendance(t *testing.T) {
	day := func(h, m int) *time.Time {
		v := time.Date(2025, 2, 3, h, m, 0, 0, time.UTC)
		return &v
	}

	a := &Attendance{Status: AttendancePresent, CheckIn: day(8, 25), CheckOut: day(15, 10)}
	DeriveAttendance(a, time.UTC)
	if a.LateMinutes != 25 {
		t.Errorf("期望迟到 25 分钟，实际=%d", a.LateMinutes)
	}
	if a.EarlyDepartureMinutes != 50 {
		t.Errorf("期望早退 50 分钟，实际=%d", a.EarlyDepartureMinutes)
	}
	if a.Status != AttendanceLate {
		t.Errorf("期望状态 late，实际=%s", a.Status)
	}

	onTime := &Attendance{Status: AttendancePresent, CheckIn: day(7, 50), CheckOut: day(16, 30)}
	DeriveAttendance(onTime, time.UTC)
	if onTime.LateMinutes != 0 || onTime.EarlyDepartureMinutes != 0 || onTime.Status != AttendancePresent {
		t.Errorf("准时到离不应产生迟到/早退，实际=%d/%d/%s", onTime.LateMinutes, onTime.EarlyDepartureMinutes, onTime.Status)
	}

	// 客户端传入的分钟数会被覆盖
	absent := &Attendance{Status: AttendanceAbsent, LateMinutes: 99}
	DeriveAttendance(absent, nil)
	if absent.LateMinutes != 0 {
		t.Errorf("期望迟到分钟被重置为 0，实际=%d", absent.LateMinutes)
	}
}

func TestDeriveAttendance_Timezone(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	// 05:40 UTC = 08:40 本地
	in := time.Date(2025, 2, 3, 5, 40, 0, 0, time.UTC)
	a := &Attendance{Status: AttendanceLate, CheckIn: &in}
	DeriveAttendance(a, loc)
	if a.LateMinutes != 40 {
		t.Errorf("期望迟到 40 分钟，实际=%d", a.LateMinutes)
	}
}

func TestNormalizeEmergencyContacts(t *testing.T) {
	in := []EmergencyContact{
		{Name: "A", IsPrimary: false},
		{Name: "B", IsPrimary: true},
		{Name: "C", IsPrimary: true},
		{Name: "D", IsPrimary: true},
	}
	out := NormalizeEmergencyContacts(in)
	if len(out) != 4 {
		t.Fatalf("联系人不应被删除，实际数量=%d", len(out))
	}
	primaries := 0
	for _, c := range out {
		if c.IsPrimary {
			primaries++
			if c.Name != "B" {
				t.Errorf("期望保留第一个主联系人 B，实际=%s", c.Name)
			}
		}
	}
	if primaries != 1 {
		t.Errorf("期望 1 个主联系人，实际=%d", primaries)
	}
	if !in[2].IsPrimary {
		t.Error("不应修改入参切片")
	}
}

func TestAge(t *testing.T) {
	dob := time.Date(2022, 5, 20, 0, 0, 0, 0, time.UTC)
	years, months := Age(dob, time.Date(2025, 5, 19, 0, 0, 0, 0, time.UTC))
	if years != 2 || months != 35 {
		t.Errorf("期望 2 岁 35 月，实际=%d/%d", years, months)
	}
	years, months = Age(dob, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC))
	if years != 3 || months != 36 {
		t.Errorf("期望 3 岁 36 月，实际=%d/%d", years, months)
	}
	if y, m := Age(dob, dob.AddDate(0, 0, -1)); y != 0 || m != 0 {
		t.Errorf("出生前应为 0，实际=%d/%d", y, m)
	}
}

func TestUserChangedPasswordAfter(t *testing.T) {
	u := &User{}
	issued := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	if u.ChangedPasswordAfter(issued) {
		t.Error("从未改密不应判定失效")
	}
	u.MarkPasswordChanged(issued.Add(time.Hour))
	if !u.ChangedPasswordAfter(issued) {
		t.Error("改密前签发的 Token 应失效")
	}
	if u.ChangedPasswordAfter(issued.Add(time.Hour)) {
		t.Error("改密同一秒签发的 Token 不应失效")
	}
}
