package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/realtime"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
	"github.com/cliffordobure/daycare-sub000/pkg/notify"
)

// ── 内存 Mock，仅实现测试用到的过滤语义 ──

func inScope(scope authz.Scope, centerID string) bool {
	if scope.None {
		return false
	}
	return scope.All || scope.CenterID == "" || scope.CenterID == centerID
}

// ── Center ──

type mockCenterRepo struct {
	centers  map[string]*model.Center
	enrolled map[string]int64
}

func newMockCenterRepo() *mockCenterRepo {
	return &mockCenterRepo{centers: make(map[string]*model.Center), enrolled: make(map[string]int64)}
}

func (m *mockCenterRepo) Create(_ context.Context, c *model.Center) error {
	for _, existing := range m.centers {
		if strings.EqualFold(existing.Code, c.Code) {
			return fmt.Errorf("%w: uk_centers_code", repository.ErrDuplicate)
		}
	}
	if c.CenterID == "" {
		c.CenterID = uuid.NewString()
	}
	cp := *c
	m.centers[c.CenterID] = &cp
	return nil
}

func (m *mockCenterRepo) GetByID(_ context.Context, id string) (*model.Center, error) {
	c, ok := m.centers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCenterRepo) GetByCode(_ context.Context, code string) (*model.Center, error) {
	for _, c := range m.centers {
		if strings.EqualFold(c.Code, code) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCenterRepo) Update(_ context.Context, c *model.Center) error {
	cp := *c
	m.centers[c.CenterID] = &cp
	return nil
}

func (m *mockCenterRepo) List(_ context.Context, scope authz.Scope, _ *repository.CenterListFilters, _ repository.Page) ([]model.Center, int64, error) {
	var out []model.Center
	for _, c := range m.centers {
		if inScope(scope, c.CenterID) {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockCenterRepo) Counts(_ context.Context, _ string) (*repository.CenterCounts, error) {
	return &repository.CenterCounts{}, nil
}

func (m *mockCenterRepo) CountEnrolled(_ context.Context, centerID string) (int64, error) {
	return m.enrolled[centerID], nil
}

// ── User ──

type mockUserRepo struct {
	users    map[string]*model.User
	assigned map[string][]string
	links    map[string]*repository.ParentLinks
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:    make(map[string]*model.User),
		assigned: make(map[string][]string),
		links:    make(map[string]*repository.ParentLinks),
	}
}

func (m *mockUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range m.users {
		if model.StrVal(existing.CenterID) != model.StrVal(u.CenterID) {
			continue
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("%w: uk_users_center_email", repository.ErrDuplicate)
		}
		if u.Phone != "" && existing.Phone == u.Phone {
			return fmt.Errorf("%w: uk_users_center_phone", repository.ErrDuplicate)
		}
	}
	if u.UserID == "" {
		u.UserID = uuid.NewString()
	}
	cp := *u
	m.users[u.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) GetByEmailInCenter(_ context.Context, email, centerID string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) && model.StrVal(u.CenterID) == centerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) Update(_ context.Context, u *model.User) error {
	cp := *u
	m.users[u.UserID] = &cp
	return nil
}

func (m *mockUserRepo) TouchLogin(_ context.Context, id string, at time.Time) error {
	if u, ok := m.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (m *mockUserRepo) List(_ context.Context, scope authz.Scope, _ *repository.UserListFilters, _ repository.Page) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range m.users {
		if inScope(scope, model.StrVal(u.CenterID)) {
			out = append(out, *u)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) AssignedClassIDs(_ context.Context, teacherID string) ([]string, error) {
	return m.assigned[teacherID], nil
}

func (m *mockUserRepo) ParentLinks(_ context.Context, parentID string) (*repository.ParentLinks, error) {
	if l, ok := m.links[parentID]; ok {
		return l, nil
	}
	return &repository.ParentLinks{}, nil
}

// ── Child ──

type mockChildRepo struct {
	children map[string]*model.Child
}

func newMockChildRepo() *mockChildRepo {
	return &mockChildRepo{children: make(map[string]*model.Child)}
}

func parentUsers(ids []string) []model.User {
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.User{UserID: id})
	}
	return out
}

func (m *mockChildRepo) Create(_ context.Context, c *model.Child, parentIDs []string) error {
	if c.ChildID == "" {
		c.ChildID = uuid.NewString()
	}
	c.Parents = parentUsers(parentIDs)
	cp := *c
	m.children[c.ChildID] = &cp
	return nil
}

func (m *mockChildRepo) GetByID(_ context.Context, id string) (*model.Child, error) {
	c, ok := m.children[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockChildRepo) ListByIDs(_ context.Context, ids []string) ([]model.Child, error) {
	var out []model.Child
	for _, id := range ids {
		if c, ok := m.children[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockChildRepo) Update(_ context.Context, c *model.Child) error {
	cp := *c
	m.children[c.ChildID] = &cp
	return nil
}

func (m *mockChildRepo) SetParents(_ context.Context, childID string, parentIDs []string) error {
	if c, ok := m.children[childID]; ok {
		c.Parents = parentUsers(parentIDs)
	}
	return nil
}

func (m *mockChildRepo) List(_ context.Context, scope authz.Scope, _ *repository.ChildListFilters, _ repository.Page) ([]model.Child, int64, error) {
	var out []model.Child
	for _, c := range m.children {
		if inScope(scope, c.CenterID) {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockChildRepo) ListByClass(_ context.Context, classID string) ([]model.Child, error) {
	var out []model.Child
	for _, c := range m.children {
		if c.IsActive && model.StrVal(c.CurrentClassID) == classID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockChildRepo) CountEnrolledInClass(_ context.Context, classID string) (int64, error) {
	var n int64
	for _, c := range m.children {
		if c.IsActive && c.EnrollmentStatus == model.EnrollmentEnrolled && model.StrVal(c.CurrentClassID) == classID {
			n++
		}
	}
	return n, nil
}

// ── Class ──

type mockClassRepo struct {
	classes map[string]*model.Class
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{classes: make(map[string]*model.Class)}
}

func (m *mockClassRepo) Create(_ context.Context, c *model.Class, teacherIDs []string) error {
	if c.ClassID == "" {
		c.ClassID = uuid.NewString()
	}
	c.Teachers = parentUsers(teacherIDs)
	cp := *c
	m.classes[c.ClassID] = &cp
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	c, ok := m.classes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockClassRepo) Update(_ context.Context, c *model.Class) error {
	cp := *c
	m.classes[c.ClassID] = &cp
	return nil
}

func (m *mockClassRepo) SetTeachers(_ context.Context, classID string, teacherIDs []string) error {
	if c, ok := m.classes[classID]; ok {
		c.Teachers = parentUsers(teacherIDs)
	}
	return nil
}

func (m *mockClassRepo) SetEnrollment(_ context.Context, classID string, n int) error {
	if c, ok := m.classes[classID]; ok {
		c.CurrentEnrollment = n
	}
	return nil
}

func (m *mockClassRepo) List(_ context.Context, scope authz.Scope, _ *repository.ClassListFilters, _ repository.Page) ([]model.Class, int64, error) {
	var out []model.Class
	for _, c := range m.classes {
		if inScope(scope, c.CenterID) {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

// ── Attendance ──

type mockAttendanceRepo struct {
	records map[string]*model.Attendance
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]*model.Attendance)}
}

func (m *mockAttendanceRepo) Create(_ context.Context, a *model.Attendance) error {
	for _, r := range m.records {
		if r.ChildID == a.ChildID && r.Date.Equal(a.Date) {
			return fmt.Errorf("%w: uk_attendance_child_date", repository.ErrDuplicate)
		}
	}
	if a.AttendanceID == "" {
		a.AttendanceID = uuid.NewString()
	}
	cp := *a
	m.records[a.AttendanceID] = &cp
	return nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id string) (*model.Attendance, error) {
	a, ok := m.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAttendanceRepo) GetByChildDate(_ context.Context, childID string, date time.Time) (*model.Attendance, error) {
	for _, a := range m.records {
		if a.ChildID == childID && a.Date.Equal(date) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) Update(_ context.Context, a *model.Attendance) error {
	cp := *a
	m.records[a.AttendanceID] = &cp
	return nil
}

func (m *mockAttendanceRepo) List(_ context.Context, scope authz.Scope, f *repository.AttendanceListFilters, _ repository.Page) ([]model.Attendance, int64, error) {
	var out []model.Attendance
	for _, a := range m.records {
		if !inScope(scope, a.CenterID) {
			continue
		}
		if f != nil && f.ClassID != "" && model.StrVal(a.ClassID) != f.ClassID {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (m *mockAttendanceRepo) CountByStatus(_ context.Context, centerID string, date time.Time) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, a := range m.records {
		if a.CenterID == centerID && a.Date.Equal(date) && a.IsActive {
			out[a.Status]++
		}
	}
	return out, nil
}

// ── Activity ──

type mockActivityRepo struct {
	activities map[string]*model.Activity
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{activities: make(map[string]*model.Activity)}
}

func (m *mockActivityRepo) Create(_ context.Context, a *model.Activity) error {
	if a.ActivityID == "" {
		a.ActivityID = uuid.NewString()
	}
	cp := *a
	m.activities[a.ActivityID] = &cp
	return nil
}

func (m *mockActivityRepo) GetByID(_ context.Context, id string) (*model.Activity, error) {
	a, ok := m.activities[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockActivityRepo) Update(_ context.Context, a *model.Activity) error {
	cp := *a
	m.activities[a.ActivityID] = &cp
	return nil
}

func (m *mockActivityRepo) List(_ context.Context, scope authz.Scope, f *repository.ActivityListFilters, _ repository.Page) ([]model.Activity, int64, error) {
	var out []model.Activity
	for _, a := range m.activities {
		if !inScope(scope, a.CenterID) {
			continue
		}
		if f != nil && f.ClassID != "" && model.StrVal(a.ClassID) != f.ClassID {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

// ── Payment ──

type mockPaymentRepo struct {
	payments map[string]*model.Payment
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: make(map[string]*model.Payment)}
}

func (m *mockPaymentRepo) Create(_ context.Context, p *model.Payment) error {
	if p.PaymentID == "" {
		p.PaymentID = uuid.NewString()
	}
	cp := *p
	m.payments[p.PaymentID] = &cp
	return nil
}

func (m *mockPaymentRepo) GetByID(_ context.Context, id string) (*model.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPaymentRepo) Update(_ context.Context, p *model.Payment) error {
	cp := *p
	m.payments[p.PaymentID] = &cp
	return nil
}

func (m *mockPaymentRepo) List(_ context.Context, scope authz.Scope, _ *repository.PaymentListFilters, _ repository.Page) ([]model.Payment, int64, error) {
	var out []model.Payment
	for _, p := range m.payments {
		if inScope(scope, p.CenterID) {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockPaymentRepo) MarkOverdue(_ context.Context, today time.Time) (int64, error) {
	var n int64
	for _, p := range m.payments {
		if p.IsActive && p.Status == model.PaymentPending && p.DueDate.Before(today) && p.TotalAmount > p.PaidAmount {
			p.Status = model.PaymentOverdue
			n++
		}
	}
	return n, nil
}

// ── HealthRecord ──

type mockHealthRecordRepo struct {
	records map[string]*model.HealthRecord
}

func newMockHealthRecordRepo() *mockHealthRecordRepo {
	return &mockHealthRecordRepo{records: make(map[string]*model.HealthRecord)}
}

func (m *mockHealthRecordRepo) Create(_ context.Context, h *model.HealthRecord) error {
	for _, r := range m.records {
		if r.ChildID == h.ChildID && r.RecordDate.Equal(h.RecordDate) {
			return fmt.Errorf("%w: uk_health_child_date", repository.ErrDuplicate)
		}
	}
	if h.HealthRecordID == "" {
		h.HealthRecordID = uuid.NewString()
	}
	cp := *h
	m.records[h.HealthRecordID] = &cp
	return nil
}

func (m *mockHealthRecordRepo) GetByID(_ context.Context, id string) (*model.HealthRecord, error) {
	h, ok := m.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *h
	return &cp, nil
}

func (m *mockHealthRecordRepo) Update(_ context.Context, h *model.HealthRecord) error {
	cp := *h
	m.records[h.HealthRecordID] = &cp
	return nil
}

func (m *mockHealthRecordRepo) List(_ context.Context, scope authz.Scope, _ *repository.HealthRecordListFilters, _ repository.Page) ([]model.HealthRecord, int64, error) {
	var out []model.HealthRecord
	for _, h := range m.records {
		if inScope(scope, h.CenterID) {
			out = append(out, *h)
		}
	}
	return out, int64(len(out)), nil
}

// ── Message ──

type mockMessageRepo struct {
	messages map[string]*model.Message
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{messages: make(map[string]*model.Message)}
}

func (m *mockMessageRepo) Create(_ context.Context, msg *model.Message) error {
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	cp := *msg
	m.messages[msg.MessageID] = &cp
	return nil
}

func (m *mockMessageRepo) GetByID(_ context.Context, id string) (*model.Message, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *msg
	return &cp, nil
}

func (m *mockMessageRepo) Update(_ context.Context, msg *model.Message) error {
	cp := *msg
	m.messages[msg.MessageID] = &cp
	return nil
}

func (m *mockMessageRepo) List(_ context.Context, scope authz.Scope, _ *repository.MessageListFilters, _ repository.Page) ([]model.Message, int64, error) {
	var out []model.Message
	for _, msg := range m.messages {
		if scope.UserID != "" && msg.SenderID != scope.UserID && msg.RecipientID != scope.UserID {
			continue
		}
		if inScope(scope, model.StrVal(msg.CenterID)) {
			out = append(out, *msg)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockMessageRepo) CountUnread(_ context.Context, recipientID string) (int64, error) {
	var n int64
	for _, msg := range m.messages {
		if msg.RecipientID == recipientID && !msg.IsRead && msg.IsActive {
			n++
		}
	}
	return n, nil
}

// ── Notification ──

type mockNotificationRepo struct {
	items map[string]*model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{items: make(map[string]*model.Notification)}
}

func (m *mockNotificationRepo) CreateBatch(_ context.Context, items []model.Notification) error {
	for i := range items {
		if items[i].NotificationID == "" {
			items[i].NotificationID = uuid.NewString()
		}
		cp := items[i]
		m.items[cp.NotificationID] = &cp
	}
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	n, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *mockNotificationRepo) Update(_ context.Context, n *model.Notification) error {
	cp := *n
	m.items[n.NotificationID] = &cp
	return nil
}

func (m *mockNotificationRepo) List(_ context.Context, scope authz.Scope, _ *repository.NotificationListFilters, _ repository.Page) ([]model.Notification, int64, error) {
	var out []model.Notification
	for _, n := range m.items {
		if scope.UserID != "" && n.RecipientID != scope.UserID {
			continue
		}
		out = append(out, *n)
	}
	return out, int64(len(out)), nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, recipientID string, at time.Time) (int64, error) {
	var n int64
	for _, item := range m.items {
		if item.RecipientID == recipientID && !item.IsRead {
			item.IsRead = true
			item.ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (m *mockNotificationRepo) ListDue(_ context.Context, now time.Time, limit int) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range m.items {
		if n.IsActive && n.IsDue(now) && len(out) < limit {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) MarkSent(_ context.Context, id string, at time.Time) error {
	if n, ok := m.items[id]; ok {
		n.SentAt = &at
	}
	return nil
}

// ── 外发渠道 ──

type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.Email
}

func (f *fakeMailer) SendEmail(_ context.Context, email notify.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, email)
	return nil
}

func (f *fakeMailer) Configured() bool { return true }

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []notify.SMS
}

func (f *fakeSMS) SendSMS(_ context.Context, sms notify.SMS) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sms)
	return nil
}

func (f *fakeSMS) Configured() bool { return true }

func (f *fakeSMS) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type memBlacklist struct {
	revoked map[string]bool
}

func (b *memBlacklist) BlacklistToken(_ context.Context, jti string, _ time.Duration) error {
	b.revoked[jti] = true
	return nil
}

func (b *memBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return b.revoked[jti], nil
}

// recordingEmitter 记录实时事件
type recordingEmitter struct {
	mu     sync.Mutex
	events []string
}

func (e *recordingEmitter) Emit(event string, _ any, rooms ...realtime.Room) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range rooms {
		e.events = append(e.events, event+"@"+string(r))
	}
}

func (e *recordingEmitter) has(event string, room realtime.Room) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ev := range e.events {
		if ev == event+"@"+string(room) {
			return true
		}
	}
	return false
}
