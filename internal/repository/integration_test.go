//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
	"github.com/cliffordobure/daycare-sub000/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=daycare password=daycare_password dbname=daycare_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

type fixture struct {
	center  *model.Center
	parent  *model.User
	teacher *model.User
	class   *model.Class
	child   *model.Child
}

// setupFixture 创建一个中心及其班级、教师、家长和儿童，返回清理函数
func setupFixture(t *testing.T, repo *repository.Repository) (*fixture, func()) {
	t.Helper()
	ctx := context.Background()
	suffix := time.Now().UnixNano()

	f := &fixture{}
	f.center = &model.Center{Name: "测试中心", Code: fmt.Sprintf("C%d", suffix), Capacity: 10, Timezone: "UTC"}
	f.center.IsActive = true
	if err := repo.Center.Create(ctx, f.center); err != nil {
		t.Fatalf("创建中心失败: %v", err)
	}

	f.teacher = &model.User{
		FirstName:    "Tina", LastName: "Teacher", Email: fmt.Sprintf("t%d@example.com", suffix),
		PasswordHash: "x", Role: model.RoleTeacher, CenterID: &f.center.CenterID,
	}
	f.teacher.IsActive = true
	if err := repo.User.Create(ctx, f.teacher); err != nil {
		t.Fatalf("创建教师失败: %v", err)
	}
	f.parent = &model.User{
		FirstName:    "Pat", LastName: "Parent", Email: fmt.Sprintf("p%d@example.com", suffix),
		PasswordHash: "x", Role: model.RoleParent, CenterID: &f.center.CenterID,
	}
	f.parent.IsActive = true
	if err := repo.User.Create(ctx, f.parent); err != nil {
		t.Fatalf("创建家长失败: %v", err)
	}

	today := model.DateOnly(time.Now())
	f.class = &model.Class{
		Name:      "Sunflowers", CenterID: f.center.CenterID, AgeMinMonths: 12, AgeMaxMonths: 36,
		Capacity:  8, StartTime: "08:00", EndTime: "16:00", DurationMinutes: 480,
		StartDate: today, EndDate: today.AddDate(1, 0, 0),
	}
	f.class.IsActive = true
	if err := repo.Class.Create(ctx, f.class, []string{f.teacher.UserID}); err != nil {
		t.Fatalf("创建班级失败: %v", err)
	}

	f.child = &model.Child{
		FirstName: "Kid", LastName: "One", DateOfBirth: today.AddDate(-2, 0, 0),
		CenterID:  f.center.CenterID, CurrentClassID: &f.class.ClassID, EnrollmentStatus: model.EnrollmentEnrolled,
	}
	f.child.IsActive = true
	if err := repo.Child.Create(ctx, f.child, []string{f.parent.UserID}); err != nil {
		t.Fatalf("创建儿童失败: %v", err)
	}

	cleanup := func() {
		id := f.center.CenterID
		testDB.Exec("DELETE FROM attendance WHERE center_id = ?", id)
		testDB.Exec("DELETE FROM payments WHERE center_id = ?", id)
		testDB.Exec("DELETE FROM child_parents WHERE child_id = ?", f.child.ChildID)
		testDB.Exec("DELETE FROM children WHERE center_id = ?", id)
		testDB.Exec("DELETE FROM class_teachers WHERE class_id = ?", f.class.ClassID)
		testDB.Exec("DELETE FROM classes WHERE center_id = ?", id)
		testDB.Exec("DELETE FROM users WHERE center_id = ?", id)
		testDB.Exec("DELETE FROM centers WHERE center_id = ?", id)
	}
	return f, cleanup
}

// ═══════════════════════════════════════════════════════════
// Attendance
// ═══════════════════════════════════════════════════════════

func TestAttendance_DuplicateChildDate(t *testing.T) {
	repo := repository.NewRepository(testDB)
	f, cleanup := setupFixture(t, repo)
	defer cleanup()
	ctx := context.Background()

	date := model.DateOnly(time.Now())
	first := &model.Attendance{ChildID: f.child.ChildID, Date: date, CenterID: f.center.CenterID, Status: model.AttendancePresent}
	first.IsActive = true
	if err := repo.Attendance.Create(ctx, first); err != nil {
		t.Fatalf("首次创建考勤失败: %v", err)
	}

	dup := &model.Attendance{ChildID: f.child.ChildID, Date: date, CenterID: f.center.CenterID, Status: model.AttendanceAbsent}
	dup.IsActive = true
	err := repo.Attendance.Create(ctx, dup)
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("期望 ErrDuplicate，实际=%v", err)
	}

	got, err := repo.Attendance.GetByChildDate(ctx, f.child.ChildID, date)
	if err != nil {
		t.Fatalf("GetByChildDate 失败: %v", err)
	}
	if got.Status != model.AttendancePresent {
		t.Errorf("期望保留首条记录 present，实际=%s", got.Status)
	}
}

// ═══════════════════════════════════════════════════════════
// Scope
// ═══════════════════════════════════════════════════════════

func TestChildList_ParentScope(t *testing.T) {
	repo := repository.NewRepository(testDB)
	f, cleanup := setupFixture(t, repo)
	defer cleanup()
	ctx := context.Background()

	parent := &authz.Actor{UserID: f.parent.UserID, Role: model.RoleParent, CenterID: f.center.CenterID, ChildIDs: []string{f.child.ChildID}}
	children, total, err := repo.Child.List(ctx, authz.ScopeFor(parent, authz.KindChild), nil, repository.Page{Limit: 10})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if total != 1 || len(children) != 1 || children[0].ChildID != f.child.ChildID {
		t.Errorf("期望仅返回自己的孩子，实际 total=%d", total)
	}
	if !children[0].HasParent(f.parent.UserID) {
		t.Error("期望预加载家长")
	}

	stranger := &authz.Actor{UserID: "00000000-0000-0000-0000-000000000000", Role: model.RoleParent, CenterID: f.center.CenterID}
	_, total, err = repo.Child.List(ctx, authz.ScopeFor(stranger, authz.KindChild), nil, repository.Page{Limit: 10})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if total != 0 {
		t.Errorf("无孩子的家长应看不到记录，实际 total=%d", total)
	}
}

func TestUser_ParentLinksAndAssignedClasses(t *testing.T) {
	repo := repository.NewRepository(testDB)
	f, cleanup := setupFixture(t, repo)
	defer cleanup()
	ctx := context.Background()

	links, err := repo.User.ParentLinks(ctx, f.parent.UserID)
	if err != nil {
		t.Fatalf("ParentLinks 失败: %v", err)
	}
	if len(links.ChildIDs) != 1 || len(links.ChildClassIDs) != 1 || links.ChildClassIDs[0] != f.class.ClassID {
		t.Errorf("ParentLinks 不符: %+v", links)
	}

	classIDs, err := repo.User.AssignedClassIDs(ctx, f.teacher.UserID)
	if err != nil {
		t.Fatalf("AssignedClassIDs 失败: %v", err)
	}
	if len(classIDs) != 1 || classIDs[0] != f.class.ClassID {
		t.Errorf("期望教师负责 %s，实际=%v", f.class.ClassID, classIDs)
	}
}

func TestUser_EmailUniquePerCenter(t *testing.T) {
	repo := repository.NewRepository(testDB)
	f, cleanup := setupFixture(t, repo)
	defer cleanup()
	ctx := context.Background()

	dup := &model.User{
		FirstName:    "Other", LastName: "Parent", Email: f.parent.Email,
		PasswordHash: "x", Role: model.RoleParent, CenterID: &f.center.CenterID,
	}
	dup.IsActive = true
	if err := repo.User.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("期望 ErrDuplicate，实际=%v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Payment
// ═══════════════════════════════════════════════════════════

func TestPayment_MarkOverdue(t *testing.T) {
	repo := repository.NewRepository(testDB)
	f, cleanup := setupFixture(t, repo)
	defer cleanup()
	ctx := context.Background()

	p := &model.Payment{
		ChildID:     f.child.ChildID, ParentID: f.parent.UserID, CenterID: f.center.CenterID,
		Description: "Tuition", BaseAmount: 100, TotalAmount: 100, Currency: "USD",
		DueDate:     model.DateOnly(time.Now()).AddDate(0, 0, -3), Status: model.PaymentPending,
	}
	p.IsActive = true
	if err := repo.Payment.Create(ctx, p); err != nil {
		t.Fatalf("创建缴费失败: %v", err)
	}

	n, err := repo.Payment.MarkOverdue(ctx, time.Now())
	if err != nil {
		t.Fatalf("MarkOverdue 失败: %v", err)
	}
	if n < 1 {
		t.Errorf("期望至少 1 条被标记，实际=%d", n)
	}
	got, err := repo.Payment.GetByID(ctx, p.PaymentID)
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}
	if got.Status != model.PaymentOverdue {
		t.Errorf("期望 overdue，实际=%s", got.Status)
	}
}
