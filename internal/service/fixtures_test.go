package service

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cliffordobure/daycare-sub000/config"
	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
	"github.com/cliffordobure/daycare-sub000/pkg/jwt"
)

const (
	testCenterA = "center-a"
	testCenterB = "center-b"
	testClassA1 = "class-a1"
	testClassB1 = "class-b1"
	testChildA1 = "child-a1"
	testChildA2 = "child-a2"
	testChildB1 = "child-b1"

	testPassword = "password123"
)

// testEnv 测试用服务聚合及其底层 Mock
type testEnv struct {
	svc      *Service
	jwtMgr   *jwt.Manager
	dispatch *Dispatcher
	events   *recordingEmitter
	mailer   *fakeMailer
	sms      *fakeSMS

	centers       *mockCenterRepo
	users         *mockUserRepo
	children      *mockChildRepo
	classes       *mockClassRepo
	attendance    *mockAttendanceRepo
	activities    *mockActivityRepo
	payments      *mockPaymentRepo
	healthRecords *mockHealthRecordRepo
	messages      *mockMessageRepo
	notifications *mockNotificationRepo
	blacklist     *memBlacklist
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-tests",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			BcryptCost:      bcrypt.MinCost,
		},
	}
}

// setupTestEnv 两个中心、各一个班级，中心 A 含管理员/教师/家长
func setupTestEnv() *testEnv {
	env := &testEnv{
		events:        &recordingEmitter{},
		mailer:        &fakeMailer{},
		sms:           &fakeSMS{},
		centers:       newMockCenterRepo(),
		users:         newMockUserRepo(),
		children:      newMockChildRepo(),
		classes:       newMockClassRepo(),
		attendance:    newMockAttendanceRepo(),
		activities:    newMockActivityRepo(),
		payments:      newMockPaymentRepo(),
		healthRecords: newMockHealthRecordRepo(),
		messages:      newMockMessageRepo(),
		notifications: newMockNotificationRepo(),
		blacklist:     &memBlacklist{revoked: make(map[string]bool)},
	}
	repo := &repository.Repository{
		Center:       env.centers,
		User:         env.users,
		Child:        env.children,
		Class:        env.classes,
		Attendance:   env.attendance,
		Activity:     env.activities,
		Payment:      env.payments,
		HealthRecord: env.healthRecords,
		Message:      env.messages,
		Notification: env.notifications,
	}

	cfg := testConfig()
	logger := zap.NewNop()
	env.jwtMgr = jwt.NewManager(&cfg.Auth)
	env.dispatch = NewDispatcher(env.mailer, env.sms, logger)
	env.svc = NewService(cfg, repo, env.jwtMgr, Deps{
		Events:    env.events,
		Blacklist: env.blacklist,
		Dispatch:  env.dispatch,
	}, logger)

	env.seed()
	return env
}

func (env *testEnv) seed() {
	for _, c := range []*model.Center{
		{CenterID: testCenterA, Name: "阳光托育", Code: "SUN", Timezone: "UTC", Capacity: 50},
		{CenterID: testCenterB, Name: "星星托育", Code: "STAR", Timezone: "UTC", Capacity: 30},
	} {
		c.IsActive = true
		env.centers.centers[c.CenterID] = c
	}

	env.addUser("super", model.RoleAdmin, "", "super@test.com")
	env.users.users["super"].AdminLevel = model.AdminLevelSuper
	env.addUser("admin-a", model.RoleAdmin, testCenterA, "admin-a@test.com")
	env.users.users["admin-a"].AdminLevel = model.AdminLevelCenter
	env.addUser("teacher-a", model.RoleTeacher, testCenterA, "teacher-a@test.com")
	env.addUser("parent-a", model.RoleParent, testCenterA, "parent-a@test.com")
	env.addUser("parent-b", model.RoleParent, testCenterB, "parent-b@test.com")

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	for _, c := range []*model.Class{
		{ClassID: testClassA1, Name: "小一班", CenterID: testCenterA, Capacity: 10},
		{ClassID: testClassB1, Name: "星一班", CenterID: testCenterB, Capacity: 10},
	} {
		c.ScheduleDays = []string{"monday", "wednesday", "friday"}
		c.StartTime = "08:00"
		c.EndTime = "12:00"
		c.DurationMinutes = 240
		c.StartDate = start
		c.EndDate = start.AddDate(0, 6, 0)
		c.IsActive = true
		env.classes.classes[c.ClassID] = c
	}
	env.classes.classes[testClassA1].Teachers = []model.User{{UserID: "teacher-a"}}
	env.users.assigned["teacher-a"] = []string{testClassA1}

	env.addChild(testChildA1, testCenterA, testClassA1, "parent-a")
	env.addChild(testChildA2, testCenterA, testClassA1)
	env.addChild(testChildB1, testCenterB, testClassB1, "parent-b")
	env.users.links["parent-a"] = &repository.ParentLinks{ChildIDs: []string{testChildA1}, ChildClassIDs: []string{testClassA1}}
	env.users.links["parent-b"] = &repository.ParentLinks{ChildIDs: []string{testChildB1}, ChildClassIDs: []string{testClassB1}}
}

func (env *testEnv) addUser(id, role, centerID, email string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	u := &model.User{
		UserID:       id,
		FirstName:    "测试",
		LastName:     id,
		Email:        email,
		Phone:        "+1555" + id,
		PasswordHash: string(hash),
		Role:         role,
		CenterID:     model.StrPtr(centerID),
		EmailOptIn:   true,
	}
	u.IsActive = true
	if c, ok := env.centers.centers[centerID]; ok {
		u.Center = c
	}
	env.users.users[id] = u
	return u
}

func (env *testEnv) addChild(id, centerID, classID string, parentIDs ...string) *model.Child {
	c := &model.Child{
		ChildID:          id,
		FirstName:        "小",
		LastName:         id,
		DateOfBirth:      time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		CenterID:         centerID,
		CurrentClassID:   model.StrPtr(classID),
		EnrollmentStatus: model.EnrollmentEnrolled,
	}
	for _, pid := range parentIDs {
		c.Parents = append(c.Parents, *env.users.users[pid])
	}
	c.IsActive = true
	env.children.children[id] = c
	return c
}

// ── 测试身份 ──

func superActor() *authz.Actor {
	return &authz.Actor{UserID: "super", Role: model.RoleAdmin, AdminLevel: model.AdminLevelSuper}
}

func adminActor() *authz.Actor {
	return &authz.Actor{UserID: "admin-a", Role: model.RoleAdmin, CenterID: testCenterA, AdminLevel: model.AdminLevelCenter}
}

func teacherActor() *authz.Actor {
	return &authz.Actor{UserID: "teacher-a", Role: model.RoleTeacher, CenterID: testCenterA, AssignedClassIDs: []string{testClassA1}}
}

func parentActor() *authz.Actor {
	return &authz.Actor{
		UserID:        "parent-a",
		Role:          model.RoleParent,
		CenterID:      testCenterA,
		ChildIDs:      []string{testChildA1},
		ChildClassIDs: []string{testClassA1},
	}
}
