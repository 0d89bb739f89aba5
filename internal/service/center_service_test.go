package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
)

// ── 中心测试 ──

// actorFor 走 Token 认证得到与线上一致的身份
func (env *testEnv) actorFor(t *testing.T, userID string) *authz.Actor {
	t.Helper()
	u := env.users.users[userID]
	token, err := env.jwtMgr.GenerateAccessToken(u.UserID, u.Role, model.StrVal(u.CenterID))
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}
	actor, _, err := env.svc.Auth.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate 失败: %v", err)
	}
	return actor
}

// 新建中心 → 中心管理员 → 家长与儿童 → 家长只能读自己中心的孩子
func TestCenterOnboarding_EndToEnd(t *testing.T) {
	env := setupTestEnv()
	ctx := context.Background()

	center, err := env.svc.Center.Create(ctx, superActor(), &dto.CreateCenterRequest{
		Name:     "彩虹托育",
		Code:     "rainbow",
		Capacity: 10,
	})
	if err != nil {
		t.Fatalf("创建中心失败: %v", err)
	}
	if center.Code != "RAINBOW" || center.Timezone != "UTC" {
		t.Errorf("期望 code=RAINBOW timezone=UTC，实际=%s/%s", center.Code, center.Timezone)
	}

	admin, err := env.svc.User.Create(ctx, superActor(), &dto.CreateUserRequest{
		FirstName: "园长",
		LastName:  "王",
		Email:     "director@rainbow.test",
		Password:  testPassword,
		Role:      model.RoleAdmin,
		CenterID:  center.CenterID,
	})
	if err != nil {
		t.Fatalf("创建中心管理员失败: %v", err)
	}
	if admin.AdminLevel != model.AdminLevelCenter {
		t.Errorf("期望 admin_level=%s，实际=%s", model.AdminLevelCenter, admin.AdminLevel)
	}
	adminA := env.actorFor(t, admin.ID)

	parent, err := env.svc.User.Create(ctx, adminA, &dto.CreateUserRequest{
		FirstName: "家长",
		LastName:  "李",
		Email:     "parent@rainbow.test",
		Password:  testPassword,
		Role:      model.RoleParent,
	})
	if err != nil {
		t.Fatalf("创建家长失败: %v", err)
	}
	if parent.CenterID != center.CenterID {
		t.Errorf("家长应归属新中心，实际=%s", parent.CenterID)
	}

	child, err := env.svc.Child.Create(ctx, adminA, &dto.CreateChildRequest{
		FirstName:   "小",
		LastName:    "李",
		DateOfBirth: "2024-02-01",
		ParentIDs:   []string{parent.ID},
	})
	if err != nil {
		t.Fatalf("创建儿童失败: %v", err)
	}
	env.users.links[parent.ID] = &repository.ParentLinks{ChildIDs: []string{child.ChildID}}
	parentP := env.actorFor(t, parent.ID)

	got, err := env.svc.Child.GetByID(ctx, parentP, child.ChildID)
	if err != nil {
		t.Fatalf("家长读取自己的孩子失败: %v", err)
	}
	if got.ChildID != child.ChildID {
		t.Errorf("期望 ChildID=%s，实际=%s", child.ChildID, got.ChildID)
	}
	if _, err := env.svc.Child.GetByID(ctx, parentP, testChildA1); !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("读取其他中心儿童应被拒绝，实际=%v", err)
	}
}

func TestCenterCreate_Rules(t *testing.T) {
	env := setupTestEnv()
	ctx := context.Background()

	if _, err := env.svc.Center.Create(ctx, adminActor(), &dto.CreateCenterRequest{Name: "新中心", Code: "NEW", Capacity: 5}); !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("中心管理员创建中心应被拒绝，实际=%v", err)
	}
	if _, err := env.svc.Center.Create(ctx, superActor(), &dto.CreateCenterRequest{Name: "重复", Code: "sun", Capacity: 5}); !errors.Is(err, ErrCenterCodeExists) {
		t.Errorf("期望 ErrCenterCodeExists，实际=%v", err)
	}
}

func TestCenterStats(t *testing.T) {
	env := setupTestEnv()
	ctx := context.Background()

	stats, err := env.svc.Center.Stats(ctx, adminActor(), testCenterA)
	if err != nil {
		t.Fatalf("Stats 失败: %v", err)
	}
	if stats.CenterID != testCenterA || stats.Capacity != 50 {
		t.Errorf("统计结果不正确: %+v", stats)
	}
	if _, err := env.svc.Center.Stats(ctx, adminActor(), testCenterB); !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("读取其他中心统计应被拒绝，实际=%v", err)
	}
	if _, err := env.svc.Center.Stats(ctx, adminActor(), "missing"); !errors.Is(err, ErrCenterNotFound) {
		t.Errorf("期望 ErrCenterNotFound，实际=%v", err)
	}
}
