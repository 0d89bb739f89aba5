package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
)

// ── 班级测试 ──

func TestClassSetTeachers_Success(t *testing.T) {
	env := setupTestEnv()
	env.addUser("teacher-a2", model.RoleTeacher, testCenterA, "teacher-a2@test.com")

	class, err := env.svc.Class.SetTeachers(context.Background(), adminActor(), testClassA1, &dto.SetTeachersRequest{
		TeacherIDs: []string{"teacher-a2", "teacher-a2"},
	})
	if err != nil {
		t.Fatalf("SetTeachers 失败: %v", err)
	}
	if len(class.Teachers) != 1 || class.Teachers[0].UserID != "teacher-a2" {
		t.Errorf("期望教师仅为 teacher-a2，实际=%v", class.Teachers)
	}
}

func TestClassSetTeachers_Invalid(t *testing.T) {
	env := setupTestEnv()
	env.addUser("teacher-b", model.RoleTeacher, testCenterB, "teacher-b@test.com")

	tests := []struct {
		name string
		ids  []string
	}{
		{"非教师角色", []string{"parent-a"}},
		{"其他中心教师", []string{"teacher-b"}},
		{"不存在的用户", []string{"ghost"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Class.SetTeachers(context.Background(), adminActor(), testClassA1, &dto.SetTeachersRequest{TeacherIDs: tt.ids})
			if !errors.Is(err, ErrInvalidTeachers) {
				t.Errorf("期望 ErrInvalidTeachers，实际=%v", err)
			}
		})
	}
}

func TestClassSetTeachers_TeacherDenied(t *testing.T) {
	env := setupTestEnv()

	_, err := env.svc.Class.SetTeachers(context.Background(), teacherActor(), testClassA1, &dto.SetTeachersRequest{
		TeacherIDs: []string{"teacher-a"},
	})
	if !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("期望 ErrAccessDenied，实际=%v", err)
	}
}

func TestClassGet_CrossCenterDenied(t *testing.T) {
	env := setupTestEnv()

	if _, err := env.svc.Class.GetByID(context.Background(), adminActor(), testClassB1); !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("期望 ErrAccessDenied，实际=%v", err)
	}
	if _, err := env.svc.Class.GetByID(context.Background(), adminActor(), "missing"); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("期望 ErrClassNotFound，实际=%v", err)
	}
}
