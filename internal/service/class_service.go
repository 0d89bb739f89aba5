package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
)

// ClassService 班级管理业务接口
type ClassService interface {
	Create(ctx context.Context, actor *authz.Actor, req *dto.CreateClassRequest) (*model.Class, error)
	GetByID(ctx context.Context, actor *authz.Actor, id string) (*model.Class, error)
	List(ctx context.Context, actor *authz.Actor, req *dto.ClassListRequest) ([]model.Class, int64, error)
	Update(ctx context.Context, actor *authz.Actor, id string, req *dto.UpdateClassRequest) (*model.Class, error)
	SetTeachers(ctx context.Context, actor *authz.Actor, id string, req *dto.SetTeachersRequest) (*model.Class, error)
	SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error
	Roster(ctx context.Context, actor *authz.Actor, id string) ([]dto.ChildResponse, error)
}

type classService struct {
	*core
}

// NewClassService 创建 ClassService 实例
func NewClassService(c *core) ClassService {
	return &classService{core: c}
}

func (s *classService) Create(ctx context.Context, actor *authz.Actor, req *dto.CreateClassRequest) (*model.Class, error) {
	centerID, err := resolveCenter(actor, req.CenterID)
	if err != nil {
		return nil, err
	}
	class := &model.Class{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		CenterID:     centerID,
		AgeMinMonths: req.AgeMinMonths,
		AgeMaxMonths: req.AgeMaxMonths,
		Capacity:     req.Capacity,
		ScheduleDays: normalizeDays(req.ScheduleDays),
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Room:         req.Room,
	}
	class.IsActive = true
	if err := authorize(actor, authz.ClassResource(class), authz.OpCreate); err != nil {
		return nil, err
	}
	if class.StartDate, err = parseDate("start_date", req.StartDate); err != nil {
		return nil, err
	}
	if class.EndDate, err = parseDate("end_date", req.EndDate); err != nil {
		return nil, err
	}
	if err := model.PrepareClass(class); err != nil {
		return nil, classFieldErr(err)
	}

	teacherIDs := uniqueStrings(req.TeacherIDs)
	if err := s.checkTeachers(ctx, centerID, teacherIDs); err != nil {
		return nil, err
	}
	class.Stamp(actor.UserID, true)

	if err := s.repo.Class.Create(ctx, class, teacherIDs); err != nil {
		return nil, s.dbErr("创建班级失败", err)
	}
	s.logger.Info("创建班级", zap.String("class_id", class.ClassID), zap.String("center_id", centerID))
	return s.reload(ctx, class.ClassID)
}

func (s *classService) GetByID(ctx context.Context, actor *authz.Actor, id string) (*model.Class, error) {
	return s.load(ctx, actor, id, authz.OpRead)
}

func (s *classService) List(ctx context.Context, actor *authz.Actor, req *dto.ClassListRequest) ([]model.Class, int64, error) {
	filters := &repository.ClassListFilters{
		Search:          req.Search,
		CenterID:        centerFilter(actor, req.CenterID),
		TeacherID:       req.TeacherID,
		IncludeInactive: includeInactive(actor, req.IncludeInactive),
	}
	list, total, err := s.repo.Class.List(ctx, authz.ScopeFor(actor, authz.KindClass), filters, pageOf(req.PaginationRequest))
	if err != nil {
		return nil, 0, s.dbErr("查询班级列表失败", err)
	}
	return list, total, nil
}

func (s *classService) Update(ctx context.Context, actor *authz.Actor, id string, req *dto.UpdateClassRequest) (*model.Class, error) {
	class, err := s.load(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		class.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		class.Description = *req.Description
	}
	if req.AgeMinMonths != nil {
		class.AgeMinMonths = *req.AgeMinMonths
	}
	if req.AgeMaxMonths != nil {
		class.AgeMaxMonths = *req.AgeMaxMonths
	}
	if req.Capacity != nil {
		class.Capacity = *req.Capacity
	}
	if req.ScheduleDays != nil {
		class.ScheduleDays = normalizeDays(req.ScheduleDays)
	}
	if req.StartTime != nil {
		class.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		class.EndTime = *req.EndTime
	}
	if req.Room != nil {
		class.Room = *req.Room
	}
	if req.StartDate != nil {
		if class.StartDate, err = parseDate("start_date", *req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if class.EndDate, err = parseDate("end_date", *req.EndDate); err != nil {
			return nil, err
		}
	}
	if err := model.PrepareClass(class); err != nil {
		return nil, classFieldErr(err)
	}
	class.Stamp(actor.UserID, false)

	if err := s.repo.Class.Update(ctx, class); err != nil {
		return nil, s.dbErr("更新班级失败", err, zap.String("class_id", id))
	}
	return s.reload(ctx, id)
}

// SetTeachers 替换任课教师，仅管理员
func (s *classService) SetTeachers(ctx context.Context, actor *authz.Actor, id string, req *dto.SetTeachersRequest) (*model.Class, error) {
	class, err := s.load(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}
	if actor.Role != model.RoleAdmin {
		return nil, apperrors.ErrAccessDenied
	}
	teacherIDs := uniqueStrings(req.TeacherIDs)
	if err := s.checkTeachers(ctx, class.CenterID, teacherIDs); err != nil {
		return nil, err
	}
	if err := s.repo.Class.SetTeachers(ctx, id, teacherIDs); err != nil {
		return nil, s.dbErr("更新班级教师失败", err, zap.String("class_id", id))
	}
	s.logger.Info("更新班级教师", zap.String("class_id", id), zap.Strings("teacher_ids", teacherIDs))
	return s.reload(ctx, id)
}

func (s *classService) SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error {
	class, err := s.load(ctx, actor, id, authz.OpDelete)
	if err != nil {
		return err
	}
	if active {
		class.Activate(actor.UserID)
	} else {
		class.Deactivate(actor.UserID, s.now())
	}
	if err := s.repo.Class.Update(ctx, class); err != nil {
		return s.dbErr("更新班级状态失败", err, zap.String("class_id", id))
	}
	return nil
}

// Roster 班级在册儿童，仅教职工可见
func (s *classService) Roster(ctx context.Context, actor *authz.Actor, id string) ([]dto.ChildResponse, error) {
	if _, err := s.load(ctx, actor, id, authz.OpRead); err != nil {
		return nil, err
	}
	if !actor.IsStaff() {
		return nil, apperrors.ErrAccessDenied
	}
	children, err := s.repo.Child.ListByClass(ctx, id)
	if err != nil {
		return nil, s.dbErr("查询班级儿童失败", err, zap.String("class_id", id))
	}
	now := s.now()
	list := make([]dto.ChildResponse, 0, len(children))
	for i := range children {
		list = append(list, *toChildResponse(&children[i], now))
	}
	return list, nil
}

func (s *classService) load(ctx context.Context, actor *authz.Actor, id string, op authz.Op) (*model.Class, error) {
	class, err := s.repo.Class.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupErr(err, ErrClassNotFound, "查询班级失败", zap.String("class_id", id))
	}
	if err := authorize(actor, authz.ClassResource(class), op); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *classService) reload(ctx context.Context, id string) (*model.Class, error) {
	class, err := s.repo.Class.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupErr(err, ErrClassNotFound, "查询班级失败", zap.String("class_id", id))
	}
	return class, nil
}

// checkTeachers 教师必须存在、启用、角色为 teacher 且属于同一中心
func (s *classService) checkTeachers(ctx context.Context, centerID string, ids []string) error {
	if len(ids) == 0 {
		return ErrInvalidTeachers.WithMessage(model.ErrNoTeachers.Error())
	}
	users, err := s.repo.User.ListByIDs(ctx, ids)
	if err != nil {
		return s.dbErr("查询教师失败", err)
	}
	if len(users) != len(ids) {
		return ErrInvalidTeachers
	}
	for _, u := range users {
		if u.Role != model.RoleTeacher || !u.IsActive || model.StrVal(u.CenterID) != centerID {
			return ErrInvalidTeachers
		}
	}
	return nil
}

// classFieldErr 班级不变量错误映射为字段错误
func classFieldErr(err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidAgeGroup):
		return invalidField("age_max_months", err.Error())
	case errors.Is(err, model.ErrInvalidCapacity):
		return invalidField("capacity", err.Error())
	case errors.Is(err, model.ErrInvalidDateRange):
		return invalidField("end_date", err.Error())
	case errors.Is(err, model.ErrInvalidHHMM):
		field := "start_time"
		if strings.HasPrefix(err.Error(), "end_time") {
			field = "end_time"
		}
		return invalidField(field, model.ErrInvalidHHMM.Error())
	case errors.Is(err, model.ErrInvalidTimeRange):
		return invalidField("end_time", err.Error())
	}
	return err
}

func normalizeDays(days []string) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, strings.ToLower(strings.TrimSpace(d)))
	}
	return uniqueStrings(out)
}
