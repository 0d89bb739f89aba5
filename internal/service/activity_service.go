package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/realtime"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
)

// ActivityService 活动业务接口
type ActivityService interface {
	Create(ctx context.Context, actor *authz.Actor, req *dto.CreateActivityRequest) (*model.Activity, error)
	GetByID(ctx context.Context, actor *authz.Actor, id string) (*model.Activity, error)
	List(ctx context.Context, actor *authz.Actor, req *dto.ActivityListRequest) ([]model.Activity, int64, error)
	Update(ctx context.Context, actor *authz.Actor, id string, req *dto.UpdateActivityRequest) (*model.Activity, error)
	ChangeStatus(ctx context.Context, actor *authz.Actor, id string, req *dto.ActivityStatusRequest) (*model.Activity, error)
	AddUpdate(ctx context.Context, actor *authz.Actor, id string, req *dto.ActivityUpdateRequest) (*model.Activity, error)
	AddPhoto(ctx context.Context, actor *authz.Actor, id string, req *dto.ActivityPhotoRequest) (*model.Activity, error)
	SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error
}

type activityService struct {
	*core
}

// NewActivityService 创建 ActivityService 实例
func NewActivityService(c *core) ActivityService {
	return &activityService{core: c}
}

// ──── Create ────

func (s *activityService) Create(ctx context.Context, actor *authz.Actor, req *dto.CreateActivityRequest) (*model.Activity, error) {
	var centerID string
	if req.ClassID != "" {
		class, err := s.repo.Class.GetByID(ctx, req.ClassID)
		if err != nil {
			return nil, s.lookupErr(err, ErrClassNotFound, "查询班级失败", zap.String("class_id", req.ClassID))
		}
		centerID = class.CenterID
	} else {
		c, err := resolveCenter(actor, "")
		if err != nil {
			return nil, err
		}
		centerID = c
	}

	teacherID := req.TeacherID
	if teacherID == "" || actor.Role == model.RoleTeacher {
		teacherID = actor.UserID
	}

	a := &model.Activity{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Type:        req.Type,
		CenterID:    centerID,
		ClassID:     model.StrPtr(req.ClassID),
		TeacherID:   teacherID,
		ChildIDs:    uniqueStrings(req.ChildIDs),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		Status:      model.ActivityScheduled,
	}
	a.IsActive = true
	if err := authorize(actor, authz.ActivityResource(a), authz.OpCreate); err != nil {
		return nil, err
	}
	if err := model.ValidateTimeWindow(a.StartTime, a.EndTime); err != nil {
		return nil, invalidField("end_time", err.Error())
	}
	if err := s.checkChildren(ctx, centerID, a.ChildIDs); err != nil {
		return nil, err
	}
	a.Stamp(actor.UserID, true)

	if err := s.repo.Activity.Create(ctx, a); err != nil {
		return nil, s.dbErr("创建活动失败", err)
	}
	s.emit(a)
	return a, nil
}

func (s *activityService) GetByID(ctx context.Context, actor *authz.Actor, id string) (*model.Activity, error) {
	return s.load(ctx, actor, id, authz.OpRead)
}

func (s *activityService) List(ctx context.Context, actor *authz.Actor, req *dto.ActivityListRequest) ([]model.Activity, int64, error) {
	from, err := parseOptDate("date_from", req.DateFrom)
	if err != nil {
		return nil, 0, err
	}
	to, err := parseOptDate("date_to", req.DateTo)
	if err != nil {
		return nil, 0, err
	}
	filters := &repository.ActivityListFilters{
		ClassID:         req.ClassID,
		TeacherID:       req.TeacherID,
		Status:          req.Status,
		Type:            req.Type,
		DateFrom:        from,
		DateTo:          to,
		IncludeInactive: includeInactive(actor, req.IncludeInactive),
	}
	list, total, err := s.repo.Activity.List(ctx, authz.ScopeFor(actor, authz.KindActivity), filters, pageOf(req.PaginationRequest))
	if err != nil {
		return nil, 0, s.dbErr("查询活动列表失败", err)
	}
	return list, total, nil
}

// ──── Update ────

func (s *activityService) Update(ctx context.Context, actor *authz.Actor, id string, req *dto.UpdateActivityRequest) (*model.Activity, error) {
	a, err := s.loadOpen(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		a.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.Type != nil {
		a.Type = *req.Type
	}
	if req.Location != nil {
		a.Location = *req.Location
	}
	if req.StartTime != nil {
		a.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		a.EndTime = *req.EndTime
	}
	if err := model.ValidateTimeWindow(a.StartTime, a.EndTime); err != nil {
		return nil, invalidField("end_time", err.Error())
	}
	if req.ChildIDs != nil {
		ids := uniqueStrings(req.ChildIDs)
		if err := s.checkChildren(ctx, a.CenterID, ids); err != nil {
			return nil, err
		}
		a.ChildIDs = ids
	}
	return s.save(ctx, actor, a)
}

// ChangeStatus 已完成/已取消为终态
func (s *activityService) ChangeStatus(ctx context.Context, actor *authz.Actor, id string, req *dto.ActivityStatusRequest) (*model.Activity, error) {
	a, err := s.loadOpen(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	a.Status = req.Status
	return s.save(ctx, actor, a)
}

func (s *activityService) AddUpdate(ctx context.Context, actor *authz.Actor, id string, req *dto.ActivityUpdateRequest) (*model.Activity, error) {
	a, err := s.load(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}
	a.Updates = append(a.Updates, model.ActivityUpdate{
		Message:   strings.TrimSpace(req.Message),
		AuthorID:  actor.UserID,
		CreatedAt: s.now(),
	})
	return s.save(ctx, actor, a)
}

func (s *activityService) AddPhoto(ctx context.Context, actor *authz.Actor, id string, req *dto.ActivityPhotoRequest) (*model.Activity, error) {
	a, err := s.load(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}
	a.Photos = append(a.Photos, model.ActivityPhoto{
		URL:        req.URL,
		Caption:    req.Caption,
		UploadedBy: actor.UserID,
		UploadedAt: s.now(),
	})
	return s.save(ctx, actor, a)
}

func (s *activityService) SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error {
	a, err := s.load(ctx, actor, id, authz.OpDelete)
	if err != nil {
		return err
	}
	if active {
		a.Activate(actor.UserID)
	} else {
		a.Deactivate(actor.UserID, s.now())
	}
	if err := s.repo.Activity.Update(ctx, a); err != nil {
		return s.dbErr("更新活动状态失败", err, zap.String("activity_id", id))
	}
	return nil
}

// ──── 内部方法 ────

func (s *activityService) load(ctx context.Context, actor *authz.Actor, id string, op authz.Op) (*model.Activity, error) {
	a, err := s.repo.Activity.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupErr(err, ErrActivityNotFound, "查询活动失败", zap.String("activity_id", id))
	}
	if err := authorize(actor, authz.ActivityResource(a), op); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *activityService) loadOpen(ctx context.Context, actor *authz.Actor, id string) (*model.Activity, error) {
	a, err := s.load(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}
	if a.Status == model.ActivityCompleted || a.Status == model.ActivityCancelled {
		return nil, ErrActivityClosed
	}
	return a, nil
}

func (s *activityService) save(ctx context.Context, actor *authz.Actor, a *model.Activity) (*model.Activity, error) {
	a.Stamp(actor.UserID, false)
	if err := s.repo.Activity.Update(ctx, a); err != nil {
		return nil, s.dbErr("更新活动失败", err, zap.String("activity_id", a.ActivityID))
	}
	s.emit(a)
	return a, nil
}

// checkChildren 参与儿童必须存在且属于同一中心
func (s *activityService) checkChildren(ctx context.Context, centerID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	children, err := s.repo.Child.ListByIDs(ctx, ids)
	if err != nil {
		return s.dbErr("查询儿童失败", err)
	}
	if len(children) != len(ids) {
		return ErrInvalidChildren
	}
	for _, c := range children {
		if c.CenterID != centerID {
			return ErrInvalidChildren
		}
	}
	return nil
}

func (s *activityService) emit(a *model.Activity) {
	rooms := make([]realtime.Room, 0, len(a.ChildIDs)+1)
	if id := model.StrVal(a.ClassID); id != "" {
		rooms = append(rooms, realtime.ClassRoom(id))
	}
	for _, id := range a.ChildIDs {
		rooms = append(rooms, realtime.ChildRoom(id))
	}
	s.events.Emit(realtime.EventActivityUpdate, a, rooms...)
}
