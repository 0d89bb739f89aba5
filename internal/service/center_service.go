package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
)

// CenterService 中心管理业务接口
type CenterService interface {
	Create(ctx context.Context, actor *authz.Actor, req *dto.CreateCenterRequest) (*model.Center, error)
	GetByID(ctx context.Context, actor *authz.Actor, id string) (*model.Center, error)
	List(ctx context.Context, actor *authz.Actor, req *dto.CenterListRequest) ([]model.Center, int64, error)
	Update(ctx context.Context, actor *authz.Actor, id string, req *dto.UpdateCenterRequest) (*model.Center, error)
	SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error
	Stats(ctx context.Context, actor *authz.Actor, id string) (*dto.CenterStatsResponse, error)
}

type centerService struct {
	*core
}

// NewCenterService 创建 CenterService 实例
func NewCenterService(c *core) CenterService {
	return &centerService{core: c}
}

func (s *centerService) Create(ctx context.Context, actor *authz.Actor, req *dto.CreateCenterRequest) (*model.Center, error) {
	center := &model.Center{
		Name:     strings.TrimSpace(req.Name),
		Code:     strings.ToUpper(strings.TrimSpace(req.Code)),
		Address:  req.Address,
		Phone:    req.Phone,
		Email:    strings.ToLower(req.Email),
		Timezone: req.Timezone,
		Capacity: req.Capacity,
	}
	center.IsActive = true
	if center.Timezone == "" {
		center.Timezone = "UTC"
	}
	if err := authorize(actor, authz.Resource{Kind: authz.KindCenter}, authz.OpCreate); err != nil {
		return nil, err
	}
	if req.AdminID != "" {
		if err := s.checkAdmin(ctx, req.AdminID); err != nil {
			return nil, err
		}
		center.AdminID = model.StrPtr(req.AdminID)
	}
	center.OperatingHours = datatypes.NewJSONType(operatingHours(req.OperatingHours))
	center.Recompute()
	center.Stamp(actor.UserID, true)

	if err := s.repo.Center.Create(ctx, center); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCenterCodeExists
		}
		return nil, s.dbErr("创建中心失败", err)
	}
	s.logger.Info("创建中心", zap.String("center_id", center.CenterID), zap.String("code", center.Code))
	return center, nil
}

func (s *centerService) GetByID(ctx context.Context, actor *authz.Actor, id string) (*model.Center, error) {
	return s.load(ctx, actor, id, authz.OpRead)
}

func (s *centerService) List(ctx context.Context, actor *authz.Actor, req *dto.CenterListRequest) ([]model.Center, int64, error) {
	filters := &repository.CenterListFilters{
		Search:          req.Search,
		IsActive:        req.IsActive,
		IncludeInactive: includeInactive(actor, req.IncludeInactive),
	}
	list, total, err := s.repo.Center.List(ctx, authz.ScopeFor(actor, authz.KindCenter), filters, pageOf(req.PaginationRequest))
	if err != nil {
		return nil, 0, s.dbErr("查询中心列表失败", err)
	}
	return list, total, nil
}

func (s *centerService) Update(ctx context.Context, actor *authz.Actor, id string, req *dto.UpdateCenterRequest) (*model.Center, error) {
	center, err := s.load(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		center.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		center.Address = *req.Address
	}
	if req.Phone != nil {
		center.Phone = *req.Phone
	}
	if req.Email != nil {
		center.Email = strings.ToLower(*req.Email)
	}
	if req.Timezone != nil {
		center.Timezone = *req.Timezone
	}
	if req.Capacity != nil {
		center.Capacity = *req.Capacity
	}
	if req.AdminID != nil && *req.AdminID != model.StrVal(center.AdminID) {
		if err := s.checkAdmin(ctx, *req.AdminID); err != nil {
			return nil, err
		}
		center.AdminID = model.StrPtr(*req.AdminID)
	}
	if req.OperatingHours != nil {
		center.OperatingHours = datatypes.NewJSONType(operatingHours(req.OperatingHours))
	}
	center.Recompute()
	center.Stamp(actor.UserID, false)

	if err := s.repo.Center.Update(ctx, center); err != nil {
		return nil, s.dbErr("更新中心失败", err, zap.String("center_id", id))
	}
	return center, nil
}

func (s *centerService) SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error {
	center, err := s.load(ctx, actor, id, authz.OpDelete)
	if err != nil {
		return err
	}
	if active {
		center.Activate(actor.UserID)
	} else {
		center.Deactivate(actor.UserID, s.now())
	}
	if err := s.repo.Center.Update(ctx, center); err != nil {
		return s.dbErr("更新中心状态失败", err, zap.String("center_id", id))
	}
	s.logger.Info("更新中心状态", zap.String("center_id", id), zap.Bool("is_active", active))
	return nil
}

// Stats 人数统计与当日（中心时区）考勤分布
func (s *centerService) Stats(ctx context.Context, actor *authz.Actor, id string) (*dto.CenterStatsResponse, error) {
	center, err := s.load(ctx, actor, id, authz.OpRead)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.Center.Counts(ctx, id)
	if err != nil {
		return nil, s.dbErr("统计中心人数失败", err, zap.String("center_id", id))
	}

	loc, lerr := time.LoadLocation(center.Timezone)
	if lerr != nil {
		loc = time.UTC
	}
	today := model.DateOnly(s.now().In(loc))
	byStatus, err := s.repo.Attendance.CountByStatus(ctx, id, today)
	if err != nil {
		return nil, s.dbErr("统计当日考勤失败", err, zap.String("center_id", id))
	}

	return &dto.CenterStatsResponse{
		CenterID:         center.CenterID,
		Capacity:         center.Capacity,
		CurrentOccupancy: center.CurrentOccupancy,
		OccupancyRate:    center.OccupancyRate,
		Children:         counts.Children,
		Teachers:         counts.Teachers,
		Parents:          counts.Parents,
		Classes:          counts.Classes,
		TodayAttendance:  byStatus,
	}, nil
}

func (s *centerService) load(ctx context.Context, actor *authz.Actor, id string, op authz.Op) (*model.Center, error) {
	center, err := s.repo.Center.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupErr(err, ErrCenterNotFound, "查询中心失败", zap.String("center_id", id))
	}
	if err := authorize(actor, authz.CenterResource(center), op); err != nil {
		return nil, err
	}
	return center, nil
}

func (s *centerService) checkAdmin(ctx context.Context, userID string) error {
	u, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return s.lookupErr(err, ErrInvalidAdmin, "查询管理员失败", zap.String("user_id", userID))
	}
	if u.Role != model.RoleAdmin || !u.IsActive {
		return ErrInvalidAdmin
	}
	return nil
}

func operatingHours(in map[string]dto.DayHoursRequest) model.OperatingHours {
	out := make(model.OperatingHours, len(in))
	for day, h := range in {
		out[strings.ToLower(day)] = model.DayHours{Open: h.Open, Close: h.Close, Closed: h.Closed}
	}
	return out
}
