package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/realtime"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
)

// AttendanceService 考勤业务接口
type AttendanceService interface {
	Mark(ctx context.Context, actor *authz.Actor, req *dto.MarkAttendanceRequest) (*model.Attendance, error)
	Bulk(ctx context.Context, actor *authz.Actor, req *dto.BulkAttendanceRequest) (*dto.BulkAttendanceResponse, error)
	GetByID(ctx context.Context, actor *authz.Actor, id string) (*model.Attendance, error)
	List(ctx context.Context, actor *authz.Actor, req *dto.AttendanceListRequest) ([]model.Attendance, int64, error)
	Update(ctx context.Context, actor *authz.Actor, id string, req *dto.UpdateAttendanceRequest) (*model.Attendance, error)
	SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error
}

type attendanceService struct {
	*core
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(c *core) AttendanceService {
	return &attendanceService{core: c}
}

// markInput 单条登记内容
type markInput struct {
	Status   string
	CheckIn  *time.Time
	CheckOut *time.Time
	Notes    string
}

// ──── Mark ────

func (s *attendanceService) Mark(ctx context.Context, actor *authz.Actor, req *dto.MarkAttendanceRequest) (*model.Attendance, error) {
	child, err := s.repo.Child.GetByID(ctx, req.ChildID)
	if err != nil {
		return nil, s.lookupErr(err, ErrChildNotFound, "查询儿童失败", zap.String("child_id", req.ChildID))
	}
	if !child.IsActive {
		return nil, ErrChildNotFound
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	loc := s.centerLocation(ctx, child.CenterID)
	return s.record(ctx, actor, child, date, loc, markInput{
		Status:   req.Status,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Notes:    req.Notes,
	})
}

// ──── Bulk ────

// Bulk 整批登记：任一儿童不在班级或当日已有考勤时整批拒绝，写入在同一事务中完成
func (s *attendanceService) Bulk(ctx context.Context, actor *authz.Actor, req *dto.BulkAttendanceRequest) (*dto.BulkAttendanceResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, req.ClassID)
	if err != nil {
		return nil, s.lookupErr(err, ErrClassNotFound, "查询班级失败", zap.String("class_id", req.ClassID))
	}
	res := authz.Resource{Kind: authz.KindAttendance, CenterID: class.CenterID, ClassID: class.ClassID}
	if err := authorize(actor, res, authz.OpCreate); err != nil {
		return nil, err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}

	roster, err := s.repo.Child.ListByClass(ctx, class.ClassID)
	if err != nil {
		return nil, s.dbErr("查询班级儿童失败", err, zap.String("class_id", class.ClassID))
	}
	members := make(map[string]*model.Child, len(roster))
	for i := range roster {
		members[roster[i].ChildID] = &roster[i]
	}

	seen := make(map[string]bool, len(req.Records))
	var outsiders []apperrors.FieldError
	for _, item := range req.Records {
		if seen[item.ChildID] {
			return nil, ErrDuplicateChild.WithFields(apperrors.FieldError{Field: "records", Message: item.ChildID})
		}
		seen[item.ChildID] = true
		if _, ok := members[item.ChildID]; !ok {
			outsiders = append(outsiders, apperrors.FieldError{Field: "records", Message: item.ChildID})
		}
	}
	if len(outsiders) > 0 {
		return nil, ErrChildNotInClass.WithFields(outsiders...)
	}

	loc := s.centerLocation(ctx, class.CenterID)
	records := make([]*model.Attendance, 0, len(req.Records))
	for _, item := range req.Records {
		a, err := s.prepare(actor, members[item.ChildID], date, loc, markInput{
			Status:   item.Status,
			CheckIn:  item.CheckIn,
			CheckOut: item.CheckOut,
			Notes:    item.Notes,
		})
		if err != nil {
			return nil, err
		}
		records = append(records, a)
	}

	var conflicts []apperrors.FieldError
	for _, a := range records {
		existing, err := s.repo.Attendance.GetByChildDate(ctx, a.ChildID, a.Date)
		switch {
		case err == nil && existing.IsActive:
			conflicts = append(conflicts, apperrors.FieldError{Field: "records", Message: a.ChildID})
		case err != nil && !repository.IsNotFound(err):
			return nil, s.dbErr("查询考勤记录失败", err, zap.String("child_id", a.ChildID))
		}
	}
	if len(conflicts) > 0 {
		return nil, ErrAttendanceExists.WithFields(conflicts...)
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		for _, a := range records {
			if err := s.save(ctx, tx, actor, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, s.dbErr("批量登记考勤失败", err, zap.String("class_id", class.ClassID))
	}
	for _, a := range records {
		s.emit(a)
	}

	s.logger.Info("批量登记考勤",
		zap.String("class_id", class.ClassID),
		zap.String("date", req.Date),
		zap.Int("count", len(records)),
	)
	return &dto.BulkAttendanceResponse{Total: len(req.Records), Success: len(records)}, nil
}

// record 登记一条考勤
func (s *attendanceService) record(ctx context.Context, actor *authz.Actor, child *model.Child, date time.Time, loc *time.Location, in markInput) (*model.Attendance, error) {
	a, err := s.prepare(actor, child, date, loc, in)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, s.repo, actor, a); err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, s.dbErr("登记考勤失败", err, zap.String("child_id", child.ChildID))
	}
	s.emit(a)
	return a, nil
}

// prepare 组装考勤记录并完成鉴权与派生字段计算
func (s *attendanceService) prepare(actor *authz.Actor, child *model.Child, date time.Time, loc *time.Location, in markInput) (*model.Attendance, error) {
	a := &model.Attendance{
		ChildID:  child.ChildID,
		Date:     model.DateOnly(date),
		ClassID:  child.CurrentClassID,
		CenterID: child.CenterID,
		Status:   in.Status,
		CheckIn:  in.CheckIn,
		CheckOut: in.CheckOut,
		Notes:    in.Notes,
		// checked_in_by 记录登记人
		CheckedInBy: model.StrPtr(actor.UserID),
	}
	a.IsActive = true
	if in.CheckOut != nil {
		a.CheckedOutBy = model.StrPtr(actor.UserID)
	}
	if err := authorize(actor, authz.AttendanceResource(a), authz.OpCreate); err != nil {
		return nil, err
	}
	if in.CheckIn != nil && in.CheckOut != nil {
		if err := model.ValidateTimeWindow(*in.CheckIn, *in.CheckOut); err != nil {
			return nil, invalidField("check_out", err.Error())
		}
	}
	model.DeriveAttendance(a, loc)
	return a, nil
}

// save 写入考勤；同日已停用的记录重新启用并覆盖
func (s *attendanceService) save(ctx context.Context, repo *repository.Repository, actor *authz.Actor, a *model.Attendance) error {
	existing, err := repo.Attendance.GetByChildDate(ctx, a.ChildID, a.Date)
	switch {
	case err == nil && existing.IsActive:
		return ErrAttendanceExists
	case err == nil:
		a.AttendanceID = existing.AttendanceID
		a.CreatedAt = existing.CreatedAt
		a.CreatedBy = existing.CreatedBy
		a.Stamp(actor.UserID, false)
		return repo.Attendance.Update(ctx, a)
	case repository.IsNotFound(err):
		a.Stamp(actor.UserID, true)
		if err := repo.Attendance.Create(ctx, a); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAttendanceExists
			}
			return err
		}
		return nil
	default:
		return err
	}
}

// ──── GetByID / List ────

func (s *attendanceService) GetByID(ctx context.Context, actor *authz.Actor, id string) (*model.Attendance, error) {
	return s.load(ctx, actor, id, authz.OpRead)
}

func (s *attendanceService) List(ctx context.Context, actor *authz.Actor, req *dto.AttendanceListRequest) ([]model.Attendance, int64, error) {
	from, err := parseOptDate("date_from", req.DateFrom)
	if err != nil {
		return nil, 0, err
	}
	to, err := parseOptDate("date_to", req.DateTo)
	if err != nil {
		return nil, 0, err
	}
	filters := &repository.AttendanceListFilters{
		ChildID:         req.ChildID,
		ClassID:         req.ClassID,
		Status:          req.Status,
		DateFrom:        from,
		DateTo:          to,
		IncludeInactive: includeInactive(actor, req.IncludeInactive),
	}
	list, total, err := s.repo.Attendance.List(ctx, authz.ScopeFor(actor, authz.KindAttendance), filters, pageOf(req.PaginationRequest))
	if err != nil {
		return nil, 0, s.dbErr("查询考勤列表失败", err)
	}
	return list, total, nil
}

// ──── Update ────

func (s *attendanceService) Update(ctx context.Context, actor *authz.Actor, id string, req *dto.UpdateAttendanceRequest) (*model.Attendance, error) {
	a, err := s.load(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		a.Status = *req.Status
	}
	if req.CheckIn != nil {
		a.CheckIn = req.CheckIn
	}
	if req.CheckOut != nil {
		a.CheckOut = req.CheckOut
		a.CheckedOutBy = model.StrPtr(actor.UserID)
	}
	if req.Notes != nil {
		a.Notes = *req.Notes
	}
	if a.CheckIn != nil && a.CheckOut != nil {
		if err := model.ValidateTimeWindow(*a.CheckIn, *a.CheckOut); err != nil {
			return nil, invalidField("check_out", err.Error())
		}
	}
	model.DeriveAttendance(a, s.centerLocation(ctx, a.CenterID))
	a.Stamp(actor.UserID, false)

	if err := s.repo.Attendance.Update(ctx, a); err != nil {
		return nil, s.dbErr("更新考勤记录失败", err, zap.String("attendance_id", id))
	}
	s.emit(a)
	return a, nil
}

// ──── SetStatus ────

func (s *attendanceService) SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error {
	a, err := s.load(ctx, actor, id, authz.OpDelete)
	if err != nil {
		return err
	}
	if active {
		a.Activate(actor.UserID)
	} else {
		a.Deactivate(actor.UserID, s.now())
	}
	if err := s.repo.Attendance.Update(ctx, a); err != nil {
		return s.dbErr("更新考勤状态失败", err, zap.String("attendance_id", id))
	}
	return nil
}

func (s *attendanceService) load(ctx context.Context, actor *authz.Actor, id string, op authz.Op) (*model.Attendance, error) {
	a, err := s.repo.Attendance.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupErr(err, ErrAttendanceNotFound, "查询考勤记录失败", zap.String("attendance_id", id))
	}
	if err := authorize(actor, authz.AttendanceResource(a), op); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *attendanceService) emit(a *model.Attendance) {
	rooms := []realtime.Room{realtime.ChildRoom(a.ChildID)}
	if id := model.StrVal(a.ClassID); id != "" {
		rooms = append(rooms, realtime.ClassRoom(id))
	}
	s.events.Emit(realtime.EventAttendanceUpdate, a, rooms...)
}
