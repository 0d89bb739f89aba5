package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
)

// ChildService 儿童档案业务接口
type ChildService interface {
	Create(ctx context.Context, actor *authz.Actor, req *dto.CreateChildRequest) (*dto.ChildResponse, error)
	GetByID(ctx context.Context, actor *authz.Actor, id string) (*dto.ChildResponse, error)
	List(ctx context.Context, actor *authz.Actor, req *dto.ChildListRequest) ([]dto.ChildResponse, int64, error)
	Update(ctx context.Context, actor *authz.Actor, id string, req *dto.UpdateChildRequest) (*dto.ChildResponse, error)
	AssignClass(ctx context.Context, actor *authz.Actor, id string, req *dto.AssignClassRequest) (*dto.ChildResponse, error)
	SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error
}

type childService struct {
	*core
}

// NewChildService 创建 ChildService 实例
func NewChildService(c *core) ChildService {
	return &childService{core: c}
}

// ──── Create ────

func (s *childService) Create(ctx context.Context, actor *authz.Actor, req *dto.CreateChildRequest) (*dto.ChildResponse, error) {
	centerID, err := resolveCenter(actor, req.CenterID)
	if err != nil {
		return nil, err
	}
	parentIDs := uniqueStrings(req.ParentIDs)

	child := &model.Child{
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Gender:           req.Gender,
		CenterID:         centerID,
		CurrentClassID:   model.StrPtr(req.CurrentClassID),
		EnrollmentStatus: req.EnrollmentStatus,
		Medical:          datatypes.NewJSONType(req.Medical),
		Dietary:          datatypes.NewJSONType(req.Dietary),
		Behavioral:       datatypes.NewJSONType(req.Behavioral),
	}
	child.IsActive = true
	if child.EnrollmentStatus == "" {
		child.EnrollmentStatus = model.EnrollmentEnrolled
	}
	res := authz.ChildResource(child)
	res.ParentIDs = parentIDs
	if err := authorize(actor, res, authz.OpCreate); err != nil {
		return nil, err
	}

	if child.DateOfBirth, err = parseDate("date_of_birth", req.DateOfBirth); err != nil {
		return nil, err
	}
	if child.DateOfBirth.After(s.now()) {
		return nil, invalidField("date_of_birth", "出生日期不能晚于今天")
	}
	if child.EnrollmentDate, err = parseOptDate("enrollment_date", req.EnrollmentDate); err != nil {
		return nil, err
	}
	child.EmergencyContacts = datatypes.JSONSlice[model.EmergencyContact](emergencyContacts(req.EmergencyContacts))

	if err := s.checkParents(ctx, centerID, parentIDs); err != nil {
		return nil, err
	}
	if req.CurrentClassID != "" {
		if err := s.checkClass(ctx, centerID, req.CurrentClassID); err != nil {
			return nil, err
		}
	}
	child.Stamp(actor.UserID, true)

	if err := s.repo.Child.Create(ctx, child, parentIDs); err != nil {
		return nil, s.dbErr("创建儿童失败", err)
	}
	s.recountClass(ctx, req.CurrentClassID)
	s.recountCenter(ctx, centerID)

	s.logger.Info("创建儿童档案",
		zap.String("child_id", child.ChildID),
		zap.String("center_id", centerID),
		zap.String("operator", actor.UserID),
	)
	return s.reload(ctx, child.ChildID)
}

// ──── GetByID ────

func (s *childService) GetByID(ctx context.Context, actor *authz.Actor, id string) (*dto.ChildResponse, error) {
	child, err := s.load(ctx, actor, id, authz.OpRead)
	if err != nil {
		return nil, err
	}
	return s.toResponse(child), nil
}

// ──── List ────

func (s *childService) List(ctx context.Context, actor *authz.Actor, req *dto.ChildListRequest) ([]dto.ChildResponse, int64, error) {
	filters := &repository.ChildListFilters{
		Search:          req.Search,
		Status:          req.Status,
		ClassID:         req.ClassID,
		ParentID:        req.ParentID,
		CenterID:        centerFilter(actor, req.CenterID),
		IncludeInactive: includeInactive(actor, req.IncludeInactive),
	}
	children, total, err := s.repo.Child.List(ctx, authz.ScopeFor(actor, authz.KindChild), filters, pageOf(req.PaginationRequest))
	if err != nil {
		return nil, 0, s.dbErr("查询儿童列表失败", err)
	}
	list := make([]dto.ChildResponse, 0, len(children))
	for i := range children {
		list = append(list, *s.toResponse(&children[i]))
	}
	return list, total, nil
}

// ──── Update ────

func (s *childService) Update(ctx context.Context, actor *authz.Actor, id string, req *dto.UpdateChildRequest) (*dto.ChildResponse, error) {
	child, err := s.load(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}
	// 监护关系与在园状态只能由教职工调整
	if !actor.IsStaff() && (req.ParentIDs != nil || req.EnrollmentStatus != nil) {
		return nil, apperrors.ErrAccessDenied
	}

	if req.FirstName != nil {
		child.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		child.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.DateOfBirth != nil {
		dob, err := parseDate("date_of_birth", *req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		child.DateOfBirth = dob
	}
	if req.Gender != nil {
		child.Gender = *req.Gender
	}
	if req.Medical != nil {
		child.Medical = datatypes.NewJSONType(*req.Medical)
	}
	if req.Dietary != nil {
		child.Dietary = datatypes.NewJSONType(*req.Dietary)
	}
	if req.Behavioral != nil {
		child.Behavioral = datatypes.NewJSONType(*req.Behavioral)
	}
	if req.EmergencyContacts != nil {
		child.EmergencyContacts = datatypes.JSONSlice[model.EmergencyContact](emergencyContacts(req.EmergencyContacts))
	}
	statusChanged := false
	if req.EnrollmentStatus != nil && *req.EnrollmentStatus != child.EnrollmentStatus {
		child.EnrollmentStatus = *req.EnrollmentStatus
		statusChanged = true
	}
	child.Stamp(actor.UserID, false)

	var parentIDs []string
	if req.ParentIDs != nil {
		parentIDs = uniqueStrings(req.ParentIDs)
		if err := s.checkParents(ctx, child.CenterID, parentIDs); err != nil {
			return nil, err
		}
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Child.Update(ctx, child); err != nil {
			return err
		}
		if parentIDs != nil {
			return tx.Child.SetParents(ctx, child.ChildID, parentIDs)
		}
		return nil
	})
	if err != nil {
		return nil, s.dbErr("更新儿童失败", err, zap.String("child_id", id))
	}
	if statusChanged {
		s.recountClass(ctx, model.StrVal(child.CurrentClassID))
		s.recountCenter(ctx, child.CenterID)
	}
	return s.reload(ctx, child.ChildID)
}

// ──── AssignClass ────

func (s *childService) AssignClass(ctx context.Context, actor *authz.Actor, id string, req *dto.AssignClassRequest) (*dto.ChildResponse, error) {
	child, err := s.load(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() {
		return nil, apperrors.ErrAccessDenied
	}
	oldClass := model.StrVal(child.CurrentClassID)
	if oldClass == req.ClassID {
		return s.toResponse(child), nil
	}
	if req.ClassID != "" {
		if err := s.checkClass(ctx, child.CenterID, req.ClassID); err != nil {
			return nil, err
		}
	}

	child.CurrentClassID = model.StrPtr(req.ClassID)
	child.CurrentClass = nil
	child.Stamp(actor.UserID, false)
	if err := s.repo.Child.Update(ctx, child); err != nil {
		return nil, s.dbErr("分班失败", err, zap.String("child_id", id))
	}
	s.recountClass(ctx, oldClass)
	s.recountClass(ctx, req.ClassID)

	s.logger.Info("儿童分班",
		zap.String("child_id", id),
		zap.String("from", oldClass),
		zap.String("to", req.ClassID),
	)
	return s.reload(ctx, child.ChildID)
}

// ──── SetStatus ────

func (s *childService) SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error {
	child, err := s.load(ctx, actor, id, authz.OpDelete)
	if err != nil {
		return err
	}
	if active {
		child.Activate(actor.UserID)
	} else {
		child.Deactivate(actor.UserID, s.now())
	}
	if err := s.repo.Child.Update(ctx, child); err != nil {
		return s.dbErr("更新儿童状态失败", err, zap.String("child_id", id))
	}
	s.recountClass(ctx, model.StrVal(child.CurrentClassID))
	s.recountCenter(ctx, child.CenterID)
	return nil
}

// ──── 内部方法 ────

func (s *childService) load(ctx context.Context, actor *authz.Actor, id string, op authz.Op) (*model.Child, error) {
	child, err := s.repo.Child.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupErr(err, ErrChildNotFound, "查询儿童失败", zap.String("child_id", id))
	}
	if err := authorize(actor, authz.ChildResource(child), op); err != nil {
		return nil, err
	}
	return child, nil
}

func (s *childService) reload(ctx context.Context, id string) (*dto.ChildResponse, error) {
	child, err := s.repo.Child.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupErr(err, ErrChildNotFound, "查询儿童失败", zap.String("child_id", id))
	}
	return s.toResponse(child), nil
}

// checkParents 家长必须存在、启用、角色为 parent 且属于同一中心
func (s *childService) checkParents(ctx context.Context, centerID string, ids []string) error {
	if len(ids) == 0 {
		return ErrInvalidParents
	}
	users, err := s.repo.User.ListByIDs(ctx, ids)
	if err != nil {
		return s.dbErr("查询家长失败", err)
	}
	if len(users) != len(ids) {
		return ErrInvalidParents
	}
	for _, u := range users {
		if u.Role != model.RoleParent || !u.IsActive || model.StrVal(u.CenterID) != centerID {
			return ErrInvalidParents
		}
	}
	return nil
}

func (s *childService) checkClass(ctx context.Context, centerID, classID string) error {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		return s.lookupErr(err, ErrClassNotFound, "查询班级失败", zap.String("class_id", classID))
	}
	if class.CenterID != centerID || !class.IsActive {
		return ErrClassCenterMismatch
	}
	return nil
}

func (s *childService) toResponse(c *model.Child) *dto.ChildResponse {
	return toChildResponse(c, s.now())
}

func emergencyContacts(in []dto.EmergencyContactRequest) []model.EmergencyContact {
	out := make([]model.EmergencyContact, 0, len(in))
	for _, c := range in {
		out = append(out, model.EmergencyContact{
			Name:         strings.TrimSpace(c.Name),
			Relationship: c.Relationship,
			Phone:        c.Phone,
			Email:        c.Email,
			IsPrimary:    c.IsPrimary,
			CanPickup:    c.CanPickup,
		})
	}
	return model.NormalizeEmergencyContacts(out)
}

func toChildResponse(c *model.Child, now time.Time) *dto.ChildResponse {
	years, months := model.Age(c.DateOfBirth, now)
	return &dto.ChildResponse{Child: c, AgeYears: years, AgeInMonths: months}
}
