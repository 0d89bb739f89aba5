package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
)

// HealthRecordService 每日健康记录业务接口
type HealthRecordService interface {
	Create(ctx context.Context, actor *authz.Actor, req *dto.CreateHealthRecordRequest) (*model.HealthRecord, error)
	GetByID(ctx context.Context, actor *authz.Actor, id string) (*model.HealthRecord, error)
	List(ctx context.Context, actor *authz.Actor, req *dto.HealthRecordListRequest) ([]model.HealthRecord, int64, error)
	Update(ctx context.Context, actor *authz.Actor, id string, req *dto.UpdateHealthRecordRequest) (*model.HealthRecord, error)
	AddIncident(ctx context.Context, actor *authz.Actor, id string, req *dto.IncidentRequest) (*model.HealthRecord, error)
	SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error
}

type healthRecordService struct {
	*core
}

// NewHealthRecordService 创建 HealthRecordService 实例
func NewHealthRecordService(c *core) HealthRecordService {
	return &healthRecordService{core: c}
}

func (s *healthRecordService) Create(ctx context.Context, actor *authz.Actor, req *dto.CreateHealthRecordRequest) (*model.HealthRecord, error) {
	child, err := s.repo.Child.GetByID(ctx, req.ChildID)
	if err != nil {
		return nil, s.lookupErr(err, ErrChildNotFound, "查询儿童失败", zap.String("child_id", req.ChildID))
	}
	h := &model.HealthRecord{
		ChildID:      child.ChildID,
		CenterID:     child.CenterID,
		ClassID:      child.CurrentClassID,
		RecordedBy:   actor.UserID,
		Temperature:  req.Temperature,
		Weight:       req.Weight,
		Height:       req.Height,
		Mood:         req.Mood,
		Appetite:     req.Appetite,
		SleepMinutes: req.SleepMinutes,
		Observations: req.Observations,
		Symptoms:     req.Symptoms,
	}
	h.IsActive = true
	if err := authorize(actor, authz.HealthRecordResource(h), authz.OpCreate); err != nil {
		return nil, err
	}
	date, err := parseDate("record_date", req.RecordDate)
	if err != nil {
		return nil, err
	}
	h.RecordDate = model.DateOnly(date)
	h.Stamp(actor.UserID, true)

	if err := s.repo.HealthRecord.Create(ctx, h); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrHealthRecordExists
		}
		return nil, s.dbErr("创建健康记录失败", err)
	}
	return h, nil
}

func (s *healthRecordService) GetByID(ctx context.Context, actor *authz.Actor, id string) (*model.HealthRecord, error) {
	return s.load(ctx, actor, id, authz.OpRead)
}

func (s *healthRecordService) List(ctx context.Context, actor *authz.Actor, req *dto.HealthRecordListRequest) ([]model.HealthRecord, int64, error) {
	from, err := parseOptDate("date_from", req.DateFrom)
	if err != nil {
		return nil, 0, err
	}
	to, err := parseOptDate("date_to", req.DateTo)
	if err != nil {
		return nil, 0, err
	}
	filters := &repository.HealthRecordListFilters{
		ChildID:         req.ChildID,
		DateFrom:        from,
		DateTo:          to,
		IncludeInactive: includeInactive(actor, req.IncludeInactive),
	}
	list, total, err := s.repo.HealthRecord.List(ctx, authz.ScopeFor(actor, authz.KindHealthRecord), filters, pageOf(req.PaginationRequest))
	if err != nil {
		return nil, 0, s.dbErr("查询健康记录失败", err)
	}
	return list, total, nil
}

func (s *healthRecordService) Update(ctx context.Context, actor *authz.Actor, id string, req *dto.UpdateHealthRecordRequest) (*model.HealthRecord, error) {
	h, err := s.load(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}
	if req.Temperature != nil {
		h.Temperature = req.Temperature
	}
	if req.Weight != nil {
		h.Weight = req.Weight
	}
	if req.Height != nil {
		h.Height = req.Height
	}
	if req.Mood != nil {
		h.Mood = *req.Mood
	}
	if req.Appetite != nil {
		h.Appetite = *req.Appetite
	}
	if req.SleepMinutes != nil {
		h.SleepMinutes = req.SleepMinutes
	}
	if req.Observations != nil {
		h.Observations = *req.Observations
	}
	if req.Symptoms != nil {
		h.Symptoms = req.Symptoms
	}
	h.Stamp(actor.UserID, false)
	if err := s.repo.HealthRecord.Update(ctx, h); err != nil {
		return nil, s.dbErr("更新健康记录失败", err, zap.String("health_record_id", id))
	}
	return h, nil
}

// AddIncident 追加事故；需要时通知该儿童的全部家长
func (s *healthRecordService) AddIncident(ctx context.Context, actor *authz.Actor, id string, req *dto.IncidentRequest) (*model.HealthRecord, error) {
	h, err := s.load(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}
	now := s.now()
	inc := model.Incident{
		IncidentID:  uuid.NewString(),
		Type:        req.Type,
		Description: req.Description,
		ActionTaken: req.ActionTaken,
		Severity:    req.Severity,
		OccurredAt:  now,
		ReportedBy:  actor.UserID,
	}
	if req.OccurredAt != nil {
		inc.OccurredAt = *req.OccurredAt
	}

	if req.NotifyParents {
		if err := s.notifyParents(ctx, actor, h, &inc); err != nil {
			return nil, err
		}
		inc.ParentNotified = true
		inc.NotifiedAt = &now
	}
	h.Incidents = append(h.Incidents, inc)
	h.Stamp(actor.UserID, false)

	if err := s.repo.HealthRecord.Update(ctx, h); err != nil {
		return nil, s.dbErr("保存事故记录失败", err, zap.String("health_record_id", id))
	}
	s.logger.Info("登记事故",
		zap.String("health_record_id", id),
		zap.String("child_id", h.ChildID),
		zap.String("severity", inc.Severity),
		zap.Bool("parent_notified", inc.ParentNotified),
	)
	return h, nil
}

func (s *healthRecordService) SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error {
	h, err := s.load(ctx, actor, id, authz.OpDelete)
	if err != nil {
		return err
	}
	if active {
		h.Activate(actor.UserID)
	} else {
		h.Deactivate(actor.UserID, s.now())
	}
	if err := s.repo.HealthRecord.Update(ctx, h); err != nil {
		return s.dbErr("更新健康记录状态失败", err, zap.String("health_record_id", id))
	}
	return nil
}

func (s *healthRecordService) load(ctx context.Context, actor *authz.Actor, id string, op authz.Op) (*model.HealthRecord, error) {
	h, err := s.repo.HealthRecord.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupErr(err, ErrHealthRecordNotFound, "查询健康记录失败", zap.String("health_record_id", id))
	}
	if err := authorize(actor, authz.HealthRecordResource(h), op); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *healthRecordService) notifyParents(ctx context.Context, actor *authz.Actor, h *model.HealthRecord, inc *model.Incident) error {
	child, err := s.repo.Child.GetByID(ctx, h.ChildID)
	if err != nil {
		return s.lookupErr(err, ErrChildNotFound, "查询儿童失败", zap.String("child_id", h.ChildID))
	}

	recipients := make(map[string]*model.User, len(child.Parents))
	items := make([]model.Notification, 0, len(child.Parents))
	for i := range child.Parents {
		p := &child.Parents[i]
		if !p.IsActive {
			continue
		}
		n := model.Notification{
			RecipientID: p.UserID,
			SenderID:    model.StrPtr(actor.UserID),
			CenterID:    model.StrPtr(h.CenterID),
			Type:        "incident",
			Title:       fmt.Sprintf("%s 的事故通知", child.FirstName),
			Content:     inc.Description,
			Priority:    incidentPriority(inc.Severity),
			Channels:    []string{model.ChannelInApp, model.ChannelEmail, model.ChannelSMS},
			RelatedType: model.StrPtr("health_record"),
			RelatedID:   model.StrPtr(h.HealthRecordID),
		}
		n.IsActive = true
		n.Stamp(actor.UserID, true)
		recipients[p.UserID] = p
		items = append(items, n)
	}
	return s.notify(ctx, items, recipients)
}

func incidentPriority(severity string) string {
	switch severity {
	case "severe":
		return model.PriorityUrgent
	case "moderate":
		return model.PriorityHigh
	}
	return model.PriorityNormal
}
