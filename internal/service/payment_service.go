package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
)

const defaultCurrency = "USD"

// PaymentService 缴费业务接口
type PaymentService interface {
	Create(ctx context.Context, actor *authz.Actor, req *dto.CreatePaymentRequest) (*model.Payment, error)
	GetByID(ctx context.Context, actor *authz.Actor, id string) (*model.Payment, error)
	List(ctx context.Context, actor *authz.Actor, req *dto.PaymentListRequest) ([]model.Payment, int64, error)
	Update(ctx context.Context, actor *authz.Actor, id string, req *dto.UpdatePaymentRequest) (*model.Payment, error)
	RecordPayment(ctx context.Context, actor *authz.Actor, id string, req *dto.RecordPaymentRequest) (*model.Payment, error)
	SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error
	// MarkOverdue 定时任务：到期未付账单转为 overdue
	MarkOverdue(ctx context.Context) (int64, error)
}

type paymentService struct {
	*core
}

// NewPaymentService 创建 PaymentService 实例
func NewPaymentService(c *core) PaymentService {
	return &paymentService{core: c}
}

func (s *paymentService) Create(ctx context.Context, actor *authz.Actor, req *dto.CreatePaymentRequest) (*model.Payment, error) {
	child, err := s.repo.Child.GetByID(ctx, req.ChildID)
	if err != nil {
		return nil, s.lookupErr(err, ErrChildNotFound, "查询儿童失败", zap.String("child_id", req.ChildID))
	}
	p := &model.Payment{
		ChildID:     child.ChildID,
		ParentID:    req.ParentID,
		CenterID:    child.CenterID,
		Description: req.Description,
		BaseAmount:  req.BaseAmount,
		Fees:        lineItems(req.Fees),
		Discounts:   lineItems(req.Discounts),
		Currency:    strings.ToUpper(req.Currency),
		Status:      model.PaymentPending,
	}
	p.IsActive = true
	if p.Currency == "" {
		p.Currency = defaultCurrency
	}
	if err := authorize(actor, authz.PaymentResource(p), authz.OpCreate); err != nil {
		return nil, err
	}
	if !child.HasParent(req.ParentID) {
		return nil, ErrInvalidPayer
	}
	if p.DueDate, err = parseDate("due_date", req.DueDate); err != nil {
		return nil, err
	}
	model.DerivePayment(p, s.now())
	p.Stamp(actor.UserID, true)

	if err := s.repo.Payment.Create(ctx, p); err != nil {
		return nil, s.dbErr("创建账单失败", err)
	}
	s.logger.Info("创建账单",
		zap.String("payment_id", p.PaymentID),
		zap.String("child_id", p.ChildID),
		zap.Float64("total", p.TotalAmount),
	)
	return p, nil
}

func (s *paymentService) GetByID(ctx context.Context, actor *authz.Actor, id string) (*model.Payment, error) {
	return s.load(ctx, actor, id, authz.OpRead)
}

func (s *paymentService) List(ctx context.Context, actor *authz.Actor, req *dto.PaymentListRequest) ([]model.Payment, int64, error) {
	from, err := parseOptDate("due_from", req.DueFrom)
	if err != nil {
		return nil, 0, err
	}
	to, err := parseOptDate("due_to", req.DueTo)
	if err != nil {
		return nil, 0, err
	}
	filters := &repository.PaymentListFilters{
		ChildID:         req.ChildID,
		ParentID:        req.ParentID,
		Status:          req.Status,
		DueFrom:         from,
		DueTo:           to,
		IncludeInactive: includeInactive(actor, req.IncludeInactive),
	}
	list, total, err := s.repo.Payment.List(ctx, authz.ScopeFor(actor, authz.KindPayment), filters, pageOf(req.PaginationRequest))
	if err != nil {
		return nil, 0, s.dbErr("查询账单列表失败", err)
	}
	return list, total, nil
}

func (s *paymentService) Update(ctx context.Context, actor *authz.Actor, id string, req *dto.UpdatePaymentRequest) (*model.Payment, error) {
	p, err := s.load(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.BaseAmount != nil {
		p.BaseAmount = *req.BaseAmount
	}
	if req.Fees != nil {
		p.Fees = lineItems(req.Fees)
	}
	if req.Discounts != nil {
		p.Discounts = lineItems(req.Discounts)
	}
	if req.DueDate != nil {
		if p.DueDate, err = parseDate("due_date", *req.DueDate); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	return s.save(ctx, actor, p)
}

// RecordPayment 累加已付金额，付清后自动转为 paid
func (s *paymentService) RecordPayment(ctx context.Context, actor *authz.Actor, id string, req *dto.RecordPaymentRequest) (*model.Payment, error) {
	p, err := s.load(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}
	if p.Status == model.PaymentCancelled || p.Status == model.PaymentRefunded {
		return nil, ErrPaymentClosed
	}
	p.PaidAmount += req.Amount
	if req.PaymentMethod != "" {
		p.PaymentMethod = req.PaymentMethod
	}
	if req.TransactionID != "" {
		p.TransactionID = req.TransactionID
	}
	saved, err := s.save(ctx, actor, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("登记付款",
		zap.String("payment_id", id),
		zap.Float64("amount", req.Amount),
		zap.String("status", saved.Status),
	)
	return saved, nil
}

func (s *paymentService) SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error {
	p, err := s.load(ctx, actor, id, authz.OpDelete)
	if err != nil {
		return err
	}
	if active {
		p.Activate(actor.UserID)
	} else {
		p.Deactivate(actor.UserID, s.now())
	}
	if err := s.repo.Payment.Update(ctx, p); err != nil {
		return s.dbErr("更新账单状态失败", err, zap.String("payment_id", id))
	}
	return nil
}

func (s *paymentService) MarkOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.Payment.MarkOverdue(ctx, model.DateOnly(s.now()))
	if err != nil {
		return 0, s.dbErr("标记逾期账单失败", err)
	}
	return n, nil
}

func (s *paymentService) load(ctx context.Context, actor *authz.Actor, id string, op authz.Op) (*model.Payment, error) {
	p, err := s.repo.Payment.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupErr(err, ErrPaymentNotFound, "查询账单失败", zap.String("payment_id", id))
	}
	if err := authorize(actor, authz.PaymentResource(p), op); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *paymentService) save(ctx context.Context, actor *authz.Actor, p *model.Payment) (*model.Payment, error) {
	model.DerivePayment(p, s.now())
	p.Stamp(actor.UserID, false)
	if err := s.repo.Payment.Update(ctx, p); err != nil {
		return nil, s.dbErr("更新账单失败", err, zap.String("payment_id", p.PaymentID))
	}
	return p, nil
}

func lineItems(in []dto.LineItemRequest) datatypes.JSONSlice[model.LineItem] {
	out := make(datatypes.JSONSlice[model.LineItem], 0, len(in))
	for _, li := range in {
		out = append(out, model.LineItem{Description: strings.TrimSpace(li.Description), Amount: li.Amount})
	}
	return out
}
