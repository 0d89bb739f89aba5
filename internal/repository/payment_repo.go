package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

// PaymentListFilters 缴费列表过滤条件
type PaymentListFilters struct {
	ChildID         string
	ParentID        string
	Status          string
	DueFrom         *time.Time
	DueTo           *time.Time
	IncludeInactive bool
}

// PaymentRepository 缴费数据访问接口
type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	Update(ctx context.Context, p *model.Payment) error
	List(ctx context.Context, scope authz.Scope, filters *PaymentListFilters, page Page) ([]model.Payment, int64, error)
	// MarkOverdue 将到期未付的 pending 账单置为 overdue，返回影响行数
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
}

// paymentRepo PaymentRepository 的 GORM 实现
type paymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepo 创建 PaymentRepository 实例
func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db: db}
}

var paymentScopeCols = scopeColumns{
	center: "payments.center_id",
	child:  "payments.child_id",
	payer:  "payments.parent_id",
}

func (r *paymentRepo) Create(ctx context.Context, p *model.Payment) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *paymentRepo) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) Update(ctx context.Context, p *model.Payment) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

func (r *paymentRepo) List(ctx context.Context, scope authz.Scope, filters *PaymentListFilters, page Page) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Payment{})
	db = applyScope(db, scope, paymentScopeCols)

	includeInactive := false
	if filters != nil {
		includeInactive = filters.IncludeInactive
		if filters.ChildID != "" {
			db = db.Where("payments.child_id = ?", filters.ChildID)
		}
		if filters.ParentID != "" {
			db = db.Where("payments.parent_id = ?", filters.ParentID)
		}
		if filters.Status != "" {
			db = db.Where("payments.status = ?", filters.Status)
		}
		if filters.DueFrom != nil {
			db = db.Where("payments.due_date >= ?", model.DateOnly(*filters.DueFrom))
		}
		if filters.DueTo != nil {
			db = db.Where("payments.due_date <= ?", model.DateOnly(*filters.DueTo))
		}
	}
	db = activeOnly(db, "payments", includeInactive)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := paginate(db, page).
		Order("payments.due_date DESC").
		Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *paymentRepo) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("status = ? AND due_date < ? AND is_active = ? AND total_amount > paid_amount", model.PaymentPending, model.DateOnly(today), true).
		Update("status", model.PaymentOverdue)
	return result.RowsAffected, result.Error
}
