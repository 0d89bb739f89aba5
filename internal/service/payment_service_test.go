package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
)

func newPaymentRequest(dueDate string) *dto.CreatePaymentRequest {
	return &dto.CreatePaymentRequest{
		ChildID:     testChildA1,
		ParentID:    "parent-a",
		Description: "十月学费",
		BaseAmount:  100,
		Fees:        []dto.LineItemRequest{{Description: "餐费", Amount: 10}},
		Discounts:   []dto.LineItemRequest{{Description: "兄弟姐妹", Amount: 5}},
		DueDate:     dueDate,
	}
}

func futureDate() string {
	return time.Now().AddDate(0, 1, 0).Format(dto.DateLayout)
}

func TestPaymentService_Create_DerivesTotal(t *testing.T) {
	env := setupTestEnv()

	p, err := env.svc.Payment.Create(context.Background(), adminActor(), newPaymentRequest(futureDate()))
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if p.TotalAmount != 105 {
		t.Errorf("期望 TotalAmount=105，实际=%v", p.TotalAmount)
	}
	if p.Status != model.PaymentPending {
		t.Errorf("期望 status=pending，实际=%s", p.Status)
	}
	if p.Currency != defaultCurrency {
		t.Errorf("期望默认币种 %s，实际=%s", defaultCurrency, p.Currency)
	}
	if p.CenterID != testCenterA {
		t.Errorf("期望 CenterID=%s，实际=%s", testCenterA, p.CenterID)
	}
}

func TestPaymentService_Create_PastDueIsOverdue(t *testing.T) {
	env := setupTestEnv()

	p, err := env.svc.Payment.Create(context.Background(), adminActor(), newPaymentRequest("2020-01-01"))
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if p.Status != model.PaymentOverdue {
		t.Errorf("期望 status=overdue，实际=%s", p.Status)
	}
}

func TestPaymentService_Create_PayerMustBeGuardian(t *testing.T) {
	env := setupTestEnv()
	req := newPaymentRequest(futureDate())
	req.ParentID = "parent-b"

	_, err := env.svc.Payment.Create(context.Background(), adminActor(), req)
	if !errors.Is(err, ErrInvalidPayer) {
		t.Errorf("期望 ErrInvalidPayer，实际=%v", err)
	}
}

func TestPaymentService_Create_TeacherDenied(t *testing.T) {
	env := setupTestEnv()

	_, err := env.svc.Payment.Create(context.Background(), teacherActor(), newPaymentRequest(futureDate()))
	if !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("期望 ErrAccessDenied，实际=%v", err)
	}
}

func TestPaymentService_RecordPayment_PartialThenPaid(t *testing.T) {
	env := setupTestEnv()
	ctx := context.Background()
	p, err := env.svc.Payment.Create(ctx, adminActor(), newPaymentRequest(futureDate()))
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}

	partial, err := env.svc.Payment.RecordPayment(ctx, adminActor(), p.PaymentID, &dto.RecordPaymentRequest{Amount: 50})
	if err != nil {
		t.Fatalf("RecordPayment 失败: %v", err)
	}
	if partial.Status != model.PaymentPending || partial.PaidAmount != 50 {
		t.Errorf("部分付款后期望 pending/50，实际=%s/%v", partial.Status, partial.PaidAmount)
	}

	paid, err := env.svc.Payment.RecordPayment(ctx, adminActor(), p.PaymentID, &dto.RecordPaymentRequest{
		Amount:        55,
		PaymentMethod: "card",
		TransactionID: "txn-001",
	})
	if err != nil {
		t.Fatalf("RecordPayment 失败: %v", err)
	}
	if paid.Status != model.PaymentPaid {
		t.Errorf("付清后期望 status=paid，实际=%s", paid.Status)
	}
	if paid.PaidDate == nil {
		t.Error("付清后应记录付款时间")
	}
	if paid.PaymentMethod != "card" || paid.TransactionID != "txn-001" {
		t.Errorf("应记录付款方式与流水号，实际=%s/%s", paid.PaymentMethod, paid.TransactionID)
	}
}

func TestPaymentService_RecordPayment_Closed(t *testing.T) {
	env := setupTestEnv()
	ctx := context.Background()
	p, err := env.svc.Payment.Create(ctx, adminActor(), newPaymentRequest(futureDate()))
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	cancelled := model.PaymentCancelled
	if _, err := env.svc.Payment.Update(ctx, adminActor(), p.PaymentID, &dto.UpdatePaymentRequest{Status: &cancelled}); err != nil {
		t.Fatalf("Update 失败: %v", err)
	}

	_, err = env.svc.Payment.RecordPayment(ctx, adminActor(), p.PaymentID, &dto.RecordPaymentRequest{Amount: 10})
	if !errors.Is(err, ErrPaymentClosed) {
		t.Errorf("期望 ErrPaymentClosed，实际=%v", err)
	}
}

func TestPaymentService_GetByID_ParentAccess(t *testing.T) {
	env := setupTestEnv()
	ctx := context.Background()
	p, err := env.svc.Payment.Create(ctx, adminActor(), newPaymentRequest(futureDate()))
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}

	if _, err := env.svc.Payment.GetByID(ctx, parentActor(), p.PaymentID); err != nil {
		t.Errorf("付款人应能查看账单: %v", err)
	}
	outsider := &authz.Actor{UserID: "parent-b", Role: model.RoleParent, CenterID: testCenterB, ChildIDs: []string{testChildB1}}
	if _, err := env.svc.Payment.GetByID(ctx, outsider, p.PaymentID); !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("期望 ErrAccessDenied，实际=%v", err)
	}
	if _, err := env.svc.Payment.RecordPayment(ctx, parentActor(), p.PaymentID, &dto.RecordPaymentRequest{Amount: 1}); !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("家长不能登记付款，期望 ErrAccessDenied，实际=%v", err)
	}
}

func TestPaymentService_MarkOverdue(t *testing.T) {
	env := setupTestEnv()
	// 扫描结果由定时任务记录，服务层不重复输出
	obs, logs := observer.New(zap.InfoLevel)
	env.svc.Payment.(*paymentService).logger = zap.New(obs)
	for _, p := range []*model.Payment{
		{PaymentID: "pay-old", TotalAmount: 80},
		{PaymentID: "pay-waived", TotalAmount: 0},
	} {
		p.ChildID = testChildA1
		p.ParentID = "parent-a"
		p.CenterID = testCenterA
		p.Status = model.PaymentPending
		p.DueDate = time.Now().AddDate(0, 0, -3)
		p.IsActive = true
		env.payments.payments[p.PaymentID] = p
	}

	n, err := env.svc.Payment.MarkOverdue(context.Background())
	if err != nil {
		t.Fatalf("MarkOverdue 失败: %v", err)
	}
	if n != 1 {
		t.Errorf("期望标记 1 条，实际=%d", n)
	}
	if env.payments.payments["pay-old"].Status != model.PaymentOverdue {
		t.Errorf("期望 status=overdue，实际=%s", env.payments.payments["pay-old"].Status)
	}
	if env.payments.payments["pay-waived"].Status != model.PaymentPending {
		t.Errorf("无欠款账单不应标记逾期，实际=%s", env.payments.payments["pay-waived"].Status)
	}
	if logs.Len() != 0 {
		t.Errorf("服务层不应输出日志，实际=%v", logs.All())
	}
}
