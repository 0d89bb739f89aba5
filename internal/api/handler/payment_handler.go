package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/service"
	"github.com/cliffordobure/daycare-sub000/pkg/response"
)

// PaymentHandler 缴费模块 HTTP 处理器
type PaymentHandler struct {
	paymentSvc service.PaymentService
}

// NewPaymentHandler 创建 PaymentHandler
func NewPaymentHandler(paymentSvc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// Create 创建账单
// POST /api/payments
func (h *PaymentHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := h.paymentSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, payment)
}

// Get 账单详情
// GET /api/payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	payment, err := h.paymentSvc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, payment)
}

// List 账单列表
// GET /api/payments
func (h *PaymentHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.PaymentListRequest
	if !bindQuery(c, &req) {
		return
	}

	payments, total, err := h.paymentSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, payments, total, req.GetPage(), req.GetPageSize())
}

// Update 更新账单
// PUT /api/payments/:id
func (h *PaymentHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.UpdatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := h.paymentSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, payment)
}

// Pay 登记付款
// POST /api/payments/:id/pay
func (h *PaymentHandler) Pay(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.RecordPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := h.paymentSvc.RecordPayment(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, payment)
}

// SetStatus 启用/停用账单
// PUT /api/payments/:id/status
func (h *PaymentHandler) SetStatus(c *gin.Context) {
	setStatus(c, h.paymentSvc.SetStatus)
}

// Delete 作废账单（软删除）
// DELETE /api/payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	deactivate(c, h.paymentSvc.SetStatus)
}
