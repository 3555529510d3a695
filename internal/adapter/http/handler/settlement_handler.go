package handler

import (
	"time"

	"mercafacil/internal/adapter/http/dto"
	"mercafacil/internal/core/domain"
	"mercafacil/internal/core/ports"
	"mercafacil/pkg/apperror"
	"mercafacil/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettlementHandler handles the settlement endpoints invoked by the order
// subsystem.
type SettlementHandler struct {
	settlementSvc ports.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementSvc ports.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementSvc: settlementSvc}
}

// SettleOrder handles POST /api/v1/settlements. Safe to invoke more than
// once per order: a repeat returns the existing payout.
func (h *SettlementHandler) SettleOrder(c *gin.Context) {
	var req dto.SettleOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	order, err := toOrder(req)
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	payout, err := h.settlementSvc.SettleOrder(c.Request.Context(), order)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toPayoutResponse(payout))
}

// GetPayout handles GET /api/v1/settlements/:orderID.
func (h *SettlementHandler) GetPayout(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid order ID"))
		return
	}

	payout, err := h.settlementSvc.GetPayout(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toPayoutResponse(payout))
}

// toOrder converts the settlement request into the domain snapshot.
func toOrder(req dto.SettleOrderRequest) (domain.Order, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return domain.Order{}, err
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return domain.Order{}, err
	}
	vendorID, err := uuid.Parse(req.VendorID)
	if err != nil {
		return domain.Order{}, err
	}
	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		return domain.Order{}, err
	}

	return domain.Order{
		ID:          orderID,
		CustomerID:  customerID,
		VendorID:    vendorID,
		DriverID:    driverID,
		Status:      domain.OrderStatus(req.Status),
		TotalAmount: req.TotalAmount,
	}, nil
}

// toPayoutResponse converts domain.Payout to DTO.
func toPayoutResponse(p *domain.Payout) dto.PayoutResponse {
	resp := dto.PayoutResponse{
		ID:             p.ID.String(),
		OrderID:        p.OrderID.String(),
		TransactionID:  p.TransactionID.String(),
		DriverID:       p.DriverID.String(),
		VendorID:       p.VendorID.String(),
		AmountDriver:   p.AmountDriver,
		AmountVendor:   p.AmountVendor,
		AmountPlatform: p.AmountPlatform,
		Status:         string(p.Status),
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
	if p.PaidAt != nil {
		s := p.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &s
	}
	return resp
}
