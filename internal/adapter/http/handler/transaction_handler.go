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

// TransactionHandler handles the payment-confirmation endpoints.
type TransactionHandler struct {
	transactionSvc ports.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionSvc ports.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionSvc: transactionSvc}
}

// RecordTransaction handles POST /api/v1/transactions, called by the payment
// collaborator once a payment is confirmed. Idempotent per order.
func (h *TransactionHandler) RecordTransaction(c *gin.Context) {
	var req dto.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid order ID"))
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid customer ID"))
		return
	}

	txn, err := h.transactionSvc.RecordTransaction(c.Request.Context(), ports.RecordTransactionRequest{
		OrderID:       orderID,
		CustomerID:    customerID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(txn))
}

// GetTransaction handles GET /api/v1/transactions/:orderID.
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid order ID"))
		return
	}

	txn, err := h.transactionSvc.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(txn))
}

// toTransactionResponse converts domain.Transaction to DTO.
func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:            t.ID.String(),
		OrderID:       t.OrderID.String(),
		CustomerID:    t.CustomerID.String(),
		Amount:        t.Amount,
		PaymentMethod: t.PaymentMethod,
		Status:        string(t.Status),
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
	}
}
