package handler

import (
	"time"

	"mercafacil/internal/adapter/http/dto"
	"mercafacil/internal/adapter/http/middleware"
	"mercafacil/internal/core/domain"
	"mercafacil/internal/core/ports"
	"mercafacil/pkg/apperror"
	"mercafacil/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles the dashboard-facing wallet endpoints.
type WalletHandler struct {
	extractSvc ports.ExtractService
	ledgerSvc  ports.LedgerService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(extractSvc ports.ExtractService, ledgerSvc ports.LedgerService) *WalletHandler {
	return &WalletHandler{extractSvc: extractSvc, ledgerSvc: ledgerSvc}
}

// GetBalance handles GET /api/v1/wallets/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	ownerType, ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	balance, err := h.extractSvc.GetBalance(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Balance: balance})
}

// GetExtract handles GET /api/v1/wallets/extract.
func (h *WalletHandler) GetExtract(c *gin.Context) {
	ownerType, ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	extract, err := h.extractSvc.GetExtract(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toExtractResponse(extract))
}

// Deposit handles POST /api/v1/wallets/deposit.
func (h *WalletHandler) Deposit(c *gin.Context) {
	ownerType, ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var req dto.WalletOpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	mv, err := h.ledgerSvc.Deposit(c.Request.Context(), ports.WalletOpRequest{
		OwnerType:   ownerType,
		OwnerID:     ownerID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toMovementResponse(*mv))
}

// Withdraw handles POST /api/v1/wallets/withdraw.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	ownerType, ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var req dto.WalletOpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	mv, err := h.ledgerSvc.Withdraw(c.Request.Context(), ports.WalletOpRequest{
		OwnerType:   ownerType,
		OwnerID:     ownerID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toMovementResponse(*mv))
}

// ownerFromContext reads the owner resolved by the JWT middleware.
func ownerFromContext(c *gin.Context) (domain.OwnerType, uuid.UUID, bool) {
	rawType, okType := c.Get(middleware.CtxOwnerType)
	rawID, okID := c.Get(middleware.CtxOwnerID)
	if !okType || !okID {
		response.Error(c, apperror.ErrInvalidToken())
		return "", uuid.Nil, false
	}
	return rawType.(domain.OwnerType), rawID.(uuid.UUID), true
}

// toExtractResponse converts a wallet statement to DTO.
func toExtractResponse(e *ports.Extract) dto.ExtractResponse {
	movements := make([]dto.MovementResponse, 0, len(e.Movements))
	for _, m := range e.Movements {
		movements = append(movements, toMovementResponse(m))
	}
	return dto.ExtractResponse{Balance: e.Balance, Movements: movements}
}

// toMovementResponse converts domain.Movement to DTO.
func toMovementResponse(m domain.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID.String(),
		Type:        string(m.Type),
		Amount:      m.Amount,
		Direction:   string(m.Direction),
		Description: m.Description,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
}
