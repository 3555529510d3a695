package dto

// RecordTransactionRequest is the request body for the payment-confirmation
// webhook. Amounts are integer centavos.
type RecordTransactionRequest struct {
	OrderID       string `json:"order_id" binding:"required,uuid"`
	CustomerID    string `json:"customer_id" binding:"required,uuid"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	PaymentMethod string `json:"payment_method" binding:"required,max=50"`
}

// TransactionResponse is the response body for a recorded payment.
type TransactionResponse struct {
	ID            string `json:"id"`
	OrderID       string `json:"order_id"`
	CustomerID    string `json:"customer_id"`
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// SettleOrderRequest is the request body for the settlement trigger. The
// order subsystem sends its snapshot of the delivered order.
type SettleOrderRequest struct {
	OrderID     string `json:"order_id" binding:"required,uuid"`
	CustomerID  string `json:"customer_id" binding:"required,uuid"`
	VendorID    string `json:"vendor_id" binding:"required,uuid"`
	DriverID    string `json:"driver_id" binding:"required,uuid"`
	Status      string `json:"status" binding:"required"`
	TotalAmount int64  `json:"total_amount" binding:"required,gte=0"`
}

// PayoutResponse is the response body for a settlement record.
type PayoutResponse struct {
	ID             string  `json:"id"`
	OrderID        string  `json:"order_id"`
	TransactionID  string  `json:"transaction_id"`
	DriverID       string  `json:"driver_id"`
	VendorID       string  `json:"vendor_id"`
	AmountDriver   int64   `json:"amount_driver"`
	AmountVendor   int64   `json:"amount_vendor"`
	AmountPlatform int64   `json:"amount_platform"`
	Status         string  `json:"status"`
	PaidAt         *string `json:"paid_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// WalletOpRequest is the request body for a deposit or withdrawal.
type WalletOpRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=200"`
}

// MovementResponse is one ledger entry in a wallet extract.
type MovementResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Direction   string `json:"direction"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// ExtractResponse is the response body for a wallet statement.
type ExtractResponse struct {
	Balance   int64              `json:"balance"`
	Movements []MovementResponse `json:"movements"`
}

// BalanceResponse is the response body for a balance lookup.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}
