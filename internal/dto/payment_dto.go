package dto

import (
	"time"

	"github.com/google/uuid"
)

type PlanResponse struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Credits     int    `json:"credits"`
	Amount      int64  `json:"amount"` // smallest currency unit
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

type CreateOrderRequest struct {
	PlanId string `json:"plan_id" validate:"required"`
}

type CreateOrderResponse struct {
	TransactionId uuid.UUID `json:"transaction_id"`
	OrderRef      string    `json:"order_ref"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
}

// VerifyPaymentRequest carries the provider callback. Field names follow the
// provider's checkout handler payload.
type VerifyPaymentRequest struct {
	OrderRef   string `json:"razorpay_order_id" validate:"required"`
	PaymentRef string `json:"razorpay_payment_id" validate:"required"`
	Signature  string `json:"razorpay_signature" validate:"required"`
}

type VerifyPaymentResponse struct {
	CreditsGranted int  `json:"credits_granted"`
	AlreadyApplied bool `json:"already_applied"`
}

type ListTransactionsRequest struct {
	Status string `json:"status"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type TransactionResponse struct {
	Id        uuid.UUID `json:"id"`
	PlanId    string    `json:"plan_id"`
	Credits   int       `json:"credits"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
