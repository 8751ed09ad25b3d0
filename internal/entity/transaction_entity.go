package entity

import (
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusVerified TransactionStatus = "verified"
	TransactionStatusRejected TransactionStatus = "rejected"
)

// Transaction is one attempted credit purchase. Credits and AmountSubunits are
// copied from the plan table at creation and never change afterwards.
// Status transitions: pending -> verified or pending -> rejected; both end
// states are terminal.
type Transaction struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	PlanId             string
	Credits            int
	AmountSubunits     int64
	Currency           string
	Status             TransactionStatus
	ProviderOrderRef   *string
	ProviderPaymentRef *string
	ProviderPayload    []byte // raw verified callback, recorded for audit
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
