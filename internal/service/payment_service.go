package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"ai-imagegen-be/internal/constant"
	"ai-imagegen-be/internal/dto"
	"ai-imagegen-be/internal/entity"
	"ai-imagegen-be/internal/pkg/logger"
	"ai-imagegen-be/internal/repository/specification"
	"ai-imagegen-be/internal/repository/unitofwork"

	"ai-imagegen-be/pkg/events"
	pktNats "ai-imagegen-be/pkg/nats"
	"ai-imagegen-be/pkg/payment"

	"github.com/google/uuid"
)

type IPaymentService interface {
	GetPlans(ctx context.Context) []*dto.PlanResponse
	CreateOrder(ctx context.Context, userId uuid.UUID, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error)
	ListTransactions(ctx context.Context, userId uuid.UUID, req *dto.ListTransactionsRequest) ([]*dto.TransactionResponse, error)
}

type paymentService struct {
	uowFactory     unitofwork.RepositoryFactory
	gateway        payment.Gateway
	keySecret      string
	currency       string
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewPaymentService(uowFactory unitofwork.RepositoryFactory, gateway payment.Gateway, keySecret, currency string, eventPublisher *pktNats.Publisher, log logger.ILogger) IPaymentService {
	return &paymentService{
		uowFactory:     uowFactory,
		gateway:        gateway,
		keySecret:      keySecret,
		currency:       currency,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (s *paymentService) GetPlans(ctx context.Context) []*dto.PlanResponse {
	res := make([]*dto.PlanResponse, 0, len(constant.CreditPlans))
	for i := range constant.CreditPlans {
		p := &constant.CreditPlans[i]
		res = append(res, &dto.PlanResponse{
			Id:          p.Id,
			Name:        p.Name,
			Credits:     p.Credits,
			Amount:      p.AmountSubunits,
			Currency:    s.currency,
			Description: p.Description,
		})
	}
	return res
}

// CreateOrder records a pending transaction with credits/amount resolved from
// the plan table, then asks the provider for an order carrying the
// transaction id as receipt. A provider failure leaves the pending row in
// place without a provider ref, which a sweep can later pick up.
func (s *paymentService) CreateOrder(ctx context.Context, userId uuid.UUID, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	plan := constant.PlanById(req.PlanId)
	if plan == nil {
		return nil, ErrInvalidPlan
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}

	txn := &entity.Transaction{
		Id:             uuid.New(),
		UserId:         userId,
		PlanId:         plan.Id,
		Credits:        plan.Credits,
		AmountSubunits: plan.AmountSubunits,
		Currency:       s.currency,
		Status:         entity.TransactionStatusPending,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := uow.TransactionRepository().Create(ctx, txn); err != nil {
		return nil, err
	}

	orderRef, err := s.gateway.CreateOrder(ctx, plan.AmountSubunits, s.currency, txn.Id.String())
	if err != nil {
		s.log.Warn("payment", "provider order creation failed, pending transaction left without ref", map[string]interface{}{
			"transaction_id": txn.Id,
			"error":          err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if err := uow.TransactionRepository().SetProviderOrderRef(ctx, txn.Id, orderRef); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "ORDER_CREATED",
			Data: map[string]interface{}{
				"transaction_id": txn.Id,
				"user_id":        userId,
				"plan_id":        plan.Id,
				"amount":         plan.AmountSubunits,
				"currency":       s.currency,
				"occurred_at":    time.Now(),
			},
			OccurredAt: time.Now(),
		}
		if pubErr := s.eventPublisher.Publish(ctx, evt); pubErr != nil {
			s.log.Warn("payment", "failed to publish ORDER_CREATED event", map[string]interface{}{"error": pubErr.Error()})
		}
	}

	return &dto.CreateOrderResponse{
		TransactionId: txn.Id,
		OrderRef:      orderRef,
		Amount:        plan.AmountSubunits,
		Currency:      s.currency,
	}, nil
}

// ListTransactions returns the user's purchase history, newest first.
func (s *paymentService) ListTransactions(ctx context.Context, userId uuid.UUID, req *dto.ListTransactionsRequest) ([]*dto.TransactionResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	}
	if req.Status != "" {
		specs = append(specs, specification.Filter("status", req.Status))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	txns, err := uow.TransactionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		res = append(res, &dto.TransactionResponse{
			Id:        txn.Id,
			PlanId:    txn.PlanId,
			Credits:   txn.Credits,
			Amount:    txn.AmountSubunits,
			Currency:  txn.Currency,
			Status:    string(txn.Status),
			CreatedAt: txn.CreatedAt,
		})
	}
	return res, nil
}

// VerifyPayment authenticates a provider callback and applies the credit
// grant exactly once. Credits come from the stored transaction, never from
// the callback; the pending->verified flip gates the balance increment; a
// redelivered callback lands on ErrAlreadyProcessed with no state change.
func (s *paymentService) VerifyPayment(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	txnRepo := uow.TransactionRepository()

	// 1. Authenticate the payload before trusting anything in it.
	if !s.signatureValid(req.OrderRef, req.PaymentRef, req.Signature) {
		txn, findErr := txnRepo.FindOne(ctx, specification.ByProviderOrderRef{OrderRef: req.OrderRef})
		if findErr != nil {
			s.log.Error("payment", "transaction lookup failed after bad signature", map[string]interface{}{
				"order_ref": req.OrderRef,
				"error":     findErr.Error(),
			})
		}
		if txn != nil && txn.Status == entity.TransactionStatusPending {
			if _, rejErr := txnRepo.MarkRejected(ctx, txn.Id); rejErr != nil {
				s.log.Error("payment", "failed to reject transaction after bad signature", map[string]interface{}{
					"transaction_id": txn.Id,
					"error":          rejErr.Error(),
				})
			}
		}
		s.log.Warn("payment", "callback signature mismatch", map[string]interface{}{"order_ref": req.OrderRef})
		return nil, ErrInvalidSignature
	}

	// 2. The provider-issued order ref is the single authoritative key.
	txn, err := txnRepo.FindOne(ctx, specification.ByProviderOrderRef{OrderRef: req.OrderRef})
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrUnknownTransaction
	}

	switch txn.Status {
	case entity.TransactionStatusVerified:
		// Provider retry; acknowledge without touching anything.
		return nil, ErrAlreadyProcessed
	case entity.TransactionStatusRejected:
		return nil, ErrUnknownTransaction
	}

	payload, _ := json.Marshal(req)

	// 3. Flip the status and grant the credits as one unit of consistency.
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	affected, err := uow.TransactionRepository().MarkVerified(ctx, txn.Id, req.PaymentRef, payload)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Lost the race against a concurrent delivery of the same callback.
		return nil, ErrAlreadyProcessed
	}

	granted, err := uow.UserRepository().AddCredits(ctx, txn.UserId, txn.Credits)
	if err != nil {
		return nil, err
	}
	if granted == 0 {
		return nil, ErrAccountNotFound
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.log.Info("payment", "payment verified, credits granted", map[string]interface{}{
		"transaction_id": txn.Id,
		"user_id":        txn.UserId,
		"credits":        txn.Credits,
	})

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "PAYMENT_VERIFIED",
			Data: map[string]interface{}{
				"transaction_id": txn.Id,
				"user_id":        txn.UserId,
				"credits":        txn.Credits,
				"occurred_at":    time.Now(),
			},
			OccurredAt: time.Now(),
		}
		if pubErr := s.eventPublisher.Publish(ctx, evt); pubErr != nil {
			s.log.Warn("payment", "failed to publish PAYMENT_VERIFIED event", map[string]interface{}{"error": pubErr.Error()})
		}
	}

	return &dto.VerifyPaymentResponse{CreditsGranted: txn.Credits}, nil
}

// signatureValid recomputes the provider signature, HMAC-SHA256 over
// "orderRef|paymentRef" keyed with the server-held secret. hmac.Equal keeps
// the comparison constant time.
func (s *paymentService) signatureValid(orderRef, paymentRef, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
