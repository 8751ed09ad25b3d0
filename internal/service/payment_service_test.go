package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ai-imagegen-be/internal/dto"
	"ai-imagegen-be/internal/entity"
	"ai-imagegen-be/internal/repository/contract"
	"ai-imagegen-be/internal/repository/specification"
	"ai-imagegen-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeySecret = "test_key_secret"

// fakeGateway implements payment.Gateway in memory.
type fakeGateway struct {
	fail    bool
	orders  int
	lastRef string
}

func (g *fakeGateway) CreateOrder(_ context.Context, amountSubunits int64, currency, receipt string) (string, error) {
	if g.fail {
		return "", errors.New("gateway down")
	}
	g.orders++
	g.lastRef = fmt.Sprintf("order_%s_%d", receipt[:8], g.orders)
	return g.lastRef, nil
}

func newPaymentFixture(t *testing.T) (unitofwork.RepositoryFactory, *fakeGateway, IPaymentService) {
	t.Helper()
	factory := newTestFactory(t)
	gateway := &fakeGateway{}
	svc := NewPaymentService(factory, gateway, testKeySecret, "INR", nil, nopLogger{})
	return factory, gateway, svc
}

func sign(orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(testKeySecret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

func findTransaction(t *testing.T, factory unitofwork.RepositoryFactory, id uuid.UUID) *entity.Transaction {
	t.Helper()
	uow := factory.NewUnitOfWork(context.Background())
	txn, err := uow.TransactionRepository().FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, txn)
	return txn
}

func TestGetPlans(t *testing.T) {
	_, _, svc := newPaymentFixture(t)

	plans := svc.GetPlans(context.Background())
	require.Len(t, plans, 3)
	assert.Equal(t, "Basic", plans[0].Id)
	assert.Equal(t, 100, plans[0].Credits)
	assert.Equal(t, int64(1000), plans[0].Amount)
	assert.Equal(t, "INR", plans[0].Currency)
}

func TestCreateOrderPersistsPendingTransaction(t *testing.T) {
	factory, gateway, svc := newPaymentFixture(t)
	user := createTestUser(t, factory, 5)

	plan := basicPlan(t)
	res, err := svc.CreateOrder(context.Background(), user.Id, &dto.CreateOrderRequest{PlanId: plan.Id})
	require.NoError(t, err)
	assert.Equal(t, gateway.lastRef, res.OrderRef)

	txn := findTransaction(t, factory, res.TransactionId)
	assert.Equal(t, entity.TransactionStatusPending, txn.Status)
	assert.Equal(t, plan.Credits, txn.Credits)
	assert.Equal(t, plan.AmountSubunits, txn.AmountSubunits)
	require.NotNil(t, txn.ProviderOrderRef)
	assert.Equal(t, gateway.lastRef, *txn.ProviderOrderRef)

	// No credits move at order time.
	assert.Equal(t, 5, userBalance(t, factory, user.Id))
}

func TestCreateOrderUnknownPlanCreatesNothing(t *testing.T) {
	factory, gateway, svc := newPaymentFixture(t)
	user := createTestUser(t, factory, 5)

	_, err := svc.CreateOrder(context.Background(), user.Id, &dto.CreateOrderRequest{PlanId: "Platinum"})
	assert.ErrorIs(t, err, ErrInvalidPlan)
	assert.Equal(t, 0, gateway.orders)

	uow := factory.NewUnitOfWork(context.Background())
	count, err := uow.TransactionRepository().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCreateOrderUnknownUser(t *testing.T) {
	_, _, svc := newPaymentFixture(t)

	_, err := svc.CreateOrder(context.Background(), uuid.New(), &dto.CreateOrderRequest{PlanId: "Basic"})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestCreateOrderGatewayFailureLeavesPendingRow(t *testing.T) {
	factory, gateway, svc := newPaymentFixture(t)
	gateway.fail = true
	user := createTestUser(t, factory, 5)

	_, err := svc.CreateOrder(context.Background(), user.Id, &dto.CreateOrderRequest{PlanId: "Basic"})
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	// The pending transaction must not silently disappear; it stays around
	// with no provider ref as a detectable anomaly.
	uow := factory.NewUnitOfWork(context.Background())
	txns, findErr := uow.TransactionRepository().FindAll(context.Background(),
		specification.UserOwnedBy{UserID: user.Id})
	require.NoError(t, findErr)
	require.Len(t, txns, 1)
	assert.Equal(t, entity.TransactionStatusPending, txns[0].Status)
	assert.Nil(t, txns[0].ProviderOrderRef)
}

func TestVerifyPaymentGrantsCreditsOnce(t *testing.T) {
	factory, _, svc := newPaymentFixture(t)
	user := createTestUser(t, factory, 5)

	order, err := svc.CreateOrder(context.Background(), user.Id, &dto.CreateOrderRequest{PlanId: "Basic"})
	require.NoError(t, err)

	req := &dto.VerifyPaymentRequest{
		OrderRef:   order.OrderRef,
		PaymentRef: "pay_123",
		Signature:  sign(order.OrderRef, "pay_123"),
	}

	res, err := svc.VerifyPayment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 100, res.CreditsGranted)
	assert.Equal(t, 105, userBalance(t, factory, user.Id))

	txn := findTransaction(t, factory, order.TransactionId)
	assert.Equal(t, entity.TransactionStatusVerified, txn.Status)
	require.NotNil(t, txn.ProviderPaymentRef)
	assert.Equal(t, "pay_123", *txn.ProviderPaymentRef)
	assert.NotEmpty(t, txn.ProviderPayload)

	// Redelivered callback: success-equivalent ack, no second grant.
	_, err = svc.VerifyPayment(context.Background(), req)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Equal(t, 105, userBalance(t, factory, user.Id))
}

func TestVerifyPaymentTamperedSignature(t *testing.T) {
	factory, _, svc := newPaymentFixture(t)
	user := createTestUser(t, factory, 5)

	order, err := svc.CreateOrder(context.Background(), user.Id, &dto.CreateOrderRequest{PlanId: "Advanced"})
	require.NoError(t, err)

	_, err = svc.VerifyPayment(context.Background(), &dto.VerifyPaymentRequest{
		OrderRef:   order.OrderRef,
		PaymentRef: "pay_456",
		Signature:  sign(order.OrderRef, "pay_forged"),
	})
	assert.ErrorIs(t, err, ErrInvalidSignature)

	// No credits, and the transaction is now terminally rejected.
	assert.Equal(t, 5, userBalance(t, factory, user.Id))
	txn := findTransaction(t, factory, order.TransactionId)
	assert.Equal(t, entity.TransactionStatusRejected, txn.Status)

	// A later valid-looking signature cannot revive a rejected transaction.
	_, err = svc.VerifyPayment(context.Background(), &dto.VerifyPaymentRequest{
		OrderRef:   order.OrderRef,
		PaymentRef: "pay_456",
		Signature:  sign(order.OrderRef, "pay_456"),
	})
	assert.ErrorIs(t, err, ErrUnknownTransaction)
	assert.Equal(t, 5, userBalance(t, factory, user.Id))
}

func TestVerifyPaymentUnknownOrderRef(t *testing.T) {
	factory, _, svc := newPaymentFixture(t)
	user := createTestUser(t, factory, 5)

	_, err := svc.VerifyPayment(context.Background(), &dto.VerifyPaymentRequest{
		OrderRef:   "order_never_issued",
		PaymentRef: "pay_789",
		Signature:  sign("order_never_issued", "pay_789"),
	})
	assert.ErrorIs(t, err, ErrUnknownTransaction)
	assert.Equal(t, 5, userBalance(t, factory, user.Id))
}

// Two concurrent deliveries of the same valid callback against a pending
// transaction: the conditional pending->verified flip decides the winner, so
// exactly one call grants and the other acknowledges without mutating.
func TestConcurrentVerifyDuplicateDelivery(t *testing.T) {
	factory, _, svc := newPaymentFixture(t)
	user := createTestUser(t, factory, 5)

	order, err := svc.CreateOrder(context.Background(), user.Id, &dto.CreateOrderRequest{PlanId: "Basic"})
	require.NoError(t, err)

	req := &dto.VerifyPaymentRequest{
		OrderRef:   order.OrderRef,
		PaymentRef: "pay_dup",
		Signature:  sign(order.OrderRef, "pay_dup"),
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.VerifyPayment(context.Background(), req)
		}(i)
	}
	wg.Wait()

	grants, acks := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			grants++
		case errors.Is(err, ErrAlreadyProcessed):
			acks++
		default:
			t.Fatalf("unexpected verify error: %v", err)
		}
	}
	assert.Equal(t, 1, grants)
	assert.Equal(t, 1, acks)
	assert.Equal(t, 105, userBalance(t, factory, user.Id))

	txn := findTransaction(t, factory, order.TransactionId)
	assert.Equal(t, entity.TransactionStatusVerified, txn.Status)
}

// failingTxnLookupFactory makes every transaction lookup fail, standing in
// for a storage outage during callback handling.
type failingTxnLookupFactory struct {
	inner unitofwork.RepositoryFactory
}

type failingTxnLookupUow struct {
	unitofwork.UnitOfWork
}

type failingTxnRepo struct {
	contract.TransactionRepository
}

func (f failingTxnLookupFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return failingTxnLookupUow{f.inner.NewUnitOfWork(ctx)}
}

func (u failingTxnLookupUow) TransactionRepository() contract.TransactionRepository {
	return failingTxnRepo{u.UnitOfWork.TransactionRepository()}
}

func (r failingTxnRepo) FindOne(context.Context, ...specification.Specification) (*entity.Transaction, error) {
	return nil, errors.New("connection reset")
}

func TestVerifyPaymentBadSignatureSurvivesLookupFailure(t *testing.T) {
	factory := newTestFactory(t)
	svc := NewPaymentService(failingTxnLookupFactory{factory}, &fakeGateway{}, testKeySecret, "INR", nil, nopLogger{})

	_, err := svc.VerifyPayment(context.Background(), &dto.VerifyPaymentRequest{
		OrderRef:   "order_abc",
		PaymentRef: "pay_abc",
		Signature:  sign("order_abc", "pay_forged"),
	})
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestListTransactions(t *testing.T) {
	factory, _, svc := newPaymentFixture(t)
	user := createTestUser(t, factory, 5)
	other := createTestUser(t, factory, 5)

	first, err := svc.CreateOrder(context.Background(), user.Id, &dto.CreateOrderRequest{PlanId: "Basic"})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := svc.CreateOrder(context.Background(), user.Id, &dto.CreateOrderRequest{PlanId: "Advanced"})
	require.NoError(t, err)
	_, err = svc.CreateOrder(context.Background(), other.Id, &dto.CreateOrderRequest{PlanId: "Basic"})
	require.NoError(t, err)

	_, err = svc.VerifyPayment(context.Background(), &dto.VerifyPaymentRequest{
		OrderRef:   first.OrderRef,
		PaymentRef: "pay_hist",
		Signature:  sign(first.OrderRef, "pay_hist"),
	})
	require.NoError(t, err)

	// Newest first, scoped to the requesting user.
	txns, err := svc.ListTransactions(context.Background(), user.Id, &dto.ListTransactionsRequest{})
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, second.TransactionId, txns[0].Id)
	assert.Equal(t, first.TransactionId, txns[1].Id)

	verified, err := svc.ListTransactions(context.Background(), user.Id, &dto.ListTransactionsRequest{Status: "verified"})
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, first.TransactionId, verified[0].Id)

	page, err := svc.ListTransactions(context.Background(), user.Id, &dto.ListTransactionsRequest{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.TransactionId, page[0].Id)
}

// Ledger conservation: final balance = initial - debits + sum of credits over
// verified transactions.
func TestLedgerConservation(t *testing.T) {
	factory, _, svc := newPaymentFixture(t)
	user := createTestUser(t, factory, 5)
	credits := NewCreditService(factory)

	for i := 0; i < 3; i++ {
		_, err := credits.Debit(context.Background(), user.Id)
		require.NoError(t, err)
	}

	order, err := svc.CreateOrder(context.Background(), user.Id, &dto.CreateOrderRequest{PlanId: "Basic"})
	require.NoError(t, err)
	_, err = svc.VerifyPayment(context.Background(), &dto.VerifyPaymentRequest{
		OrderRef:   order.OrderRef,
		PaymentRef: "pay_c1",
		Signature:  sign(order.OrderRef, "pay_c1"),
	})
	require.NoError(t, err)

	// A second order left unverified contributes nothing.
	_, err = svc.CreateOrder(context.Background(), user.Id, &dto.CreateOrderRequest{PlanId: "Advanced"})
	require.NoError(t, err)

	assert.Equal(t, 5-3+100, userBalance(t, factory, user.Id))
}
