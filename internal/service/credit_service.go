package service

import (
	"context"

	"ai-imagegen-be/internal/repository/specification"
	"ai-imagegen-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// ICreditService owns every balance mutation outside of payment verification.
// Mutations go through atomic conditional updates; the service never caches a
// balance between requests.
type ICreditService interface {
	// Debit consumes one credit and returns the remaining balance.
	// Fails with ErrInsufficientBalance or ErrAccountNotFound without
	// mutating anything.
	Debit(ctx context.Context, userId uuid.UUID) (int, error)

	// Refund compensates a debit whose paid-for work never happened
	// (generation provider failure after a successful debit).
	Refund(ctx context.Context, userId uuid.UUID) error

	// Balance reads the current balance.
	Balance(ctx context.Context, userId uuid.UUID) (int, error)
}

type creditService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewCreditService(uowFactory unitofwork.RepositoryFactory) ICreditService {
	return &creditService{uowFactory: uowFactory}
}

func (s *creditService) Debit(ctx context.Context, userId uuid.UUID) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.UserRepository()

	affected, err := repo.DebitCredit(ctx, userId)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		// Distinguish a missing account from an empty one.
		user, findErr := repo.FindOne(ctx, specification.ByID{ID: userId})
		if findErr != nil {
			return 0, findErr
		}
		if user == nil {
			return 0, ErrAccountNotFound
		}
		return user.CreditBalance, ErrInsufficientBalance
	}

	user, err := repo.FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return 0, err
	}
	if user == nil {
		// Row vanished between the decrement and the read.
		return 0, ErrAccountNotFound
	}
	return user.CreditBalance, nil
}

func (s *creditService) Refund(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	affected, err := uow.UserRepository().AddCredits(ctx, userId, 1)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *creditService) Balance(ctx context.Context, userId uuid.UUID) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrAccountNotFound
	}
	return user.CreditBalance, nil
}
