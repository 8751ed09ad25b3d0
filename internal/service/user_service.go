package service

import (
	"context"

	"ai-imagegen-be/internal/dto"
	"ai-imagegen-be/internal/repository/specification"
	"ai-imagegen-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	GetCredits(ctx context.Context, userId uuid.UUID) (*dto.CreditsResponse, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{uowFactory: uowFactory}
}

func (s *userService) GetCredits(ctx context.Context, userId uuid.UUID) (*dto.CreditsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}

	return &dto.CreditsResponse{
		Credits: user.CreditBalance,
		User:    dto.UserDTO{Id: user.Id, Email: user.Email, FullName: user.FullName},
	}, nil
}
