package contract

import (
	"context"

	"ai-imagegen-be/internal/entity"
	"ai-imagegen-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Balance mutations. Both are single-statement conditional updates against
	// current storage; callers must never read a balance, mutate it in memory
	// and write it back.

	// DebitCredit decrements the balance by one, only while it is positive.
	// Returns the number of rows affected (0 means no debit happened).
	DebitCredit(ctx context.Context, userId uuid.UUID) (int64, error)

	// AddCredits increments the balance by the given amount.
	// Returns the number of rows affected (0 means the user does not exist).
	AddCredits(ctx context.Context, userId uuid.UUID, credits int) (int64, error)
}
