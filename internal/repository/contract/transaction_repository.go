package contract

import (
	"context"

	"ai-imagegen-be/internal/entity"
	"ai-imagegen-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *entity.Transaction) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Transaction, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transaction, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SetProviderOrderRef stores the reference returned by the payment
	// provider on a freshly created transaction.
	SetProviderOrderRef(ctx context.Context, id uuid.UUID, orderRef string) error

	// MarkVerified flips status pending -> verified, storing the payment ref
	// and the raw callback payload. The WHERE clause includes status =
	// 'pending', so the returned rows-affected count is the gate deciding
	// whether the credit grant may proceed.
	MarkVerified(ctx context.Context, id uuid.UUID, paymentRef string, payload []byte) (int64, error)

	// MarkRejected flips status pending -> rejected. Terminal states are
	// never overwritten.
	MarkRejected(ctx context.Context, id uuid.UUID) (int64, error)
}
