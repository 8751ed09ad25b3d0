package implementation

import (
	"context"
	"errors"

	"ai-imagegen-be/internal/entity"
	"ai-imagegen-be/internal/mapper"
	"ai-imagegen-be/internal/model"
	"ai-imagegen-be/internal/repository/contract"
	"ai-imagegen-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TransactionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TransactionMapper
}

func NewTransactionRepository(db *gorm.DB) contract.TransactionRepository {
	return &TransactionRepositoryImpl{
		db:     db,
		mapper: mapper.NewTransactionMapper(),
	}
}

func (r *TransactionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TransactionRepositoryImpl) Create(ctx context.Context, txn *entity.Transaction) error {
	modelTxn := r.mapper.ToModel(txn)
	if err := r.db.WithContext(ctx).Create(modelTxn).Error; err != nil {
		return err
	}
	*txn = *r.mapper.ToEntity(modelTxn)
	return nil
}

func (r *TransactionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Transaction, error) {
	var modelTxn model.Transaction
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&modelTxn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&modelTxn), nil
}

func (r *TransactionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transaction, error) {
	var modelTxns []*model.Transaction
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&modelTxns).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(modelTxns), nil
}

func (r *TransactionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Transaction{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TransactionRepositoryImpl) SetProviderOrderRef(ctx context.Context, id uuid.UUID, orderRef string) error {
	return r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ?", id).
		Update("provider_order_ref", orderRef).Error
}

// MarkVerified succeeds at most once per transaction: the status predicate is
// part of the UPDATE, so a provider retry racing the first delivery observes
// zero affected rows.
func (r *TransactionRepositoryImpl) MarkVerified(ctx context.Context, id uuid.UUID, paymentRef string, payload []byte) (int64, error) {
	updates := map[string]interface{}{
		"status":               string(entity.TransactionStatusVerified),
		"provider_payment_ref": paymentRef,
	}
	if len(payload) > 0 {
		updates["provider_payload"] = datatypes.JSON(payload)
	}
	res := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, string(entity.TransactionStatusPending)).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *TransactionRepositoryImpl) MarkRejected(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, string(entity.TransactionStatusPending)).
		Update("status", string(entity.TransactionStatusRejected))
	return res.RowsAffected, res.Error
}
