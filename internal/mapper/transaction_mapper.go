package mapper

import (
	"ai-imagegen-be/internal/entity"
	"ai-imagegen-be/internal/model"

	"gorm.io/datatypes"
)

type TransactionMapper struct{}

func NewTransactionMapper() *TransactionMapper {
	return &TransactionMapper{}
}

func (m *TransactionMapper) ToEntity(t *model.Transaction) *entity.Transaction {
	if t == nil {
		return nil
	}
	return &entity.Transaction{
		Id:                 t.Id,
		UserId:             t.UserId,
		PlanId:             t.PlanId,
		Credits:            t.Credits,
		AmountSubunits:     t.AmountSubunits,
		Currency:           t.Currency,
		Status:             entity.TransactionStatus(t.Status),
		ProviderOrderRef:   t.ProviderOrderRef,
		ProviderPaymentRef: t.ProviderPaymentRef,
		ProviderPayload:    []byte(t.ProviderPayload),
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func (m *TransactionMapper) ToModel(t *entity.Transaction) *model.Transaction {
	if t == nil {
		return nil
	}
	return &model.Transaction{
		Id:                 t.Id,
		UserId:             t.UserId,
		PlanId:             t.PlanId,
		Credits:            t.Credits,
		AmountSubunits:     t.AmountSubunits,
		Currency:           t.Currency,
		Status:             string(t.Status),
		ProviderOrderRef:   t.ProviderOrderRef,
		ProviderPaymentRef: t.ProviderPaymentRef,
		ProviderPayload:    datatypes.JSON(t.ProviderPayload),
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func (m *TransactionMapper) ToEntities(models []*model.Transaction) []*entity.Transaction {
	entities := make([]*entity.Transaction, 0, len(models))
	for _, mt := range models {
		entities = append(entities, m.ToEntity(mt))
	}
	return entities
}
