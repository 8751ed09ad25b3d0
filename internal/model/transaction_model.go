package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Transaction struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId             uuid.UUID      `gorm:"type:uuid;not null;index"`
	PlanId             string         `gorm:"type:varchar(50);not null"`
	Credits            int            `gorm:"not null"`
	AmountSubunits     int64          `gorm:"not null"`
	Currency           string         `gorm:"type:varchar(10);not null"`
	Status             string         `gorm:"type:varchar(20);not null;default:'pending';index"`
	ProviderOrderRef   *string        `gorm:"type:varchar(255);uniqueIndex"`
	ProviderPaymentRef *string        `gorm:"type:varchar(255)"`
	ProviderPayload    datatypes.JSON `gorm:""`
	CreatedAt          time.Time      `gorm:"autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.Id == uuid.Nil {
		t.Id = uuid.New()
	}
	return nil
}
