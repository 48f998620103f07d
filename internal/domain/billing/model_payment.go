package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is one payment attempt. PreferenceID is assigned by the provider
// and never changes after the row is created.
type Payment struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       string          `gorm:"column:user_id;size:100;not null;index:idx_pagamentos_user_created,priority:1" json:"userId"`
	Amount       decimal.Decimal `gorm:"column:valor;type:numeric(12,2);not null" json:"valor"`
	Status       Status          `gorm:"column:status;size:32;not null;default:'pending'" json:"status"`
	PreferenceID string          `gorm:"column:preference_id;size:100;not null;uniqueIndex:idx_pagamentos_preference_id" json:"preferenceId"`
	CreatedAt    time.Time       `gorm:"index:idx_pagamentos_user_created,priority:2" json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (Payment) TableName() string {
	return "pagamentos"
}
