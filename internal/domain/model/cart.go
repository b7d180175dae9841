package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 1ユーザーにつき1つ
// TotalAmountは常に明細の price×quantity の合計
type Cart struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64           `gorm:"not null;uniqueIndex" json:"userId"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"totalAmount"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
