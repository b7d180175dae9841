package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Priceは注文時点の単価。商品価格が後で変わっても変えない。
type OrderItem struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64           `gorm:"not null;index" json:"orderId"`
	ProductID  int64           `gorm:"not null;index" json:"productId"`
	Quantity   int64           `gorm:"not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalPrice"`
	CreatedAt  time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
}
