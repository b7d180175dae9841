package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OrderPlacedEvent struct {
	OrderID     int64           `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	UserID      int64           `json:"userId"`
	Email       string          `json:"email"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemCount   int             `json:"itemCount"`
	PlacedAt    time.Time       `json:"placedAt"`
}

type OrderStatusChangedEvent struct {
	OrderID             int64     `json:"orderId"`
	OrderNumber         string    `json:"orderNumber"`
	UserID              int64     `json:"userId"`
	Email               string    `json:"email"`
	BeforeOrderStatus   string    `json:"beforeOrderStatus"`
	AfterOrderStatus    string    `json:"afterOrderStatus"`
	BeforePaymentStatus string    `json:"beforePaymentStatus"`
	AfterPaymentStatus  string    `json:"afterPaymentStatus"`
	ChangedBy           int64     `json:"changedBy"`
	ChangedAt           time.Time `json:"changedAt"`
}

// 注文まわりの通知。失敗しても注文処理は失敗させない
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, ev OrderPlacedEvent)
	OrderStatusChanged(ctx context.Context, ev OrderStatusChangedEvent)
}

type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// 問い合わせは送信できたかを返す
type ContactNotifier interface {
	ContactReceived(ctx context.Context, msg ContactMessage) error
}
