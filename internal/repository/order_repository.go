package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 注文一覧の条件。ソート列は呼び出し側で検証済みの列名。
type OrderListFilter struct {
	Search        string
	OrderStatus   string
	PaymentStatus string
	UserID        *int64
	SortColumn    string
	Desc          bool
	Offset        int
	Limit         int
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	Create(ctx context.Context, order model.Order) (model.Order, error)
	UpdateStatuses(ctx context.Context, orderID int64, orderStatus model.OrderStatus, paymentStatus model.PaymentStatus) error
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
}
