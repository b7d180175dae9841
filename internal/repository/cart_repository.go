package repository

import (
	"context"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

type CartRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// カート行をFOR UPDATEで取る。tx内で使う
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	UpdateTotal(ctx context.Context, cartID int64, total decimal.Decimal) error
	// 明細を全削除して合計を0にする
	Clear(ctx context.Context, cartID int64) error
	// カートが無ければ何もしない
	ClearByUserID(ctx context.Context, userID int64) error
}
