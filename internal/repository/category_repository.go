package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CategoryRepository interface {
	// statusが空なら全件。名前順。
	List(ctx context.Context, status string) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	// 大文字小文字を区別せずに名前で探す。excludeIDは除外（0なら除外なし）
	FindByName(ctx context.Context, name string, excludeID int64) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
}
