package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 管理者用のユーザー一覧条件
type UserListQuery struct {
	Page   int
	Limit  int
	Search string
	Role   string
	Status string
	Sort   string
	Desc   bool
}

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（email重複はErrDuplicate）
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByIDs(ctx context.Context, userIDs []int64) ([]model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	List(ctx context.Context, q UserListQuery) ([]model.User, int64, error)
}
