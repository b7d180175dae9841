package usecase

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
// 変更系は1つのTxで明細を書き換えてから合計を再計算します。
type CartUsecase struct {
	tx repo.TransactionManager
}

func NewCartUsecase(tx repo.TransactionManager) *CartUsecase {
	return &CartUsecase{tx: tx}
}

type CartProductOutput struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice decimal.NullDecimal `json:"discountPrice"`
	Images        []string            `json:"images"`
	Stock         int64               `json:"stock"`
}

// price は追加時点の価格
type CartItemOutput struct {
	ID        int64              `json:"id"`
	ProductID int64              `json:"productId"`
	Product   *CartProductOutput `json:"product"`
	Quantity  int64              `json:"quantity"`
	Price     decimal.Decimal    `json:"price"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
}

type CartOutput struct {
	ID          int64            `json:"id"`
	UserID      int64            `json:"userId"`
	Items       []CartItemOutput `json:"items"`
	TotalAmount decimal.Decimal  `json:"totalAmount"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

// GetCart はカート取得（無ければ作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return errDB(err)
		}
		out, err = buildCartOutput(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// AddToCart はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "productId is required")
	}
	if in.Quantity < 1 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be at least 1")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, in.ProductID)
		if err != nil {
			return wrapRepoErr(err, "product not found")
		}
		if p.Stock < in.Quantity {
			return insufficientStock(p.Name)
		}

		cart, err := r.Carts().GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return errDB(err)
		}

		item, err := r.CartItems().FindByCartAndProduct(ctx, cart.ID, in.ProductID)
		switch {
		case err == nil:
			// 既存ありだったら数量を増やす（価格は最初に入れたときのまま）
			newQty := item.Quantity + in.Quantity
			if p.Stock < newQty {
				return insufficientStock(p.Name)
			}
			if err := r.CartItems().UpdateQuantity(ctx, item.ID, newQty); err != nil {
				return errDB(err)
			}
		case isNotFound(err):
			if err := r.CartItems().CreateItem(ctx, model.CartItem{
				CartID:    cart.ID,
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				Price:     p.EffectivePrice(),
			}); err != nil {
				return errDB(err)
			}
		default:
			return errDB(err)
		}

		out, err = recalcCart(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 数量変更（在庫チェック）。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID int64, productID int64, in UpdateCartItemInput) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if in.Quantity < 1 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be at least 1")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if err != nil {
			return wrapRepoErr(err, "cart not found")
		}

		item, err := r.CartItems().FindByCartAndProduct(ctx, cart.ID, productID)
		if err != nil {
			return wrapRepoErr(err, "item not found in cart")
		}

		p, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return wrapRepoErr(err, "product not found")
		}
		if p.Stock < in.Quantity {
			return insufficientStock(p.Name)
		}

		if err := r.CartItems().UpdateQuantity(ctx, item.ID, in.Quantity); err != nil {
			return wrapRepoErr(err, "item not found in cart")
		}

		out, err = recalcCart(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 明細削除（入っていなくてもエラーにしない）
func (u *CartUsecase) RemoveFromCart(ctx context.Context, userID int64, productID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if err != nil {
			return wrapRepoErr(err, "cart not found")
		}

		if err := r.CartItems().DeleteByCartAndProduct(ctx, cart.ID, productID); err != nil {
			return errDB(err)
		}

		out, err = recalcCart(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 全明細削除
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out CartOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if err != nil {
			return wrapRepoErr(err, "cart not found")
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return errDB(err)
		}

		out = CartOutput{
			ID:          cart.ID,
			UserID:      cart.UserID,
			Items:       []CartItemOutput{},
			TotalAmount: decimal.Zero,
			UpdatedAt:   cart.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// 合計 = Σ price×quantity を保存し直す
func recalcCart(ctx context.Context, r repo.TxRepos, cart model.Cart) (CartOutput, error) {
	items, err := r.CartItems().ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartOutput{}, errDB(err)
	}

	cart.TotalAmount = model.SumCartItems(items)
	if err := r.Carts().UpdateTotal(ctx, cart.ID, cart.TotalAmount); err != nil {
		return CartOutput{}, errDB(err)
	}

	return toCartOutput(ctx, r, cart, items)
}

func buildCartOutput(ctx context.Context, r repo.TxRepos, cart model.Cart) (CartOutput, error) {
	items, err := r.CartItems().ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartOutput{}, errDB(err)
	}
	return toCartOutput(ctx, r, cart, items)
}

// 商品が消えている明細は表示から外す
func toCartOutput(ctx context.Context, r repo.TxRepos, cart model.Cart, items []model.CartItem) (CartOutput, error) {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := r.Products().FindByIDs(ctx, ids)
	if err != nil {
		return CartOutput{}, errDB(err)
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	outItems := make([]CartItemOutput, 0, len(items))
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		images := []string(p.Images)
		if images == nil {
			images = []string{}
		}
		outItems = append(outItems, CartItemOutput{
			ID:        it.ID,
			ProductID: it.ProductID,
			Product: &CartProductOutput{
				ID:            p.ID,
				Name:          p.Name,
				Price:         p.Price,
				DiscountPrice: p.DiscountPrice,
				Images:        images,
				Stock:         p.Stock,
			},
			Quantity: it.Quantity,
			Price:    it.Price,
			Subtotal: it.Subtotal(),
		})
	}

	return CartOutput{
		ID:          cart.ID,
		UserID:      cart.UserID,
		Items:       outItems,
		TotalAmount: cart.TotalAmount,
		UpdatedAt:   cart.UpdatedAt,
	}, nil
}
