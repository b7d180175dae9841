package usecase

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderUserOutput struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// 表示用の商品サマリ（現在の商品情報）
type OrderProductOutput struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice decimal.NullDecimal `json:"discountPrice"`
	Images        []string            `json:"images"`
	Brand         string              `json:"brand"`
}

type OrderItemOutput struct {
	ID         int64               `json:"id"`
	ProductID  int64               `json:"productId"`
	Product    *OrderProductOutput `json:"product"`
	Quantity   int64               `json:"quantity"`
	Price      decimal.Decimal     `json:"price"`
	TotalPrice decimal.Decimal     `json:"totalPrice"`
}

type OrderOutput struct {
	ID              int64                 `json:"id"`
	OrderNumber     string                `json:"orderNumber"`
	UserID          int64                 `json:"userId"`
	User            *OrderUserOutput      `json:"user"`
	Items           []OrderItemOutput     `json:"items"`
	TotalAmount     decimal.Decimal       `json:"totalAmount"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   model.PaymentMethod   `json:"paymentMethod"`
	PaymentStatus   model.PaymentStatus   `json:"paymentStatus"`
	OrderStatus     model.OrderStatus     `json:"orderStatus"`
	Notes           string                `json:"notes,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

func newPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: limit,
	}
}

// 注文の表示組み立てに必要な読み取り
type orderReaders interface {
	Users() repo.UserRepository
	Products() repo.ProductRepository
	OrderItems() repo.OrderItemRepository
}

// ユーザー・明細・商品をまとめて引いて埋める。
// 消えた商品は明細だけ残してproductはnull
func assembleOrders(ctx context.Context, r orderReaders, orders []model.Order) ([]OrderOutput, error) {
	if len(orders) == 0 {
		return []OrderOutput{}, nil
	}

	orderIDs := make([]int64, 0, len(orders))
	userIDs := make([]int64, 0, len(orders))
	seenUser := map[int64]bool{}
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
		if !seenUser[o.UserID] {
			seenUser[o.UserID] = true
			userIDs = append(userIDs, o.UserID)
		}
	}

	users, err := r.Users().FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	userByID := make(map[int64]model.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	items, err := r.OrderItems().ListByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	itemsByOrder := map[int64][]model.OrderItem{}
	productIDs := []int64{}
	seenProduct := map[int64]bool{}
	for _, it := range items {
		itemsByOrder[it.OrderID] = append(itemsByOrder[it.OrderID], it)
		if !seenProduct[it.ProductID] {
			seenProduct[it.ProductID] = true
			productIDs = append(productIDs, it.ProductID)
		}
	}

	products, err := r.Products().FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productByID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		out := toOrderOutput(o, itemsByOrder[o.ID], productByID)
		if u, ok := userByID[o.UserID]; ok {
			out.User = toOrderUserOutput(u)
		}
		outs = append(outs, out)
	}
	return outs, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem, products map[int64]model.Product) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		oi := OrderItemOutput{
			ID:         it.ID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			Price:      it.Price,
			TotalPrice: it.TotalPrice,
		}
		if p, ok := products[it.ProductID]; ok {
			oi.Product = toOrderProductOutput(p)
		}
		outItems = append(outItems, oi)
	}

	return OrderOutput{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Items:           outItems,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		OrderStatus:     o.OrderStatus,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderUserOutput(u model.User) *OrderUserOutput {
	return &OrderUserOutput{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
	}
}

func toOrderProductOutput(p model.Product) *OrderProductOutput {
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	return &OrderProductOutput{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Images:        images,
		Brand:         p.Brand,
	}
}
