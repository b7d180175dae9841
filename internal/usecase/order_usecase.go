package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/validator"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	tx       repo.TransactionManager
	numbers  *OrderNumberGenerator
	clock    Clock
	notifier OrderNotifier
}

func NewOrderUsecase(tx repo.TransactionManager, numbers *OrderNumberGenerator, clock Clock, notifier OrderNotifier) *OrderUsecase {
	return &OrderUsecase{tx: tx, numbers: numbers, clock: clock, notifier: notifier}
}

type PlaceOrderItemInput struct {
	ProductID int64
	Quantity  int64
}

type PlaceOrderInput struct {
	Items           []PlaceOrderItemInput
	ShippingAddress model.ShippingAddress
	PaymentMethod   string
	Notes           string
}

func validatePlaceOrder(in PlaceOrderInput) (model.PaymentMethod, error) {
	var v validator.Errors

	if len(in.Items) == 0 {
		v.Add("items", "must contain at least one item")
	}
	for i, it := range in.Items {
		if it.ProductID <= 0 {
			v.Addf(fmt.Sprintf("items[%d].productId", i), "is required")
		}
		if it.Quantity < 1 {
			v.Addf(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
	}

	a := in.ShippingAddress
	v.Required("shippingAddress.firstName", a.FirstName)
	v.Required("shippingAddress.lastName", a.LastName)
	v.Required("shippingAddress.address", a.Address)
	v.Required("shippingAddress.city", a.City)
	v.Required("shippingAddress.postalCode", a.PostalCode)
	v.Phone("shippingAddress.phone", a.Phone)

	method, ok := model.ParsePaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if !ok {
		v.Add("paymentMethod", "must be one of cash_on_delivery, card, bank_transfer")
	}
	v.MaxLen("notes", in.Notes, 500)

	if !v.OK() {
		return "", validationError(&v)
	}
	return method, nil
}

func trimAddress(a model.ShippingAddress) model.ShippingAddress {
	return model.ShippingAddress{
		FirstName:  strings.TrimSpace(a.FirstName),
		LastName:   strings.TrimSpace(a.LastName),
		Address:    strings.TrimSpace(a.Address),
		City:       strings.TrimSpace(a.City),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Phone:      strings.TrimSpace(a.Phone),
	}
}

// 注文確定。
// 在庫チェック・在庫減算・注文作成・明細作成・カートクリアを1つのTxで行い、
// どこかの明細で失敗したら全部rollbackする。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	method, err := validatePlaceOrder(in)
	if err != nil {
		return OrderOutput{}, err
	}

	var out OrderOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		lines := make([]model.OrderItem, 0, len(in.Items))
		total := decimal.Zero

		// 送られてきた順に処理し、最初に失敗した明細で止める
		for _, it := range in.Items {
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if err != nil {
				return wrapRepoErr(err, fmt.Sprintf("product %d not found", it.ProductID))
			}
			if p.Stock < it.Quantity {
				return insufficientStock(p.Name)
			}

			// 注文時点の価格を確定
			price := p.EffectivePrice()
			lineTotal := price.Mul(decimal.NewFromInt(it.Quantity))
			total = total.Add(lineTotal)

			//在庫減算（同時注文で足りなくなったらfalse）
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, p.ID, it.Quantity)
			if err != nil {
				return errDB(err)
			}
			if !ok {
				return insufficientStock(p.Name)
			}

			lines = append(lines, model.OrderItem{
				ProductID:  p.ID,
				Quantity:   it.Quantity,
				Price:      price,
				TotalPrice: lineTotal,
			})
		}

		// 注文作成
		order, err := r.Orders().Create(ctx, model.Order{
			UserID:          userID,
			OrderNumber:     u.numbers.Next(),
			TotalAmount:     total,
			ShippingAddress: trimAddress(in.ShippingAddress),
			PaymentMethod:   method,
			PaymentStatus:   model.PaymentStatusPending,
			OrderStatus:     model.OrderStatusPending,
			Notes:           strings.TrimSpace(in.Notes),
		})
		if err != nil {
			return errDB(err)
		}

		//注文IDを明細に入れて保存
		if _, err := r.OrderItems().CreateBulk(ctx, order.ID, lines); err != nil {
			return errDB(err)
		}

		if err := r.Carts().ClearByUserID(ctx, userID); err != nil {
			return errDB(err)
		}

		outs, err := assembleOrders(ctx, r, []model.Order{order})
		if err != nil {
			return errDB(err)
		}
		out = outs[0]
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	// commit後に通知（失敗しても注文は成功のまま）
	if out.User != nil && out.User.Email != "" {
		u.notifier.OrderPlaced(ctx, OrderPlacedEvent{
			OrderID:     out.ID,
			OrderNumber: out.OrderNumber,
			UserID:      out.UserID,
			Email:       out.User.Email,
			TotalAmount: out.TotalAmount,
			ItemCount:   len(out.Items),
			PlacedAt:    u.clock.Now(),
		})
	}

	return out, nil
}

// 本人か管理者だけ見られる。他人の注文は存在しない扱い
func (u *OrderUsecase) GetOrder(ctx context.Context, viewerID int64, isAdmin bool, orderID int64) (OrderOutput, error) {
	if viewerID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return wrapRepoErr(err, "order not found")
		}
		if !isAdmin && o.UserID != viewerID {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}

		outs, err := assembleOrders(ctx, r, []model.Order{o})
		if err != nil {
			return errDB(err)
		}
		out = outs[0]
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 自分の注文一覧
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, in ListOrdersInput) (ListOrdersOutput, error) {
	if userID <= 0 {
		return ListOrdersOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	in.UserID = &userID
	in.Search = ""
	in.PaymentStatus = ""
	return listOrders(ctx, u.tx, in)
}
