package usecase

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// ソートキー -> 列名
var orderSortColumns = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"totalAmount":   "total_amount",
	"orderNumber":   "order_number",
	"orderStatus":   "order_status",
	"paymentStatus": "payment_status",
}

type ListOrdersInput struct {
	Page          int
	Limit         int
	Search        string
	OrderStatus   string
	PaymentStatus string
	UserID        *int64
	Sort          string
	Order         string
}

type ListOrdersOutput struct {
	Orders     []OrderOutput `json:"orders"`
	Pagination Pagination    `json:"pagination"`
}

func (in ListOrdersInput) toFilter() (repo.OrderListFilter, error) {
	// page/limitの最低限チェック
	if in.Page < 1 {
		return repo.OrderListFilter{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return repo.OrderListFilter{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	sort := in.Sort
	if sort == "" {
		sort = "createdAt"
	}
	column, ok := orderSortColumns[sort]
	if !ok {
		return repo.OrderListFilter{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	desc := true
	switch strings.ToLower(in.Order) {
	case "", "desc":
	case "asc":
		desc = false
	default:
		return repo.OrderListFilter{}, NewHTTPError(http.StatusBadRequest, "invalid order")
	}

	f := repo.OrderListFilter{
		Search:     strings.TrimSpace(in.Search),
		UserID:     in.UserID,
		SortColumn: column,
		Desc:       desc,
		Offset:     (in.Page - 1) * in.Limit,
		Limit:      in.Limit,
	}

	if in.OrderStatus != "" {
		st, ok := model.ParseOrderStatus(in.OrderStatus)
		if !ok {
			return repo.OrderListFilter{}, NewHTTPError(http.StatusBadRequest, "invalid orderStatus")
		}
		f.OrderStatus = string(st)
	}
	if in.PaymentStatus != "" {
		st, ok := model.ParsePaymentStatus(in.PaymentStatus)
		if !ok {
			return repo.OrderListFilter{}, NewHTTPError(http.StatusBadRequest, "invalid paymentStatus")
		}
		f.PaymentStatus = string(st)
	}
	return f, nil
}

func listOrders(ctx context.Context, tx repo.TransactionManager, in ListOrdersInput) (ListOrdersOutput, error) {
	f, err := in.toFilter()
	if err != nil {
		return ListOrdersOutput{}, err
	}

	var out ListOrdersOutput
	err = tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().List(ctx, f)
		if err != nil {
			return errDB(err)
		}
		outs, err := assembleOrders(ctx, r, orders)
		if err != nil {
			return errDB(err)
		}
		out = ListOrdersOutput{
			Orders:     outs,
			Pagination: newPagination(in.Page, in.Limit, total),
		}
		return nil
	})
	if err != nil {
		return ListOrdersOutput{}, err
	}
	return out, nil
}
