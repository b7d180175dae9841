package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/validator"
)

type AdminOrderUsecase struct {
	tx       repo.TransactionManager
	clock    Clock
	notifier OrderNotifier
}

func NewAdminOrderUsecase(tx repo.TransactionManager, clock Clock, notifier OrderNotifier) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, clock: clock, notifier: notifier}
}

// 省略（nilか空文字）した項目は変えない
type AdminUpdateOrderStatusInput struct {
	OrderStatus   *string
	PaymentStatus *string
}

type orderStatusSnapshot struct {
	OrderStatus   model.OrderStatus   `json:"orderStatus"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
}

// 注文一覧（検索・絞り込み・ソート・ページング）
func (u *AdminOrderUsecase) List(ctx context.Context, in ListOrdersInput) (ListOrdersOutput, error) {
	return listOrders(ctx, u.tx, in)
}

// ステータス更新。値の妥当性だけ見て、遷移の制限はしない
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) (OrderOutput, error) {
	if actorAdminUserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var v validator.Errors
	var newOrderStatus *model.OrderStatus
	var newPaymentStatus *model.PaymentStatus

	if in.OrderStatus != nil && strings.TrimSpace(*in.OrderStatus) != "" {
		st, ok := model.ParseOrderStatus(strings.TrimSpace(*in.OrderStatus))
		if !ok {
			v.Add("orderStatus", "must be one of pending, confirmed, processing, shipped, delivered, cancelled")
		}
		newOrderStatus = &st
	}
	if in.PaymentStatus != nil && strings.TrimSpace(*in.PaymentStatus) != "" {
		st, ok := model.ParsePaymentStatus(strings.TrimSpace(*in.PaymentStatus))
		if !ok {
			v.Add("paymentStatus", "must be one of pending, paid, failed")
		}
		newPaymentStatus = &st
	}
	if !v.OK() {
		return OrderOutput{}, validationError(&v)
	}

	var out OrderOutput
	var changed *OrderStatusChangedEvent

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return wrapRepoErr(err, "order not found")
		}

		before := orderStatusSnapshot{OrderStatus: o.OrderStatus, PaymentStatus: o.PaymentStatus}
		after := before
		if newOrderStatus != nil {
			after.OrderStatus = *newOrderStatus
		}
		if newPaymentStatus != nil {
			after.PaymentStatus = *newPaymentStatus
		}

		// すでに同じなら何も書かない
		if after != before {
			if err := r.Orders().UpdateStatuses(ctx, orderID, after.OrderStatus, after.PaymentStatus); err != nil {
				return wrapRepoErr(err, "order not found")
			}

			beforeJSON, _ := json.Marshal(before)
			afterJSON, _ := json.Marshal(after)
			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorUserID:  actorAdminUserID,
				Action:       model.AuditActionUpdateOrderStatus,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   orderID,
				BeforeJSON:   string(beforeJSON),
				AfterJSON:    string(afterJSON),
				CreatedAt:    u.clock.Now(),
			}); err != nil {
				return errDB(err)
			}

			o.OrderStatus = after.OrderStatus
			o.PaymentStatus = after.PaymentStatus
			o.UpdatedAt = u.clock.Now()
			changed = &OrderStatusChangedEvent{
				OrderID:             o.ID,
				OrderNumber:         o.OrderNumber,
				UserID:              o.UserID,
				BeforeOrderStatus:   string(before.OrderStatus),
				AfterOrderStatus:    string(after.OrderStatus),
				BeforePaymentStatus: string(before.PaymentStatus),
				AfterPaymentStatus:  string(after.PaymentStatus),
				ChangedBy:           actorAdminUserID,
				ChangedAt:           o.UpdatedAt,
			}
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

	if changed != nil {
		if out.User != nil {
			changed.Email = out.User.Email
		}
		u.notifier.OrderStatusChanged(ctx, *changed)
	}

	return out, nil
}
