package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAdminOrderUC(r *TxReposMock, n *NotifierMock) *usecase.AdminOrderUsecase {
	return usecase.NewAdminOrderUsecase(newTxManager(r), fixedClock{t: testNow}, n)
}

func pendingOrder() model.Order {
	return model.Order{
		ID:            7,
		UserID:        5,
		OrderNumber:   "ORD-20240501093000-ABCDEF12",
		TotalAmount:   dec("100"),
		PaymentStatus: model.PaymentStatusPending,
		OrderStatus:   model.OrderStatusPending,
	}
}

func expectAssemble(r *TxReposMock) {
	r.users.On("FindByIDs", mock.Anything, []int64{5}).Return([]model.User{{ID: 5, Email: "taro@example.com"}}, nil)
	r.orderItems.On("ListByOrderIDs", mock.Anything, []int64{7}).Return([]model.OrderItem{}, nil)
	r.products.On("FindByIDs", mock.Anything, []int64{}).Return([]model.Product{}, nil)
}

// 片方だけ指定したら、もう片方はそのまま
func TestAdminUpdateStatus_PartialUpdate(t *testing.T) {
	r := newTxReposMock()
	n := &NotifierMock{}
	uc := newAdminOrderUC(r, n)

	r.orders.On("FindByID", mock.Anything, int64(7)).Return(pendingOrder(), nil).Once()
	r.orders.On("UpdateStatuses", mock.Anything, int64(7), model.OrderStatusShipped, model.PaymentStatusPending).Return(nil).Once()
	r.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 1 &&
			l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceType == model.AuditResourceOrder &&
			l.ResourceID == 7 &&
			l.BeforeJSON == `{"orderStatus":"pending","paymentStatus":"pending"}` &&
			l.AfterJSON == `{"orderStatus":"shipped","paymentStatus":"pending"}`
	})).Return(nil).Once()
	expectAssemble(r)
	n.On("OrderStatusChanged", mock.Anything, mock.MatchedBy(func(ev usecase.OrderStatusChangedEvent) bool {
		return ev.OrderID == 7 &&
			ev.Email == "taro@example.com" &&
			ev.BeforeOrderStatus == "pending" &&
			ev.AfterOrderStatus == "shipped" &&
			ev.AfterPaymentStatus == "pending" &&
			ev.ChangedBy == 1
	})).Once()

	out, err := uc.UpdateStatus(context.Background(), 1, 7, usecase.AdminUpdateOrderStatusInput{
		OrderStatus: strPtr("shipped"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, out.OrderStatus)
	assert.Equal(t, model.PaymentStatusPending, out.PaymentStatus)

	r.orders.AssertExpectations(t)
	r.audit.AssertExpectations(t)
	n.AssertExpectations(t)
}

// 同じ値なら何も書かない
func TestAdminUpdateStatus_NoChangeIsNoop(t *testing.T) {
	r := newTxReposMock()
	n := &NotifierMock{}
	uc := newAdminOrderUC(r, n)

	r.orders.On("FindByID", mock.Anything, int64(7)).Return(pendingOrder(), nil)
	expectAssemble(r)

	out, err := uc.UpdateStatus(context.Background(), 1, 7, usecase.AdminUpdateOrderStatusInput{
		OrderStatus:   strPtr("pending"),
		PaymentStatus: strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, out.OrderStatus)

	r.orders.AssertNotCalled(t, "UpdateStatuses", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	r.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	n.AssertNotCalled(t, "OrderStatusChanged", mock.Anything, mock.Anything)
}

// 遷移は制限しない（delivered -> pending も可）
func TestAdminUpdateStatus_AnyTransitionAllowed(t *testing.T) {
	r := newTxReposMock()
	n := &NotifierMock{}
	uc := newAdminOrderUC(r, n)

	o := pendingOrder()
	o.OrderStatus = model.OrderStatusDelivered
	o.PaymentStatus = model.PaymentStatusPaid
	r.orders.On("FindByID", mock.Anything, int64(7)).Return(o, nil)
	r.orders.On("UpdateStatuses", mock.Anything, int64(7), model.OrderStatusPending, model.PaymentStatusFailed).Return(nil).Once()
	r.audit.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	expectAssemble(r)
	n.On("OrderStatusChanged", mock.Anything, mock.Anything).Once()

	out, err := uc.UpdateStatus(context.Background(), 1, 7, usecase.AdminUpdateOrderStatusInput{
		OrderStatus:   strPtr("pending"),
		PaymentStatus: strPtr("failed"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, out.OrderStatus)
	assert.Equal(t, model.PaymentStatusFailed, out.PaymentStatus)
	r.orders.AssertExpectations(t)
}

func TestAdminUpdateStatus_InvalidValue(t *testing.T) {
	r := newTxReposMock()
	uc := newAdminOrderUC(r, &NotifierMock{})

	_, err := uc.UpdateStatus(context.Background(), 1, 7, usecase.AdminUpdateOrderStatusInput{
		OrderStatus:   strPtr("teleported"),
		PaymentStatus: strPtr("refunded"),
	})

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Len(t, he.Fields, 2)
	r.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestAdminUpdateStatus_OrderNotFound(t *testing.T) {
	r := newTxReposMock()
	uc := newAdminOrderUC(r, &NotifierMock{})

	r.orders.On("FindByID", mock.Anything, int64(404)).Return(model.Order{}, repoNotFound())

	_, err := uc.UpdateStatus(context.Background(), 1, 404, usecase.AdminUpdateOrderStatusInput{
		OrderStatus: strPtr("shipped"),
	})

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
	assert.Equal(t, "order not found", he.Message)
}

func TestAdminListOrders_InvalidSort(t *testing.T) {
	r := newTxReposMock()
	uc := newAdminOrderUC(r, &NotifierMock{})

	_, err := uc.List(context.Background(), usecase.ListOrdersInput{Page: 1, Limit: 10, Sort: "shippingAddress"})

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "invalid sort", he.Message)
}
