package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/middleware"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Txに入ったら失敗させる（入力エラーでTxまで行かないことの確認用）
type noTx struct{ called bool }

func (m *noTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.called = true
	return errors.New("unexpected tx")
}

type nopNotifier struct{}

func (nopNotifier) OrderPlaced(context.Context, usecase.OrderPlacedEvent)               {}
func (nopNotifier) OrderStatusChanged(context.Context, usecase.OrderStatusChangedEvent) {}

type stubClock struct{}

func (stubClock) Now() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

type stubID struct{}

func (stubID) NewID() string { return "00000000-0000-0000-0000-000000000000" }

func newOrderHandlerForTest(tx repo.TransactionManager) *OrderHandler {
	numbers := usecase.NewOrderNumberGenerator(stubID{}, stubClock{})
	return NewOrderHandler(usecase.NewOrderUsecase(tx, numbers, stubClock{}, nopNotifier{}), nil)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteError_MapsHTTPError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := writeError(c, usecase.NewHTTPError(http.StatusNotFound, "order not found"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, usecase.KindNotFound, body.Error)
	assert.Equal(t, "order not found", body.Message)
}

func TestWriteError_UnknownErrorIsGeneric500(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, writeError(c, errors.New("pq: connection refused")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, usecase.KindInternal, body.Error)
	assert.Equal(t, "internal error", body.Message)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestOrderCreate_InvalidBody(t *testing.T) {
	tx := &noTx{}
	h := newOrderHandlerForTest(tx)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserIDKey, int64(5))

	require.NoError(t, h.create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, tx.called)
}

func TestOrderCreate_ValidationFields(t *testing.T) {
	tx := &noTx{}
	h := newOrderHandlerForTest(tx)

	e := echo.New()
	body := `{"items":[],"shippingAddress":{"firstName":"Taro"},"paymentMethod":"card"}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserIDKey, int64(5))

	require.NoError(t, h.create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	res := decodeError(t, rec)
	assert.Equal(t, usecase.KindValidation, res.Error)

	fields := []string{}
	for _, f := range res.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "items")
	assert.Contains(t, fields, "shippingAddress.city")
	assert.False(t, tx.called)
}

func TestOrderCreate_Unauthorized(t *testing.T) {
	h := newOrderHandlerForTest(&noTx{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderDetail_InvalidID(t *testing.T) {
	h := newOrderHandlerForTest(&noTx{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/orders/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	c.Set(middleware.CtxUserIDKey, int64(5))

	require.NoError(t, h.detail(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBindListOrders(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/orders?page=2&limit=20&search=ord-2024&orderStatus=shipped&userId=5&sort=totalAmount&order=asc", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	in, ok := bindListOrders(c)
	require.True(t, ok)
	assert.Equal(t, 2, in.Page)
	assert.Equal(t, 20, in.Limit)
	assert.Equal(t, "ord-2024", in.Search)
	assert.Equal(t, "shipped", in.OrderStatus)
	require.NotNil(t, in.UserID)
	assert.Equal(t, int64(5), *in.UserID)
	assert.Equal(t, "totalAmount", in.Sort)
	assert.Equal(t, "asc", in.Order)

	req = httptest.NewRequest(http.MethodGet, "/admin/orders?page=x", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	_, ok = bindListOrders(c)
	assert.False(t, ok)
}

func TestContactInfo(t *testing.T) {
	h := NewContactHandler(usecase.NewContactUsecase(nil, stubClock{}, usecase.DefaultContactInfo()))

	e := echo.New()
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/contact/info", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Techno Computers")
}
