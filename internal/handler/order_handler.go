package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc          *usecase.OrderUsecase
	idempotency echo.MiddlewareFunc
}

// idempotencyはnilなら付けない
func NewOrderHandler(uc *usecase.OrderUsecase, idempotency echo.MiddlewareFunc) *OrderHandler {
	return &OrderHandler{uc: uc, idempotency: idempotency}
}

type OrderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

type OrderCreateRequest struct {
	Items           []OrderItemRequest    `json:"items"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	Notes           string                `json:"notes"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg.JWTSecret))
	g.Use(middleware.ActiveUserGuard(userRepo))

	if h.idempotency != nil {
		g.POST("", h.create, h.idempotency)
	} else {
		g.POST("", h.create)
	}
	g.GET("/my-orders", h.myOrders)
	g.GET("/:id", h.detail)
}

// 二重送信防止キーはヘッダー（X-Idempotency-Key）でmiddlewareが見る
func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	items := make([]usecase.PlaceOrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.PlaceOrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), userID, usecase.PlaceOrderInput{
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) myOrders(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	in, ok := bindListOrders(c)
	if !ok {
		return badRequest(c, "invalid query")
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetOrder(c.Request().Context(), userID, isAdmin(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// page/limit/sort/order と絞り込み
func bindListOrders(c echo.Context) (usecase.ListOrdersInput, bool) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return usecase.ListOrdersInput{}, false
	}
	limit, ok := queryInt(c, "limit", 10)
	if !ok {
		return usecase.ListOrdersInput{}, false
	}

	in := usecase.ListOrdersInput{
		Page:          page,
		Limit:         limit,
		Search:        c.QueryParam("search"),
		OrderStatus:   c.QueryParam("orderStatus"),
		PaymentStatus: c.QueryParam("paymentStatus"),
		Sort:          c.QueryParam("sort"),
		Order:         c.QueryParam("order"),
	}

	if v := c.QueryParam("userId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return usecase.ListOrdersInput{}, false
		}
		in.UserID = &id
	}
	return in, true
}
