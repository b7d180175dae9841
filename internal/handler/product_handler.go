package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開API（認証なし）
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/featured", h.featured)
	e.GET("/products/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}
	limit, ok := queryInt(c, "limit", 12)
	if !ok {
		return badRequest(c, "invalid limit")
	}
	categoryID, ok := queryInt64Ptr(c, "category")
	if !ok {
		return badRequest(c, "invalid category")
	}
	featured, ok := queryBoolPtr(c, "featured")
	if !ok {
		return badRequest(c, "invalid featured")
	}
	minPrice, ok := queryDecimalPtr(c, "minPrice")
	if !ok {
		return badRequest(c, "invalid minPrice")
	}
	maxPrice, ok := queryDecimalPtr(c, "maxPrice")
	if !ok {
		return badRequest(c, "invalid maxPrice")
	}

	out, err := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:       page,
		Limit:      limit,
		Search:     c.QueryParam("search"),
		CategoryID: categoryID,
		Brand:      c.QueryParam("brand"),
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Featured:   featured,
		Status:     c.QueryParam("status"),
		Sort:       c.QueryParam("sort"),
		Order:      c.QueryParam("order"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) featured(c echo.Context) error {
	limit, ok := queryInt(c, "limit", 8)
	if !ok {
		return badRequest(c, "invalid limit")
	}

	products, err := h.uc.ListFeatured(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	p, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func queryDecimalPtr(c echo.Context, name string) (*decimal.Decimal, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, false
	}
	return &d, true
}
