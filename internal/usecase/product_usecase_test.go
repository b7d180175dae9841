package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProductUC(r *TxReposMock, cats *CategoryRepoMock) *usecase.ProductUsecase {
	return usecase.NewProductUsecase(newTxManager(r), r.products, cats, fixedClock{t: testNow})
}

func TestAdminUpdateInventory_WritesAdjustmentAndAudit(t *testing.T) {
	r := newTxReposMock()
	uc := newProductUC(r, &CategoryRepoMock{})

	r.products.On("FindByID", mock.Anything, int64(2)).Return(mouse(), nil)
	r.inventory.On("SetStock", mock.Anything, int64(2), int64(10)).Return(nil).Once()
	r.inventory.On("CreateAdjustment", mock.Anything, mock.MatchedBy(func(a model.InventoryAdjustment) bool {
		return a.ProductID == 2 && a.AdminUserID == 1 && a.Delta == 7 && a.Reason == "restock"
	})).Return(nil).Once()
	r.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateStock &&
			l.BeforeJSON == `{"stock":3}` &&
			l.AfterJSON == `{"stock":10}`
	})).Return(nil).Once()

	p, err := uc.AdminUpdateInventory(context.Background(), 1, 2, 10, " restock ")
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.Stock)

	r.inventory.AssertExpectations(t)
	r.audit.AssertExpectations(t)
}

func TestAdminUpdateInventory_Validation(t *testing.T) {
	r := newTxReposMock()
	uc := newProductUC(r, &CategoryRepoMock{})

	_, err := uc.AdminUpdateInventory(context.Background(), 1, 2, -1, "x")
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)

	_, err = uc.AdminUpdateInventory(context.Background(), 1, 2, 5, "  ")
	he, ok = usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, "reason required", he.Message)
}

func TestAdminCreateProduct_Validation(t *testing.T) {
	r := newTxReposMock()
	cats := &CategoryRepoMock{}
	uc := newProductUC(r, cats)

	cats.On("FindByID", mock.Anything, int64(4)).Return(model.Category{ID: 4, Status: model.CategoryStatusInactive}, nil)

	discount := dec("120")
	_, err := uc.AdminCreateProduct(context.Background(), 1, usecase.ProductInput{
		Name:          "Laptop",
		Description:   "14 inch",
		Brand:         "Techno",
		Price:         dec("100"),
		DiscountPrice: &discount,
		CategoryID:    4,
		Rating:        6,
	})

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, usecase.KindValidation, he.Kind)

	fields := map[string]bool{}
	for _, f := range he.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["discountPrice"])
	assert.True(t, fields["rating"])
	assert.True(t, fields["categoryId"])
	r.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminCreateProduct_Success(t *testing.T) {
	r := newTxReposMock()
	cats := &CategoryRepoMock{}
	uc := newProductUC(r, cats)

	cats.On("FindByID", mock.Anything, int64(4)).Return(model.Category{ID: 4, Status: model.CategoryStatusActive}, nil)
	r.products.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Laptop" &&
			p.Status == model.ProductStatusActive &&
			p.DiscountPrice.Valid && p.DiscountPrice.Decimal.Equal(dec("90")) &&
			p.Images != nil
	})).Return(model.Product{ID: 30, Name: "Laptop"}, nil).Once()

	discount := dec("90")
	p, err := uc.AdminCreateProduct(context.Background(), 1, usecase.ProductInput{
		Name:          " Laptop ",
		Description:   "14 inch",
		Brand:         "Techno",
		Price:         dec("100"),
		DiscountPrice: &discount,
		CategoryID:    4,
		Stock:         5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30), p.ID)
	r.products.AssertExpectations(t)
}

func TestGetProductDetail_InactiveIsNotFound(t *testing.T) {
	r := newTxReposMock()
	uc := newProductUC(r, &CategoryRepoMock{})

	p := mouse()
	p.Status = model.ProductStatusInactive
	r.products.On("FindByID", mock.Anything, int64(2)).Return(p, nil)

	_, err := uc.GetProductDetail(context.Background(), 2)

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

// 指定なしは公開中だけ、price昇順
func TestListProducts_DefaultsToActive(t *testing.T) {
	r := newTxReposMock()
	uc := newProductUC(r, &CategoryRepoMock{})

	r.products.On("List", mock.Anything, mock.MatchedBy(func(q repo.ProductListQuery) bool {
		return q.Status == "active" && q.Sort == "price" && !q.Desc && q.Page == 1 && q.Limit == 12
	})).Return([]model.Product{mouse()}, int64(1), nil).Once()

	out, err := uc.ListProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 12, Sort: "price", Order: "asc"})
	require.NoError(t, err)
	assert.Len(t, out.Products, 1)
	assert.Equal(t, 1, out.Pagination.TotalPages)
}

func TestListProducts_MinAboveMax(t *testing.T) {
	r := newTxReposMock()
	uc := newProductUC(r, &CategoryRepoMock{})

	lo, hi := dec("500"), dec("100")
	_, err := uc.ListProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 12, MinPrice: &lo, MaxPrice: &hi})

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, "minPrice must be <= maxPrice", he.Message)
}

func TestAuditLogList_InvalidAction(t *testing.T) {
	audit := &AuditRepoMock{}
	uc := usecase.NewAuditLogUsecase(audit)

	_, err := uc.List(context.Background(), usecase.ListAuditLogsInput{Action: "DROP_TABLE"})

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	audit.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestAuditLogList_FiltersPassedThrough(t *testing.T) {
	audit := &AuditRepoMock{}
	uc := usecase.NewAuditLogUsecase(audit)

	audit.On("List", mock.Anything, mock.MatchedBy(func(f repo.AuditLogFilter) bool {
		return f.Action != nil && *f.Action == model.AuditActionUpdateOrderStatus &&
			f.ResourceType != nil && *f.ResourceType == model.AuditResourceOrder
	})).Return(nil, nil).Once()

	logs, err := uc.List(context.Background(), usecase.ListAuditLogsInput{
		Action:       "UPDATE_ORDER_STATUS",
		ResourceType: "order",
	})
	require.NoError(t, err)
	assert.NotNil(t, logs)
	assert.Empty(t, logs)
}
