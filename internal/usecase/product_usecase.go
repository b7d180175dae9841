package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/validator"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	tx           repo.TransactionManager
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	clock        Clock
}

// DI
func NewProductUsecase(
	tx repo.TransactionManager,
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
	clock Clock,
) *ProductUsecase {
	return &ProductUsecase{
		tx:           tx,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		clock:        clock,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page       int
	Limit      int
	Search     string
	CategoryID *int64
	Brand      string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Featured   *bool
	Status     string
	Sort       string
	Order      string
}

type ProductListOutput struct {
	Products   []model.Product `json:"products"`
	Pagination Pagination      `json:"pagination"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Search) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "search too long")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "minPrice must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "maxPrice must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "minPrice must be <= maxPrice")
	}
	switch in.Sort {
	case "", "createdAt", "price", "name", "rating":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	desc := true
	switch strings.ToLower(in.Order) {
	case "", "desc":
	case "asc":
		desc = false
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order")
	}

	// 指定なしは公開中のみ
	status := model.ProductStatusActive
	switch in.Status {
	case "", string(model.ProductStatusActive):
	case string(model.ProductStatusInactive):
		status = model.ProductStatusInactive
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Search:     strings.TrimSpace(in.Search),
		CategoryID: in.CategoryID,
		Brand:      strings.TrimSpace(in.Brand),
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
		Featured:   in.Featured,
		Status:     string(status),
		Sort:       in.Sort,
		Desc:       desc,
	})
	if err != nil {
		return ProductListOutput{}, errDB(err)
	}

	return ProductListOutput{
		Products:   items,
		Pagination: newPagination(in.Page, in.Limit, total),
	}, nil
}

func (u *ProductUsecase) ListFeatured(ctx context.Context, limit int) ([]model.Product, error) {
	if limit < 1 || limit > 50 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	items, err := u.productRepo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, errDB(err)
	}
	return items, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, wrapRepoErr(err, "product not found")
	}

	if !p.IsActive() {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	return p, nil
}

type ProductInput struct {
	Name           string
	Description    string
	Price          decimal.Decimal
	DiscountPrice  *decimal.Decimal
	CategoryID     int64
	Brand          string
	Stock          int64
	Images         []string
	Specifications map[string]any
	Status         string
	Featured       bool
	Rating         float64
}

// 入力チェックしてモデルにする（stockは作成時だけ使う）
func (u *ProductUsecase) buildProduct(ctx context.Context, in ProductInput) (model.Product, error) {
	var v validator.Errors
	v.Required("name", in.Name)
	v.MaxLen("name", strings.TrimSpace(in.Name), 200)
	v.Required("description", in.Description)
	v.Required("brand", in.Brand)
	if in.Price.IsNegative() {
		v.Add("price", "must be >= 0")
	}
	if in.DiscountPrice != nil {
		if in.DiscountPrice.IsNegative() {
			v.Add("discountPrice", "must be >= 0")
		} else if !in.DiscountPrice.LessThan(in.Price) {
			v.Add("discountPrice", "must be less than price")
		}
	}
	if in.Stock < 0 {
		v.Add("stock", "must be >= 0")
	}
	if in.Rating < 0 || in.Rating > 5 {
		v.Add("rating", "must be between 0 and 5")
	}

	status := model.ProductStatusActive
	switch in.Status {
	case "", string(model.ProductStatusActive):
	case string(model.ProductStatusInactive):
		status = model.ProductStatusInactive
	default:
		v.Add("status", "must be active or inactive")
	}

	if in.CategoryID <= 0 {
		v.Add("categoryId", "is required")
	} else {
		c, err := u.categoryRepo.FindByID(ctx, in.CategoryID)
		if err != nil && !isNotFound(err) {
			return model.Product{}, errDB(err)
		}
		if err != nil || c.Status != model.CategoryStatusActive {
			v.Add("categoryId", "must reference an active category")
		}
	}

	if !v.OK() {
		return model.Product{}, validationError(&v)
	}

	p := model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		Brand:       strings.TrimSpace(in.Brand),
		Stock:       in.Stock,
		Images:      pq.StringArray(in.Images),
		Specs:       model.Specifications(in.Specifications),
		Status:      status,
		Featured:    in.Featured,
		Rating:      in.Rating,
	}
	if p.Images == nil {
		p.Images = pq.StringArray{}
	}
	if in.DiscountPrice != nil {
		p.DiscountPrice = decimal.NewNullDecimal(*in.DiscountPrice)
	}
	return p, nil
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in ProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	p, err := u.buildProduct(ctx, in)
	if err != nil {
		return model.Product{}, err
	}

	created, err := u.productRepo.Create(ctx, p)
	if err != nil {
		return model.Product{}, errDB(err)
	}
	return created, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in ProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.buildProduct(ctx, in)
	if err != nil {
		return model.Product{}, err
	}
	p.ID = productID

	if err := u.productRepo.Update(ctx, p); err != nil {
		return model.Product{}, wrapRepoErr(err, "product not found")
	}

	updated, err := u.productRepo.FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, wrapRepoErr(err, "product not found")
	}
	return updated, nil
}

// 論理削除（status=inactive）
func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := u.productRepo.SetStatus(ctx, productID, model.ProductStatusInactive); err != nil {
		return wrapRepoErr(err, "product not found")
	}
	return nil
}

type stockSnapshot struct {
	Stock int64 `json:"stock"`
}

// 在庫の現在値を設定。履歴と監査ログも同じTxで残す
func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if newStock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if strings.TrimSpace(reason) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "reason required")
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		p, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return wrapRepoErr(err, "product not found")
		}

		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			return wrapRepoErr(err, "product not found")
		}

		//履歴を作成（差分）
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			AdminUserID: adminUserID,
			Delta:       newStock - p.Stock,
			Reason:      strings.TrimSpace(reason),
			CreatedAt:   u.clock.Now(),
		}); err != nil {
			return errDB(err)
		}

		beforeJSON, _ := json.Marshal(stockSnapshot{Stock: p.Stock})
		afterJSON, _ := json.Marshal(stockSnapshot{Stock: newStock})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   string(beforeJSON),
			AfterJSON:    string(afterJSON),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return errDB(err)
		}

		p.Stock = newStock
		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return out, nil
}
