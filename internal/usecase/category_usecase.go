package usecase

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/validator"
)

type CategoryUsecase struct {
	categoryRepo repo.CategoryRepository
	productRepo  repo.ProductRepository
}

func NewCategoryUsecase(categoryRepo repo.CategoryRepository, productRepo repo.ProductRepository) *CategoryUsecase {
	return &CategoryUsecase{categoryRepo: categoryRepo, productRepo: productRepo}
}

type CategoryInput struct {
	Name        string
	Description string
	Image       string
	Status      string
}

func (u *CategoryUsecase) List(ctx context.Context, status string) ([]model.Category, error) {
	switch status {
	case "", string(model.CategoryStatusActive), string(model.CategoryStatusInactive):
	default:
		return nil, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	out, err := u.categoryRepo.List(ctx, status)
	if err != nil {
		return nil, errDB(err)
	}
	return out, nil
}

func (u *CategoryUsecase) validate(in CategoryInput) (model.Category, error) {
	var v validator.Errors
	v.Required("name", in.Name)
	v.MaxLen("name", strings.TrimSpace(in.Name), 100)
	v.MaxLen("description", in.Description, 500)

	status := model.CategoryStatusActive
	switch in.Status {
	case "", string(model.CategoryStatusActive):
	case string(model.CategoryStatusInactive):
		status = model.CategoryStatusInactive
	default:
		v.Add("status", "must be active or inactive")
	}
	if !v.OK() {
		return model.Category{}, validationError(&v)
	}

	return model.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Image:       strings.TrimSpace(in.Image),
		Status:      status,
	}, nil
}

// 名前は大文字小文字を区別せず一意
func (u *CategoryUsecase) ensureUniqueName(ctx context.Context, name string, excludeID int64) error {
	_, err := u.categoryRepo.FindByName(ctx, name, excludeID)
	if err == nil {
		return NewHTTPError(http.StatusConflict, "category with this name already exists")
	}
	if !isNotFound(err) {
		return errDB(err)
	}
	return nil
}

func (u *CategoryUsecase) Create(ctx context.Context, in CategoryInput) (model.Category, error) {
	c, err := u.validate(in)
	if err != nil {
		return model.Category{}, err
	}
	if err := u.ensureUniqueName(ctx, c.Name, 0); err != nil {
		return model.Category{}, err
	}

	created, err := u.categoryRepo.Create(ctx, c)
	if err != nil {
		return model.Category{}, errDB(err)
	}
	return created, nil
}

func (u *CategoryUsecase) Update(ctx context.Context, id int64, in CategoryInput) (model.Category, error) {
	if id <= 0 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	c, err := u.validate(in)
	if err != nil {
		return model.Category{}, err
	}

	existing, err := u.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return model.Category{}, wrapRepoErr(err, "category not found")
	}
	if err := u.ensureUniqueName(ctx, c.Name, id); err != nil {
		return model.Category{}, err
	}

	c.ID = id
	c.CreatedAt = existing.CreatedAt
	if err := u.categoryRepo.Update(ctx, c); err != nil {
		return model.Category{}, wrapRepoErr(err, "category not found")
	}

	updated, err := u.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return model.Category{}, wrapRepoErr(err, "category not found")
	}
	return updated, nil
}

// 論理削除。有効な商品が残っていたら消せない
func (u *CategoryUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	c, err := u.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return wrapRepoErr(err, "category not found")
	}

	n, err := u.productRepo.CountActiveByCategory(ctx, id)
	if err != nil {
		return errDB(err)
	}
	if n > 0 {
		return NewHTTPError(http.StatusConflict, "cannot delete category with active products")
	}

	c.Status = model.CategoryStatusInactive
	if err := u.categoryRepo.Update(ctx, c); err != nil {
		return wrapRepoErr(err, "category not found")
	}
	return nil
}
