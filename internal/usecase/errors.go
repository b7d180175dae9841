package usecase

import (
	"errors"
	"fmt"
	"net/http"

	repo "storefront/internal/repository"
	"storefront/internal/validator"
)

// 機械判定用の種別
const (
	KindValidation        = "VALIDATION"
	KindNotFound          = "NOT_FOUND"
	KindInsufficientStock = "INSUFFICIENT_STOCK"
	KindConflict          = "CONFLICT"
	KindUnauthorized      = "UNAUTHORIZED"
	KindForbidden         = "FORBIDDEN"
	KindInternal          = "INTERNAL"
)

type HTTPError struct {
	Status  int
	Kind    string
	Message string
	Fields  []validator.FieldError
	Err     error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Kindはstatusから決める
func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Kind:    kindOf(status),
		Message: message,
	}
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func kindOf(status int) string {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	default:
		return KindInternal
	}
}

func validationError(v *validator.Errors) error {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Kind:    KindValidation,
		Message: v.Message(),
		Fields:  v.Fields(),
	}
}

func insufficientStock(productName string) error {
	return &HTTPError{
		Status:  http.StatusConflict,
		Kind:    KindInsufficientStock,
		Message: "insufficient stock for product: " + productName,
	}
}

// 500。原因はErrに持ち、ログにだけ出す。
// デッドロック等の競合は409にしてリトライできることを返す
func errDB(cause error) error {
	if errors.Is(cause, repo.ErrConflict) {
		return &HTTPError{
			Status:  http.StatusConflict,
			Kind:    KindConflict,
			Message: "concurrent update, please retry",
			Err:     cause,
		}
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: "db error",
		Err:     cause,
	}
}

// repositoryのエラーをHTTPErrorに寄せる。HTTPErrorはそのまま返す
func wrapRepoErr(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, notFoundMsg)
	}
	return errDB(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound)
}
