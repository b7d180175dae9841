package middleware

import (
	"errors"
	"net/http"

	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

// DBの最新状態で確認する。無効化されたユーザーは401。
// roleもDBの値で上書きする
func ActiveUserGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたuser_idを取得する
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || userID <= 0 {
				return unauthorized(c)
			}

			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if errors.Is(err, repository.ErrNotFound) {
				return unauthorized(c)
			}
			// DB障害は認証失敗と区別する
			if err != nil {
				return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL", Message: "internal error"})
			}
			if user == nil {
				return unauthorized(c)
			}
			if !user.IsActive() {
				return unauthorized(c)
			}

			c.Set(CtxUserRoleKey, string(user.Role))
			return next(c)
		}
	}
}
