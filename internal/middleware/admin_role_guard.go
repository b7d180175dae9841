package middleware

import (
	"storefront/internal/domain/model"

	"github.com/labstack/echo/v4"
)

//contextに入っているroleがadminかどうかを確認します。

func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxUserRoleKey).(string)
			if !ok || role == "" {
				return unauthorized(c)
			}

			//customerは拒否、adminだけ許可
			if role != string(model.RoleAdmin) {
				return forbidden(c, "admin only")
			}

			return next(c)
		}
	}
}
