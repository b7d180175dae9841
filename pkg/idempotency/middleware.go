package idempotency

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

const HeaderKey = "X-Idempotency-Key"

type Claimer interface {
	Key(scope string, key string) string
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// 呼び出し元ごとにキーを分ける（ユーザーIDなど）
type ScopeFunc func(c echo.Context) string

// ヘッダーが無いリクエストはそのまま通す。
// Redisが落ちているときも注文は止めない。
func Middleware(store Claimer, scope ScopeFunc, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(HeaderKey)
			if raw == "" || store == nil {
				return next(c)
			}

			ctx := c.Request().Context()
			key := store.Key(scope(c), raw)

			ok, err := store.Claim(ctx, key)
			if err != nil {
				log.Warn("idempotency claim failed", "err", err)
				return next(c)
			}
			if !ok {
				return c.JSON(http.StatusConflict, map[string]string{
					"error":   "CONFLICT",
					"message": "duplicate request",
				})
			}

			herr := next(c)

			status := c.Response().Status
			if he, isHTTP := herr.(*echo.HTTPError); isHTTP {
				status = he.Code
			} else if herr != nil && !c.Response().Committed {
				status = http.StatusInternalServerError
			}
			if status >= http.StatusBadRequest {
				if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
					log.Warn("idempotency release failed", "err", err)
				}
			}
			return herr
		}
	}
}
