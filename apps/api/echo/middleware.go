package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-calendar/core/user"
)

// userContextMiddleware stores the authenticated user in the request context,
// where the session service looks for it.
func userContextMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		req := ctx.Request()
		ctx.SetRequest(req.WithContext(user.NewContext(req.Context(), claims.User())))
		return next(ctx)
	}
}
