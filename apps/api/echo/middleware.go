package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/darasahq/darasa/core/user"
)

// roleMiddleware restricts a route to the given roles. The check runs against
// the live user record, not the token claims, so a role change takes effect
// on the next request.
func roleMiddleware(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			for _, role := range roles {
				if usr.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleAdmin)
}
