package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-api/internal/api/middleware"
	"github.com/99minutos/accounts-api/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Auth middleware. A missing
// or incomplete identity means the middleware did not run for this route.
func ctxClaims(c echo.Context) (domain.Claims, error) {
	claims, ok := c.Get(middleware.ClaimsKey).(domain.Claims)
	if !ok || claims.Username == "" {
		return domain.Claims{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
