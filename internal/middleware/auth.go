package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/personal_library/internal/tokens"
)

type Auth struct {
	Tokens *tokens.Service
}

func NewAuth(t *tokens.Service) *Auth {
	return &Auth{Tokens: t}
}

func (m *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		userID, err := m.Tokens.Validate(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set("user_id", userID)
		return next(c)
	}
}

func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get("user_id").(uint)
	return id, ok
}
