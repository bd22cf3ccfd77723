package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/personal_library/internal/logging"
	"github.com/Skotchmaster/personal_library/internal/service"
	"github.com/Skotchmaster/personal_library/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Register(ctx, req.Username, req.Password); err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("register_error", "status", 400, "reason", "invalid body")
			return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
		}
		if errors.Is(err, service.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "user already exist")
		}
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "register failed")
	}

	l.Info("register_success")
	return c.JSON(http.StatusOK, echo.Map{
		"username": req.Username,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrValidation) || errors.Is(err, service.ErrInvalidCredentials) {
			l.Warn("login_failed", "status", 401)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}
		l.Error("login_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	l.Info("login_successful")
	return c.JSON(http.StatusOK, transport.LoginResponse{
		Message:  "login successful",
		Token:    res.Token,
		UserID:   res.UserID,
		Username: res.Username,
	})
}
