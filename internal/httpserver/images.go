package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/personal_library/internal/logging"
	"github.com/Skotchmaster/personal_library/internal/storage"
)

type ImageHTTP struct {
	Store *storage.ImageStore
}

func (h *ImageHTTP) GetImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "image.get")

	name := c.Param("filename")
	data, contentType, err := h.Store.Retrieve(name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			l.Warn("get_image_error", "status", 404, "reason", "image not found")
			return echo.NewHTTPError(http.StatusNotFound, "image not found")
		}
		l.Error("get_image_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read image")
	}

	return c.Blob(http.StatusOK, contentType, data)
}
