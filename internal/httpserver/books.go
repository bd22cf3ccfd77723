package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/personal_library/internal/logging"
	"github.com/Skotchmaster/personal_library/internal/middleware"
	"github.com/Skotchmaster/personal_library/internal/service"
	"github.com/Skotchmaster/personal_library/internal/transport"
)

type BookHTTP struct {
	Svc *service.LibraryService
}

func (h *BookHTTP) ListBooks(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "book.list")

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
	}

	books, err := h.Svc.ListBooks(ctx, userID)
	if err != nil {
		l.Error("list_books_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot fetch books")
	}

	return c.JSON(http.StatusOK, books)
}

func (h *BookHTTP) CreateBook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "book.create")

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
	}

	in, cleanup, err := bookInputFromForm(c)
	if err != nil {
		l.Warn("create_book_error", "status", 400, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer cleanup()

	book, err := h.Svc.CreateBook(ctx, userID, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("create_book_error", "status", 400, "reason", "invalid book fields", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			l.Warn("create_book_error", "status", 404, "reason", "user not found")
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		default:
			l.Error("create_book_error", "status", 500, "reason", "cannot add book to db", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot add book to db")
		}
	}

	l.Info("create_book_success", "book_id", book.ID)
	return c.JSON(http.StatusCreated, book)
}

func (h *BookHTTP) UpdateBook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "book.update")

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
	}

	bookID, err := parseID(c)
	if err != nil {
		l.Warn("update_book_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	in, cleanup, err := bookInputFromForm(c)
	if err != nil {
		l.Warn("update_book_error", "status", 400, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer cleanup()

	book, err := h.Svc.UpdateBook(ctx, userID, bookID, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookNotFound):
			l.Warn("update_book_error", "status", 404, "reason", "book not found")
			return echo.NewHTTPError(http.StatusNotFound, "book not found")
		case errors.Is(err, service.ErrForbidden):
			l.Warn("update_book_error", "status", 403, "reason", "access denied")
			return echo.NewHTTPError(http.StatusForbidden, "access denied")
		case errors.Is(err, service.ErrValidation):
			l.Warn("update_book_error", "status", 400, "reason", "invalid book fields", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			l.Error("update_book_error", "status", 500, "reason", "cannot update book", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot update book")
		}
	}

	l.Info("update_book_success", "book_id", book.ID)
	return c.JSON(http.StatusOK, book)
}

func (h *BookHTTP) DeleteBook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "book.delete")

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
	}

	bookID, err := parseID(c)
	if err != nil {
		l.Warn("delete_book_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	if err := h.Svc.DeleteBook(ctx, userID, bookID); err != nil {
		switch {
		case errors.Is(err, service.ErrBookNotFound):
			l.Warn("delete_book_error", "status", 404, "reason", "book not found")
			return echo.NewHTTPError(http.StatusNotFound, "book not found")
		case errors.Is(err, service.ErrForbidden):
			l.Warn("delete_book_error", "status", 403, "reason", "access denied")
			return echo.NewHTTPError(http.StatusForbidden, "access denied")
		default:
			l.Error("delete_book_error", "status", 500, "reason", "cannot delete book", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete book")
		}
	}

	l.Info("delete_book_success", "book_id", bookID)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "book deleted successfully"})
}

func (h *BookHTTP) SearchBooks(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "book.search")

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
	}

	title := c.QueryParam("title")
	author := c.QueryParam("author")

	books, err := h.Svc.SearchBooks(ctx, userID, title, author)
	if err != nil {
		l.Error("search_books_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot search books")
	}

	return c.JSON(http.StatusOK, books)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func bookInputFromForm(c echo.Context) (service.BookInput, func(), error) {
	cleanup := func() {}

	in := service.BookInput{
		Title:       c.FormValue("title"),
		Author:      c.FormValue("author"),
		Description: c.FormValue("description"),
	}

	var err error
	if in.PagesTotal, err = optionalIntForm(c, "pages_total"); err != nil {
		return in, cleanup, err
	}
	if in.PagesRead, err = optionalIntForm(c, "pages_read"); err != nil {
		return in, cleanup, err
	}

	if fh, err := c.FormFile("image"); err == nil {
		src, err := fh.Open()
		if err != nil {
			return in, cleanup, fmt.Errorf("open image upload: %w", err)
		}
		in.Image = src
		in.ImageName = fh.Filename
		cleanup = func() { src.Close() }
	}

	return in, cleanup, nil
}

func optionalIntForm(c echo.Context, field string) (*int, error) {
	v := c.FormValue(field)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", field)
	}
	return &n, nil
}
