package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/personal_library/internal/middleware"
	"github.com/Skotchmaster/personal_library/internal/tokens"
)

type Deps struct {
	AuthHandler  *AuthHTTP
	BookHandler  *BookHTTP
	ImageHandler *ImageHTTP
	Tokens       *tokens.Service
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.POST("/api/register", d.AuthHandler.Register)
	e.POST("/api/auth/login", d.AuthHandler.Login)

	e.GET("/api/images/:filename", d.ImageHandler.GetImage)

	authMW := middleware.NewAuth(d.Tokens)

	books := e.Group("/api/books")
	books.Use(authMW.RequireAuth)
	books.GET("", d.BookHandler.ListBooks)
	books.POST("", d.BookHandler.CreateBook)
	books.GET("/search", d.BookHandler.SearchBooks)
	books.PUT("/:id", d.BookHandler.UpdateBook)
	books.DELETE("/:id", d.BookHandler.DeleteBook)
}
