package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/personal_library/internal/config"
	"github.com/Skotchmaster/personal_library/internal/es"
	"github.com/Skotchmaster/personal_library/internal/events"
	"github.com/Skotchmaster/personal_library/internal/httpserver"
	"github.com/Skotchmaster/personal_library/internal/logging"
	"github.com/Skotchmaster/personal_library/internal/middleware/loggingmw"
	"github.com/Skotchmaster/personal_library/internal/repo"
	"github.com/Skotchmaster/personal_library/internal/service"
	"github.com/Skotchmaster/personal_library/internal/service/search"
	"github.com/Skotchmaster/personal_library/internal/storage"
	"github.com/Skotchmaster/personal_library/internal/tokens"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	images, err := storage.NewImageStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("image store: %v", err)
	}

	tokenSvc := tokens.NewService(cfg.JWTSecret, cfg.TokenTTL)
	gormRepo := &repo.GormRepo{DB: db}

	producer := events.NewProducer(cfg.KafkaBrokers, "book_events")

	var searchClient *search.Client
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Printf("warning: elasticsearch unavailable, falling back to db search: %v", err)
		} else {
			searchClient = &search.Client{ES: esClient, Index: "books"}
		}
	}

	authSvc := &service.AuthService{Repo: gormRepo, Tokens: tokenSvc}
	librarySvc := &service.LibraryService{
		Repo:   gormRepo,
		Images: images,
		Events: producer,
		Search: searchClient,
	}

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:  &httpserver.AuthHTTP{Svc: authSvc},
		BookHandler:  &httpserver.BookHTTP{Svc: librarySvc},
		ImageHandler: &httpserver.ImageHTTP{Store: images},
		Tokens:       tokenSvc,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		log.Printf("library listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	_ = producer.Close()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("library stopped")
}
