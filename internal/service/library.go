package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/personal_library/internal/events"
	"github.com/Skotchmaster/personal_library/internal/logging"
	"github.com/Skotchmaster/personal_library/internal/models"
	"github.com/Skotchmaster/personal_library/internal/repo"
	"github.com/Skotchmaster/personal_library/internal/service/search"
	"github.com/Skotchmaster/personal_library/internal/storage"
)

const maxDescriptionLen = 1000

type LibraryService struct {
	Repo   *repo.GormRepo
	Images *storage.ImageStore
	Events *events.Producer
	Search *search.Client
}

// BookInput carries one create/update request. Nil pages fields mean
// "not given": on create they default to zero, on update they keep the
// stored value.
type BookInput struct {
	Title       string
	Author      string
	Description string
	PagesTotal  *int
	PagesRead   *int
	Image       io.Reader
	ImageName   string
}

func (s *LibraryService) CreateBook(ctx context.Context, userID uint, in BookInput) (*models.Book, error) {
	l := logging.FromContext(ctx).With("svc", "library.create_book")

	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := validateBook(in); err != nil {
		return nil, err
	}
	total, read, err := effectivePages(in.PagesTotal, in.PagesRead, 0, 0)
	if err != nil {
		return nil, err
	}

	book := models.Book{
		Title:       in.Title,
		Author:      in.Author,
		Description: in.Description,
		PagesTotal:  total,
		PagesRead:   read,
		UserID:      user.ID,
	}

	if in.Image != nil {
		name, err := s.Images.Store(in.Image, in.ImageName)
		if err != nil {
			l.Error("image_store_error", "error", err)
			return nil, err
		}
		book.ImagePath = name
	}

	if err := s.Repo.CreateBook(ctx, &book); err != nil {
		return nil, err
	}

	s.publish(ctx, map[string]any{
		"type":   "book_created",
		"bookID": book.ID,
		"title":  book.Title,
		"userID": book.UserID,
	})
	s.index(ctx, &book)

	return &book, nil
}

func (s *LibraryService) ListBooks(ctx context.Context, userID uint) ([]models.Book, error) {
	return s.Repo.GetUserBooks(ctx, userID)
}

func (s *LibraryService) UpdateBook(ctx context.Context, userID, bookID uint, in BookInput) (*models.Book, error) {
	l := logging.FromContext(ctx).With("svc", "library.update_book")

	book, err := s.ownedBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	if err := validateBook(in); err != nil {
		return nil, err
	}
	total, read, err := effectivePages(in.PagesTotal, in.PagesRead, book.PagesTotal, book.PagesRead)
	if err != nil {
		return nil, err
	}

	book.Title = in.Title
	book.Author = in.Author
	book.Description = in.Description
	book.PagesTotal = total
	book.PagesRead = read

	if in.Image != nil {
		// The previous file stays on disk unreferenced; cleanup is a
		// separate concern.
		name, err := s.Images.Store(in.Image, in.ImageName)
		if err != nil {
			l.Error("image_store_error", "error", err)
			return nil, err
		}
		book.ImagePath = name
	}

	if err := s.Repo.SaveBook(ctx, book); err != nil {
		return nil, err
	}

	s.publish(ctx, map[string]any{
		"type":   "book_updated",
		"bookID": book.ID,
		"title":  book.Title,
		"userID": book.UserID,
	})
	s.index(ctx, book)

	return book, nil
}

func (s *LibraryService) DeleteBook(ctx context.Context, userID, bookID uint) error {
	book, err := s.ownedBook(ctx, userID, bookID)
	if err != nil {
		return err
	}

	if err := s.Repo.DeleteBook(ctx, book.ID); err != nil {
		return err
	}

	s.publish(ctx, map[string]any{
		"type":   "book_deleted",
		"bookID": book.ID,
		"userID": book.UserID,
	})
	s.deindex(ctx, book.ID)

	return nil
}

func (s *LibraryService) SearchBooks(ctx context.Context, userID uint, title, author string) ([]models.Book, error) {
	if s.Search != nil {
		field, term := "title", title
		if title == "" && author != "" {
			field, term = "author", author
		}
		books, err := s.Search.Search(ctx, userID, field, term)
		if err == nil {
			return books, nil
		}
		logging.FromContext(ctx).Error("es_search_error", "error", err)
	}
	return s.Repo.SearchBooks(ctx, userID, title, author)
}

// ownedBook fetches the target and enforces ownership: absent books are
// reported before foreign ones, so a 404 never turns into a 403.
func (s *LibraryService) ownedBook(ctx context.Context, userID, bookID uint) (*models.Book, error) {
	book, err := s.Repo.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	if book.UserID != userID {
		return nil, ErrForbidden
	}
	return book, nil
}

func validateBook(in BookInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(in.Author) == "" {
		return fmt.Errorf("%w: author is required", ErrValidation)
	}
	if len(in.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description is too long", ErrValidation)
	}
	return nil
}

// effectivePages resolves the optional paging fields against the current
// stored values and checks the pages_read <= pages_total invariant on the
// result. Create passes zero current values.
func effectivePages(total, read *int, curTotal, curRead int) (int, int, error) {
	t, r := curTotal, curRead
	if total != nil {
		t = *total
	}
	if read != nil {
		r = *read
	}

	if t < 0 || r < 0 {
		return 0, 0, fmt.Errorf("%w: pages cannot be negative", ErrValidation)
	}
	if r > t {
		return 0, 0, fmt.Errorf("%w: pages_read exceeds pages_total", ErrValidation)
	}
	return t, r, nil
}

func (s *LibraryService) publish(ctx context.Context, event map[string]any) {
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Events.PublishEvent(pctx, fmt.Sprint(event["userID"]), event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "error", err)
	}
}

func (s *LibraryService) index(ctx context.Context, book *models.Book) {
	if s.Search == nil {
		return
	}
	if err := s.Search.IndexBook(ctx, book); err != nil {
		logging.FromContext(ctx).Error("es_index_error", "book_id", book.ID, "error", err)
	}
}

func (s *LibraryService) deindex(ctx context.Context, id uint) {
	if s.Search == nil {
		return
	}
	if err := s.Search.DeleteBook(ctx, id); err != nil {
		logging.FromContext(ctx).Error("es_delete_error", "book_id", id, "error", err)
	}
}
