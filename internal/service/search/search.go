package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/personal_library/internal/models"
)

// Client mirrors the book table into an elasticsearch index so search does
// not hit the database. Writes are best-effort; the repo query is the
// fallback path when no client is configured.
type Client struct {
	ES    *elasticsearch.Client
	Index string
}

type bookDoc struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	ImagePath   string    `json:"image_path"`
	PagesTotal  int       `json:"pages_total"`
	PagesRead   int       `json:"pages_read"`
	UserID      uint      `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func docFromBook(b *models.Book) bookDoc {
	return bookDoc{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		ImagePath:   b.ImagePath,
		PagesTotal:  b.PagesTotal,
		PagesRead:   b.PagesRead,
		UserID:      b.UserID,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func (d bookDoc) book() models.Book {
	return models.Book{
		ID:          d.ID,
		Title:       d.Title,
		Author:      d.Author,
		Description: d.Description,
		ImagePath:   d.ImagePath,
		PagesTotal:  d.PagesTotal,
		PagesRead:   d.PagesRead,
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (c *Client) IndexBook(ctx context.Context, b *models.Book) error {
	body, err := json.Marshal(docFromBook(b))
	if err != nil {
		return fmt.Errorf("index book: %w", err)
	}

	res, err := c.ES.Index(
		c.Index,
		bytes.NewReader(body),
		c.ES.Index.WithDocumentID(strconv.FormatUint(uint64(b.ID), 10)),
		c.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index book: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index book: %s", res.Status())
	}
	return nil
}

func (c *Client) DeleteBook(ctx context.Context, id uint) error {
	res, err := c.ES.Delete(
		c.Index,
		strconv.FormatUint(uint64(id), 10),
		c.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete book: %s", res.Status())
	}
	return nil
}

// Search runs an owner-scoped substring query against one field. An empty
// term matches every book of the owner.
func (c *Client) Search(ctx context.Context, userID uint, field, term string) ([]models.Book, error) {
	var must any
	if term == "" {
		must = map[string]any{"match_all": map[string]any{}}
	} else {
		must = map[string]any{
			"wildcard": map[string]any{
				field: map[string]any{
					"value":            "*" + strings.ToLower(term) + "*",
					"case_insensitive": true,
				},
			},
		}
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must":   must,
				"filter": map[string]any{"term": map[string]any{"user_id": userID}},
			},
		},
		"size": 100,
		"sort": []any{map[string]any{"id": "asc"}},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	res, err := c.ES.Search(
		c.ES.Search.WithContext(ctx),
		c.ES.Search.WithIndex(c.Index),
		c.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source bookDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	books := make([]models.Book, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		books[i] = hit.Source.book()
	}
	return books, nil
}
