package storage

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("image not found")

// ImageStore keeps uploaded covers as a flat directory of
// {uuid}_{originalFilename} files under one configured root.
type ImageStore struct {
	root string
}

func NewImageStore(root string) (*ImageStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	return &ImageStore{root: root}, nil
}

// Store writes the content under a freshly generated stored name and returns
// that name. The root is created on first use; concurrent first-writers racing
// on MkdirAll are fine since "already exists" is not an error.
func (s *ImageStore) Store(r io.Reader, originalFilename string) (string, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + "_" + safeFilename(originalFilename)
	out, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

// Retrieve resolves a stored name against the root and returns the content
// with an inferred content type. Names that could escape the root are rejected
// the same way missing files are.
func (s *ImageStore) Retrieve(storedName string) ([]byte, string, error) {
	if unsafeName(storedName) {
		return nil, "", ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.root, storedName))
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("read image: %w", err)
	}

	return data, contentTypeFor(storedName, data), nil
}

func contentTypeFor(name string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	if len(data) > 0 {
		return http.DetectContentType(data)
	}
	return "application/octet-stream"
}

func unsafeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return true
	}
	if filepath.IsAbs(name) {
		return true
	}
	return strings.ContainsAny(name, `/\`)
}

func safeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "image"
	}
	return name
}
