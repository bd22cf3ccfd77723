package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/personal_library/internal/models"
)

func (r *GormRepo) CreateBook(ctx context.Context, book *models.Book) error {
	return r.DB.WithContext(ctx).Create(book).Error
}

func (r *GormRepo) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *GormRepo) GetUserBooks(ctx context.Context, userID uint) ([]models.Book, error) {
	var books []models.Book
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *GormRepo) SaveBook(ctx context.Context, book *models.Book) error {
	return r.DB.WithContext(ctx).Save(book).Error
}

func (r *GormRepo) DeleteBook(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Book{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchBooks filters the owner's books by a case-insensitive substring on
// title or, when no title filter is given, on author. With neither filter it
// returns the owner's full list.
func (r *GormRepo) SearchBooks(ctx context.Context, userID uint, title, author string) ([]models.Book, error) {
	q := r.DB.WithContext(ctx).Model(&models.Book{}).Where("user_id = ?", userID)
	switch {
	case title != "":
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(title)+"%")
	case author != "":
		q = q.Where("LOWER(author) LIKE ?", "%"+strings.ToLower(author)+"%")
	}

	var books []models.Book
	if err := q.Order("id ASC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}
