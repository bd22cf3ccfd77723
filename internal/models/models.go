package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"unique;not null"          json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Book struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"not null"                 json:"title"`
	Author      string    `gorm:"not null"                 json:"author"`
	Description string    `gorm:"size:1000"                json:"description"`
	ImagePath   string    `json:"image_path"`
	PagesTotal  int       `gorm:"not null;default:0"       json:"pages_total"`
	PagesRead   int       `gorm:"not null;default:0"       json:"pages_read"`
	UserID      uint      `gorm:"index;not null"           json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
