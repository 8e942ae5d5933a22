package data

import (
	"time"

	"github.com/odese/athenaeum/internal/validator"
)

// ScopeCover identifies cover image uploads to object storage.
const ScopeCover = "cover"

// Book defines a book model. AvailableCopies is mutated only by the
// borrow/return workflow; catalog administration sets TotalCopies.
type Book struct {
	ID              int64      `json:"id"`
	CreatedAt       time.Time  `json:"created_at"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	ISBN            string     `json:"isbn"`
	Description     string     `json:"description,omitempty"`
	PublishYear     int32      `json:"publish_year"`
	TotalCopies     int32      `json:"total_copies"`
	AvailableCopies int32      `json:"available_copies"`
	CoverImageURL   string     `json:"cover_image_url,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	Publisher       string     `json:"publisher,omitempty"`
	Categories      []string   `json:"categories,omitempty"`
	Version         int32      `json:"-"`
}

func ValidateBook(v *validator.Validator, book *Book) {
	v.Check(book.Title != "", "title", "must be provided")
	v.Check(len(book.Title) <= 100, "title", "must not be more than 100 bytes long")
	v.Check(book.Author != "", "author", "must be provided")
	v.Check(len(book.Author) <= 100, "author", "must not be more than 100 bytes long")
	v.Check(book.ISBN != "", "isbn", "must be provided")
	v.Check(len(book.ISBN) <= 20, "isbn", "must not be more than 20 bytes long")
	v.Check(len(book.Description) <= 1000, "description", "must not be more than 1000 bytes long")
	v.Check(book.PublishYear != 0, "publish_year", "must be provided")
	v.Check(book.PublishYear <= int32(time.Now().Year()), "publish_year", "must not be in the future")
	v.Check(book.TotalCopies > 0, "total_copies", "must be greater than zero")
	v.Check(book.AvailableCopies >= 0, "available_copies", "must not be negative")
	v.Check(book.AvailableCopies <= book.TotalCopies, "available_copies", "must not exceed total copies")
	v.Check(len(book.CoverImageURL) <= 255, "cover_image_url", "must not be more than 255 bytes long")
	v.Check(len(book.Publisher) <= 100, "publisher", "must not be more than 100 bytes long")
	v.Check(validator.Unique(book.Categories), "categories", "must not contain duplicate values")
}
