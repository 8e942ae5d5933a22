package data

import "github.com/odese/athenaeum/internal/validator"

// Category defines a book category. Categories are created on demand when a
// book references them by name.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	BooksCount  int64  `json:"books_count,omitempty"`
}

func ValidateCategory(v *validator.Validator, category *Category) {
	v.Check(category.Name != "", "name", "must be provided")
	v.Check(len(category.Name) <= 50, "name", "must not be more than 50 bytes long")
	v.Check(len(category.Description) <= 255, "description", "must not be more than 255 bytes long")
}
