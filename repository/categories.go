package repository

import (
	"context"
	"time"

	"github.com/odese/athenaeum/data"
)

type categories interface {
	GetOrCreateCategory(name, description string) (*data.Category, error)
	GetAllCategories() ([]*data.Category, error)
	SetCategoriesForBook(bookID int64, categoryIDs []int64) error
}

// GetOrCreateCategory retrieves the category with the given name, creating it
// first if it doesn't exist yet. The upsert keeps the existing description
// when the category is already present.
func (r *repository) GetOrCreateCategory(name, description string) (*data.Category, error) {
	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, description`
	var category data.Category
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, name, description).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
	)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetAllCategories retrieves all categories together with the number of books
// referencing each one.
func (r *repository) GetAllCategories() ([]*data.Category, error) {
	query := `
		SELECT categories.id, categories.name, categories.description, COUNT(books_categories.book_id)
		FROM categories
		LEFT JOIN books_categories ON books_categories.category_id = categories.id
		GROUP BY categories.id
		ORDER BY categories.id ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categoryList := []*data.Category{}
	for rows.Next() {
		var category data.Category
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Description,
			&category.BooksCount,
		)
		if err != nil {
			return nil, err
		}
		categoryList = append(categoryList, &category)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return categoryList, nil
}

// SetCategoriesForBook replaces the set of categories referenced by a book.
func (r *repository) SetCategoriesForBook(bookID int64, categoryIDs []int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	_, err = tx.ExecContext(ctx, `DELETE FROM books_categories WHERE book_id = $1`, bookID)
	if err != nil {
		return err
	}
	for _, categoryID := range categoryIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO books_categories (book_id, category_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			bookID, categoryID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}
