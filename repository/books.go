package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/odese/athenaeum/data"
)

type books interface {
	CreateBook(book *data.Book) error
	GetBook(ID int64) (*data.Book, error)
	GetAllBooks(filters data.Filters) ([]*data.Book, data.Metadata, error)
	GetAvailableBooks(filters data.Filters) ([]*data.Book, data.Metadata, error)
	SearchBooks(query string, filters data.Filters) ([]*data.Book, data.Metadata, error)
	UpdateBook(book *data.Book) error
	DeleteBook(ID int64) error
}

// bookCategoriesSubquery aggregates a book's category names into an array so
// every book query returns categories without a second round trip.
const bookCategoriesSubquery = `
	(SELECT COALESCE(array_agg(categories.name ORDER BY categories.name), '{}')
	FROM categories
	INNER JOIN books_categories ON books_categories.category_id = categories.id
	WHERE books_categories.book_id = books.id)`

// CreateBook creates a new book record. The available copies of a new book
// always start out equal to its total copies.
func (r *repository) CreateBook(book *data.Book) error {
	query := `
		INSERT INTO books (title, author, isbn, description, publish_year, total_copies, available_copies, cover_image_url, publication_date, publisher)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7, $8, $9)
		RETURNING id, created_at, available_copies, version`
	args := []interface{}{
		book.Title,
		book.Author,
		book.ISBN,
		book.Description,
		book.PublishYear,
		book.TotalCopies,
		book.CoverImageURL,
		book.PublicationDate,
		book.Publisher,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&book.ID,
		&book.CreatedAt,
		&book.AvailableCopies,
		&book.Version,
	)
	if err != nil {
		switch {
		case err.Error() == `pq: duplicate key value violates unique constraint "books_isbn_key"`:
			return ErrDuplicateRecord
		default:
			return err
		}
	}
	return nil
}

// GetBook retrieves a book record by its ID.
func (r *repository) GetBook(ID int64) (*data.Book, error) {
	if ID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, created_at, title, author, isbn, description, publish_year, total_copies, available_copies, cover_image_url, publication_date, publisher, ` + bookCategoriesSubquery + `, version
		FROM books
		WHERE id = $1`
	var book data.Book
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, ID).Scan(
		&book.ID,
		&book.CreatedAt,
		&book.Title,
		&book.Author,
		&book.ISBN,
		&book.Description,
		&book.PublishYear,
		&book.TotalCopies,
		&book.AvailableCopies,
		&book.CoverImageURL,
		&book.PublicationDate,
		&book.Publisher,
		pq.Array(&book.Categories),
		&book.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &book, nil
}

// GetAllBooks retrieves a paginated list of all book records, sorted by a
// safelisted column and direction.
func (r *repository) GetAllBooks(filters data.Filters) ([]*data.Book, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, created_at, title, author, isbn, description, publish_year, total_copies, available_copies, cover_image_url, publication_date, publisher, `+bookCategoriesSubquery+`, version
		FROM books
		ORDER BY %s %s, id ASC
		LIMIT $1 OFFSET $2`,
		filters.SortColumn(), filters.SortDirection(),
	)
	return r.queryBooks(query, filters)
}

// GetAvailableBooks retrieves a paginated list of books with at least one
// available copy.
func (r *repository) GetAvailableBooks(filters data.Filters) ([]*data.Book, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, created_at, title, author, isbn, description, publish_year, total_copies, available_copies, cover_image_url, publication_date, publisher, `+bookCategoriesSubquery+`, version
		FROM books
		WHERE available_copies > 0
		ORDER BY %s %s, id ASC
		LIMIT $1 OFFSET $2`,
		filters.SortColumn(), filters.SortDirection(),
	)
	return r.queryBooks(query, filters)
}

// SearchBooks retrieves a paginated list of books whose title, author or ISBN
// contains the search term (case-insensitive substring match).
func (r *repository) SearchBooks(search string, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, created_at, title, author, isbn, description, publish_year, total_copies, available_copies, cover_image_url, publication_date, publisher, `+bookCategoriesSubquery+`, version
		FROM books
		WHERE title ILIKE '%%' || $3 || '%%'
		OR author ILIKE '%%' || $3 || '%%'
		OR isbn ILIKE '%%' || $3 || '%%'
		ORDER BY %s %s, id ASC
		LIMIT $1 OFFSET $2`,
		filters.SortColumn(), filters.SortDirection(),
	)
	return r.queryBooks(query, filters, search)
}

// queryBooks runs a book list query whose first two parameters are always
// LIMIT and OFFSET, scanning rows and pagination metadata.
func (r *repository) queryBooks(query string, filters data.Filters, extraArgs ...interface{}) ([]*data.Book, data.Metadata, error) {
	args := append([]interface{}{filters.Limit(), filters.Offset()}, extraArgs...)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	bookList := []*data.Book{}
	for rows.Next() {
		var book data.Book
		err := rows.Scan(
			&totalRecords,
			&book.ID,
			&book.CreatedAt,
			&book.Title,
			&book.Author,
			&book.ISBN,
			&book.Description,
			&book.PublishYear,
			&book.TotalCopies,
			&book.AvailableCopies,
			&book.CoverImageURL,
			&book.PublicationDate,
			&book.Publisher,
			pq.Array(&book.Categories),
			&book.Version,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		bookList = append(bookList, &book)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return bookList, metadata, nil
}

// UpdateBook updates a book record, using optimistic locking on the version
// column to avoid lost updates.
func (r *repository) UpdateBook(book *data.Book) error {
	query := `
		UPDATE books
		SET title = $1, author = $2, description = $3, publish_year = $4, total_copies = $5, available_copies = $6, cover_image_url = $7, publication_date = $8, publisher = $9, version = version + 1
		WHERE id = $10 AND version = $11
		RETURNING version`
	args := []interface{}{
		book.Title,
		book.Author,
		book.Description,
		book.PublishYear,
		book.TotalCopies,
		book.AvailableCopies,
		book.CoverImageURL,
		book.PublicationDate,
		book.Publisher,
		book.ID,
		book.Version,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&book.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}
	return nil
}

// DeleteBook deletes a book record by its ID.
func (r *repository) DeleteBook(ID int64) error {
	if ID < 1 {
		return ErrRecordNotFound
	}
	query := `
		DELETE FROM books
		WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, ID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
