package service

import (
	"errors"
	"net/http"
	"time"

	"github.com/odese/athenaeum/clients"
	"github.com/odese/athenaeum/data"
	"github.com/odese/athenaeum/data/dto"
	"github.com/odese/athenaeum/internal/validator"
	"github.com/odese/athenaeum/repository"
)

type books interface {
	CreateBook(actingUser *data.User, requestBody dto.CreateBookRequestBody) (*data.Book, error)
	GetBook(bookID int64) (*data.Book, error)
	ListBooks(filters data.Filters) ([]*data.Book, data.Metadata, error)
	ListAvailableBooks(filters data.Filters) ([]*data.Book, data.Metadata, error)
	SearchBooks(query string, filters data.Filters) ([]*data.Book, data.Metadata, error)
	UpdateBook(actingUser *data.User, bookID int64, requestBody dto.UpdateBookRequestBody) (*data.Book, error)
	DeleteBook(actingUser *data.User, bookID int64) error
	UpdateBookCover(actingUser *data.User, bookID int64, r *http.Request) (*data.Book, error)
}

// parseDate parses a YYYY-MM-DD date string into a *time.Time.
func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, ErrBadRequest
	}
	return &t, nil
}

// CreateBook service creates a new book together with its categories, which
// are created on demand when referenced by name.
func (s *service) CreateBook(actingUser *data.User, requestBody dto.CreateBookRequestBody) (*data.Book, error) {
	if err := s.requireRole(actingUser, data.RoleLibrarian, data.RoleAdmin); err != nil {
		return nil, err
	}
	publicationDate, err := parseDate(requestBody.PublicationDate)
	if err != nil {
		return nil, err
	}
	book := &data.Book{
		Title:           requestBody.Title,
		Author:          requestBody.Author,
		ISBN:            requestBody.ISBN,
		Description:     requestBody.Description,
		PublishYear:     requestBody.PublishYear,
		TotalCopies:     requestBody.TotalCopies,
		AvailableCopies: requestBody.TotalCopies,
		CoverImageURL:   requestBody.CoverImageURL,
		PublicationDate: publicationDate,
		Publisher:       requestBody.Publisher,
	}
	for _, category := range requestBody.Categories {
		book.Categories = append(book.Categories, category.Name)
	}
	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	err = s.repo.CreateBook(book)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, ErrDuplicateISBN
		default:
			return nil, err
		}
	}
	err = s.applyCategories(book.ID, requestBody.Categories)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// applyCategories upserts each referenced category by name and replaces the
// book's category set with the result.
func (s *service) applyCategories(bookID int64, categoryInputs []dto.CategoryInput) error {
	categoryIDs := make([]int64, 0, len(categoryInputs))
	for _, input := range categoryInputs {
		category, err := s.repo.GetOrCreateCategory(input.Name, input.Description)
		if err != nil {
			return err
		}
		categoryIDs = append(categoryIDs, category.ID)
	}
	return s.repo.SetCategoriesForBook(bookID, categoryIDs)
}

// GetBook service retrieves the details of a book.
func (s *service) GetBook(bookID int64) (*data.Book, error) {
	book, err := s.repo.GetBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return book, nil
}

// ListBooks service retrieves a paginated list of books, sorted by a
// caller-specified column and direction.
func (s *service) ListBooks(filters data.Filters) ([]*data.Book, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, s.failedValidation(v.Errors)
	}
	return s.repo.GetAllBooks(filters)
}

// ListAvailableBooks service retrieves a paginated list of books with at
// least one available copy.
func (s *service) ListAvailableBooks(filters data.Filters) ([]*data.Book, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, s.failedValidation(v.Errors)
	}
	return s.repo.GetAvailableBooks(filters)
}

// SearchBooks service retrieves a paginated list of books matching a
// substring search on title, author or ISBN.
func (s *service) SearchBooks(query string, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	v := validator.New()
	v.Check(query != "", "query", "must be provided")
	data.ValidateFilters(v, filters)
	if !v.Valid() {
		return nil, data.Metadata{}, s.failedValidation(v.Errors)
	}
	return s.repo.SearchBooks(query, filters)
}

// UpdateBook service updates the details of a specific book. Absent fields
// keep their current values.
func (s *service) UpdateBook(actingUser *data.User, bookID int64, requestBody dto.UpdateBookRequestBody) (*data.Book, error) {
	if err := s.requireRole(actingUser, data.RoleLibrarian, data.RoleAdmin); err != nil {
		return nil, err
	}
	book, err := s.GetBook(bookID)
	if err != nil {
		return nil, err
	}
	if requestBody.Title != nil {
		book.Title = *requestBody.Title
	}
	if requestBody.Author != nil {
		book.Author = *requestBody.Author
	}
	if requestBody.Description != nil {
		book.Description = *requestBody.Description
	}
	if requestBody.PublishYear != nil {
		book.PublishYear = *requestBody.PublishYear
	}
	if requestBody.TotalCopies != nil {
		book.TotalCopies = *requestBody.TotalCopies
	}
	if requestBody.AvailableCopies != nil {
		book.AvailableCopies = *requestBody.AvailableCopies
	}
	if requestBody.CoverImageURL != nil {
		book.CoverImageURL = *requestBody.CoverImageURL
	}
	if requestBody.PublicationDate != nil {
		publicationDate, err := parseDate(requestBody.PublicationDate)
		if err != nil {
			return nil, err
		}
		book.PublicationDate = publicationDate
	}
	if requestBody.Publisher != nil {
		book.Publisher = *requestBody.Publisher
	}
	if requestBody.Categories != nil {
		book.Categories = book.Categories[:0]
		for _, category := range requestBody.Categories {
			book.Categories = append(book.Categories, category.Name)
		}
	}
	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	err = s.repo.UpdateBook(book)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	if requestBody.Categories != nil {
		err = s.applyCategories(book.ID, requestBody.Categories)
		if err != nil {
			return nil, err
		}
	}
	return book, nil
}

// DeleteBook service deletes a specific book.
func (s *service) DeleteBook(actingUser *data.User, bookID int64) error {
	if err := s.requireRole(actingUser, data.RoleAdmin); err != nil {
		return err
	}
	err := s.repo.DeleteBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	return nil
}

// UpdateBookCover service uploads a new cover image for a book to object
// storage and records its public URL.
func (s *service) UpdateBookCover(actingUser *data.User, bookID int64, r *http.Request) (*data.Book, error) {
	if err := s.requireRole(actingUser, data.RoleLibrarian, data.RoleAdmin); err != nil {
		return nil, err
	}
	book, err := s.GetBook(bookID)
	if err != nil {
		return nil, err
	}
	err = r.ParseMultipartForm(5000)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesError):
			return nil, ErrContentTooLarge
		default:
			return nil, ErrBadRequest
		}
	}
	file, fileHeader, err := r.FormFile("cover")
	if err != nil {
		return nil, ErrBadRequest
	}
	defer file.Close()
	buffer, mtype, err := s.detectMimeType(file, fileHeader)
	if err != nil {
		return nil, err
	}
	if ok := validator.Mime(mtype, "image/jpeg", "image/png"); !ok {
		return nil, ErrUnsupportedMediaType
	}
	s3Client, err := clients.NewS3Client(s.config)
	if err != nil {
		return nil, err
	}
	coverURL, err := s.uploadCoverToS3(s3Client, buffer, mtype, fileHeader)
	if err != nil {
		return nil, err
	}
	book.CoverImageURL = coverURL
	err = s.repo.UpdateBook(book)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return book, nil
}
