package dto

import "github.com/odese/athenaeum/data"

// CategoryInput references a category by name, creating it on demand.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateBookRequestBody defines a request body for the CreateBook service.
type CreateBookRequestBody struct {
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	ISBN            string          `json:"isbn"`
	Description     string          `json:"description"`
	PublishYear     int32           `json:"publish_year"`
	TotalCopies     int32           `json:"total_copies"`
	CoverImageURL   string          `json:"cover_image_url"`
	PublicationDate *string         `json:"publication_date"`
	Publisher       string          `json:"publisher"`
	Categories      []CategoryInput `json:"categories"`
}

// UpdateBookRequestBody defines a request body for the UpdateBook service.
// Fields are pointers so absent keys leave the current value unchanged.
type UpdateBookRequestBody struct {
	Title           *string         `json:"title"`
	Author          *string         `json:"author"`
	Description     *string         `json:"description"`
	PublishYear     *int32          `json:"publish_year"`
	TotalCopies     *int32          `json:"total_copies"`
	AvailableCopies *int32          `json:"available_copies"`
	CoverImageURL   *string         `json:"cover_image_url"`
	PublicationDate *string         `json:"publication_date"`
	Publisher       *string         `json:"publisher"`
	Categories      []CategoryInput `json:"categories"`
}

// QsListBooks defines query strings for the ListBooks service.
type QsListBooks struct {
	Filters data.Filters
}

// QsSearchBooks defines query strings for the SearchBooks service.
type QsSearchBooks struct {
	Query   string
	Filters data.Filters
}
