package dto

import "github.com/odese/athenaeum/data"

// BorrowBookRequestBody defines a request body for the BorrowBook service.
type BorrowBookRequestBody struct {
	BookID int64 `json:"book_id"`
}

// QsListTransactions defines query strings for the ListTransactions service.
type QsListTransactions struct {
	Filters data.Filters
}
