package repository

import (
	"database/sql"
)

type Repository interface {
	books
	categories
	users
	roles
	tokens
	transactions
}

// repository defines the app's repository layer.
type repository struct {
	db *sql.DB
}

// New creates a new instance of Repository.
func New(db *sql.DB) *repository {
	return &repository{db: db}
}
