package service

import "github.com/odese/athenaeum/data"

type categories interface {
	ListCategories() ([]*data.Category, error)
}

// ListCategories service retrieves all categories with their book counts.
func (s *service) ListCategories() ([]*data.Category, error) {
	return s.repo.GetAllCategories()
}
