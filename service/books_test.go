package service

import (
	"testing"

	"github.com/odese/athenaeum/data"
	"github.com/odese/athenaeum/data/dto"
	"github.com/odese/athenaeum/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (m *mockRepo) CreateBook(book *data.Book) error {
	for _, existing := range m.books {
		if existing.ISBN == book.ISBN {
			return repository.ErrDuplicateRecord
		}
	}
	book.ID = int64(len(m.books) + 1)
	book.Version = 1
	m.books[book.ID] = book
	return nil
}

func (m *mockRepo) UpdateBook(book *data.Book) error {
	stored, ok := m.books[book.ID]
	if !ok || stored.Version != book.Version {
		return repository.ErrEditConflict
	}
	book.Version++
	m.books[book.ID] = book
	return nil
}

func (m *mockRepo) DeleteBook(ID int64) error {
	if _, ok := m.books[ID]; !ok {
		return repository.ErrRecordNotFound
	}
	delete(m.books, ID)
	return nil
}

func (m *mockRepo) GetOrCreateCategory(name, description string) (*data.Category, error) {
	return &data.Category{ID: 1, Name: name, Description: description}, nil
}

func (m *mockRepo) SetCategoriesForBook(bookID int64, categoryIDs []int64) error {
	return nil
}

func validCreateBookBody() dto.CreateBookRequestBody {
	return dto.CreateBookRequestBody{
		Title:       "The Go Programming Language",
		Author:      "Alan Donovan",
		ISBN:        "9780134190440",
		PublishYear: 2015,
		TotalCopies: 4,
		Categories:  []dto.CategoryInput{{Name: "Programming"}},
	}
}

func TestCreateBook(t *testing.T) {
	t.Run("librarians create books with availability equal to total copies", func(t *testing.T) {
		repo := newMockRepo()
		librarian := addUser(repo, 1, data.RoleLibrarian)
		s := newTestService(repo)

		book, err := s.CreateBook(librarian, validCreateBookBody())
		require.NoError(t, err)
		assert.Equal(t, int32(4), book.TotalCopies)
		assert.Equal(t, int32(4), book.AvailableCopies)
		assert.Equal(t, []string{"Programming"}, book.Categories)
	})

	t.Run("plain users are not permitted", func(t *testing.T) {
		repo := newMockRepo()
		user := addUser(repo, 1)
		s := newTestService(repo)

		_, err := s.CreateBook(user, validCreateBookBody())
		assert.ErrorIs(t, err, ErrNotPermitted)
	})

	t.Run("duplicate ISBN is rejected", func(t *testing.T) {
		repo := newMockRepo()
		admin := addUser(repo, 1, data.RoleAdmin)
		s := newTestService(repo)

		_, err := s.CreateBook(admin, validCreateBookBody())
		require.NoError(t, err)
		_, err = s.CreateBook(admin, validCreateBookBody())
		assert.ErrorIs(t, err, ErrDuplicateISBN)
	})

	t.Run("missing title fails validation", func(t *testing.T) {
		repo := newMockRepo()
		librarian := addUser(repo, 1, data.RoleLibrarian)
		s := newTestService(repo)

		requestBody := validCreateBookBody()
		requestBody.Title = ""
		_, err := s.CreateBook(librarian, requestBody)
		assert.ErrorIs(t, err, ErrFailedValidation)
	})

	t.Run("malformed publication date is a bad request", func(t *testing.T) {
		repo := newMockRepo()
		librarian := addUser(repo, 1, data.RoleLibrarian)
		s := newTestService(repo)

		requestBody := validCreateBookBody()
		malformed := "15-09-2015"
		requestBody.PublicationDate = &malformed
		_, err := s.CreateBook(librarian, requestBody)
		assert.ErrorIs(t, err, ErrBadRequest)
	})
}

func TestUpdateBook(t *testing.T) {
	t.Run("absent fields keep their current values", func(t *testing.T) {
		repo := newMockRepo()
		librarian := addUser(repo, 1, data.RoleLibrarian)
		s := newTestService(repo)

		created, err := s.CreateBook(librarian, validCreateBookBody())
		require.NoError(t, err)

		newTitle := "The Go Programming Language, 2nd Edition"
		updated, err := s.UpdateBook(librarian, created.ID, dto.UpdateBookRequestBody{Title: &newTitle})
		require.NoError(t, err)
		assert.Equal(t, newTitle, updated.Title)
		assert.Equal(t, created.Author, updated.Author)
		assert.Equal(t, created.TotalCopies, updated.TotalCopies)
	})

	t.Run("available copies may not exceed total copies", func(t *testing.T) {
		repo := newMockRepo()
		librarian := addUser(repo, 1, data.RoleLibrarian)
		s := newTestService(repo)

		created, err := s.CreateBook(librarian, validCreateBookBody())
		require.NoError(t, err)

		tooMany := created.TotalCopies + 1
		_, err = s.UpdateBook(librarian, created.ID, dto.UpdateBookRequestBody{AvailableCopies: &tooMany})
		assert.ErrorIs(t, err, ErrFailedValidation)
	})

	t.Run("unknown book is rejected", func(t *testing.T) {
		repo := newMockRepo()
		librarian := addUser(repo, 1, data.RoleLibrarian)
		s := newTestService(repo)

		newTitle := "Anything"
		_, err := s.UpdateBook(librarian, 99, dto.UpdateBookRequestBody{Title: &newTitle})
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestDeleteBook(t *testing.T) {
	t.Run("only admins may delete", func(t *testing.T) {
		repo := newMockRepo()
		librarian := addUser(repo, 1, data.RoleLibrarian)
		admin := addUser(repo, 2, data.RoleAdmin)
		s := newTestService(repo)

		created, err := s.CreateBook(librarian, validCreateBookBody())
		require.NoError(t, err)

		err = s.DeleteBook(librarian, created.ID)
		assert.ErrorIs(t, err, ErrNotPermitted)

		err = s.DeleteBook(admin, created.ID)
		assert.NoError(t, err)

		err = s.DeleteBook(admin, created.ID)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}
