package service

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/odese/athenaeum/config"
	"github.com/odese/athenaeum/data"
	"github.com/odese/athenaeum/internal/jsonlog"
	"github.com/odese/athenaeum/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepo is an in-memory stand-in for the persistence layer. It embeds the
// Repository interface so only the methods the workflow touches need real
// implementations.
type mockRepo struct {
	repository.Repository
	users        map[int64]*data.User
	books        map[int64]*data.Book
	transactions map[int64]*data.Transaction
	nextTxnID    int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		users:        map[int64]*data.User{},
		books:        map[int64]*data.Book{},
		transactions: map[int64]*data.Transaction{},
	}
}

func (m *mockRepo) GetUserByID(ID int64) (*data.User, error) {
	user, ok := m.users[ID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return user, nil
}

func (m *mockRepo) GetBook(ID int64) (*data.Book, error) {
	book, ok := m.books[ID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return book, nil
}

func (m *mockRepo) GetActiveBorrowing(userID, bookID int64) (*data.Transaction, error) {
	for _, txn := range m.transactions {
		if txn.UserID == userID && txn.BookID == bookID && txn.Status == data.StatusBorrowed {
			return txn, nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (m *mockRepo) CountActiveBorrowings(userID int64) (int64, error) {
	var count int64
	for _, txn := range m.transactions {
		if txn.UserID == userID && txn.Status == data.StatusBorrowed {
			count++
		}
	}
	return count, nil
}

func (m *mockRepo) GetAllOverdueTransactions(now time.Time) ([]*data.Transaction, error) {
	overdue := []*data.Transaction{}
	for _, txn := range m.transactions {
		if txn.Status == data.StatusBorrowed && txn.DueDate.Before(now) {
			overdue = append(overdue, txn)
		}
	}
	return overdue, nil
}

func (m *mockRepo) GetAllTransactions(filters data.Filters) ([]*data.Transaction, data.Metadata, error) {
	txnList := []*data.Transaction{}
	for _, txn := range m.transactions {
		txnList = append(txnList, txn)
	}
	return txnList, data.CalculateMetadata(len(txnList), filters.Page, filters.PageSize), nil
}

func (m *mockRepo) GetAllTransactionsForUser(userID int64, filters data.Filters) ([]*data.Transaction, data.Metadata, error) {
	txnList := []*data.Transaction{}
	for _, txn := range m.transactions {
		if txn.UserID == userID {
			txnList = append(txnList, txn)
		}
	}
	return txnList, data.CalculateMetadata(len(txnList), filters.Page, filters.PageSize), nil
}

func (m *mockRepo) GetTransaction(ID int64) (*data.Transaction, error) {
	txn, ok := m.transactions[ID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	clone := *txn
	return &clone, nil
}

func (m *mockRepo) CreateBorrowing(txn *data.Transaction) error {
	book := m.books[txn.BookID]
	if book.AvailableCopies <= 0 {
		return repository.ErrNoCopiesAvailable
	}
	book.AvailableCopies--
	m.nextTxnID++
	txn.ID = m.nextTxnID
	txn.Version = 1
	clone := *txn
	m.transactions[txn.ID] = &clone
	return nil
}

func (m *mockRepo) CompleteReturn(txn *data.Transaction) error {
	stored, ok := m.transactions[txn.ID]
	if !ok || stored.Version != txn.Version {
		return repository.ErrEditConflict
	}
	txn.Version++
	clone := *txn
	m.transactions[txn.ID] = &clone
	book := m.books[txn.BookID]
	if book.AvailableCopies < book.TotalCopies {
		book.AvailableCopies++
	}
	return nil
}

func newTestService(repo repository.Repository) *service {
	var wg sync.WaitGroup
	logger := jsonlog.New(io.Discard, jsonlog.LevelOff)
	return New(config.Config{}, &wg, logger, repo)
}

func addUser(repo *mockRepo, ID int64, roles ...string) *data.User {
	if len(roles) == 0 {
		roles = []string{data.RoleUser}
	}
	user := &data.User{ID: ID, Name: "Test User", Activated: true, Roles: roles}
	repo.users[ID] = user
	return user
}

func addBook(repo *mockRepo, ID int64, total, available int32) *data.Book {
	book := &data.Book{ID: ID, Title: "Test Book", TotalCopies: total, AvailableCopies: available}
	repo.books[ID] = book
	return book
}

func TestBorrowBook(t *testing.T) {
	t.Run("creates a borrowed transaction and decrements availability", func(t *testing.T) {
		repo := newMockRepo()
		addUser(repo, 1)
		addBook(repo, 10, 3, 3)
		s := newTestService(repo)

		before := time.Now()
		txn, err := s.BorrowBook(1, 10)
		require.NoError(t, err)

		assert.Equal(t, data.StatusBorrowed, txn.Status)
		assert.Equal(t, int64(1), txn.UserID)
		assert.Equal(t, int64(10), txn.BookID)
		assert.Nil(t, txn.ReturnDate)
		assert.Nil(t, txn.FineAmount)
		assert.WithinDuration(t, before.AddDate(0, 0, data.DefaultBorrowDays), txn.DueDate, time.Minute)
		assert.Equal(t, int32(2), repo.books[10].AvailableCopies)
	})

	t.Run("unknown user is rejected before anything else", func(t *testing.T) {
		repo := newMockRepo()
		addBook(repo, 10, 1, 1)
		s := newTestService(repo)

		_, err := s.BorrowBook(99, 10)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("unknown book is rejected", func(t *testing.T) {
		repo := newMockRepo()
		addUser(repo, 1)
		s := newTestService(repo)

		_, err := s.BorrowBook(1, 99)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("borrowing the same book twice is rejected", func(t *testing.T) {
		repo := newMockRepo()
		addUser(repo, 1)
		addBook(repo, 10, 3, 3)
		s := newTestService(repo)

		_, err := s.BorrowBook(1, 10)
		require.NoError(t, err)
		_, err = s.BorrowBook(1, 10)
		assert.ErrorIs(t, err, ErrDuplicateBorrowing)
		assert.Equal(t, int32(2), repo.books[10].AvailableCopies)
	})

	t.Run("sixth simultaneous borrowing is rejected", func(t *testing.T) {
		repo := newMockRepo()
		addUser(repo, 1)
		s := newTestService(repo)
		for i := int64(1); i <= data.MaxBorrowingsPerUser; i++ {
			addBook(repo, i, 1, 1)
			_, err := s.BorrowBook(1, i)
			require.NoError(t, err)
		}
		addBook(repo, 6, 1, 1)

		_, err := s.BorrowBook(1, 6)
		assert.ErrorIs(t, err, ErrBorrowingLimitReached)
	})

	t.Run("duplicate check wins over the borrowing limit", func(t *testing.T) {
		repo := newMockRepo()
		addUser(repo, 1)
		s := newTestService(repo)
		for i := int64(1); i <= data.MaxBorrowingsPerUser; i++ {
			addBook(repo, i, 1, 1)
			_, err := s.BorrowBook(1, i)
			require.NoError(t, err)
		}

		_, err := s.BorrowBook(1, 1)
		assert.ErrorIs(t, err, ErrDuplicateBorrowing)
	})

	t.Run("no available copies is rejected", func(t *testing.T) {
		repo := newMockRepo()
		addUser(repo, 1)
		addBook(repo, 10, 2, 0)
		s := newTestService(repo)

		_, err := s.BorrowBook(1, 10)
		assert.ErrorIs(t, err, ErrNoCopiesAvailable)
	})
}

func TestReturnBook(t *testing.T) {
	t.Run("on-time return carries no fine and restores availability", func(t *testing.T) {
		repo := newMockRepo()
		user := addUser(repo, 1)
		addBook(repo, 10, 1, 1)
		s := newTestService(repo)

		txn, err := s.BorrowBook(1, 10)
		require.NoError(t, err)
		assert.Equal(t, int32(0), repo.books[10].AvailableCopies)

		returned, err := s.ReturnBook(user, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, data.StatusReturned, returned.Status)
		assert.NotNil(t, returned.ReturnDate)
		assert.Nil(t, returned.FineAmount)
		assert.Nil(t, returned.FinePaid)
		assert.Equal(t, int32(1), repo.books[10].AvailableCopies)
	})

	t.Run("two full days late costs a dollar", func(t *testing.T) {
		repo := newMockRepo()
		user := addUser(repo, 1)
		addBook(repo, 10, 1, 1)
		s := newTestService(repo)

		txn, err := s.BorrowBook(1, 10)
		require.NoError(t, err)
		// Shift the due date so the return happens 2 days and 2 hours late.
		// The partial day must not count towards the fine.
		stored := repo.transactions[txn.ID]
		stored.DueDate = time.Now().Add(-(50 * time.Hour))
		stored.BorrowDate = stored.DueDate.AddDate(0, 0, -data.DefaultBorrowDays)

		returned, err := s.ReturnBook(user, txn.ID)
		require.NoError(t, err)
		require.NotNil(t, returned.FineAmount)
		assert.Equal(t, 2*data.FinePerDay, *returned.FineAmount)
		require.NotNil(t, returned.FinePaid)
		assert.False(t, *returned.FinePaid)
	})

	t.Run("less than one full day late still sets the unpaid marker", func(t *testing.T) {
		repo := newMockRepo()
		user := addUser(repo, 1)
		addBook(repo, 10, 1, 1)
		s := newTestService(repo)

		txn, err := s.BorrowBook(1, 10)
		require.NoError(t, err)
		stored := repo.transactions[txn.ID]
		stored.DueDate = time.Now().Add(-(2 * time.Hour))

		returned, err := s.ReturnBook(user, txn.ID)
		require.NoError(t, err)
		require.NotNil(t, returned.FineAmount)
		assert.Equal(t, float64(0), *returned.FineAmount)
		require.NotNil(t, returned.FinePaid)
		assert.False(t, *returned.FinePaid)
	})

	t.Run("someone else's transaction is rejected for plain users", func(t *testing.T) {
		repo := newMockRepo()
		addUser(repo, 1)
		other := addUser(repo, 2)
		addBook(repo, 10, 1, 1)
		s := newTestService(repo)

		txn, err := s.BorrowBook(1, 10)
		require.NoError(t, err)

		_, err = s.ReturnBook(other, txn.ID)
		assert.ErrorIs(t, err, ErrNotTransactionOwner)
		assert.Equal(t, data.StatusBorrowed, repo.transactions[txn.ID].Status)
	})

	t.Run("librarians may return on behalf of the borrower", func(t *testing.T) {
		repo := newMockRepo()
		addUser(repo, 1)
		librarian := addUser(repo, 2, data.RoleLibrarian)
		addBook(repo, 10, 1, 1)
		s := newTestService(repo)

		txn, err := s.BorrowBook(1, 10)
		require.NoError(t, err)

		returned, err := s.ReturnBook(librarian, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, data.StatusReturned, returned.Status)
	})

	t.Run("returning twice is rejected and state is unchanged", func(t *testing.T) {
		repo := newMockRepo()
		user := addUser(repo, 1)
		addBook(repo, 10, 1, 1)
		s := newTestService(repo)

		txn, err := s.BorrowBook(1, 10)
		require.NoError(t, err)
		_, err = s.ReturnBook(user, txn.ID)
		require.NoError(t, err)

		_, err = s.ReturnBook(user, txn.ID)
		assert.ErrorIs(t, err, ErrAlreadyReturned)
		assert.Equal(t, int32(1), repo.books[10].AvailableCopies)
	})

	t.Run("unknown transaction is rejected", func(t *testing.T) {
		repo := newMockRepo()
		user := addUser(repo, 1)
		s := newTestService(repo)

		_, err := s.ReturnBook(user, 99)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("availability never exceeds total copies", func(t *testing.T) {
		repo := newMockRepo()
		user := addUser(repo, 1)
		book := addBook(repo, 10, 2, 2)
		s := newTestService(repo)

		txn, err := s.BorrowBook(1, 10)
		require.NoError(t, err)
		// A catalog edit shrinks the total below the outstanding loan count.
		book.TotalCopies = 1
		book.AvailableCopies = 1

		_, err = s.ReturnBook(user, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(1), repo.books[10].AvailableCopies)
	})
}

func TestBorrowReturnRoundTrip(t *testing.T) {
	repo := newMockRepo()
	userA := addUser(repo, 1)
	addUser(repo, 2)
	addBook(repo, 10, 1, 1)
	s := newTestService(repo)

	txn, err := s.BorrowBook(1, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(0), repo.books[10].AvailableCopies)

	_, err = s.BorrowBook(2, 10)
	assert.ErrorIs(t, err, ErrNoCopiesAvailable)

	_, err = s.ReturnBook(userA, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.books[10].AvailableCopies)

	_, err = s.BorrowBook(2, 10)
	assert.NoError(t, err)
}

func TestListTransactions(t *testing.T) {
	filters := data.Filters{Page: 1, PageSize: 10, Sort: "-borrow_date", SortSafeList: []string{"-borrow_date"}}

	t.Run("plain users are not permitted", func(t *testing.T) {
		repo := newMockRepo()
		user := addUser(repo, 1)
		s := newTestService(repo)

		_, _, err := s.ListTransactions(user, filters)
		assert.ErrorIs(t, err, ErrNotPermitted)
	})

	t.Run("librarians see all transactions", func(t *testing.T) {
		repo := newMockRepo()
		addUser(repo, 1)
		librarian := addUser(repo, 2, data.RoleLibrarian)
		addBook(repo, 10, 1, 1)
		s := newTestService(repo)

		_, err := s.BorrowBook(1, 10)
		require.NoError(t, err)

		transactions, metadata, err := s.ListTransactions(librarian, filters)
		require.NoError(t, err)
		assert.Len(t, transactions, 1)
		assert.Equal(t, 1, metadata.TotalRecords)
	})
}

func TestListOverdueTransactions(t *testing.T) {
	repo := newMockRepo()
	addUser(repo, 1)
	admin := addUser(repo, 2, data.RoleAdmin)
	addBook(repo, 10, 1, 1)
	addBook(repo, 11, 1, 1)
	s := newTestService(repo)

	overdueTxn, err := s.BorrowBook(1, 10)
	require.NoError(t, err)
	repo.transactions[overdueTxn.ID].DueDate = time.Now().AddDate(0, 0, -3)
	_, err = s.BorrowBook(1, 11)
	require.NoError(t, err)

	t.Run("plain users are not permitted", func(t *testing.T) {
		user := repo.users[1]
		_, err := s.ListOverdueTransactions(user, time.Now())
		assert.ErrorIs(t, err, ErrNotPermitted)
	})

	t.Run("only past-due borrowings are returned and status is untouched", func(t *testing.T) {
		overdue, err := s.ListOverdueTransactions(admin, time.Now())
		require.NoError(t, err)
		require.Len(t, overdue, 1)
		assert.Equal(t, overdueTxn.ID, overdue[0].ID)
		assert.Equal(t, data.StatusBorrowed, overdue[0].Status)
		assert.Nil(t, overdue[0].FineAmount)
	})
}
