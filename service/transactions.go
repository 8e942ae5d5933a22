package service

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/odese/athenaeum/data"
	"github.com/odese/athenaeum/internal/mailer"
	"github.com/odese/athenaeum/internal/validator"
	"github.com/odese/athenaeum/repository"
)

type transactions interface {
	BorrowBook(userID, bookID int64) (*data.Transaction, error)
	ReturnBook(actingUser *data.User, transactionID int64) (*data.Transaction, error)
	ListTransactions(actingUser *data.User, filters data.Filters) ([]*data.Transaction, data.Metadata, error)
	ListUserTransactions(userID int64, filters data.Filters) ([]*data.Transaction, data.Metadata, error)
	ListOverdueTransactions(actingUser *data.User, now time.Time) ([]*data.Transaction, error)
	NotifyOverdueBorrowers(actingUser *data.User, now time.Time) (int, error)
}

// BorrowBook service records a user borrowing a book. The preconditions are
// checked in order and the first failing one wins; the availability check is
// re-run atomically inside the repository so two concurrent borrows can't
// both take the last copy.
func (s *service) BorrowBook(userID, bookID int64) (*data.Transaction, error) {
	_, err := s.repo.GetUserByID(userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	book, err := s.GetBook(bookID)
	if err != nil {
		return nil, err
	}
	// Check whether the user already has this book borrowed
	_, err = s.repo.GetActiveBorrowing(userID, bookID)
	switch {
	case err == nil:
		return nil, ErrDuplicateBorrowing
	case errors.Is(err, repository.ErrRecordNotFound):
		// No active borrowing for this pair, carry on
	default:
		return nil, err
	}
	// Check whether the user has reached the maximum allowed borrowings
	count, err := s.repo.CountActiveBorrowings(userID)
	if err != nil {
		return nil, err
	}
	if count >= data.MaxBorrowingsPerUser {
		return nil, ErrBorrowingLimitReached
	}
	if book.AvailableCopies <= 0 {
		return nil, ErrNoCopiesAvailable
	}
	now := time.Now()
	txn := &data.Transaction{
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: now,
		DueDate:    now.AddDate(0, 0, data.DefaultBorrowDays),
		Status:     data.StatusBorrowed,
	}
	err = s.repo.CreateBorrowing(txn)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoCopiesAvailable):
			return nil, ErrNoCopiesAvailable
		default:
			return nil, err
		}
	}
	return txn, nil
}

// ReturnBook service records a book being returned. Only the borrower may
// return their own transaction unless the acting user is a librarian or
// admin. A late return attracts a fine of $0.50 per full day past the due
// date; partial days don't count.
func (s *service) ReturnBook(actingUser *data.User, transactionID int64) (*data.Transaction, error) {
	txn, err := s.repo.GetTransaction(transactionID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	privileged := actingUser.HasRole(data.RoleLibrarian, data.RoleAdmin)
	if !privileged && txn.UserID != actingUser.ID {
		return nil, ErrNotTransactionOwner
	}
	if txn.Status == data.StatusReturned {
		return nil, ErrAlreadyReturned
	}
	now := time.Now()
	txn.ReturnDate = &now
	txn.Status = data.StatusReturned
	if now.After(txn.DueDate) {
		daysLate := int64(now.Sub(txn.DueDate).Hours() / 24)
		fineAmount := float64(daysLate) * data.FinePerDay
		finePaid := false
		txn.FineAmount = &fineAmount
		txn.FinePaid = &finePaid
	}
	err = s.repo.CompleteReturn(txn)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return txn, nil
}

// ListTransactions service retrieves a paginated list of all transactions.
// Librarians and admins only.
func (s *service) ListTransactions(actingUser *data.User, filters data.Filters) ([]*data.Transaction, data.Metadata, error) {
	if err := s.requireRole(actingUser, data.RoleLibrarian, data.RoleAdmin); err != nil {
		return nil, data.Metadata{}, err
	}
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, s.failedValidation(v.Errors)
	}
	return s.repo.GetAllTransactions(filters)
}

// ListUserTransactions service retrieves a paginated list of the user's own
// transactions, most recent borrowings first.
func (s *service) ListUserTransactions(userID int64, filters data.Filters) ([]*data.Transaction, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, s.failedValidation(v.Errors)
	}
	return s.repo.GetAllTransactionsForUser(userID, filters)
}

// ListOverdueTransactions service retrieves all overdue borrowings. This is
// a read-only view: it does not rewrite transaction status, and fines are
// still computed only at return time. Librarians and admins only.
func (s *service) ListOverdueTransactions(actingUser *data.User, now time.Time) ([]*data.Transaction, error) {
	if err := s.requireRole(actingUser, data.RoleLibrarian, data.RoleAdmin); err != nil {
		return nil, err
	}
	return s.repo.GetAllOverdueTransactions(now)
}

// NotifyOverdueBorrowers service emails every user who currently holds an
// overdue book, one notice per overdue transaction, and returns the number
// of notices queued. Librarians and admins only.
func (s *service) NotifyOverdueBorrowers(actingUser *data.User, now time.Time) (int, error) {
	if err := s.requireRole(actingUser, data.RoleLibrarian, data.RoleAdmin); err != nil {
		return 0, err
	}
	overdue, err := s.repo.GetAllOverdueTransactions(now)
	if err != nil {
		return 0, err
	}
	notified := 0
	for _, txn := range overdue {
		user, err := s.repo.GetUserByID(txn.UserID)
		if err != nil {
			s.logger.PrintError(err, map[string]string{"transaction_id": strconv.FormatInt(txn.ID, 10)})
			continue
		}
		book, err := s.repo.GetBook(txn.BookID)
		if err != nil {
			s.logger.PrintError(err, map[string]string{"transaction_id": strconv.FormatInt(txn.ID, 10)})
			continue
		}
		recipient := user.Email
		templateData := map[string]string{
			"userName":  strings.Split(user.Name, " ")[0],
			"bookTitle": book.Title,
			"dueDate":   txn.DueDate.Format("2 January 2006"),
		}
		s.background(func() {
			mailer := mailer.New(s.config.SMTP.Host, s.config.SMTP.Port, s.config.SMTP.Username, s.config.SMTP.Password, s.config.SMTP.Sender)
			err := mailer.Send(recipient, "overdue_notice.tmpl", templateData)
			if err != nil {
				s.logger.PrintError(err, nil)
			}
		})
		notified++
	}
	return notified, nil
}
