package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/odese/athenaeum/data"
)

type transactions interface {
	GetTransaction(ID int64) (*data.Transaction, error)
	GetActiveBorrowing(userID, bookID int64) (*data.Transaction, error)
	CountActiveBorrowings(userID int64) (int64, error)
	GetAllOverdueTransactions(now time.Time) ([]*data.Transaction, error)
	GetAllTransactions(filters data.Filters) ([]*data.Transaction, data.Metadata, error)
	GetAllTransactionsForUser(userID int64, filters data.Filters) ([]*data.Transaction, data.Metadata, error)
	CreateBorrowing(txn *data.Transaction) error
	CompleteReturn(txn *data.Transaction) error
}

const transactionColumns = `id, user_id, book_id, borrow_date, due_date, return_date, status, fine_amount, fine_paid, notes, version`

func scanTransaction(row interface{ Scan(...interface{}) error }, txn *data.Transaction) error {
	return row.Scan(
		&txn.ID,
		&txn.UserID,
		&txn.BookID,
		&txn.BorrowDate,
		&txn.DueDate,
		&txn.ReturnDate,
		&txn.Status,
		&txn.FineAmount,
		&txn.FinePaid,
		&txn.Notes,
		&txn.Version,
	)
}

// GetTransaction retrieves a transaction record by its ID.
func (r *repository) GetTransaction(ID int64) (*data.Transaction, error) {
	if ID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1`
	var txn data.Transaction
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := scanTransaction(r.db.QueryRowContext(ctx, query, ID), &txn)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &txn, nil
}

// GetActiveBorrowing retrieves the BORROWED-status transaction for a
// (user, book) pair, if any. At most one such transaction exists at a time.
func (r *repository) GetActiveBorrowing(userID, bookID int64) (*data.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = $1 AND user_id = $2 AND book_id = $3`
	var txn data.Transaction
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := scanTransaction(r.db.QueryRowContext(ctx, query, data.StatusBorrowed, userID, bookID), &txn)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &txn, nil
}

// CountActiveBorrowings counts the BORROWED-status transactions for a user.
func (r *repository) CountActiveBorrowings(userID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE status = $1 AND user_id = $2`
	var count int64
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, data.StatusBorrowed, userID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetAllOverdueTransactions retrieves all BORROWED-status transactions whose
// due date has passed. The status column is not rewritten.
func (r *repository) GetAllOverdueTransactions(now time.Time) ([]*data.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = $1 AND due_date < $2
		ORDER BY due_date ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, data.StatusBorrowed, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	txnList := []*data.Transaction{}
	for rows.Next() {
		var txn data.Transaction
		if err := scanTransaction(rows, &txn); err != nil {
			return nil, err
		}
		txnList = append(txnList, &txn)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return txnList, nil
}

// GetAllTransactions retrieves a paginated list of all transaction records,
// sorted by a safelisted column and direction.
func (r *repository) GetAllTransactions(filters data.Filters) ([]*data.Transaction, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), `+transactionColumns+`
		FROM transactions
		ORDER BY %s %s, id ASC
		LIMIT $1 OFFSET $2`,
		filters.SortColumn(), filters.SortDirection(),
	)
	return r.queryTransactions(query, filters, filters.Limit(), filters.Offset())
}

// GetAllTransactionsForUser retrieves a paginated list of a user's
// transactions, most recent borrowings first.
func (r *repository) GetAllTransactionsForUser(userID int64, filters data.Filters) ([]*data.Transaction, data.Metadata, error) {
	query := `
		SELECT count(*) OVER(), ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY borrow_date DESC, id ASC
		LIMIT $2 OFFSET $3`
	return r.queryTransactions(query, filters, userID, filters.Limit(), filters.Offset())
}

func (r *repository) queryTransactions(query string, filters data.Filters, args ...interface{}) ([]*data.Transaction, data.Metadata, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	txnList := []*data.Transaction{}
	for rows.Next() {
		var txn data.Transaction
		err := rows.Scan(
			&totalRecords,
			&txn.ID,
			&txn.UserID,
			&txn.BookID,
			&txn.BorrowDate,
			&txn.DueDate,
			&txn.ReturnDate,
			&txn.Status,
			&txn.FineAmount,
			&txn.FinePaid,
			&txn.Notes,
			&txn.Version,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		txnList = append(txnList, &txn)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return txnList, metadata, nil
}

// CreateBorrowing persists a new borrowing as a single unit of work: the
// availability decrement and the transaction insert either both commit or
// both roll back. The decrement is guarded by available_copies > 0, which
// serializes concurrent borrows of the last copy on the book row.
func (r *repository) CreateBorrowing(txn *data.Transaction) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	result, err := tx.ExecContext(ctx, `
		UPDATE books
		SET available_copies = available_copies - 1, version = version + 1
		WHERE id = $1 AND available_copies > 0`,
		txn.BookID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNoCopiesAvailable
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, book_id, borrow_date, due_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, version`,
		txn.UserID, txn.BookID, txn.BorrowDate, txn.DueDate, txn.Status, txn.Notes,
	).Scan(&txn.ID, &txn.Version)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// CompleteReturn persists a return as a single unit of work: the transaction
// update and the availability increment either both commit or both roll back.
// The increment is clamped to total_copies so a catalog edit that shrank the
// total can never push availability past it.
func (r *repository) CompleteReturn(txn *data.Transaction) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	err = tx.QueryRowContext(ctx, `
		UPDATE transactions
		SET return_date = $1, status = $2, fine_amount = $3, fine_paid = $4, version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version`,
		txn.ReturnDate, txn.Status, txn.FineAmount, txn.FinePaid, txn.ID, txn.Version,
	).Scan(&txn.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE books
		SET available_copies = LEAST(available_copies + 1, total_copies), version = version + 1
		WHERE id = $1`,
		txn.BookID)
	if err != nil {
		return err
	}
	return tx.Commit()
}
