package data

import "time"

// Transaction status values. A transaction is created as StatusBorrowed and
// moves to StatusReturned exactly once; StatusOverdue and StatusLost are
// declared for administrative use but no workflow transitions into them.
const (
	StatusBorrowed = "BORROWED"
	StatusReturned = "RETURNED"
	StatusOverdue  = "OVERDUE"
	StatusLost     = "LOST"
)

// Loan policy constants.
const (
	// MaxBorrowingsPerUser caps the number of simultaneously borrowed books.
	MaxBorrowingsPerUser = 5
	// DefaultBorrowDays is the loan period added to the borrow date.
	DefaultBorrowDays = 14
	// FinePerDay is the late fee, in dollars, per full day past the due date.
	FinePerDay = 0.50
)

// Transaction records a single borrow/return event. FineAmount and FinePaid
// are set only when the book comes back after its due date.
type Transaction struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	BookID     int64      `json:"book_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     string     `json:"status"`
	FineAmount *float64   `json:"fine_amount,omitempty"`
	FinePaid   *bool      `json:"fine_paid,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Version    int32      `json:"-"`
}

// IsOverdue reports whether an unreturned transaction is past its due date.
func (t *Transaction) IsOverdue(now time.Time) bool {
	return t.Status == StatusBorrowed && now.After(t.DueDate)
}
