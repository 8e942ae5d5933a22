package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransactionIsOverdue(t *testing.T) {
	now := time.Now()

	borrowed := &Transaction{Status: StatusBorrowed, DueDate: now.Add(-time.Hour)}
	assert.True(t, borrowed.IsOverdue(now))

	notDue := &Transaction{Status: StatusBorrowed, DueDate: now.Add(time.Hour)}
	assert.False(t, notDue.IsOverdue(now))

	returned := &Transaction{Status: StatusReturned, DueDate: now.Add(-time.Hour)}
	assert.False(t, returned.IsOverdue(now))
}
