package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/odese/athenaeum/data/dto"
	"github.com/odese/athenaeum/internal/validator"
	"github.com/odese/athenaeum/service"
)

var transactionSortSafeList = []string{
	"id", "borrow_date", "due_date", "status",
	"-id", "-borrow_date", "-due_date", "-status",
}

func (h *Handler) borrowBookHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.BorrowBookRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user := h.contextGetUser(r)
	transaction, err := h.service.BorrowBook(user.ID, requestBody.BookID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrDuplicateBorrowing),
			errors.Is(err, service.ErrBorrowingLimitReached),
			errors.Is(err, service.ErrNoCopiesAvailable):
			h.conflictResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/transactions/%d", transaction.ID))
	err = h.encodeJSON(w, http.StatusCreated, envelope{"transaction": transaction}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) returnBookHandler(w http.ResponseWriter, r *http.Request) {
	transactionID, err := h.readIDParam(r, "transactionId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	user := h.contextGetUser(r)
	transaction, err := h.service.ReturnBook(user, transactionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrNotTransactionOwner),
			errors.Is(err, service.ErrAlreadyReturned):
			h.conflictResponse(w, r, err)
		case errors.Is(err, service.ErrEditConflict):
			h.editConflictResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"transaction": transaction}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) listTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListTransactions
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "-borrow_date")
	qsInput.Filters.SortSafeList = transactionSortSafeList
	user := h.contextGetUser(r)
	transactions, metadata, err := h.service.ListTransactions(user, qsInput.Filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"transactions": transactions, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) listUserTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListTransactions
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "-borrow_date")
	qsInput.Filters.SortSafeList = transactionSortSafeList
	user := h.contextGetUser(r)
	transactions, metadata, err := h.service.ListUserTransactions(user.ID, qsInput.Filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"transactions": transactions, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) listOverdueTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	user := h.contextGetUser(r)
	transactions, err := h.service.ListOverdueTransactions(user, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"transactions": transactions}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) notifyOverdueBorrowersHandler(w http.ResponseWriter, r *http.Request) {
	user := h.contextGetUser(r)
	notified, err := h.service.NotifyOverdueBorrowers(user, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"notices_queued": notified}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
