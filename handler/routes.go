package handler

import (
	"expvar"
	"net/http"

	"github.com/julienschmidt/httprouter"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func (h *Handler) Routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(h.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(h.methodNotAllowed)

	// Catalog reads are public. showBookHandler also serves /v1/books/available
	// and /v1/books/search through the :bookId segment.
	router.HandlerFunc(http.MethodGet, "/v1/books", h.listBooksHandler)
	router.HandlerFunc(http.MethodGet, "/v1/books/:bookId", h.showBookHandler)
	router.HandlerFunc(http.MethodPost, "/v1/books", h.requireActivatedUser(h.createBookHandler))
	router.HandlerFunc(http.MethodPut, "/v1/books/:bookId", h.requireActivatedUser(h.updateBookHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/books/:bookId", h.requireActivatedUser(h.deleteBookHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/books/:bookId/cover", h.requireActivatedUser(h.updateBookCoverHandler))

	router.HandlerFunc(http.MethodGet, "/v1/categories", h.listCategoriesHandler)

	router.HandlerFunc(http.MethodGet, "/v1/transactions", h.requireActivatedUser(h.listTransactionsHandler))
	router.HandlerFunc(http.MethodGet, "/v1/transactions/user", h.requireActivatedUser(h.listUserTransactionsHandler))
	router.HandlerFunc(http.MethodPost, "/v1/transactions/borrow", h.requireActivatedUser(h.borrowBookHandler))
	router.HandlerFunc(http.MethodPost, "/v1/transactions/return/:transactionId", h.requireActivatedUser(h.returnBookHandler))
	router.HandlerFunc(http.MethodGet, "/v1/transactions/overdue", h.requireActivatedUser(h.listOverdueTransactionsHandler))
	router.HandlerFunc(http.MethodPost, "/v1/transactions/overdue/notify", h.requireActivatedUser(h.notifyOverdueBorrowersHandler))

	router.HandlerFunc(http.MethodPost, "/v1/users", h.registerUserHandler)
	router.HandlerFunc(http.MethodPut, "/v1/users/activated", h.activateUserHandler)
	router.HandlerFunc(http.MethodGet, "/v1/users/profile", h.requireActivatedUser(h.showUserHandler))

	router.HandlerFunc(http.MethodPost, "/v1/tokens/activation", h.createActivationTokenHandler)
	router.HandlerFunc(http.MethodPost, "/v1/tokens/authentication", h.createAuthenticationTokenHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/tokens/authentication", h.requireAuthenticatedUser(h.deleteAuthenticationTokenHandler))

	router.HandlerFunc(http.MethodGet, "/debug/vars", h.basicAuth(expvar.Handler().ServeHTTP))
	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", h.healthcheckHandler)

	// Swagger routes
	router.HandlerFunc(http.MethodGet, "/spec", h.handleSwaggerFile())
	router.HandlerFunc(http.MethodGet, "/docs/*any", httpSwagger.Handler(httpSwagger.URL("/spec")))

	return h.metrics(h.recoverPanic(h.enableCORS(h.rateLimit(h.authenticate(router)))))
}
