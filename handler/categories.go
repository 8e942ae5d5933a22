package handler

import (
	"net/http"
)

func (h *Handler) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories()
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"categories": categories}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
