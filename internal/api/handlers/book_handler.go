package handlers

import (
	"context"
	"net/http"
	"strconv"

	"bookstore-service/internal/auth"
	"bookstore-service/internal/models"
	"bookstore-service/internal/service"
)

type CatalogService interface {
	List(ctx context.Context, q service.ListBooksQuery) (models.Page[models.Book], error)
	Get(ctx context.Context, id int64) (*models.Book, error)
	Create(ctx context.Context, caller *auth.Identity, req service.BookRequest) (*models.Book, error)
	Update(ctx context.Context, caller *auth.Identity, id int64, req service.BookRequest) (*models.Book, error)
	Delete(ctx context.Context, caller *auth.Identity, id int64) error
	Movements(ctx context.Context, caller *auth.Identity, id int64) ([]models.StockMovement, error)
}

type BookHandler struct {
	catalog CatalogService
}

func NewBookHandler(catalog CatalogService) *BookHandler {
	return &BookHandler{catalog: catalog}
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	page, ok := pageRequest(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	books, err := h.catalog.List(r.Context(), service.ListBooksQuery{
		Page:   page,
		Search: q.Get("search"),
		Genre:  q.Get("genre"),
	})
	if err != nil {
		writeServiceError(w, r, err, "books")
		return
	}

	writeJSON(w, http.StatusOK, models.MapPage(books, toBookSummary))
}

func (h *BookHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "book")
	if !ok {
		return
	}

	book, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "book")
		return
	}

	writeJSON(w, http.StatusOK, toBookResponse(book))
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.BookRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	book, err := h.catalog.Create(r.Context(), caller(r), req)
	if err != nil {
		writeServiceError(w, r, err, "book")
		return
	}

	w.Header().Set("Location", "/api/books/"+strconv.FormatInt(book.BookID, 10))
	writeJSON(w, http.StatusCreated, toBookResponse(book))
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "book")
	if !ok {
		return
	}

	var req service.BookRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	book, err := h.catalog.Update(r.Context(), caller(r), id, req)
	if err != nil {
		writeServiceError(w, r, err, "book")
		return
	}

	writeJSON(w, http.StatusOK, toBookResponse(book))
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "book")
	if !ok {
		return
	}

	if err := h.catalog.Delete(r.Context(), caller(r), id); err != nil {
		writeServiceError(w, r, err, "book")
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

func (h *BookHandler) Movements(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "book")
	if !ok {
		return
	}

	movements, err := h.catalog.Movements(r.Context(), caller(r), id)
	if err != nil {
		writeServiceError(w, r, err, "book")
		return
	}

	out := make([]MovementResponse, len(movements))
	for i, m := range movements {
		out[i] = toMovementResponse(m)
	}
	writeJSON(w, http.StatusOK, out)
}
