package handlers

import (
	"context"
	"net/http"
	"strconv"

	"bookstore-service/internal/auth"
	"bookstore-service/internal/models"
	"bookstore-service/internal/service"
)

type OrderService interface {
	List(ctx context.Context, caller *auth.Identity, page models.PageRequest) (models.Page[models.Order], error)
	ListMine(ctx context.Context, caller *auth.Identity, page models.PageRequest) (models.Page[models.Order], error)
	Get(ctx context.Context, caller *auth.Identity, id int64) (*models.Order, error)
	Create(ctx context.Context, caller *auth.Identity, req service.CreateOrderRequest) (*models.Order, error)
	UpdateStatus(ctx context.Context, caller *auth.Identity, id int64, name string) (*models.Order, error)
}

type OrderHandler struct {
	orders OrderService
}

func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, ok := pageRequest(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.List(r.Context(), caller(r), page)
	if err != nil {
		writeServiceError(w, r, err, "orders")
		return
	}

	writeJSON(w, http.StatusOK, models.MapPage(orders, toOrderResponse))
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, ok := pageRequest(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListMine(r.Context(), caller(r), page)
	if err != nil {
		writeServiceError(w, r, err, "orders")
		return
	}

	writeJSON(w, http.StatusOK, models.MapPage(orders, toOrderResponse))
}

func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "order")
	if !ok {
		return
	}

	order, err := h.orders.Get(r.Context(), caller(r), id)
	if err != nil {
		writeServiceError(w, r, err, "order")
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	order, err := h.orders.Create(r.Context(), caller(r), req)
	if err != nil {
		writeServiceError(w, r, err, "order")
		return
	}

	w.Header().Set("Location", "/api/orders/"+strconv.FormatInt(order.OrderID, 10))
	writeJSON(w, http.StatusCreated, toOrderResponse(*order))
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "order")
	if !ok {
		return
	}

	var req StatusUpdateRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), caller(r), id, req.Status)
	if err != nil {
		writeServiceError(w, r, err, "order")
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}
