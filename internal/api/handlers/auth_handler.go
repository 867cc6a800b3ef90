package handlers

import (
	"context"
	"net/http"

	"bookstore-service/internal/models"
	"bookstore-service/internal/service"
)

type AccountService interface {
	Register(ctx context.Context, req service.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req service.LoginRequest) (*service.Token, error)
}

type AuthHandler struct {
	accounts AccountService
}

func NewAuthHandler(accounts AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	user, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "user")
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	token, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "login")
		return
	}

	writeJSON(w, http.StatusOK, token)
}
