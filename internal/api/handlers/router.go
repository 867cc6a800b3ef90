package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterDeps struct {
	Books  *BookHandler
	Orders *OrderHandler
	Auth   *AuthHandler
	Tokens TokenParser
	Store  Pinger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Health(d.Store))

	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(d.Tokens))

		r.Post("/auth/register", d.Auth.Register)
		r.Post("/auth/login", d.Auth.Login)

		r.Route("/books", func(r chi.Router) {
			r.Get("/", d.Books.List)
			r.Post("/", d.Books.Create)
			r.Get("/{id}", d.Books.GetByID)
			r.Put("/{id}", d.Books.Update)
			r.Delete("/{id}", d.Books.Delete)
			r.Get("/{id}/movements", d.Books.Movements)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", d.Orders.List)
			r.Post("/", d.Orders.Create)
			r.Get("/my-orders", d.Orders.ListMine)
			r.Get("/{id}", d.Orders.GetByID)
			r.Put("/{id}/status", d.Orders.UpdateStatus)
		})
	})

	return r
}
