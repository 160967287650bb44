package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"

	"cartflow/pkg/cart"
	"cartflow/pkg/logger"
	"cartflow/pkg/otel"
)

const requestIDHeader = "X-Request-ID"

// itemView is an Item as returned to clients.
type itemView struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	ImageURL string      `json:"image_url"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
	Subtotal json.Number `json:"subtotal"`
}

// cartView is the cart as returned to clients.
type cartView struct {
	Items []itemView  `json:"items"`
	Count int         `json:"count"`
	Total json.Number `json:"total"`
}

type server struct {
	log *logger.Logger
}

func newRouter(store *cart.Store, log *logger.Logger, tracer trace.Tracer) http.Handler {
	s := &server{log: log}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(traceMiddleware(tracer))

	api := r.PathPrefix("/cart").Subrouter()
	api.Use(storeMiddleware(store))
	api.HandleFunc("", s.getCartHandler).Methods(http.MethodGet)
	api.HandleFunc("", s.clearCartHandler).Methods(http.MethodDelete)
	api.HandleFunc("/items", s.addToCartHandler).Methods(http.MethodPost)
	api.HandleFunc("/items/{id}/increment", s.incrementHandler).Methods(http.MethodPost)
	api.HandleFunc("/items/{id}/decrement", s.decrementHandler).Methods(http.MethodPost)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	return r
}

// getCartHandler returns the cart.
// @Summary Get cart
// @Produce json
// @Success 200 {object} cartView
// @Router /cart [get]
func (s *server) getCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getCartHandler")
	defer span.End()

	store, err := cart.FromContext(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeCart(w, http.StatusOK, store)
}

// addToCartHandler adds a product or increments its line.
// @Summary Add to cart
// @Accept json
// @Produce json
// @Param product body cart.Product true "Product"
// @Success 201 {object} cartView
// @Router /cart/items [post]
func (s *server) addToCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "addToCartHandler")
	defer span.End()

	store, err := cart.FromContext(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var p cart.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := store.AddToCart(ctx, p); err != nil {
		s.fail(w, r, err)
		return
	}
	writeCart(w, http.StatusCreated, store)
}

// incrementHandler adds one unit to a line.
// @Summary Increment item
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} cartView
// @Router /cart/items/{id}/increment [post]
func (s *server) incrementHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "incrementHandler")
	defer span.End()

	store, err := cart.FromContext(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := store.Increment(ctx, mux.Vars(r)["id"]); err != nil {
		s.fail(w, r, err)
		return
	}
	writeCart(w, http.StatusOK, store)
}

// decrementHandler removes one unit from a line.
// @Summary Decrement item
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} cartView
// @Router /cart/items/{id}/decrement [post]
func (s *server) decrementHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "decrementHandler")
	defer span.End()

	store, err := cart.FromContext(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := store.Decrement(ctx, mux.Vars(r)["id"]); err != nil {
		s.fail(w, r, err)
		return
	}
	writeCart(w, http.StatusOK, store)
}

// clearCartHandler empties the cart.
// @Summary Clear cart
// @Success 204
// @Router /cart [delete]
func (s *server) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "clearCartHandler")
	defer span.End()

	store, err := cart.FromContext(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := store.Clear(ctx); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, cart.ErrInvalidProduct) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.log.Error(r.Context(), "cart request failed", "path", r.URL.Path, "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeCart(w http.ResponseWriter, status int, store *cart.Store) {
	items := store.Items()
	view := cartView{
		Items: make([]itemView, len(items)),
		Count: store.Count(),
		Total: json.Number(store.Total().String()),
	}
	for i, it := range items {
		view.Items[i] = itemView{
			ID:       it.ID,
			Title:    it.Title,
			ImageURL: it.ImageURL,
			Price:    json.Number(it.Price.String()),
			Quantity: it.Quantity,
			Subtotal: json.Number(it.Subtotal().String()),
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(view)
}

func storeMiddleware(store *cart.Store) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(cart.WithStore(r.Context(), store)))
		})
	}
}

func traceMiddleware(tracer trace.Tracer) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.InjectTracing(r.Context(), tracer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
