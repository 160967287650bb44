package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace/noop"

	"cartflow/pkg/cart"
	"cartflow/pkg/cart/memory"
	"cartflow/pkg/logger"
)

func newTestRouter(t *testing.T) (http.Handler, *cart.Store, *memory.Storage) {
	t.Helper()
	backend := memory.New()
	store := cart.NewStore(backend)
	return newRouter(store, logger.NewNop(), noop.NewTracerProvider().Tracer("test")), store, backend
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartView {
	t.Helper()
	var v cartView
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestCartEndpoints(t *testing.T) {
	h, store, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/cart/items", `{"id":"p1","title":"Mug","image_url":"u","price":12.5}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	v := decodeCart(t, rec)
	if len(v.Items) != 1 || v.Items[0].Quantity != 1 || v.Total.String() != "12.5" {
		t.Fatalf("unexpected cart after add: %+v", v)
	}

	rec = do(t, h, http.MethodPost, "/cart/items/p1/increment", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("increment: expected 200, got %d", rec.Code)
	}
	v = decodeCart(t, rec)
	if v.Count != 2 || v.Total.String() != "25" || v.Items[0].Subtotal.String() != "25" {
		t.Fatalf("unexpected cart after increment: %+v", v)
	}

	do(t, h, http.MethodPost, "/cart/items/p1/decrement", "")
	rec = do(t, h, http.MethodPost, "/cart/items/p1/decrement", "")
	v = decodeCart(t, rec)
	if len(v.Items) != 0 || v.Count != 0 {
		t.Fatalf("expected empty cart, got %+v", v)
	}
	if len(store.Items()) != 0 {
		t.Fatal("store not updated")
	}
}

func TestGetAndClearCart(t *testing.T) {
	h, store, backend := newTestRouter(t)
	do(t, h, http.MethodPost, "/cart/items", `{"id":"p1","price":"3"}`)

	rec := do(t, h, http.MethodGet, "/cart", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
	if v := decodeCart(t, rec); len(v.Items) != 1 {
		t.Fatalf("expected one item, got %+v", v)
	}

	rec = do(t, h, http.MethodDelete, "/cart", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear: expected 204, got %d", rec.Code)
	}
	if len(store.Items()) != 0 {
		t.Fatal("expected empty store")
	}
	if raw, _, _ := backend.Get(context.Background(), cart.DefaultKey); raw != "[]" {
		t.Fatalf("expected persisted empty cart, got %s", raw)
	}
}

func TestAddToCartValidation(t *testing.T) {
	h, _, _ := newTestRouter(t)

	if rec := do(t, h, http.MethodPost, "/cart/items", `{"title":"no id"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing id, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/cart/items", `{`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", rec.Code)
	}
}

func TestUnknownItemIsNoop(t *testing.T) {
	h, _, backend := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/cart/items/ghost/increment", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if backend.Writes() != 0 {
		t.Fatal("no-op must not persist")
	}
}

func TestHandlerOutsideStoreScope(t *testing.T) {
	s := &server{log: logger.NewNop()}
	rec := httptest.NewRecorder()
	s.getCartHandler(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without store, got %d", rec.Code)
	}
}

func TestRequestIDIsKept(t *testing.T) {
	h, _, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(requestIDHeader, "5b4d2c49-5a53-4b8e-8a7e-2d0f6f1c9e10")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "5b4d2c49-5a53-4b8e-8a7e-2d0f6f1c9e10" {
		t.Fatalf("unexpected request id %q", got)
	}
}
