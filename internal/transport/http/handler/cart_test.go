package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-shop-nosql/internal/application/cart"
	"github.com/go-shop-nosql/internal/domain"
)

// withChiID injects a chi URL param "id" into the request context.
func withChiID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeCart(t *testing.T, rr *httptest.ResponseRecorder) CartEnvelope {
	t.Helper()
	var env CartEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

func TestCart_AddThenIncrement(t *testing.T) {
	h := NewCartHandler(cart.NewLedger(90))

	rr := httptest.NewRecorder()
	h.Add(rr, jsonReq(t, http.MethodPost, "/api/cart", domain.CartLine{ID: 7, Name: "Shirt", Price: 10, Quantity: 2}))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.Add(rr, jsonReq(t, http.MethodPost, "/api/cart", domain.CartLine{ID: 7, Name: "Shirt", Price: 10, Quantity: 3}))

	env := decodeCart(t, rr)
	assert.Equal(t, "Item added to cart", env.Message)
	require.Len(t, env.CartItems, 1)
	assert.Equal(t, 5, env.CartItems[0].Quantity)
}

func TestCart_UpdateToZeroRemoves(t *testing.T) {
	ledger := cart.NewLedger(90)
	ledger.AddOrIncrement(domain.CartLine{ID: 7, Price: 10, Quantity: 5})
	h := NewCartHandler(ledger)

	rr := httptest.NewRecorder()
	h.Update(rr, withChiID(jsonReq(t, http.MethodPut, "/api/cart/7", map[string]int{"quantity": -5}), "7"))

	assert.Equal(t, http.StatusOK, rr.Code)
	env := decodeCart(t, rr)
	assert.Equal(t, "Cart updated", env.Message)
	assert.Empty(t, env.CartItems)
}

func TestCart_UpdateMissing(t *testing.T) {
	h := NewCartHandler(cart.NewLedger(90))

	rr := httptest.NewRecorder()
	h.Update(rr, withChiID(jsonReq(t, http.MethodPut, "/api/cart/1", map[string]int{"quantity": 1}), "1"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Item not found", decodeEnvelope(t, rr).Error)
}

func TestCart_NonNumericID(t *testing.T) {
	h := NewCartHandler(cart.NewLedger(90))

	rr := httptest.NewRecorder()
	h.Remove(rr, withChiID(httptest.NewRequest(http.MethodDelete, "/api/cart/abc", nil), "abc"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCart_Remove(t *testing.T) {
	ledger := cart.NewLedger(90)
	ledger.AddOrIncrement(domain.CartLine{ID: 1, Quantity: 1})
	h := NewCartHandler(ledger)

	rr := httptest.NewRecorder()
	h.Remove(rr, withChiID(httptest.NewRequest(http.MethodDelete, "/api/cart/1", nil), "1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Item removed from cart", decodeCart(t, rr).Message)
	assert.Empty(t, ledger.Lines())
}

func TestCart_ListAndSubtotal(t *testing.T) {
	ledger := cart.NewLedger(90)
	ledger.AddOrIncrement(domain.CartLine{ID: 1, Name: "a", Price: 2.5, Quantity: 2})
	h := NewCartHandler(ledger)

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	var lines []domain.CartLine
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&lines))
	assert.Len(t, lines, 1)

	rr = httptest.NewRecorder()
	h.Subtotal(rr, httptest.NewRequest(http.MethodGet, "/api/cart/subtotal", nil))
	var sub SubtotalEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&sub))
	assert.Equal(t, "5.00", sub.Subtotal)
}

func TestCart_Price(t *testing.T) {
	h := NewCartHandler(cart.NewLedger(90))

	rr := httptest.NewRecorder()
	h.Price(rr, jsonReq(t, http.MethodPost, "/api/cart/price", map[string]float64{"priceInEUR": 10, "quantity": 3}))
	var resp PriceEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "2700.00", resp.PriceInINR)

	rr = httptest.NewRecorder()
	h.Price(rr, jsonReq(t, http.MethodPost, "/api/cart/price", map[string]float64{"priceInEUR": 10}))
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "900.00", resp.PriceInINR)
}

func TestCart_Price_ExplicitQuantityIsNotDefaulted(t *testing.T) {
	h := NewCartHandler(cart.NewLedger(90))

	for qty, want := range map[float64]string{0: "0.00", -2: "-1800.00", 1: "900.00"} {
		rr := httptest.NewRecorder()
		h.Price(rr, jsonReq(t, http.MethodPost, "/api/cart/price", map[string]float64{"priceInEUR": 10, "quantity": qty}))
		require.Equal(t, http.StatusOK, rr.Code)
		var resp PriceEnvelope
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, want, resp.PriceInINR, "quantity %v", qty)
	}
}
