package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/go-shop-nosql/internal/domain"
)

// CartLedger is the in-memory cart the handler mutates.
type CartLedger interface {
	AddOrIncrement(line domain.CartLine) []domain.CartLine
	AdjustQuantity(id int64, delta int) ([]domain.CartLine, error)
	Remove(id int64) ([]domain.CartLine, error)
	Lines() []domain.CartLine
	Subtotal() string
	Convert(priceEUR float64, quantity int) string
}

type CartHandler struct {
	cart CartLedger
}

func NewCartHandler(cart CartLedger) *CartHandler { return &CartHandler{cart: cart} }

func (h *CartHandler) List(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.cart.Lines())
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var line domain.CartLine
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, CartEnvelope{Message: "Item added to cart", CartItems: h.cart.AddOrIncrement(line)})
}

// Update applies body.quantity as a delta to the line's quantity.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := lineID(w, r)
	if !ok {
		return
	}
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	lines, err := h.cart.AdjustQuantity(id, body.Quantity)
	if err != nil {
		httpError(w, r, err, "Item not found")
		return
	}
	writeJSON(w, http.StatusOK, CartEnvelope{Message: "Cart updated", CartItems: lines})
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := lineID(w, r)
	if !ok {
		return
	}
	lines, err := h.cart.Remove(id)
	if err != nil {
		httpError(w, r, err, "Item not found")
		return
	}
	writeJSON(w, http.StatusOK, CartEnvelope{Message: "Item removed from cart", CartItems: lines})
}

func (h *CartHandler) Subtotal(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SubtotalEnvelope{Subtotal: h.cart.Subtotal()})
}

// Price converts priceInEUR times quantity to rupees. Quantity defaults to 1
// only when absent; zero and negative values are used as sent.
func (h *CartHandler) Price(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PriceInEUR float64 `json:"priceInEUR"`
		Quantity   *int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	qty := 1
	if body.Quantity != nil {
		qty = *body.Quantity
	}
	writeJSON(w, http.StatusOK, PriceEnvelope{PriceInINR: h.cart.Convert(body.PriceInEUR, qty)})
}

func lineID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Item not found")
		return 0, false
	}
	return id, true
}
