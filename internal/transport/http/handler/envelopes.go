package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-shop-nosql/internal/domain"
)

// MessageEnvelope is the generic response wrapper. Error responses set both
// fields to the same text: clients read message, older tooling reads error.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps the login response.
type AuthEnvelope struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// ProductEnvelope wraps create/update responses.
type ProductEnvelope struct {
	Message string          `json:"message"`
	Product *domain.Product `json:"product"`
}

type ImagesEnvelope struct {
	Images []string `json:"images"`
}

// CartEnvelope wraps every cart mutation with the resulting lines.
type CartEnvelope struct {
	Message   string            `json:"message"`
	CartItems []domain.CartLine `json:"cartItems"`
}

type SubtotalEnvelope struct {
	Subtotal string `json:"subtotal"`
}

type PriceEnvelope struct {
	PriceInINR string `json:"priceInINR"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Message: msg, Error: msg})
}

// authMessages maps each auth failure to the message shown to the client.
var authMessages = []struct {
	err error
	msg string
}{
	{domain.ErrNotFound, "User not found"},
	{domain.ErrConflict, "User already exists"},
	{domain.ErrExpired, "OTP has expired"},
	{domain.ErrMismatch, "Invalid OTP"},
	{domain.ErrAlreadyConsumed, "OTP already verified"},
	{domain.ErrUnverified, "Please verify your OTP first"},
	{domain.ErrInvalidCredentials, "Invalid credentials"},
}

// authError answers 400 for every known auth failure and 500 otherwise.
func authError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range authMessages {
		if errors.Is(err, m.err) {
			writeError(w, http.StatusBadRequest, m.msg)
			return
		}
	}
	if errors.Is(err, domain.ErrBadRequest) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	internalError(w, r, err)
}

// httpError maps catalog and cart failures to status codes.
func httpError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	default:
		internalError(w, r, err)
	}
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
