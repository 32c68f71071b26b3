package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/go-shop-nosql/internal/domain"
)

// MaxBytes is the longest password bcrypt accepts.
const MaxBytes = 72

// Bcrypt hashes and compares passwords with bcrypt at a fixed cost.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a hasher. A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash returns the bcrypt digest of plain. Passwords longer than MaxBytes
// bytes are rejected with domain.ErrBadRequest.
func (b *Bcrypt) Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("password exceeds %d bytes: %w", MaxBytes, domain.ErrBadRequest)
	}
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Compare reports whether plain matches digest.
func (b *Bcrypt) Compare(digest, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
