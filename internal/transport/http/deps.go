package http

import (
	"context"
	"io"

	"github.com/go-shop-nosql/internal/domain"
	jwtinfra "github.com/go-shop-nosql/internal/infrastructure/jwt"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	// MarkVerified flips otp_verified exactly once; a lost race reports
	// domain.ErrAlreadyConsumed. An empty passwordHash keeps the old one.
	MarkVerified(ctx context.Context, email, passwordHash string) error
}

// ProductRepository is the minimal interface the router requires from a product store.
type ProductRepository interface {
	Put(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Scan(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, productID string, req domain.UpdateProductRequest, images []string) (*domain.Product, error)
	Delete(ctx context.Context, productID string) (*domain.Product, error)
}

// ObjectStore is the minimal interface the router requires from an object storage backend.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}

type Mailer interface {
	SendEmail(to, subject, body string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// TokenProvider signs and verifies session tokens.
type TokenProvider interface {
	Sign(userID string) (string, error)
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(digest, plain string) bool
}
