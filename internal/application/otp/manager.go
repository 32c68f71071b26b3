package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/go-shop-nosql/internal/domain"
)

const (
	codeMin = 100000
	codeMax = 999999

	DefaultTTL = 10 * time.Minute
)

// Outcome is the result of checking a submitted code against an account.
type Outcome int

const (
	Accepted Outcome = iota
	Expired
	Mismatch
	AlreadyConsumed
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Expired:
		return "expired"
	case Mismatch:
		return "mismatch"
	case AlreadyConsumed:
		return "already_consumed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Err returns the domain error for a rejected outcome, nil for Accepted.
func (o Outcome) Err() error {
	switch o {
	case Accepted:
		return nil
	case Expired:
		return domain.ErrExpired
	case Mismatch:
		return domain.ErrMismatch
	case AlreadyConsumed:
		return domain.ErrAlreadyConsumed
	default:
		return fmt.Errorf("unknown OTP outcome %d", int(o))
	}
}

// Manager issues and checks six-digit one-time codes.
// A wrong guess leaves the challenge in place until it expires or is consumed.
type Manager struct {
	ttl time.Duration
}

func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{ttl: ttl}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue returns a uniformly random code in [100000, 999999] and its expiry.
func (m *Manager) Issue(now time.Time) (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), now.Add(m.ttl), nil
}

// Validate checks submitted against the challenge stored on u.
// A verified account always yields AlreadyConsumed, so a replayed code can
// never reach the password-update path.
func (m *Manager) Validate(u *domain.User, submitted string, now time.Time) Outcome {
	if u.OTPVerified {
		return AlreadyConsumed
	}
	if u.OTP == nil || u.OTPExpiresAt == nil || now.After(*u.OTPExpiresAt) {
		return Expired
	}
	if *u.OTP != submitted {
		return Mismatch
	}
	return Accepted
}
