package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-shop-nosql/internal/application/otp"
	"github.com/go-shop-nosql/internal/domain"
	"github.com/go-shop-nosql/internal/pkg/clock"
	"github.com/go-shop-nosql/internal/pkg/id"
	"github.com/go-shop-nosql/internal/pkg/validate"
)

const otpEmailSubject = "Your OTP for Account Verification"

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) error
	VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) error
	Login(ctx context.Context, req domain.LoginRequest) (string, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	MarkVerified(ctx context.Context, email, passwordHash string) error
}

type passwordHasher interface {
	Hash(plain string) (string, error)
	Compare(digest, plain string) bool
}

type tokenSigner interface {
	Sign(userID string) (string, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	users  userStore
	hasher passwordHasher
	otp    *otp.Manager
	signer tokenSigner
	mailer mailer
	sms    smsSender
	clock  clock.Clocker
}

// ServiceDeps wires the auth service. SMSSender is optional; Clock defaults
// to the system clock.
type ServiceDeps struct {
	UserRepo  userStore
	Hasher    passwordHasher
	OTP       *otp.Manager
	JWTSigner tokenSigner
	Mailer    mailer
	SMSSender smsSender
	Clock     clock.Clocker
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		users:  deps.UserRepo,
		hasher: deps.Hasher,
		otp:    deps.OTP,
		signer: deps.JWTSigner,
		mailer: deps.Mailer,
		sms:    deps.SMSSender,
		clock:  deps.Clock,
	}
	if s.otp == nil {
		s.otp = otp.NewManager(otp.DefaultTTL)
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	return s
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) error {
	if err := validate.Struct(&req); err != nil {
		return err
	}
	_, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return fmt.Errorf("user already exists: %w", domain.ErrConflict)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	code, expiresAt, err := s.otp.Issue(now)
	if err != nil {
		return err
	}
	u := &domain.User{
		UserID:       id.New(),
		Email:        req.Email,
		Name:         req.Name,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
		OTP:          &code,
		OTPExpiresAt: &expiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return err
	}

	body := fmt.Sprintf("Your OTP is: %s. It will expire in %d minutes.", code, int(s.otp.TTL().Minutes()))
	if err := s.mailer.SendEmail(u.Email, otpEmailSubject, body); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	if s.sms != nil {
		if err := s.sms.SendSMS(ctx, u.PhoneNumber, body); err != nil {
			slog.Warn("failed to send otp sms", "user_id", u.UserID, "err", err)
		}
	}
	return nil
}

func (s *service) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) error {
	if err := validate.Struct(&req); err != nil {
		return err
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	outcome := s.otp.Validate(u, req.OTP, s.clock.Now())
	if outcome != otp.Accepted {
		slog.Debug("otp rejected", "user_id", u.UserID, "outcome", outcome.String())
		return outcome.Err()
	}

	var hash string
	if req.Password != "" {
		if hash, err = s.hashPassword(req.Password); err != nil {
			return err
		}
	}
	return s.users.MarkVerified(ctx, u.Email, hash)
}

// hashPassword passes domain.ErrBadRequest through unwrapped so the caller
// sees the length message.
func (s *service) hashPassword(plain string) (string, error) {
	hash, err := s.hasher.Hash(plain)
	if err == nil || errors.Is(err, domain.ErrBadRequest) {
		return hash, err
	}
	return "", fmt.Errorf("hash password: %w", err)
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (string, error) {
	if err := validate.Struct(&req); err != nil {
		return "", err
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", err
	}
	if !u.OTPVerified {
		return "", fmt.Errorf("login before verification: %w", domain.ErrUnverified)
	}
	if !s.hasher.Compare(u.PasswordHash, req.Password) {
		return "", fmt.Errorf("password mismatch: %w", domain.ErrInvalidCredentials)
	}
	token, err := s.signer.Sign(u.UserID)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (s *service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}
