package domain

import "time"

// User is the credential record for one email identity.
// PK: email. OTP and OTPExpiresAt are written together.
type User struct {
	UserID       string     `json:"id" dynamodbav:"user_id"`
	Email        string     `json:"email" dynamodbav:"email"`
	Name         string     `json:"name" dynamodbav:"name"`
	PhoneNumber  string     `json:"phone_number" dynamodbav:"phone_number"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	OTP          *string    `json:"-" dynamodbav:"otp,omitempty"`
	OTPExpiresAt *time.Time `json:"-" dynamodbav:"otp_expires_at,omitempty"`
	OTPVerified  bool       `json:"otp_verified" dynamodbav:"otp_verified"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type RegisterRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Password    string `json:"password" validate:"required,maxbytes=72"`
}

type VerifyOTPRequest struct {
	Email    string `json:"email" validate:"required"`
	OTP      string `json:"otp" validate:"required"`
	Password string `json:"password" validate:"omitempty,maxbytes=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
