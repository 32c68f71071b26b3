package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-shop-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct_Valid(t *testing.T) {
	err := Struct(domain.RegisterRequest{Name: "Alice", Email: "a@x.com", PhoneNumber: "555", Password: "pw1"})
	assert.NoError(t, err)
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(domain.RegisterRequest{Name: "Alice", Email: "not-an-email"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.Contains(t, err.Error(), "field 'email' failed 'email'")
	assert.Contains(t, err.Error(), "field 'phoneNumber' failed 'required'")
	assert.Contains(t, err.Error(), "field 'password' failed 'required'")
}

func TestStruct_NestedProductInfo(t *testing.T) {
	err := Struct(domain.CreateProductRequest{Name: "Tee", Description: "Cotton tee"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'material' failed 'required'")
}

func TestStruct_PasswordLimitCountsBytes(t *testing.T) {
	// 72 runes, 144 bytes.
	err := Struct(domain.RegisterRequest{Name: "Alice", Email: "a@x.com", PhoneNumber: "555", Password: strings.Repeat("é", 72)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.Contains(t, err.Error(), "field 'password' failed 'maxbytes'")

	err = Struct(domain.RegisterRequest{Name: "Alice", Email: "a@x.com", PhoneNumber: "555", Password: strings.Repeat("a", 72)})
	assert.NoError(t, err)

	err = Struct(domain.VerifyOTPRequest{Email: "a@x.com", OTP: "123456", Password: strings.Repeat("é", 37)})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}
