package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePasswords(t *testing.T) {
	hashed, err := HashPassword("secure123")
	require.NoError(t, err)
	require.NotEmpty(t, hashed)

	assert.True(t, ComparePasswords(hashed, "secure123"))
	assert.False(t, ComparePasswords(hashed, "secure124"))
	assert.False(t, ComparePasswords("not-a-hash", "secure123"))
}

func TestGenerateOTP(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("OTP contains non-digit: %q", code)
			}
		}
		seen[code] = true
	}
	// 20 draws from a 900000-value space colliding every time would mean
	// the generator is broken.
	assert.Greater(t, len(seen), 1)
}

func TestEmailOTPExpired(t *testing.T) {
	now := time.Now().UTC()
	otp := EmailOTP{Email: "anna@example.com", Code: "123456", ExpiresAt: now.Add(OTP_TTL)}

	assert.False(t, otp.Expired(now))
	assert.False(t, otp.Expired(now.Add(OTP_TTL-time.Second)))
	assert.True(t, otp.Expired(now.Add(OTP_TTL)))
	assert.True(t, otp.Expired(now.Add(time.Hour)))
}

func TestValidateUserFields(t *testing.T) {
	valid := NewUser{
		Name:          "Anna",
		Email:         "anna@example.com",
		PasswordPlain: "secure123",
		Phone:         "+994501234567",
	}

	tests := []struct {
		name        string
		mutate      func(u *NewUser)
		expectedMsg string
	}{
		{
			name:   "valid user",
			mutate: func(u *NewUser) {},
		},
		{
			name:        "empty name",
			mutate:      func(u *NewUser) { u.Name = "" },
			expectedMsg: "Name cannot be empty!",
		},
		{
			name:        "name too long",
			mutate:      func(u *NewUser) { u.Name = strings.Repeat("a", MAX_LENGTH_NAME+1) },
			expectedMsg: "Name so long",
		},
		{
			name:        "empty email",
			mutate:      func(u *NewUser) { u.Email = "" },
			expectedMsg: "Email cannot be empty!",
		},
		{
			name:        "malformed email",
			mutate:      func(u *NewUser) { u.Email = "not-an-email" },
			expectedMsg: "Invalid email format",
		},
		{
			name:        "empty password",
			mutate:      func(u *NewUser) { u.PasswordPlain = "" },
			expectedMsg: "Password cannot be empty!",
		},
		{
			name:        "password too long",
			mutate:      func(u *NewUser) { u.PasswordPlain = strings.Repeat("p", MAX_PASSWORD_LENGTH+1) },
			expectedMsg: "Password so long",
		},
		{
			name:        "phone too long",
			mutate:      func(u *NewUser) { u.Phone = strings.Repeat("1", MAX_LENGTH_PHONE+1) },
			expectedMsg: "Phone number so long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid
			tt.mutate(&u)

			err := u.ValidateUserFields()
			if tt.expectedMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedMsg)
		})
	}
}

func TestProfileUpdateValidate(t *testing.T) {
	tests := []struct {
		name        string
		input       ProfileUpdate
		expectedMsg string
	}{
		{
			name:        "all fields empty",
			input:       ProfileUpdate{},
			expectedMsg: "No fields to update",
		},
		{
			name:  "only name",
			input: ProfileUpdate{NewName: "Anna"},
		},
		{
			name:        "malformed new email",
			input:       ProfileUpdate{NewEmail: "broken@"},
			expectedMsg: "Invalid email format",
		},
		{
			name:        "new password too long",
			input:       ProfileUpdate{PasswordPlain: strings.Repeat("p", MAX_PASSWORD_LENGTH+1)},
			expectedMsg: "Password so long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.expectedMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedMsg)
		})
	}
}
