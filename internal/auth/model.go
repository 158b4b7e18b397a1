package auth

import (
	"fmt"
	"regexp"
	"time"

	appErrors "github.com/aysel-mammadli/expense_tracker/apperrors"
)

const (
	MAX_LENGTH_NAME  = 255
	MAX_LENGTH_EMAIL = 255
	MAX_LENGTH_PHONE = 32
	MAX_PASSWORD_LENGTH = 72

	OTP_TTL = 10 * time.Minute
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHashed string
	Phone          string
	Role           string
	CreatedAt      time.Time
}

type NewUser struct {
	Name          string
	Email         string
	PasswordPlain string
	Phone         string
}

type ProfileUpdate struct {
	NewName       string
	NewEmail      string
	NewPhone      string
	PasswordPlain string // empty means keep the current credential
}

// EmailOTP is a persistent, time-bounded verification record keyed by email.
// It replaces in-process verification state so restarts do not lose pending
// registrations.
type EmailOTP struct {
	Email     string
	Code      string
	Verified  bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (o EmailOTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

type Session struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpireAt  time.Time
	UserID    string
}

type UserCredentialsPure struct {
	Email         string
	PasswordPlain string
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9](\.?[a-zA-Z0-9_%+-])*@[a-zA-Z0-9-]+(\.[a-zA-Z0-9-]+)*\.[a-zA-Z]{2,}$`)

func (newUser NewUser) ValidateUserFields() error {
	if newUser.Name == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Name cannot be empty!",
		}
	}
	if len(newUser.Name) > MAX_LENGTH_NAME {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: fmt.Sprintf("Name so long, maximum length is %d", MAX_LENGTH_NAME),
		}
	}
	if newUser.Email == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Email cannot be empty!",
		}
	}
	if !emailRegex.MatchString(newUser.Email) {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Invalid email format, example valid email: john.doe@gmail.com",
		}
	}
	if len(newUser.Email) > MAX_LENGTH_EMAIL {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: fmt.Sprintf("Email so long, maximum length is %d", MAX_LENGTH_EMAIL),
		}
	}
	if len(newUser.Phone) > MAX_LENGTH_PHONE {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: fmt.Sprintf("Phone number so long, maximum length is %d", MAX_LENGTH_PHONE),
		}
	}
	if newUser.PasswordPlain == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Password cannot be empty!",
		}
	}
	if len(newUser.PasswordPlain) > MAX_PASSWORD_LENGTH {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: fmt.Sprintf("Password so long, maximum length is %d", MAX_PASSWORD_LENGTH),
		}
	}
	return nil
}

func (update ProfileUpdate) Validate() error {
	if update.NewName == "" && update.NewEmail == "" && update.NewPhone == "" && update.PasswordPlain == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "No fields to update",
		}
	}
	if update.NewEmail != "" && !emailRegex.MatchString(update.NewEmail) {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Invalid email format, example valid email: john.doe@gmail.com",
		}
	}
	if len(update.PasswordPlain) > MAX_PASSWORD_LENGTH {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: fmt.Sprintf("Password so long, maximum length is %d", MAX_PASSWORD_LENGTH),
		}
	}
	return nil
}
