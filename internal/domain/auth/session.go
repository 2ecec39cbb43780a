package auth

import (
	"errors"
	"time"

	"salesboard/internal/domain/roster"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTOTPRequired       = errors.New("one-time code required")
	ErrTOTPInvalid        = errors.New("invalid one-time code")
	ErrSessionInvalid     = errors.New("session is invalid or expired")
	ErrSessionRevoked     = errors.New("session has been logged out")
)

// Session is the authenticated employee for the lifetime of one token.
type Session struct {
	ID        string          `json:"id"`
	Employee  roster.Employee `json:"employee"`
	IssuedAt  time.Time       `json:"issuedAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

func (s Session) EmployeeID() int {
	return s.Employee.ID
}
