package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog/log"

	"salesboard/internal/domain/roster"
)

type LoginInput struct {
	EmployeeID int    `json:"employeeId" validate:"required,gt=0"`
	Password   string `json:"password"`
	TOTPCode   string `json:"totpCode" validate:"omitempty,numeric,len=6"`
}

type Options struct {
	Secret string
	TTL    time.Duration
	// AllowPasswordless lets employees without a password hash log in by id.
	AllowPasswordless bool
}

// Service issues and verifies session tokens against the roster. Logged out
// session ids are remembered until their tokens would have expired anyway.
type Service struct {
	roster *roster.Roster
	opts   Options
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewService(r *roster.Roster, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = 12 * time.Hour
	}
	return &Service{roster: r, opts: opts, now: time.Now, revoked: map[string]time.Time{}}
}

func (s *Service) Login(_ context.Context, in LoginInput) (string, Session, error) {
	emp, err := s.roster.ByID(in.EmployeeID)
	if err != nil {
		return "", Session{}, ErrInvalidCredentials
	}

	switch {
	case emp.RequiresPassword():
		if err := CheckPassword(emp.PasswordHash, in.Password); err != nil {
			log.Warn().Int("employeeId", emp.ID).Msg("login rejected: password mismatch")
			return "", Session{}, ErrInvalidCredentials
		}
	case !s.opts.AllowPasswordless:
		log.Warn().Int("employeeId", emp.ID).Msg("login rejected: no password configured")
		return "", Session{}, ErrInvalidCredentials
	}

	if emp.RequiresTOTP() {
		if in.TOTPCode == "" {
			return "", Session{}, ErrTOTPRequired
		}
		if !totp.Validate(in.TOTPCode, emp.TOTPSecret) {
			return "", Session{}, ErrTOTPInvalid
		}
	}

	issued := s.now().UTC().Truncate(time.Second)
	session := Session{
		ID:        uuid.NewString(),
		Employee:  emp,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(s.opts.TTL),
	}
	token, err := GenerateToken(s.opts.Secret, Claims{EmployeeID: emp.ID, SessionID: session.ID}, issued, s.opts.TTL)
	if err != nil {
		return "", Session{}, err
	}
	log.Info().Int("employeeId", emp.ID).Str("sessionId", session.ID).Msg("session started")
	return token, session, nil
}

// Authenticate resolves a bearer token to a session. The employee is re-read
// from the roster so capability changes apply to existing tokens.
func (s *Service) Authenticate(token string) (Session, error) {
	claims, err := ParseToken(s.opts.Secret, token)
	if err != nil {
		return Session{}, ErrSessionInvalid
	}
	if s.isRevoked(claims.SessionID) {
		return Session{}, ErrSessionRevoked
	}
	emp, err := s.roster.ByID(claims.EmployeeID)
	if err != nil {
		if errors.Is(err, roster.ErrEmployeeNotFound) {
			return Session{}, ErrSessionInvalid
		}
		return Session{}, err
	}

	session := Session{ID: claims.SessionID, Employee: emp}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return session, nil
}

func (s *Service) Logout(session Session) {
	expires := session.ExpiresAt
	if expires.IsZero() {
		expires = s.now().Add(s.opts.TTL)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	s.revoked[session.ID] = expires
	log.Info().Int("employeeId", session.EmployeeID()).Str("sessionId", session.ID).Msg("session ended")
}

func (s *Service) isRevoked(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[sessionID]
	return ok
}

func (s *Service) pruneLocked() {
	now := s.now()
	for id, expires := range s.revoked {
		if now.After(expires) {
			delete(s.revoked, id)
		}
	}
}
