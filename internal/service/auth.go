package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Credentials accepted by the secret token exchange.
const (
	AdminUser     = "admin"
	AdminPassword = "password"
)

// MaxNoteLength is the longest secret note kept; longer notes are truncated.
const MaxNoteLength = 100

var (
	// ErrUnauthorized is returned for a failed Basic credential exchange.
	ErrUnauthorized = errors.New("invalid username or password")
	// ErrMissingCredentials is returned when no auth token was presented.
	ErrMissingCredentials = errors.New("missing auth token")
	// ErrInvalidCredentials is returned for a token that was never issued.
	ErrInvalidCredentials = errors.New("invalid auth token")
)

// AuthRepository defines the storage operations
// required by the authentication service.
type AuthRepository interface {
	// SaveToken records an issued token.
	SaveToken(ctx context.Context, token string) error
	// TokenExists reports whether token was issued.
	TokenExists(ctx context.Context, token string) (bool, error)
	// GetNote returns the secret note.
	GetNote(ctx context.Context) (string, error)
	// SetNote overwrites the secret note.
	SetNote(ctx context.Context, note string) error
}

// AuthService issues auth tokens and guards the secret note.
type AuthService struct {
	repo     AuthRepository
	newToken func() string
}

// NewAuthService constructs an AuthService using the provided repository.
func NewAuthService(repo AuthRepository) *AuthService {
	return &AuthService{repo: repo, newToken: uuid.NewString}
}

// IssueToken exchanges Basic credentials for a new auth token. ok is false
// when the request carried no Basic credentials at all.
func (s *AuthService) IssueToken(ctx context.Context, user, password string, ok bool) (string, error) {
	if !ok || user != AdminUser || password != AdminPassword {
		return "", ErrUnauthorized
	}
	token := s.newToken()
	if err := s.repo.SaveToken(ctx, token); err != nil {
		return "", fmt.Errorf("save token: %w", err)
	}
	return token, nil
}

// Authorize checks that token was issued by IssueToken.
func (s *AuthService) Authorize(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingCredentials
	}
	exists, err := s.repo.TokenExists(ctx, token)
	if err != nil {
		return fmt.Errorf("check token: %w", err)
	}
	if !exists {
		return ErrInvalidCredentials
	}
	return nil
}

// ReadNote returns the secret note for an authorized token.
func (s *AuthService) ReadNote(ctx context.Context, token string) (string, error) {
	if err := s.Authorize(ctx, token); err != nil {
		return "", err
	}
	return s.repo.GetNote(ctx)
}

// WriteNote stores text as the secret note for an authorized token and
// returns the stored value.
func (s *AuthService) WriteNote(ctx context.Context, token, text string) (string, error) {
	if err := s.Authorize(ctx, token); err != nil {
		return "", err
	}
	if r := []rune(text); len(r) > MaxNoteLength {
		text = string(r[:MaxNoteLength])
	}
	if err := s.repo.SetNote(ctx, text); err != nil {
		return "", fmt.Errorf("set note: %w", err)
	}
	return text, nil
}
