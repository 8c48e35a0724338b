package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used in production. Roughly 250ms
// per hash on current hardware: negligible for one login, brutal for a
// brute-force run.
const DefaultCost = 12

// maxPasswordBytes is bcrypt's input limit. Longer inputs are silently
// truncated by the algorithm, so they are rejected up front instead.
const maxPasswordBytes = 72

var (
	ErrPasswordTooLong = errors.New("auth: password must be 72 bytes or fewer")
	ErrInvalidPassword = errors.New("auth: invalid password")
)

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so that the cost can be injected:
// tests across the module use cost 4 (the bcrypt minimum) to stay fast.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with DefaultCost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: DefaultCost}
}

// NewPasswordServiceWithCost creates a PasswordService with a custom cost.
// Do NOT use a cost below DefaultCost outside of tests.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash returns the bcrypt encoding of plaintext:
//
//	$2a$12$<22-char salt><31-char hash>
//
// The salt and cost are embedded, so the string is all that needs storing.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil if plaintext matches hash and ErrInvalidPassword if it
// doesn't. The comparison is constant-time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
