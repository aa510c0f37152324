package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/o1egl/paseto"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrInvalidToken wraps every rejection by VerifyToken, expiry included.
var ErrInvalidToken = errors.New("invalid token")

// PasetoMaker issues v2.local session tokens. The encrypted payload names the
// user and the store (tenant) they are acting for.
type PasetoMaker struct {
	paseto *paseto.V2
	key    []byte
}

// NewPasetoMaker needs a 32 byte symmetric key (PASETO_SYMMETRIC_KEY).
func NewPasetoMaker(symmetricKey string) (Maker, error) {
	if len(symmetricKey) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("invalid key size: must be exactly %d characters", chacha20poly1305.KeySize)
	}
	return &PasetoMaker{paseto: paseto.NewV2(), key: []byte(symmetricKey)}, nil
}

// CreateToken issues a session for userID inside tenantID. Pass uuid.Nil as
// tenantID before a store is selected; such tokens do not pass ProtectedRoute.
func (maker *PasetoMaker) CreateToken(userID, tenantID uuid.UUID, duration time.Duration) (string, error) {
	payload, err := NewPayload(userID, tenantID, duration)
	if err != nil {
		return "", fmt.Errorf("failed to build session payload: %w", err)
	}

	token, err := maker.paseto.Encrypt(maker.key, payload, nil)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt session token: %w", err)
	}
	return token, nil
}

// VerifyToken decrypts the token and returns the user and active tenant it
// carries. Expired sessions match both ErrInvalidToken and ErrExpired.
func (maker *PasetoMaker) VerifyToken(token string) (*Payload, error) {
	payload := &Payload{}
	if err := maker.paseto.Decrypt(token, maker.key, payload, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if err := payload.Valid(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if payload.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: no user", ErrInvalidToken)
	}
	return payload, nil
}
