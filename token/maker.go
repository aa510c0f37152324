package token

import (
	"time"

	"github.com/google/uuid"
)

// Maker creates and verifies session tokens. Login issues them; the API only
// verifies.
type Maker interface {
	CreateToken(userID, tenantID uuid.UUID, duration time.Duration) (string, error)

	VerifyToken(token string) (*Payload, error)
}
