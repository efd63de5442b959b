package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService verifies the bearer tokens presented to the API. Tokens are
// issued by the account service; GenerateToken exists for tooling and tests
// that need a token signed with the shared secret.
type JWTService interface {
	// GenerateToken creates a signed access token for userID valid for lifetime.
	GenerateToken(ctx context.Context, userID uuid.UUID, lifetime time.Duration) (string, error)

	// ValidateToken validates the provided token string and extracts the claims.
	// Returns the claims containing user information if the token is valid,
	// or an error if validation fails (expired, invalid signature, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims holds the verified contents of a token.
type Claims struct {
	// UserID is the user the token was issued for, taken from the uid claim
	// or, when that is absent, from sub.
	UserID uuid.UUID

	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
