package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	AccountID *uuid.UUID
	Role      enums.UserRole
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients. AccountID is
// absent for staff users, who hold no wallet.
type AccessTokenClaims struct {
	UserID    uuid.UUID      `json:"user_id"`
	AccountID *uuid.UUID     `json:"account_id,omitempty"`
	Role      enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
