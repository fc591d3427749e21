package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for every token that fails verification:
// malformed, forged, signed with another key or algorithm, or missing claims.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by a session token.
type Claims struct {
	UserID string `json:"_id"`
	Access string `json:"access"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 session tokens.
// Tokens carry no expiry; they stay valid until revoked server-side.
type TokenCodec struct{}

// Issue signs a token binding userID to the access class.
func (TokenCodec) Issue(userID, access string, secret []byte) (string, error) {
	claims := Claims{
		UserID: userID,
		Access: access,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify checks the token signature against secret and returns its claims.
func (TokenCodec) Verify(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" || claims.Access == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
