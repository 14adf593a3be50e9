package utils

import (
	"errors" // Error values
	"time"   // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/google/uuid"       // Token identifiers
)

// Token kinds carried in the "typ" claim
const (
	AccessToken  = "access"  // Short-lived token for API calls
	RefreshToken = "refresh" // Long-lived token exchanged for access tokens
	ResetToken   = "reset"   // Single-purpose password reset token
)

// ErrWrongTokenKind is returned when a valid token of another kind is presented
var ErrWrongTokenKind = errors.New("wrong token kind")

// JWT Claims
type Claims struct {
	UserID               uint   `json:"user_id"` // Custom claim for user ID
	Kind                 string `json:"typ"`     // Token kind
	jwt.RegisteredClaims        // Standard JWT claims (jti, exp, iat)
}

// GenerateJWT creates a signed token of the given kind for a user ID
func GenerateJWT(userID uint, secret, kind string, ttl time.Duration) (string, *Claims, error) {
	now := time.Now() // Issue time
	// Set token claims
	claims := &Claims{
		UserID: userID, // Custom claim for user ID
		Kind:   kind,   // Token kind
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),                 // Unique token id, used for blacklisting
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)), // Token expiry
			IssuedAt:  jwt.NewNumericDate(now),          // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	signed, err := token.SignedString([]byte(secret))         // Sign the token with the secret
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseJWT parses and validates a token string and checks its kind
func ParseJWT(tokenStr, secret, kind string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	// Check for parsing errors
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	// Validate token and extract claims
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid // Return error if token is invalid
	}
	if claims.Kind != kind {
		return nil, ErrWrongTokenKind // Refresh token used as access token, etc.
	}
	return claims, nil
}
