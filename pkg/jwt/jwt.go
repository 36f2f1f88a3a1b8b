package jwt

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

const issuer = "go-retail-pos"

// Claims identifies the operator at the till. Authentication itself happens
// elsewhere; the token is trusted once its signature verifies.
type Claims struct {
	OperatorID string   `json:"operator_id"`
	Name       string   `json:"name"`
	Store      string   `json:"store"`
	Privileges []string `json:"privileges"`
	jwt.RegisteredClaims
}

var (
	mu     sync.RWMutex
	secret []byte
	ttl    = 24 * time.Hour
)

// Init sets the signing secret and token lifetime. Without it the secret is
// read from JWT_SECRET.
func Init(signingSecret string, tokenTTL time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	secret = []byte(signingSecret)
	if tokenTTL > 0 {
		ttl = tokenTTL
	}
}

// GetSecretKey returns the configured secret, the JWT_SECRET env or a default
func GetSecretKey() []byte {
	mu.RLock()
	defer mu.RUnlock()
	if len(secret) > 0 {
		return secret
	}
	if env := os.Getenv("JWT_SECRET"); env != "" {
		return []byte(env)
	}
	return []byte("your-super-secret-key-change-in-production")
}

func tokenTTL() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ttl
}

// GenerateToken creates a new JWT token for an operator
func GenerateToken(operatorID, name, store string, privileges []string) (string, error) {
	now := time.Now()
	claims := &Claims{
		OperatorID: operatorID,
		Name:       name,
		Store:      store,
		Privileges: privileges,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operatorID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL())),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(GetSecretKey())
}

// ValidateToken parses and validates a JWT token
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return GetSecretKey(), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.OperatorID != "" {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
