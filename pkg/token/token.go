package token

import (
	"errors"
	"strings"
	"time"

	"focushub/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// RoleType set member role
type RoleType string

const (
	// RoleAdmin is the admin role
	RoleAdmin RoleType = "admin"
	// RoleStudent is the default role for signed up members
	RoleStudent RoleType = "student"
)

// Claims structure for custom claims in JWT
type Claims struct {
	MemberID string `json:"user_id"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

var (
	// ErrInvalidToken token failed signature, expiry or claim checks
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingToken no token supplied
	ErrMissingToken = errors.New("missing token")
	// ErrNoSecret JWT_SECRET is not configured, nothing is signed or accepted
	ErrNoSecret = errors.New("jwt secret not configured")
)

// JWTSecret signing and validation key from JWT_SECRET, empty means unconfigured
var (
	JWTSecret       = []byte(config.EnvConfig.JWTSecret)
	tokenExpiration = 7 * 24 * time.Hour
)

// HasSecret reports whether a signing key is configured
func HasSecret() bool {
	return len(JWTSecret) > 0
}

// SetSecret replaces the signing key
func SetSecret(secret string) {
	if secret != "" {
		JWTSecret = []byte(secret)
	}
}

// StateIssuer issuer of OAuth state tokens, never accepted as a login token
const StateIssuer = "oauth-state"

// GenerateState short lived token carrying memberID through an OAuth redirect
func GenerateState(memberID string, ttl time.Duration) (string, error) {
	return generate(memberID, "", "", StateIssuer, time.Now().Add(ttl))
}

// ParseState member id of a state minted by GenerateState
func ParseState(state string) (string, error) {
	claims, err := parse(state)
	if err != nil {
		return "", err
	}
	if claims.Issuer != StateIssuer {
		return "", ErrInvalidToken
	}
	return claims.MemberID, nil
}

// SetExpiration replaces the lifetime of newly issued tokens
func SetExpiration(d time.Duration) {
	if d > 0 {
		tokenExpiration = d
	}
}

// GenerateJWT generates a JWT token
func GenerateJWT(memberID, email, role, issuer string) (string, error) {
	return generate(memberID, email, role, issuer, time.Now().Add(tokenExpiration))
}

func generate(memberID, email, role, issuer string, expiresAt time.Time) (string, error) {
	if !HasSecret() {
		return "", ErrNoSecret
	}
	claims := Claims{
		MemberID: memberID,
		Email:    email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

// ParseJWT parses a JWT and extracts the Claims.
// Both the REST middleware and the websocket handshake verify through here.
func ParseJWT(tokenStr string) (*Claims, error) {
	claims, err := parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Issuer == StateIssuer {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func parse(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}
	if !HasSecret() {
		return nil, errors.Join(ErrInvalidToken, ErrNoSecret)
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return JWTSecret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.MemberID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// CheckJWTNotExpire check a "Bearer <token>" header value is still valid
func CheckJWTNotExpire(header string) (bool, error) {
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenStr == "" {
		return false, ErrMissingToken
	}

	claims, err := ParseJWT(tokenStr)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return false, nil
		}
		return false, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, ErrInvalidToken
	}
	return exp.After(time.Now()), nil
}
