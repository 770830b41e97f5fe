package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleStaff   = "staff"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// StaffClaims identify a restaurant staff member.
type StaffClaims struct {
	StaffID    string `json:"staff_id"`
	Restaurant string `json:"restaurant,omitempty"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secretKey     []byte
	tokenDuration time.Duration
	issuer        string
	now           func() time.Time
}

// NewJWTService creates a new JWT service. A zero duration means 12 hours.
func NewJWTService(secretKey string, tokenDuration time.Duration) *JWTService {
	if tokenDuration <= 0 {
		tokenDuration = 12 * time.Hour
	}
	return &JWTService{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		issuer:        "resto-engage",
		now:           time.Now,
	}
}

// GenerateToken signs an HS256 token for a staff member.
func (s *JWTService) GenerateToken(staffID, restaurant, role string) (string, time.Time, error) {
	if staffID == "" {
		return "", time.Time{}, fmt.Errorf("staff id is required")
	}
	if role == "" {
		role = RoleStaff
	}

	now := s.now()
	expiresAt := now.Add(s.tokenDuration)

	claims := StaffClaims{
		StaffID:    staffID,
		Restaurant: restaurant,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staffID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a token and returns its claims
func (s *JWTService) ValidateToken(tokenString string) (*StaffClaims, error) {
	claims := &StaffClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.StaffID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
