package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ussd-go/pkg/config"
)

// AuthService handles admin authentication and JWT operations for the menu
// builder API.
type AuthService struct {
	logger *logging.ChanneledLogger
}

// NewAuthService creates a new authentication service
func NewAuthService(logger *logging.ChanneledLogger) *AuthService {
	return &AuthService{logger: logger}
}

// AuthResult holds authentication result data
type AuthResult struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AuthenticateAdmin validates the admin password and generates a JWT.
func (a *AuthService) AuthenticateAdmin(password string) *AuthResult {
	var role string

	if config.AdminPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(config.AdminPassword), []byte(password)); err == nil {
			role = "admin"
		}
	}

	// Fallback for plaintext passwords during transition/testing
	if role == "" && config.AdminPassword != "" && password == config.AdminPassword {
		role = "admin"
	}

	if role == "" {
		a.logger.LogAuthOperation("login", "admin", false)
		return &AuthResult{Success: false, Error: "Invalid credentials"}
	}

	claims := jwt.MapClaims{
		"role": role,
		"type": "admin_auth",
		"exp":  time.Now().UTC().Add(config.JWTExpiry).Unix(),
		"iat":  time.Now().UTC().Unix(),
	}

	token, err := a.GenerateJWT(claims)
	if err != nil {
		a.logger.Auth().Error("Token generation failed", "error", err)
		return &AuthResult{Success: false, Error: "Token generation failed"}
	}

	a.logger.LogAuthOperation("login", "admin", true)
	return &AuthResult{Token: token, Role: role, Success: true}
}

// GenerateJWT creates a JWT token with the given claims.
func (a *AuthService) GenerateJWT(claims jwt.MapClaims) (string, error) {
	if _, ok := claims["iat"]; !ok {
		claims["iat"] = time.Now().UTC().Unix()
	}
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().UTC().Add(config.JWTExpiry).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// ValidateAdminToken verifies a bearer token carries a valid admin claim.
func (a *AuthService) ValidateAdminToken(tokenString string) bool {
	claims, err := a.parseToken(tokenString)
	if err != nil {
		return false
	}
	return claims["type"] == "admin_auth" && claims["role"] == "admin"
}

func (a *AuthService) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(config.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
