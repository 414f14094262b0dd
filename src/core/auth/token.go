package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"birdfinder-server-go/src/core/apperr"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	clientIDClaim = "client_id"
	contextKey    = "auth.client_id"
)

// InvalidTokenMessage reply body for any authentication failure
const InvalidTokenMessage = "Invalid or expired token."

type AuthToken struct {
	secretKey []byte
	ttl       time.Duration
}

func NewAuthToken(secretKey string) *AuthToken {
	return &AuthToken{
		secretKey: []byte(secretKey),
		ttl:       time.Hour,
	}
}

// GenerateToken signs an HS256 token for clientID valid for one hour
func (at *AuthToken) GenerateToken(clientID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		clientIDClaim: clientID,
		"exp":         now.Add(at.ttl).Unix(),
		"iat":         now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(at.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// VerifyToken returns the client id carried by a valid token
func (at *AuthToken) VerifyToken(tokenString string) (string, error) {
	if at == nil || len(at.secretKey) == 0 {
		return "", errors.New("secret key is not initialized")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return at.secretKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	clientID, ok := claims[clientIDClaim].(string)
	if !ok || clientID == "" {
		return "", errors.New("invalid client_id in claims")
	}
	return clientID, nil
}

// Middleware rejects requests without a valid "Authorization: Bearer" token.
func (at *AuthToken) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			_ = c.Error(apperr.Unauthorized(InvalidTokenMessage, errors.New("missing bearer token")))
			c.Abort()
			return
		}

		clientID, err := at.VerifyToken(tokenString)
		if err != nil {
			_ = c.Error(apperr.Unauthorized(InvalidTokenMessage, err))
			c.Abort()
			return
		}

		c.Set(contextKey, clientID)
		c.Next()
	}
}

// ClientID returns the client authenticated by Middleware, if any.
func ClientID(c *gin.Context) string {
	return c.GetString(contextKey)
}
