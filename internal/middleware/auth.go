// Package middleware provides authentication, logging, tracing and rate limiting middleware for the API.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"warbler/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "warbler-api"
	tokenAudience = "warbler-client"

	// TokenTTL is how long an issued session token stays valid.
	TokenTTL = 7 * 24 * time.Hour
)

var (
	errMissingToken = errors.New("authorization required")
	errBadHeader    = errors.New("invalid authorization header format")
	errBadToken     = errors.New("invalid or expired token")
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// IssueToken signs an HS256 session token for the user. The subject claim
// carries the user id as a decimal string.
func IssueToken(secret string, userID uint, username string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(TokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a session token and returns the user id in its subject.
func ParseToken(secret, tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return 0, errBadToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errBadToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, errBadToken
	}

	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, errBadToken
	}
	return uint(userID), nil
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", errMissingToken
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errBadHeader
	}
	return parts[1], nil
}

func setUser(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	ctx := context.WithValue(c.UserContext(), UserIDKey, userID)
	c.SetUserContext(ctx)
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	tokenString, err := bearerToken(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "UNAUTHORIZED",
		})
	}

	userID, err := ParseToken(cfg.JWTSecret, tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "UNAUTHORIZED",
		})
	}

	setUser(c, userID)
	return c.Next()
}

// AuthOptional attaches the caller's user id when a valid token is present
// and otherwise lets the request through anonymously.
func AuthOptional(c *fiber.Ctx) error {
	tokenString, err := bearerToken(c)
	if err != nil {
		return c.Next()
	}
	if userID, err := ParseToken(cfg.JWTSecret, tokenString); err == nil {
		setUser(c, userID)
	}
	return c.Next()
}

// UserID returns the authenticated user id stored by AuthRequired or AuthOptional.
func UserID(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals("userID").(uint)
	return uid, ok && uid != 0
}
