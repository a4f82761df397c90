// Package admin guards the operational endpoints (push, diagnose, audit log)
// behind a single bcrypt-hashed API key exchanged for a short-lived JWT.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bankislami/voicebot/internal/domain"
	"github.com/bankislami/voicebot/internal/ports"
)

// Claims are the JWT claims issued on admin login.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Service issues and validates admin tokens and exposes the conversation
// audit log.
type Service struct {
	secret   []byte
	keyHash  []byte
	tokenTTL time.Duration
	turns    ports.ConversationRepository
	log      *zap.Logger
}

// NewService creates the admin service. keyHash is the bcrypt hash of the
// admin API key; the plaintext key never lives in config.
func NewService(jwtSecret, keyHash string, tokenTTL time.Duration, turns ports.ConversationRepository, log *zap.Logger) *Service {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &Service{
		secret:   []byte(jwtSecret),
		keyHash:  []byte(keyHash),
		tokenTTL: tokenTTL,
		turns:    turns,
		log:      log,
	}
}

// Login exchanges the admin API key for a signed JWT.
func (s *Service) Login(apiKey string) (string, error) {
	if len(s.keyHash) == 0 {
		return "", fmt.Errorf("admin: no API key configured")
	}
	if err := bcrypt.CompareHashAndPassword(s.keyHash, []byte(apiKey)); err != nil {
		s.log.Warn("Admin login rejected")
		return "", fmt.Errorf("admin: invalid API key")
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		Role: "admin",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("admin: sign token: %w", err)
	}

	s.log.Info("Admin token issued", zap.String("jti", claims.ID))
	return signed, nil
}

// ValidateToken checks the signature, expiry, and role of an admin JWT.
func (s *Service) ValidateToken(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return fmt.Errorf("admin: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return fmt.Errorf("admin: invalid token claims")
	}
	if claims.Role != "admin" {
		return fmt.Errorf("admin: insufficient role")
	}
	return nil
}

// RecentTurns returns the latest conversation turns for audit.
func (s *Service) RecentTurns(ctx context.Context, limit int) ([]domain.ConversationTurn, error) {
	if s.turns == nil {
		return nil, fmt.Errorf("admin: conversation store not configured")
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.turns.FindRecent(ctx, limit)
}

// HashKey produces the bcrypt hash for an admin API key. Used by deploy
// tooling to fill config.
func HashKey(apiKey string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
