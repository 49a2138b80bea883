// Package auth issues and reads the signed session tokens that carry a
// user's identity and role.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	claimUserID = "user_id"
	claimEmail  = "email"
	claimRole   = "role"
)

// Service implements HS256 session tokens.
type Service struct {
	cfg    *config.Jwt
	logger *slog.Logger
	now    func() time.Time
}

func New(cfg *config.Jwt, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, logger: logger, now: time.Now}
}

// GenerateToken signs a session token for id.
func (s *Service) GenerateToken(id domain.Identity) (string, error) {
	log := s.logger.With("userID", id.UserID)
	log.Debug("GenerateToken called")

	now := s.now()
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims[claimUserID] = id.UserID.String()
	claims[claimEmail] = id.Email
	claims[claimRole] = string(id.Role)
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(s.cfg.Expiry).Unix()
	if s.cfg.Issuer != "" {
		claims["iss"] = s.cfg.Issuer
	}

	tokenString, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		log.Error("GenerateToken failed", "error", err)
		return "", err
	}
	log.Info("GenerateToken successful", "role", id.Role)
	return tokenString, nil
}

// ParseToken verifies a raw token string and returns its identity.
func (s *Service) ParseToken(raw string) (domain.Identity, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	return s.IdentityFromToken(token)
}

// IdentityFromToken reads the identity claims of an already verified token.
func (s *Service) IdentityFromToken(token *jwt.Token) (domain.Identity, error) {
	if token == nil {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	rawID, ok := claims[claimUserID].(string)
	if !ok {
		return domain.Identity{}, fmt.Errorf("%w: missing %s claim", domain.ErrUnauthorized, claimUserID)
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	id := domain.Identity{UserID: userID}
	id.Email, _ = claims[claimEmail].(string)
	if rawRole, _ := claims[claimRole].(string); rawRole != "" {
		role, err := domain.ParseRole(rawRole)
		if err != nil {
			return domain.Identity{}, errors.Join(domain.ErrUnauthorized, err)
		}
		id.Role = role
	}
	return id, nil
}
