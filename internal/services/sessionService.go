package services

import (
	"context"
	"fmt"
	"time"

	"github.com/arzan03/TaskManager/internal/apperror"
	"github.com/arzan03/TaskManager/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionService issues bearer tokens and checks them against the token
// list stored on the user. Tokens carry no expiry; they stay valid until
// logout or logoutAll removes them.
type SessionService struct {
	users  UserStore
	secret []byte
}

func NewSessionService(users UserStore, secret string) *SessionService {
	return &SessionService{users: users, secret: []byte(secret)}
}

// IssueToken signs a new token for user and appends it to the user's
// active sessions.
func (s *SessionService) IssueToken(ctx context.Context, user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"_id": user.ID.Hex(),
		"jti": uuid.NewString(),
		"iat": time.Now().Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperror.Internal(fmt.Errorf("sign token: %w", err))
	}

	if err := s.users.PushToken(ctx, user.ID, token); err != nil {
		return "", apperror.Internal(err)
	}
	user.Tokens = append(user.Tokens, models.AuthToken{Token: token})
	return token, nil
}

// Validate returns the owner of token. Every failure other than a store
// error is reported as apperror.ErrAuthenticate.
func (s *SessionService) Validate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperror.ErrAuthenticate
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, apperror.ErrAuthenticate
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperror.ErrAuthenticate
	}
	hexID, _ := claims["_id"].(string)
	id, ok := parseID(hexID)
	if !ok {
		return nil, apperror.ErrAuthenticate
	}

	user, err := s.users.FindByToken(ctx, id, token)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.ErrAuthenticate
	}
	return user, nil
}

// Revoke ends the single session identified by token.
func (s *SessionService) Revoke(ctx context.Context, user *models.User, token string) error {
	if err := s.users.PullToken(ctx, user.ID, token); err != nil {
		return apperror.Internal(err)
	}

	kept := user.Tokens[:0]
	for _, t := range user.Tokens {
		if t.Token != token {
			kept = append(kept, t)
		}
	}
	user.Tokens = kept
	return nil
}

// RevokeAll ends every session of user.
func (s *SessionService) RevokeAll(ctx context.Context, user *models.User) error {
	if err := s.users.ClearTokens(ctx, user.ID); err != nil {
		return apperror.Internal(err)
	}
	user.Tokens = []models.AuthToken{}
	return nil
}
