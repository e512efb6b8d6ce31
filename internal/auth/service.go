package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	pkgauth "github.com/itbpos/restaurant-backend/pkg/auth"
	"github.com/itbpos/restaurant-backend/pkg/auth/session"
	"github.com/itbpos/restaurant-backend/pkg/config"
	pkgerrors "github.com/itbpos/restaurant-backend/pkg/errors"
	"github.com/itbpos/restaurant-backend/pkg/logger"
)

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// Service issues and rotates terminal sessions.
type Service interface {
	SignIn(ctx context.Context, input SignInInput) (*TokenPair, error)
	Refresh(ctx context.Context, input RefreshInput) (*TokenPair, error)
	SignOut(ctx context.Context, accessToken string) error
}

type service struct {
	jwtCfg   config.JWTConfig
	authCfg  config.AuthConfig
	sessions sessionManager
	logg     *logger.Logger
}

func NewService(jwtCfg config.JWTConfig, authCfg config.AuthConfig, sessions sessionManager, logg *logger.Logger) (Service, error) {
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth service requires a session manager")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth service requires a logger")
	}
	return &service{jwtCfg: jwtCfg, authCfg: authCfg, sessions: sessions, logg: logg}, nil
}

func (s *service) SignIn(ctx context.Context, input SignInInput) (*TokenPair, error) {
	if s.authCfg.TerminalKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "terminal provisioning is disabled")
	}
	if subtle.ConstantTimeCompare([]byte(s.authCfg.TerminalKey), []byte(input.TerminalKey)) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid terminal key")
	}
	if strings.TrimSpace(input.User) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user is required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown staff role")
	}

	accessID := session.NewAccessID()
	now := time.Now()
	access, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		User:      input.User,
		Role:      input.Role,
		BranchIDs: input.BranchIDs,
		JTI:       accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refresh session")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user": input.User,
		"role": string(input.Role),
	})
	s.logg.Info(logCtx, "terminal signed in")

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(s.jwtCfg.Expiration()),
	}, nil
}

func (s *service) Refresh(ctx context.Context, input RefreshInput) (*TokenPair, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, input.AccessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token has no session id")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, input.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "refresh token rejected")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	now := time.Now()
	access, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		User:      claims.User,
		Role:      claims.Role,
		BranchIDs: claims.BranchIDs,
		JTI:       newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: newRefresh,
		ExpiresAt:    now.Add(s.jwtCfg.Expiration()),
	}, nil
}

func (s *service) SignOut(ctx context.Context, accessToken string) error {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}
	if claims.ID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "token has no session id")
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}
