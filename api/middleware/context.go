package middleware

import (
	"context"

	pkgauth "github.com/itbpos/restaurant-backend/pkg/auth"
	"github.com/itbpos/restaurant-backend/pkg/visibility"
)

type contextKey string

const (
	ctxClaims contextKey = "claims"
	ctxScope  contextKey = "branch_scope"
)

// ClaimsFromContext returns the verified token claims, or nil outside an
// authenticated request.
func ClaimsFromContext(ctx context.Context) *pkgauth.AccessTokenClaims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClaims).(*pkgauth.AccessTokenClaims); ok {
		return v
	}
	return nil
}

// ScopeFromContext returns the branch visibility scope seeded by Auth. The
// zero value matches nothing, so unauthenticated paths stay empty.
func ScopeFromContext(ctx context.Context) visibility.BranchScope {
	if ctx == nil {
		return visibility.BranchScope{}
	}
	if v, ok := ctx.Value(ctxScope).(visibility.BranchScope); ok {
		return v
	}
	return visibility.BranchScope{}
}

// WithClaims injects claims and their derived scope, for tests.
func WithClaims(ctx context.Context, claims *pkgauth.AccessTokenClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxClaims, claims)
	return context.WithValue(ctx, ctxScope, visibility.ScopeForClaims(claims))
}
