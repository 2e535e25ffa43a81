// Package tenant resolves the tenant ("loja") a request operates on behalf of.
//
// The tenant id is derived 1:1 from the authenticated principal that an
// upstream auth layer places on the request context. Resolution is synchronous
// and performs no I/O; when no principal is present every resolver fails
// closed with ErrUnauthenticated. Because the principal lives on the context,
// its lifetime is bounded by the request: there is no process-wide tenant
// state that could outlive a session.
package tenant

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned when no authenticated principal is available
// to derive a tenant id from. It is fatal and must never be retried.
var ErrUnauthenticated = errors.New("tenant: unauthenticated")

// Principal is the authenticated caller as resolved by the auth layer.
type Principal struct {
	UserID   string
	TenantID string
}

type principalContextKey struct{}

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}

// Resolver yields the tenant id for the current request. Implementations must
// be synchronous and side-effect free; the principal is assumed to be already
// resolved upstream.
type Resolver interface {
	TenantID(ctx context.Context) (string, error)
}

// ContextResolver resolves the tenant id from the principal stored on the
// context. This is the default resolver wired by the DI container.
type ContextResolver struct{}

// TenantID implements Resolver.
func (ContextResolver) TenantID(ctx context.Context) (string, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok || p.TenantID == "" {
		return "", ErrUnauthenticated
	}
	return p.TenantID, nil
}

// StaticResolver always resolves to a fixed tenant id. Useful for CLIs and
// tests that operate on a single known tenant.
type StaticResolver string

// TenantID implements Resolver.
func (s StaticResolver) TenantID(context.Context) (string, error) {
	if s == "" {
		return "", ErrUnauthenticated
	}
	return string(s), nil
}
