package tenantrepo

import "context"

type cacheBypassContextKey struct{}

// WithCacheBypass marks the context so reads under it skip the cache on both
// lookup and population. Useful for read-after-write flows that must observe
// the store directly.
func WithCacheBypass(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, cacheBypassContextKey{}, true)
}

func cacheBypassed(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	bypass, ok := ctx.Value(cacheBypassContextKey{}).(bool)
	return ok && bypass
}
