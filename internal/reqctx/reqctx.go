// Package reqctx holds per-request ambient identity, scoped with context.Context
// values so concurrent requests never observe each other's caller id or query.
package reqctx

import "context"

type ctxKey int

const (
	userIDKey ctxKey = iota
	queryKey
)

// Set brackets the workflow invocation: call it once at request entry with the
// caller's authenticated user id and the raw query text, and use the returned
// context for the entire synchronous graph run. There is no clear() step on a
// context.Context value bracket — the values simply fall out of scope when the
// request's context is discarded, which satisfies the same isolation guarantee
// a thread-local clear() would.
func Set(ctx context.Context, userID int, query string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, queryKey, query)
	return ctx
}

// UserID returns the caller id set on ctx, or (0, false) if none was set.
func UserID(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(userIDKey).(int)
	return v, ok
}

// Query returns the original request query set on ctx, or ("", false) if none
// was set.
func Query(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(queryKey).(string)
	return v, ok
}
