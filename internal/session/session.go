// Package session carries the authenticated user through request contexts.
package session

import "context"

type userKey struct{}

func WithUser(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userKey{}, uid)
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(userKey{}).(string)
	return uid
}
