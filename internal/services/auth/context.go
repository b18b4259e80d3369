package auth

import "context"

type identityContextKey string

const identityKey identityContextKey = "baileapp_identity"

// Identity is what the auth middleware leaves on the request context
// after validating an access token against the session store.
type Identity struct {
	UserID int64
	SID    string
	Role   string
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext reports false on requests that never passed the
// auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
