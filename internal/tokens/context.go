package tokens

import "context"

type key struct{}

var tokenKey key

func NewContext(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// FromContext returns the session token of an authenticated request.
func FromContext(ctx context.Context) (*Token, bool) {
	t, ok := ctx.Value(tokenKey).(*Token)
	return t, ok
}
