package auth

import "context"

type ctxKey string

const principalKey ctxKey = "principal"

// ContextWithPrincipal stores the authenticated principal for the
// duration of one request. There is no session: every request carries
// its own credentials and gets a fresh principal.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}
