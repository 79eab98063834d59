package httpapi

import (
	"context"

	"github.com/riskibarqy/squad-auction/internal/domain/manager"
)

type contextKey string

const principalContextKey contextKey = "auth_principal"

func withPrincipal(ctx context.Context, p manager.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func principalFromContext(ctx context.Context) (manager.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(manager.Principal)
	return p, ok
}
