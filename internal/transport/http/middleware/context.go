package middleware

import (
	"context"

	"peopleops/internal/domain/identity"
	"peopleops/internal/requestctx"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

func WithUser(ctx context.Context, p identity.ResolvedPrincipal) context.Context {
	return context.WithValue(ctx, ctxKeyUser, p)
}

func GetUser(ctx context.Context) (identity.ResolvedPrincipal, bool) {
	user, ok := ctx.Value(ctxKeyUser).(identity.ResolvedPrincipal)
	return user, ok
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
