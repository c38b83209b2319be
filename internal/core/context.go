package core

import "context"

type contextKey string

const (
	ctxKeyClientIP contextKey = "client_ip"
	ctxKeyOrigin   contextKey = "origin"
)

// ContextWithClientIP records the caller's address for run logs.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// ContextWithOrigin records which surface started a run ("web", "cli").
func ContextWithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, ctxKeyOrigin, origin)
}

// ClientIPFromContext returns the address stored by ContextWithClientIP.
func ClientIPFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyClientIP).(string)
	return v
}

// OriginFromContext returns the surface stored by ContextWithOrigin.
func OriginFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyOrigin).(string)
	return v
}
