package auth

import "context"

type bearerTokenKey struct{}

// ContextWithBearerToken stores the caller's raw access token so outbound
// platform calls can forward it.
func ContextWithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey{}, token)
}

// BearerTokenFromContext returns the token stored by ContextWithBearerToken
func BearerTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(bearerTokenKey{}).(string)
	return token
}
