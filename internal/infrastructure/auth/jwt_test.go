package auth

import (
	"context"
	"testing"
	"time"

	"github.com/affiliate/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "affiliate-gateway-test",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()

	token, expiresAt, err := svc.GenerateAccessToken("user-123", "Alex Johnson")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "Alex Johnson", claims.Name)
	assert.Equal(t, "affiliate-gateway-test", claims.Issuer)
	assert.Equal(t, "user-123", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_GenerateRequiresUserID(t *testing.T) {
	_, _, err := newTestJWTService().GenerateAccessToken("", "nobody")
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestJWTService_ValidateAccessToken_Errors(t *testing.T) {
	svc := newTestJWTService()
	valid, _, err := svc.GenerateAccessToken("user-123", "")
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret", AccessTokenExpiration: time.Minute})
	foreign, _, err := other.GenerateAccessToken("user-123", "")
	require.NoError(t, err)

	expiredSvc := newTestJWTService()
	expiredSvc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _, err := expiredSvc.GenerateAccessToken("user-123", "")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-123"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "garbage", token: "not-a-token", wantErr: ErrInvalidToken},
		{name: "wrong secret", token: foreign, wantErr: ErrInvalidToken},
		{name: "expired", token: expired, wantErr: ErrExpiredToken},
		{name: "unsigned", token: noneToken, wantErr: ErrInvalidToken},
		{name: "tampered", token: valid + "x", wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateAccessToken(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJWTService_SubjectFallback(t *testing.T) {
	svc := newTestJWTService()
	now := time.Now()

	withSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-from-sub",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}).SignedString(svc.secret)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(withSubject)
	require.NoError(t, err)
	assert.Equal(t, "user-from-sub", claims.UserID)

	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))},
	}).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(anonymous)
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestBearerTokenContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, BearerTokenFromContext(ctx))

	ctx = ContextWithBearerToken(ctx, "abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", BearerTokenFromContext(ctx))
}
