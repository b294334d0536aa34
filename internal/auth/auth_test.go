package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
)

const secret = "test-secret"

func TestIssueVerify(t *testing.T) {
	p := auth.Principal{UserID: uuid.New(), Role: auth.RoleUser}

	token, err := auth.NewIssuer(secret, "pocketbook", time.Hour).Issue(p)
	require.NoError(t, err)

	got, err := auth.NewVerifier(secret, "pocketbook").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestVerify_Rejects(t *testing.T) {
	userID := uuid.New()

	sign := func(method jwt.SigningMethod, key any, claims auth.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)

		return s
	}

	valid := func() auth.Claims {
		return auth.Claims{
			Role: auth.RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   userID.String(),
				Issuer:    "pocketbook",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
	}

	tests := []struct {
		name    string
		token   func() string
		wantErr error
	}{
		{
			name:    "Garbage",
			token:   func() string { return "not-a-jwt" },
			wantErr: auth.ErrInvalidToken,
		},
		{
			name:    "WrongSecret",
			token:   func() string { return sign(jwt.SigningMethodHS256, []byte("other"), valid()) },
			wantErr: auth.ErrInvalidToken,
		},
		{
			name:    "WrongAlgorithm",
			token:   func() string { return sign(jwt.SigningMethodHS512, []byte(secret), valid()) },
			wantErr: auth.ErrInvalidToken,
		},
		{
			name: "Expired",
			token: func() string {
				c := valid()
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

				return sign(jwt.SigningMethodHS256, []byte(secret), c)
			},
			wantErr: auth.ErrTokenExpired,
		},
		{
			name: "MissingExpiry",
			token: func() string {
				c := valid()
				c.ExpiresAt = nil

				return sign(jwt.SigningMethodHS256, []byte(secret), c)
			},
			wantErr: auth.ErrInvalidToken,
		},
		{
			name: "WrongIssuer",
			token: func() string {
				c := valid()
				c.Issuer = "someone-else"

				return sign(jwt.SigningMethodHS256, []byte(secret), c)
			},
			wantErr: auth.ErrInvalidToken,
		},
		{
			name: "SubjectNotUUID",
			token: func() string {
				c := valid()
				c.Subject = "42"

				return sign(jwt.SigningMethodHS256, []byte(secret), c)
			},
			wantErr: auth.ErrInvalidToken,
		},
		{
			name: "UnknownRole",
			token: func() string {
				c := valid()
				c.Role = "root"

				return sign(jwt.SigningMethodHS256, []byte(secret), c)
			},
			wantErr: auth.ErrInvalidToken,
		},
	}

	v := auth.NewVerifier(secret, "pocketbook")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIssue_UnknownRole(t *testing.T) {
	_, err := auth.NewIssuer(secret, "", time.Hour).Issue(auth.Principal{UserID: uuid.New(), Role: "guest"})
	assert.Error(t, err)
}

func TestPrincipal_HasRole(t *testing.T) {
	readonly := auth.Principal{Role: auth.RoleReadonly}

	assert.False(t, readonly.HasRole(auth.RoleAdmin, auth.RoleUser))
	assert.True(t, readonly.HasRole(auth.RoleReadonly))
	assert.False(t, readonly.HasRole())
}

func TestContext(t *testing.T) {
	_, ok := auth.FromContext(context.Background())
	assert.False(t, ok)

	p := auth.Principal{UserID: uuid.New(), Role: auth.RoleAdmin}
	got, ok := auth.FromContext(auth.WithPrincipal(context.Background(), p))
	assert.True(t, ok)
	assert.Equal(t, p, got)
}
