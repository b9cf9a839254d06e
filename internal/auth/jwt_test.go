package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	actorID := uuid.New()
	name := "Ada Cashier"

	token, err := GenerateToken(actorID, name, testSecret, 12*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, actorID, claims.ActorID)
	assert.Equal(t, name, claims.Name)
}

func TestValidateToken(t *testing.T) {
	actorID := uuid.New()

	validToken, err := GenerateToken(actorID, "", testSecret, 12*time.Hour)
	require.NoError(t, err)

	expiredToken, err := GenerateToken(actorID, "", testSecret, -1*time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name      string
		token     string
		secret    string
		wantErrIs error
	}{
		{
			name:      "expired token",
			token:     expiredToken,
			secret:    testSecret,
			wantErrIs: jwt.ErrTokenExpired,
		},
		{
			name:      "wrong secret",
			token:     validToken,
			secret:    "wrong-secret",
			wantErrIs: jwt.ErrTokenSignatureInvalid,
		},
		{
			name:      "malformed token",
			token:     "not.a.valid.jwt",
			secret:    testSecret,
			wantErrIs: jwt.ErrTokenMalformed,
		},
		{
			name:      "empty token",
			token:     "",
			secret:    testSecret,
			wantErrIs: jwt.ErrTokenMalformed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateToken(tc.token, tc.secret)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErrIs)
		})
	}
}

func TestValidateToken_RejectsNonHMAC(t *testing.T) {
	// Algorithm confusion: a token signed with "none" should be rejected
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateToken(signed, testSecret)
	require.Error(t, err)
}

func TestValidateToken_RequiresSubjectAndExpiry(t *testing.T) {
	tests := []struct {
		name   string
		claims tokenClaims
	}{
		{
			name: "subject is not a uuid",
			claims: tokenClaims{RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "cashier-7",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			}},
		},
		{
			name: "no expiry",
			claims: tokenClaims{RegisteredClaims: jwt.RegisteredClaims{
				Subject: uuid.NewString(),
			}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc.claims).SignedString([]byte(testSecret))
			require.NoError(t, err)

			_, err = ValidateToken(signed, testSecret)
			require.Error(t, err)
		})
	}
}

func TestActorContext(t *testing.T) {
	_, ok := ActorIDFromContext(context.Background())
	assert.False(t, ok)

	id := uuid.New()
	got, ok := ActorIDFromContext(ContextWithActorID(context.Background(), id))
	require.True(t, ok)
	assert.Equal(t, id, got)
}
