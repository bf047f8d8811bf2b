package token_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-portal-session/internal/errors"
	"github.com/jrsteele09/go-portal-session/token"
	"github.com/stretchr/testify/require"
)

const testHeader = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9"

// unsignedToken builds header.payload.sig around an arbitrary JSON payload
func unsignedToken(t *testing.T, payload any) string {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return testHeader + "." + base64.RawURLEncoding.EncodeToString(b) + ".c2ln"
}

func TestDecode_SignedToken(t *testing.T) {
	iat := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "E1",
		"usr": "a.b@example.com",
		"iat": iat.Unix(),
		"exp": iat.Add(time.Hour).Unix(),
		"profile": map[string]any{
			"ORG_ID":    "10",
			"EMP_ID":    "E1",
			"EMP_FNAME": "A",
			"EMP_LNAME": "B",
			"POS_ID":    "P1",
			"ROLE_ID":   "R1",
		},
	}).SignedString([]byte("any-secret"))
	require.NoError(t, err)

	claims, err := token.Decode(signed)
	require.NoError(t, err)
	require.Equal(t, "10", claims.Profile.OrganizationID)
	require.Equal(t, "E1", claims.Profile.EmployeeID)
	require.Equal(t, "A B", claims.Profile.DisplayName())
	require.Equal(t, "P1", claims.Profile.PositionID)
	require.Equal(t, "R1", claims.Profile.RoleID)
	require.Equal(t, "E1", claims.Subject)
	require.Equal(t, "a.b@example.com", claims.User)
	require.NotNil(t, claims.IssuedAt)
	require.True(t, claims.IssuedAt.Time.Equal(iat))
	require.True(t, claims.ExpiresAt.Time.Equal(iat.Add(time.Hour)))
}

func TestDecode_ProfileNormalisation(t *testing.T) {
	profile := map[string]any{"ORG_ID": "10", "EMP_ID": "E1", "EMP_FNAME": "A", "EMP_LNAME": "B", "POS_ID": "P1"}

	t.Run("object", func(t *testing.T) {
		claims, err := token.Decode(unsignedToken(t, map[string]any{"profile": profile}))
		require.NoError(t, err)
		require.Equal(t, "E1", claims.Profile.EmployeeID)
	})

	t.Run("single element list", func(t *testing.T) {
		claims, err := token.Decode(unsignedToken(t, map[string]any{"profile": []any{profile}}))
		require.NoError(t, err)
		require.Equal(t, "E1", claims.Profile.EmployeeID)
		require.Equal(t, "P1", claims.Profile.PositionID)
	})

	t.Run("numeric ids", func(t *testing.T) {
		claims, err := token.Decode(unsignedToken(t, map[string]any{"profile": map[string]any{"ORG_ID": 10, "EMP_ID": 12345678901}}))
		require.NoError(t, err)
		require.Equal(t, "10", claims.Profile.OrganizationID)
		require.Equal(t, "12345678901", claims.Profile.EmployeeID)
	})

	t.Run("padded payload", func(t *testing.T) {
		b, err := json.Marshal(map[string]any{"profile": profile})
		require.NoError(t, err)
		claims, err := token.Decode(testHeader + "." + base64.URLEncoding.EncodeToString(b) + ".c2ln")
		require.NoError(t, err)
		require.Equal(t, "10", claims.Profile.OrganizationID)
	})
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", errors.ErrMalformedToken},
		{"one segment", "abc", errors.ErrMalformedToken},
		{"two segments", "abc.def", errors.ErrMalformedToken},
		{"four segments", "a.b.c.d", errors.ErrMalformedToken},
		{"standard base64 characters", testHeader + ".eyJw+/8.sig", errors.ErrInvalidEncoding},
		{"non alphabet characters", testHeader + ".e$J*.sig", errors.ErrInvalidEncoding},
		{"line feed in payload", testHeader + ".eyJwcm9m\naWxlIjp7fX0.sig", errors.ErrInvalidEncoding},
		{"carriage return in payload", testHeader + ".eyJwcm9m\r\naWxlIjp7fX0.sig", errors.ErrInvalidEncoding},
		{"not json", testHeader + "." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".sig", errors.ErrInvalidPayload},
		{"json array payload", testHeader + "." + base64.RawURLEncoding.EncodeToString([]byte(`[1,2]`)) + ".sig", errors.ErrInvalidPayload},
		{"empty payload", testHeader + "..sig", errors.ErrInvalidPayload},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := token.Decode(tc.token)
			require.Error(t, err)
			require.ErrorIs(t, err, tc.want)
			require.Nil(t, claims)
		})
	}
}

func TestDecode_InvalidProfile(t *testing.T) {
	tests := []struct {
		name    string
		payload any
	}{
		{"missing profile", map[string]any{"sub": "E1"}},
		{"null profile", map[string]any{"profile": nil}},
		{"empty list", map[string]any{"profile": []any{}}},
		{"two element list", map[string]any{"profile": []any{map[string]any{}, map[string]any{}}}},
		{"string profile", map[string]any{"profile": "E1"}},
		{"bad iat", map[string]any{"profile": map[string]any{}, "iat": "yesterday"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := token.Decode(unsignedToken(t, tc.payload))
			require.ErrorIs(t, err, errors.ErrInvalidPayload)
			require.Nil(t, claims)
		})
	}
}
