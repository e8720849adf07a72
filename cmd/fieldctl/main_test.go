package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/fieldops/internal/adapters/http"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("FIELDOPS_AUTH_JWT_SECRET", "0123456789abcdef-secret")
	t.Setenv("FIELDOPS_AUTH_ISSUER", "fieldops")

	out, err := run(t, "token", "u1", "--name", "Budi")
	require.NoError(t, err)

	claims := &http.Claims{}
	_, err = jwt.ParseWithClaims(strings.TrimSpace(out), claims, func(*jwt.Token) (any, error) {
		return []byte("0123456789abcdef-secret"), nil
	}, jwt.WithIssuer("fieldops"))
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, "Budi", claims.Name)
}

func TestTokenCommand_NoSecret(t *testing.T) {
	t.Setenv("FIELDOPS_AUTH_JWT_SECRET", "")

	_, err := run(t, "token", "u1")
	require.ErrorContains(t, err, "jwt_secret")
}

func TestPurchaseCommand_BadID(t *testing.T) {
	_, err := run(t, "purchase", "abc")
	require.ErrorContains(t, err, "invalid order id")
}

func TestPurchaseStatusCommand_BadID(t *testing.T) {
	_, err := run(t, "purchase", "status", "0")
	require.ErrorContains(t, err, "invalid order id")
}
