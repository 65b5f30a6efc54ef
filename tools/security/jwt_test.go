package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("unit-test-secret")

func TestGenerateAndVerify(t *testing.T) {
	opts := DefaultOptions(testSecret)

	token, hash, exp, err := Generate(opts, 42, "access")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, exp.After(time.Now()))
	require.Equal(t, HashToken(token), hash)

	uid, claims, err := Verify(opts, token)
	require.NoError(t, err)
	require.Equal(t, int64(42), uid)
	require.Equal(t, "access", claims.Kind)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, _, err := Generate(DefaultOptions(testSecret), 1, "access")
	require.NoError(t, err)

	_, _, err = Verify(DefaultOptions([]byte("other-secret")), token)
	require.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	opts := DefaultOptions(testSecret)
	opts.TTL = time.Millisecond
	token, _, _, err := Generate(opts, 1, "access")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	_, _, err = Verify(opts, token)
	require.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, _, err := Verify(DefaultOptions(testSecret), "not.a.jwt")
	require.Error(t, err)
}

func TestKindRoundTrip(t *testing.T) {
	opts := DefaultOptions(testSecret)
	token, _, _, err := Generate(opts, 7, "refresh")
	require.NoError(t, err)

	_, claims, err := Verify(opts, token)
	require.NoError(t, err)
	require.Equal(t, "refresh", claims.Kind)
}

func TestUnsupportedAlg(t *testing.T) {
	opts := Options{Secret: testSecret, Alg: "RS256"}
	_, _, _, err := Generate(opts, 1, "access")
	require.Error(t, err)
}
