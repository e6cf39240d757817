package srp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	salt, verifier, err := Generate("arthas", "frostmourne")
	require.NoError(t, err)
	require.Len(t, salt, SaltSize)
	require.Len(t, verifier, VerifierSize)

	require.True(t, Verify("arthas", "frostmourne", salt, verifier))
	// Login is case-insensitive on both halves of the credential pair.
	require.True(t, Verify("ARTHAS", "FROSTMOURNE", salt, verifier))
}

func TestVerify_WrongPassword(t *testing.T) {
	salt, verifier, err := Generate("jaina", "kul-tiras")
	require.NoError(t, err)

	require.False(t, Verify("jaina", "kul-tira", salt, verifier))
	require.False(t, Verify("jaina", "", salt, verifier))
	require.False(t, Verify("jain", "kul-tiras", salt, verifier))
}

func TestVerify_MalformedInputFailsClosed(t *testing.T) {
	salt, verifier, err := Generate("thrall", "doomhammer")
	require.NoError(t, err)

	require.False(t, Verify("thrall", "doomhammer", salt[:16], verifier))
	require.False(t, Verify("thrall", "doomhammer", salt, verifier[:16]))
	require.False(t, Verify("thrall", "doomhammer", nil, verifier))
	require.False(t, Verify("thrall", "doomhammer", salt, nil))
	require.False(t, Verify("thrall", "doomhammer", append(salt, 0), verifier))
}

func TestGenerate_SaltsDiffer(t *testing.T) {
	s1, v1, err := Generate("sylvanas", "banshee")
	require.NoError(t, err)
	s2, v2, err := Generate("sylvanas", "banshee")
	require.NoError(t, err)

	require.False(t, bytes.Equal(s1, s2), "salts must be random per call")
	require.False(t, bytes.Equal(v1, v2), "verifiers are keyed by the salt")

	// Each pair still verifies independently.
	require.True(t, Verify("sylvanas", "banshee", s1, v1))
	require.True(t, Verify("sylvanas", "banshee", s2, v2))
	// Mixed pairs must not.
	require.False(t, Verify("sylvanas", "banshee", s1, v2))
}

func TestComputeVerifier_Deterministic(t *testing.T) {
	salt := bytes.Repeat([]byte{0xAB}, SaltSize)
	v1 := computeVerifier("uther", "lightbringer", salt)
	v2 := computeVerifier("UTHER", "LIGHTBRINGER", salt)
	require.Equal(t, v1, v2, "derivation must canonicalize case")
	require.Len(t, v1, VerifierSize)
}

func TestCanonical(t *testing.T) {
	require.Equal(t, "MIXEDCASE123", Canonical("mixedCase123"))
}
