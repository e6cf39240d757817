// Package srp implements the SRP6 verifier scheme used by the game's
// authentication server. Only verifier generation and verification live
// here; the full login handshake is performed by the game client against
// the game's own auth daemon, which reads the same salt/verifier rows.
//
// The parameters are the game protocol's published set and must not change:
// verifiers already stored by the game servers were computed with them, and
// this portal does not own the party that computed them.
package srp

import (
	"crypto/sha1"
	"crypto/subtle"
	"math/big"
	"strings"

	"github.com/tavrin/realmportal/internal/common"
)

const (
	// SaltSize is the fixed width of the stored salt, in bytes.
	SaltSize = 32
	// VerifierSize is the fixed width of the stored verifier, in bytes.
	VerifierSize = 32
)

// Protocol constants: 256-bit safe prime N and generator g, hash SHA-1.
// All integers on the wire and in the database are little-endian.
var (
	primeN = mustParseHex("894B645E89E1535BBDAD5B8B290650530801B18EBFBF5E8FAB3C82872A3E9BB7")
	genG   = big.NewInt(7)
)

func mustParseHex(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("srp: bad prime literal")
	}
	return n
}

// Canonical returns the canonical (uppercase) form of a username, the key
// under which credentials are stored and hashed.
func Canonical(username string) string {
	return strings.ToUpper(username)
}

// Generate produces a fresh random salt and the matching verifier for the
// given credentials. The username is canonicalized before hashing.
func Generate(username, password string) (salt, verifier []byte, err error) {
	salt = common.GenerateRandByteArray(SaltSize)
	return salt, computeVerifier(username, password, salt), nil
}

// Verify recomputes the verifier for (username, password, salt) and compares
// it to the stored verifier in constant time. Any malformed input (wrong
// salt or verifier width) fails closed: the function returns false and never
// reports why.
func Verify(username, password string, salt, verifier []byte) bool {
	if len(salt) != SaltSize || len(verifier) != VerifierSize {
		return false
	}
	candidate := computeVerifier(username, password, salt)
	return subtle.ConstantTimeCompare(candidate, verifier) == 1
}

// computeVerifier derives v = g^x mod N with
// x = H(salt || H(USERNAME ":" PASSWORD)), both digests SHA-1 and x taken
// as a little-endian integer.
func computeVerifier(username, password string, salt []byte) []byte {
	ident := sha1.Sum([]byte(Canonical(username) + ":" + Canonical(password)))

	h := sha1.New()
	h.Write(salt)
	h.Write(ident[:])
	xBytes := h.Sum(nil)

	x := new(big.Int).SetBytes(reverse(xBytes))
	v := new(big.Int).Exp(genG, x, primeN)

	// x is password-equivalent; do not leave it lying around.
	common.WipeByteArray(xBytes)

	return reverse(padBytes(v.Bytes(), VerifierSize))
}

// padBytes left-pads b with zeros to exactly size bytes.
func padBytes(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}

// reverse returns a reversed copy of b (big-endian <-> little-endian).
func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
