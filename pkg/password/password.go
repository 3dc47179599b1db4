// Package password hashes and verifies user passwords with Argon2id.
//
// Hashes are self-describing PHC strings of the form
//
//	$argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<key_b64>
//
// so verification needs no side channel beyond the stored value. The
// plaintext never leaves this package and is never logged.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const version = argon2.Version

// Params are the Argon2id cost parameters embedded in every hash.
type Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams follow the current OWASP baseline for Argon2id.
var DefaultParams = Params{
	MemoryKiB:   64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher hashes and verifies passwords with a fixed set of parameters.
type Hasher struct {
	params Params
}

// NewHasher constructs a Hasher, filling zero fields from DefaultParams.
func NewHasher(params Params) *Hasher {
	if params.MemoryKiB == 0 {
		params.MemoryKiB = DefaultParams.MemoryKiB
	}
	if params.Iterations == 0 {
		params.Iterations = DefaultParams.Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = DefaultParams.Parallelism
	}
	if params.SaltLength == 0 {
		params.SaltLength = DefaultParams.SaltLength
	}
	if params.KeyLength == 0 {
		params.KeyLength = DefaultParams.KeyLength
	}
	return &Hasher{params: params}
}

// Hash derives an Argon2id hash of plaintext under a fresh random salt.
func (h *Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.params.Iterations, h.params.MemoryKiB, h.params.Parallelism, h.params.KeyLength)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		version, h.params.MemoryKiB, h.params.Iterations, h.params.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify reports whether plaintext matches the encoded hash.
//
// A malformed or hostile encoded value verifies as false; it never panics
// and never produces an error the caller could branch on differently from
// a plain mismatch. The comparison is constant time in the derived key.
func (h *Hasher) Verify(encoded, plaintext string) bool {
	params, salt, expected, ok := decode(encoded)
	if !ok {
		return false
	}
	if !withinBounds(params, h.params) {
		return false
	}

	key := argon2.IDKey([]byte(plaintext), salt, params.Iterations, params.MemoryKiB, params.Parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1
}

// withinBounds rejects hash strings whose declared parameters wildly exceed
// our configured costs, so an attacker-supplied row cannot drive pathological
// memory or CPU usage during verification.
func withinBounds(got, limits Params) bool {
	if got.MemoryKiB > limits.MemoryKiB*2 {
		return false
	}
	if got.Iterations > limits.Iterations*2 {
		return false
	}
	if got.Parallelism > limits.Parallelism*2 {
		return false
	}
	if got.SaltLength < 8 || got.SaltLength > 64 {
		return false
	}
	if got.KeyLength < 16 || got.KeyLength > 128 {
		return false
	}
	return true
}

func decode(encoded string) (Params, []byte, []byte, bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, false
	}

	var v int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &v); err != nil || v != version {
		return Params{}, nil, nil, false
	}

	var params Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.MemoryKiB, &params.Iterations, &params.Parallelism); err != nil {
		return Params{}, nil, nil, false
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, false
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, false
	}

	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(key))
	return params, salt, key, true
}
