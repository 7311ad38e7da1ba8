package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fastArgon2 = Argon2Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func hashers(t *testing.T) map[string]PasswordHasher {
	t.Helper()
	b, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return map[string]PasswordHasher{
		"bcrypt":   b,
		"argon2id": NewArgon2idHasher(fastArgon2),
	}
}

func TestHasher_RoundTrip(t *testing.T) {
	for name, h := range hashers(t) {
		t.Run(name, func(t *testing.T) {
			hash, err := h.Hash("correct horse")
			require.NoError(t, err)

			assert.NotEqual(t, "correct horse", hash)
			assert.True(t, h.Verify("correct horse", hash))
			assert.False(t, h.Verify("wrong horse", hash))
			assert.False(t, h.Verify("", hash))
		})
	}
}

func TestHasher_SaltedOutputDiffers(t *testing.T) {
	for name, h := range hashers(t) {
		t.Run(name, func(t *testing.T) {
			a, err := h.Hash("same-password")
			require.NoError(t, err)
			b, err := h.Hash("same-password")
			require.NoError(t, err)

			assert.NotEqual(t, a, b)
			assert.True(t, h.Verify("same-password", a))
			assert.True(t, h.Verify("same-password", b))
		})
	}
}

func TestHasher_RejectsPasswordOverLimit(t *testing.T) {
	for name, h := range hashers(t) {
		t.Run(name, func(t *testing.T) {
			atLimit := strings.Repeat("p", h.MaxPasswordBytes())
			hash, err := h.Hash(atLimit)
			require.NoError(t, err)
			assert.True(t, h.Verify(atLimit, hash))

			_, err = h.Hash(atLimit + "p")
			assert.ErrorIs(t, err, ErrPasswordTooLong)
		})
	}
}

func TestBcryptHasher_LimitIsBytes(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, 72, h.MaxPasswordBytes())

	// 37 two-byte runes: under 72 characters, over 72 bytes.
	_, err = h.Hash(strings.Repeat("é", 37))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestHasher_MalformedHashIsFalse(t *testing.T) {
	malformed := []string{
		"",
		"plain",
		"$2a$10$short",
		"$argon2id$v=19$m=65536,t=1,p=4$$",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdHNhbHRzYWx0c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=1,p=4$c2FsdHNhbHRzYWx0c2FsdA$a2V5",
		"$argon2id$v=19$m=99999999,t=1,p=4$c2FsdHNhbHRzYWx0c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$a2V5",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdHNhbHRzYWx0c2FsdA$a2V5",
	}
	for name, h := range hashers(t) {
		for _, m := range malformed {
			assert.False(t, h.Verify("pw", m), "%s: %q", name, m)
		}
	}
}

func TestBcryptHasher_EmbedsCost(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestBcryptHasher_CostBounds(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)

	h, err := NewBcryptHasher(0)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}

func TestArgon2idHasher_PHCFormat(t *testing.T) {
	hash, err := NewArgon2idHasher(fastArgon2).Hash("pw")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$"), hash)
	assert.Len(t, strings.Split(hash, "$"), 6)
}

func TestArgon2idHasher_VerifiesWithStoredParams(t *testing.T) {
	hash, err := NewArgon2idHasher(fastArgon2).Hash("pw")
	require.NoError(t, err)

	other := NewArgon2idHasher(Argon2Params{Memory: 16 * 1024, Time: 2, Parallelism: 2, SaltLength: 8, KeyLength: 16})
	assert.True(t, other.Verify("pw", hash))
}

func TestNewPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher("bcrypt", bcrypt.MinCost)
	require.NoError(t, err)
	assert.IsType(t, &BcryptHasher{}, h)

	h, err = NewPasswordHasher("argon2id", 0)
	require.NoError(t, err)
	assert.IsType(t, &Argon2idHasher{}, h)

	_, err = NewPasswordHasher("md5", 0)
	assert.Error(t, err)
}
