package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns raw passwords into self-describing salted hashes and
// checks candidates against them. Verify never fails loudly: a malformed
// stored hash simply does not match.
type PasswordHasher interface {
	Hash(raw string) (string, error)
	Verify(raw, hash string) bool
	// MaxPasswordBytes is the longest password Hash accepts.
	MaxPasswordBytes() int
}

// ErrPasswordTooLong is returned by Hash for passwords over MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("password too long")

const (
	bcryptMaxPasswordBytes   = 72
	argon2idMaxPasswordBytes = 1024
)

// NewPasswordHasher returns the hasher registered under name
// ("bcrypt" or "argon2id"). cost is only used by bcrypt; zero means
// bcrypt.DefaultCost.
func NewPasswordHasher(name string, cost int) (PasswordHasher, error) {
	switch name {
	case "", "bcrypt":
		return NewBcryptHasher(cost)
	case "argon2id":
		return NewArgon2idHasher(DefaultArgon2Params), nil
	}
	return nil, fmt.Errorf("unknown password hasher %q", name)
}

// BcryptHasher stores passwords as bcrypt hashes ($2a$<cost>$...).
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

func (h *BcryptHasher) Hash(raw string) (string, error) {
	if len(raw) > bcryptMaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(raw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

func (h *BcryptHasher) MaxPasswordBytes() int { return bcryptMaxPasswordBytes }

// Argon2Params are the argon2id tuning knobs recorded inside every hash.
type Argon2Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params follow the OWASP baseline for argon2id.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Time:        1,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// maxArgon2Memory bounds the memory a stored hash may ask Verify to spend.
const maxArgon2Memory = 1024 * 1024

var errMalformedHash = errors.New("malformed argon2id hash")

// Argon2idHasher stores passwords in PHC string format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
type Argon2idHasher struct {
	p Argon2Params
}

func NewArgon2idHasher(p Argon2Params) *Argon2idHasher {
	return &Argon2idHasher{p: p}
}

func (h *Argon2idHasher) Hash(raw string) (string, error) {
	if len(raw) > argon2idMaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	salt := make([]byte, h.p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("argon2id salt: %w", err)
	}
	key := argon2.IDKey([]byte(raw), salt, h.p.Time, h.p.Memory, h.p.Parallelism, h.p.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.p.Memory, h.p.Time, h.p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Verify(raw, hash string) bool {
	p, salt, key, err := decodeArgon2id(hash)
	if err != nil {
		return false
	}
	candidate := argon2.IDKey([]byte(raw), salt, p.Time, p.Memory, p.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(candidate, key) == 1
}

func (h *Argon2idHasher) MaxPasswordBytes() int { return argon2idMaxPasswordBytes }

func decodeArgon2id(hash string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errMalformedHash
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Parallelism); err != nil {
		return p, nil, nil, errMalformedHash
	}
	if p.Memory == 0 || p.Memory > maxArgon2Memory || p.Time == 0 || p.Parallelism == 0 {
		return p, nil, nil, errMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, errMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, errMalformedHash
	}
	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))
	return p, salt, key, nil
}
