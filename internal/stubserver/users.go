package stubserver

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB   uint32 = 8 * 1024
	minSaltLength uint32 = 16
	minKeyLength  uint32 = 16
	hashAlgorithm        = "argon2id"
)

var (
	// ErrUserExists is returned by [Users.Add] for a taken username.
	ErrUserExists = errors.New("user already exists")
	// ErrEmptyCredentials is returned by [Users.Add] when either field is empty.
	ErrEmptyCredentials = errors.New("username and password are required")
	errInvalidHash      = errors.New("invalid argon2id hash")
)

// HashConfig tunes argon2id.
type HashConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHashConfig is deliberately light; the stub only guards demo accounts.
func DefaultHashConfig() HashConfig {
	return HashConfig{
		Memory:      minMemoryKB,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (c HashConfig) validate() error {
	switch {
	case c.Memory < minMemoryKB:
		return fmt.Errorf("argon2 memory must be >= %d KB", minMemoryKB)
	case c.Time < 1:
		return errors.New("argon2 time must be >= 1")
	case c.Parallelism < 1:
		return errors.New("argon2 parallelism must be >= 1")
	case c.SaltLength < minSaltLength:
		return fmt.Errorf("argon2 salt length must be >= %d", minSaltLength)
	case c.KeyLength < minKeyLength:
		return fmt.Errorf("argon2 key length must be >= %d", minKeyLength)
	}
	return nil
}

type user struct {
	id   string
	hash string
}

// Users is an in-memory username to password-hash directory.
type Users struct {
	config HashConfig

	mu    sync.RWMutex
	users map[string]user
}

// NewUsers returns an empty directory hashing with cfg.
func NewUsers(cfg HashConfig) (*Users, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Users{config: cfg, users: make(map[string]user)}, nil
}

// Add registers username with password and returns the generated user ID.
func (u *Users) Add(username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrEmptyCredentials
	}
	hash, err := u.hash(password)
	if err != nil {
		return "", err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.users[username]; ok {
		return "", ErrUserExists
	}
	id := uuid.NewString()
	u.users[username] = user{id: id, hash: hash}
	return id, nil
}

// Authenticate returns the user ID when password matches. Unknown usernames
// still pay for one hash so timing does not reveal which names exist.
func (u *Users) Authenticate(username, password string) (string, bool) {
	u.mu.RLock()
	rec, ok := u.users[username]
	u.mu.RUnlock()

	if !ok {
		_, _ = u.hash(password)
		return "", false
	}
	match, err := verifyHash(password, rec.hash)
	if err != nil || !match {
		return "", false
	}
	return rec.id, true
}

// Len reports the number of registered users.
func (u *Users) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.users)
}

// hash encodes password as $argon2id$v=19$m=..,t=..,p=..$salt$key.
func (u *Users) hash(password string) (string, error) {
	salt := make([]byte, u.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, u.config.Time, u.config.Memory, u.config.Parallelism, u.config.KeyLength)
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		hashAlgorithm, argon2.Version,
		u.config.Memory, u.config.Time, u.config.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

type phc struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func verifyHash(password, encoded string) (bool, error) {
	p, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}
	computed := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.parallelism, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(computed, p.key) == 1, nil
}

func parsePHC(encoded string) (phc, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != hashAlgorithm {
		return phc{}, errInvalidHash
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return phc{}, fmt.Errorf("%w: version %q", errInvalidHash, parts[2])
	}

	var out phc
	for _, pair := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return phc{}, errInvalidHash
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 {
			return phc{}, fmt.Errorf("%w: parameter %s", errInvalidHash, k)
		}
		switch k {
		case "m":
			out.memory = uint32(n)
		case "t":
			out.time = uint32(n)
		case "p":
			if n > 255 {
				return phc{}, fmt.Errorf("%w: parameter p", errInvalidHash)
			}
			out.parallelism = uint8(n)
		default:
			return phc{}, fmt.Errorf("%w: parameter %s", errInvalidHash, k)
		}
	}
	if out.memory == 0 || out.time == 0 || out.parallelism == 0 {
		return phc{}, errInvalidHash
	}

	var err error
	if out.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(out.salt) < int(minSaltLength) {
		return phc{}, fmt.Errorf("%w: salt", errInvalidHash)
	}
	if out.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(out.key) == 0 {
		return phc{}, fmt.Errorf("%w: key", errInvalidHash)
	}
	return out, nil
}
