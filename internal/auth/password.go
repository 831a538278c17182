package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost is the lowest cost accepted for stored passwords.
const MinBcryptCost = 10

// Hasher hashes passwords with bcrypt at a fixed cost.
type Hasher struct {
	cost int

	unknownOnce sync.Once
	unknownHash []byte
}

func NewHasher(cost int) *Hasher {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare returns nil when plain matches hash.
func (h *Hasher) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// CompareUnknown does the bcrypt work of Compare against a hash of the same
// cost that no password matches, and always fails. Logins for accounts that
// do not exist call it so they take as long as a wrong password.
func (h *Hasher) CompareUnknown(plain string) error {
	h.unknownOnce.Do(func() {
		h.unknownHash, _ = bcrypt.GenerateFromPassword([]byte("hoc-admin-api:no-such-account"), h.cost)
	})
	if err := bcrypt.CompareHashAndPassword(h.unknownHash, []byte(plain)); err != nil {
		return err
	}
	return bcrypt.ErrMismatchedHashAndPassword
}
