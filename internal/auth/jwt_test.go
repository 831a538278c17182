package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yukikurage/hoc-admin-api/internal/models"
)

func TestManager_IssueAndVerify(t *testing.T) {
	m := NewManager("secret", 8*time.Hour)

	token, expiresAt, err := m.Issue("user-1", "a@x.com", models.RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), expiresAt, time.Minute)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestManager_RejectsAlteredSignature(t *testing.T) {
	m := NewManager("secret", 8*time.Hour)

	token, _, err := m.Issue("user-1", "a@x.com", models.RoleOperatore)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)

	for i := range sig {
		altered := make([]byte, len(sig))
		copy(altered, sig)
		altered[i] ^= 0x01

		tampered := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(altered)
		_, err := m.Verify(tampered)
		require.ErrorIs(t, err, ErrInvalidToken, "byte %d", i)
	}
}

func TestManager_RejectsAlteredPayload(t *testing.T) {
	m := NewManager("secret", 8*time.Hour)

	token, _, err := m.Issue("user-1", "a@x.com", models.RoleOperatore)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	forged := strings.Replace(string(payload), `"OPERATORE"`, `"ADMIN"`, 1)
	tampered := parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(forged)) + "." + parts[2]

	_, err = m.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_RejectsExpiredToken(t *testing.T) {
	m := NewManager("secret", 8*time.Hour)
	issuedAt := time.Now().Add(-9 * time.Hour)
	m.now = func() time.Time { return issuedAt }

	token, _, err := m.Issue("user-1", "a@x.com", models.RoleAdmin)
	require.NoError(t, err)

	m.now = func() time.Time { return issuedAt.Add(7*time.Hour + 59*time.Minute) }
	_, err = m.Verify(token)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestManager_RejectsOtherSecret(t *testing.T) {
	token, _, err := NewManager("one", time.Hour).Issue("user-1", "a@x.com", models.RoleAdmin)
	require.NoError(t, err)

	_, err = NewManager("two", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHasher(t *testing.T) {
	h := NewHasher(4)
	assert.Equal(t, MinBcryptCost, h.cost)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.NoError(t, h.Compare(hash, "secret1"))
	assert.Error(t, h.Compare(hash, "secret2"))
}

func TestHasher_CompareUnknownAlwaysFailsAtSameCost(t *testing.T) {
	h := NewHasher(MinBcryptCost)

	assert.Error(t, h.CompareUnknown("secret1"))
	assert.Error(t, h.CompareUnknown("hoc-admin-api:no-such-account"))

	cost, err := bcrypt.Cost(h.unknownHash)
	require.NoError(t, err)
	assert.Equal(t, h.cost, cost)
}
