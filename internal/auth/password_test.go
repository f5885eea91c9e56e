package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	h, err := NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("longpw123")
	require.NoError(t, err)
	assert.NotEqual(t, "longpw123", hash)

	require.NoError(t, h.Compare(hash, "longpw123"))
	assert.ErrorIs(t, h.Compare(hash, "wrong-password"), ErrPasswordMismatch)

	again, err := h.Hash("longpw123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes must be salted")

	h.CompareDummy("anything")
}

func TestNewHasherClampsCost(t *testing.T) {
	h, err := NewHasher(99)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}
