package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiwake-app/shiwake_backend/internal/utils"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := utils.HashPassword("p@ssw0rd-2024")
	require.NoError(t, err)
	assert.NotEqual(t, "p@ssw0rd-2024", hash)

	assert.True(t, utils.CheckPasswordHash("p@ssw0rd-2024", hash))
	assert.False(t, utils.CheckPasswordHash("p@ssw0rd-2025", hash))
}

func TestCheckPasswordHash_MalformedHash(t *testing.T) {
	assert.False(t, utils.CheckPasswordHash("anything", "not-a-bcrypt-hash"))
}
