package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	h, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", h)
	assert.True(t, CheckPassword(h, "s3cret-pass"))
	assert.False(t, CheckPassword(h, "other"))
}
