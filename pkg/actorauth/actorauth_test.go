package actorauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPassword_VerifyRoundTrip(t *testing.T) {
	hash, err := SetPassword("correct-horse-battery-staple")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.True(t, Verify(hash, "correct-horse-battery-staple"))
	assert.False(t, Verify(hash, "wrong-password"))
}

func TestSetPasswordWithCost(t *testing.T) {
	hash, err := SetPasswordWithCost("another-password", 4)
	require.NoError(t, err)
	assert.True(t, Verify(hash, "another-password"))
}

func TestVerify_RejectsMalformedHash(t *testing.T) {
	assert.False(t, Verify("not-a-bcrypt-hash", "anything"))
}
