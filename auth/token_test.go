package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewToken("s3cret", time.Now())
	require.NoError(t, err)

	assert.NoError(t, Verify("s3cret", token))
	assert.Error(t, Verify("other", token))
}

func TestExpiredToken(t *testing.T) {
	token, err := NewToken("s3cret", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	assert.Error(t, Verify("s3cret", token))
}

func TestFromHeader(t *testing.T) {
	token, err := FromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = FromHeader("bearer xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	for _, h := range []string{"", "Bearer ", "Basic abc", "abc"} {
		_, err := FromHeader(h)
		assert.Equal(t, ErrMissingToken, err, h)
	}
}
