package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetenv(t *testing.T) {
	t.Setenv("TEST_STR", "hello")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_EMPTY", "")
	t.Setenv("TEST_BAD_INT", "not a number")

	s, err := Getenv(GetenvString, "TEST_STR", true, "")
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	n, err := Getenv(GetenvInt, "TEST_INT", false, 0)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	b, err := Getenv(GetenvBool, "TEST_BOOL", false, false)
	require.NoError(t, err)
	assert.True(t, b)

	// Empty counts as missing.
	s, err = Getenv(GetenvString, "TEST_EMPTY", false, "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", s)

	_, err = Getenv(GetenvString, "TEST_EMPTY", true, "")
	assert.Error(t, err)

	// Missing optional key yields the fallback.
	n, err = Getenv(GetenvInt, "TEST_UNSET_KEY", false, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	// Present but unparseable is an error even when optional.
	_, err = Getenv(GetenvInt, "TEST_BAD_INT", false, 0)
	assert.Error(t, err)
}
