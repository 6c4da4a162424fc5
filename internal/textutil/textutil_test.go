package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasLetter(t *testing.T) {
	assert.True(t, HasLetter("[0] hola"))
	assert.True(t, HasLetter("ñ"))
	assert.False(t, HasLetter("[0][1]"))
	assert.False(t, HasLetter(""))
	assert.False(t, HasLetter(" 12 - 3 "))
}

func TestHash(t *testing.T) {
	assert.Equal(t, Hash("en", "es", "hi"), Hash("en", "es", "hi"))
	assert.NotEqual(t, Hash("ab", "c"), Hash("a", "bc"))
	assert.Len(t, Hash("x"), 64)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "añb...", Truncate("añbcd", 3))
}
