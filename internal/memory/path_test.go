package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "/", Normalize(""))
	assert.Equal(t, "/", Normalize("/"))
	assert.Equal(t, "/a/b", Normalize("a/b"))
	assert.Equal(t, "/a/b", Normalize("//a//b//"))
	assert.Equal(t, "/a", Normalize("  /a  "))
}

func TestSplitJoin(t *testing.T) {
	assert.Empty(t, Split(Root))
	assert.Equal(t, []string{"profile", "name"}, Split("/profile/name"))
	assert.Equal(t, "/profile/name", Join([]string{"profile", "name"}))
	assert.Equal(t, Root, Join(nil))
}

func TestSplitJoinEscaping(t *testing.T) {
	path := Join([]string{"a/b", "c~d"})
	assert.Equal(t, []string{"a/b", "c~d"}, Split(path))
}

func TestChildParent(t *testing.T) {
	assert.Equal(t, "/profile/name", Child("/profile", "name"))

	parent, last := Parent("/profile/name")
	assert.Equal(t, "/profile", parent)
	assert.Equal(t, "name", last)

	parent, last = Parent(Root)
	assert.Equal(t, Root, parent)
	assert.Equal(t, "", last)
}

func TestHasTrailingWildcardAndTrim(t *testing.T) {
	assert.True(t, HasTrailingWildcard("/contacts/*"))
	assert.False(t, HasTrailingWildcard("/contacts"))

	base, ok := TrimWildcard("/contacts/*")
	assert.True(t, ok)
	assert.Equal(t, "/contacts", base)

	base, ok = TrimWildcard("/contacts")
	assert.False(t, ok)
	assert.Equal(t, "/contacts", base)
}

func TestIsDescendant(t *testing.T) {
	assert.True(t, IsDescendant("/profile/name", "/profile"))
	assert.True(t, IsDescendant("/profile", "/profile"))
	assert.True(t, IsDescendant("/profile", Root))
	assert.False(t, IsDescendant(Root, "/profile"))
	assert.False(t, IsDescendant("/profiled", "/profile"))
}

func TestIsIntegerToken(t *testing.T) {
	assert.True(t, IsIntegerToken("0"))
	assert.True(t, IsIntegerToken("-1"))
	assert.False(t, IsIntegerToken(""))
	assert.False(t, IsIntegerToken("-"))
	assert.False(t, IsIntegerToken("1a"))
}

func TestJoinRoundTripsIndexTokens(t *testing.T) {
	path := Child("/vocabulary", "3")
	require.Equal(t, "/vocabulary/3", path)
	assert.Equal(t, []string{"vocabulary", "3"}, Split(path))
}
