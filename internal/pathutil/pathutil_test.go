package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitDepth(t *testing.T) {
	assert.Equal(t, 1, SplitDepth("a"))
	assert.Equal(t, 2, SplitDepth("/a"))
	assert.Equal(t, 4, SplitDepth("/a/b/c"))
}

func TestStartsWithSlash(t *testing.T) {
	assert.True(t, StartsWithSlash("/src/main/java", "/src/main"))
	assert.False(t, StartsWithSlash("/src/main-extra", "/src/main"))
	assert.False(t, StartsWithSlash("/src/main", "/src/main"))
}

func TestFQNToRelPath(t *testing.T) {
	assert.Equal(t, "/com/x/App", FQNToRelPath("com.x.App"))
	assert.Equal(t, "/App", FQNToRelPath("App"))
	assert.Equal(t, "", FQNToRelPath(""))
}

func TestPackageOf(t *testing.T) {
	assert.Equal(t, "com.x", PackageOf("com.x.App"))
	assert.Equal(t, "", PackageOf("App"))
}

func TestStripSuffix(t *testing.T) {
	root, ok := StripSuffix("/src/main/java/com/x", "/com/x")
	assert.True(t, ok)
	assert.Equal(t, "/src/main/java", root)

	_, ok = StripSuffix("/src/main/java/org/y", "/com/x")
	assert.False(t, ok)

	// Empty suffix leaves the directory untouched.
	root, ok = StripSuffix("/src", "")
	assert.True(t, ok)
	assert.Equal(t, "/src", root)
}

// Round-trip contract: stripping the package suffix of a class FQN from the
// directory that holds its file recovers the artifact root.
func TestRoundTripArtifactRoot(t *testing.T) {
	cases := []struct {
		fqn  string
		path string
		root string
	}{
		{"com.x.App", "/src/main/java/com/x/App.class", "/src/main/java"},
		{"a.B", "/a/B.java", ""},
		{"Main", "/Main.class", ""},
	}
	for _, tc := range cases {
		suffix := FQNToRelPath(PackageOf(tc.fqn))
		dir := ParentDir(tc.path)
		root, ok := StripSuffix(dir, suffix)
		assert.True(t, ok, "fqn %s should anchor in %s", tc.fqn, dir)
		assert.Equal(t, tc.root, root)
	}
}

func TestCommonPath(t *testing.T) {
	assert.Equal(t, "/proj", CommonPath([]string{"/proj/src", "/proj/lib"}))
	assert.Equal(t, "/proj/src", CommonPath([]string{"/proj/src"}))
	assert.Equal(t, "/", CommonPath([]string{"/a/b", "/c/d"}))
	assert.Equal(t, "", CommonPath(nil))
}

func TestRelPathToFQN(t *testing.T) {
	assert.Equal(t, "com.x", RelPathToFQN("com/x"))
	assert.Equal(t, "a", RelPathToFQN("a"))
}
