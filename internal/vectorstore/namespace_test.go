package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamespaceKeyPassthrough(t *testing.T) {
	assert.Equal(t, "report-2024.pdf", NamespaceKey("report-2024.pdf"))
	assert.Equal(t, "ABCxyz019", NamespaceKey("ABCxyz019"))
}

func TestNamespaceKeyEncodesUnsafeBytes(t *testing.T) {
	assert.Equal(t, "my_20file.pdf", NamespaceKey("my file.pdf"))
	assert.Equal(t, "a_2fb", NamespaceKey("a/b"))
	// '_' is the escape prefix, so a literal underscore is encoded too
	assert.Equal(t, "a_5fb", NamespaceKey("a_b"))
	// non-ASCII runes encode byte by byte
	assert.Equal(t, "h_c3_a9llo", NamespaceKey("héllo"))
}

func TestNamespaceKeyInjective(t *testing.T) {
	keys := []string{"a_b", "a_5fb", "ab", "a b", "a%20b", "a/b", "a.b"}
	seen := make(map[string]string)
	for _, k := range keys {
		enc := NamespaceKey(k)
		prev, dup := seen[enc]
		assert.False(t, dup, "%q and %q collide on %q", k, prev, enc)
		seen[enc] = k
	}
}

func TestNamespaceKeyDeterministic(t *testing.T) {
	assert.Equal(t, NamespaceKey("Ünïcode key!"), NamespaceKey("Ünïcode key!"))
}
