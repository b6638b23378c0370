package vectorstore

import (
	"fmt"
	"strings"
)

// NamespaceKey maps an opaque fileKey to an ASCII-safe store
// identifier. Letters, digits, '.' and '-' pass through; every other
// byte (including '_', which is the escape prefix) is encoded as
// "_xx" lowercase hex. The mapping is deterministic and injective, so
// distinct fileKeys can never collide on one namespace.
func NamespaceKey(fileKey string) string {
	var b strings.Builder
	b.Grow(len(fileKey))
	for i := 0; i < len(fileKey); i++ {
		c := fileKey[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '.':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "_%02x", c)
		}
	}
	return b.String()
}
