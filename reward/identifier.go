package reward

import (
	"fmt"
	"strings"
)

// DefaultNamespace is used for identifiers given without a namespace.
const DefaultNamespace = "titanium"

// Identifier is a namespaced reward name such as "titanium:starter".
type Identifier struct {
	Namespace string
	Path      string
}

// ParseIdentifier parses "namespace:path". A bare path is placed in
// DefaultNamespace. Namespaces may contain [a-z0-9_.-]; paths may also
// contain '/'.
func ParseIdentifier(s string) (Identifier, error) {
	ns, path, found := strings.Cut(s, ":")
	if !found {
		ns, path = DefaultNamespace, s
	}
	id := Identifier{Namespace: ns, Path: path}
	if ns == "" || !validChars(ns, false) {
		return Identifier{}, fmt.Errorf("invalid namespace in identifier %q", s)
	}
	if path == "" || !validChars(path, true) {
		return Identifier{}, fmt.Errorf("invalid path in identifier %q", s)
	}
	return id, nil
}

// MustIdentifier is like ParseIdentifier but panics on error.
func MustIdentifier(s string) Identifier {
	id, err := ParseIdentifier(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the "namespace:path" form.
func (id Identifier) String() string {
	return id.Namespace + ":" + id.Path
}

func validChars(s string, slash bool) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
		case slash && r == '/':
		default:
			return false
		}
	}
	return true
}
