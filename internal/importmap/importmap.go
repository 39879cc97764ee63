// Package importmap implements build-time import map matching: exact and
// trailing-slash prefix entries, rewriting bare module specifiers to local
// paths or remote URLs.
package importmap

import (
	"encoding/json"
	"fmt"
	"strings"
)

// InvalidTargetError is returned when a prefix key's target does not end in a
// trailing slash. The map is rejected up front, before any specifier is
// resolved.
type InvalidTargetError struct {
	Key    string
	Target string
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid import map: the target of prefix key %q must end in '/', got %q", e.Key, e.Target)
}

// ImportMap is an immutable table of specifier rewrites. Keys ending in '/'
// are prefix entries, all other keys match exactly.
type ImportMap struct {
	imports map[string]string
}

// New validates the raw imports table and builds an ImportMap from it.
func New(imports map[string]string) (*ImportMap, error) {
	for key, target := range imports {
		if strings.HasSuffix(key, "/") && !strings.HasSuffix(target, "/") {
			return nil, &InvalidTargetError{Key: key, Target: target}
		}
	}

	copied := make(map[string]string, len(imports))
	for key, target := range imports {
		copied[key] = target
	}
	return &ImportMap{imports: copied}, nil
}

// importMapJson is the browser import map file format. Scoped entries are not
// supported at build time, so their presence is a configuration error rather
// than something to silently drop.
type importMapJson struct {
	Imports map[string]string            `json:"imports"`
	Scopes  map[string]map[string]string `json:"scopes"`
}

// ParseJSON reads a browser-format import map file ({"imports": {...}}).
func ParseJSON(data []byte) (*ImportMap, error) {
	var raw importMapJson
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse import map: %w", err)
	}

	for scope := range raw.Scopes {
		return nil, fmt.Errorf("invalid import map: scoped entries are not supported (found scope %q)", scope)
	}

	return New(raw.Imports)
}

// Len returns the number of entries in the map.
func (m *ImportMap) Len() int {
	return len(m.imports)
}

// Entries returns a copy of the underlying table.
func (m *ImportMap) Entries() map[string]string {
	copied := make(map[string]string, len(m.imports))
	for key, target := range m.imports {
		copied[key] = target
	}
	return copied
}

// Resolve rewrites a bare specifier through the map. An exact entry always
// wins over prefix entries; among prefix entries the longest matching key
// wins. A prefix key never matches its own bare form: "pkg/" does not satisfy
// the specifier "pkg".
//
// The second return value is false when the map has no opinion about the
// specifier, leaving it to the bundler's default resolution.
func (m *ImportMap) Resolve(specifier string) (string, bool) {
	if target, ok := m.imports[specifier]; ok {
		return target, true
	}

	var matched string
	for key := range m.imports {
		if !strings.HasSuffix(key, "/") {
			continue
		}
		if strings.HasPrefix(specifier, key) && len(key) > len(matched) {
			matched = key
		}
	}
	if matched == "" {
		return "", false
	}

	return m.imports[matched] + specifier[len(matched):], true
}

// IsBareSpecifier reports whether a specifier is subject to import map
// matching. Relative, absolute, and scheme-qualified specifiers bypass the
// map entirely.
func IsBareSpecifier(specifier string) bool {
	if specifier == "" {
		return false
	}
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") || strings.HasPrefix(specifier, "/") {
		return false
	}
	return !hasScheme(specifier)
}

// hasScheme checks for an RFC 3986 scheme prefix ("https:", "data:", ...).
func hasScheme(specifier string) bool {
	for i, c := range specifier {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			continue
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
			continue
		case c == ':' && i > 0:
			return true
		}
		return false
	}
	return false
}
