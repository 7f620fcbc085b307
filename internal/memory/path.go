// Package memory implements the structured memory engine: a schema-constrained,
// partially-visible, paginated value tree that an LLM drives through a single
// manageMemory tool.
package memory

import "strings"

// Root is the canonical representation of the path denoting the implicit
// top-level container.
const Root = "/"

// Wildcard is the only token allowed to appear as the final token of a path
// passed to view/hide. It never appears in stored state.
const Wildcard = "*"

// Normalize trims, collapses, and canonicalizes a raw path string.
//
// Empty string and "/" both normalize to Root. Leading slash is enforced,
// runs of slashes collapse to one, and a trailing slash is dropped unless
// the whole path is the root.
func Normalize(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == Root {
		return Root
	}

	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	var b strings.Builder
	b.Grow(len(p))
	prevSlash := false
	for _, r := range p {
		if r == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteRune(r)
	}

	out := b.String()
	if len(out) > 1 && strings.HasSuffix(out, "/") {
		out = out[:len(out)-1]
	}
	if out == "" {
		out = Root
	}
	return out
}

// Split breaks a normalized path into its unescaped tokens. Split(Root)
// returns an empty slice.
func Split(p string) []string {
	p = Normalize(p)
	if p == Root {
		return nil
	}

	raw := strings.Split(p[1:], "/")
	tokens := make([]string, len(raw))
	for i, t := range raw {
		tokens[i] = unescapeToken(t)
	}
	return tokens
}

// Join builds a normalized path string out of raw (unescaped) tokens.
func Join(tokens []string) string {
	if len(tokens) == 0 {
		return Root
	}

	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(escapeToken(t))
	}
	return b.String()
}

// Child returns the path of the immediate child `token` under parent `p`.
func Child(p string, token string) string {
	return Join(append(Split(p), token))
}

// Parent returns the path of the immediate parent of p, and the final token.
// Parent(Root) returns (Root, "").
func Parent(p string) (string, string) {
	tokens := Split(p)
	if len(tokens) == 0 {
		return Root, ""
	}
	return Join(tokens[:len(tokens)-1]), tokens[len(tokens)-1]
}

// HasTrailingWildcard reports whether the last token of p is the literal "*".
func HasTrailingWildcard(p string) bool {
	tokens := Split(p)
	if len(tokens) == 0 {
		return false
	}
	return tokens[len(tokens)-1] == Wildcard
}

// TrimWildcard strips a trailing wildcard token, returning the base
// container path plus whether a wildcard was actually present.
func TrimWildcard(p string) (string, bool) {
	tokens := Split(p)
	if len(tokens) == 0 || tokens[len(tokens)-1] != Wildcard {
		return Normalize(p), false
	}
	return Join(tokens[:len(tokens)-1]), true
}

// IsDescendant reports whether child is equal to parent or nested under it.
func IsDescendant(child, parent string) bool {
	child, parent = Normalize(child), Normalize(parent)
	if child == parent {
		return true
	}
	if parent == Root {
		return child != Root
	}
	return strings.HasPrefix(child, parent+"/")
}

var integerToken = func() func(string) bool {
	return func(s string) bool {
		if s == "" {
			return false
		}
		i := 0
		if s[0] == '-' {
			if len(s) == 1 {
				return false
			}
			i = 1
		}
		for ; i < len(s); i++ {
			if s[i] < '0' || s[i] > '9' {
				return false
			}
		}
		return true
	}
}()

// IsIntegerToken matches the grammar's ^-?\d+$ integer-token rule used to
// detect array indices in a path.
func IsIntegerToken(s string) bool {
	return integerToken(s)
}

func escapeToken(t string) string {
	if !strings.ContainsAny(t, "~/") {
		return t
	}
	t = strings.ReplaceAll(t, "~", "~0")
	t = strings.ReplaceAll(t, "/", "~1")
	return t
}

func unescapeToken(t string) string {
	if !strings.Contains(t, "~") {
		return t
	}
	var b strings.Builder
	b.Grow(len(t))
	for i := 0; i < len(t); i++ {
		if t[i] == '~' && i+1 < len(t) {
			switch t[i+1] {
			case '1':
				b.WriteByte('/')
				i++
				continue
			case '0':
				b.WriteByte('~')
				i++
				continue
			}
		}
		b.WriteByte(t[i])
	}
	return b.String()
}
