// Package query encodes string maps into URL query strings and decodes the
// query string of a URI back into parameters.
//
// Decoding distinguishes a key that carries a value ("code=123") from a bare
// key ("flag"). Bare keys decode to Present.
package query

import (
	"net/url"
	"sort"
	"strings"
)

// Value is a decoded query parameter: either a string or Present.
type Value struct {
	s       string
	present bool
}

// Present is the value of a query key that appeared without '='.
var Present = Value{present: true}

// String returns a Value holding s.
func String(s string) Value {
	return Value{s: s}
}

// IsPresent reports whether v is the valueless-key sentinel.
func (v Value) IsPresent() bool {
	return v.present
}

// String returns the decoded string. It is empty for Present.
func (v Value) String() string {
	return v.s
}

// Params maps decoded parameter names to values.
type Params map[string]Value

// Get returns the string value of key. The boolean is false when the key is
// absent or was given without a value.
func (p Params) Get(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v.present {
		return "", false
	}
	return v.s, true
}

// Has reports whether key appeared in the query string, with or without a value.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Strings returns the parameters that carry a string value.
func (p Params) Strings() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		if !v.present {
			out[k] = v.s
		}
	}
	return out
}

// Encode form-encodes m as "k1=v1&k2=v2". Keys are emitted in ascending order.
// Alphanumerics and "-_.~" are left as is and spaces become '+'.
func Encode(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(m[k]))
	}
	return b.String()
}

// Decode parses the query string of uri. A uri without '?' yields empty Params.
// Anything from the first '#' onward is ignored. Each '&'-separated token is
// split on its first '=' and both sides are unescaped independently; a token
// without '=' maps its unescaped key to Present. Later duplicates win.
func Decode(uri string) Params {
	out := Params{}
	i := strings.IndexByte(uri, '?')
	if i < 0 {
		return out
	}
	qs := uri[i+1:]
	if j := strings.IndexByte(qs, '#'); j >= 0 {
		qs = qs[:j]
	}

	for _, token := range strings.Split(qs, "&") {
		if token == "" {
			continue
		}
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			out[unescape(key)] = Present
			continue
		}
		out[unescape(key)] = String(unescape(value))
	}
	return out
}

// unescape decodes a form-encoded component. Malformed escapes are returned
// untouched instead of failing the whole decode.
func unescape(s string) string {
	u, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return u
}
