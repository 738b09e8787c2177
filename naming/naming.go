// Package naming provides property name policies.
//
// A Policy rewrites a Go member name (or a map key) into the name that
// appears in the JSON output. Policies are applied once at compile time
// for member names and on every entry for map keys.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Policy converts a member name into its rendered form.
type Policy interface {
	ConvertName(name string) string
}

// Func adapts a function to Policy.
type Func func(string) string

// ConvertName calls f(name).
func (f Func) ConvertName(name string) string { return f(name) }

var (
	// CamelCase lowercases the leading upper-case run: URLValue -> urlValue, ID -> id.
	CamelCase Policy = Func(camel)
	// SnakeCase splits words with '_' in lower case: UserID -> user_id.
	SnakeCase Policy = Func(func(s string) string { return joinWords(s, '_', unicode.ToLower) })
	// UpperSnakeCase splits words with '_' in upper case: UserID -> USER_ID.
	UpperSnakeCase Policy = Func(func(s string) string { return joinWords(s, '_', unicode.ToUpper) })
	// KebabCase splits words with '-' in lower case: UserID -> user-id.
	KebabCase Policy = Func(func(s string) string { return joinWords(s, '-', unicode.ToLower) })
)

// Apply runs p over name, treating a nil policy as identity.
func Apply(p Policy, name string) string {
	if p == nil {
		return name
	}
	return p.ConvertName(name)
}

// Lookup returns the policy registered under name. The empty string and
// "none" map to a nil (identity) policy.
func Lookup(name string) (Policy, bool) {
	switch strings.ToLower(name) {
	case "", "none", "identity":
		return nil, true
	case "camel", "camelcase":
		return CamelCase, true
	case "snake", "snake_case":
		return SnakeCase, true
	case "upper_snake", "screaming_snake":
		return UpperSnakeCase, true
	case "kebab", "kebab-case":
		return KebabCase, true
	}
	return nil, false
}

func camel(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if !unicode.IsUpper(r[0]) {
		return s
	}
	for i := range r {
		if i == 1 && !unicode.IsUpper(r[i]) {
			break
		}
		// Keep the last capital of a run when it starts the next word.
		if i > 0 && i+1 < len(r) && !unicode.IsUpper(r[i+1]) {
			if r[i+1] == ' ' {
				r[i] = unicode.ToLower(r[i])
			}
			break
		}
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}

func joinWords(s string, sep byte, mapRune func(rune) rune) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	var prev rune
	for i, r := range s {
		if r == '_' || r == '-' || r == ' ' {
			if b.Len() > 0 && prev != rune(sep) {
				b.WriteByte(sep)
				prev = rune(sep)
			}
			continue
		}
		if i > 0 && unicode.IsUpper(r) && b.Len() > 0 && prev != rune(sep) {
			next, _ := utf8.DecodeRuneInString(s[i+utf8.RuneLen(r):])
			lowerBefore := unicode.IsLower(prev) || unicode.IsDigit(prev)
			acronymEnd := unicode.IsUpper(prev) && unicode.IsLower(next)
			if lowerBefore || acronymEnd {
				b.WriteByte(sep)
			}
		}
		b.WriteRune(mapRune(r))
		prev = r
	}
	return strings.TrimSuffix(b.String(), string(sep))
}
