package di

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NamingStrategy derives the default name of a registration from its type.
type NamingStrategy func(t reflect.Type) string

// DefaultNaming strips pointer, slice and array wrappers and generic
// arguments, then lower-cases the first rune: *Engine becomes "engine".
func DefaultNaming(t reflect.Type) string {
	name := baseName(t)
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}

// SnakeCaseNaming is like DefaultNaming but produces snake_case, keeping
// acronyms together: *HTTPServer becomes "http_server".
func SnakeCaseNaming(t reflect.Type) string {
	runes := []rune(baseName(t))
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			acronymEnd := i > 0 && unicode.IsUpper(runes[i-1]) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || acronymEnd {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func baseName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		return t.Kind().String()
	}
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}
