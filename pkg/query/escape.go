package query

import "strings"

// metachars is every character with meaning in the query syntax.
const metachars = `,.<>{}[]"':;!@#$%^&*()-+=~`

var escaper = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(metachars))
	for _, c := range metachars {
		pairs = append(pairs, string(c), `\`+string(c))
	}
	return strings.NewReplacer(pairs...)
}()

// Escape backslash-prefixes every query metacharacter in s.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape. A backslash before any other character is kept.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte(metachars, s[i+1]) >= 0 {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
