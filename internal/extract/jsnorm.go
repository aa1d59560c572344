package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

var digitRun = regexp.MustCompile(`\d+`)

// entityReplacer handles the few entities seen inside script URLs. A full
// HTML unescape would also rewrite query strings such as "&para=".
var entityReplacer = strings.NewReplacer("&amp;", "&", "&#38;", "&", "&#x2F;", "/", "&#47;", "/")

// ObjectLiteralToJSON rewrites a JavaScript object or array literal into
// JSON: single-quoted strings become double-quoted, bare keys are quoted,
// undefined becomes null and trailing commas are dropped. It does not
// evaluate expressions.
func ObjectLiteralToJSON(src string) string {
	var b strings.Builder
	b.Grow(len(src) + 16)
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"' || c == '\'':
			end, lit := scanString(src, i)
			b.WriteString(lit)
			i = end
		case isIdentByte(c):
			j := i
			for j < len(src) && isIdentByte(src[j]) {
				j++
			}
			word := src[i:j]
			switch {
			case nextNonSpace(src, j) == ':':
				b.WriteString(strconv.Quote(word))
			case word == "undefined":
				b.WriteString("null")
			default:
				b.WriteString(word)
			}
			i = j
		case c == ',':
			if n := nextNonSpace(src, i+1); n == '}' || n == ']' {
				i++
				continue
			}
			b.WriteByte(c)
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// scanString copies the string literal starting at src[start] as a JSON
// string and returns the index just past its closing quote.
func scanString(src string, start int) (int, string) {
	quote := src[start]
	var b strings.Builder
	b.WriteByte('"')
	i := start + 1
	for i < len(src) {
		c := src[i]
		switch {
		case c == quote:
			b.WriteByte('"')
			return i + 1, b.String()
		case c == '\\' && i+1 < len(src):
			next := src[i+1]
			switch {
			case next == '\'':
				b.WriteByte('\'')
			case next == 'x' && i+3 < len(src):
				b.WriteString(`\u00` + src[i+2:i+4])
				i += 2
			default:
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			i += 2
			continue
		case c == '"':
			b.WriteString(`\"`)
		case c == '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
		i++
	}
	// Unterminated literal: close it so the caller gets parseable output.
	b.WriteByte('"')
	return len(src), b.String()
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c == '-' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func nextNonSpace(src string, i int) byte {
	for ; i < len(src); i++ {
		switch src[i] {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return src[i]
	}
	return 0
}

// Balanced returns the bracketed literal that follows the first match of
// marker in src, for example the object after "playerConfig =". String
// literals are skipped so brackets inside them do not count.
func Balanced(src string, marker *regexp.Regexp) (string, bool) {
	loc := marker.FindStringIndex(src)
	if loc == nil {
		return "", false
	}
	start := -1
	for i := loc[1]; i < len(src); i++ {
		if src[i] == '{' || src[i] == '[' {
			start = i
			break
		}
		if src[i] != ' ' && src[i] != '\t' && src[i] != '\n' && src[i] != '\r' && src[i] != '=' && src[i] != ':' {
			return "", false
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '"', '\'', '`':
			q := src[i]
			for i++; i < len(src) && src[i] != q; i++ {
				if src[i] == '\\' {
					i++
				}
			}
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return src[start : i+1], true
			}
		}
	}
	return "", false
}

// QualityNumber returns the last run of digits in s, so "1080p" and
// "mp4_720" yield 1080 and 720.
func QualityNumber(s string) (int, bool) {
	runs := digitRun.FindAllString(s, -1)
	if len(runs) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(runs[len(runs)-1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// HighestNumericKey picks the key with the largest QualityNumber. Ties go
// to the lexically smallest key so the choice does not depend on map order.
func HighestNumericKey(keys []string) (string, bool) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	best, bestN, found := "", 0, false
	for _, k := range sorted {
		n, ok := QualityNumber(k)
		if !ok {
			continue
		}
		if !found || n > bestN {
			best, bestN, found = k, n, true
		}
	}
	return best, found
}

// UnescapeJS undoes the escaping commonly found in URLs embedded in
// scripts: \/ \uXXXX \xXX and &amp; style entities.
func UnescapeJS(s string) string {
	if !strings.ContainsAny(s, `\&`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		switch next := s[i+1]; next {
		case 'u':
			if i+5 < len(s) {
				if r, err := strconv.ParseUint(s[i+2:i+6], 16, 32); err == nil {
					b.WriteRune(rune(r))
					i += 5
					continue
				}
			}
			b.WriteByte(c)
		case 'x':
			if i+3 < len(s) {
				if r, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
					b.WriteRune(rune(r))
					i += 3
					continue
				}
			}
			b.WriteByte(c)
		case '/', '\\', '"', '\'':
			b.WriteByte(next)
			i++
		default:
			b.WriteByte(c)
		}
	}
	out := entityReplacer.Replace(b.String())
	if !utf8.ValidString(out) {
		return s
	}
	return out
}
