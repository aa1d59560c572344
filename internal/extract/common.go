package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"vidresolve/internal/httputil"
)

// videoSource scrapes the first <video><source src> (or <video src>) on the page.
func videoSource(ctx context.Context, s *Session) (string, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return "", err
	}
	var src string
	doc.Find("video source[src], video[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		v, _ := sel.Attr("src")
		src = strings.TrimSpace(v)
		return src == ""
	})
	if src == "" {
		return "", ErrNoMatch
	}
	return s.Absolute(src), nil
}

// submatch returns the first non-empty capture group of re in text.
func submatch(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	for _, g := range m[min(1, len(m)):] {
		if g != "" {
			return g, true
		}
	}
	return "", false
}

// literalPath reads path from the JS literal following marker on the page.
func literalPath(text string, marker *regexp.Regexp, path string) (string, error) {
	lit, ok := Balanced(text, marker)
	if !ok {
		return "", ErrNoMatch
	}
	js := ObjectLiteralToJSON(lit)
	if !gjson.Valid(js) {
		return "", ErrNoMatch
	}
	v := gjson.Get(js, path).String()
	if v == "" {
		return "", ErrNoMatch
	}
	return UnescapeJS(v), nil
}

// firstValid returns the first candidate that passes validation, or the
// first raw candidate so the caller can report why it was rejected.
func firstValid(s *Session, raws []string) (string, error) {
	if len(raws) == 0 {
		return "", ErrNoMatch
	}
	for _, r := range raws {
		c := s.Absolute(UnescapeJS(r))
		if _, err := httputil.ValidateCandidate(c); err == nil {
			return c, nil
		}
	}
	return s.Absolute(UnescapeJS(raws[0])), nil
}

// allSubmatches collects capture group 1 of every match of re.
func allSubmatches(re *regexp.Regexp, text string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if len(m) > 1 && m[1] != "" {
			out = append(out, m[1])
		}
	}
	return out
}
