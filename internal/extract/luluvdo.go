package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"vidresolve/internal/httputil"
	"vidresolve/internal/media"
)

var (
	luluvdoIDRe      = regexp.MustCompile(`video_id\s*[:=]\s*["']([A-Za-z0-9_-]+)["']`)
	luluvdoPathRe    = regexp.MustCompile(`^/(?:e|d|v|embed)/([A-Za-z0-9_-]+)`)
	luluvdoCSRFRe    = regexp.MustCompile(`csrf[_-]?token["']?\s*[:=]\s*["']([^"']+)["']`)
	luluvdoSourcesRe = regexp.MustCompile(`sources\s*:\s*\[\s*\{\s*["']?file["']?\s*:\s*["']([^"']+)["']`)
)

func luluvdoAdapter() *Adapter {
	return &Adapter{
		Kind:    media.Luluvdo,
		Hosts:   []string{"luluvdo", "lulustream"},
		Referer: true,
		Methods: []Method{
			{Name: "luluvdo_api", Run: luluvdoAPI},
			{Name: "luluvdo_sources", Run: luluvdoSources},
		},
	}
}

// luluvdoAPI posts the page's video id to the source API and takes the
// highest labelled quality.
func luluvdoAPI(ctx context.Context, s *Session) (string, error) {
	text, err := s.PageText(ctx)
	if err != nil {
		return "", err
	}
	id, ok := submatch(luluvdoIDRe, text)
	if !ok {
		id, ok = submatch(luluvdoPathRe, s.Source.Path)
	}
	if !ok || httputil.ValidateID(id) != nil {
		return "", ErrNoMatch
	}

	host := s.Source.Host
	form := url.Values{"r": {""}, "d": {host}}
	req := httputil.NewRequest(http.MethodPost, "https://"+host+"/api/source/"+id)
	req.Body = []byte(form.Encode())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	if token := luluvdoCSRF(ctx, s, text); token != "" {
		req.Header.Set("X-CSRF-TOKEN", token)
	}

	resp, err := s.Do(ctx, req)
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(resp.Body) {
		return "", fmt.Errorf("luluvdo api: invalid JSON response")
	}
	if !gjson.GetBytes(resp.Body, "success").Bool() {
		return "", fmt.Errorf("luluvdo api: %s", gjson.GetBytes(resp.Body, "data").String())
	}

	files := map[string]string{}
	var labels []string
	for _, src := range gjson.GetBytes(resp.Body, "data").Array() {
		label, file := src.Get("label").String(), src.Get("file").String()
		if file == "" {
			continue
		}
		if _, seen := files[label]; !seen {
			labels = append(labels, label)
			files[label] = file
		}
	}
	if best, ok := HighestNumericKey(labels); ok {
		return s.Absolute(files[best]), nil
	}
	if len(labels) > 0 {
		return s.Absolute(files[labels[0]]), nil
	}
	return "", ErrNoMatch
}

func luluvdoCSRF(ctx context.Context, s *Session, text string) string {
	if doc, err := s.Document(ctx); err == nil {
		if v, ok := doc.Find(`meta[name="csrf-token"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	v, _ := submatch(luluvdoCSRFRe, text)
	return v
}

// luluvdoSources reads the first jwplayer source from the page.
func luluvdoSources(ctx context.Context, s *Session) (string, error) {
	text, err := s.PageText(ctx)
	if err != nil {
		return "", err
	}
	file, ok := submatch(luluvdoSourcesRe, text)
	if !ok {
		return "", ErrNoMatch
	}
	return s.Absolute(UnescapeJS(file)), nil
}
