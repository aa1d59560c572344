package extract

import (
	"context"
	"net/http"
	"net/url"
	"regexp"

	"vidresolve/internal/httputil"
	"vidresolve/internal/media"
)

const gdriveBase = "https://drive.google.com"

var (
	gdriveFileRe   = regexp.MustCompile(`/d/([A-Za-z0-9_-]+)`)
	gdrivePlayerRe = regexp.MustCompile(`"(https?:[^"]*videoplayback[^"]*)"`)
)

func gdriveAdapter() *Adapter {
	return &Adapter{
		Kind:  media.GoogleDrive,
		Hosts: []string{"drive.google.com", "drive.usercontent.google.com"},
		Methods: []Method{
			{Name: "gdrive_redirect", Run: gdriveRedirect},
			{Name: "gdrive_player", Run: gdrivePlayer},
		},
	}
}

func gdriveFileID(u *url.URL) (string, bool) {
	id := u.Query().Get("id")
	if id == "" {
		if m := gdriveFileRe.FindStringSubmatch(u.Path); m != nil {
			id = m[1]
		}
	}
	if id == "" || httputil.ValidateID(id) != nil {
		return "", false
	}
	return id, true
}

// gdriveRedirect asks the download endpoint where the file lives without
// following the redirect.
func gdriveRedirect(ctx context.Context, s *Session) (string, error) {
	id, ok := gdriveFileID(s.Source)
	if !ok {
		return "", ErrNoMatch
	}
	req := httputil.NewRequest(http.MethodHead, gdriveBase+"/uc?export=download&id="+id)
	req.NoRedirect = true
	resp, err := s.Do(ctx, req)
	if err != nil {
		return "", err
	}
	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", ErrNoMatch
	}
	base, _ := url.Parse(gdriveBase)
	return httputil.Absolute(base, loc), nil
}

// gdrivePlayer scrapes the videoplayback URL from the preview page.
func gdrivePlayer(ctx context.Context, s *Session) (string, error) {
	id, ok := gdriveFileID(s.Source)
	if !ok {
		return "", ErrNoMatch
	}
	resp, err := s.Get(ctx, httputil.BuildURL(gdriveBase, "file", "d", id, "preview"))
	if err != nil {
		return "", err
	}
	raw, ok := submatch(gdrivePlayerRe, string(resp.Body))
	if !ok {
		return "", ErrNoMatch
	}
	return UnescapeJS(raw), nil
}
