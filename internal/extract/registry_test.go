package extract

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidresolve/internal/httputil"
	"vidresolve/internal/media"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		url  string
		want media.HostKind
	}{
		{"https://www.cda.pl/video/12345abc", media.CDA},
		{"https://ebd.cda.pl/620x368/12345abc", media.CDA},
		{"https://vk.com/video_ext.php?oid=-1&id=2", media.VK},
		{"https://vkvideo.ru/video-1_2", media.VK},
		{"https://video.sibnet.ru/shell.php?videoid=123", media.Sibnet},
		{"https://drive.google.com/file/d/abc/view", media.GoogleDrive},
		{"https://drive.usercontent.google.com/download?id=abc", media.GoogleDrive},
		{"https://mega.nz/embed/abc#key", media.Mega},
		{"https://mega.io/file/abc#key", media.Mega},
		{"https://www.dailymotion.com/video/x8abc", media.Dailymotion},
		{"https://dai.ly/x8abc", media.Dailymotion},
		{"https://luluvdo.com/e/abc", media.Luluvdo},
		{"https://lulustream.com/e/abc", media.Luluvdo},
		{"https://lycrois.example/watch/1", media.Lycrois},
		{"https://LYCORIS.example/watch/1", media.Lycrois},
		{"https://example.com/embed/1", media.Generic},
		{"https://docs.google.com/file/d/abc", media.Generic},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			u, err := url.Parse(tt.url)
			require.NoError(t, err)
			got := Default().Classify(u)
			assert.Equal(t, tt.want, got)
			// Pure: same input, same answer.
			assert.Equal(t, got, Default().Classify(u))
		})
	}
}

func TestClassifyRaw(t *testing.T) {
	kind, err := Classify("https://vk.com/video-1_2")
	require.NoError(t, err)
	assert.Equal(t, media.VK, kind)

	_, err = Classify("not a url")
	assert.True(t, errors.Is(err, httputil.ErrInvalidURL))
}

func TestDefaultRegistryOrder(t *testing.T) {
	var kinds []media.HostKind
	for _, a := range Default().Adapters() {
		kinds = append(kinds, a.Kind)
	}
	assert.Equal(t, []media.HostKind{
		media.CDA, media.VK, media.Sibnet, media.GoogleDrive, media.Mega,
		media.Dailymotion, media.Luluvdo, media.Lycrois, media.Generic,
	}, kinds)

	assert.Equal(t, []string{"player_data", "qualities", "video_source", "media_files"},
		Default().Adapter(media.CDA).MethodNames())
	assert.Equal(t, []string{"media_url", "direct_link", "video_source", "player_setup", "json_keys", "url_heuristic"},
		Default().Adapter(media.Generic).MethodNames())
	assert.Equal(t, media.Generic, Default().Adapter(media.HostKind(99)).Kind)
}

func TestNewRegistryValidation(t *testing.T) {
	noop := func(context.Context, *Session) (string, error) { return "", ErrNoMatch }
	generic := &Adapter{Kind: media.Generic, Methods: []Method{{Name: "x", Run: noop}}}
	host := func(kind media.HostKind, methods ...Method) *Adapter {
		return &Adapter{Kind: kind, Hosts: []string{"h"}, Methods: methods}
	}

	tests := []struct {
		name     string
		generic  *Adapter
		adapters []*Adapter
	}{
		{"missing generic", nil, nil},
		{"generic twice", generic, []*Adapter{{Kind: media.Generic, Hosts: []string{"h"}, Methods: generic.Methods}}},
		{"duplicate kind", generic, []*Adapter{host(media.CDA, Method{"a", noop}), host(media.CDA, Method{"b", noop})}},
		{"no hosts", generic, []*Adapter{{Kind: media.VK, Methods: generic.Methods}}},
		{"no methods", generic, []*Adapter{host(media.VK)}},
		{"nil run", generic, []*Adapter{host(media.VK, Method{Name: "a"})}},
		{"duplicate method", generic, []*Adapter{host(media.VK, Method{"a", noop}, Method{"a", noop})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.generic, tt.adapters...)
			assert.Error(t, err)
		})
	}

	r, err := NewRegistry(generic, host(media.VK, Method{"a", noop}))
	require.NoError(t, err)
	u, _ := url.Parse("https://h.example/")
	assert.Equal(t, media.VK, r.Classify(u))
}
