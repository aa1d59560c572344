package httputil

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid HTTPS", "https://example.com/path", false},
		{"valid HTTP", "http://example.com/path", false},
		{"javascript scheme rejected", "javascript:alert(1)", true},
		{"data scheme rejected", "data:text/html,<h1>Hi</h1>", true},
		{"FTP rejected", "ftp://example.com/file", true},
		{"empty string", "", true},
		{"whitespace only", "   ", true},
		{"no host", "https://", true},
		{"relative", "/video/123", true},
		{"valid with port", "https://example.com:8080/path", false},
		{"valid with query", "https://example.com/path?q=test&a=b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSource(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSource(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidURL) {
				t.Errorf("ParseSource(%q) error = %v, want ErrInvalidURL", tt.url, err)
			}
		})
	}
}

func TestValidateCandidate(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      string
		wantErr   bool
	}{
		{"mp4", "https://cdn.example.com/v.mp4", "https://cdn.example.com/v.mp4", false},
		{"trimmed", "  https://cdn.example.com/v.m3u8 \n", "https://cdn.example.com/v.m3u8", false},
		{"http allowed", "http://cdn.example.com/v.mp4", "http://cdn.example.com/v.mp4", false},
		{"empty", "", "", true},
		{"undefined", "undefined", "", true},
		{"null", "null", "", true},
		{"none uppercase", "None", "", true},
		{"about blank", "about:blank", "", true},
		{"template braces", "https://cdn.example.com/{file}", "", true},
		{"dollar template", "https://cdn.example.com/${src}.mp4", "", true},
		{"relative", "/v/123.mp4", "", true},
		{"protocol relative", "//cdn.example.com/v.mp4", "", true},
		{"javascript", "javascript:void(0)", "", true},
		{"blob", "blob:https://example.com/abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateCandidate(tt.candidate)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCandidate(%q) error = %v, wantErr %v", tt.candidate, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrRejected) {
				t.Errorf("ValidateCandidate(%q) error = %v, want ErrRejected", tt.candidate, err)
			}
			if got != tt.want {
				t.Errorf("ValidateCandidate(%q) = %q, want %q", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestIsDirectMedia(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://cdn.example.com/a/b.mp4", true},
		{"https://cdn.example.com/a/b.MP4?token=x", true},
		{"https://cdn.example.com/master.m3u8", true},
		{"https://cdn.example.com/manifest.mpd", true},
		{"https://cdn.example.com/a.webm", true},
		{"https://www.cda.pl/video/123", false},
		{"https://cdn.example.com/mp4", false},
	}

	for _, tt := range tests {
		u, err := url.Parse(tt.url)
		if err != nil {
			t.Fatal(err)
		}
		if got := IsDirectMedia(u); got != tt.want {
			t.Errorf("IsDirectMedia(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestAbsolute(t *testing.T) {
	base, _ := url.Parse("https://host.example.com/embed/abc")
	tests := []struct {
		ref  string
		want string
	}{
		{"/v/1.mp4", "https://host.example.com/v/1.mp4"},
		{"//cdn.example.com/v.mp4", "https://cdn.example.com/v.mp4"},
		{"./v.mp4", "https://host.example.com/embed/v.mp4"},
		{"https://other.example.com/x.mp4", "https://other.example.com/x.mp4"},
		{"undefined", "undefined"},
	}

	for _, tt := range tests {
		if got := Absolute(base, tt.ref); got != tt.want {
			t.Errorf("Absolute(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestRedactURL(t *testing.T) {
	got := RedactURL("https://api.vk.com/method/video.get?videos=1_2&access_token=secret123&v=5.131")
	if strings.Contains(got, "secret123") {
		t.Errorf("RedactURL leaked token: %q", got)
	}
	if !strings.Contains(got, "access_token=REDACTED") {
		t.Errorf("RedactURL = %q, want access_token=REDACTED", got)
	}
	if !strings.Contains(got, "videos=1_2") {
		t.Errorf("RedactURL dropped other params: %q", got)
	}

	plain := "https://example.com/a?b=c"
	if got := RedactURL(plain); got != plain {
		t.Errorf("RedactURL(%q) = %q, want unchanged", plain, got)
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"alphanumeric", "x8abcde", false},
		{"with hyphen", "abc-123_x", false},
		{"numeric", "12345", false},
		{"empty", "", true},
		{"path traversal dots", "../../etc/passwd", true},
		{"slash", "video/123", true},
		{"shell injection semicolon", "123; rm -rf /", true},
		{"shell injection backtick", "123`whoami`", true},
		{"shell injection dollar", "$(cat /etc/passwd)", true},
		{"newline injection", "123\n456", true},
		{"pipe injection", "123|ls", true},
		{"too long", strings.Repeat("a", 300), true},
		{"spaces", "id with spaces", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNumericID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "12345", false},
		{"zero", "0", false},
		{"negative owner", "-12345", false},
		{"empty", "", true},
		{"letters", "abc", true},
		{"mixed", "123abc", true},
		{"decimal", "1.5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNumericID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNumericID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestBuildURL(t *testing.T) {
	got := BuildURL("https://pixeldrain.com/", "api", "file", "a b")
	want := "https://pixeldrain.com/api/file/a%20b"
	if got != want {
		t.Errorf("BuildURL = %q, want %q", got, want)
	}
}
