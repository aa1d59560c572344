package extract

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestObjectLiteralToJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		path string
		want string
	}{
		{"single quotes", `{'a': 'b'}`, "a", "b"},
		{"bare keys", `{file: "x", label: 720}`, "label", "720"},
		{"numeric keys", `{1080: 'hd', 480: 'sd'}`, "1080", "hd"},
		{"trailing commas", `{a: [1, 2,], b: 'c',}`, "b", "c"},
		{"nested", `{player: {url: 'https://x.example/v.mp4'}}`, "player.url", "https://x.example/v.mp4"},
		{"escaped quote", `{t: 'it\'s "ok"'}`, "t", `it's "ok"`},
		{"hex escape", `{u: 'a\x26b'}`, "u", "a&b"},
		{"undefined", `{a: undefined, b: 'x'}`, "b", "x"},
		{"array", `[{url: 'https://x.example/1.mp4'}]`, "0.url", "https://x.example/1.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ObjectLiteralToJSON(tt.in)
			assert.True(t, gjson.Valid(got), "invalid JSON: %s", got)
			assert.Equal(t, tt.want, gjson.Get(got, tt.path).String())
		})
	}
}

func TestBalanced(t *testing.T) {
	marker := regexp.MustCompile(`cfg\s*=`)
	tests := []struct {
		name string
		src  string
		want string
		ok   bool
	}{
		{"object", `var cfg = {a: {b: 1}}; next()`, `{a: {b: 1}}`, true},
		{"array", `cfg = [1, [2]];`, `[1, [2]]`, true},
		{"braces in string", `cfg = {s: "}{", t: '}'};`, `{s: "}{", t: '}'}`, true},
		{"no marker", `var x = {}`, "", false},
		{"not a literal", `cfg = load();`, "", false},
		{"unterminated", `cfg = {a: 1`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Balanced(tt.src, marker)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHighestNumericKey(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
		ok   bool
	}{
		{"labels", []string{"480p", "1080p", "720p"}, "1080p", true},
		{"vk style", []string{"mp4_240", "mp4_720"}, "mp4_720", true},
		{"ignores non numeric", []string{"auto", "360"}, "360", true},
		{"none numeric", []string{"auto", "hd"}, "", false},
		{"empty", nil, "", false},
		{"tie is deterministic", []string{"720p", "720"}, "720", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := HighestNumericKey(tt.keys)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnescapeJS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`https:\/\/cdn.example.com\/v.mp4`, "https://cdn.example.com/v.mp4"},
		{`a=b&c`, "a=b&c"},
		{`a\x3db`, "a=b"},
		{`https://x.example/?a=1&amp;b=2`, "https://x.example/?a=1&b=2"},
		{"plain", "plain"},
		{`trailing\`, `trailing\`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, UnescapeJS(tt.in), "UnescapeJS(%q)", tt.in)
	}
}
