package manifest

import (
	"net/url"
	"reflect"
	"testing"
)

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]string
	}{
		{
			name: "plain and quoted",
			in:   `BANDWIDTH=800000,RESOLUTION=1280x720,AUDIO="aud1"`,
			want: map[string]string{"BANDWIDTH": "800000", "RESOLUTION": "1280x720", "AUDIO": "aud1"},
		},
		{
			name: "quoted value with commas",
			in:   `CODECS="avc1.4d401f,mp4a.40.2",SUBTITLES="sub1"`,
			want: map[string]string{"CODECS": "avc1.4d401f,mp4a.40.2", "SUBTITLES": "sub1"},
		},
		{
			name: "uri with query and equals",
			in:   `TYPE=AUDIO,URI="a/audio.m3u8?token=abc=",GROUP-ID="g"`,
			want: map[string]string{"TYPE": "AUDIO", "URI": "a/audio.m3u8?token=abc=", "GROUP-ID": "g"},
		},
		{
			name: "empty quoted value",
			in:   `AUDIO=""`,
			want: map[string]string{"AUDIO": ""},
		},
		{
			name: "unterminated quote",
			in:   `URI="http://x/y`,
			want: map[string]string{"URI": "http://x/y"},
		},
		{
			name: "empty",
			in:   "",
			want: map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAttributes(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("parseAttributes(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveURI(t *testing.T) {
	base, _ := url.Parse("https://cdn.example.test/hls/master.m3u8?sig=1")

	u, err := ResolveURI(base, "720p/index.m3u8")
	if err != nil {
		t.Fatalf("ResolveURI() error = %v", err)
	}
	if got, want := u.String(), "https://cdn.example.test/hls/720p/index.m3u8"; got != want {
		t.Fatalf("ResolveURI() = %q, want %q", got, want)
	}

	u, err = ResolveURI(nil, "https://other.example.test/a.m3u8")
	if err != nil || u.Host != "other.example.test" {
		t.Fatalf("absolute URI without base: u=%v err=%v", u, err)
	}

	if _, err := ResolveURI(nil, "relative.m3u8"); err == nil {
		t.Fatalf("expected error for relative URI without base")
	}
}
