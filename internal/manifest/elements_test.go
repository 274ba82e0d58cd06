package manifest

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const masterFixture = `#EXTM3U
#EXT-X-VERSION:4
# a comment line
#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="aud1",NAME="English",DEFAULT=YES,URI="audio/en.m3u8"
#EXT-X-MEDIA:URI="subs/en.m3u8",TYPE=SUBTITLES,GROUP-ID="sub1",LANGUAGE="en"
#EXT-X-INDEPENDENT-SEGMENTS
#EXT-X-STREAM-INF:BANDWIDTH=2500000,RESOLUTION=1280x720,CODECS="avc1.4d401f,mp4a.40.2",AUDIO="aud1",SUBTITLES="sub1"
720p/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=5000000,RESOLUTION=1920x1080,AUDIO="aud1"
https://cdn2.example.test/1080p/index.m3u8
#EXT-X-I-FRAME-STREAM-INF:BANDWIDTH=100000,URI="iframes.m3u8"
`

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestExtract_AllKinds(t *testing.T) {
	base := mustURL(t, "https://cdn.example.test/course/master.m3u8")

	el, err := Extract(masterFixture, base)
	require.NoError(t, err)

	require.Len(t, el.Streams, 2)
	require.Len(t, el.Audio, 1)
	require.Len(t, el.Subtitles, 1)
	assert.Empty(t, el.Rejected)

	first := el.Streams[0]
	assert.Equal(t, "https://cdn.example.test/course/720p/index.m3u8", first.URL.String())
	require.NotNil(t, first.AudioGroupID)
	assert.Equal(t, "aud1", *first.AudioGroupID)
	require.NotNil(t, first.SubtitleGroupID)
	assert.Equal(t, "sub1", *first.SubtitleGroupID)
	assert.Equal(t, &Dimensions{Width: 1280, Height: 720}, first.Dimensions)

	second := el.Streams[1]
	assert.Equal(t, "https://cdn2.example.test/1080p/index.m3u8", second.URL.String())
	assert.Nil(t, second.SubtitleGroupID)

	assert.Equal(t, "aud1", el.Audio[0].GroupID)
	assert.Equal(t, "https://cdn.example.test/course/audio/en.m3u8", el.Audio[0].URL.String())
	assert.Equal(t, "sub1", el.Subtitles[0].GroupID)
	assert.Equal(t, "https://cdn.example.test/course/subs/en.m3u8", el.Subtitles[0].URL.String())
}

func TestExtractStreams_OptionalAttributesAbsent(t *testing.T) {
	content := "#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=1\r\nhttps://x.test/a.m3u8\r\n"

	streams, rejected, err := ExtractStreams(content, nil)
	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Len(t, streams, 1)
	assert.Nil(t, streams[0].AudioGroupID)
	assert.Nil(t, streams[0].SubtitleGroupID)
	assert.Nil(t, streams[0].Dimensions)
}

func TestExtractStreams_EmptyGroupIDIsNotAbsent(t *testing.T) {
	content := "#EXT-X-STREAM-INF:AUDIO=\"\"\nhttps://x.test/a.m3u8\n"

	streams, _, err := ExtractStreams(content, nil)
	require.NoError(t, err)
	require.NotNil(t, streams[0].AudioGroupID)
	assert.Equal(t, "", *streams[0].AudioGroupID)
}

func TestExtractStreams_MissingURI(t *testing.T) {
	cases := map[string]string{
		"eof":          "#EXTM3U\n#EXT-X-STREAM-INF:RESOLUTION=640x360\n",
		"followed tag": "#EXT-X-STREAM-INF:RESOLUTION=640x360\n#EXT-X-STREAM-INF:RESOLUTION=1280x720\nb.m3u8\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ExtractStreams(content, mustURL(t, "https://x.test/"))
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected ParseError, got %v", err)
			assert.Contains(t, pe.Error(), "URI not found in stream declaration")
		})
	}
}

func TestExtractStreams_RelativeURIWithoutBase(t *testing.T) {
	_, _, err := ExtractStreams("#EXT-X-STREAM-INF:BANDWIDTH=1\nrel.m3u8\n", nil)
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestExtractStreams_BadResolutionRejectsOnlyThatVariant(t *testing.T) {
	content := `#EXT-X-STREAM-INF:RESOLUTION=axb
bad.m3u8
#EXT-X-STREAM-INF:RESOLUTION=640x360
good.m3u8
`
	streams, rejected, err := ExtractStreams(content, mustURL(t, "https://x.test/"))
	require.NoError(t, err)
	require.Len(t, streams, 1)
	assert.Equal(t, "https://x.test/good.m3u8", streams[0].URL.String())

	require.Len(t, rejected, 1)
	var vpe *ValueParseError
	assert.True(t, errors.As(rejected[0], &vpe))
	assert.Equal(t, "axb", vpe.Value)
}

func TestExtractMedia_MissingRequiredAttributes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		kind    MediaType
		wantMsg string
	}{
		{
			name:    "audio without group",
			content: `#EXT-X-MEDIA:TYPE=AUDIO,URI="a.m3u8"`,
			kind:    MediaAudio,
			wantMsg: "GROUP-ID not found in AUDIO declaration",
		},
		{
			name:    "subtitles without uri",
			content: `#EXT-X-MEDIA:TYPE=SUBTITLES,GROUP-ID="s"`,
			kind:    MediaSubtitles,
			wantMsg: "URI not found in SUBTITLES declaration",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractMedia(tt.content, tt.kind, mustURL(t, "https://x.test/"))
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected ParseError, got %v", err)
			assert.Equal(t, 1, pe.Line)
			assert.Contains(t, pe.Msg, tt.wantMsg)
		})
	}
}

func TestExtractMedia_IgnoresOtherTypes(t *testing.T) {
	content := `#EXT-X-MEDIA:TYPE=CLOSED-CAPTIONS,GROUP-ID="cc",INSTREAM-ID="CC1"
#EXT-X-MEDIA:TYPE=VIDEO,GROUP-ID="v"
#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="a",URI="https://x.test/a.m3u8"
`
	audio, err := ExtractMedia(content, MediaAudio, nil)
	require.NoError(t, err)
	require.Len(t, audio, 1)

	subs, err := ExtractMedia(content, MediaSubtitles, nil)
	require.NoError(t, err)
	assert.Empty(t, subs)
}
