package youtube

import "regexp"

// Media types reported by Match.
const (
	MediaTypeVideo = "video"
	MediaTypeShort = "short"
)

// Pattern names reported by Match.
const (
	PatternWatch    = "watch"
	PatternShortURL = "short_url"
	PatternShorts   = "shorts"
	PatternEmbed    = "embed"
	PatternQuery    = "query_param"
)

type pattern struct {
	name      string
	mediaType string
	re        *regexp.Regexp
}

// Match describes which URL shape produced a video ID.
type Match struct {
	VideoID   string `json:"videoId"`
	Pattern   string `json:"pattern"`
	MediaType string `json:"mediaType"`
}

// Parser extracts video IDs from YouTube URLs. Patterns are tried in order
// and the first match wins. The ID runs up to the first '&' or '?'.
type Parser struct {
	patterns []pattern
}

// NewParser creates a parser with the standard YouTube URL shapes.
func NewParser() *Parser {
	return &Parser{
		patterns: []pattern{
			{PatternWatch, MediaTypeVideo, regexp.MustCompile(`youtube\.com/watch\?(?:v=|.+&v=)([^&?]+)`)},
			{PatternShortURL, MediaTypeVideo, regexp.MustCompile(`youtu\.be/([^&?]+)`)},
			{PatternShorts, MediaTypeShort, regexp.MustCompile(`youtube\.com/shorts/([^&?]+)`)},
			{PatternEmbed, MediaTypeVideo, regexp.MustCompile(`youtube\.com/embed/([^&?]+)`)},
			{PatternQuery, MediaTypeVideo, regexp.MustCompile(`[?&]v=([^&?]+)`)},
		},
	}
}

// Match returns the video ID and the pattern that matched it.
func (p *Parser) Match(rawURL string) (Match, bool) {
	if rawURL == "" {
		return Match{}, false
	}
	for _, pt := range p.patterns {
		if m := pt.re.FindStringSubmatch(rawURL); m != nil {
			return Match{VideoID: m[1], Pattern: pt.name, MediaType: pt.mediaType}, true
		}
	}
	return Match{}, false
}

// Extract returns the video ID found in rawURL.
func (p *Parser) Extract(rawURL string) (string, bool) {
	m, ok := p.Match(rawURL)
	return m.VideoID, ok
}

var defaultParser = NewParser()

// ExtractVideoID extracts a video ID using the default parser.
func ExtractVideoID(rawURL string) (string, bool) {
	return defaultParser.Extract(rawURL)
}

// IsValidURL reports whether rawURL contains a recognisable video ID.
func IsValidURL(rawURL string) bool {
	_, ok := defaultParser.Extract(rawURL)
	return ok
}
