package youtube

import "regexp"

// Messages shown next to the URL field.
const (
	MsgEmptyURL   = "Please enter a YouTube URL"
	MsgInvalidURL = "Please enter a valid YouTube URL"
)

// ValidationResult contains the result of URL validation
type ValidationResult struct {
	Valid        bool   `json:"valid"`
	URL          string `json:"url"`
	VideoID      string `json:"videoId,omitempty"`
	MediaType    string `json:"mediaType,omitempty"`
	Pattern      string `json:"pattern,omitempty"`
	WellFormed   bool   `json:"wellFormed"`
	CanonicalURL string `json:"canonicalUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	EmbedURL     string `json:"embedUrl,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Validator validates YouTube URLs
type Validator struct {
	parser *Parser
	// videoIDPattern matches the usual 11 character video ID alphabet
	videoIDPattern *regexp.Regexp
}

// NewValidator creates a new YouTube URL validator
func NewValidator() *Validator {
	return &Validator{
		parser:         defaultParser,
		videoIDPattern: regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`),
	}
}

// WellFormedID reports whether id looks like a standard video ID.
func (v *Validator) WellFormedID(id string) bool {
	return v.videoIDPattern.MatchString(id)
}

// Validate reports whether rawURL yields a video ID and derives its URLs.
// Valid is true exactly when the parser finds an ID.
func (v *Validator) Validate(rawURL string) ValidationResult {
	if rawURL == "" {
		return ValidationResult{URL: rawURL, Error: MsgEmptyURL}
	}

	m, ok := v.parser.Match(rawURL)
	if !ok {
		return ValidationResult{URL: rawURL, Error: MsgInvalidURL}
	}

	return ValidationResult{
		Valid:        true,
		URL:          rawURL,
		VideoID:      m.VideoID,
		MediaType:    m.MediaType,
		Pattern:      m.Pattern,
		WellFormed:   v.WellFormedID(m.VideoID),
		CanonicalURL: CanonicalURL(m.VideoID),
		ThumbnailURL: ThumbnailURL(m.VideoID),
		EmbedURL:     EmbedURL(m.VideoID),
	}
}
