package transcript

import "slices"

// Metadata contains information about a video reported by yt-dlp
type Metadata struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Uploader    string  `json:"uploader"`
	Duration    float64 `json:"duration"`
	Thumbnail   string  `json:"thumbnail"`
	WebpageURL  string  `json:"webpage_url"`
	Description string  `json:"description"`
	Language    string  `json:"language,omitempty"`

	// Caption languages, manual first
	Subtitles     []string `json:"subtitles,omitempty"`
	AutoCaptions  []string `json:"auto_captions,omitempty"`
	AgeRestricted bool     `json:"age_restricted"`
}

// ytdlpOutput represents the fields read from yt-dlp --dump-json
type ytdlpOutput struct {
	ID                string                     `json:"id"`
	Title             string                     `json:"title"`
	Uploader          string                     `json:"uploader"`
	Channel           string                     `json:"channel"`
	Duration          float64                    `json:"duration"`
	Thumbnail         string                     `json:"thumbnail"`
	Thumbnails        []thumb                    `json:"thumbnails"`
	WebpageURL        string                     `json:"webpage_url"`
	Description       string                     `json:"description"`
	Language          string                     `json:"language"`
	AgeLimit          int                        `json:"age_limit"`
	Subtitles         map[string][]captionFormat `json:"subtitles"`
	AutomaticCaptions map[string][]captionFormat `json:"automatic_captions"`
}

type thumb struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type captionFormat struct {
	Ext string `json:"ext"`
	URL string `json:"url"`
}

func (o *ytdlpOutput) toMetadata() *Metadata {
	m := &Metadata{
		ID:            o.ID,
		Title:         o.Title,
		Uploader:      o.Uploader,
		Duration:      o.Duration,
		Thumbnail:     o.Thumbnail,
		WebpageURL:    o.WebpageURL,
		Description:   o.Description,
		Language:      o.Language,
		AgeRestricted: o.AgeLimit >= 18,
		Subtitles:     languagesWithVTT(o.Subtitles),
		AutoCaptions:  languagesWithVTT(o.AutomaticCaptions),
	}

	if m.Uploader == "" {
		m.Uploader = o.Channel
	}
	// Use best thumbnail if available
	if m.Thumbnail == "" && len(o.Thumbnails) > 0 {
		m.Thumbnail = o.Thumbnails[len(o.Thumbnails)-1].URL
	}

	return m
}

// HasCaptions reports whether captions exist for lang, manual or automatic.
func (m *Metadata) HasCaptions(lang string) bool {
	for _, l := range m.Subtitles {
		if l == lang {
			return true
		}
	}
	for _, l := range m.AutoCaptions {
		if l == lang {
			return true
		}
	}
	return false
}

func languagesWithVTT(tracks map[string][]captionFormat) []string {
	var langs []string
	for lang, formats := range tracks {
		for _, f := range formats {
			if f.Ext == "vtt" {
				langs = append(langs, lang)
				break
			}
		}
	}
	slices.Sort(langs)
	return langs
}
