package youtube

import "fmt"

// ThumbnailURL returns the max-resolution thumbnail for a video.
func ThumbnailURL(videoID string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", videoID)
}

// EmbedURL returns the embeddable player URL for a video.
func EmbedURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/embed/%s", videoID)
}

// CanonicalURL returns the watch page URL for a video.
func CanonicalURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
}

// Preview holds the derived URLs used to render a video preview.
type Preview struct {
	VideoID      string `json:"videoId"`
	ThumbnailURL string `json:"thumbnailUrl"`
	EmbedURL     string `json:"embedUrl"`
	CanonicalURL string `json:"canonicalUrl"`
	Title        string `json:"title,omitempty"`
}

// NewPreview builds the preview for a video ID.
func NewPreview(videoID string) Preview {
	return Preview{
		VideoID:      videoID,
		ThumbnailURL: ThumbnailURL(videoID),
		EmbedURL:     EmbedURL(videoID),
		CanonicalURL: CanonicalURL(videoID),
	}
}
