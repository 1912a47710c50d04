package transcript

import "errors"

var (
	// ErrYtdlpNotFound indicates yt-dlp is not installed
	ErrYtdlpNotFound = errors.New("yt-dlp not found in PATH")

	// ErrVideoUnavailable indicates the video is not available
	ErrVideoUnavailable = errors.New("video unavailable")

	// ErrVideoPrivate indicates the video is private
	ErrVideoPrivate = errors.New("video is private")

	// ErrAgeRestricted indicates the content is age-restricted
	ErrAgeRestricted = errors.New("content is age-restricted")

	// ErrNetworkError indicates a network-related error
	ErrNetworkError = errors.New("network error")

	// ErrNoCaptions indicates the video has no captions in the requested language
	ErrNoCaptions = errors.New("no captions available")

	// ErrInvalidVTT indicates a caption file could not be parsed
	ErrInvalidVTT = errors.New("invalid VTT format")

	// ErrFetchFailed indicates yt-dlp failed for another reason
	ErrFetchFailed = errors.New("transcript fetch failed")
)

// FetchError wraps an error with the video it concerns
type FetchError struct {
	VideoID string
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Permanent reports whether retrying the fetch cannot help.
func Permanent(err error) bool {
	return errors.Is(err, ErrVideoUnavailable) ||
		errors.Is(err, ErrVideoPrivate) ||
		errors.Is(err, ErrAgeRestricted) ||
		errors.Is(err, ErrNoCaptions) ||
		errors.Is(err, ErrYtdlpNotFound)
}
