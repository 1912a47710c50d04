package youtube

import "testing"

func TestParser_Match(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name          string
		url           string
		wantID        string
		wantPattern   string
		wantMediaType string
	}{
		{"standard watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", PatternWatch, MediaTypeVideo},
		{"watch URL with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=120&list=PLtest", "dQw4w9WgXcQ", PatternWatch, MediaTypeVideo},
		{"watch URL v not first", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ", PatternWatch, MediaTypeVideo},
		{"watch URL no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", PatternWatch, MediaTypeVideo},
		{"mobile watch URL", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", PatternWatch, MediaTypeVideo},
		{"music watch URL", "https://music.youtube.com/watch?v=dQw4w9WgXcQ&si=x", "dQw4w9WgXcQ", PatternWatch, MediaTypeVideo},
		{"youtu.be short URL", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", PatternShortURL, MediaTypeVideo},
		{"youtu.be with timestamp", "https://youtu.be/dQw4w9WgXcQ?t=5", "dQw4w9WgXcQ", PatternShortURL, MediaTypeVideo},
		{"youtu.be with ampersand", "https://youtu.be/dQw4w9WgXcQ&feature=x", "dQw4w9WgXcQ", PatternShortURL, MediaTypeVideo},
		{"shorts URL", "https://www.youtube.com/shorts/abc123DEF45", "abc123DEF45", PatternShorts, MediaTypeShort},
		{"shorts URL with query", "https://youtube.com/shorts/abc123DEF45?feature=share", "abc123DEF45", PatternShorts, MediaTypeShort},
		{"embed URL", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", PatternEmbed, MediaTypeVideo},
		{"embed URL with autoplay", "https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=1", "dQw4w9WgXcQ", PatternEmbed, MediaTypeVideo},
		{"generic v param", "https://example.com/player?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", PatternQuery, MediaTypeVideo},
		{"generic v param after ampersand", "https://example.com/player?list=1&v=J---aiyznGQ&x=2", "J---aiyznGQ", PatternQuery, MediaTypeVideo},
		{"nocookie embed falls through to nothing", "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := p.Match(tt.url)
			if tt.wantID == "" {
				if ok {
					t.Fatalf("Match(%q) = %+v, want no match", tt.url, m)
				}
				return
			}
			if !ok {
				t.Fatalf("Match(%q) found nothing, want %q", tt.url, tt.wantID)
			}
			if m.VideoID != tt.wantID {
				t.Errorf("VideoID = %q, want %q", m.VideoID, tt.wantID)
			}
			if m.Pattern != tt.wantPattern {
				t.Errorf("Pattern = %q, want %q", m.Pattern, tt.wantPattern)
			}
			if m.MediaType != tt.wantMediaType {
				t.Errorf("MediaType = %q, want %q", m.MediaType, tt.wantMediaType)
			}
		})
	}
}

func TestParser_NoMatch(t *testing.T) {
	p := NewParser()

	for _, raw := range []string{
		"",
		"not a url",
		"https://www.google.com",
		"https://soundcloud.com/artist/track",
		"https://www.youtube.com/watch?v=",
		"https://www.youtube.com/",
		"https://youtu.be/",
		"https://www.youtube.com/live/abc",
	} {
		if id, ok := p.Extract(raw); ok {
			t.Errorf("Extract(%q) = %q, want no match", raw, id)
		}
	}
}

func TestParser_StopsAtDelimiter(t *testing.T) {
	p := NewParser()

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=abc?def", "abc"},
		{"https://www.youtube.com/watch?v=abc&def", "abc"},
		{"https://youtu.be/abc?def&ghi", "abc"},
		{"https://www.youtube.com/embed/abc&start=3", "abc"},
	}

	for _, tt := range tests {
		if got, _ := p.Extract(tt.url); got != tt.want {
			t.Errorf("Extract(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestParser_FirstPatternWins(t *testing.T) {
	// Both the short link and the generic v= fallback match; the short link is
	// earlier in the list.
	id, ok := ExtractVideoID("https://youtu.be/shortID0001?v=queryID0001")
	if !ok || id != "shortID0001" {
		t.Errorf("ExtractVideoID = %q, %v; want shortID0001", id, ok)
	}
}

func TestIsValidURL_MatchesParser(t *testing.T) {
	inputs := []string{
		"",
		"not a url",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?t=5",
		"https://www.youtube.com/shorts/x",
		"https://example.com/?v=1",
		"https://example.com/?video=1",
		"   ",
	}

	for _, in := range inputs {
		_, parsed := ExtractVideoID(in)
		if got := IsValidURL(in); got != parsed {
			t.Errorf("IsValidURL(%q) = %v, parser found = %v", in, got, parsed)
		}
	}
}

func TestExtractVideoID_Examples(t *testing.T) {
	if id, _ := ExtractVideoID("https://www.youtube.com/watch?v=dQw4w9WgXcQ"); id != "dQw4w9WgXcQ" {
		t.Errorf("watch URL: got %q", id)
	}
	if id, _ := ExtractVideoID("https://youtu.be/dQw4w9WgXcQ?t=5"); id != "dQw4w9WgXcQ" {
		t.Errorf("short URL: got %q", id)
	}
	if _, ok := ExtractVideoID("not a url"); ok {
		t.Error("not a url: expected no ID")
	}
	if IsValidURL("not a url") {
		t.Error("not a url: expected invalid")
	}
}
