package transcript

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Cue is one timed caption.
type Cue struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Text  string        `json:"text"`
}

var (
	cueTagPattern = regexp.MustCompile(`<[^>]*>`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// ParseVTT parses WebVTT captions. Inline tags are stripped and lines
// repeated by rolling auto-captions are dropped.
func ParseVTT(content string) ([]Cue, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	if !strings.HasPrefix(content, "WEBVTT") {
		return nil, fmt.Errorf("%w: missing WEBVTT header", ErrInvalidVTT)
	}

	var cues []Cue
	var lastLine string

	blocks := strings.Split(content, "\n\n")
	for _, block := range blocks[1:] {
		lines := strings.Split(strings.Trim(block, "\n"), "\n")
		if len(lines) == 0 || lines[0] == "" {
			continue
		}
		if strings.HasPrefix(lines[0], "NOTE") || lines[0] == "STYLE" || lines[0] == "REGION" {
			continue
		}

		// Optional cue identifier before the timing line
		if !strings.Contains(lines[0], "-->") {
			lines = lines[1:]
			if len(lines) == 0 || !strings.Contains(lines[0], "-->") {
				continue
			}
		}

		start, end, err := parseTiming(lines[0])
		if err != nil {
			return nil, err
		}

		var text []string
		for _, line := range lines[1:] {
			line = cleanCueText(line)
			if line == "" || line == lastLine {
				continue
			}
			text = append(text, line)
			lastLine = line
		}
		if len(text) == 0 {
			continue
		}

		cues = append(cues, Cue{Start: start, End: end, Text: strings.Join(text, " ")})
	}

	return cues, nil
}

// Text joins cue text into a single transcript.
func Text(cues []Cue) string {
	parts := make([]string, len(cues))
	for i, c := range cues {
		parts[i] = c.Text
	}
	return strings.Join(parts, " ")
}

func cleanCueText(line string) string {
	line = cueTagPattern.ReplaceAllString(line, "")
	line = html.UnescapeString(line)
	return strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
}

func parseTiming(line string) (time.Duration, time.Duration, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: bad timing line %q", ErrInvalidVTT, line)
	}

	start, err := parseTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start timestamp: %w", err)
	}

	// Cue settings may follow the end timestamp
	endFields := strings.Fields(parts[1])
	if len(endFields) == 0 {
		return 0, 0, fmt.Errorf("%w: missing end timestamp", ErrInvalidVTT)
	}
	end, err := parseTimestamp(endFields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end timestamp: %w", err)
	}

	return start, end, nil
}

// parseTimestamp accepts HH:MM:SS.mmm and MM:SS.mmm
func parseTimestamp(ts string) (time.Duration, error) {
	secParts := strings.SplitN(ts, ".", 2)
	if len(secParts) != 2 || len(secParts[1]) != 3 {
		return 0, fmt.Errorf("%w: timestamp %q missing milliseconds", ErrInvalidVTT, ts)
	}

	fields := strings.Split(secParts[0], ":")
	var hours, minutes, seconds int
	var err error
	switch len(fields) {
	case 3:
		if hours, err = strconv.Atoi(fields[0]); err != nil {
			return 0, fmt.Errorf("%w: invalid hours in %q", ErrInvalidVTT, ts)
		}
		fields = fields[1:]
	case 2:
	default:
		return 0, fmt.Errorf("%w: timestamp %q", ErrInvalidVTT, ts)
	}

	if minutes, err = strconv.Atoi(fields[0]); err != nil {
		return 0, fmt.Errorf("%w: invalid minutes in %q", ErrInvalidVTT, ts)
	}
	if seconds, err = strconv.Atoi(fields[1]); err != nil {
		return 0, fmt.Errorf("%w: invalid seconds in %q", ErrInvalidVTT, ts)
	}
	millis, err := strconv.Atoi(secParts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid milliseconds in %q", ErrInvalidVTT, ts)
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, nil
}
