package safety

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category names a content-policy concern.
type Category string

const (
	HateSpeech       Category = "hateSpeech"
	PoliticalContent Category = "politicalContent"
	ExplicitLanguage Category = "explicitLanguage"
	ViolentSpeech    Category = "violentSpeech"
	SexualContent    Category = "sexualContent"
	RacialComments   Category = "racialComments"
	RiotIncitement   Category = "riotIncitement"
	CultContent      Category = "cultContent"
	Misinformation   Category = "misinformation"
	DrugReferences   Category = "drugReferences"
)

// AllCategories lists every category in display order.
var AllCategories = []Category{
	HateSpeech,
	PoliticalContent,
	ExplicitLanguage,
	ViolentSpeech,
	SexualContent,
	RacialComments,
	RiotIncitement,
	CultContent,
	Misinformation,
	DrugReferences,
}

var phrases = map[Category]string{
	HateSpeech:       "hate speech",
	PoliticalContent: "political content",
	ExplicitLanguage: "explicit language",
	ViolentSpeech:    "violent themes",
	SexualContent:    "sexual content",
	RacialComments:   "racial comments",
	RiotIncitement:   "riot incitement",
	CultContent:      "cult-related content",
	Misinformation:   "misinformation",
	DrugReferences:   "drug references",
}

var titleCaser = cases.Title(language.English)

// Label returns the display label, e.g. "Hate Speech".
func (c Category) Label() string {
	var b strings.Builder
	for i, r := range string(c) {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return titleCaser.String(b.String())
}

// Phrase returns the lower-case phrase used in generated transcripts.
func (c Category) Phrase() string {
	if p, ok := phrases[c]; ok {
		return p
	}
	return string(c)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := phrases[c]
	return ok
}

// ParseCategory returns the category named s.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Categories maps each category to whether it was flagged.
type Categories map[Category]bool

// NewCategories returns a mapping with every category set to false.
func NewCategories() Categories {
	c := make(Categories, len(AllCategories))
	for _, cat := range AllCategories {
		c[cat] = false
	}
	return c
}

// CategoriesOf returns a full mapping with the given categories flagged.
func CategoriesOf(flagged ...Category) Categories {
	c := NewCategories()
	for _, cat := range flagged {
		c[cat] = true
	}
	return c
}

// Any reports whether at least one flag is set.
func (c Categories) Any() bool {
	for _, v := range c {
		if v {
			return true
		}
	}
	return false
}

// Active returns the flagged categories in display order.
func (c Categories) Active() []Category {
	var active []Category
	for _, cat := range AllCategories {
		if c[cat] {
			active = append(active, cat)
		}
	}
	return active
}

// Count returns the number of flagged categories.
func (c Categories) Count() int {
	n := 0
	for _, v := range c {
		if v {
			n++
		}
	}
	return n
}

// Result is the verdict for one video.
type Result struct {
	IsSafe     bool       `json:"isSafe"`
	VideoID    string     `json:"videoId"`
	Transcript string     `json:"transcript"`
	Title      string     `json:"title,omitempty"`
	Categories Categories `json:"categories,omitempty"`
}

// Consistent reports whether an unsafe verdict names at least one category.
// Safe verdicts are always consistent.
func (r *Result) Consistent() bool {
	return r.IsSafe || r.Categories.Any()
}

// Flags returns the names of the flagged categories.
func (r *Result) Flags() []string {
	active := r.Categories.Active()
	flags := make([]string, len(active))
	for i, c := range active {
		flags[i] = string(c)
	}
	return flags
}

// Verdict returns the headline shown for the result.
func (r *Result) Verdict() string {
	if r.IsSafe {
		return "SAFE"
	}
	return "NOT SAFE"
}

// Summary returns a one-line description of the verdict.
func (r *Result) Summary() string {
	if r.IsSafe {
		return "This content appears to be safe for viewing."
	}
	n := r.Categories.Count()
	if n == 0 {
		return "This content may contain potentially sensitive material."
	}
	suffix := "s"
	if n == 1 {
		suffix = ""
	}
	return fmt.Sprintf("This content may contain potentially sensitive material (%d issue%s detected).", n, suffix)
}
