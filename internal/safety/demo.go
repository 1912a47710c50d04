package safety

type demoVideo struct {
	safe       bool
	title      string
	transcript string
	flagged    []Category
}

// demoVideos are fixed verdicts for well-known videos.
var demoVideos = map[string]demoVideo{
	"dQw4w9WgXcQ": {
		safe:       true,
		title:      "Educational Content",
		transcript: "This is an educational video suitable for children talking about science and nature in a kid-friendly way.",
	},
	"C0DPdy98e4c": {
		title:      "Content with Violent Themes",
		transcript: "This video contains violent speech and imagery that's not suitable for children.",
		flagged:    []Category{ExplicitLanguage, ViolentSpeech},
	},
	"ZbZSe6N_BXs": {
		title:      "Political Commentary",
		transcript: "This video contains divisive political content and some racial commentary that may not be appropriate for younger audiences.",
		flagged:    []Category{PoliticalContent, RacialComments},
	},
	"9bZkp7q19f0": {
		title:      "Explicit Content",
		transcript: "This video contains explicit language and adult themes not suitable for children.",
		flagged:    []Category{ExplicitLanguage, SexualContent},
	},
	"y6120QOlsfU": {
		title:      "Problematic Content",
		transcript: "This video contains hate speech, misinformation, and content that may promote harmful views.",
		flagged:    []Category{HateSpeech, PoliticalContent, RacialComments, Misinformation},
	},
	"J---aiyznGQ": {
		title:      "Extremist Content",
		transcript: "This video contains content that may incite riots and discusses harmful cult activities.",
		flagged:    []Category{PoliticalContent, ViolentSpeech, RiotIncitement, CultContent, Misinformation},
	},
	"MtN1YnoL46Q": {
		title:      "Content with Drug References",
		transcript: "This video contains references to drug use and adult themes not appropriate for children.",
		flagged:    []Category{ExplicitLanguage, DrugReferences},
	},
}

// DemoVideoIDs returns the IDs with fixed verdicts.
func DemoVideoIDs() []string {
	ids := make([]string, 0, len(demoVideos))
	for id := range demoVideos {
		ids = append(ids, id)
	}
	return ids
}

func (d demoVideo) result(videoID string) *Result {
	return &Result{
		IsSafe:     d.safe,
		VideoID:    videoID,
		Transcript: d.transcript,
		Title:      d.title,
		Categories: CategoriesOf(d.flagged...),
	}
}
