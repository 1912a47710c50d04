package safety

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_Label(t *testing.T) {
	tests := map[Category]string{
		HateSpeech:       "Hate Speech",
		PoliticalContent: "Political Content",
		Misinformation:   "Misinformation",
		DrugReferences:   "Drug References",
	}
	for cat, want := range tests {
		assert.Equal(t, want, cat.Label(), string(cat))
	}
}

func TestCategory_Phrase(t *testing.T) {
	assert.Equal(t, "violent themes", ViolentSpeech.Phrase())
	assert.Equal(t, "cult-related content", CultContent.Phrase())
	assert.Equal(t, "bogus", Category("bogus").Phrase())
}

func TestParseCategory(t *testing.T) {
	cat, err := ParseCategory("riotIncitement")
	require.NoError(t, err)
	assert.Equal(t, RiotIncitement, cat)

	_, err = ParseCategory("RiotIncitement")
	assert.Error(t, err)
}

func TestCategories(t *testing.T) {
	c := NewCategories()
	assert.Len(t, c, len(AllCategories))
	assert.False(t, c.Any())

	c = CategoriesOf(Misinformation, HateSpeech)
	assert.True(t, c.Any())
	assert.Equal(t, 2, c.Count())
	assert.Equal(t, []Category{HateSpeech, Misinformation}, c.Active())
}

func TestResult_Consistent(t *testing.T) {
	assert.True(t, (&Result{IsSafe: true}).Consistent())
	assert.False(t, (&Result{IsSafe: false, Categories: NewCategories()}).Consistent())
	assert.True(t, (&Result{IsSafe: false, Categories: CategoriesOf(CultContent)}).Consistent())
}

func TestResult_Summary(t *testing.T) {
	assert.Equal(t, "SAFE", (&Result{IsSafe: true}).Verdict())
	assert.Equal(t, "NOT SAFE", (&Result{}).Verdict())

	one := &Result{Categories: CategoriesOf(HateSpeech)}
	assert.Contains(t, one.Summary(), "(1 issue detected)")

	two := &Result{Categories: CategoriesOf(HateSpeech, CultContent)}
	assert.Contains(t, two.Summary(), "(2 issues detected)")
}

func TestResult_JSONShape(t *testing.T) {
	data, err := json.Marshal(&Result{
		IsSafe:     false,
		VideoID:    "abc",
		Transcript: "text",
		Categories: CategoriesOf(DrugReferences),
	})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, false, raw["isSafe"])
	assert.Equal(t, "abc", raw["videoId"])
	assert.NotContains(t, raw, "title")

	categories := raw["categories"].(map[string]any)
	assert.Equal(t, true, categories["drugReferences"])
	assert.Equal(t, false, categories["hateSpeech"])
}
