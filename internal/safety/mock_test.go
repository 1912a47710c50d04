package safety

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ytsafecheck/backend/internal/errors"
)

func newTestMock(seed uint64) *MockChecker {
	return NewMockChecker(MockConfig{Seed: seed})
}

func TestMockChecker_DemoVideos(t *testing.T) {
	m := newTestMock(1)

	tests := []struct {
		id      string
		safe    bool
		title   string
		flagged []Category
	}{
		{"dQw4w9WgXcQ", true, "Educational Content", nil},
		{"C0DPdy98e4c", false, "Content with Violent Themes", []Category{ExplicitLanguage, ViolentSpeech}},
		{"ZbZSe6N_BXs", false, "Political Commentary", []Category{PoliticalContent, RacialComments}},
		{"9bZkp7q19f0", false, "Explicit Content", []Category{ExplicitLanguage, SexualContent}},
		{"y6120QOlsfU", false, "Problematic Content", []Category{HateSpeech, PoliticalContent, RacialComments, Misinformation}},
		{"J---aiyznGQ", false, "Extremist Content", []Category{PoliticalContent, ViolentSpeech, RiotIncitement, CultContent, Misinformation}},
		{"MtN1YnoL46Q", false, "Content with Drug References", []Category{ExplicitLanguage, DrugReferences}},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			result, err := m.Check(context.Background(), tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.id, result.VideoID)
			assert.Equal(t, tt.safe, result.IsSafe)
			assert.Equal(t, tt.title, result.Title)
			assert.Equal(t, tt.flagged, result.Categories.Active())
			assert.NotEmpty(t, result.Transcript)
		})
	}
	assert.Len(t, DemoVideoIDs(), len(tests))
}

func TestMockChecker_UnsafeAlwaysFlagged(t *testing.T) {
	m := newTestMock(42)
	for i := 0; i < 2000; i++ {
		result, err := m.Check(context.Background(), "random-video")
		require.NoError(t, err)
		if !result.IsSafe {
			require.True(t, result.Categories.Any(), "unsafe verdict without flags on draw %d", i)
			assert.True(t, strings.HasPrefix(result.Transcript, unsafeTranscriptPrefix))
		} else {
			assert.False(t, result.Categories.Any())
			assert.Equal(t, safeTranscript, result.Transcript)
		}
		assert.Equal(t, mockTitle, result.Title)
	}
}

func TestMockChecker_SafeBias(t *testing.T) {
	m := newTestMock(7)
	const n = 5000
	safe := 0
	for i := 0; i < n; i++ {
		result, err := m.Check(context.Background(), "unknown")
		require.NoError(t, err)
		if result.IsSafe {
			safe++
		}
	}
	ratio := float64(safe) / n
	assert.InDelta(t, 0.7, ratio, 0.03)
}

func TestMockChecker_SeedIsDeterministic(t *testing.T) {
	a, b := newTestMock(99), newTestMock(99)
	for i := 0; i < 20; i++ {
		ra, err := a.Check(context.Background(), "same")
		require.NoError(t, err)
		rb, err := b.Check(context.Background(), "same")
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
}

func TestMockChecker_Transcript(t *testing.T) {
	got := mockTranscript(false, CategoriesOf(HateSpeech, ViolentSpeech))
	assert.Equal(t, unsafeTranscriptPrefix+"hate speech, violent themes. "+unsafeTranscriptSuffix, got)
}

func TestMockChecker_DelayHonoursContext(t *testing.T) {
	m := NewMockChecker(MockConfig{Delay: time.Minute, Seed: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := m.Check(ctx, "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestMockChecker_FailureRate(t *testing.T) {
	m := NewMockChecker(MockConfig{Seed: 1, FailureRate: 1})

	_, err := m.Check(context.Background(), "dQw4w9WgXcQ")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeCheckFailed, appErr.Code)
}

func TestMockChecker_Source(t *testing.T) {
	assert.Equal(t, SourceMock, SourceOf(newTestMock(1)))
	assert.Equal(t, "unknown", SourceOf(CheckerFunc(nil)))
}
