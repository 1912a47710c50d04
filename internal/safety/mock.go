package safety

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	apperrors "github.com/ytsafecheck/backend/internal/errors"
)

const (
	// DefaultMockDelay is the simulated backend latency.
	DefaultMockDelay = 2 * time.Second

	mockTitle = "Sample YouTube Video"

	unsafeTranscriptPrefix = "This is a mock transcript that contains "
	unsafeTranscriptSuffix = "In a real implementation, this would be the actual transcript fetched using the YouTube API and analyzed for harmful content by LLaMA 3."
	safeTranscript         = "This is a mock transcript that is suitable for children. In a real implementation, this would be the actual transcript fetched using the YouTube Transcript API and analyzed by LLaMA 3 for safety."

	// safeThreshold: a draw above it yields a safe verdict (about 70%).
	safeThreshold = 0.3
)

// flagThresholds: an unsafe verdict flags a category when its draw exceeds
// the threshold.
var flagThresholds = map[Category]float64{
	HateSpeech:       0.6,
	PoliticalContent: 0.5,
	ExplicitLanguage: 0.3,
	ViolentSpeech:    0.7,
	SexualContent:    0.6,
	RacialComments:   0.7,
	RiotIncitement:   0.8,
	CultContent:      0.8,
	Misinformation:   0.65,
	DrugReferences:   0.7,
}

// MockConfig configures a MockChecker.
type MockConfig struct {
	// Delay is the simulated latency. Zero means no delay.
	Delay time.Duration
	// Seed makes verdicts reproducible. Zero seeds from the clock.
	Seed uint64
	// FailureRate is the probability of a simulated downstream failure.
	FailureRate float64
}

// DefaultMockConfig returns the demo behaviour.
func DefaultMockConfig() MockConfig {
	return MockConfig{Delay: DefaultMockDelay}
}

// MockChecker simulates a content check backend. Known demo videos get
// fixed verdicts; any other video gets a biased random verdict.
type MockChecker struct {
	delay       time.Duration
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockChecker creates a mock checker.
func NewMockChecker(cfg MockConfig) *MockChecker {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &MockChecker{
		delay:       cfg.Delay,
		failureRate: cfg.FailureRate,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Source implements Named.
func (m *MockChecker) Source() string { return SourceMock }

// Check waits for the simulated latency and returns a verdict.
func (m *MockChecker) Check(ctx context.Context, videoID string) (*Result, error) {
	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if m.failureRate > 0 && m.draw() < m.failureRate {
		return nil, apperrors.CheckFailed("simulated content check failure").
			WithDetails(map[string]any{"video_id": videoID})
	}

	if demo, ok := demoVideos[videoID]; ok {
		return demo.result(videoID), nil
	}
	return m.random(videoID), nil
}

func (m *MockChecker) draw() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Float64()
}

func (m *MockChecker) random(videoID string) *Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	isSafe := m.rng.Float64() > safeThreshold
	categories := NewCategories()

	if !isSafe {
		for _, cat := range AllCategories {
			categories[cat] = m.rng.Float64() > flagThresholds[cat]
		}
		if !categories.Any() {
			categories[AllCategories[m.rng.IntN(len(AllCategories))]] = true
		}
	}

	return &Result{
		IsSafe:     isSafe,
		VideoID:    videoID,
		Transcript: mockTranscript(isSafe, categories),
		Title:      mockTitle,
		Categories: categories,
	}
}

func mockTranscript(isSafe bool, categories Categories) string {
	if isSafe {
		return safeTranscript
	}

	active := categories.Active()
	parts := make([]string, len(active))
	for i, c := range active {
		parts[i] = c.Phrase()
	}

	var b strings.Builder
	b.WriteString(unsafeTranscriptPrefix)
	if len(parts) > 0 {
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(". ")
	}
	b.WriteString(unsafeTranscriptSuffix)
	return b.String()
}
