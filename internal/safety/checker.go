package safety

import "context"

// Source names identify which checker produced a result.
const (
	SourceMock   = "mock"
	SourceRemote = "remote"
	SourceLLM    = "llm"
)

// Checker produces a content safety verdict for a video.
type Checker interface {
	Check(ctx context.Context, videoID string) (*Result, error)
}

// Named is implemented by checkers that report their source.
type Named interface {
	Source() string
}

// SourceOf returns the source name of c, or "unknown".
func SourceOf(c Checker) string {
	if n, ok := c.(Named); ok {
		return n.Source()
	}
	return "unknown"
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context, videoID string) (*Result, error)

func (f CheckerFunc) Check(ctx context.Context, videoID string) (*Result, error) {
	return f(ctx, videoID)
}
