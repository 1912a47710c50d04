package session

import (
	"context"
	"strings"
	"sync"
	"time"

	apperrors "github.com/ytsafecheck/backend/internal/errors"
	"github.com/ytsafecheck/backend/internal/logger"
	"github.com/ytsafecheck/backend/internal/safety"
	"github.com/ytsafecheck/backend/internal/youtube"
)

// Notice texts shown to the user.
const (
	TitleInvalidFormat  = "Invalid YouTube URL format"
	TitleAlreadyChecked = "Already checked this video"
	DescAlreadyChecked  = "Enter a different YouTube URL to check another video"
	TitleCheckFailed    = "Failed to check YouTube content. Please try again."
)

// Level is the severity of a notice.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a transient notification for the user.
type Notice struct {
	Level       Level  `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// OutcomeKind describes how a submission ended.
type OutcomeKind string

const (
	OutcomeRejected  OutcomeKind = "rejected"
	OutcomeDuplicate OutcomeKind = "duplicate"
	OutcomeChecked   OutcomeKind = "checked"
	OutcomeFailed    OutcomeKind = "failed"
)

// Outcome is the result of one submission.
type Outcome struct {
	Kind    OutcomeKind    `json:"kind"`
	VideoID string         `json:"videoId,omitempty"`
	Result  *safety.Result `json:"result,omitempty"`
	Notices []Notice       `json:"notices"`
	State   State          `json:"state"`
	Err     error          `json:"-"`
}

// State is a read-only snapshot of a session.
type State struct {
	ID         string           `json:"id"`
	Input      string           `json:"input"`
	FieldError string           `json:"fieldError,omitempty"`
	Loading    bool             `json:"loading"`
	VideoID    string           `json:"videoId,omitempty"`
	Preview    *youtube.Preview `json:"preview,omitempty"`
	Result     *safety.Result   `json:"result,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// Notifier receives every notice a session emits.
type Notifier interface {
	Notify(sessionID string, n Notice)
}

// Session owns the state of one checking view: the last input, its field
// error, the current video and its verdict.
type Session struct {
	id       string
	checker  safety.Checker
	notifier Notifier
	now      func() time.Time
	log      *logger.Logger

	mu         sync.Mutex
	input      string
	fieldError string
	videoID    string
	result     *safety.Result
	resultID   string // video the result belongs to
	inflight   int
	createdAt  time.Time
	updatedAt  time.Time
}

func newSession(id string, checker safety.Checker, notifier Notifier, now func() time.Time) *Session {
	t := now()
	return &Session{
		id:        id,
		checker:   checker,
		notifier:  notifier,
		now:       now,
		log:       logger.Default().WithComponent("session"),
		createdAt: t,
		updatedAt: t,
	}
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	st := State{
		ID:         s.id,
		Input:      s.input,
		FieldError: s.fieldError,
		Loading:    s.inflight > 0,
		VideoID:    s.videoID,
		Result:     s.result,
		CreatedAt:  s.createdAt,
		UpdatedAt:  s.updatedAt,
	}
	if s.videoID != "" {
		p := youtube.NewPreview(s.videoID)
		if s.result != nil && s.resultID == s.videoID {
			p.Title = s.result.Title
		}
		st.Preview = &p
	}
	return st
}

// lastActive reports when the session was last touched.
func (s *Session) lastActive() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt, s.inflight > 0
}

// Submit validates rawURL and, unless the result on hand is already for that
// video, runs the content check. The session lock is not held while
// checking. The most recent submission owns the session: a check that
// completes after a newer video was submitted is returned to its caller but
// leaves the session state alone.
func (s *Session) Submit(ctx context.Context, rawURL string) *Outcome {
	trimmed := strings.TrimSpace(rawURL)

	s.mu.Lock()
	s.input = rawURL
	s.fieldError = ""
	s.updatedAt = s.now()

	if trimmed == "" {
		s.fieldError = youtube.MsgEmptyURL
		return s.finishLocked(&Outcome{Kind: OutcomeRejected}, Notice{Level: LevelError, Title: youtube.MsgEmptyURL})
	}

	videoID, ok := youtube.ExtractVideoID(trimmed)
	if !ok {
		s.fieldError = youtube.MsgInvalidURL
		return s.finishLocked(&Outcome{Kind: OutcomeRejected}, Notice{Level: LevelError, Title: TitleInvalidFormat})
	}

	if s.result != nil && s.resultID == videoID {
		s.videoID = videoID
		return s.finishLocked(&Outcome{Kind: OutcomeDuplicate, VideoID: videoID, Result: s.result},
			Notice{Level: LevelInfo, Title: TitleAlreadyChecked, Description: DescAlreadyChecked})
	}

	s.videoID = videoID
	s.inflight++
	s.mu.Unlock()

	result, err := s.checker.Check(ctx, videoID)

	s.mu.Lock()
	s.inflight--
	s.updatedAt = s.now()
	current := videoID == s.videoID

	if err != nil {
		if current {
			s.result = nil
			s.resultID = ""
		}
		s.log.Warn(ctx, "content check failed", map[string]any{
			"session_id": s.id,
			"video_id":   videoID,
			"error":      err.Error(),
		})
		return s.finishLocked(&Outcome{Kind: OutcomeFailed, VideoID: videoID, Err: err},
			Notice{Level: LevelError, Title: TitleCheckFailed})
	}

	if !current {
		s.log.Debug(ctx, "dropping result for superseded submission", map[string]any{
			"session_id": s.id,
			"video_id":   videoID,
			"current":    s.videoID,
		})
		return s.finishLocked(&Outcome{Kind: OutcomeChecked, VideoID: videoID, Result: result})
	}
	s.result = result
	s.resultID = videoID
	return s.finishLocked(&Outcome{Kind: OutcomeChecked, VideoID: videoID, Result: result})
}

// finishLocked snapshots the state, releases the lock and publishes notices.
func (s *Session) finishLocked(out *Outcome, notices ...Notice) *Outcome {
	out.State = s.stateLocked()
	out.Notices = append([]Notice{}, notices...)
	s.mu.Unlock()

	if s.notifier != nil {
		for _, n := range notices {
			s.notifier.Notify(s.id, n)
		}
	}
	return out
}

// ErrorCode returns the error code of a failed outcome.
func (o *Outcome) ErrorCode() string {
	if o.Err == nil {
		return ""
	}
	if appErr, ok := apperrors.As(o.Err); ok {
		return appErr.Code
	}
	return apperrors.CodeInternalError
}
