// Package session owns the lifecycle of one test attempt: loading a
// definition, the countdown clock, answer commits, navigation, and
// completion. All mutations go through one mutex because HTTP handlers
// and the ticker goroutine call in from separate goroutines.
package session

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/mocktest/internal/evaluate"
	"github.com/pavelanni/mocktest/internal/model"
)

// State is the lifecycle phase of a session.
type State string

const (
	StateNotLoaded State = "not_loaded"
	StateLoaded    State = "loaded"
	StateActive    State = "active"
	StateComplete  State = "complete"
)

var (
	// ErrBadFormat means the test definition is missing its section or
	// question list.
	ErrBadFormat = errors.New("test definition must have a section and questions")
	// ErrNotLoaded means the operation needs a loaded test.
	ErrNotLoaded = errors.New("no test loaded")
	// ErrNotActive means the operation is only valid while the test runs.
	ErrNotActive = errors.New("test is not active")
	// ErrComplete means the session is finished and frozen.
	ErrComplete = errors.New("test already complete")
	// ErrActive means a test is still running; reset it first.
	ErrActive = errors.New("a test is already in progress")
)

// Sink receives the summary record of a completed session.
// The history store satisfies it.
type Sink interface {
	Append(model.HistoryEntry) error
}

// Snapshot is the in-progress state persisted between page loads.
type Snapshot struct {
	Section       string         `json:"section"`
	Answers       []model.Answer `json:"answers"`
	TimeRemaining int            `json:"time_remaining"`
}

// SnapshotStore persists one snapshot under a fixed key. A read failure
// or a stale snapshot is treated as "no saved state", never as an error
// the player sees.
type SnapshotStore interface {
	SaveSnapshot(Snapshot) error
	LoadSnapshot() (Snapshot, bool, error)
	ClearSnapshot() error
}

// Options configures a Session.
type Options struct {
	// Duration is the countdown budget. The session auto-completes when
	// it reaches zero.
	Duration time.Duration
	// History receives a HistoryEntry on every completion. Optional.
	History Sink
	// Snapshots persists in-progress answers. Optional.
	Snapshots SnapshotStore
	// Interval is the ticker period, one second unless overridden.
	// Tests set a long interval and drive Tick directly.
	Interval time.Duration
	// Now is the clock, time.Now unless overridden.
	Now func() time.Time
}

// Session is the state machine for one test attempt.
type Session struct {
	mu sync.Mutex

	state         State
	test          *model.TestData
	testName      string
	answers       []model.Answer
	index         int
	budget        int // seconds
	timeRemaining int // seconds
	score         int
	questionStart time.Time

	history   Sink
	snapshots SnapshotStore
	interval  time.Duration
	now       func() time.Time

	cancelTimer context.CancelFunc
}

// New creates an idle session in the NotLoaded state.
func New(opts Options) *Session {
	if opts.Duration <= 0 {
		opts.Duration = 35 * time.Minute
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		state:     StateNotLoaded,
		budget:    int(opts.Duration.Seconds()),
		history:   opts.History,
		snapshots: opts.Snapshots,
		interval:  opts.Interval,
		now:       opts.Now,
	}
}

// Load installs a test definition and initializes one empty answer per
// question, in question order. If a snapshot for the same test exists it
// restores the saved answers and remaining time; a stale or unreadable
// snapshot is ignored.
func (s *Session) Load(data model.TestData, name string) error {
	if data.Section == "" || len(data.Questions) == 0 {
		return ErrBadFormat
	}
	if name == "" {
		name = data.Section
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateActive {
		return ErrActive
	}
	if s.state == StateComplete {
		return ErrComplete
	}

	s.test = &data
	s.testName = name
	s.index = 0
	s.score = 0
	s.timeRemaining = s.budget
	s.answers = make([]model.Answer, len(data.Questions))
	for i, q := range data.Questions {
		s.answers[i] = model.Answer{QuestionID: q.ID, Value: evaluate.Empty(q)}
	}
	s.state = StateLoaded

	s.restoreSnapshotLocked()
	return nil
}

// restoreSnapshotLocked applies a saved snapshot if it matches the
// loaded test exactly; anything else is silently discarded.
func (s *Session) restoreSnapshotLocked() {
	if s.snapshots == nil {
		return
	}
	snap, ok, err := s.snapshots.LoadSnapshot()
	if err != nil {
		slog.Warn("ignoring unreadable session snapshot", "error", err)
		return
	}
	if !ok || snap.Section != s.test.Section || len(snap.Answers) != len(s.answers) {
		return
	}
	for i, a := range snap.Answers {
		if a.QuestionID != s.answers[i].QuestionID {
			return
		}
	}
	copy(s.answers, snap.Answers)
	if snap.TimeRemaining > 0 && snap.TimeRemaining <= s.budget {
		s.timeRemaining = snap.TimeRemaining
	}
}

// Start begins the countdown and per-question timing. Any persisted
// snapshot is cleared; the restored answers, if any, stay.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateNotLoaded:
		return ErrNotLoaded
	case StateActive:
		return nil
	case StateComplete:
		return ErrComplete
	}

	s.state = StateActive
	s.questionStart = s.now()
	if s.snapshots != nil {
		if err := s.snapshots.ClearSnapshot(); err != nil {
			slog.Warn("clear session snapshot", "error", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelTimer = cancel
	go s.runTimer(ctx)
	return nil
}

// runTimer drives the countdown. It stops as soon as the session leaves
// the Active state, either via cancellation or a false Tick.
func (s *Session) runTimer(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !s.Tick() {
				return
			}
		}
	}
}

// Tick advances the countdown by one second and reports whether the
// session is still active. Reaching zero auto-completes the test.
// Ticks outside the Active state are no-ops.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return false
	}
	s.timeRemaining--
	if s.timeRemaining <= 0 {
		s.timeRemaining = 0
		s.completeLocked()
		return false
	}
	return true
}

// SetAnswer records (or overwrites) the answer for the given question,
// evaluates it immediately, and stamps the seconds spent since the later
// of test start and the previous commit. An unknown question ID is a
// no-op.
func (s *Session) SetAnswer(questionID int, v model.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return ErrNotActive
	}

	idx := -1
	for i := range s.answers {
		if s.answers[i].QuestionID == questionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	q := s.test.Questions[idx]
	taken := int(s.now().Sub(s.questionStart).Seconds())
	if taken < 0 {
		taken = 0
	}
	s.answers[idx] = model.Answer{
		QuestionID: questionID,
		Value:      v,
		Correct:    evaluate.Correct(q, v),
		TimeTaken:  taken,
	}
	s.questionStart = s.now()

	if s.snapshots != nil {
		snap := Snapshot{
			Section:       s.test.Section,
			Answers:       append([]model.Answer(nil), s.answers...),
			TimeRemaining: s.timeRemaining,
		}
		if err := s.snapshots.SaveSnapshot(snap); err != nil {
			slog.Warn("save session snapshot", "error", err)
		}
	}
	return nil
}

// Next moves to the following question, staying in bounds.
func (s *Session) Next() error { return s.goTo(func(i int) int { return i + 1 }) }

// Prev moves to the preceding question, staying in bounds.
func (s *Session) Prev() error { return s.goTo(func(i int) int { return i - 1 }) }

// GoTo jumps to the question at index i. Out-of-range targets are
// ignored, not errors.
func (s *Session) GoTo(i int) error { return s.goTo(func(int) int { return i }) }

func (s *Session) goTo(next func(int) int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return ErrNotActive
	}
	i := next(s.index)
	if i < 0 || i >= len(s.test.Questions) {
		return nil
	}
	s.index = i
	return nil
}

// Complete finishes the test: the answer set freezes, the score is
// computed, and a history entry is appended.
func (s *Session) Complete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateComplete {
		return nil
	}
	if s.state != StateActive {
		return ErrNotActive
	}
	s.completeLocked()
	return nil
}

func (s *Session) completeLocked() {
	if s.cancelTimer != nil {
		s.cancelTimer()
		s.cancelTimer = nil
	}

	correct := 0
	byType := make(map[model.QuestionType]model.TypeCount, len(model.QuestionTypes))
	for i, a := range s.answers {
		tc := byType[s.test.Questions[i].Type]
		tc.Total++
		if a.Correct {
			correct++
			tc.Correct++
		}
		byType[s.test.Questions[i].Type] = tc
	}
	total := len(s.answers)
	s.score = int(math.Round(100 * float64(correct) / float64(total)))
	s.state = StateComplete

	if s.history != nil {
		entry := model.HistoryEntry{
			ID:             uuid.NewString(),
			Date:           s.now(),
			TestName:       s.testName,
			Section:        s.test.Section,
			Score:          s.score,
			Questions:      total,
			CorrectAnswers: correct,
			ByType:         byType,
		}
		if err := s.history.Append(entry); err != nil {
			slog.Error("append history entry", "error", err)
		}
	}
}

// Reset discards the loaded test, answers, score, and timer, returning
// the session to NotLoaded. Valid from any state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelTimer != nil {
		s.cancelTimer()
		s.cancelTimer = nil
	}
	s.test = nil
	s.testName = ""
	s.answers = nil
	s.index = 0
	s.score = 0
	s.timeRemaining = 0
	s.state = StateNotLoaded
	if s.snapshots != nil {
		if err := s.snapshots.ClearSnapshot(); err != nil {
			slog.Warn("clear session snapshot", "error", err)
		}
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Test returns the loaded definition, or false if none is loaded.
func (s *Session) Test() (model.TestData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.test == nil {
		return model.TestData{}, false
	}
	return *s.test, true
}

// Name returns the display name of the loaded test.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.testName
}

// CurrentIndex returns the 0-based position within the question order.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// CurrentQuestion returns the question at the current position.
func (s *Session) CurrentQuestion() (model.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.test == nil || s.index >= len(s.test.Questions) {
		return model.Question{}, false
	}
	return s.test.Questions[s.index], true
}

// Answers returns a copy of the answer set in question order.
func (s *Session) Answers() []model.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Answer(nil), s.answers...)
}

// AnsweredCount returns how many questions have a non-empty answer.
func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.answers {
		if !a.Value.IsEmpty() {
			n++
		}
	}
	return n
}

// TimeRemaining returns the countdown value in seconds.
func (s *Session) TimeRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeRemaining
}

// Score returns the final score. It is only valid once the session is
// Complete; ok is false before then.
func (s *Session) Score() (score int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score, s.state == StateComplete
}
