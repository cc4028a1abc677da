// Package session implements the typing session state machine.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/velotype/internal/model"
	"github.com/verte-zerg/velotype/internal/stats"
)

// DefaultInterval is the live stats refresh period.
const DefaultInterval = 500 * time.Millisecond

// Recorder receives completed sessions.
type Recorder interface {
	Append(ctx context.Context, item model.HistoryItem) error
}

// Provider produces target text for a difficulty. It must not return empty text.
type Provider interface {
	Generate(ctx context.Context, difficulty model.Difficulty) string
}

// Expected is the key the typist should press next.
type Expected struct {
	Rune rune
	// Enter is set when the input already covers the whole target.
	Enter bool
	Valid bool
}

// KeyPress is the most recent appended character.
type KeyPress struct {
	Rune    rune
	Correct bool
	Valid   bool
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithScheduler overrides the periodic task runner.
func WithScheduler(sch Scheduler) Option {
	return func(s *Session) { s.scheduler = sch }
}

// WithInterval sets the live stats refresh period.
func WithInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLiveListener registers fn to receive stats on every refresh tick.
// fn is called without the session lock held.
func WithLiveListener(fn func(model.TestStats)) Option {
	return func(s *Session) { s.listener = fn }
}

// WithIDFunc overrides history item ID generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Session) { s.newID = fn }
}

// Session is the sole owner of the input buffer, tally, clock and phase.
// All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	clock     Clock
	scheduler Scheduler
	interval  time.Duration
	logger    *zap.SugaredLogger
	recorder  Recorder
	listener  func(model.TestStats)
	newID     func() string

	phase      Phase
	difficulty model.Difficulty
	target     []rune
	input      []rune
	tally      model.Tally
	startedAt  time.Time
	lastPress  KeyPress
	result     *model.HistoryItem

	token     uint64
	cancelGen context.CancelFunc
	epoch     uint64
	stopTick  func()
}

// New creates an idle session. recorder may be nil.
func New(recorder Recorder, opts ...Option) *Session {
	s := &Session{
		clock:     systemClock{},
		scheduler: TickerScheduler{},
		interval:  DefaultInterval,
		logger:    zap.NewNop().Sugar(),
		recorder:  recorder,
		newID:     newItemID,
		tally:     model.Tally{MissedKeys: map[string]int{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newItemID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Begin resets the session and enters PhaseGenerating. The returned token
// must be passed to Arm; the returned context is cancelled once a newer
// Begin supersedes this one.
func (s *Session) Begin(ctx context.Context, difficulty model.Difficulty) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTickerLocked()
	if s.cancelGen != nil {
		s.cancelGen()
	}
	genCtx, cancel := context.WithCancel(ctx)
	s.cancelGen = cancel
	s.token++
	s.resetLocked()
	s.difficulty = difficulty
	s.phase = PhaseGenerating
	s.logger.Debugw("session generating", "token", s.token, "difficulty", difficulty)
	return genCtx, s.token
}

// Arm installs text as the target if token belongs to the latest Begin.
// It reports whether the text was applied.
func (s *Session) Arm(token uint64, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token || s.phase != PhaseGenerating {
		s.logger.Debugw("dropping stale text", "token", token, "current", s.token)
		return false
	}
	if s.cancelGen != nil {
		s.cancelGen()
		s.cancelGen = nil
	}
	s.target = []rune(text)
	s.phase = PhaseArmed
	s.logger.Debugw("session armed", "token", token, "length", len(s.target))
	return true
}

// Start requests text from provider and arms the session with it.
// Generation runs without the lock held; a newer Begin makes the result stale.
func (s *Session) Start(ctx context.Context, provider Provider, difficulty model.Difficulty) bool {
	genCtx, token := s.Begin(ctx, difficulty)
	text := provider.Generate(genCtx, difficulty)
	return s.Arm(token, text)
}

// StartText arms the session with a known target.
func (s *Session) StartText(difficulty model.Difficulty, text string) {
	_, token := s.Begin(context.Background(), difficulty)
	s.Arm(token, text)
}

// ApplyInput processes the full current input buffer.
func (s *Session) ApplyInput(buffer string) {
	next := []rune(buffer)
	s.edit(func([]rune) []rune { return next })
}

// Type appends runes to the current buffer.
func (s *Session) Type(runes ...rune) {
	s.edit(func(cur []rune) []rune {
		next := make([]rune, 0, len(cur)+len(runes))
		next = append(next, cur...)
		return append(next, runes...)
	})
}

// Backspace removes the last rune from the buffer.
func (s *Session) Backspace() {
	s.edit(func(cur []rune) []rune {
		if len(cur) == 0 {
			return cur
		}
		return append([]rune(nil), cur[:len(cur)-1]...)
	})
}

// edit derives the next buffer from the current one under the session lock.
func (s *Session) edit(fn func(cur []rune) []rune) {
	item := s.applyInput(fn)
	if item == nil || s.recorder == nil {
		return
	}
	if err := s.recorder.Append(context.Background(), *item); err != nil {
		s.logger.Errorw("failed to record session", "id", item.ID, "error", err)
	}
}

func (s *Session) applyInput(fn func(cur []rune) []rune) *model.HistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.phase.AcceptsInput() {
		return nil
	}
	next := fn(s.input)
	if len(next) > len(s.target) {
		next = next[:len(s.target)]
	}
	if s.phase == PhaseArmed {
		if len(next) == 0 {
			return nil
		}
		s.startedAt = s.clock.Now()
		s.phase = PhaseRunning
		s.startTickerLocked()
		s.logger.Debugw("session running", "token", s.token)
	}

	for p := len(s.input); p < len(next); p++ {
		typed, want := next[p], s.target[p]
		correct := typed == want
		if correct {
			s.tally.Correct++
		} else {
			s.tally.Incorrect++
			s.tally.Errors++
			s.tally.MissedKeys[string(want)]++
		}
		s.lastPress = KeyPress{Rune: typed, Correct: correct, Valid: true}
	}
	s.input = append(s.input[:0], next...)

	if len(s.target) > 0 && len(s.input) == len(s.target) {
		return s.finishLocked()
	}
	return nil
}

func (s *Session) finishLocked() *model.HistoryItem {
	s.stopTickerLocked()
	now := s.clock.Now()
	final := stats.Calculate(s.startedAt, s.tally, now)
	item := model.HistoryItem{
		TestStats:  final,
		ID:         s.newID(),
		Date:       now,
		Difficulty: s.difficulty,
	}
	s.result = &item
	s.phase = PhaseFinished
	s.logger.Infow("session finished",
		"id", item.ID,
		"difficulty", item.Difficulty,
		"wpm", item.WPM,
		"accuracy", item.Accuracy,
		"errors", item.Errors,
	)
	out := item
	out.MissedKeys = model.CloneCounts(item.MissedKeys)
	return &out
}

func (s *Session) resetLocked() {
	s.target = nil
	s.input = nil
	s.tally = model.Tally{MissedKeys: map[string]int{}}
	s.startedAt = time.Time{}
	s.lastPress = KeyPress{}
	s.result = nil
}

func (s *Session) startTickerLocked() {
	s.stopTickerLocked()
	epoch := s.epoch
	s.stopTick = s.scheduler.Every(s.interval, func() { s.tick(epoch) })
}

// stopTickerLocked cancels the live task and invalidates ticks already in flight.
func (s *Session) stopTickerLocked() {
	if s.stopTick != nil {
		s.stopTick()
		s.stopTick = nil
	}
	s.epoch++
}

func (s *Session) tick(epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch || s.phase != PhaseRunning {
		s.mu.Unlock()
		return
	}
	snapshot := stats.Calculate(s.startedAt, s.tally, s.clock.Now())
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener(snapshot)
	}
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Difficulty returns the difficulty of the current session.
func (s *Session) Difficulty() model.Difficulty {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.difficulty
}

// Target returns the target text.
func (s *Session) Target() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.target)
}

// Input returns the current input buffer.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.input)
}

// Tally returns a copy of the keystroke tally.
func (s *Session) Tally() model.Tally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tally.Clone()
}

// Stats computes the current snapshot. Once finished it returns the final stats.
func (s *Session) Stats() model.TestStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case PhaseRunning:
		return stats.Calculate(s.startedAt, s.tally, s.clock.Now())
	case PhaseFinished:
		out := s.result.TestStats
		out.MissedKeys = model.CloneCounts(out.MissedKeys)
		return out
	default:
		return model.EmptyStats()
	}
}

// ExpectedNext returns the next target rune while running.
func (s *Session) ExpectedNext() Expected {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseRunning {
		return Expected{}
	}
	if len(s.input) < len(s.target) {
		return Expected{Rune: s.target[len(s.input)], Valid: true}
	}
	return Expected{Enter: true, Valid: true}
}

// LastPress returns the most recently appended character.
func (s *Session) LastPress() KeyPress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPress
}

// Result returns the completed history item.
func (s *Session) Result() (model.HistoryItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return model.HistoryItem{}, false
	}
	out := *s.result
	out.MissedKeys = model.CloneCounts(out.MissedKeys)
	return out, true
}

// Progress returns typed and total rune counts.
func (s *Session) Progress() (typed, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.input), len(s.target)
}
