package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/verte-zerg/velotype/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeTask struct {
	interval time.Duration
	fn       func()
	stopped  bool
}

type fakeScheduler struct {
	mu    sync.Mutex
	tasks []*fakeTask
}

func (f *fakeScheduler) Every(interval time.Duration, fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	task := &fakeTask{interval: interval, fn: fn}
	f.tasks = append(f.tasks, task)
	return func() {
		f.mu.Lock()
		task.stopped = true
		f.mu.Unlock()
	}
}

// fire runs every task that has not been stopped.
func (f *fakeScheduler) fire() {
	f.mu.Lock()
	var fns []func()
	for _, task := range f.tasks {
		if !task.stopped {
			fns = append(fns, task.fn)
		}
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// fireAll runs every task ever scheduled, including stopped ones.
func (f *fakeScheduler) fireAll() {
	f.mu.Lock()
	tasks := append([]*fakeTask(nil), f.tasks...)
	f.mu.Unlock()
	for _, task := range tasks {
		task.fn()
	}
}

func (f *fakeScheduler) active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, task := range f.tasks {
		if !task.stopped {
			n++
		}
	}
	return n
}

type recorder struct {
	mu    sync.Mutex
	items []model.HistoryItem
	err   error
}

func (r *recorder) Append(_ context.Context, item model.HistoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
	return r.err
}

func (r *recorder) recorded() []model.HistoryItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.HistoryItem(nil), r.items...)
}

type harness struct {
	clock *fakeClock
	sched *fakeScheduler
	rec   *recorder
	live  []model.TestStats
	s     *Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{clock: newFakeClock(), sched: &fakeScheduler{}, rec: &recorder{}}
	h.s = New(h.rec,
		WithClock(h.clock),
		WithScheduler(h.sched),
		WithLogger(zaptest.NewLogger(t).Sugar()),
		WithLiveListener(func(st model.TestStats) { h.live = append(h.live, st) }),
		WithIDFunc(func() string { return "item-1" }),
	)
	return h
}

func TestCatScenario(t *testing.T) {
	h := newHarness(t)
	h.s.StartText(model.DifficultyEasy, "cat")
	require.Equal(t, PhaseArmed, h.s.Phase())

	h.s.Type('c')
	require.Equal(t, PhaseRunning, h.s.Phase())
	h.clock.Advance(6 * time.Second)
	h.s.Type('a')
	h.s.Type('x')

	require.Equal(t, PhaseFinished, h.s.Phase())
	item, ok := h.s.Result()
	require.True(t, ok)
	assert.Equal(t, 2, item.CorrectChars)
	assert.Equal(t, 1, item.IncorrectChars)
	assert.Equal(t, 1, item.Errors)
	assert.Equal(t, map[string]int{"t": 1}, item.MissedKeys)
	assert.Equal(t, 67, item.Accuracy)
	assert.InDelta(t, 6.0, item.TimeElapsed, 1e-9)
	// 2 correct chars in 0.1 minutes = 4 wpm, 3 typed = 6 raw.
	assert.Equal(t, 4, item.WPM)
	assert.Equal(t, 6, item.RawWPM)
	assert.Equal(t, "item-1", item.ID)
	assert.Equal(t, model.DifficultyEasy, item.Difficulty)
	assert.True(t, item.Date.Equal(h.clock.Now()))

	recorded := h.rec.recorded()
	require.Len(t, recorded, 1)
	assert.Equal(t, item, recorded[0])
}

func TestCompletionFiresOnce(t *testing.T) {
	h := newHarness(t)
	h.s.StartText(model.DifficultyMedium, "ab")
	h.s.ApplyInput("ab")
	require.Equal(t, PhaseFinished, h.s.Phase())

	h.s.ApplyInput("abc")
	h.s.ApplyInput("a")
	h.s.Type('z')
	h.s.Backspace()

	assert.Len(t, h.rec.recorded(), 1)
	tally := h.s.Tally()
	assert.Equal(t, 2, tally.Correct)
	assert.Equal(t, 0, tally.Incorrect)
	assert.Equal(t, "ab", h.s.Input())
}

func TestBackspaceDoesNotChangeTally(t *testing.T) {
	h := newHarness(t)
	h.s.StartText(model.DifficultyEasy, "hello")
	h.s.Type('h', 'x')

	before := h.s.Tally()
	assert.Equal(t, 1, before.Correct)
	assert.Equal(t, 1, before.Incorrect)

	h.s.Backspace()
	assert.Equal(t, before, h.s.Tally())
	assert.Equal(t, "h", h.s.Input())

	h.s.Backspace()
	h.s.Type('h')
	after := h.s.Tally()
	assert.Equal(t, 2, after.Correct)
	assert.Equal(t, 1, after.Incorrect)
	assert.Equal(t, 1, after.Errors)
	assert.Equal(t, map[string]int{"e": 1}, after.MissedKeys)
	assert.Equal(t, 3, after.Typed())
}

func TestLastPressPersistsAcrossBackspace(t *testing.T) {
	h := newHarness(t)
	h.s.StartText(model.DifficultyEasy, "abc")
	assert.False(t, h.s.LastPress().Valid)

	h.s.Type('a', 'q')
	press := h.s.LastPress()
	assert.Equal(t, KeyPress{Rune: 'q', Correct: false, Valid: true}, press)

	h.s.Backspace()
	assert.Equal(t, press, h.s.LastPress())

	h.s.Type('b')
	assert.Equal(t, KeyPress{Rune: 'b', Correct: true, Valid: true}, h.s.LastPress())

	h.s.StartText(model.DifficultyEasy, "abc")
	assert.False(t, h.s.LastPress().Valid)
}

func TestExpectedNext(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.s.ExpectedNext().Valid)

	h.s.StartText(model.DifficultyEasy, "a b")
	assert.False(t, h.s.ExpectedNext().Valid, "unset before running")

	h.s.Type('a')
	assert.Equal(t, Expected{Rune: ' ', Valid: true}, h.s.ExpectedNext())
	h.s.Type(' ')
	assert.Equal(t, Expected{Rune: 'b', Valid: true}, h.s.ExpectedNext())
	h.s.Type('b')
	assert.False(t, h.s.ExpectedNext().Valid, "unset once finished")
}

func TestPasteAppendsEveryCharacter(t *testing.T) {
	h := newHarness(t)
	h.s.StartText(model.DifficultyHard, "paste me")
	h.s.ApplyInput("pastX")

	tally := h.s.Tally()
	assert.Equal(t, 4, tally.Correct)
	assert.Equal(t, 1, tally.Incorrect)
	assert.Equal(t, map[string]int{"e": 1}, tally.MissedKeys)
	assert.Equal(t, KeyPress{Rune: 'X', Correct: false, Valid: true}, h.s.LastPress())
	typed, total := h.s.Progress()
	assert.Equal(t, 5, typed)
	assert.Equal(t, 8, total)
}

func TestInputLongerThanTargetIsTruncated(t *testing.T) {
	h := newHarness(t)
	h.s.StartText(model.DifficultyEasy, "ab")
	h.s.ApplyInput("abcdef")

	require.Equal(t, PhaseFinished, h.s.Phase())
	assert.Equal(t, "ab", h.s.Input())
	assert.Equal(t, 2, h.s.Tally().Typed())
}

func TestInputIgnoredOutsideArmedAndRunning(t *testing.T) {
	h := newHarness(t)
	h.s.ApplyInput("abc")
	assert.Equal(t, PhaseIdle, h.s.Phase())
	assert.Empty(t, h.s.Input())

	_, _ = h.s.Begin(context.Background(), model.DifficultyEasy)
	h.s.Type('a')
	assert.Equal(t, PhaseGenerating, h.s.Phase())
	assert.Zero(t, h.s.Tally().Typed())
}

func TestZeroLengthTargetNeverCompletes(t *testing.T) {
	h := newHarness(t)
	h.s.StartText(model.DifficultyEasy, "")
	h.s.ApplyInput("")
	h.s.ApplyInput("abc")

	assert.Equal(t, PhaseArmed, h.s.Phase())
	assert.Empty(t, h.rec.recorded())
	assert.Zero(t, h.sched.active())
}

func TestEmptyBufferDoesNotStartClock(t *testing.T) {
	h := newHarness(t)
	h.s.StartText(model.DifficultyEasy, "abc")
	h.s.ApplyInput("")
	assert.Equal(t, PhaseArmed, h.s.Phase())
	assert.Equal(t, model.EmptyStats(), h.s.Stats())
}

func TestLiveTicksWhileRunning(t *testing.T) {
	h := newHarness(t)
	h.s.StartText(model.DifficultyEasy, "abcdefghij")
	assert.Zero(t, h.sched.active(), "no ticker before the first keystroke")

	h.s.Type('a', 'b', 'c', 'd', 'e')
	require.Equal(t, 1, h.sched.active())
	assert.Equal(t, DefaultInterval, h.sched.tasks[0].interval)

	h.clock.Advance(30 * time.Second)
	h.sched.fire()
	require.Len(t, h.live, 1)
	assert.Equal(t, 2, h.live[0].WPM)
	assert.Equal(t, 100, h.live[0].Accuracy)
	assert.InDelta(t, 30.0, h.live[0].TimeElapsed, 1e-9)

	h.clock.Advance(30 * time.Second)
	h.sched.fire()
	require.Len(t, h.live, 2)
	assert.Equal(t, 1, h.live[1].WPM)
	assert.Equal(t, 5, h.s.Tally().Correct, "ticks never mutate the tally")
}

func TestTickerStoppedOnFinish(t *testing.T) {
	h := newHarness(t)
	h.s.StartText(model.DifficultyEasy, "ab")
	h.s.Type('a')
	require.Equal(t, 1, h.sched.active())

	h.s.Type('b')
	assert.Zero(t, h.sched.active())

	// A tick already in flight when the session finished is dropped.
	h.sched.fireAll()
	assert.Empty(t, h.live)
}

func TestTickerStoppedOnBegin(t *testing.T) {
	h := newHarness(t)
	h.s.StartText(model.DifficultyEasy, "abc")
	h.s.Type('a')
	require.Equal(t, 1, h.sched.active())

	h.s.StartText(model.DifficultyEasy, "xyz")
	assert.Zero(t, h.sched.active())
	h.sched.fireAll()
	assert.Empty(t, h.live)

	h.s.Type('x')
	assert.Equal(t, 1, h.sched.active(), "at most one active ticker")
	h.sched.fire()
	assert.Len(t, h.live, 1)
}

func TestCustomInterval(t *testing.T) {
	sched := &fakeScheduler{}
	s := New(nil, WithScheduler(sched), WithInterval(250*time.Millisecond))
	s.StartText(model.DifficultyEasy, "abc")
	s.Type('a')
	require.Len(t, sched.tasks, 1)
	assert.Equal(t, 250*time.Millisecond, sched.tasks[0].interval)
}

type blockingProvider struct {
	calls chan model.Difficulty
	texts chan string
}

func (p *blockingProvider) Generate(ctx context.Context, d model.Difficulty) string {
	p.calls <- d
	select {
	case text := <-p.texts:
		return text
	case <-ctx.Done():
		return "cancelled"
	}
}

func TestLastStartWins(t *testing.T) {
	h := newHarness(t)

	ctx1, token1 := h.s.Begin(context.Background(), model.DifficultyEasy)
	ctx2, token2 := h.s.Begin(context.Background(), model.DifficultyHard)
	assert.Greater(t, token2, token1)
	assert.Error(t, ctx1.Err(), "superseded generation is cancelled")
	assert.NoError(t, ctx2.Err())

	assert.True(t, h.s.Arm(token2, "second"))
	assert.False(t, h.s.Arm(token1, "first"))
	assert.Equal(t, "second", h.s.Target())
	assert.Equal(t, model.DifficultyHard, h.s.Difficulty())

	// Stale text arriving after the newer session has started typing.
	h.s.Type('s')
	assert.False(t, h.s.Arm(token1, "first"))
	assert.Equal(t, "second", h.s.Target())
	assert.Equal(t, "s", h.s.Input())
}

func TestStartWithProviderRace(t *testing.T) {
	h := newHarness(t)
	provider := &blockingProvider{calls: make(chan model.Difficulty), texts: make(chan string)}

	first := make(chan bool)
	go func() {
		first <- h.s.Start(context.Background(), provider, model.DifficultyEasy)
	}()
	require.Equal(t, model.DifficultyEasy, <-provider.calls)

	second := make(chan bool)
	go func() {
		second <- h.s.Start(context.Background(), provider, model.DifficultyCode)
	}()
	require.Equal(t, model.DifficultyCode, <-provider.calls)

	// The first request was cancelled by the second Begin and must not apply.
	assert.False(t, <-first)
	provider.texts <- "fmt.Println(1)"
	assert.True(t, <-second)

	assert.Equal(t, "fmt.Println(1)", h.s.Target())
	assert.Equal(t, PhaseArmed, h.s.Phase())
}

func TestRecorderErrorIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.rec.err = errors.New("disk full")
	h.s.StartText(model.DifficultyEasy, "a")
	h.s.Type('a')

	assert.Equal(t, PhaseFinished, h.s.Phase())
	_, ok := h.s.Result()
	assert.True(t, ok)
	assert.Len(t, h.rec.recorded(), 1)
}

func TestStatsSnapshotDoesNotAliasTally(t *testing.T) {
	h := newHarness(t)
	h.s.StartText(model.DifficultyEasy, "abc")
	h.s.Type('x')

	snap := h.s.Stats()
	snap.MissedKeys["a"] = 99
	assert.Equal(t, map[string]int{"a": 1}, h.s.Tally().MissedKeys)
}

func TestDefaultIDIsUUIDv7(t *testing.T) {
	s := New(nil, WithScheduler(&fakeScheduler{}))
	s.StartText(model.DifficultyEasy, "a")
	s.Type('a')
	item, ok := s.Result()
	require.True(t, ok)
	assert.Len(t, item.ID, 36)
	assert.Equal(t, byte('7'), item.ID[14])
}

func TestTickerSchedulerStops(t *testing.T) {
	var mu sync.Mutex
	count := 0
	stop := TickerScheduler{}.Every(time.Millisecond, func() {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count > 0
	}, time.Second, time.Millisecond)
	stop()
	stop()
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "running", PhaseRunning.String())
	assert.Equal(t, "unknown", Phase(42).String())
	assert.True(t, PhaseArmed.AcceptsInput())
	assert.False(t, PhaseFinished.AcceptsInput())
}

func TestConcurrentTypeTalliesEveryRune(t *testing.T) {
	const workers, perWorker = 8, 500
	h := newHarness(t)
	target := make([]rune, workers*perWorker*2)
	for i := range target {
		target[i] = 'a'
	}
	h.s.StartText(model.DifficultyEasy, string(target))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				h.s.Type('a')
			}
		}()
	}
	wg.Wait()

	tally := h.s.Tally()
	assert.Equal(t, workers*perWorker, tally.Typed())
	assert.Equal(t, workers*perWorker, tally.Correct)
	assert.Len(t, []rune(h.s.Input()), workers*perWorker)
	assert.Equal(t, PhaseRunning, h.s.Phase())
}
