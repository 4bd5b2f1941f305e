// Package session runs a training attempt from table draw to scored result.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/wordtally/internal/generator"
	"github.com/verte-zerg/wordtally/internal/model"
	"github.com/verte-zerg/wordtally/internal/result"
	"github.com/verte-zerg/wordtally/internal/timer"
)

const defaultSinkTimeout = 10 * time.Second

// Status is the lifecycle state of an Engine.
type Status int

// Engine states.
const (
	Idle Status = iota
	Running
	Submitted
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Submitted:
		return "submitted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Sink receives records of submitted sessions.
type Sink interface {
	SaveRecord(ctx context.Context, rec model.Record) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock replaces time.Now for per-question timing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithTimer replaces the session timer.
func WithTimer(t *timer.Timer) Option {
	return func(e *Engine) {
		if t != nil {
			e.timer = t
		}
	}
}

// WithSinkTimeout bounds each record delivery.
func WithSinkTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.sinkTimeout = d
		}
	}
}

// Engine drives one training session at a time. It is not safe for concurrent use; the
// timer goroutine only touches its own counter.
type Engine struct {
	gen         *generator.Generator
	timer       *timer.Timer
	logger      *slog.Logger
	now         func() time.Time
	sinkTimeout time.Duration

	status     Status
	difficulty model.Difficulty
	table      []string
	questions  []model.Question
	answers    []int
	times      []time.Duration
	marks      MarkSet
	current    int
	enteredAt  time.Time
	total      int
	result     *model.Result

	pending sync.WaitGroup
}

// New returns an idle Engine drawing from gen.
func New(gen *generator.Generator, opts ...Option) *Engine {
	e := &Engine{
		gen:         gen,
		timer:       timer.New(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
		sinkTimeout: defaultSinkTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) invalid(op string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidState, op, e.status)
}

// Start draws a table, generates questions and starts the timer. Generation failures leave
// the engine untouched.
func (e *Engine) Start(difficulty model.Difficulty) error {
	if e.status == Running {
		return e.invalid("start")
	}
	table, err := e.gen.Table(model.TableSize)
	if err != nil {
		return fmt.Errorf("failed to draw table: %w", err)
	}
	questions, err := e.gen.Generate(table, difficulty)
	if err != nil {
		return fmt.Errorf("failed to generate questions: %w", err)
	}

	e.timer.Reset()
	e.difficulty = difficulty
	e.table = table
	e.questions = questions
	e.answers = make([]int, model.QuestionCount)
	for i := range e.answers {
		e.answers[i] = model.Unanswered
	}
	e.times = make([]time.Duration, model.QuestionCount)
	e.marks.Clear()
	e.current = 1
	e.enteredAt = e.now()
	e.total = 0
	e.result = nil
	e.status = Running
	e.timer.Start()
	return nil
}

// NavigateTo moves to question n (1-indexed). Out-of-range n is ignored.
func (e *Engine) NavigateTo(n int) error {
	if e.status != Running {
		return e.invalid("navigate")
	}
	if n < 1 || n > model.QuestionCount || n == e.current {
		return nil
	}
	e.closeTimeSlice()
	e.current = n
	return nil
}

// Prev moves to the previous question, staying put on the first.
func (e *Engine) Prev() error {
	if e.status != Running {
		return e.invalid("prev")
	}
	if e.current > 1 {
		return e.NavigateTo(e.current - 1)
	}
	return nil
}

// Next moves to the next question, staying put on the last.
func (e *Engine) Next() error {
	if e.status != Running {
		return e.invalid("next")
	}
	if e.current < model.QuestionCount {
		return e.NavigateTo(e.current + 1)
	}
	return nil
}

// SelectAnswer records value for the question at 0-based index, replacing any earlier
// answer.
func (e *Engine) SelectAnswer(index, value int) error {
	if e.status != Running {
		return e.invalid("select answer")
	}
	if index < 0 || index >= model.QuestionCount {
		return fmt.Errorf("%w: question index %d", ErrOutOfRange, index)
	}
	if value < 0 || value > model.MaxCorrect {
		return fmt.Errorf("%w: answer %d", ErrOutOfRange, value)
	}
	e.answers[index] = value
	return nil
}

// ClearAnswer marks the question at 0-based index as unanswered.
func (e *Engine) ClearAnswer(index int) error {
	if e.status != Running {
		return e.invalid("clear answer")
	}
	if index < 0 || index >= model.QuestionCount {
		return fmt.Errorf("%w: question index %d", ErrOutOfRange, index)
	}
	e.answers[index] = model.Unanswered
	return nil
}

// ToggleMark flips the review flag of question n (1-indexed) and reports the new state.
func (e *Engine) ToggleMark(n int) (bool, error) {
	if e.status != Running {
		return false, e.invalid("toggle mark")
	}
	if n < 1 || n > model.QuestionCount {
		return false, fmt.Errorf("%w: question %d", ErrOutOfRange, n)
	}
	return e.marks.Toggle(n), nil
}

// Submit stops the timer and scores the session. When sink is non-nil the record is
// delivered in the background; delivery failures are logged and do not affect the
// returned result.
func (e *Engine) Submit(userID string, sink Sink) (model.Result, error) {
	if e.status != Running {
		return model.Result{}, e.invalid("submit")
	}
	e.timer.Stop()
	e.closeTimeSlice()
	e.total = int(e.timer.Seconds())
	res := result.Calculate(e.questions, e.answers, e.times, e.total)
	e.result = &res
	e.status = Submitted

	if sink != nil {
		e.deliver(sink, e.record(userID, res))
	}
	return res, nil
}

func (e *Engine) record(userID string, res model.Result) model.Record {
	return model.Record{
		ID:           uuid.NewString(),
		UserID:       userID,
		Difficulty:   e.difficulty,
		TableWords:   append([]string(nil), e.table...),
		Accuracy:     res.Accuracy,
		CorrectCount: res.CorrectCount,
		TotalTime:    e.total,
		AvgTime:      res.AvgTime,
		Details:      append([]model.Detail(nil), res.Details...),
		CreatedAt:    e.now(),
	}
}

func (e *Engine) deliver(sink Sink, rec model.Record) {
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), e.sinkTimeout)
		defer cancel()
		if err := sink.SaveRecord(ctx, rec); err != nil {
			e.logger.Error("failed to save training record", "record_id", rec.ID, "user_id", rec.UserID, "err", err)
			return
		}
		e.logger.Debug("saved training record", "record_id", rec.ID, "user_id", rec.UserID)
	}()
}

// Wait blocks until background record deliveries have finished.
func (e *Engine) Wait() {
	e.pending.Wait()
}

// Reset stops the timer and discards the session. It is valid in every state.
func (e *Engine) Reset() {
	e.timer.Reset()
	e.status = Idle
	e.difficulty = ""
	e.table = nil
	e.questions = nil
	e.answers = nil
	e.times = nil
	e.marks.Clear()
	e.current = 0
	e.enteredAt = time.Time{}
	e.total = 0
	e.result = nil
}

func (e *Engine) closeTimeSlice() {
	now := e.now()
	if e.current >= 1 && e.current <= len(e.times) {
		e.times[e.current-1] += now.Sub(e.enteredAt)
	}
	e.enteredAt = now
}

// Status returns the lifecycle state.
func (e *Engine) Status() Status {
	return e.status
}

// Difficulty returns the difficulty of the current session.
func (e *Engine) Difficulty() model.Difficulty {
	return e.difficulty
}

// TableWords returns the session table.
func (e *Engine) TableWords() []string {
	return append([]string(nil), e.table...)
}

// Questions returns the generated questions.
func (e *Engine) Questions() []model.Question {
	return append([]model.Question(nil), e.questions...)
}

// Current returns the 1-indexed current question, or 0 when idle.
func (e *Engine) Current() int {
	return e.current
}

// Answer returns the answer of the question at 0-based index, or Unanswered.
func (e *Engine) Answer(index int) int {
	if index < 0 || index >= len(e.answers) {
		return model.Unanswered
	}
	return e.answers[index]
}

// Answers returns every answer in question order.
func (e *Engine) Answers() []int {
	return append([]int(nil), e.answers...)
}

// AnsweredCount returns how many questions have an answer.
func (e *Engine) AnsweredCount() int {
	n := 0
	for _, a := range e.answers {
		if a != model.Unanswered {
			n++
		}
	}
	return n
}

// Marked reports whether question n (1-indexed) is flagged.
func (e *Engine) Marked(n int) bool {
	return e.marks.Has(n)
}

// MarkedQuestions returns the flagged questions in ascending order.
func (e *Engine) MarkedQuestions() []int {
	return e.marks.Sorted()
}

// TotalSeconds returns the elapsed session time.
func (e *Engine) TotalSeconds() int {
	if e.status == Running {
		return int(e.timer.Seconds())
	}
	return e.total
}

// QuestionTimes returns the time spent on each question so far.
func (e *Engine) QuestionTimes() []time.Duration {
	out := append([]time.Duration(nil), e.times...)
	if e.status == Running && e.current >= 1 && e.current <= len(out) {
		out[e.current-1] += e.now().Sub(e.enteredAt)
	}
	return out
}

// Result returns the scored result once submitted.
func (e *Engine) Result() (model.Result, bool) {
	if e.result == nil {
		return model.Result{}, false
	}
	return *e.result, true
}
