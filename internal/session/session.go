// Package session runs one learner's pass through a homework's activities:
// prior-submission check, ordered answering, and a single final submit.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/homeplay/internal/activity"
	"github.com/abhisek/homeplay/internal/gateway"
)

var (
	// ErrNotStarted is returned by Complete before Start has resolved the
	// prior-submission check.
	ErrNotStarted = errors.New("session not started")

	// ErrNotFinished is returned by Complete while activities remain.
	ErrNotFinished = errors.New("session has unanswered activities")

	// ErrClosed is returned once the session's owner has called Close.
	ErrClosed = errors.New("session closed")
)

// NotificationSink hears about submissions that need human follow-up.
type NotificationSink interface {
	SubmissionFailed(ctx context.Context, f Failure)
}

// Failure describes a result the backend did not accept.
type Failure struct {
	HomeworkID string
	ChildID    string
	Result     gateway.Result
	Err        error
}

type nopSink struct{}

func (nopSink) SubmissionFailed(context.Context, Failure) {}

// Options configures a Session.
type Options struct {
	// Source builds the activity list. Defaults to a clock-seeded generator.
	Source activity.Source

	// Gateway is the submission backend. Required.
	Gateway gateway.Gateway

	Notifier NotificationSink
	Logger   *zap.Logger

	// AdvanceDelay is how long an answered activity stays current before
	// the session moves on. Zero advances immediately.
	AdvanceDelay time.Duration

	// AutoSubmit starts the final submit as soon as the last activity
	// has been advanced past.
	AutoSubmit bool

	// OnComplete is called once after the submit attempt settles, unless
	// the session was closed first.
	OnComplete func(Outcome)
}

// AnswerOutcome reports what SubmitAnswer did with an answer.
type AnswerOutcome struct {
	Accepted bool
	Correct  bool
	Last     bool // the answered activity was the final one
}

// Snapshot is a read-only copy of session state.
type Snapshot struct {
	HomeworkID     string
	ChildID        string
	Phase          Phase
	CurrentIndex   int
	Total          int
	Score          int
	Answers        activity.AnswerRecord
	AdvancePending bool
	Record         *gateway.Record
	Err            error
}

// Session is the state machine for one (homework, child) pair. It is safe
// for concurrent use.
type Session struct {
	hw         activity.Homework
	childID    string
	activities []activity.Activity

	gw         gateway.Gateway
	notifier   NotificationSink
	logger     *zap.Logger
	delay      time.Duration
	autoSubmit bool
	onComplete func(Outcome)

	mu      sync.Mutex
	started bool
	closed  bool
	phase   Phase
	index   int
	score   int
	answers activity.AnswerRecord
	timer   *time.Timer
	pending bool
	settled chan struct{} // open while an advance is pending
	record  *gateway.Record
	outcome *Outcome
	err     error
	done    chan struct{} // set when the submit starts, closed when it settles
}

// New builds the activity list for hw and returns a session waiting for
// Start.
func New(hw activity.Homework, childID string, opts Options) (*Session, error) {
	if opts.Gateway == nil {
		return nil, errors.New("session: gateway is required")
	}
	if childID == "" {
		return nil, errors.New("session: child id is required")
	}
	if opts.Source == nil {
		opts.Source = activity.NewDefault()
	}
	if opts.Notifier == nil {
		opts.Notifier = nopSink{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.AdvanceDelay < 0 {
		opts.AdvanceDelay = 0
	}

	return &Session{
		hw:         hw,
		childID:    childID,
		activities: opts.Source.Generate(hw),
		gw:         opts.Gateway,
		notifier:   opts.Notifier,
		logger: opts.Logger.With(
			zap.String("homework_id", hw.ID),
			zap.String("child_id", childID)),
		delay:      opts.AdvanceDelay,
		autoSubmit: opts.AutoSubmit,
		onComplete: opts.OnComplete,
		phase:      PhaseCheckingPrior,
		answers:    activity.AnswerRecord{},
	}, nil
}

// Start resolves whether the child already submitted this homework. A
// failed lookup is logged and treated as "no prior submission". Calls
// after the first are no-ops.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	rec, err := s.gw.FindExistingSubmission(ctx, s.hw.ID, s.childID)
	if err != nil {
		s.logger.Warn("prior submission lookup failed, continuing without it", zap.Error(err))
		rec = nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	auto := false
	switch {
	case rec != nil:
		out := outcomeFromRecord(rec, len(s.activities))
		s.phase = PhaseLockedFromPrior
		s.score = rec.Score
		s.answers = rec.Answers.Copy()
		s.record = rec
		s.outcome = &out
		s.logger.Info("session locked by prior submission",
			zap.String("submission_id", rec.ID),
			zap.Int("score", rec.Score))
	case len(s.activities) == 0:
		s.phase = PhaseCompleted
		auto = s.autoSubmit
		s.logger.Warn("no activities generated, completing empty session")
	default:
		s.phase = PhaseInProgress
		s.index = 0
		s.score = 0
		s.answers = activity.AnswerRecord{}
	}
	s.mu.Unlock()

	if auto {
		go s.autoComplete()
	}
	return nil
}

// SubmitAnswer records ans for the current activity. Empty answers, and
// answers for an activity that is already answered or is not the current
// one, are ignored and leave the session unchanged.
func (s *Session) SubmitAnswer(activityID int, ans activity.Answer) AnswerOutcome {
	if ans.IsZero() {
		return AnswerOutcome{}
	}
	s.mu.Lock()
	if s.phase.Locked() || s.phase == PhaseCheckingPrior || s.pending || s.index >= len(s.activities) {
		s.mu.Unlock()
		return AnswerOutcome{}
	}
	if _, done := s.answers[activityID]; done {
		s.mu.Unlock()
		return AnswerOutcome{}
	}
	cur := s.activities[s.index]
	if cur.ID != activityID {
		s.logger.Debug("ignoring out-of-order answer",
			zap.Int("activity_id", activityID),
			zap.Int("current_id", cur.ID))
		s.mu.Unlock()
		return AnswerOutcome{}
	}

	s.answers[activityID] = ans
	correct := ans == cur.CorrectAnswer
	if correct {
		s.score++
	}
	out := AnswerOutcome{
		Accepted: true,
		Correct:  correct,
		Last:     s.index+1 == len(s.activities),
	}

	auto := false
	s.pending = true
	if s.delay == 0 {
		auto = s.advanceLocked()
	} else {
		s.settled = make(chan struct{})
		s.timer = time.AfterFunc(s.delay, s.advance)
	}
	s.mu.Unlock()

	if auto {
		go s.autoComplete()
	}
	return out
}

func (s *Session) advance() {
	s.mu.Lock()
	if s.closed || s.phase != PhaseInProgress || !s.pending {
		s.mu.Unlock()
		return
	}
	auto := s.advanceLocked()
	s.mu.Unlock()

	if auto {
		s.autoComplete()
	}
}

// advanceLocked moves past the answered activity. Reports whether the
// caller should start the automatic submit.
func (s *Session) advanceLocked() bool {
	s.pending = false
	s.timer = nil
	s.releaseSettled()
	if s.index+1 >= len(s.activities) {
		s.phase = PhaseCompleted
		return s.autoSubmit
	}
	s.index++
	return false
}

func (s *Session) autoComplete() {
	if _, err := s.Complete(context.Background()); err != nil && !errors.Is(err, ErrClosed) {
		s.logger.Error("automatic submit failed", zap.Error(err))
	}
}

// Complete submits the finished session. The backend is called at most
// once per session: concurrent callers share the in-flight call and later
// callers get the settled outcome. A failed submit still locks the session;
// the outcome is returned alongside the error so the caller can show it.
func (s *Session) Complete(ctx context.Context) (*Outcome, error) {
	s.mu.Lock()
	if s.closed && s.done == nil {
		s.mu.Unlock()
		return nil, ErrClosed
	}

	switch s.phase {
	case PhaseCheckingPrior:
		s.mu.Unlock()
		return nil, ErrNotStarted
	case PhaseInProgress:
		s.mu.Unlock()
		return nil, ErrNotFinished
	case PhaseLockedFromPrior:
		out := s.outcome.clone()
		s.mu.Unlock()
		return &out, nil
	}

	if s.done != nil {
		done := s.done
		s.mu.Unlock()
		return s.wait(ctx, done)
	}

	s.phase = PhaseSubmitting
	s.done = make(chan struct{})
	done := s.done
	result := BuildResult(s.score, len(s.activities), s.answers)
	s.mu.Unlock()

	// The backend write must finish even if the caller goes away.
	callCtx := context.WithoutCancel(ctx)
	rec, err := s.gw.SubmitResult(callCtx, s.hw.ID, s.childID, result)

	out := Outcome{Result: result, Record: rec, Phase: PhaseSubmitted}
	if err != nil {
		out.Phase = PhaseSubmitFailed
		out.Record = nil
		err = fmt.Errorf("submit result: %w", err)
	}

	s.mu.Lock()
	closed := s.closed
	if !closed {
		s.phase = out.Phase
		s.record = out.Record
		s.err = err
		stored := out.clone()
		s.outcome = &stored
	}
	close(done)
	onComplete := s.onComplete
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("submission failed, session stays locked",
			zap.Int("score", result.Score),
			zap.Int("total", result.TotalQuestions),
			zap.Error(err))
		s.notifier.SubmissionFailed(callCtx, Failure{
			HomeworkID: s.hw.ID,
			ChildID:    s.childID,
			Result:     result,
			Err:        err,
		})
	} else {
		s.logger.Info("submission confirmed",
			zap.String("submission_id", recordID(rec)),
			zap.Int("score", result.Score),
			zap.Int("percentage", result.Percentage))
	}

	if !closed && onComplete != nil {
		onComplete(out.clone())
	}
	return &out, err
}

func (s *Session) wait(ctx context.Context, done <-chan struct{}) (*Outcome, error) {
	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return nil, ErrClosed
	}
	out := s.outcome.clone()
	return &out, s.err
}

// Close detaches the session from its owner. Pending advancement stops and
// the result of an in-flight submit is no longer applied locally.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.releaseSettled()
}

// closedChan is returned by Advanced when nothing is pending.
var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// Advanced returns a channel that is closed once the pending advance has
// happened or the session is closed. With no advance pending the channel
// is already closed.
func (s *Session) Advanced() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settled == nil {
		return closedChan
	}
	return s.settled
}

func (s *Session) releaseSettled() {
	if s.settled != nil {
		close(s.settled)
		s.settled = nil
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		HomeworkID:     s.hw.ID,
		ChildID:        s.childID,
		Phase:          s.phase,
		CurrentIndex:   s.index,
		Total:          len(s.activities),
		Score:          s.score,
		Answers:        s.answers.Copy(),
		AdvancePending: s.pending,
		Err:            s.err,
	}
	if s.record != nil {
		r := *s.record
		r.Answers = r.Answers.Copy()
		snap.Record = &r
	}
	return snap
}

// Activities returns a copy of the session's activity list.
func (s *Session) Activities() []activity.Activity {
	return activity.Clone(s.activities)
}

// Current returns the activity awaiting an answer. The second result is
// false unless the session is in progress and not between activities.
func (s *Session) Current() (activity.Activity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInProgress || s.pending || s.index >= len(s.activities) {
		return activity.Activity{}, false
	}
	return activity.Clone(s.activities[s.index : s.index+1])[0], true
}

func recordID(rec *gateway.Record) string {
	if rec == nil {
		return ""
	}
	return rec.ID
}
