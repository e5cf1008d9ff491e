package interview

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lshigami/PrepDeck/internal/metrics"
	"github.com/rs/zerolog/log"
)

// DefaultFeedback is recorded when the scorer succeeds but returns no text.
const DefaultFeedback = "Good answer"

// Feedback is the scorer's verdict on one answer.
type Feedback struct {
	Text  string
	Score float64
}

// Scorer produces feedback for one answered question.
type Scorer interface {
	ScoreAnswer(ctx context.Context, question, answer string) (Feedback, error)
}

// Observer receives progress notifications. Calls are made without the sequencer lock
// held and may arrive from different goroutines.
type Observer interface {
	StateChanged(turn int, state TurnState)
	InterimTranscript(text string)
	Countdown(remaining int)
	TurnRecorded(index int, turn Turn)
	SessionCompleted(report Report, err error)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) StateChanged(int, TurnState)    {}
func (NopObserver) InterimTranscript(string)       {}
func (NopObserver) Countdown(int)                  {}
func (NopObserver) TurnRecorded(int, Turn)         {}
func (NopObserver) SessionCompleted(Report, error) {}

type Options struct {
	// TurnTicks is how many ticks a respondent has to answer. Default 50.
	TurnTicks int
	// TickInterval is the countdown resolution. Default one second.
	TickInterval time.Duration
	// FeedbackPause is how long feedback is shown before the next question. Zero skips it.
	FeedbackPause time.Duration
	// RemoteTimeout bounds each scorer and report store call. Zero means no bound.
	RemoteTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		TurnTicks:     50,
		TickInterval:  time.Second,
		FeedbackPause: 2 * time.Second,
		RemoteTimeout: 30 * time.Second,
	}
}

// Snapshot is a point-in-time view of a running session.
type Snapshot struct {
	SessionID  uint      `json:"session_id"`
	UserID     uint      `json:"user_id"`
	Category   string    `json:"category"`
	Status     Status    `json:"status"`
	State      TurnState `json:"state"`
	TurnIndex  int       `json:"turn_index"`
	TotalTurns int       `json:"total_turns"`
	Recorded   int       `json:"recorded"`
	Remaining  int       `json:"remaining"`
	Interim    string    `json:"interim,omitempty"`
	Cancelled  bool      `json:"cancelled"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Sequencer drives one interview session turn by turn. Only one turn is ever active and
// each turn ends on the first of a final transcript or timer expiry; every signal handler
// checks the current TurnState under the lock, so late or duplicate signals are no-ops.
type Sequencer struct {
	out      SpeechOutput
	in       SpeechInput
	scorer   Scorer
	builder  *ReportBuilder
	observer Observer
	timer    *Timer
	opts     Options

	mu        sync.Mutex
	session   Session
	state     TurnState
	turns     []Turn
	interim   string
	cancelled bool
	remoteCtx context.Context

	cancelCh chan struct{}
	done     chan struct{}
	doneOnce sync.Once
}

func NewSequencer(out SpeechOutput, in SpeechInput, scorer Scorer, store ReportStore, observer Observer, opts Options) *Sequencer {
	defaults := DefaultOptions()
	if opts.TurnTicks <= 0 {
		opts.TurnTicks = defaults.TurnTicks
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaults.TickInterval
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Sequencer{
		out:       out,
		in:        in,
		scorer:    scorer,
		builder:   NewReportBuilder(store),
		observer:  observer,
		timer:     NewTimer(opts.TurnTicks, opts.TickInterval),
		opts:      opts,
		session:   Session{Status: StatusCollectingStartInput},
		state:     StateIdle,
		remoteCtx: context.Background(),
		cancelCh:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start validates the session and begins its first turn. On error nothing changes.
// Remote calls made later run on a context detached from ctx's cancellation.
func (s *Sequencer) Start(ctx context.Context, session Session) error {
	if strings.TrimSpace(session.Category) == "" || session.UserID == 0 {
		return ErrInputMissing
	}
	if len(session.Questions) == 0 {
		return ErrInvalidSequence
	}

	s.mu.Lock()
	if s.session.Status != StatusCollectingStartInput || s.cancelled {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	questions := make([]string, len(session.Questions))
	copy(questions, session.Questions)
	session.Questions = questions
	session.TurnIndex = 0
	session.Status = StatusInProgress
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}
	s.session = session
	s.remoteCtx = context.WithoutCancel(ctx)
	s.mu.Unlock()

	metrics.RecordSessionStarted()
	log.Info().Uint("sessionID", session.ID).Uint("userID", session.UserID).Str("category", session.Category).
		Int("questions", len(questions)).Msg("Interview session started")

	s.beginTurn(0)
	return nil
}

// OnFinalTranscript ends the current turn with text as the answer. It returns false, and
// does nothing, unless the sequencer is listening for an answer.
func (s *Sequencer) OnFinalTranscript(text string) bool {
	return s.acceptAnswer(s.TurnIndex(), text)
}

// OnTimerExpired ends the current turn with no answer. Same gating as OnFinalTranscript.
func (s *Sequencer) OnTimerExpired() bool {
	return s.acceptAnswer(s.TurnIndex(), NoResponse)
}

// Cancel abandons the session: the timer stops and the capture device is released.
// In-flight remote calls complete and their results are discarded.
func (s *Sequencer) Cancel() {
	s.mu.Lock()
	if s.cancelled || s.session.Status == StatusCompleted {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	started := s.session.Status == StatusInProgress
	sessionID := s.session.ID
	s.timer.Stop()
	s.interim = ""
	close(s.cancelCh)
	s.mu.Unlock()

	if err := s.in.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to release speech input on cancel")
	}
	if started {
		metrics.RecordSessionEnded("cancelled")
		log.Info().Uint("sessionID", sessionID).Msg("Interview session cancelled")
	}
	s.doneOnce.Do(func() { close(s.done) })
}

// RetryPersist re-attempts persisting the report of a completed session.
func (s *Sequencer) RetryPersist(ctx context.Context) error {
	if s.Status() != StatusCompleted {
		return ErrNotCompleted
	}
	return s.builder.Persist(ctx)
}

// Done is closed when the session completes or is cancelled.
func (s *Sequencer) Done() <-chan struct{} {
	return s.done
}

func (s *Sequencer) State() TurnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Sequencer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Status
}

func (s *Sequencer) TurnIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.TurnIndex
}

// Turns returns a copy of the recorded turn log.
func (s *Sequencer) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Report returns the final report once the session has completed.
func (s *Sequencer) Report() (Report, bool) {
	r, built, _ := s.builder.Report()
	return r, built
}

// Unpersisted reports whether the session completed but its report has not been stored.
func (s *Sequencer) Unpersisted() bool {
	_, built, persisted := s.builder.Report()
	return built && !persisted
}

func (s *Sequencer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		SessionID:  s.session.ID,
		UserID:     s.session.UserID,
		Category:   s.session.Category,
		Status:     s.session.Status,
		State:      s.state,
		TurnIndex:  s.session.TurnIndex,
		TotalTurns: len(s.session.Questions),
		Recorded:   len(s.turns),
		Interim:    s.interim,
		Cancelled:  s.cancelled,
		UpdatedAt:  time.Now(),
	}
	if s.state == StateListeningForAnswer {
		snap.Remaining = s.timer.Remaining()
	}
	return snap
}

// active reports whether turn is the current turn and the session is still running.
// Callers hold s.mu.
func (s *Sequencer) active(turn int, state TurnState) bool {
	return !s.cancelled && s.state == state && s.session.TurnIndex == turn
}

func (s *Sequencer) beginTurn(turn int) {
	s.mu.Lock()
	if s.cancelled || s.session.TurnIndex != turn {
		s.mu.Unlock()
		return
	}
	question := s.session.Questions[turn]
	s.state = StateSpeakingQuestion
	s.mu.Unlock()

	s.observer.StateChanged(turn, StateSpeakingQuestion)
	s.out.Speak(s.remoteCtx, question, func() { s.questionSpoken(turn) })
}

func (s *Sequencer) questionSpoken(turn int) {
	s.mu.Lock()
	if !s.active(turn, StateSpeakingQuestion) {
		s.mu.Unlock()
		return
	}
	s.state = StateListeningForAnswer
	s.interim = ""
	s.mu.Unlock()

	s.observer.StateChanged(turn, StateListeningForAnswer)

	if err := s.in.Start(func(t Transcript) { s.transcript(turn, t) }); err != nil {
		log.Warn().Err(err).Int("turn", turn).Msg("Speech input unavailable, turn will end on timeout")
	}

	s.mu.Lock()
	if !s.active(turn, StateListeningForAnswer) {
		s.mu.Unlock()
		return
	}
	s.timer.Arm(
		func(remaining int) { s.countdown(turn, remaining) },
		func() { s.expired(turn) },
	)
	s.mu.Unlock()
	s.observer.Countdown(s.opts.TurnTicks)
}

func (s *Sequencer) transcript(turn int, t Transcript) {
	if t.Final {
		s.acceptAnswer(turn, t.Text)
		return
	}
	s.mu.Lock()
	if !s.active(turn, StateListeningForAnswer) {
		s.mu.Unlock()
		return
	}
	s.interim = t.Text
	s.mu.Unlock()
	s.observer.InterimTranscript(t.Text)
}

func (s *Sequencer) countdown(turn, remaining int) {
	s.mu.Lock()
	ok := s.active(turn, StateListeningForAnswer)
	s.mu.Unlock()
	if ok {
		s.observer.Countdown(remaining)
	}
}

func (s *Sequencer) expired(turn int) {
	if s.acceptAnswer(turn, NoResponse) {
		log.Debug().Int("turn", turn).Msg("Answer window expired")
	}
}

// acceptAnswer is the single exit from listening-for-answer. Whichever signal gets here
// first flips the state; every later one sees a different state and returns false.
func (s *Sequencer) acceptAnswer(turn int, text string) bool {
	answer := strings.TrimSpace(text)
	if answer == "" {
		answer = NoResponse
	}

	s.mu.Lock()
	if !s.active(turn, StateListeningForAnswer) {
		s.mu.Unlock()
		return false
	}
	s.state = StateScoringAnswer
	s.interim = ""
	s.timer.Stop()
	question := s.session.Questions[turn]
	s.mu.Unlock()

	s.in.Stop()
	s.observer.InterimTranscript("")
	s.observer.StateChanged(turn, StateScoringAnswer)

	s.record(turn, s.score(question, answer))
	return true
}

func (s *Sequencer) score(question, answer string) Turn {
	rec := Turn{Question: question, Answer: answer}
	if answer == NoResponse {
		rec.Feedback = NoResponseFeedback
		metrics.RecordTurn("no_response")
		return rec
	}

	ctx := s.remoteCtx
	if s.opts.RemoteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RemoteTimeout)
		defer cancel()
	}

	fb, err := s.scorer.ScoreAnswer(ctx, question, answer)
	if err != nil {
		log.Warn().Err(err).Uint("sessionID", s.session.ID).Msg("Scoring failed, recording turn without feedback")
		rec.Feedback = FeedbackUnavailable
		metrics.RecordTurn("scoring_failed")
		return rec
	}
	rec.Feedback = strings.TrimSpace(fb.Text)
	if rec.Feedback == "" {
		rec.Feedback = DefaultFeedback
	}
	rec.Score = fb.Score
	metrics.RecordTurn("answered")
	return rec
}

func (s *Sequencer) record(turn int, rec Turn) {
	s.mu.Lock()
	if !s.active(turn, StateScoringAnswer) {
		s.mu.Unlock()
		return
	}
	s.turns = append(s.turns, rec)
	s.state = StateShowingFeedback
	s.mu.Unlock()

	s.observer.TurnRecorded(turn, rec)
	s.observer.StateChanged(turn, StateShowingFeedback)

	if !s.pause() {
		return
	}
	s.advance(turn)
}

// pause holds the feedback on screen. It returns false if the session was cancelled.
func (s *Sequencer) pause() bool {
	if s.opts.FeedbackPause <= 0 {
		select {
		case <-s.cancelCh:
			return false
		default:
			return true
		}
	}
	t := time.NewTimer(s.opts.FeedbackPause)
	defer t.Stop()
	select {
	case <-s.cancelCh:
		return false
	case <-t.C:
		return true
	}
}

func (s *Sequencer) advance(turn int) {
	s.mu.Lock()
	if !s.active(turn, StateShowingFeedback) {
		s.mu.Unlock()
		return
	}
	next := turn + 1
	if next < len(s.session.Questions) {
		s.session.TurnIndex = next
		s.mu.Unlock()
		s.beginTurn(next)
		return
	}

	s.session.TurnIndex = len(s.session.Questions)
	s.session.Status = StatusCompleted
	s.state = StateSessionComplete
	session := s.session
	turns := make([]Turn, len(s.turns))
	copy(turns, s.turns)
	s.mu.Unlock()

	s.finalize(session, turns)
}

func (s *Sequencer) finalize(session Session, turns []Turn) {
	if err := s.in.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to release speech input")
	}

	report := s.builder.Build(session, turns)

	ctx := s.remoteCtx
	if s.opts.RemoteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RemoteTimeout)
		defer cancel()
	}
	err := s.builder.Persist(ctx)
	if err != nil {
		log.Error().Err(err).Uint("sessionID", session.ID).Msg("Failed to persist interview report")
		metrics.RecordPersistFailure()
	}

	metrics.RecordSessionEnded("completed")
	log.Info().Uint("sessionID", session.ID).Int("turns", len(turns)).Float64("totalScore", report.TotalScore).
		Msg("Interview session completed")

	s.observer.StateChanged(session.TurnIndex, StateSessionComplete)
	s.observer.SessionCompleted(report, err)
	s.doneOnce.Do(func() { close(s.done) })
}
