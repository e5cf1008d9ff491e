package interview

import (
	"context"
	"errors"
	"sync"
)

type fakeSynth struct {
	mu          sync.Mutex
	unavailable bool
	err         error
	spoken      []string
}

func (f *fakeSynth) Available() bool { return !f.unavailable }

func (f *fakeSynth) Say(_ context.Context, text string, onEnd func()) error {
	f.mu.Lock()
	f.spoken = append(f.spoken, text)
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return err
	}
	onEnd()
	return nil
}

func (f *fakeSynth) Spoken() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}

// fakeStream keeps delivering results after Stop, like a platform whose cancellation
// is unreliable.
type fakeStream struct {
	rec     *fakeRecognizer
	handler TranscriptHandler
	stopped bool
}

func (s *fakeStream) Stop() {
	s.rec.mu.Lock()
	s.stopped = true
	s.rec.mu.Unlock()
}

func (s *fakeStream) interim(text string) { s.handler(Transcript{Text: text}) }
func (s *fakeStream) final(text string)   { s.handler(Transcript{Text: text, Final: true}) }

type fakeRecognizer struct {
	mu          sync.Mutex
	unavailable bool
	streams     []*fakeStream
	released    int
}

func (r *fakeRecognizer) Available() bool { return !r.unavailable }

func (r *fakeRecognizer) Open(onResult TranscriptHandler) (RecognitionStream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &fakeStream{rec: r, handler: onResult}
	r.streams = append(r.streams, s)
	return s, nil
}

func (r *fakeRecognizer) Release() error {
	r.mu.Lock()
	r.released++
	r.mu.Unlock()
	return nil
}

func (r *fakeRecognizer) latest() *fakeStream {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.streams) == 0 {
		return nil
	}
	return r.streams[len(r.streams)-1]
}

func (r *fakeRecognizer) activeStreams() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.streams {
		if !s.stopped {
			n++
		}
	}
	return n
}

func (r *fakeRecognizer) releasedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

type fakeScorer struct {
	mu    sync.Mutex
	calls []string
	err   error
	block chan struct{}
}

func (f *fakeScorer) ScoreAnswer(ctx context.Context, question, answer string) (Feedback, error) {
	f.mu.Lock()
	f.calls = append(f.calls, question)
	block, err := f.block, f.err
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if err != nil {
		return Feedback{}, err
	}
	if err := ctx.Err(); err != nil {
		return Feedback{}, err
	}
	return Feedback{Text: "Solid: " + answer, Score: 8}, nil
}

func (f *fakeScorer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeStore struct {
	mu      sync.Mutex
	reports []Report
	failFor int
}

var errStoreDown = errors.New("store down")

func (f *fakeStore) SaveReport(_ context.Context, r Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, r)
	if f.failFor > 0 {
		f.failFor--
		return errStoreDown
	}
	return nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports)
}

type recordingObserver struct {
	mu        sync.Mutex
	states    []TurnState
	interims  []string
	countdown []int
	recorded  []int
	completed []error
}

func (o *recordingObserver) StateChanged(_ int, state TurnState) {
	o.mu.Lock()
	o.states = append(o.states, state)
	o.mu.Unlock()
}

func (o *recordingObserver) InterimTranscript(text string) {
	o.mu.Lock()
	o.interims = append(o.interims, text)
	o.mu.Unlock()
}

func (o *recordingObserver) Countdown(remaining int) {
	o.mu.Lock()
	o.countdown = append(o.countdown, remaining)
	o.mu.Unlock()
}

func (o *recordingObserver) TurnRecorded(index int, _ Turn) {
	o.mu.Lock()
	o.recorded = append(o.recorded, index)
	o.mu.Unlock()
}

func (o *recordingObserver) SessionCompleted(_ Report, err error) {
	o.mu.Lock()
	o.completed = append(o.completed, err)
	o.mu.Unlock()
}

func (o *recordingObserver) lastInterim() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.interims) == 0 {
		return ""
	}
	return o.interims[len(o.interims)-1]
}
