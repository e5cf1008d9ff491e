package interview

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Transcript is one recognition result. Interim results are for live display only.
type Transcript struct {
	Text  string
	Final bool
}

type TranscriptHandler func(Transcript)

// Synthesizer is the underlying text-to-speech facility.
type Synthesizer interface {
	// Available reports whether speech can be produced at all.
	Available() bool
	// Say starts speaking text and calls onEnd when playback finishes.
	Say(ctx context.Context, text string, onEnd func()) error
}

// RecognitionStream is one open continuous recognition stream.
type RecognitionStream interface {
	Stop()
}

// Recognizer is the underlying continuous speech-to-text facility. Open must not invoke
// onResult before it returns.
type Recognizer interface {
	Available() bool
	Open(onResult TranscriptHandler) (RecognitionStream, error)
	// Release frees the capture device.
	Release() error
}

// SpeechOutput speaks a question and signals completion.
type SpeechOutput interface {
	// Speak calls done exactly once: when playback ends, or immediately if speech is
	// unavailable or fails.
	Speak(ctx context.Context, text string, done func())
}

// SpeechInput delivers transcripts for the current answer.
type SpeechInput interface {
	// Start opens a recognition stream, replacing any active one.
	Start(handler TranscriptHandler) error
	Stop()
	// Close stops recognition and releases the capture device.
	Close() error
}

type speechOutput struct {
	synth Synthesizer
}

// NewSpeechOutput wraps synth. A nil or unavailable synthesizer degrades to a silent skip.
func NewSpeechOutput(synth Synthesizer) SpeechOutput {
	return &speechOutput{synth: synth}
}

func (o *speechOutput) Speak(ctx context.Context, text string, done func()) {
	var once sync.Once
	finish := func() { once.Do(done) }

	if o.synth == nil || !o.synth.Available() {
		finish()
		return
	}
	if err := o.synth.Say(ctx, text, finish); err != nil {
		log.Warn().Err(err).Msg("Speech synthesis failed, skipping to answer collection")
		finish()
	}
}

type speechInput struct {
	rec Recognizer

	mu     sync.Mutex
	gen    uint64
	active RecognitionStream
}

// NewSpeechInput wraps rec. Results from a stream that has been stopped or replaced are
// dropped, so at most one stream ever reaches the handler.
func NewSpeechInput(rec Recognizer) SpeechInput {
	return &speechInput{rec: rec}
}

func (in *speechInput) Start(handler TranscriptHandler) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.stopLocked()
	if in.rec == nil || !in.rec.Available() {
		return ErrRecognitionUnavailable
	}
	in.gen++
	gen := in.gen
	stream, err := in.rec.Open(func(t Transcript) {
		if in.current(gen) {
			handler(t)
		}
	})
	if err != nil {
		return err
	}
	in.active = stream
	return nil
}

func (in *speechInput) current(gen uint64) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.active != nil && in.gen == gen
}

func (in *speechInput) Stop() {
	in.mu.Lock()
	in.stopLocked()
	in.mu.Unlock()
}

func (in *speechInput) stopLocked() {
	if in.active != nil {
		in.active.Stop()
		in.active = nil
	}
	in.gen++
}

func (in *speechInput) Close() error {
	in.Stop()
	if in.rec == nil {
		return nil
	}
	return in.rec.Release()
}
