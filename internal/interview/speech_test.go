package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doubleEndSynth struct{}

func (doubleEndSynth) Available() bool { return true }

func (doubleEndSynth) Say(_ context.Context, _ string, onEnd func()) error {
	onEnd()
	onEnd()
	return nil
}

func TestSpeechOutput_DegradesToSilentSkip(t *testing.T) {
	cases := []struct {
		name  string
		synth Synthesizer
	}{
		{"nil synthesizer", nil},
		{"unavailable", &fakeSynth{unavailable: true}},
		{"say fails", &fakeSynth{err: errors.New("audio busy")}},
		{"double end", doubleEndSynth{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			NewSpeechOutput(tc.synth).Speak(context.Background(), "Q1", func() { calls++ })
			assert.Equal(t, 1, calls)
		})
	}
}

func TestSpeechInput_StartReplacesActiveStream(t *testing.T) {
	rec := &fakeRecognizer{}
	in := NewSpeechInput(rec)

	var got []string
	handler := func(tr Transcript) { got = append(got, tr.Text) }

	require.NoError(t, in.Start(handler))
	first := rec.latest()
	require.NoError(t, in.Start(handler))
	second := rec.latest()

	assert.Equal(t, 1, rec.activeStreams())

	first.final("stale")
	second.final("fresh")
	assert.Equal(t, []string{"fresh"}, got)
}

func TestSpeechInput_StopDropsLateResults(t *testing.T) {
	rec := &fakeRecognizer{}
	in := NewSpeechInput(rec)

	var got []Transcript
	require.NoError(t, in.Start(func(tr Transcript) { got = append(got, tr) }))
	stream := rec.latest()

	stream.interim("partial")
	in.Stop()
	stream.final("late")

	require.Len(t, got, 1)
	assert.False(t, got[0].Final)
	assert.Equal(t, 0, rec.activeStreams())
}

func TestSpeechInput_Unavailable(t *testing.T) {
	err := NewSpeechInput(&fakeRecognizer{unavailable: true}).Start(func(Transcript) {})
	assert.ErrorIs(t, err, ErrRecognitionUnavailable)

	err = NewSpeechInput(nil).Start(func(Transcript) {})
	assert.ErrorIs(t, err, ErrRecognitionUnavailable)
}

func TestSpeechInput_CloseReleasesDevice(t *testing.T) {
	rec := &fakeRecognizer{}
	in := NewSpeechInput(rec)
	require.NoError(t, in.Start(func(Transcript) {}))

	require.NoError(t, in.Close())
	assert.Equal(t, 0, rec.activeStreams())
	assert.Equal(t, 1, rec.releasedCount())
}
