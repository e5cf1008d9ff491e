package live

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lshigami/PrepDeck/internal/cache"
	"github.com/lshigami/PrepDeck/internal/interview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scorer struct{}

func (scorer) ScoreAnswer(_ context.Context, _, answer string) (interview.Feedback, error) {
	return interview.Feedback{Text: "heard " + answer, Score: 5}, nil
}

type store struct {
	mu      sync.Mutex
	fail    bool
	reports []interview.Report
}

func (s *store) SaveReport(_ context.Context, r interview.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("database down")
	}
	s.reports = append(s.reports, r)
	return nil
}

func (s *store) setFail(v bool) {
	s.mu.Lock()
	s.fail = v
	s.mu.Unlock()
}

func (s *store) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

type serverMsg struct {
	Type      string           `json:"type"`
	ID        uint64           `json:"id"`
	Text      string           `json:"text"`
	Stream    uint64           `json:"stream"`
	Turn      int              `json:"turn"`
	State     string           `json:"state"`
	Remaining int              `json:"remaining"`
	Index     int              `json:"index"`
	Question  string           `json:"question"`
	Answer    string           `json:"answer"`
	Feedback  string           `json:"feedback"`
	Score     float64          `json:"score"`
	Report    interview.Report `json:"report"`
	Error     string           `json:"error"`
	Message   string           `json:"message"`
}

type fixture struct {
	hub   *Hub
	store *store
	url   string
	errs  chan error
}

var testSession = interview.Session{ID: 21, UserID: 3, Category: "HR", Questions: []string{"Q1?", "Q2?"}}

func newFixture(t *testing.T, opts interview.Options) *fixture {
	t.Helper()
	f := &fixture{hub: NewHub(cache.NewMemorySessionCache()), store: &store{}, errs: make(chan error, 1)}
	srv := NewServer(f.hub, scorer{}, f.store, Options{Interview: opts, HelloTimeout: time.Second})
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		f.errs <- srv.Serve(r.Context(), ws, testSession)
	}))
	t.Cleanup(ts.Close)
	f.url = "ws" + strings.TrimPrefix(ts.URL, "http")
	return f
}

func fastOptions() interview.Options {
	return interview.Options{TurnTicks: 200, TickInterval: 5 * time.Millisecond}
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

// converse answers every speak and listen request until the server closes the socket.
func converse(t *testing.T, ws *websocket.Conn, hello ClientMessage, answer func(stream uint64) *ClientMessage) []serverMsg {
	t.Helper()
	require.NoError(t, ws.WriteJSON(hello))
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))

	var got []serverMsg
	for {
		var msg serverMsg
		if err := ws.ReadJSON(&msg); err != nil {
			return got
		}
		got = append(got, msg)
		switch msg.Type {
		case TypeSpeak:
			require.NoError(t, ws.WriteJSON(ClientMessage{Type: TypeSpeechEnded, ID: msg.ID}))
		case TypeListen:
			if reply := answer(msg.Stream); reply != nil {
				require.NoError(t, ws.WriteJSON(reply))
			}
		}
	}
}

func ofType(msgs []serverMsg, typ string) []serverMsg {
	var out []serverMsg
	for _, m := range msgs {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func TestServe_SpokenInterview(t *testing.T) {
	f := newFixture(t, fastOptions())
	ws := f.dial(t)

	n := 0
	msgs := converse(t, ws, ClientMessage{Type: TypeHello, TTS: true, STT: true}, func(stream uint64) *ClientMessage {
		n++
		return &ClientMessage{Type: TypeTranscript, Stream: stream, Text: fmt.Sprintf("answer %d", n), Final: true}
	})
	require.NoError(t, <-f.errs)

	speaks := ofType(msgs, TypeSpeak)
	require.Len(t, speaks, 2)
	assert.Equal(t, "Q1?", speaks[0].Text)
	assert.Equal(t, "Q2?", speaks[1].Text)

	turns := ofType(msgs, TypeTurn)
	require.Len(t, turns, 2)
	assert.Equal(t, 0, turns[0].Index)
	assert.Equal(t, "answer 1", turns[0].Answer)
	assert.Equal(t, "heard answer 2", turns[1].Feedback)

	completed := ofType(msgs, TypeCompleted)
	require.Len(t, completed, 1)
	assert.Empty(t, completed[0].Error)
	assert.Equal(t, 10.0, completed[0].Report.TotalScore)
	assert.Equal(t, 1, f.store.count())

	_, live := f.hub.Get(testSession.ID)
	assert.False(t, live)
	snap, err := f.hub.Snapshot(context.Background(), testSession.ID)
	require.NoError(t, err)
	assert.Equal(t, interview.StatusCompleted, snap.Status)
	assert.Equal(t, 2, snap.Recorded)
}

func TestServe_InterimThenStaleStream(t *testing.T) {
	f := newFixture(t, fastOptions())
	ws := f.dial(t)

	var first uint64
	msgs := converse(t, ws, ClientMessage{Type: TypeHello, TTS: true, STT: true}, func(stream uint64) *ClientMessage {
		if first == 0 {
			first = stream
			require.NoError(t, ws.WriteJSON(ClientMessage{Type: TypeTranscript, Stream: stream, Text: "thinking"}))
			return &ClientMessage{Type: TypeTranscript, Stream: stream, Text: "one", Final: true}
		}
		// a late result for the first stream must not answer the second question
		require.NoError(t, ws.WriteJSON(ClientMessage{Type: TypeTranscript, Stream: first, Text: "stale", Final: true}))
		return &ClientMessage{Type: TypeTranscript, Stream: stream, Text: "two", Final: true}
	})
	require.NoError(t, <-f.errs)

	interims := ofType(msgs, TypeInterim)
	require.NotEmpty(t, interims)
	assert.Equal(t, "thinking", interims[0].Text)

	turns := ofType(msgs, TypeTurn)
	require.Len(t, turns, 2)
	assert.Equal(t, "one", turns[0].Answer)
	assert.Equal(t, "two", turns[1].Answer)
}

func TestServe_NoSpeechCapabilitiesTimesOut(t *testing.T) {
	f := newFixture(t, interview.Options{TurnTicks: 3, TickInterval: 5 * time.Millisecond})
	ws := f.dial(t)

	msgs := converse(t, ws, ClientMessage{Type: TypeHello}, func(uint64) *ClientMessage {
		t.Error("listen sent without recognition")
		return nil
	})
	require.NoError(t, <-f.errs)

	assert.Empty(t, ofType(msgs, TypeSpeak))
	assert.NotEmpty(t, ofType(msgs, TypeCountdown))
	turns := ofType(msgs, TypeTurn)
	require.Len(t, turns, 2)
	assert.Equal(t, interview.NoResponse, turns[0].Answer)
	assert.Equal(t, interview.NoResponseFeedback, turns[1].Feedback)
}

func TestServe_ClientCancel(t *testing.T) {
	f := newFixture(t, fastOptions())
	ws := f.dial(t)

	msgs := converse(t, ws, ClientMessage{Type: TypeHello, TTS: true, STT: true}, func(uint64) *ClientMessage {
		return &ClientMessage{Type: TypeCancel}
	})
	require.NoError(t, <-f.errs)

	assert.Empty(t, ofType(msgs, TypeTurn))
	assert.Empty(t, ofType(msgs, TypeCompleted))
	assert.Zero(t, f.store.count())
	_, live := f.hub.Get(testSession.ID)
	assert.False(t, live)
}

func TestServe_DroppedConnectionCancels(t *testing.T) {
	f := newFixture(t, fastOptions())
	ws := f.dial(t)

	require.NoError(t, ws.WriteJSON(ClientMessage{Type: TypeHello, TTS: true, STT: true}))
	var msg serverMsg
	for msg.Type != TypeSpeak {
		require.NoError(t, ws.ReadJSON(&msg))
	}
	require.NoError(t, ws.Close())

	select {
	case err := <-f.errs:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session kept running after the client went away")
	}
	assert.Zero(t, f.store.count())
}

func TestServe_RequiresHello(t *testing.T) {
	f := newFixture(t, fastOptions())
	ws := f.dial(t)

	require.NoError(t, ws.WriteJSON(ClientMessage{Type: TypeCancel}))
	var msg serverMsg
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, TypeError, msg.Type)
	assert.ErrorIs(t, <-f.errs, errNoHello)
}

func TestServe_PersistFailureCanBeRetried(t *testing.T) {
	f := newFixture(t, fastOptions())
	f.store.setFail(true)
	ws := f.dial(t)

	msgs := converse(t, ws, ClientMessage{Type: TypeHello, STT: true}, func(stream uint64) *ClientMessage {
		return &ClientMessage{Type: TypeTranscript, Stream: stream, Text: "ok", Final: true}
	})
	require.NoError(t, <-f.errs)

	completed := ofType(msgs, TypeCompleted)
	require.Len(t, completed, 1)
	assert.Contains(t, completed[0].Error, "database down")

	_, pending := f.hub.Get(testSession.ID)
	require.True(t, pending)

	f.store.setFail(false)
	require.NoError(t, f.hub.RetryPersist(context.Background(), testSession.ID))
	assert.Equal(t, 1, f.store.count())
	_, pending = f.hub.Get(testSession.ID)
	assert.False(t, pending)

	assert.ErrorIs(t, f.hub.RetryPersist(context.Background(), testSession.ID), ErrNotLive)
}

func TestHub_SecondConnectionRejected(t *testing.T) {
	f := newFixture(t, interview.Options{TurnTicks: 1000, TickInterval: time.Second})
	first := f.dial(t)
	require.NoError(t, first.WriteJSON(ClientMessage{Type: TypeHello}))

	require.Eventually(t, func() bool {
		_, ok := f.hub.Get(testSession.ID)
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	second := f.dial(t)
	require.NoError(t, second.WriteJSON(ClientMessage{Type: TypeHello}))
	_ = second.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg serverMsg
	require.NoError(t, second.ReadJSON(&msg))
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, ErrSessionLive.Error(), msg.Message)
	assert.ErrorIs(t, <-f.errs, ErrSessionLive)

	require.NoError(t, f.hub.Cancel(testSession.ID))
	assert.NoError(t, <-f.errs)
}

func TestServe_RecognitionErrorEndsTurnWithoutAnswer(t *testing.T) {
	// a full countdown would outlast the client's read deadline
	f := newFixture(t, interview.Options{TurnTicks: 1000, TickInterval: time.Second})
	ws := f.dial(t)

	n := 0
	msgs := converse(t, ws, ClientMessage{Type: TypeHello, STT: true}, func(stream uint64) *ClientMessage {
		n++
		if n == 1 {
			return &ClientMessage{Type: TypeRecognitionError, Stream: stream, Text: "not-allowed"}
		}
		return &ClientMessage{Type: TypeTranscript, Stream: stream, Text: "second", Final: true}
	})
	require.NoError(t, <-f.errs)

	turns := ofType(msgs, TypeTurn)
	require.Len(t, turns, 2)
	assert.Equal(t, interview.NoResponse, turns[0].Answer)
	assert.Equal(t, interview.NoResponseFeedback, turns[0].Feedback)
	assert.Equal(t, "second", turns[1].Answer)
	assert.Equal(t, 1, f.store.count())
}

func TestServe_ReconnectKeepsUnstoredReport(t *testing.T) {
	f := newFixture(t, fastOptions())
	f.store.setFail(true)
	ws := f.dial(t)

	converse(t, ws, ClientMessage{Type: TypeHello, STT: true}, func(stream uint64) *ClientMessage {
		return &ClientMessage{Type: TypeTranscript, Stream: stream, Text: "ok", Final: true}
	})
	require.NoError(t, <-f.errs)
	assert.ErrorIs(t, f.hub.Claimable(testSession.ID), ErrReportPending)

	again := f.dial(t)
	require.NoError(t, again.WriteJSON(ClientMessage{Type: TypeHello, STT: true}))
	_ = again.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg serverMsg
	require.NoError(t, again.ReadJSON(&msg))
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, ErrReportPending.Error(), msg.Message)
	assert.ErrorIs(t, <-f.errs, ErrReportPending)

	f.store.setFail(false)
	require.NoError(t, f.hub.RetryPersist(context.Background(), testSession.ID))
	require.Equal(t, 1, f.store.count())
	assert.Len(t, f.store.reports[0].Turns, 2)
	assert.NoError(t, f.hub.Claimable(testSession.ID))
}
