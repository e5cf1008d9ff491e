package live

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lshigami/PrepDeck/internal/interview"
	"github.com/rs/zerolog/log"
)

const (
	DefaultWriteWait    = 10 * time.Second
	DefaultHelloTimeout = 10 * time.Second
	maxMessageSize      = 64 * 1024
)

var errNoHello = errors.New("first message must be hello")

// Conn is the browser end of a live session. It speaks and listens on the server's
// behalf and relays sequencer progress back to the page.
type Conn struct {
	ws        *websocket.Conn
	writeWait time.Duration
	writeMu   sync.Mutex // gorilla allows one concurrent writer

	mu         sync.Mutex
	tts, stt   bool
	nextSpeech uint64
	speaking   map[uint64]func()
	nextStream uint64
	listening  map[uint64]interview.TranscriptHandler

	calls    *callQueue
	progress func()
}

func NewConn(ws *websocket.Conn, writeWait time.Duration) *Conn {
	if writeWait <= 0 {
		writeWait = DefaultWriteWait
	}
	ws.SetReadLimit(maxMessageSize)
	return &Conn{
		ws:        ws,
		writeWait: writeWait,
		speaking:  make(map[uint64]func()),
		listening: make(map[uint64]interview.TranscriptHandler),
		calls:     newCallQueue(),
		progress:  func() {},
	}
}

// OnProgress registers fn to run after each state change, recorded turn and completion.
// Must be called before the session starts.
func (c *Conn) OnProgress(fn func()) {
	if fn != nil {
		c.progress = fn
	}
}

// ReadHello waits for the capability handshake.
func (c *Conn) ReadHello(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultHelloTimeout
	}
	_ = c.ws.SetReadDeadline(time.Now().Add(timeout))
	defer c.ws.SetReadDeadline(time.Time{})

	var msg ClientMessage
	if err := c.ws.ReadJSON(&msg); err != nil {
		return fmt.Errorf("reading hello: %w", err)
	}
	if msg.Type != TypeHello {
		return errNoHello
	}
	c.mu.Lock()
	c.tts, c.stt = msg.TTS, msg.STT
	c.mu.Unlock()
	return nil
}

// ReadLoop handles client messages until the connection fails. onCancel runs for each
// cancel message.
func (c *Conn) ReadLoop(onCancel func()) error {
	for {
		var msg ClientMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			return err
		}
		switch msg.Type {
		case TypeSpeechEnded:
			c.speechEnded(msg.ID)
		case TypeTranscript:
			c.transcript(msg.Stream, interview.Transcript{Text: msg.Text, Final: msg.Final})
		case TypeRecognitionError:
			log.Debug().Uint64("stream", msg.Stream).Str("reason", msg.Text).Msg("Browser speech recognition failed")
			c.transcript(msg.Stream, interview.Transcript{Final: true})
		case TypeCancel:
			onCancel()
		case TypeHello:
			// capabilities are fixed for the session
		default:
			c.SendError(fmt.Sprintf("unknown message type %q", msg.Type))
		}
	}
}

func (c *Conn) speechEnded(id uint64) {
	c.mu.Lock()
	onEnd, ok := c.speaking[id]
	delete(c.speaking, id)
	c.mu.Unlock()
	if ok {
		c.calls.Push(onEnd)
	}
}

func (c *Conn) transcript(stream uint64, t interview.Transcript) {
	c.mu.Lock()
	handler, ok := c.listening[stream]
	c.mu.Unlock()
	if ok {
		c.calls.Push(func() { handler(t) })
	}
}

func (c *Conn) send(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.ws.WriteJSON(v)
}

func (c *Conn) sendLogged(v any) {
	if err := c.send(v); err != nil {
		log.Debug().Err(err).Msg("Live message not delivered")
	}
}

func (c *Conn) SendError(message string) {
	c.sendLogged(errorMessage{Type: TypeError, Message: message})
}

// Close sends a close frame and tears down the connection. Pending callbacks are dropped.
func (c *Conn) Close() error {
	c.calls.Close()
	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.ws.Close()
}

// Synthesizer

func (c *Conn) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tts
}

func (c *Conn) Say(_ context.Context, text string, onEnd func()) error {
	c.mu.Lock()
	c.nextSpeech++
	id := c.nextSpeech
	c.speaking[id] = onEnd
	c.mu.Unlock()

	if err := c.send(speakMessage{Type: TypeSpeak, ID: id, Text: text}); err != nil {
		c.mu.Lock()
		delete(c.speaking, id)
		c.mu.Unlock()
		return err
	}
	return nil
}

// Recognizer. Conn cannot satisfy both Available methods, so recognition is exposed
// through Listener.

type listener struct{ c *Conn }

// Listener returns the recognizer backed by the browser's speech recognition.
func (c *Conn) Listener() interview.Recognizer {
	return listener{c: c}
}

func (l listener) Available() bool {
	l.c.mu.Lock()
	defer l.c.mu.Unlock()
	return l.c.stt
}

func (l listener) Open(onResult interview.TranscriptHandler) (interview.RecognitionStream, error) {
	c := l.c
	c.mu.Lock()
	c.nextStream++
	id := c.nextStream
	c.listening[id] = onResult
	c.mu.Unlock()

	if err := c.send(streamMessage{Type: TypeListen, Stream: id}); err != nil {
		c.mu.Lock()
		delete(c.listening, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("opening recognition stream: %w", err)
	}
	return &stream{c: c, id: id}, nil
}

func (l listener) Release() error {
	c := l.c
	c.mu.Lock()
	ids := make([]uint64, 0, len(c.listening))
	for id := range c.listening {
		ids = append(ids, id)
	}
	c.listening = make(map[uint64]interview.TranscriptHandler)
	c.mu.Unlock()

	for _, id := range ids {
		c.sendLogged(streamMessage{Type: TypeStopListening, Stream: id})
	}
	return nil
}

type stream struct {
	c  *Conn
	id uint64
}

func (s *stream) Stop() {
	s.c.mu.Lock()
	_, ok := s.c.listening[s.id]
	delete(s.c.listening, s.id)
	s.c.mu.Unlock()
	if ok {
		s.c.sendLogged(streamMessage{Type: TypeStopListening, Stream: s.id})
	}
}

// Observer

func (c *Conn) StateChanged(turn int, state interview.TurnState) {
	c.sendLogged(stateMessage{Type: TypeState, Turn: turn, State: state})
	c.progress()
}

func (c *Conn) InterimTranscript(text string) {
	c.sendLogged(textMessage{Type: TypeInterim, Text: text})
}

func (c *Conn) Countdown(remaining int) {
	c.sendLogged(countdownMessage{Type: TypeCountdown, Remaining: remaining})
}

func (c *Conn) TurnRecorded(index int, turn interview.Turn) {
	c.sendLogged(turnMessage{Type: TypeTurn, Index: index, Turn: turn})
	c.progress()
}

func (c *Conn) SessionCompleted(report interview.Report, err error) {
	msg := completedMessage{Type: TypeCompleted, Report: report}
	if err != nil {
		msg.Error = err.Error()
	}
	c.sendLogged(msg)
	c.progress()
}
