// Package live runs an interview session over a websocket. The browser does the speaking
// and listening; the server drives the turn sequence and tells the browser what to do.
package live

import "github.com/lshigami/PrepDeck/internal/interview"

// Client to server message types.
const (
	TypeHello       = "hello"
	TypeSpeechEnded = "speech_ended"
	TypeTranscript  = "transcript"
	TypeCancel      = "cancel"

	// TypeRecognitionError reports that the browser's recognition for a stream failed.
	// The turn ends with no answer.
	TypeRecognitionError = "recognition_error"
)

// Server to client message types.
const (
	TypeSpeak         = "speak"
	TypeListen        = "listen"
	TypeStopListening = "stop_listening"
	TypeState         = "state"
	TypeCountdown     = "countdown"
	TypeInterim       = "interim"
	TypeTurn          = "turn"
	TypeCompleted     = "completed"
	TypeError         = "error"
)

// ClientMessage is any message the browser sends. Only the fields of its Type are set.
type ClientMessage struct {
	Type string `json:"type"`

	// hello
	TTS bool `json:"tts,omitempty"`
	STT bool `json:"stt,omitempty"`

	// speech_ended
	ID uint64 `json:"id,omitempty"`

	// transcript, recognition_error
	Stream uint64 `json:"stream,omitempty"`
	Text   string `json:"text,omitempty"`
	Final  bool   `json:"final,omitempty"`
}

type speakMessage struct {
	Type string `json:"type"`
	ID   uint64 `json:"id"`
	Text string `json:"text"`
}

type streamMessage struct {
	Type   string `json:"type"`
	Stream uint64 `json:"stream"`
}

type stateMessage struct {
	Type  string              `json:"type"`
	Turn  int                 `json:"turn"`
	State interview.TurnState `json:"state"`
}

type countdownMessage struct {
	Type      string `json:"type"`
	Remaining int    `json:"remaining"`
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type turnMessage struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
	interview.Turn
}

type completedMessage struct {
	Type   string           `json:"type"`
	Report interview.Report `json:"report"`
	Error  string           `json:"error,omitempty"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
