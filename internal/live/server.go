package live

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lshigami/PrepDeck/internal/interview"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Interview    interview.Options
	WriteWait    time.Duration
	HelloTimeout time.Duration
}

// Server wires websocket connections to interview sequencers.
type Server struct {
	hub    *Hub
	scorer interview.Scorer
	store  interview.ReportStore
	opts   Options
}

func NewServer(hub *Hub, scorer interview.Scorer, store interview.ReportStore, opts Options) *Server {
	return &Server{hub: hub, scorer: scorer, store: store, opts: opts}
}

// Serve runs session over ws until it completes, the client cancels, or the connection
// drops. A dropped connection cancels the session. ws is closed on return.
func (s *Server) Serve(ctx context.Context, ws *websocket.Conn, session interview.Session) error {
	conn := NewConn(ws, s.opts.WriteWait)
	defer conn.Close()

	if err := conn.ReadHello(s.opts.HelloTimeout); err != nil {
		conn.SendError(err.Error())
		return err
	}

	seq := interview.NewSequencer(
		interview.NewSpeechOutput(conn),
		interview.NewSpeechInput(conn.Listener()),
		s.scorer,
		s.store,
		conn,
		s.opts.Interview,
	)
	if err := s.hub.Register(session.ID, seq); err != nil {
		conn.SendError(err.Error())
		return err
	}
	defer s.hub.Finish(session.ID, seq)
	conn.OnProgress(func() { s.hub.Save(seq.Snapshot()) })

	if err := seq.Start(ctx, session); err != nil {
		conn.SendError(err.Error())
		return err
	}

	readErr := make(chan error, 1)
	go func() { readErr <- conn.ReadLoop(seq.Cancel) }()

	select {
	case <-seq.Done():
	case err := <-readErr:
		log.Info().Err(err).Uint("sessionID", session.ID).Msg("Live connection closed")
		seq.Cancel()
	}
	return nil
}
