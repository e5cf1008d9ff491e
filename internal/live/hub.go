package live

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lshigami/PrepDeck/internal/cache"
	"github.com/lshigami/PrepDeck/internal/interview"
	"github.com/rs/zerolog/log"
)

var (
	ErrSessionLive   = errors.New("interview is already running")
	ErrReportPending = errors.New("interview report is waiting to be stored, retry it first")
	ErrNotLive       = errors.New("interview is not running on this server")
)

const cacheTimeout = 2 * time.Second

// Hub tracks the sessions running on this instance and mirrors their snapshots to the
// session cache. A completed session whose report could not be stored stays registered
// so the report can be retried.
type Hub struct {
	cache cache.SessionCache

	mu       sync.Mutex
	sessions map[uint]*interview.Sequencer
}

func NewHub(c cache.SessionCache) *Hub {
	return &Hub{cache: c, sessions: make(map[uint]*interview.Sequencer)}
}

// Register claims id for seq.
func (h *Hub) Register(id uint, seq *interview.Sequencer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.claimableLocked(id); err != nil {
		return err
	}
	h.sessions[id] = seq
	return nil
}

// Claimable reports whether id is free for a new live session or a client-submitted
// report. It fails with ErrSessionLive while a session runs and with ErrReportPending
// while a completed session still holds an unstored report.
func (h *Hub) Claimable(id uint) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.claimableLocked(id)
}

func (h *Hub) claimableLocked(id uint) error {
	existing, ok := h.sessions[id]
	if !ok {
		return nil
	}
	if existing.Unpersisted() {
		return ErrReportPending
	}
	if existing.Status() != interview.StatusCompleted {
		return ErrSessionLive
	}
	return nil
}

// Finish records the final snapshot and drops id unless its report still needs storing.
func (h *Hub) Finish(id uint, seq *interview.Sequencer) {
	h.Save(seq.Snapshot())

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[id] != seq {
		return
	}
	if !seq.Unpersisted() {
		delete(h.sessions, id)
	}
}

func (h *Hub) Get(id uint) (*interview.Sequencer, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	seq, ok := h.sessions[id]
	return seq, ok
}

// Cancel abandons a running session.
func (h *Hub) Cancel(id uint) error {
	seq, ok := h.Get(id)
	if !ok {
		return ErrNotLive
	}
	seq.Cancel()
	return nil
}

// RetryPersist stores the report of a completed session whose first store attempt failed.
func (h *Hub) RetryPersist(ctx context.Context, id uint) error {
	seq, ok := h.Get(id)
	if !ok {
		return ErrNotLive
	}
	if err := seq.RetryPersist(ctx); err != nil {
		return err
	}
	h.Finish(id, seq)
	return nil
}

// Snapshot returns the live view of a session, falling back to the cache for sessions
// running elsewhere or recently finished.
func (h *Hub) Snapshot(ctx context.Context, id uint) (*interview.Snapshot, error) {
	if seq, ok := h.Get(id); ok {
		snap := seq.Snapshot()
		return &snap, nil
	}
	return h.cache.Load(ctx, id)
}

func (h *Hub) ListByUser(ctx context.Context, userID uint) ([]interview.Snapshot, error) {
	return h.cache.ListByUser(ctx, userID)
}

// Save writes snap to the cache. Failures are logged and otherwise ignored.
func (h *Hub) Save(snap interview.Snapshot) {
	if snap.SessionID == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	if err := h.cache.Save(ctx, snap); err != nil {
		log.Warn().Err(err).Uint("sessionID", snap.SessionID).Msg("Failed to cache session snapshot")
	}
}
