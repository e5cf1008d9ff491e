package interview

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Report is the completed session handed to the report store.
type Report struct {
	SessionID   uint      `json:"session_id"`
	UserID      uint      `json:"user_id"`
	Category    string    `json:"category"`
	Turns       []Turn    `json:"turns"`
	TotalScore  float64   `json:"total_score"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Duration is the wall time between the first question and completion.
func (r Report) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.CompletedAt.Before(r.StartedAt) {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// ReportStore persists completed sessions.
type ReportStore interface {
	SaveReport(ctx context.Context, report Report) error
}

// ReportBuilder assembles the turn log into a Report and persists it.
type ReportBuilder struct {
	store ReportStore
	now   func() time.Time

	mu        sync.Mutex
	report    *Report
	persisted bool
}

func NewReportBuilder(store ReportStore) *ReportBuilder {
	return &ReportBuilder{store: store, now: time.Now}
}

// Build freezes the report. The turns slice is copied.
func (b *ReportBuilder) Build(session Session, turns []Turn) Report {
	turnLog := make([]Turn, len(turns))
	copy(turnLog, turns)

	var total float64
	for _, t := range turnLog {
		total += t.Score
	}

	r := Report{
		SessionID:   session.ID,
		UserID:      session.UserID,
		Category:    session.Category,
		Turns:       turnLog,
		TotalScore:  total,
		StartedAt:   session.StartedAt,
		CompletedAt: b.now(),
	}

	b.mu.Lock()
	b.report = &r
	b.persisted = false
	b.mu.Unlock()
	return r
}

// Persist makes one store call. It does not retry; the report is kept so the caller can
// call Persist again. Once a call succeeds further calls are no-ops.
func (b *ReportBuilder) Persist(ctx context.Context) error {
	b.mu.Lock()
	if b.report == nil {
		b.mu.Unlock()
		return ErrNotCompleted
	}
	if b.persisted {
		b.mu.Unlock()
		return nil
	}
	r := *b.report
	b.mu.Unlock()

	if err := b.store.SaveReport(ctx, r); err != nil {
		return fmt.Errorf("persisting interview report: %w", err)
	}

	b.mu.Lock()
	b.persisted = true
	b.mu.Unlock()
	return nil
}

// Report returns the built report, if any, and whether it has been persisted.
func (b *ReportBuilder) Report() (r Report, built bool, persisted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.report == nil {
		return Report{}, false, false
	}
	return *b.report, true, b.persisted
}
