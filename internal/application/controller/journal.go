package controller

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/wifi"
)

const journalBuffer = 256

// Journal persists controller transitions off the looper goroutine.
type Journal struct {
	repo    wifi.TransitionRepository
	entries chan wifi.Transition
	logger  zerolog.Logger
}

func NewJournal(repo wifi.TransitionRepository, logger zerolog.Logger) *Journal {
	return &Journal{
		repo:    repo,
		entries: make(chan wifi.Transition, journalBuffer),
		logger:  logger.With().Str("service", "journal").Logger(),
	}
}

// Record queues t for storage. It never blocks; entries are dropped when
// the buffer is full.
func (j *Journal) Record(t wifi.Transition) {
	select {
	case j.entries <- t:
	default:
		j.logger.Warn().Str("from", string(t.From)).Str("to", string(t.To)).Msg("transition journal full, dropping entry")
	}
}

// Run drains queued transitions until ctx is done.
func (j *Journal) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-j.entries:
			if err := j.repo.Append(ctx, t); err != nil {
				j.logger.Error().Err(err).
					Str("transitionId", t.ID.String()).
					Str("event", t.Event).
					Msg("failed to record transition")
			}
		}
	}
}

// Recent returns the newest transitions first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]wifi.Transition, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	ts, err := j.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}
	return ts, nil
}
