package store

import (
	"context"
	"fmt"

	"github.com/roach88/simkit/internal/trace"
)

// WriteRun records a new run with its seed and effective configuration.
// cfg is stored as JSON. Recording the same run id twice fails.
func (s *Store) WriteRun(ctx context.Context, runID string, seed uint64, cfg any) error {
	cfgJSON, err := marshalConfig(cfg)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, seed, config, created_seq)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(created_seq), 0) + 1 FROM runs))
	`,
		runID,
		int64(seed),
		cfgJSON,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteEvent appends a trace event to its run.
// Uses ON CONFLICT DO NOTHING for idempotency - a repeated (run_id, seq)
// is silently ignored. The run must exist (foreign key constraint).
func (s *Store) WriteEvent(ctx context.Context, ev trace.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events
		(run_id, seq, tick, clock, kind, entity_id, sender, receiver, msg,
		 from_state, to_state, dispatch_at, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		ev.RunID,
		ev.Seq,
		ev.Tick,
		ev.Clock,
		string(ev.Kind),
		ev.Entity,
		ev.Sender,
		ev.Receiver,
		ev.Msg,
		ev.From,
		ev.To,
		ev.DispatchAt,
		ev.Detail,
	)
	if err != nil {
		return fmt.Errorf("write event seq=%d: %w", ev.Seq, err)
	}
	return nil
}
