package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/simkit/internal/trace"
)

// ErrRunNotFound is returned by ReadRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded simulation run.
type Run struct {
	ID         string
	Seed       uint64
	Config     string // JSON
	CreatedSeq int64
	Events     int
}

// ReadRun returns the run with the given id.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT r.id, r.seed, r.config, r.created_seq,
		       (SELECT COUNT(*) FROM events e WHERE e.run_id = r.id)
		FROM runs r
		WHERE r.id = ?
	`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return run, nil
}

// ListRuns returns every recorded run, oldest first.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.seed, r.config, r.created_seq,
		       (SELECT COUNT(*) FROM events e WHERE e.run_id = r.id)
		FROM runs r
		ORDER BY r.created_seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadEvents returns the events of a run in seq order. A non-empty kind
// restricts the result to that kind.
// Returns an empty slice (not nil) if no events match.
func (s *Store) ReadEvents(ctx context.Context, runID string, kind trace.Kind) ([]trace.Event, error) {
	query := `
		SELECT run_id, seq, tick, clock, kind, entity_id, sender, receiver, msg,
		       from_state, to_state, dispatch_at, detail
		FROM events
		WHERE run_id = ?`
	args := []any{runID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []trace.Event{}
	for rows.Next() {
		var (
			ev      trace.Event
			kindStr string
		)
		if err := rows.Scan(
			&ev.RunID, &ev.Seq, &ev.Tick, &ev.Clock, &kindStr, &ev.Entity,
			&ev.Sender, &ev.Receiver, &ev.Msg,
			&ev.From, &ev.To, &ev.DispatchAt, &ev.Detail,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = trace.Kind(kindStr)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run  Run
		seed int64
	)
	if err := row.Scan(&run.ID, &seed, &run.Config, &run.CreatedSeq, &run.Events); err != nil {
		return Run{}, err
	}
	run.Seed = uint64(seed)
	return run, nil
}
