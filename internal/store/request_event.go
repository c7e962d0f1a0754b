package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// eventRepo implements EventRepo on raw SQL and the global sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

const requestColumns = `id, sequence, timestamp, op, method, path, request_id,
	status_code, latency_ms, success, error_message`

func (r *eventRepo) AppendRequest(ctx context.Context, data RequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO request_events (sequence, timestamp, op, method, path, request_id,
			status_code, latency_ms, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UnixMilli(), data.Op, data.Method, data.Path, data.RequestID,
		data.StatusCode, data.LatencyMs, data.Success, data.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("save request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryRequests(ctx context.Context, opts QueryOpts) ([]RequestEvent, error) {
	var (
		where []string
		args  []any
	)
	if opts.After > 0 {
		where = append(where, "sequence > ?")
		args = append(args, opts.After)
	}
	if opts.Before > 0 {
		where = append(where, "sequence < ?")
		args = append(args, opts.Before)
	}
	if !opts.From.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, opts.From.UnixMilli())
	}
	if !opts.To.IsZero() {
		where = append(where, "timestamp <= ?")
		args = append(args, opts.To.UnixMilli())
	}
	if opts.Op != "" {
		where = append(where, "op = ?")
		args = append(args, opts.Op)
	}
	if opts.Failed {
		where = append(where, "success = 0")
	}

	q := "SELECT " + requestColumns + " FROM request_events"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY sequence DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query request events: %w", err)
	}
	defer rows.Close()

	var events []RequestEvent
	for rows.Next() {
		e, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *eventRepo) GetRequest(ctx context.Context, id int) (*RequestEvent, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM request_events WHERE id = ?", id)
	e, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (r *eventRepo) RequestStatsByOp(ctx context.Context) ([]OpStats, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT op, COUNT(*),
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END),
			CAST(AVG(latency_ms) AS INTEGER)
		FROM request_events GROUP BY op ORDER BY COUNT(*) DESC, op`)
	if err != nil {
		return nil, fmt.Errorf("query request stats: %w", err)
	}
	defer rows.Close()

	var stats []OpStats
	for rows.Next() {
		var s OpStats
		if err := rows.Scan(&s.Op, &s.Calls, &s.Failures, &s.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan request stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(s scanner) (*RequestEvent, error) {
	var (
		e  RequestEvent
		ts int64
	)
	err := s.Scan(&e.ID, &e.Sequence, &ts, &e.Op, &e.Method, &e.Path, &e.RequestID,
		&e.StatusCode, &e.LatencyMs, &e.Success, &e.ErrorMessage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan request event: %w", err)
	}
	e.Timestamp = time.UnixMilli(ts).UTC()
	return &e, nil
}
