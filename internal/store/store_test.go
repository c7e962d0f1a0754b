package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil database")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestJournalModeWALOnFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "qpaper.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestAutoMigrationCreatesTable(t *testing.T) {
	s := openTestStore(t)

	var name string
	err := s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='request_events'",
	).Scan(&name)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if name != "request_events" {
		t.Errorf("table name = %q, want 'request_events'", name)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func appendN(t *testing.T, repo EventRepo, events ...RequestEventData) {
	t.Helper()
	for i, e := range events {
		if err := repo.AppendRequest(context.Background(), e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
}

func TestAppendAndGetRequest(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	appendN(t, repo, RequestEventData{
		Op:           "UpdateQuestion",
		Method:       "PUT",
		Path:         "/api/exams/questions/7",
		RequestID:    "req-1",
		StatusCode:   422,
		LatencyMs:    31,
		ErrorMessage: "invalid options",
	})

	events, err := repo.QueryRequests(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	e, err := repo.GetRequest(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil {
		t.Fatal("expected event")
	}
	if e.Op != "UpdateQuestion" || e.Method != "PUT" || e.StatusCode != 422 || e.Success {
		t.Errorf("event = %+v", e)
	}
	if e.ErrorMessage != "invalid options" || e.RequestID != "req-1" || e.LatencyMs != 31 {
		t.Errorf("event = %+v", e)
	}
	if e.Sequence != 1 {
		t.Errorf("sequence = %d, want 1", e.Sequence)
	}
	if time.Since(e.Timestamp) > time.Minute {
		t.Errorf("timestamp too old: %v", e.Timestamp)
	}
}

func TestGetRequestMissing(t *testing.T) {
	s := openTestStore(t)
	e, err := s.EventRepo().GetRequest(context.Background(), 404)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e != nil {
		t.Errorf("expected nil event, got %+v", e)
	}
}

func TestQueryRequestsFilters(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	appendN(t, repo,
		RequestEventData{Op: "ListExams", Success: true},
		RequestEventData{Op: "GetExam", Success: true},
		RequestEventData{Op: "GetExam", ErrorMessage: "not found"},
		RequestEventData{Op: "ListExams", Success: true},
	)

	tests := []struct {
		name    string
		opts    QueryOpts
		wantSeq []int64
	}{
		{"all newest first", QueryOpts{}, []int64{4, 3, 2, 1}},
		{"limit", QueryOpts{Limit: 2}, []int64{4, 3}},
		{"by op", QueryOpts{Op: "GetExam"}, []int64{3, 2}},
		{"failed only", QueryOpts{Failed: true}, []int64{3}},
		{"after", QueryOpts{After: 2}, []int64{4, 3}},
		{"before", QueryOpts{Before: 3}, []int64{2, 1}},
		{"future window", QueryOpts{From: time.Now().Add(time.Hour)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := repo.QueryRequests(ctx, tt.opts)
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if len(events) != len(tt.wantSeq) {
				t.Fatalf("got %d events, want %d", len(events), len(tt.wantSeq))
			}
			for i, e := range events {
				if e.Sequence != tt.wantSeq[i] {
					t.Errorf("events[%d].Sequence = %d, want %d", i, e.Sequence, tt.wantSeq[i])
				}
			}
		})
	}
}

func TestRequestStatsByOp(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()

	appendN(t, repo,
		RequestEventData{Op: "GenerateQuestions", LatencyMs: 3000, Success: true},
		RequestEventData{Op: "GenerateQuestions", LatencyMs: 1000},
		RequestEventData{Op: "GenerateQuestions", LatencyMs: 2000, Success: true},
		RequestEventData{Op: "ListExams", LatencyMs: 10, Success: true},
	)

	stats, err := repo.RequestStatsByOp(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 ops, got %d", len(stats))
	}
	gen := stats[0]
	if gen.Op != "GenerateQuestions" || gen.Calls != 3 || gen.Failures != 1 || gen.AvgLatencyMs != 2000 {
		t.Errorf("stats[0] = %+v", gen)
	}
	if stats[1].Op != "ListExams" || stats[1].Failures != 0 {
		t.Errorf("stats[1] = %+v", stats[1])
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("QPAPER_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "qpaper", "qpaper.db"); p != want {
		t.Errorf("path = %q, want %q", p, want)
	}

	override := filepath.Join(dir, "custom", "events.db")
	t.Setenv("QPAPER_DB", override)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != override {
		t.Errorf("path = %q, want %q", p, override)
	}
}
