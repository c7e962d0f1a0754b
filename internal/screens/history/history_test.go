package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/qpaper/qpaper/internal/router"
	"github.com/qpaper/qpaper/internal/store"
)

type stubRepo struct {
	events []store.RequestEvent
	err    error
	opts   []store.QueryOpts
}

func (r *stubRepo) AppendRequest(context.Context, store.RequestEventData) error { return nil }

func (r *stubRepo) QueryRequests(_ context.Context, opts store.QueryOpts) ([]store.RequestEvent, error) {
	r.opts = append(r.opts, opts)
	return r.events, r.err
}

func (r *stubRepo) GetRequest(context.Context, int) (*store.RequestEvent, error) { return nil, nil }

func (r *stubRepo) RequestStatsByOp(context.Context) ([]store.OpStats, error) { return nil, nil }

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testEvents() []store.RequestEvent {
	now := time.Now()
	return []store.RequestEvent{
		{ID: 2, Sequence: 2, Timestamp: now, RequestEventData: store.RequestEventData{
			Op: "GenerateQuestions", Method: "POST", Path: "/api/exams/sections/3/generate-questions",
			StatusCode: 400, LatencyMs: 12, ErrorMessage: "Questions already exist for section with ID 3",
		}},
		{ID: 1, Sequence: 1, Timestamp: now.Add(-time.Minute), RequestEventData: store.RequestEventData{
			Op: "ListExams", Method: "GET", Path: "/api/exams/", RequestID: "abc",
			StatusCode: 200, LatencyMs: 4, Success: true,
		}},
	}
}

func loaded(t *testing.T, repo *stubRepo) *HistoryScreen {
	t.Helper()
	s := New(repo)
	cmd := s.Init()
	if cmd == nil {
		t.Fatal("expected load command from Init")
	}
	s.Update(cmd())
	return s
}

func TestHistoryScreen_LoadsRequests(t *testing.T) {
	repo := &stubRepo{events: testEvents()}
	s := loaded(t, repo)

	if len(s.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(s.requests))
	}
	if repo.opts[0].Limit != pageSize {
		t.Errorf("Limit = %d, want %d", repo.opts[0].Limit, pageSize)
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "ListExams") {
		t.Error("expected operation name in view")
	}
}

func TestHistoryScreen_LoadingState(t *testing.T) {
	s := New(&stubRepo{})
	if !strings.Contains(s.View(80, 24), "Loading") {
		t.Error("expected loading message before data arrives")
	}
}

func TestHistoryScreen_Empty(t *testing.T) {
	s := loaded(t, &stubRepo{})
	if !strings.Contains(s.View(80, 24), "No requests recorded") {
		t.Error("expected empty message")
	}
}

func TestHistoryScreen_Error(t *testing.T) {
	s := loaded(t, &stubRepo{err: errors.New("disk gone")})
	if !strings.Contains(s.View(80, 24), "disk gone") {
		t.Error("expected error in view")
	}
}

func TestHistoryScreen_NilRepo(t *testing.T) {
	s := New(nil)
	s.Update(s.Init()())
	if s.errMsg == "" {
		t.Error("expected error without a repo")
	}
}

func TestHistoryScreen_ExpandShowsDetails(t *testing.T) {
	s := loaded(t, &stubRepo{events: testEvents()})

	s.Update(specialKey(tea.KeyEnter))
	if !s.expanded[0] {
		t.Fatal("expected first row expanded")
	}
	if !strings.Contains(s.View(120, 30), "Questions already exist") {
		t.Error("expected error message in expanded details")
	}

	s.Update(specialKey(tea.KeyEnter))
	if s.expanded[0] {
		t.Error("expected second Enter to collapse")
	}
}

func TestHistoryScreen_Navigation(t *testing.T) {
	s := loaded(t, &stubRepo{events: testEvents()})

	s.Update(keyPress('j'))
	if s.selected != 1 {
		t.Errorf("selected = %d, want 1", s.selected)
	}
	s.Update(keyPress('j'))
	if s.selected != 1 {
		t.Errorf("selected = %d, want 1 at the bottom", s.selected)
	}
	s.Update(keyPress('k'))
	if s.selected != 0 {
		t.Errorf("selected = %d, want 0", s.selected)
	}
}

func TestHistoryScreen_FailedFilter(t *testing.T) {
	repo := &stubRepo{events: testEvents()}
	s := loaded(t, repo)

	_, cmd := s.Update(keyPress('f'))
	if cmd == nil {
		t.Fatal("expected reload command")
	}
	cmd()
	if !repo.opts[len(repo.opts)-1].Failed {
		t.Error("expected failed-only query")
	}
	if s.KeyHints()[1].Description != "Show all" {
		t.Errorf("filter hint = %q", s.KeyHints()[1].Description)
	}
}

func TestHistoryScreen_Esc(t *testing.T) {
	s := loaded(t, &stubRepo{})
	_, cmd := s.Update(specialKey(tea.KeyEscape))
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
