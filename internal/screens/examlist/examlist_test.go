package examlist

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/qpaper/qpaper/internal/api"
	"github.com/qpaper/qpaper/internal/exam"
	"github.com/qpaper/qpaper/internal/router"
	"github.com/qpaper/qpaper/internal/screens/createexam"
	"github.com/qpaper/qpaper/internal/screens/examdetail"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testExams() []exam.Exam {
	return []exam.Exam{
		{ID: 1, Name: "Midterm", TotalMarks: 40, TimeMinutes: 90, Sections: make([]exam.Section, 2)},
		{ID: 2, Name: "Final", TotalMarks: 100.5, TimeMinutes: 180, Sections: make([]exam.Section, 3)},
	}
}

func loadedScreen(t *testing.T) *ExamListScreen {
	t.Helper()
	mock := api.NewMockClient().On(api.OpListExams, api.MockResponse{Value: testExams()})
	s := New(mock, nil)
	cmd := s.Init()
	if cmd == nil {
		t.Fatal("expected load command from Init")
	}
	s.Update(cmd())
	return s
}

func TestExamList_Loads(t *testing.T) {
	s := loadedScreen(t)
	if len(s.exams) != 2 {
		t.Fatalf("exams = %d, want 2", len(s.exams))
	}
	view := s.View(100, 30)
	for _, want := range []string{"Midterm", "Total marks: 100.5", "Duration: 180 minutes", "Sections: 3"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestExamList_LoadingState(t *testing.T) {
	s := New(api.NewMockClient(), nil)
	if !strings.Contains(s.View(80, 24), "Loading exams") {
		t.Error("expected loading message")
	}
}

func TestExamList_ErrorHasNoPartialData(t *testing.T) {
	s := New(api.NewMockClient(), nil)
	s.Update(s.Init()())

	if s.errMsg != loadError {
		t.Errorf("errMsg = %q, want %q", s.errMsg, loadError)
	}
	if len(s.exams) != 0 {
		t.Error("expected no exams after a failed load")
	}
	if !strings.Contains(s.View(80, 24), loadError) {
		t.Error("expected error in view")
	}
}

func TestExamList_RefreshRecovers(t *testing.T) {
	mock := api.NewMockClient()
	s := New(mock, nil)
	s.Update(s.Init()())

	mock.On(api.OpListExams, api.MockResponse{Value: testExams()})
	_, cmd := s.Update(keyPress('r'))
	if cmd == nil {
		t.Fatal("expected reload command")
	}
	s.Update(cmd())
	if s.errMsg != "" || len(s.exams) != 2 {
		t.Errorf("errMsg = %q, exams = %d", s.errMsg, len(s.exams))
	}
}

func TestExamList_EnterOpensDetail(t *testing.T) {
	s := loadedScreen(t)
	s.Update(keyPress('j'))

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected push command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*examdetail.ExamDetailScreen); !ok {
		t.Errorf("pushed %T, want detail screen", push.Screen)
	}
}

func TestExamList_NewExam(t *testing.T) {
	s := loadedScreen(t)
	_, cmd := s.Update(keyPress('n'))
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*createexam.CreateExamScreen); !ok {
		t.Errorf("pushed %T, want create screen", push.Screen)
	}
}

func TestExamList_EmptyEnterDoesNothing(t *testing.T) {
	mock := api.NewMockClient().On(api.OpListExams, api.MockResponse{Value: []exam.Exam{}})
	s := New(mock, nil)
	s.Update(s.Init()())

	if _, cmd := s.Update(specialKey(tea.KeyEnter)); cmd != nil {
		t.Error("expected no command on an empty list")
	}
	if !strings.Contains(s.View(80, 24), "No exams yet") {
		t.Error("expected empty message")
	}
}
