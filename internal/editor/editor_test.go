package editor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/qpaper/qpaper/internal/exam"
	"github.com/qpaper/qpaper/internal/media"
)

type stubUpdater struct {
	calls []exam.QuestionUpdate
	ids   []int64
	err   error
}

func (s *stubUpdater) UpdateQuestion(_ context.Context, id int64, upd exam.QuestionUpdate) (*exam.RawQuestion, error) {
	s.ids = append(s.ids, id)
	s.calls = append(s.calls, upd)
	if s.err != nil {
		return nil, s.err
	}
	return &exam.RawQuestion{ID: id}, nil
}

type stubUploader struct {
	url            string
	err            error
	questionIDs    []int64
	optionSections []int64
}

func (s *stubUploader) UploadQuestionImage(_ context.Context, id int64, _ media.File) (*exam.ImageUpload, error) {
	s.questionIDs = append(s.questionIDs, id)
	if s.err != nil {
		return nil, s.err
	}
	return &exam.ImageUpload{ImageURL: s.url}, nil
}

func (s *stubUploader) UploadOptionImage(_ context.Context, sectionID int64, _ media.File) (*exam.ImageUpload, error) {
	s.optionSections = append(s.optionSections, sectionID)
	if s.err != nil {
		return nil, s.err
	}
	return &exam.ImageUpload{ImageURL: s.url}, nil
}

func options(correct ...bool) []exam.Option {
	opts := make([]exam.Option, len(correct))
	for i, c := range correct {
		opts[i] = exam.Option{Text: string(rune('A' + i)), IsCorrect: c}
	}
	return opts
}

func testQuestions() []exam.Question {
	answer := 3.0
	return []exam.Question{
		{ID: 1, SectionID: 10, Text: "Pick one", Kind: exam.KindSingleSelect, Options: options(true, false, false, false), CorrectAnswers: []int{0}},
		{ID: 2, SectionID: 10, Text: "Pick many", Kind: exam.KindMultiSelect, Options: options(true, false, true, false), CorrectAnswers: []int{0, 2}},
		{ID: 3, SectionID: 10, Text: "Compute", Kind: exam.KindNumerical, NumericalAnswer: &answer},
	}
}

func correctFlags(q exam.Question) []bool {
	flags := make([]bool, len(q.Options))
	for i, o := range q.Options {
		flags[i] = o.IsCorrect
	}
	return flags
}

func TestSingleSelect_SettingCorrectClearsOthers(t *testing.T) {
	e := New(testQuestions())
	if err := e.Begin(1); err != nil {
		t.Fatal(err)
	}

	if err := e.SetOptionCorrect(2, true); err != nil {
		t.Fatal(err)
	}

	q, _ := e.Current()
	correct := exam.CorrectIndices(q.Options)
	if len(correct) != 1 || correct[0] != 2 {
		t.Errorf("correct options = %v, want [2]", correct)
	}
	if len(q.CorrectAnswers) != 1 || q.CorrectAnswers[0] != 2 {
		t.Errorf("CorrectAnswers = %v, want [2]", q.CorrectAnswers)
	}
}

func TestSingleSelect_UnsetLeavesOthers(t *testing.T) {
	e := New(testQuestions())
	_ = e.Begin(1)

	if err := e.SetOptionCorrect(0, false); err != nil {
		t.Fatal(err)
	}
	q, _ := e.Current()
	for i, c := range correctFlags(q) {
		if c {
			t.Errorf("option %d unexpectedly correct", i)
		}
	}
}

func TestMultiSelect_ToggleIsIndependent(t *testing.T) {
	e := New(testQuestions())
	_ = e.Begin(2)

	if err := e.ToggleOption(1); err != nil {
		t.Fatal(err)
	}

	q, _ := e.Current()
	want := []bool{true, true, true, false}
	for i, c := range correctFlags(q) {
		if c != want[i] {
			t.Errorf("option %d correct = %v, want %v", i, c, want[i])
		}
	}

	_ = e.ToggleOption(1)
	q, _ = e.Current()
	want = []bool{true, false, true, false}
	for i, c := range correctFlags(q) {
		if c != want[i] {
			t.Errorf("after second toggle option %d correct = %v, want %v", i, c, want[i])
		}
	}
}

func TestMutationsDoNotTouchCommittedList(t *testing.T) {
	e := New(testQuestions())
	_ = e.Begin(1)
	_ = e.SetText("Edited")
	_ = e.SetOptionText(0, "changed")
	_ = e.SetOptionCorrect(3, true)

	committed := e.Questions()[0]
	if committed.Text != "Pick one" || committed.Options[0].Text != "A" || !committed.Options[0].IsCorrect {
		t.Errorf("committed question changed before save: %+v", committed)
	}
}

func TestCancel_DiscardsWorkingCopy(t *testing.T) {
	e := New(testQuestions())
	_ = e.Begin(1)
	_ = e.SetText("Edited")
	e.Cancel()

	if e.Editing() {
		t.Error("expected viewing state after cancel")
	}
	if e.Questions()[0].Text != "Pick one" {
		t.Errorf("cancel modified committed text: %q", e.Questions()[0].Text)
	}
	if err := e.SetText("x"); !errors.Is(err, ErrNotEditing) {
		t.Errorf("expected ErrNotEditing, got %v", err)
	}
}

func TestBegin_SwitchDiscardsPreviousEdit(t *testing.T) {
	e := New(testQuestions())
	_ = e.Begin(1)
	_ = e.SetText("unsaved")

	if err := e.Begin(2); err != nil {
		t.Fatal(err)
	}
	if !e.IsEditing(2) || e.IsEditing(1) {
		t.Error("expected question 2 to be the only edit")
	}

	_ = e.Begin(1)
	q, _ := e.Current()
	if q.Text != "Pick one" {
		t.Errorf("discarded edit resurfaced: %q", q.Text)
	}

	if err := e.Begin(99); !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("expected ErrUnknownQuestion, got %v", err)
	}
}

func TestSave_NumericalPayload(t *testing.T) {
	qs := testQuestions()
	qs[2].Text = ""
	e := New(qs)
	u := &stubUpdater{}

	_ = e.Begin(3)
	if err := e.SetNumericalAnswer(42.5); err != nil {
		t.Fatal(err)
	}
	if err := e.Save(context.Background(), u); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if len(u.calls) != 1 {
		t.Fatalf("expected 1 update, got %d", len(u.calls))
	}
	body, err := json.Marshal(u.calls[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != `{"numerical_answer":42.5}` {
		t.Errorf("payload = %s, want {\"numerical_answer\":42.5}", body)
	}
	if e.Editing() {
		t.Error("expected viewing state after successful save")
	}
	if got := e.Questions()[2].NumericalAnswer; got == nil || *got != 42.5 {
		t.Errorf("committed answer = %v", got)
	}
}

func TestSave_SelectPayloadOmitsNumericalAnswer(t *testing.T) {
	qs := testQuestions()
	stray := 1.0
	qs[0].NumericalAnswer = &stray
	e := New(qs)
	u := &stubUpdater{}

	_ = e.Begin(1)
	_ = e.SetOptionCorrect(1, true)
	if err := e.Save(context.Background(), u); err != nil {
		t.Fatal(err)
	}

	upd := u.calls[0]
	if upd.NumericalAnswer != nil {
		t.Error("select question payload must not carry numerical_answer")
	}
	if upd.Text == nil || *upd.Text != "Pick one" {
		t.Errorf("payload text = %v", upd.Text)
	}
	if len(upd.Options) != 4 || !upd.Options[1].IsCorrect || upd.Options[0].IsCorrect {
		t.Errorf("payload options = %+v", upd.Options)
	}
	if !e.Questions()[0].Options[1].IsCorrect {
		t.Error("committed list not replaced after save")
	}
}

func TestSave_FailureKeepsEditing(t *testing.T) {
	e := New(testQuestions())
	u := &stubUpdater{err: errors.New("503 service unavailable")}

	_ = e.Begin(1)
	_ = e.SetText("Retry me")
	if err := e.Save(context.Background(), u); err == nil {
		t.Fatal("expected error")
	}

	q, ok := e.Current()
	if !ok || q.Text != "Retry me" {
		t.Errorf("working copy lost after failed save: %+v", q)
	}
	if e.Questions()[0].Text != "Pick one" {
		t.Error("committed list changed after failed save")
	}

	u.err = nil
	if err := e.Save(context.Background(), u); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if e.Questions()[0].Text != "Retry me" {
		t.Error("retry did not commit")
	}
}

func TestPrepareCommit_StaleID(t *testing.T) {
	e := New(testQuestions())
	_ = e.Begin(1)
	id, _, err := e.Prepare()
	if err != nil {
		t.Fatal(err)
	}
	_ = e.Begin(2)
	if e.Commit(id) {
		t.Error("commit for a question no longer edited must be ignored")
	}
	if !e.IsEditing(2) {
		t.Error("stale commit disturbed the current edit")
	}
}

func TestKindMismatch(t *testing.T) {
	e := New(testQuestions())
	_ = e.Begin(1)
	if err := e.SetNumericalAnswer(1); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("expected ErrKindMismatch, got %v", err)
	}
	_ = e.Begin(3)
	if err := e.SetOptionCorrect(0, true); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("expected ErrKindMismatch, got %v", err)
	}
	if err := e.SetOptionText(0, "x"); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("expected ErrKindMismatch, got %v", err)
	}
}

func TestOptionIndexOutOfRange(t *testing.T) {
	e := New(testQuestions())
	_ = e.Begin(2)
	if err := e.SetOptionCorrect(4, true); !errors.Is(err, ErrOptionIndex) {
		t.Errorf("expected ErrOptionIndex, got %v", err)
	}
	if err := e.ToggleOption(-1); !errors.Is(err, ErrOptionIndex) {
		t.Errorf("expected ErrOptionIndex, got %v", err)
	}
}

func TestUploadQuestionImage(t *testing.T) {
	e := New(testQuestions())
	up := &stubUploader{url: "https://cdn/q1.png"}
	f := media.File{Name: "q.png", ContentType: "image/png", Data: []byte("png")}

	if _, err := e.UploadQuestionImage(context.Background(), up, f); !errors.Is(err, ErrNotEditing) {
		t.Errorf("expected ErrNotEditing, got %v", err)
	}

	_ = e.Begin(1)
	url, err := e.UploadQuestionImage(context.Background(), up, f)
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://cdn/q1.png" || len(up.questionIDs) != 1 || up.questionIDs[0] != 1 {
		t.Errorf("upload url=%q ids=%v", url, up.questionIDs)
	}
	q, _ := e.Current()
	if q.ImageURL != url {
		t.Errorf("working image = %q", q.ImageURL)
	}
	if !e.Editing() {
		t.Error("upload must not leave the editing state")
	}
	if e.Questions()[0].ImageURL != "" {
		t.Error("upload must not save the question")
	}
}

func TestUploadOptionImage(t *testing.T) {
	e := New(testQuestions())
	up := &stubUploader{url: "https://cdn/opt.png"}
	f := media.File{Name: "o.png", ContentType: "image/png"}

	_ = e.Begin(2)
	if _, err := e.UploadOptionImage(context.Background(), up, 2, f); err != nil {
		t.Fatal(err)
	}
	if len(up.optionSections) != 1 || up.optionSections[0] != 10 {
		t.Errorf("option upload sections = %v, want [10]", up.optionSections)
	}
	q, _ := e.Current()
	if q.Options[2].ImageURL != "https://cdn/opt.png" {
		t.Errorf("option image = %q", q.Options[2].ImageURL)
	}

	up.err = errors.New("upload failed")
	if _, err := e.UploadOptionImage(context.Background(), up, 1, f); err == nil {
		t.Error("expected upload error")
	}
	q, _ = e.Current()
	if q.Options[1].ImageURL != "" {
		t.Error("failed upload changed the working copy")
	}
}

func TestApplyImage_IgnoredAfterCancel(t *testing.T) {
	e := New(testQuestions())
	_ = e.Begin(1)
	e.Cancel()
	if e.ApplyImage(ImageResult{QuestionID: 1, Option: QuestionImage, URL: "x"}) {
		t.Error("apply after cancel should be ignored")
	}
	_ = e.Begin(1)
	if !e.ApplyImage(ImageResult{QuestionID: 1, Option: 0, URL: "y"}) {
		t.Error("apply during edit should succeed")
	}
}

func TestSingleSelect_ToggleCorrectOptionKeepsIt(t *testing.T) {
	e := New(testQuestions())
	_ = e.Begin(1)

	if err := e.ToggleOption(0); err != nil {
		t.Fatal(err)
	}
	q, _ := e.Current()
	want := []bool{true, false, false, false}
	for i, c := range correctFlags(q) {
		if c != want[i] {
			t.Errorf("option %d correct = %v, want %v", i, c, want[i])
		}
	}
	if len(q.CorrectAnswers) != 1 || q.CorrectAnswers[0] != 0 {
		t.Errorf("CorrectAnswers = %v, want [0]", q.CorrectAnswers)
	}

	_ = e.ToggleOption(2)
	q, _ = e.Current()
	want = []bool{false, false, true, false}
	for i, c := range correctFlags(q) {
		if c != want[i] {
			t.Errorf("after moving: option %d correct = %v, want %v", i, c, want[i])
		}
	}
}

func TestToggleOption_NumericalRejected(t *testing.T) {
	e := New(testQuestions())
	_ = e.Begin(3)
	if err := e.ToggleOption(0); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("expected ErrKindMismatch, got %v", err)
	}
}

func TestSaveCall(t *testing.T) {
	e := New(testQuestions())
	u := &stubUpdater{err: errors.New("boom")}

	if _, err := e.SaveCall(u); !errors.Is(err, ErrNotEditing) {
		t.Errorf("expected ErrNotEditing, got %v", err)
	}

	_ = e.Begin(2)
	_ = e.SetText("Pick every prime")
	call, err := e.SaveCall(u)
	if err != nil {
		t.Fatal(err)
	}
	if len(u.calls) != 0 {
		t.Fatal("SaveCall must not submit before the call runs")
	}

	id, err := call(context.Background())
	if err == nil || id != 2 {
		t.Fatalf("id = %d, err = %v; want id 2 and an error", id, err)
	}
	if !e.Editing() {
		t.Error("failed save must keep the edit")
	}

	u.err = nil
	id, err = call(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !e.Commit(id) {
		t.Fatal("commit after a successful call should apply")
	}
	if e.Questions()[1].Text != "Pick every prime" {
		t.Errorf("committed text = %q", e.Questions()[1].Text)
	}
}

func TestImageCall_Checks(t *testing.T) {
	e := New(testQuestions())
	up := &stubUploader{url: "https://cdn/x.png"}

	if _, err := e.ImageCall(up, QuestionImage); !errors.Is(err, ErrNotEditing) {
		t.Errorf("expected ErrNotEditing, got %v", err)
	}

	_ = e.Begin(3)
	if _, err := e.ImageCall(up, 0); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("option image on numerical: expected ErrKindMismatch, got %v", err)
	}
	if _, err := e.ImageCall(up, QuestionImage); err != nil {
		t.Errorf("question image on numerical: %v", err)
	}

	_ = e.Begin(1)
	if _, err := e.ImageCall(up, 4); !errors.Is(err, ErrOptionIndex) {
		t.Errorf("expected ErrOptionIndex, got %v", err)
	}
}

func TestImageCall_RejectsNonImageBeforeUpload(t *testing.T) {
	e := New(testQuestions())
	up := &stubUploader{url: "https://cdn/x.png"}
	_ = e.Begin(1)

	call, err := e.ImageCall(up, 1)
	if err != nil {
		t.Fatal(err)
	}
	res, err := call(context.Background(), media.File{Name: "notes.txt", ContentType: "text/plain"})
	if !errors.Is(err, media.ErrUnsupported) {
		t.Fatalf("expected media.ErrUnsupported, got %v", err)
	}
	if res.QuestionID != 1 || res.Option != 1 {
		t.Errorf("result target = %+v", res)
	}
	if len(up.optionSections) != 0 {
		t.Error("uploader must not be called for a non-image")
	}
}

func TestImageCall_ResultIgnoredAfterSwitchingQuestion(t *testing.T) {
	e := New(testQuestions())
	up := &stubUploader{url: "https://cdn/x.png"}
	_ = e.Begin(1)

	call, err := e.ImageCall(up, QuestionImage)
	if err != nil {
		t.Fatal(err)
	}
	_ = e.Begin(2)
	res, err := call(context.Background(), media.File{Name: "x.png", ContentType: "image/png"})
	if err != nil {
		t.Fatal(err)
	}
	if e.ApplyImage(res) {
		t.Error("result for question 1 must not apply while editing question 2")
	}
	q, _ := e.Current()
	if q.ImageURL != "" {
		t.Errorf("question 2 image = %q", q.ImageURL)
	}
}
