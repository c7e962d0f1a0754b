package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/qpaper/qpaper/internal/exam"
	"github.com/qpaper/qpaper/internal/media"
)

// MockResponse is a canned result for one MockClient call. Value must have
// the operation's result type, e.g. []exam.Exam for ListExams.
type MockResponse struct {
	Value any
	Err   error
}

// MockCall records one call made to a MockClient.
type MockCall struct {
	Op   string
	ID   int64
	Body any
}

// MockClient is a deterministic Client for testing. It returns canned
// responses per operation in FIFO order and records all calls.
type MockClient struct {
	mu        sync.Mutex
	responses map[string][]MockResponse
	Calls     []MockCall
}

// NewMockClient creates an empty MockClient.
func NewMockClient() *MockClient {
	return &MockClient{responses: make(map[string][]MockResponse)}
}

// On queues canned responses for op.
func (m *MockClient) On(op string, resps ...MockResponse) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[op] = append(m.responses[op], resps...)
	return m
}

// CallCount returns the number of calls made to op.
func (m *MockClient) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// LastCall returns the most recent call to op.
func (m *MockClient) LastCall(op string) (MockCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Calls) - 1; i >= 0; i-- {
		if m.Calls[i].Op == op {
			return m.Calls[i], true
		}
	}
	return MockCall{}, false
}

// next records the call and pops the next response for op. An empty queue
// yields ErrUnavailable.
func (m *MockClient) next(call MockCall) MockResponse {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, call)

	queue := m.responses[call.Op]
	if len(queue) == 0 {
		return MockResponse{Err: &ErrUnavailable{Op: call.Op}}
	}
	m.responses[call.Op] = queue[1:]
	return queue[0]
}

func mockResult[T any](m *MockClient, call MockCall) (T, error) {
	var zero T
	resp := m.next(call)
	if resp.Err != nil {
		return zero, resp.Err
	}
	if resp.Value == nil {
		return zero, nil
	}
	v, ok := resp.Value.(T)
	if !ok {
		return zero, fmt.Errorf("mock %s: response has type %T, want %T", call.Op, resp.Value, zero)
	}
	return v, nil
}

func (m *MockClient) ListExams(_ context.Context) ([]exam.Exam, error) {
	return mockResult[[]exam.Exam](m, MockCall{Op: OpListExams})
}

func (m *MockClient) GetExam(_ context.Context, id int64) (*exam.Exam, error) {
	return mockResult[*exam.Exam](m, MockCall{Op: OpGetExam, ID: id})
}

func (m *MockClient) CreateExam(_ context.Context, in exam.ExamCreate) (*exam.Exam, error) {
	return mockResult[*exam.Exam](m, MockCall{Op: OpCreateExam, Body: in})
}

func (m *MockClient) GenerateQuestions(_ context.Context, sectionID int64) (*exam.GenerateResult, error) {
	return mockResult[*exam.GenerateResult](m, MockCall{Op: OpGenerateQuestions, ID: sectionID})
}

func (m *MockClient) ListSectionQuestions(_ context.Context, sectionID int64) ([]exam.RawQuestion, error) {
	return mockResult[[]exam.RawQuestion](m, MockCall{Op: OpListSectionQuestions, ID: sectionID})
}

func (m *MockClient) GetQuestion(_ context.Context, id int64) (*exam.RawQuestion, error) {
	return mockResult[*exam.RawQuestion](m, MockCall{Op: OpGetQuestion, ID: id})
}

func (m *MockClient) UpdateQuestion(_ context.Context, id int64, upd exam.QuestionUpdate) (*exam.RawQuestion, error) {
	return mockResult[*exam.RawQuestion](m, MockCall{Op: OpUpdateQuestion, ID: id, Body: upd})
}

func (m *MockClient) UploadQuestionImage(_ context.Context, questionID int64, f media.File) (*exam.ImageUpload, error) {
	return mockResult[*exam.ImageUpload](m, MockCall{Op: OpUploadQuestionImage, ID: questionID, Body: f})
}

func (m *MockClient) UploadOptionImage(_ context.Context, sectionID int64, f media.File) (*exam.ImageUpload, error) {
	return mockResult[*exam.ImageUpload](m, MockCall{Op: OpUploadOptionImage, ID: sectionID, Body: f})
}

func (m *MockClient) UploadSyllabus(_ context.Context, sectionID int64, f media.File) (*exam.SyllabusUpload, error) {
	return mockResult[*exam.SyllabusUpload](m, MockCall{Op: OpUploadSyllabus, ID: sectionID, Body: f})
}
