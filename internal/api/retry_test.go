package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpaper/qpaper/internal/exam"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func unavailable(op string) MockResponse {
	return MockResponse{Err: &ErrUnavailable{Op: op, Err: errors.New("connection refused")}}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockClient().On(OpListExams,
		unavailable(OpListExams),
		MockResponse{Err: &ErrStatus{Op: OpListExams, StatusCode: http.StatusBadGateway}},
		MockResponse{Value: []exam.Exam{{ID: 1}}},
	)
	c := WithReadRetry(mock, retryConfig())

	exams, err := c.ListExams(context.Background())
	require.NoError(t, err)
	assert.Len(t, exams, 1)
	assert.Equal(t, 3, mock.CallCount(OpListExams))
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	mock := NewMockClient().On(OpGetExam,
		unavailable(OpGetExam), unavailable(OpGetExam), unavailable(OpGetExam), unavailable(OpGetExam),
	)
	c := WithReadRetry(mock, retryConfig())

	_, err := c.GetExam(context.Background(), 7)
	var ue *ErrUnavailable
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, 3, mock.CallCount(OpGetExam))
}

func TestRetry_ClientErrorsNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not found", &ErrStatus{Op: OpGetQuestion, StatusCode: http.StatusNotFound}},
		{"bad request", &ErrStatus{Op: OpGetQuestion, StatusCode: http.StatusBadRequest}},
		{"decode", &ErrDecodeResponse{Op: OpGetQuestion, Err: errors.New("bad json")}},
		{"canceled", &ErrUnavailable{Op: OpGetQuestion, Err: context.Canceled}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockClient().On(OpGetQuestion, MockResponse{Err: tt.err})
			c := WithReadRetry(mock, retryConfig())

			_, err := c.GetQuestion(context.Background(), 1)
			require.Error(t, err)
			assert.Equal(t, 1, mock.CallCount(OpGetQuestion))
		})
	}
}

func TestRetry_WritesNeverRetried(t *testing.T) {
	mock := NewMockClient().
		On(OpCreateExam, unavailable(OpCreateExam), MockResponse{Value: &exam.Exam{ID: 1}}).
		On(OpGenerateQuestions, unavailable(OpGenerateQuestions)).
		On(OpUpdateQuestion, unavailable(OpUpdateQuestion))
	c := WithReadRetry(mock, retryConfig())
	ctx := context.Background()

	_, err := c.CreateExam(ctx, exam.ExamCreate{Name: "x"})
	assert.Error(t, err)
	_, err = c.GenerateQuestions(ctx, 1)
	assert.Error(t, err)
	_, err = c.UpdateQuestion(ctx, 1, exam.QuestionUpdate{})
	assert.Error(t, err)

	assert.Equal(t, 1, mock.CallCount(OpCreateExam))
	assert.Equal(t, 1, mock.CallCount(OpGenerateQuestions))
	assert.Equal(t, 1, mock.CallCount(OpUpdateQuestion))
}

func TestRetry_ContextCancelledDuringBackoff(t *testing.T) {
	mock := NewMockClient().On(OpListSectionQuestions, unavailable(OpListSectionQuestions), unavailable(OpListSectionQuestions))
	cfg := retryConfig()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour
	c := WithReadRetry(mock, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := c.ListSectionQuestions(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount(OpListSectionQuestions))
}

func TestBackoff_Bounds(t *testing.T) {
	cfg := RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: 300 * time.Millisecond, Multiplier: 2}
	for attempt := 0; attempt < 5; attempt++ {
		d := backoff(cfg, attempt)
		assert.LessOrEqual(t, d, 360*time.Millisecond, "attempt %d", attempt)
		assert.GreaterOrEqual(t, d, 80*time.Millisecond, "attempt %d", attempt)
	}
}
