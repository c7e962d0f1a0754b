package api

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qpaper/qpaper/internal/exam"
	"github.com/qpaper/qpaper/internal/media"
	"github.com/qpaper/qpaper/internal/store"
)

// LoggingClient is a decorator that records every call as a request event
// and writes one log line per call.
type LoggingClient struct {
	inner     Client
	eventRepo store.EventRepo
	log       *zap.Logger
}

// WithLogging wraps a Client with event recording and logging. repo and log
// may be nil.
func WithLogging(c Client, repo store.EventRepo, log *zap.Logger) Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingClient{inner: c, eventRepo: repo, log: log}
}

// begin attaches a CallInfo to ctx and returns the function that records the
// finished call.
func (l *LoggingClient) begin(ctx context.Context, op string) (context.Context, func(error)) {
	info := &CallInfo{}
	start := time.Now()
	return withCallInfo(ctx, info), func(err error) {
		l.record(ctx, op, info, time.Since(start), err)
	}
}

func (l *LoggingClient) record(ctx context.Context, op string, info *CallInfo, elapsed time.Duration, err error) {
	data := store.RequestEventData{
		Op:         op,
		Method:     info.Method,
		Path:       info.Path,
		RequestID:  info.RequestID,
		StatusCode: info.StatusCode,
		LatencyMs:  elapsed.Milliseconds(),
		Success:    err == nil,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	fields := []zap.Field{
		zap.String("op", op),
		zap.String("method", info.Method),
		zap.String("path", info.Path),
		zap.Int("status", info.StatusCode),
		zap.Duration("latency", elapsed),
		zap.String("request_id", info.RequestID),
	}
	if err != nil {
		l.log.Warn("api request failed", append(fields, zap.Error(err))...)
	} else {
		l.log.Info("api request", fields...)
	}

	if l.eventRepo == nil {
		return
	}
	// Record the event but don't fail the call if recording fails.
	if logErr := l.eventRepo.AppendRequest(context.WithoutCancel(ctx), data); logErr != nil {
		l.log.Warn("failed to record request event", zap.String("op", op), zap.Error(logErr))
	}
}

func (l *LoggingClient) ListExams(ctx context.Context) ([]exam.Exam, error) {
	ctx, done := l.begin(ctx, OpListExams)
	exams, err := l.inner.ListExams(ctx)
	done(err)
	return exams, err
}

func (l *LoggingClient) GetExam(ctx context.Context, id int64) (*exam.Exam, error) {
	ctx, done := l.begin(ctx, OpGetExam)
	e, err := l.inner.GetExam(ctx, id)
	done(err)
	return e, err
}

func (l *LoggingClient) CreateExam(ctx context.Context, in exam.ExamCreate) (*exam.Exam, error) {
	ctx, done := l.begin(ctx, OpCreateExam)
	e, err := l.inner.CreateExam(ctx, in)
	done(err)
	return e, err
}

func (l *LoggingClient) GenerateQuestions(ctx context.Context, sectionID int64) (*exam.GenerateResult, error) {
	ctx, done := l.begin(ctx, OpGenerateQuestions)
	res, err := l.inner.GenerateQuestions(ctx, sectionID)
	done(err)
	return res, err
}

func (l *LoggingClient) ListSectionQuestions(ctx context.Context, sectionID int64) ([]exam.RawQuestion, error) {
	ctx, done := l.begin(ctx, OpListSectionQuestions)
	qs, err := l.inner.ListSectionQuestions(ctx, sectionID)
	done(err)
	return qs, err
}

func (l *LoggingClient) GetQuestion(ctx context.Context, id int64) (*exam.RawQuestion, error) {
	ctx, done := l.begin(ctx, OpGetQuestion)
	q, err := l.inner.GetQuestion(ctx, id)
	done(err)
	return q, err
}

func (l *LoggingClient) UpdateQuestion(ctx context.Context, id int64, upd exam.QuestionUpdate) (*exam.RawQuestion, error) {
	ctx, done := l.begin(ctx, OpUpdateQuestion)
	q, err := l.inner.UpdateQuestion(ctx, id, upd)
	done(err)
	return q, err
}

func (l *LoggingClient) UploadQuestionImage(ctx context.Context, questionID int64, f media.File) (*exam.ImageUpload, error) {
	ctx, done := l.begin(ctx, OpUploadQuestionImage)
	res, err := l.inner.UploadQuestionImage(ctx, questionID, f)
	done(err)
	return res, err
}

func (l *LoggingClient) UploadOptionImage(ctx context.Context, sectionID int64, f media.File) (*exam.ImageUpload, error) {
	ctx, done := l.begin(ctx, OpUploadOptionImage)
	res, err := l.inner.UploadOptionImage(ctx, sectionID, f)
	done(err)
	return res, err
}

func (l *LoggingClient) UploadSyllabus(ctx context.Context, sectionID int64, f media.File) (*exam.SyllabusUpload, error) {
	ctx, done := l.begin(ctx, OpUploadSyllabus)
	res, err := l.inner.UploadSyllabus(ctx, sectionID, f)
	done(err)
	return res, err
}
