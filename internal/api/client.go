// Package api is the transport adapter for the exam generation service.
package api

import (
	"context"

	"github.com/qpaper/qpaper/internal/exam"
	"github.com/qpaper/qpaper/internal/media"
)

// Operation names recorded in the request event log.
const (
	OpListExams            = "ListExams"
	OpGetExam              = "GetExam"
	OpCreateExam           = "CreateExam"
	OpGenerateQuestions    = "GenerateQuestions"
	OpListSectionQuestions = "ListSectionQuestions"
	OpGetQuestion          = "GetQuestion"
	OpUpdateQuestion       = "UpdateQuestion"
	OpUploadQuestionImage  = "UploadQuestionImage"
	OpUploadOptionImage    = "UploadOptionImage"
	OpUploadSyllabus       = "UploadSyllabus"
)

// Client is the remote exam API.
type Client interface {
	ListExams(ctx context.Context) ([]exam.Exam, error)
	GetExam(ctx context.Context, id int64) (*exam.Exam, error)
	CreateExam(ctx context.Context, in exam.ExamCreate) (*exam.Exam, error)

	// GenerateQuestions asks the service to generate the questions of a
	// section. It blocks until generation finishes.
	GenerateQuestions(ctx context.Context, sectionID int64) (*exam.GenerateResult, error)

	ListSectionQuestions(ctx context.Context, sectionID int64) ([]exam.RawQuestion, error)
	GetQuestion(ctx context.Context, id int64) (*exam.RawQuestion, error)
	UpdateQuestion(ctx context.Context, id int64, upd exam.QuestionUpdate) (*exam.RawQuestion, error)

	UploadQuestionImage(ctx context.Context, questionID int64, f media.File) (*exam.ImageUpload, error)
	UploadOptionImage(ctx context.Context, sectionID int64, f media.File) (*exam.ImageUpload, error)
	UploadSyllabus(ctx context.Context, sectionID int64, f media.File) (*exam.SyllabusUpload, error)
}
