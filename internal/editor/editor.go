// Package editor holds the question list of a section screen together with
// the single question currently being edited.
package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/qpaper/qpaper/internal/exam"
	"github.com/qpaper/qpaper/internal/media"
)

var (
	// ErrNotEditing is returned by mutations when no question is being edited.
	ErrNotEditing = errors.New("no question is being edited")

	// ErrOptionIndex is returned for an option position that does not exist.
	ErrOptionIndex = errors.New("option index out of range")

	// ErrKindMismatch is returned when a mutation does not apply to the
	// question kind, e.g. setting a numerical answer on a select question.
	ErrKindMismatch = errors.New("field does not apply to this question type")

	// ErrUnknownQuestion is returned by Begin for an id not in the list.
	ErrUnknownQuestion = errors.New("question not found")
)

// Updater saves a question update.
type Updater interface {
	UpdateQuestion(ctx context.Context, id int64, upd exam.QuestionUpdate) (*exam.RawQuestion, error)
}

// Uploader stores question and option images.
type Uploader interface {
	UploadQuestionImage(ctx context.Context, questionID int64, f media.File) (*exam.ImageUpload, error)
	UploadOptionImage(ctx context.Context, sectionID int64, f media.File) (*exam.ImageUpload, error)
}

// edit is the working copy of the question being edited.
type edit struct {
	index   int
	working exam.Question
}

// Editor is either viewing the list or editing exactly one question. The
// committed list is only replaced by a successful save.
type Editor struct {
	questions []exam.Question
	current   *edit
}

// New creates an editor in the viewing state.
func New(questions []exam.Question) *Editor {
	return &Editor{questions: questions}
}

// Questions returns the committed question list.
func (e *Editor) Questions() []exam.Question {
	return e.questions
}

// Len returns the number of questions.
func (e *Editor) Len() int { return len(e.questions) }

// Editing reports whether a question is being edited.
func (e *Editor) Editing() bool { return e.current != nil }

// IsEditing reports whether the question with id is being edited.
func (e *Editor) IsEditing(id int64) bool {
	return e.current != nil && e.current.working.ID == id
}

// Current returns the working copy, or false when viewing.
func (e *Editor) Current() (exam.Question, bool) {
	if e.current == nil {
		return exam.Question{}, false
	}
	return e.current.working, true
}

// Begin starts editing the question with id. Unsaved changes to any other
// question are discarded.
func (e *Editor) Begin(id int64) error {
	for i, q := range e.questions {
		if q.ID == id {
			e.current = &edit{index: i, working: q.Clone()}
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownQuestion, id)
}

// Cancel discards the working copy.
func (e *Editor) Cancel() {
	e.current = nil
}

// SetText replaces the question text.
func (e *Editor) SetText(text string) error {
	return e.mutate(func(q *exam.Question) error {
		q.Text = text
		return nil
	})
}

// SetImageURL replaces the question image.
func (e *Editor) SetImageURL(url string) error {
	return e.mutate(func(q *exam.Question) error {
		q.ImageURL = url
		return nil
	})
}

// SetNumericalAnswer sets the answer of a numerical question.
func (e *Editor) SetNumericalAnswer(v float64) error {
	return e.mutate(func(q *exam.Question) error {
		if !q.Kind.HasNumericalAnswer() {
			return ErrKindMismatch
		}
		q.NumericalAnswer = &v
		return nil
	})
}

// SetOptionText replaces the text of option i.
func (e *Editor) SetOptionText(i int, text string) error {
	return e.mutateOption(i, func(o *exam.Option) { o.Text = text })
}

// SetOptionImageURL replaces the image of option i.
func (e *Editor) SetOptionImageURL(i int, url string) error {
	return e.mutateOption(i, func(o *exam.Option) { o.ImageURL = url })
}

// SetOptionCorrect marks option i correct or incorrect. For single select
// questions marking an option correct clears every other option in the same
// step; multi select options are independent.
func (e *Editor) SetOptionCorrect(i int, correct bool) error {
	return e.mutate(func(q *exam.Question) error {
		if !q.Kind.HasOptions() {
			return ErrKindMismatch
		}
		if i < 0 || i >= len(q.Options) {
			return ErrOptionIndex
		}
		opts := make([]exam.Option, len(q.Options))
		copy(opts, q.Options)
		if q.Kind == exam.KindSingleSelect && correct {
			for j := range opts {
				opts[j].IsCorrect = false
			}
		}
		opts[i].IsCorrect = correct
		q.Options = opts
		q.CorrectAnswers = exam.CorrectIndices(opts)
		return nil
	})
}

// ToggleOption flips the correctness of option i. A single select question
// behaves like a radio group: toggling its correct option leaves it correct,
// so the answer can be moved but never cleared.
func (e *Editor) ToggleOption(i int) error {
	if e.current == nil {
		return ErrNotEditing
	}
	q := e.current.working
	if !q.Kind.HasOptions() {
		return ErrKindMismatch
	}
	if i < 0 || i >= len(q.Options) {
		return ErrOptionIndex
	}
	if q.Kind == exam.KindSingleSelect && q.Options[i].IsCorrect {
		return nil
	}
	return e.SetOptionCorrect(i, !q.Options[i].IsCorrect)
}

// Payload builds the sparse update for the working copy. Only the fields that
// apply to the question kind are included.
func (e *Editor) Payload() (exam.QuestionUpdate, error) {
	if e.current == nil {
		return exam.QuestionUpdate{}, ErrNotEditing
	}
	return payloadFor(e.current.working), nil
}

func payloadFor(q exam.Question) exam.QuestionUpdate {
	var upd exam.QuestionUpdate
	if q.Text != "" {
		text := q.Text
		upd.Text = &text
	}
	if q.Kind.HasOptions() && q.Options != nil {
		upd.Options = make([]exam.Option, len(q.Options))
		copy(upd.Options, q.Options)
	}
	if q.Kind.HasNumericalAnswer() && q.NumericalAnswer != nil {
		v := *q.NumericalAnswer
		upd.NumericalAnswer = &v
	}
	return upd
}

// Prepare returns the id and payload to submit for the working copy. Callers
// that run the transport call asynchronously pass the id back to Commit on
// success.
func (e *Editor) Prepare() (int64, exam.QuestionUpdate, error) {
	upd, err := e.Payload()
	if err != nil {
		return 0, upd, err
	}
	return e.current.working.ID, upd, nil
}

// Commit replaces the committed question with the working copy and returns
// to viewing. It is a no-op returning false when id is no longer the question
// being edited.
func (e *Editor) Commit(id int64) bool {
	if e.current == nil || e.current.working.ID != id {
		return false
	}
	e.questions[e.current.index] = e.current.working
	e.current = nil
	return true
}

// SaveCall captures the working copy's id and update payload and returns the
// call that submits them through u. The call does not touch the editor, so
// it may run outside the UI loop; it reports the question id even on
// failure. Pass the id to Commit once it succeeds.
func (e *Editor) SaveCall(u Updater) (func(context.Context) (int64, error), error) {
	id, upd, err := e.Prepare()
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) (int64, error) {
		if _, err := u.UpdateQuestion(ctx, id, upd); err != nil {
			return id, fmt.Errorf("update question %d: %w", id, err)
		}
		return id, nil
	}, nil
}

// Save submits the working copy through u. On failure the editor stays in
// the editing state with the working copy intact.
func (e *Editor) Save(ctx context.Context, u Updater) error {
	call, err := e.SaveCall(u)
	if err != nil {
		return err
	}
	id, err := call(ctx)
	if err != nil {
		return err
	}
	e.Commit(id)
	return nil
}

// QuestionImage is the Option value of an ImageResult for the question's own
// image.
const QuestionImage = -1

// ImageResult is a finished image upload for question QuestionID. Option is
// the option position, or QuestionImage.
type ImageResult struct {
	QuestionID int64
	Option     int
	URL        string
}

// ImageCall checks that option (or QuestionImage) of the working copy can
// take an image and returns the call that uploads a file for it through u.
// The call rejects non-image files before reaching u and does not touch the
// editor; hand its result to ApplyImage. The result names the target even on
// failure.
func (e *Editor) ImageCall(u Uploader, option int) (func(context.Context, media.File) (ImageResult, error), error) {
	if e.current == nil {
		return nil, ErrNotEditing
	}
	q := e.current.working
	if option != QuestionImage {
		if !q.Kind.HasOptions() {
			return nil, ErrKindMismatch
		}
		if option < 0 || option >= len(q.Options) {
			return nil, ErrOptionIndex
		}
	}

	return func(ctx context.Context, f media.File) (ImageResult, error) {
		res := ImageResult{QuestionID: q.ID, Option: option}
		if err := media.RequireImage(f); err != nil {
			return res, err
		}
		var (
			up  *exam.ImageUpload
			err error
		)
		if option == QuestionImage {
			up, err = u.UploadQuestionImage(ctx, q.ID, f)
			if err != nil {
				return res, fmt.Errorf("upload image for question %d: %w", q.ID, err)
			}
		} else {
			up, err = u.UploadOptionImage(ctx, q.SectionID, f)
			if err != nil {
				return res, fmt.Errorf("upload image for option %d: %w", option+1, err)
			}
		}
		res.URL = up.ImageURL
		return res, nil
	}, nil
}

// ApplyImage points the working copy at an uploaded image. It returns false
// when the question is no longer being edited.
func (e *Editor) ApplyImage(r ImageResult) bool {
	if !e.IsEditing(r.QuestionID) {
		return false
	}
	if r.Option == QuestionImage {
		return e.SetImageURL(r.URL) == nil
	}
	return e.SetOptionImageURL(r.Option, r.URL) == nil
}

// UploadQuestionImage uploads f and points the working copy at it. It does
// not save the question.
func (e *Editor) UploadQuestionImage(ctx context.Context, u Uploader, f media.File) (string, error) {
	return e.upload(ctx, u, QuestionImage, f)
}

// UploadOptionImage uploads f as the image of option i. It does not save the
// question.
func (e *Editor) UploadOptionImage(ctx context.Context, u Uploader, i int, f media.File) (string, error) {
	return e.upload(ctx, u, i, f)
}

func (e *Editor) upload(ctx context.Context, u Uploader, option int, f media.File) (string, error) {
	call, err := e.ImageCall(u, option)
	if err != nil {
		return "", err
	}
	res, err := call(ctx, f)
	if err != nil {
		return "", err
	}
	e.ApplyImage(res)
	return res.URL, nil
}

func (e *Editor) mutate(fn func(q *exam.Question) error) error {
	if e.current == nil {
		return ErrNotEditing
	}
	next := e.current.working.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	e.current.working = next
	return nil
}

func (e *Editor) mutateOption(i int, fn func(o *exam.Option)) error {
	return e.mutate(func(q *exam.Question) error {
		if !q.Kind.HasOptions() {
			return ErrKindMismatch
		}
		if i < 0 || i >= len(q.Options) {
			return ErrOptionIndex
		}
		fn(&q.Options[i])
		return nil
	})
}
