package questions

import (
	"github.com/qpaper/qpaper/internal/editor"
	"github.com/qpaper/qpaper/internal/exam"
)

// questionsLoadedMsg carries the parsed questions of the section.
type questionsLoadedMsg struct {
	Questions []exam.Question
	Err       error
}

// questionSavedMsg reports the result of an update for question ID.
type questionSavedMsg struct {
	ID  int64
	Err error
}

// imageUploadedMsg reports an image upload. Result is empty when the file
// could not be read.
type imageUploadedMsg struct {
	Result editor.ImageResult
	Err    error
}
