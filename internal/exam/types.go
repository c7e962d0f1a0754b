package exam

// Option is one answer choice of a select question. Options are identified by
// their position in the owning slice; reordering them is unsupported.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
	ImageURL  string `json:"image_url,omitempty"`
}

// SectionCreate describes a section as composed by the user before the exam
// exists on the server.
type SectionCreate struct {
	Name                   string       `json:"name" yaml:"name"`
	Topics                 string       `json:"topics,omitempty" yaml:"topics,omitempty"`
	SyllabusFileURI        string       `json:"syllabus_file_uri,omitempty" yaml:"syllabus_file_uri,omitempty"`
	TotalQuestions         int          `json:"total_questions" yaml:"total_questions"`
	QuestionsToAttempt     int          `json:"questions_to_attempt" yaml:"questions_to_attempt"`
	MarksPerQuestion       float64      `json:"marks_per_question" yaml:"marks_per_question"`
	NegativeMarkingAllowed bool         `json:"negative_marking_allowed" yaml:"negative_marking_allowed"`
	NegativeMarks          float64      `json:"negative_marks" yaml:"negative_marks"`
	QuestionKind           QuestionKind `json:"question_type" yaml:"question_type"`
}

// Marks returns the marks this section contributes to the exam total.
func (s SectionCreate) Marks() float64 {
	return float64(s.QuestionsToAttempt) * s.MarksPerQuestion
}

// Section is a section as stored by the server.
type Section struct {
	SectionCreate
	ID     int64 `json:"id"`
	ExamID int64 `json:"exam_id"`
}

// ExamCreate is the payload for creating an exam.
type ExamCreate struct {
	Name        string          `json:"name"`
	TimeMinutes int             `json:"time_minutes"`
	Sections    []SectionCreate `json:"sections"`
}

// Exam is an exam as returned by the server.
type Exam struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	TotalMarks  float64   `json:"total_marks"`
	TimeMinutes int       `json:"time_minutes"`
	CreatedAt   string    `json:"created_at"`
	Sections    []Section `json:"sections"`
}

// Section returns the section with the given id.
func (e *Exam) Section(id int64) (Section, bool) {
	for _, s := range e.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// RawQuestion is the wire shape of a question. Options and CorrectAnswer are
// JSON documents encoded as strings and must go through ParseQuestion before
// use.
type RawQuestion struct {
	ID              int64        `json:"id"`
	SectionID       int64        `json:"section_id"`
	Text            string       `json:"question_text"`
	Kind            QuestionKind `json:"question_type"`
	Options         *string      `json:"options,omitempty"`
	CorrectAnswer   *string      `json:"correct_answer,omitempty"`
	NumericalAnswer *float64     `json:"numerical_answer,omitempty"`
	ImageURL        string       `json:"image_url,omitempty"`
	LastModified    string       `json:"last_modified,omitempty"`
}

// Question is a RawQuestion with its encoded fields decoded. A nil Options or
// CorrectAnswers means the field was absent or could not be decoded.
type Question struct {
	ID              int64
	SectionID       int64
	Text            string
	Kind            QuestionKind
	Options         []Option
	CorrectAnswers  []int
	NumericalAnswer *float64
	ImageURL        string
	LastModified    string
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	c := q
	if q.Options != nil {
		c.Options = make([]Option, len(q.Options))
		copy(c.Options, q.Options)
	}
	if q.CorrectAnswers != nil {
		c.CorrectAnswers = make([]int, len(q.CorrectAnswers))
		copy(c.CorrectAnswers, q.CorrectAnswers)
	}
	if q.NumericalAnswer != nil {
		v := *q.NumericalAnswer
		c.NumericalAnswer = &v
	}
	return c
}

// QuestionUpdate is a sparse update. Unset fields are left untouched by the
// server.
type QuestionUpdate struct {
	Text            *string  `json:"question_text,omitempty"`
	Options         []Option `json:"options,omitempty"`
	NumericalAnswer *float64 `json:"numerical_answer,omitempty"`
}

// IsEmpty reports whether the update carries no fields.
func (u QuestionUpdate) IsEmpty() bool {
	return u.Text == nil && u.Options == nil && u.NumericalAnswer == nil
}

// GenerateResult acknowledges a question generation request.
type GenerateResult struct {
	Message string `json:"message"`
}

// ImageUpload is returned after an image upload.
type ImageUpload struct {
	ImageURL string `json:"image_url"`
}

// SyllabusUpload is returned after a syllabus upload.
type SyllabusUpload struct {
	FileURI string `json:"file_uri"`
}
