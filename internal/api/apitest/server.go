// Package apitest provides an in-memory fake of the exam service for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/qpaper/qpaper/internal/api"
	"github.com/qpaper/qpaper/internal/exam"
)

// Request is a request received by the fake.
type Request struct {
	Op        string
	Method    string
	Path      string
	RequestID string

	// Filled for multipart uploads.
	FileName        string
	FileContentType string
}

type failure struct {
	status int
	detail string
}

// Server is a fake exam service. Generated questions are deterministic: each
// section gets TotalQuestions questions of its kind.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	exams      map[int64]*exam.Exam
	questions  map[int64]*exam.RawQuestion
	order      []int64
	nextExam   int64
	nextSect   int64
	nextQ      int64
	failures   map[string][]failure
	requests   []Request
	generation time.Duration
}

// New starts a fake server. Callers must Close it.
func New() *Server {
	s := &Server{
		exams:     make(map[int64]*exam.Exam),
		questions: make(map[int64]*exam.RawQuestion),
		failures:  make(map[string][]failure),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api/exams", func(r chi.Router) {
		r.Get("/", s.handle(api.OpListExams, s.listExams))
		r.Post("/", s.handle(api.OpCreateExam, s.createExam))
		r.Get("/{examID}", s.handle(api.OpGetExam, s.getExam))
		r.Post("/sections/{sectionID}/generate-questions", s.handle(api.OpGenerateQuestions, s.generate))
		r.Get("/sections/{sectionID}/questions", s.handle(api.OpListSectionQuestions, s.sectionQuestions))
		r.Post("/sections/{sectionID}/upload-option-image", s.handle(api.OpUploadOptionImage, s.uploadOptionImage))
		r.Post("/sections/{sectionID}/upload-syllabus", s.handle(api.OpUploadSyllabus, s.uploadSyllabus))
		r.Get("/questions/{questionID}", s.handle(api.OpGetQuestion, s.getQuestion))
		r.Put("/questions/{questionID}", s.handle(api.OpUpdateQuestion, s.updateQuestion))
		r.Post("/questions/{questionID}/upload-image", s.handle(api.OpUploadQuestionImage, s.uploadQuestionImage))
	})
	return r
}

// FailNext makes the next call to op answer with status and detail. Calls
// queue up, one failure per call.
func (s *Server) FailNext(op string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], failure{status: status, detail: detail})
}

// SetGenerationDelay makes question generation take d.
func (s *Server) SetGenerationDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation = d
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns the number of requests received for op.
func (s *Server) Count(op string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Op == op {
			n++
		}
	}
	return n
}

// SeedExam stores an exam as if it had been created through the API.
func (s *Server) SeedExam(in exam.ExamCreate) exam.Exam {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.addExam(in)
}

// SeedQuestion stores a raw question and returns its id.
func (s *Server) SeedQuestion(q exam.RawQuestion) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextQ++
	q.ID = s.nextQ
	s.questions[q.ID] = &q
	s.order = append(s.order, q.ID)
	return q.ID
}

// Question returns the stored question with id.
func (s *Server) Question(id int64) (exam.RawQuestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return exam.RawQuestion{}, false
	}
	return *q, true
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, rec *Request)

func (s *Server) handle(op string, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := Request{
			Op:        op,
			Method:    r.Method,
			Path:      r.URL.Path,
			RequestID: r.Header.Get(api.RequestIDHeader),
		}
		defer func() {
			s.mu.Lock()
			s.requests = append(s.requests, rec)
			s.mu.Unlock()
		}()

		s.mu.Lock()
		queue := s.failures[op]
		var f *failure
		if len(queue) > 0 {
			f = &queue[0]
			s.failures[op] = queue[1:]
		}
		s.mu.Unlock()

		if f != nil {
			writeDetail(w, f.status, f.detail)
			return
		}
		h(w, r, &rec)
	}
}

func (s *Server) listExams(w http.ResponseWriter, _ *http.Request, _ *Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exams := make([]exam.Exam, 0, len(s.exams))
	for id := int64(1); id <= s.nextExam; id++ {
		if e, ok := s.exams[id]; ok {
			exams = append(exams, *e)
		}
	}
	writeJSON(w, http.StatusOK, exams)
}

func (s *Server) createExam(w http.ResponseWriter, r *http.Request, _ *Request) {
	var in exam.ExamCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	for _, sec := range in.Sections {
		if _, err := exam.ParseQuestionKind(string(sec.QuestionKind)); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	s.mu.Lock()
	e := s.addExam(in)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) getExam(w http.ResponseWriter, r *http.Request, _ *Request) {
	id, ok := pathID(w, r, "examID")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, found := s.exams[id]
	if !found {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("Exam with ID %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, _ *Request) {
	id, ok := pathID(w, r, "sectionID")
	if !ok {
		return
	}

	s.mu.Lock()
	delay := s.generation
	s.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sec, found := s.section(id)
	if !found {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("Section with ID %d not found", id))
		return
	}
	for _, q := range s.questions {
		if q.SectionID == id {
			writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Questions already exist for section with ID %d", id))
			return
		}
	}
	for i := range sec.TotalQuestions {
		s.nextQ++
		q := generated(s.nextQ, sec, i)
		s.questions[q.ID] = &q
		s.order = append(s.order, q.ID)
	}
	writeJSON(w, http.StatusCreated, exam.GenerateResult{
		Message: fmt.Sprintf("Questions generated successfully for section %d", id),
	})
}

func (s *Server) sectionQuestions(w http.ResponseWriter, r *http.Request, _ *Request) {
	id, ok := pathID(w, r, "sectionID")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.section(id); !found {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("Section with ID %d not found", id))
		return
	}
	qs := []exam.RawQuestion{}
	for _, qid := range s.order {
		if q := s.questions[qid]; q.SectionID == id {
			qs = append(qs, *q)
		}
	}
	writeJSON(w, http.StatusOK, qs)
}

func (s *Server) getQuestion(w http.ResponseWriter, r *http.Request, _ *Request) {
	id, ok := pathID(w, r, "questionID")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	q, found := s.questions[id]
	if !found {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("Question with ID %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) updateQuestion(w http.ResponseWriter, r *http.Request, _ *Request) {
	id, ok := pathID(w, r, "questionID")
	if !ok {
		return
	}
	var upd exam.QuestionUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	q, found := s.questions[id]
	if !found {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("Question with ID %d not found", id))
		return
	}
	if upd.Text != nil {
		q.Text = *upd.Text
	}
	if upd.Options != nil && q.Kind.HasOptions() {
		opts, _ := json.Marshal(upd.Options)
		correct, _ := json.Marshal(exam.CorrectIndices(upd.Options))
		o, c := string(opts), string(correct)
		q.Options, q.CorrectAnswer = &o, &c
	}
	if upd.NumericalAnswer != nil && q.Kind.HasNumericalAnswer() {
		v := *upd.NumericalAnswer
		q.NumericalAnswer = &v
	}
	q.LastModified = time.Now().Format(time.RFC3339)
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) uploadQuestionImage(w http.ResponseWriter, r *http.Request, rec *Request) {
	id, ok := pathID(w, r, "questionID")
	if !ok {
		return
	}
	name, ok := s.readImage(w, r, rec)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	q, found := s.questions[id]
	if !found {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Question with ID %d not found", id))
		return
	}
	q.ImageURL = fmt.Sprintf("%s/uploads/questions/%d/%s", s.URL, q.SectionID, name)
	writeJSON(w, http.StatusOK, exam.ImageUpload{ImageURL: q.ImageURL})
}

func (s *Server) uploadOptionImage(w http.ResponseWriter, r *http.Request, rec *Request) {
	id, ok := pathID(w, r, "sectionID")
	if !ok {
		return
	}
	name, ok := s.readImage(w, r, rec)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.section(id); !found {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("Section with ID %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, exam.ImageUpload{
		ImageURL: fmt.Sprintf("%s/uploads/options/%d/%s", s.URL, id, name),
	})
}

func (s *Server) uploadSyllabus(w http.ResponseWriter, r *http.Request, rec *Request) {
	id, ok := pathID(w, r, "sectionID")
	if !ok {
		return
	}
	name, ct, ok := readFile(w, r, rec)
	if !ok {
		return
	}
	if ct != "application/pdf" {
		writeDetail(w, http.StatusBadRequest, "Invalid file type. Only PDF is allowed.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.exams {
		for i := range e.Sections {
			if e.Sections[i].ID == id {
				uri := fmt.Sprintf("gs://syllabus/%d/%s", id, name)
				e.Sections[i].SyllabusFileURI = uri
				writeJSON(w, http.StatusOK, exam.SyllabusUpload{FileURI: uri})
				return
			}
		}
	}
	writeDetail(w, http.StatusNotFound, "Section not found")
}

func (s *Server) readImage(w http.ResponseWriter, r *http.Request, rec *Request) (string, bool) {
	name, ct, ok := readFile(w, r, rec)
	if !ok {
		return "", false
	}
	if !strings.HasPrefix(ct, "image/") {
		writeDetail(w, http.StatusBadRequest, "File must be an image")
		return "", false
	}
	return name, true
}

func readFile(w http.ResponseWriter, r *http.Request, rec *Request) (string, string, bool) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "field required: file")
		return "", "", false
	}
	defer f.Close()
	_, _ = io.Copy(io.Discard, f)

	rec.FileName = hdr.Filename
	rec.FileContentType = hdr.Header.Get("Content-Type")
	return hdr.Filename, rec.FileContentType, true
}

// addExam must be called with s.mu held. Total marks follow the service:
// total questions times marks per question, summed over sections.
func (s *Server) addExam(in exam.ExamCreate) *exam.Exam {
	s.nextExam++
	e := &exam.Exam{
		ID:          s.nextExam,
		Name:        in.Name,
		TimeMinutes: in.TimeMinutes,
		CreatedAt:   time.Now().Format("2006-01-02T15:04:05.000000"),
		Sections:    []exam.Section{},
	}
	for _, sc := range in.Sections {
		s.nextSect++
		e.Sections = append(e.Sections, exam.Section{SectionCreate: sc, ID: s.nextSect, ExamID: e.ID})
		e.TotalMarks += float64(sc.TotalQuestions) * sc.MarksPerQuestion
	}
	s.exams[e.ID] = e
	return e
}

// section must be called with s.mu held.
func (s *Server) section(id int64) (exam.Section, bool) {
	for _, e := range s.exams {
		if sec, ok := e.Section(id); ok {
			return sec, true
		}
	}
	return exam.Section{}, false
}

func generated(id int64, sec exam.Section, i int) exam.RawQuestion {
	q := exam.RawQuestion{
		ID:        id,
		SectionID: sec.ID,
		Text:      fmt.Sprintf("%s question %d", sec.Name, i+1),
		Kind:      sec.QuestionKind,
	}
	switch sec.QuestionKind {
	case exam.KindNumerical:
		v := float64(i + 1)
		q.NumericalAnswer = &v
	default:
		opts := make([]exam.Option, 4)
		for j := range opts {
			opts[j] = exam.Option{Text: fmt.Sprintf("Option %c", 'A'+j)}
		}
		opts[0].IsCorrect = true
		if sec.QuestionKind == exam.KindMultiSelect {
			opts[2].IsCorrect = true
		}
		o, _ := json.Marshal(opts)
		c, _ := json.Marshal(exam.CorrectIndices(opts))
		optsJSON, correctJSON := string(o), string(c)
		q.Options, q.CorrectAnswer = &optsJSON, &correctJSON
	}
	return q
}

func pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("%s must be an integer", key))
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
