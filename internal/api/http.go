package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/google/uuid"

	"github.com/qpaper/qpaper/internal/exam"
	"github.com/qpaper/qpaper/internal/media"
)

// RequestIDHeader carries a per-request id the service can log.
const RequestIDHeader = "X-Request-ID"

// HTTPClient implements Client over the service's JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a client for cfg.BaseURL.
func NewHTTPClient(cfg Config) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *HTTPClient) ListExams(ctx context.Context) ([]exam.Exam, error) {
	var exams []exam.Exam
	if err := c.doJSON(ctx, OpListExams, http.MethodGet, "/api/exams/", nil, &exams); err != nil {
		return nil, err
	}
	return exams, nil
}

func (c *HTTPClient) GetExam(ctx context.Context, id int64) (*exam.Exam, error) {
	var e exam.Exam
	if err := c.doJSON(ctx, OpGetExam, http.MethodGet, fmt.Sprintf("/api/exams/%d", id), nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *HTTPClient) CreateExam(ctx context.Context, in exam.ExamCreate) (*exam.Exam, error) {
	var e exam.Exam
	if err := c.doJSON(ctx, OpCreateExam, http.MethodPost, "/api/exams/", in, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *HTTPClient) GenerateQuestions(ctx context.Context, sectionID int64) (*exam.GenerateResult, error) {
	var res exam.GenerateResult
	path := fmt.Sprintf("/api/exams/sections/%d/generate-questions", sectionID)
	if err := c.doJSON(ctx, OpGenerateQuestions, http.MethodPost, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) ListSectionQuestions(ctx context.Context, sectionID int64) ([]exam.RawQuestion, error) {
	var qs []exam.RawQuestion
	path := fmt.Sprintf("/api/exams/sections/%d/questions", sectionID)
	if err := c.doJSON(ctx, OpListSectionQuestions, http.MethodGet, path, nil, &qs); err != nil {
		return nil, err
	}
	return qs, nil
}

func (c *HTTPClient) GetQuestion(ctx context.Context, id int64) (*exam.RawQuestion, error) {
	var q exam.RawQuestion
	if err := c.doJSON(ctx, OpGetQuestion, http.MethodGet, fmt.Sprintf("/api/exams/questions/%d", id), nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *HTTPClient) UpdateQuestion(ctx context.Context, id int64, upd exam.QuestionUpdate) (*exam.RawQuestion, error) {
	var q exam.RawQuestion
	if err := c.doJSON(ctx, OpUpdateQuestion, http.MethodPut, fmt.Sprintf("/api/exams/questions/%d", id), upd, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *HTTPClient) UploadQuestionImage(ctx context.Context, questionID int64, f media.File) (*exam.ImageUpload, error) {
	if err := media.RequireImage(f); err != nil {
		return nil, err
	}
	var res exam.ImageUpload
	path := fmt.Sprintf("/api/exams/questions/%d/upload-image", questionID)
	if err := c.upload(ctx, OpUploadQuestionImage, path, f, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) UploadOptionImage(ctx context.Context, sectionID int64, f media.File) (*exam.ImageUpload, error) {
	if err := media.RequireImage(f); err != nil {
		return nil, err
	}
	var res exam.ImageUpload
	path := fmt.Sprintf("/api/exams/sections/%d/upload-option-image", sectionID)
	if err := c.upload(ctx, OpUploadOptionImage, path, f, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) UploadSyllabus(ctx context.Context, sectionID int64, f media.File) (*exam.SyllabusUpload, error) {
	if err := media.RequirePDF(f); err != nil {
		return nil, err
	}
	var res exam.SyllabusUpload
	path := fmt.Sprintf("/api/exams/sections/%d/upload-syllabus", sectionID)
	if err := c.upload(ctx, OpUploadSyllabus, path, f, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, op, method, path, body, contentType, out)
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// upload posts f as the multipart form field "file" with its own content
// type; the service checks the part's content type, not the extension.
func (c *HTTPClient) upload(ctx context.Context, op, path string, f media.File, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", f.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("%s: build form: %w", op, err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return fmt.Errorf("%s: build form: %w", op, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: build form: %w", op, err)
	}

	return c.do(ctx, op, http.MethodPost, path, &buf, w.FormDataContentType(), out)
}

func (c *HTTPClient) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	info := callInfoFrom(ctx)
	if info != nil {
		info.Method = method
		info.Path = path
		info.RequestID = requestID
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &ErrUnavailable{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if info != nil {
		info.StatusCode = resp.StatusCode
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ErrUnavailable{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ErrStatus{Op: op, StatusCode: resp.StatusCode, Detail: parseDetail(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ErrDecodeResponse{Op: op, Err: err}
	}
	return nil
}

// parseDetail extracts FastAPI's error detail, which is either a string or a
// list of validation errors.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if len(it.Loc) > 0 {
				loc := make([]string, len(it.Loc))
				for i, l := range it.Loc {
					loc[i] = fmt.Sprint(l)
				}
				msgs = append(msgs, strings.Join(loc, ".")+": "+it.Msg)
				continue
			}
			msgs = append(msgs, it.Msg)
		}
		return strings.Join(msgs, "; ")
	}
	return string(envelope.Detail)
}
