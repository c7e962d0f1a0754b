package exam

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// DecodeError reports an encoded question field that could not be decoded.
type DecodeError struct {
	QuestionID int64
	Field      string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("question %d: decode %s: %v", e.QuestionID, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ParseQuestion decodes the encoded fields of raw. Decode failures are logged
// and leave the affected field nil; the remaining fields are always returned.
// Options and correct answers are only decoded for kinds that have options,
// so a numerical question never carries both.
func ParseQuestion(log *zap.Logger, raw RawQuestion) Question {
	if log == nil {
		log = zap.NewNop()
	}

	q := Question{
		ID:              raw.ID,
		SectionID:       raw.SectionID,
		Text:            raw.Text,
		Kind:            raw.Kind,
		NumericalAnswer: raw.NumericalAnswer,
		ImageURL:        raw.ImageURL,
		LastModified:    raw.LastModified,
	}

	if !raw.Kind.HasOptions() {
		return q
	}

	if raw.Options != nil && *raw.Options != "" {
		opts, err := DecodeOptions(*raw.Options)
		if err != nil {
			logDecodeError(log, &DecodeError{QuestionID: raw.ID, Field: "options", Err: err})
		} else {
			q.Options = opts
		}
	}

	if raw.CorrectAnswer != nil && *raw.CorrectAnswer != "" {
		answers, err := DecodeCorrectAnswers(*raw.CorrectAnswer)
		if err != nil {
			logDecodeError(log, &DecodeError{QuestionID: raw.ID, Field: "correct_answer", Err: err})
		} else {
			q.CorrectAnswers = answers
		}
	}

	return q
}

// ParseQuestions parses every record, preserving order.
func ParseQuestions(log *zap.Logger, raws []RawQuestion) []Question {
	out := make([]Question, 0, len(raws))
	for _, r := range raws {
		out = append(out, ParseQuestion(log, r))
	}
	return out
}

// DecodeOptions decodes an encoded option list.
func DecodeOptions(encoded string) ([]Option, error) {
	if err := validateEncoded(optionsSchema, encoded); err != nil {
		return nil, err
	}
	opts := []Option{}
	if err := json.Unmarshal([]byte(encoded), &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// DecodeCorrectAnswers decodes an encoded list of correct option indices.
func DecodeCorrectAnswers(encoded string) ([]int, error) {
	if err := validateEncoded(correctAnswerSchema, encoded); err != nil {
		return nil, err
	}
	answers := []int{}
	if err := json.Unmarshal([]byte(encoded), &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// CorrectIndices returns the positions of the options marked correct.
func CorrectIndices(opts []Option) []int {
	idx := []int{}
	for i, o := range opts {
		if o.IsCorrect {
			idx = append(idx, i)
		}
	}
	return idx
}

func logDecodeError(log *zap.Logger, err *DecodeError) {
	log.Warn("question field not decoded",
		zap.Int64("question_id", err.QuestionID),
		zap.String("field", err.Field),
		zap.Error(err.Err),
	)
}
