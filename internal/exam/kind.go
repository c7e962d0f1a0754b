package exam

import "fmt"

// QuestionKind determines which fields of a question are meaningful.
type QuestionKind string

const (
	// KindSingleSelect has options with exactly one correct option.
	KindSingleSelect QuestionKind = "MCQ"

	// KindMultiSelect has options whose correctness is toggled independently.
	KindMultiSelect QuestionKind = "MSQ"

	// KindNumerical has a single numeric answer and no options.
	KindNumerical QuestionKind = "NUM"
)

// AllKinds lists the question kinds in display order.
var AllKinds = []QuestionKind{KindSingleSelect, KindMultiSelect, KindNumerical}

// ParseQuestionKind converts a wire value into a QuestionKind.
func ParseQuestionKind(s string) (QuestionKind, error) {
	switch k := QuestionKind(s); k {
	case KindSingleSelect, KindMultiSelect, KindNumerical:
		return k, nil
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

// HasOptions reports whether questions of this kind carry an option list.
func (k QuestionKind) HasOptions() bool {
	return k == KindSingleSelect || k == KindMultiSelect
}

// HasNumericalAnswer reports whether questions of this kind carry a numeric answer.
func (k QuestionKind) HasNumericalAnswer() bool {
	return k == KindNumerical
}

// DisplayName returns the human-readable name shown in section listings.
func (k QuestionKind) DisplayName() string {
	switch k {
	case KindSingleSelect:
		return "Multiple Choice Question"
	case KindMultiSelect:
		return "Multiple Select Question"
	case KindNumerical:
		return "Numerical Question"
	default:
		return "Unknown"
	}
}

// Next cycles to the following kind, wrapping around. Used by form pickers.
func (k QuestionKind) Next() QuestionKind {
	for i, kind := range AllKinds {
		if kind == k {
			return AllKinds[(i+1)%len(AllKinds)]
		}
	}
	return KindSingleSelect
}
