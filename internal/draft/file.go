package draft

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/qpaper/qpaper/internal/exam"
)

// fileDraft is the YAML layout accepted by FromYAML.
type fileDraft struct {
	Name        string               `yaml:"name"`
	TimeMinutes int                  `yaml:"time_minutes"`
	Sections    []exam.SectionCreate `yaml:"sections"`
}

// FromYAML builds a draft from a YAML document. Sections without a
// question_type default to single select, and disabled negative marking
// zeroes negative_marks, the same as interactive edits.
func FromYAML(data []byte) (*Draft, error) {
	var f fileDraft
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse exam draft: %w", err)
	}

	d := &Draft{name: f.Name, duration: f.TimeMinutes}
	for i, s := range f.Sections {
		if s.QuestionKind == "" {
			s.QuestionKind = exam.KindSingleSelect
		}
		if _, err := exam.ParseQuestionKind(string(s.QuestionKind)); err != nil {
			return nil, fmt.Errorf("section %d: %w", i+1, err)
		}
		d.sections = append(d.sections, withNegativeMarking(s, s.NegativeMarkingAllowed))
	}
	if len(d.sections) == 0 {
		d.sections = []exam.SectionCreate{DefaultSection()}
	}
	return d, nil
}

// FromFile reads a YAML exam draft from path.
func FromFile(path string) (*Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exam draft: %w", err)
	}
	return FromYAML(data)
}
