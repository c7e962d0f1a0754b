package draft

import (
	"fmt"
	"strings"
)

// Rule identifies a validation rule. Rules are checked in declaration order.
type Rule int

const (
	RuleExamName Rule = iota + 1
	RuleDuration
	RuleSectionName
	RuleTotalQuestions
	RuleQuestionsToAttempt
	RuleMarksPerQuestion
	RuleNegativeMarks
)

// ValidationError reports the first violated rule. Section is the 1-based
// position of the offending section, or 0 for exam-level rules.
type ValidationError struct {
	Rule    Rule
	Section int
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case RuleExamName:
		return "Exam name is required"
	case RuleDuration:
		return "Please enter a valid exam duration"
	case RuleSectionName:
		return fmt.Sprintf("Section %d name is required", e.Section)
	case RuleTotalQuestions:
		return fmt.Sprintf("Section %d must have at least one question", e.Section)
	case RuleQuestionsToAttempt:
		return fmt.Sprintf("Section %d has invalid number of questions to attempt", e.Section)
	case RuleMarksPerQuestion:
		return fmt.Sprintf("Section %d marks per question must be positive", e.Section)
	case RuleNegativeMarks:
		return fmt.Sprintf("Section %d negative marks must be positive", e.Section)
	default:
		return "invalid exam draft"
	}
}

// Validate returns the first violated rule, or nil when the draft can be
// submitted. Exam-level rules come first, then each section in order.
func (d *Draft) Validate() *ValidationError {
	if strings.TrimSpace(d.name) == "" {
		return &ValidationError{Rule: RuleExamName}
	}
	if d.duration <= 0 {
		return &ValidationError{Rule: RuleDuration}
	}

	for i, s := range d.sections {
		pos := i + 1
		switch {
		case strings.TrimSpace(s.Name) == "":
			return &ValidationError{Rule: RuleSectionName, Section: pos}
		case s.TotalQuestions <= 0:
			return &ValidationError{Rule: RuleTotalQuestions, Section: pos}
		case s.QuestionsToAttempt <= 0 || s.QuestionsToAttempt > s.TotalQuestions:
			return &ValidationError{Rule: RuleQuestionsToAttempt, Section: pos}
		case s.MarksPerQuestion <= 0:
			return &ValidationError{Rule: RuleMarksPerQuestion, Section: pos}
		case s.NegativeMarkingAllowed && s.NegativeMarks <= 0:
			return &ValidationError{Rule: RuleNegativeMarks, Section: pos}
		}
	}
	return nil
}
