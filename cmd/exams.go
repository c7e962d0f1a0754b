package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qpaper/qpaper/internal/draft"
	"github.com/qpaper/qpaper/internal/exam"
	"github.com/qpaper/qpaper/internal/ui/components"
)

var examsCmd = &cobra.Command{
	Use:   "exams",
	Short: "List, inspect and create exams",
}

func parseID(s string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, fmt.Errorf("invalid ID %q: %w", s, err)
	}
	return id, nil
}

var examsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all exams",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		exams, err := rt.client.ListExams(context.Background())
		if err != nil {
			return fmt.Errorf("list exams: %w", err)
		}
		if len(exams) == 0 {
			fmt.Println("No exams found.")
			return nil
		}

		fmt.Printf("%-6s  %-32s  %8s  %8s  %8s  %s\n",
			"ID", "Name", "Marks", "Minutes", "Sections", "Created")
		fmt.Println(strings.Repeat("─", 90))
		for _, e := range exams {
			fmt.Printf("%-6d  %-32s  %8s  %8d  %8d  %s\n",
				e.ID,
				truncate(e.Name, 32),
				components.FormatNumber(e.TotalMarks),
				e.TimeMinutes,
				len(e.Sections),
				components.FormatDate(e.CreatedAt),
			)
		}
		return nil
	},
}

var examsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an exam and its sections",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		e, err := rt.client.GetExam(context.Background(), id)
		if err != nil {
			return fmt.Errorf("get exam: %w", err)
		}
		printExam(e)
		return nil
	},
}

func printExam(e *exam.Exam) {
	fmt.Printf("ID:          %d\n", e.ID)
	fmt.Printf("Name:        %s\n", e.Name)
	fmt.Printf("Duration:    %d minutes\n", e.TimeMinutes)
	fmt.Printf("Total marks: %s\n", components.FormatNumber(e.TotalMarks))
	if e.CreatedAt != "" {
		fmt.Printf("Created on:  %s\n", components.FormatDate(e.CreatedAt))
	}

	sep := strings.Repeat("─", 60)
	for _, s := range e.Sections {
		fmt.Println()
		fmt.Println(sep)
		fmt.Printf("Section %d: %s\n", s.ID, s.Name)
		fmt.Println(sep)
		fmt.Printf("Question type:      %s\n", s.QuestionKind.DisplayName())
		fmt.Printf("Questions:          %d of %d to attempt\n", s.QuestionsToAttempt, s.TotalQuestions)
		fmt.Printf("Marks per question: %s\n", components.FormatNumber(s.MarksPerQuestion))
		if s.NegativeMarkingAllowed {
			fmt.Printf("Negative marking:   Yes (-%s)\n", components.FormatNumber(s.NegativeMarks))
		} else {
			fmt.Println("Negative marking:   No")
		}
		fmt.Printf("Section marks:      %s\n", components.FormatNumber(s.Marks()))
		if s.Topics != "" {
			fmt.Printf("Topics:             %s\n", s.Topics)
		}
		if s.SyllabusFileURI != "" {
			fmt.Printf("Syllabus:           %s\n", s.SyllabusFileURI)
		}
	}
}

var examsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an exam from a YAML draft",
	Example: `  qpaper exams create -f midterm.yaml

  # midterm.yaml
  name: Physics Midterm
  time_minutes: 90
  sections:
    - name: Mechanics
      topics: kinematics, newton's laws
      total_questions: 10
      questions_to_attempt: 8
      marks_per_question: 4
      negative_marking_allowed: true
      negative_marks: 1
      question_type: single_select`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			return fmt.Errorf("--file is required")
		}

		d, err := draft.FromFile(path)
		if err != nil {
			return err
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		created, err := d.Submit(context.Background(), rt.client)
		if err != nil {
			var verr *draft.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("invalid draft: %w", verr)
			}
			return err
		}

		fmt.Printf("Created exam %d (%s), total marks %s.\n",
			created.ID, created.Name, components.FormatNumber(d.TotalMarks()))
		return nil
	},
}

var examsGenerateCmd = &cobra.Command{
	Use:   "generate <section-id>",
	Short: "Generate questions for a section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		res, err := rt.client.GenerateQuestions(context.Background(), id)
		if err != nil {
			return fmt.Errorf("generate questions: %w", err)
		}
		msg := res.Message
		if msg == "" {
			msg = "Questions generated successfully."
		}
		fmt.Println(msg)
		return nil
	},
}

func init() {
	examsCreateCmd.Flags().StringP("file", "f", "", "YAML exam draft to submit")

	examsCmd.AddCommand(examsListCmd)
	examsCmd.AddCommand(examsShowCmd)
	examsCmd.AddCommand(examsCreateCmd)
	examsCmd.AddCommand(examsGenerateCmd)
}
