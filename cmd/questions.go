package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qpaper/qpaper/internal/exam"
	"github.com/qpaper/qpaper/internal/ui/components"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Inspect generated questions",
}

var questionsListCmd = &cobra.Command{
	Use:   "list <section-id>",
	Short: "List the questions of a section",
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

		raws, err := rt.client.ListSectionQuestions(context.Background(), id)
		if err != nil {
			return fmt.Errorf("list questions: %w", err)
		}
		questions := exam.ParseQuestions(rt.log, raws)
		if len(questions) == 0 {
			fmt.Println("No questions found. Generate questions for this section first.")
			return nil
		}

		for i, q := range questions {
			if i > 0 {
				fmt.Println()
			}
			printQuestion(i+1, q)
		}
		return nil
	},
}

var questionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single question",
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

		raw, err := rt.client.GetQuestion(context.Background(), id)
		if err != nil {
			return fmt.Errorf("get question: %w", err)
		}
		printQuestion(0, exam.ParseQuestion(rt.log, *raw))
		return nil
	},
}

// printQuestion writes q as plain text. A zero n omits the ordinal.
func printQuestion(n int, q exam.Question) {
	label := fmt.Sprintf("Question %d", q.ID)
	if n > 0 {
		label = fmt.Sprintf("Q%d (id %d)", n, q.ID)
	}
	fmt.Printf("%s  [%s]\n", label, q.Kind.DisplayName())
	fmt.Println(strings.Repeat("─", 60))
	fmt.Println(q.Text)
	if q.ImageURL != "" {
		fmt.Printf("Image: %s\n", q.ImageURL)
	}

	switch {
	case q.Kind.HasOptions():
		if q.Options == nil {
			fmt.Println("(options unavailable)")
			break
		}
		for i, opt := range q.Options {
			mark := " "
			if opt.IsCorrect {
				mark = "✓"
			}
			fmt.Printf("  %s %c) %s\n", mark, 'A'+i, opt.Text)
			if opt.ImageURL != "" {
				fmt.Printf("       Image: %s\n", opt.ImageURL)
			}
		}
	case q.Kind.HasNumericalAnswer():
		if q.NumericalAnswer != nil {
			fmt.Printf("Answer: %s\n", components.FormatNumber(*q.NumericalAnswer))
		} else {
			fmt.Println("Answer: (not set)")
		}
	}
}

func init() {
	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsShowCmd)
}
