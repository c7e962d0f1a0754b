package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qpaper/qpaper/internal/store"
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Inspect the local log of exam service requests",
}

// openStore opens the request log selected by flags and config.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		op, _ := cmd.Flags().GetString("op")
		failed, _ := cmd.Flags().GetBool("failed")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		events, err := s.EventRepo().QueryRequests(ctx, store.QueryOpts{Limit: limit, Op: op, Failed: failed})
		if err != nil {
			return fmt.Errorf("query requests: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No requests found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-22s  %-6s  %-34s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Operation", "Method", "Path", "Status", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 114))

		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			status := "-"
			if e.StatusCode > 0 {
				status = fmt.Sprintf("%d", e.StatusCode)
			}
			fmt.Printf("%-5d  %-19s  %-22s  %-6s  %-34s  %-6s  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Op, 22),
				e.Method,
				truncate(e.Path, 34),
				status,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var requestsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View a single request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetRequest(context.Background(), id)
		if err != nil {
			return fmt.Errorf("get request: %w", err)
		}
		if e == nil {
			return fmt.Errorf("request %d not found", id)
		}

		fmt.Printf("ID:         %d\n", e.ID)
		fmt.Printf("Sequence:   %d\n", e.Sequence)
		fmt.Printf("Time:       %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Operation:  %s\n", e.Op)
		fmt.Printf("Request:    %s %s\n", e.Method, e.Path)
		if e.RequestID != "" {
			fmt.Printf("Request ID: %s\n", e.RequestID)
		}
		if e.StatusCode > 0 {
			fmt.Printf("Status:     %d\n", e.StatusCode)
		}
		fmt.Printf("Latency:    %dms\n", e.LatencyMs)
		fmt.Printf("Success:    %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Println(strings.Repeat("─", 60))
			fmt.Println(e.ErrorMessage)
		}
		return nil
	},
}

var requestsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show request counts, failures and latency per operation",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.EventRepo().RequestStatsByOp(context.Background())
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}

		if len(stats) == 0 {
			fmt.Println("No requests recorded yet.")
			return nil
		}

		fmt.Println("Requests by Operation")
		fmt.Println(strings.Repeat("─", 60))
		fmt.Printf("%-24s  %6s  %8s  %8s  %8s\n",
			"Operation", "Calls", "Failed", "Rate", "Avg Ms")
		fmt.Println(strings.Repeat("─", 60))

		var totalCalls, totalFailed int
		for _, st := range stats {
			fmt.Printf("%-24s  %6d  %8d  %8s  %8d\n",
				truncate(st.Op, 24), st.Calls, st.Failures, failureRate(st.Failures, st.Calls), st.AvgLatencyMs)
			totalCalls += st.Calls
			totalFailed += st.Failures
		}

		fmt.Println(strings.Repeat("─", 60))
		fmt.Printf("%-24s  %6d  %8d  %8s\n",
			"TOTAL", totalCalls, totalFailed, failureRate(totalFailed, totalCalls))
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func failureRate(failed, calls int) string {
	if calls == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(failed)/float64(calls))
}

func init() {
	requestsListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	requestsListCmd.Flags().StringP("op", "o", "", "Filter by operation (e.g. ListExams, GenerateQuestions)")
	requestsListCmd.Flags().Bool("failed", false, "Only show failed requests")

	requestsCmd.AddCommand(requestsListCmd)
	requestsCmd.AddCommand(requestsViewCmd)
	requestsCmd.AddCommand(requestsStatsCmd)
}
