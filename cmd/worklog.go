package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"daily-worklog/internal/daylog"
	"daily-worklog/internal/syncer"
)

var (
	reportActivity     string
	reportAccomplished string
)

// newSession builds a loaded worklog session against the local provider.
func newSession(ctx context.Context) (*syncer.Session, error) {
	coordinator := newCoordinator(cfg, provider)
	session := syncer.NewSession(coordinator, cfg.EditWindowDuration())
	if err := session.Load(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

func formatPunch(t *time.Time) string {
	if t == nil {
		return "--:--"
	}
	return t.Local().Format("15:04")
}

var punchCmd = &cobra.Command{
	Use:   "punch [slot]",
	Short: "Record a punch for today",
	Long: `Records the current instant into a punch slot for today.
Without an argument the next eligible slot is punched. Slots open in
workday order: amIn, amOut, pmIn, pmOut.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		session, err := newSession(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading worklogs: %v\n", err)
			os.Exit(1)
		}

		today := daylog.DayKeyOf(time.Now())

		var slot daylog.Slot
		if len(args) == 1 {
			slot = daylog.Slot(args[0])
		} else {
			next, ok := daylog.NextSlot(session.Entry(today))
			if !ok {
				fmt.Println("Workday already complete, nothing left to punch.")
				return
			}
			slot = next
		}

		result, err := session.Punch(ctx, today, slot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error punching %s: %v\n", slot, err)
			os.Exit(1)
		}

		fmt.Printf("Punched %s at %s\n", slot, formatPunch(result.Entry.Punch(slot)))

		if result.Completed {
			// Brief dwell before the report hint, mirroring the view flow.
			time.Sleep(daylog.ReportAdvanceDelay)
			fmt.Println("Workday complete. Submit your report with: daily-worklog report")
		}
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear <slot>",
	Short: "Clear a recorded punch for today",
	Long: `Sets a punch slot back to absent and persists the clear.
Clearing a slot does not touch later slots; clearing amIn with amOut
recorded leaves an out-of-order record.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		slot := daylog.Slot(args[0])

		fmt.Printf("Are you sure you want to clear %s? [y/N]: ", slot)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return
		}

		session, err := newSession(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading worklogs: %v\n", err)
			os.Exit(1)
		}

		today := daylog.DayKeyOf(time.Now())
		if err := session.ClearPunch(ctx, today, slot); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing %s: %v\n", slot, err)
			os.Exit(1)
		}

		fmt.Printf("Cleared %s for %s\n", slot, today)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Submit today's end-of-day report",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		session, err := newSession(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading worklogs: %v\n", err)
			os.Exit(1)
		}

		today := daylog.DayKeyOf(time.Now())
		result, err := session.SubmitReport(ctx, today, reportActivity, reportAccomplished)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error submitting report: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Report saved. db: %s, sheet: %s\n", result.Status.DB, result.Status.Sheet)
		if result.Status.Sheet == syncer.StateError {
			fmt.Println("The spreadsheet mirror did not take the row; the log itself is saved.")
		}
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Inspect recorded worklogs",
}

var logsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all recorded days",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		records, err := provider.ListWorklogs(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing worklogs: %v\n", err)
			os.Exit(1)
		}

		if len(records) == 0 {
			fmt.Println("No worklogs recorded.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tAM IN\tAM OUT\tPM IN\tPM OUT\tACTIVITY")
		for _, record := range records {
			activity := ""
			if record.Activity != nil {
				activity = *record.Activity
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				record.DateKey,
				formatPunch(record.AmIn), formatPunch(record.AmOut),
				formatPunch(record.PmIn), formatPunch(record.PmOut),
				activity)
		}
		w.Flush()
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportActivity, "activity", "", "what was worked on")
	reportCmd.Flags().StringVar(&reportAccomplished, "accomplished", "", "what got done")

	logsCmd.AddCommand(logsListCmd)

	rootCmd.AddCommand(punchCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(logsCmd)
}
