package cmd

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// historyCmd represents the history command.
var historyCmd = newHistoryCmd()

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List files moved to the trash by earlier commits",
		Long: `Print every commit outcome recorded in the journal directory, oldest first.
Moved files show where they went so they can be restored by hand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := resolveWorkflow(cmd, false)
			if err != nil {
				return err
			}

			records, err := wf.History(cmd.Context())
			if err != nil {
				return err
			}

			if len(records) == 0 {
				cmd.Println("no commits recorded")
				return nil
			}

			renderHistory(cmd, records)

			return nil
		},
	}
}

func renderHistory(cmd *cobra.Command, records []m.JournalRecord) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"When", "Outcome", "Verdict", "Path", "Detail"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, entry := range records {
		detail := entry.Record.Reason
		if entry.Record.Outcome == m.Moved {
			detail = entry.Record.TrashRef
		}

		table.Append([]string{
			entry.At.Local().Format(historyTimeLayout),
			entry.Record.Outcome.String(),
			entry.Record.Verdict.String(),
			string(entry.Record.Path),
			detail,
		})
	}

	table.Render()
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
