package cmd

import (
	"github.com/spf13/cobra"

	"vidcheck.dev/pkg/vidcheck/internal/domain"
	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <report>",
		Short: "Triage a saved scan report",
		Long: `Open a report written by "scan --save-report" in the triage table without
scanning again. Files that no longer exist are dropped from the table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := resolveWorkflow(cmd, true)
			if err != nil {
				return err
			}

			ctx, stop := interruptContext(cmd)
			defer stop()

			return wf.View(ctx, domain.ViewArgs{Report: m.Path(args[0])})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
