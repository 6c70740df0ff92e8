package cmd

import (
	"github.com/spf13/cobra"

	"vidcheck.dev/pkg/vidcheck/internal/domain"
	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

// diffCmd represents the diff command.
var diffCmd = newDiffCmd()

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <old-report> <new-report>",
		Short: "Compare the verdicts of two saved reports",
		Long:  "Print a unified diff of the verdict of every file in two reports written by \"scan --save-report\".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := resolveWorkflow(cmd, false)
			if err != nil {
				return err
			}

			diff, err := wf.Diff(cmd.Context(), domain.DiffArgs{Old: m.Path(args[0]), New: m.Path(args[1])})
			if err != nil {
				return err
			}

			if diff == "" {
				cmd.Println("reports match")
				return nil
			}

			cmd.Println(diff)

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
