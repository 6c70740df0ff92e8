package cmd

import (
	"github.com/spf13/cobra"
)

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the decoder can be run",
		Long:  "Look up the configured decoder binary and print its path and version.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := resolveWorkflow(cmd, false)
			if err != nil {
				return err
			}

			info, err := wf.Check(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Println("decoder\t", info.Path)
			cmd.Println("version\t", info.Version)

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
