package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vidcheck.dev/pkg/vidcheck/internal/domain"
	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

var scanWorkersFlag int
var scanTimeoutFlag int64
var scanExtensionsFlag []string
var scanCacheLocalFlag bool
var scanSaveReportFlag string

const scanLongDescription = `Scan a directory (default: current directory) for corrupt video files.

Every file whose extension matches --ext is decoded in full by the decoder
with its output discarded. When the scan finishes the results open in the
triage table; press q (or Ctrl-C) to stop early and triage what was probed.`

// scanCmd represents the scan command.
var scanCmd = newScanCmd()

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Scan a directory and triage the results",
		Long:  scanLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := resolveWorkflow(cmd, true)
			if err != nil {
				return err
			}

			ctx, stop := interruptContext(cmd)
			defer stop()

			return wf.Scan(ctx, domain.ScanArgs{
				Root:       parsePath(args, "."),
				SaveReport: m.Path(viper.GetString(saveReportConfigKey)),
			})
		},
	}

	configureScanFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func configureScanFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&scanWorkersFlag, workersFlagName, "w", viper.GetInt(workersConfigKey), "parallel decoder processes (0 = number of CPUs, at most 8)")
	bindFlagToConfig(cmd.Flags().Lookup(workersFlagName), workersConfigKey)

	cmd.Flags().Int64VarP(&scanTimeoutFlag, timeoutFlagName, "t", viper.GetInt64(timeoutConfigKey), "per-file decode timeout in seconds (0 disables)")
	bindFlagToConfig(cmd.Flags().Lookup(timeoutFlagName), timeoutConfigKey)

	cmd.Flags().StringSliceVar(&scanExtensionsFlag, extensionsFlagName, viper.GetStringSlice(extensionsConfigKey), "video file extensions to scan")
	bindFlagToConfig(cmd.Flags().Lookup(extensionsFlagName), extensionsConfigKey)

	cmd.Flags().BoolVar(&scanCacheLocalFlag, cacheLocalFlagName, viper.GetBool(cacheLocalConfigKey), "copy each file to a local temp dir before decoding (slow network mounts)")
	bindFlagToConfig(cmd.Flags().Lookup(cacheLocalFlagName), cacheLocalConfigKey)

	cmd.Flags().StringVarP(&scanSaveReportFlag, saveReportFlagName, "o", viper.GetString(saveReportConfigKey), "write the scan report to this YAML file")
	bindFlagToConfig(cmd.Flags().Lookup(saveReportFlagName), saveReportConfigKey)
}
