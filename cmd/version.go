package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// unknownVersion is printed when the binary carries no module build info.
const unknownVersion = "unknown"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long: `Displays the vidcheck build version, the Go version used to build it and the
decoder binary scans will run (see "vidcheck check" to verify it).`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			toolVersion, goVersion := buildVersions()

			cmd.Println("vidcheck\t", toolVersion)
			cmd.Println("go\t", goVersion)
			cmd.Println("decoder\t", viper.GetString(decoderConfigKey))
		},
	}
}

func buildVersions() (string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return unknownVersion, unknownVersion
	}

	toolVersion := info.Main.Version
	if toolVersion == "" {
		toolVersion = unknownVersion
	}

	return toolVersion, info.GoVersion
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
