// Package cmd provides the root command and CLI setup for vidcheck.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vidcheck.dev/pkg/vidcheck/internal/adapter"
	"vidcheck.dev/pkg/vidcheck/internal/controller"
	"vidcheck.dev/pkg/vidcheck/internal/domain"
	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

var reportStore adapter.ReportStore
var fsAdapter adapter.SourceFSAdapter

// workflow overrides the workflow built from configuration when set.
var workflow domain.Workflow

var plainFlag bool
var verboseFlag bool
var logFileFlag string
var decoderFlag string
var trashDirFlag string
var journalDirFlag string

func init() {
	reportStore = adapter.NewReportStore()
	fsAdapter = adapter.NewLocalSourceFSAdapter()
}

const rootLongDescription = `vidcheck walks a directory of video files, fully decodes every file with
ffmpeg (output discarded) and sorts them into healthy, corrupt, timed out
and unreadable. The results open in a triage table where you pick files to
move to the trash.

Nothing is ever deleted: selected files go to the desktop trash, or to
trash.dir when it is configured.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "vidcheck",
		Short:        "Find and triage corrupt video files",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&plainFlag, plainFlagName, viper.GetBool(plainConfigKey), "line-oriented output instead of the interactive interface")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(plainFlagName), plainConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)

	cmd.PersistentFlags().StringVar(&decoderFlag, decoderFlagName, viper.GetString(decoderConfigKey), "decoder binary (name on PATH or absolute path)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(decoderFlagName), decoderConfigKey)

	cmd.PersistentFlags().StringVar(&trashDirFlag, trashDirFlagName, viper.GetString(trashDirConfigKey), "move files into this directory instead of the desktop trash")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(trashDirFlagName), trashDirConfigKey)

	cmd.PersistentFlags().StringVar(&journalDirFlag, journalDirFlagName, viper.GetString(journalDirConfigKey), "directory of the commit journal (empty disables it)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(journalDirFlagName), journalDirConfigKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// resolveWorkflow returns the injected workflow or builds one from the
// current configuration. The UI writes to cmd's streams. Commands that move
// files pass needsTrash so a missing trash fails before any work starts;
// the others resolve the trash only if it is ever used.
func resolveWorkflow(cmd *cobra.Command, needsTrash bool) (domain.Workflow, error) {
	if workflow != nil {
		return workflow, nil
	}

	cfg := buildScanConfig()

	classifier, err := domain.NewClassifier(cfg)
	if err != nil {
		return nil, err
	}

	var trash adapter.TrashAdapter = adapter.NewLazyTrash(viper.GetString(trashDirConfigKey))
	if needsTrash {
		trash, err = adapter.NewTrashAdapter(viper.GetString(trashDirConfigKey))
		if err != nil {
			return nil, err
		}
	}

	decoder := adapter.NewLocalDecoderAdapter(cfg)
	ui := controller.NewUI(cmd, viper.GetBool(plainConfigKey))
	scanner := domain.NewScanner(cfg, fsAdapter, decoder, classifier)

	return domain.NewWorkflow(
		cfg,
		decoder,
		fsAdapter,
		reportStore,
		trash,
		ui,
		scanner,
		viper.GetString(journalDirConfigKey),
	), nil
}

// interruptContext is cancelled on SIGINT so a running scan stops and keeps
// its partial report.
func interruptContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}

	return signal.NotifyContext(parent, os.Interrupt)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePath(args []string, fallback string) m.Path {
	if len(args) == 0 {
		return m.Path(fallback)
	}

	return m.Path(args[0])
}
