package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"vidcheck.dev/pkg/vidcheck/internal/adapter"
	m "vidcheck.dev/pkg/vidcheck/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "vidcheck"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	workersFlagName    = "workers"
	timeoutFlagName    = "timeout"
	extensionsFlagName = "ext"
	cacheLocalFlagName = "cache-local"
	decoderFlagName    = "decoder"
	trashDirFlagName   = "trash-dir"
	saveReportFlagName = "save-report"
	plainFlagName      = "plain"
	verboseFlagName    = "verbose"
	logFileFlagName    = "log-file"
	journalDirFlagName = "journal-dir"

	workersConfigKey    = "scan.workers"
	timeoutConfigKey    = "scan.timeout"
	extensionsConfigKey = "scan.extensions"
	cacheLocalConfigKey = "scan.cache_local"
	decoderConfigKey    = "decoder.binary"
	maxOutputConfigKey  = "decoder.max_output"
	signaturesConfigKey = "classify.signatures"
	benignConfigKey     = "classify.benign"
	trashDirConfigKey   = "trash.dir"
	saveReportConfigKey = "report.save"
	plainConfigKey      = "ui.plain"
	journalDirConfigKey = "journal.dir"

	defaultWorkers    = 0
	defaultTimeout    = 30 * time.Second
	defaultCacheLocal = false
	defaultTrashDir   = ""
	defaultSaveReport = ""
	defaultPlain      = false
	defaultJournalDir = ".vidcheck/journal"

	envPrefix = "VIDCHECK"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".vidcheck.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(workersConfigKey, defaultWorkers)
	viper.SetDefault(timeoutConfigKey, int64(defaultTimeout.Seconds()))
	viper.SetDefault(extensionsConfigKey, adapter.DefaultExtensions)
	viper.SetDefault(cacheLocalConfigKey, defaultCacheLocal)
	viper.SetDefault(decoderConfigKey, adapter.DefaultDecoder)
	viper.SetDefault(maxOutputConfigKey, adapter.DefaultMaxOutput)
	viper.SetDefault(trashDirConfigKey, defaultTrashDir)
	viper.SetDefault(saveReportConfigKey, defaultSaveReport)
	viper.SetDefault(plainConfigKey, defaultPlain)
	viper.SetDefault(journalDirConfigKey, defaultJournalDir)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

// buildScanConfig reads the process-wide scan configuration from viper.
// Pattern lists stay nil when unset so the classifier uses its built-in
// sets. An explicitly empty benign list disables benign filtering.
func buildScanConfig() *m.ScanConfig {
	cfg := &m.ScanConfig{
		Workers:     viper.GetInt(workersConfigKey),
		Timeout:     time.Duration(viper.GetInt64(timeoutConfigKey)) * time.Second,
		Extensions:  adapter.NormalizeExtensions(viper.GetStringSlice(extensionsConfigKey)),
		CacheLocal:  viper.GetBool(cacheLocalConfigKey),
		DecoderPath: viper.GetString(decoderConfigKey),
		MaxOutput:   viper.GetInt(maxOutputConfigKey),
	}

	if viper.IsSet(signaturesConfigKey) {
		cfg.Signatures = append([]string{}, viper.GetStringSlice(signaturesConfigKey)...)
	}

	if viper.IsSet(benignConfigKey) {
		cfg.Benign = append([]string{}, viper.GetStringSlice(benignConfigKey)...)
	}

	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}

	return cfg
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose || viper.GetBool(logVerboseKey) {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
