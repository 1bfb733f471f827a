package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/htauto/internal/huatai"
	"github.com/Norgate-AV/htauto/internal/logger"
	"github.com/Norgate-AV/htauto/internal/poll"
	"github.com/Norgate-AV/htauto/internal/textenc"
	"github.com/Norgate-AV/htauto/internal/timeouts"
	"github.com/Norgate-AV/htauto/internal/version"
	"github.com/Norgate-AV/htauto/internal/windows"
)

// RootCmd is the root command for the htauto CLI application.
var RootCmd = &cobra.Command{
	Use:   "htauto",
	Short: "htauto - Log in to the Huatai trading client and dismiss its pop-ups",
	Long: "htauto logs in to the Huatai trading client (xiadan.exe). It starts the client\n" +
		"if needed, fills in the login dialog, waits for the main window and closes the\n" +
		"notices shown after login. On success it prints the main window handle to stdout.",
	Version:      version.GetVersion(),
	Args:         cobra.NoArgs,
	RunE:         Execute,
	SilenceUsage: true, // Don't show usage on runtime errors
}

func init() {
	RootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	addFlags(RootCmd)
}

// addFlags declares every flag on cmd
func addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("exe", "", "path to xiadan.exe (default $"+huatai.PathEnvVar+" or "+huatai.DefaultExecutablePath+")")
	flags.StringP("user", "u", "", "account (user id)")
	flags.String("trade-password", "", "trade password")
	flags.String("comm-password", "", "communication password")
	flags.IntP("timeout", "t", timeouts.DefaultMaxSeconds, "seconds to wait for each window, also the post-login settle delay")
	flags.Bool("skip-cleanup", false, "do not close the pop-ups shown after login")
	flags.Bool("hide", false, "start the client hidden")
	flags.Bool("elevate", false, "relaunch as administrator when not elevated")
	flags.String("config", "", "YAML config file with the same keys as the flags")

	cmd.PersistentFlags().BoolP("verbose", "V", false, "enable verbose output")
	cmd.PersistentFlags().BoolP("logs", "l", false, "print the current log file to stdout and exit")
}

// handleLogsFlag processes the --logs flag and exits if needed
func handleLogsFlag(cfg *Config, exitFunc func(int)) error {
	if !cfg.ShowLogs {
		return nil
	}

	if err := logger.PrintLogFile(nil, logger.LoggerOptions{}); err != nil {
		if os.IsNotExist(err) {
			logPath := logger.GetLogPath(logger.LoggerOptions{})
			fmt.Fprintf(os.Stderr, "Log file does not exist: %s\n", logPath)
			exitFunc(1)

			return nil
		}

		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		exitFunc(1)

		return nil
	}

	exitFunc(0)
	return nil
}

// initializeLogger creates the file and console logger
func initializeLogger(cfg *Config) (logger.LoggerInterface, error) {
	log, err := logger.NewLogger(logger.LoggerOptions{
		Verbose:  cfg.Verbose,
		Compress: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// ensureElevated relaunches elevated when needed. The client usually runs as
// administrator and UIPI drops messages sent to it from a lower integrity level.
func ensureElevated(log logger.LoggerInterface) error {
	return ensureElevatedWithDeps(log, windows.IsElevated, windows.RelaunchAsAdmin, time.Sleep, os.Exit)
}

// ensureElevatedWithDeps is the testable version with injected dependencies
func ensureElevatedWithDeps(
	log logger.LoggerInterface,
	isElevated func() bool,
	relaunchAsAdmin func() error,
	sleep func(time.Duration),
	exitFunc func(int),
) error {
	log.Debug("Checking elevation status")
	if isElevated() {
		log.Debug("Running with administrator privileges")
		return nil
	}

	log.Info("Relaunching as administrator")

	if err := relaunchAsAdmin(); err != nil {
		log.Error("RelaunchAsAdmin failed", slog.Any("error", err))
		return fmt.Errorf("error relaunching as admin: %w", err)
	}

	// Exit this instance, the elevated one will continue
	log.Debug("Relaunched successfully, exiting non-elevated instance")
	sleep(timeouts.ElevationRelaunchDelay)
	log.Close()
	exitFunc(0)

	return nil
}

// clientOptions maps the CLI configuration onto construction parameters
func clientOptions(cfg *Config) huatai.Options {
	return huatai.Options{
		ExecutablePath: cfg.ExecutablePath,
		UserID:         cfg.UserID,
		TradePassword:  cfg.TradePassword,
		CommPassword:   cfg.CommPassword,
		TimeoutSeconds: cfg.TimeoutSeconds,
		HideWindow:     cfg.Hide,
		SkipCleanup:    cfg.SkipCleanup,
	}
}

// newDependencies wires the real desktop
func newDependencies(log logger.LoggerInterface) huatai.Dependencies {
	api := windows.NewWindowsAPI(log, textenc.GBK)

	return huatai.Dependencies{
		Desktop:   api,
		Launcher:  api,
		Processes: windows.NewProcessWatcher(),
		Timer:     poll.RealTimer,
	}
}

// checkInstallation only warns: a client that is already running does not need its executable.
func checkInstallation(opts huatai.Options, log logger.LoggerInterface) {
	path := opts.WithDefaults().ExecutablePath

	if err := huatai.ValidateInstallation(path); err != nil {
		log.Warn("Trading client installation check failed", slog.Any("error", err))
		return
	}

	log.Debug("Trading client installation validated", slog.String("path", path))
}

// Execute runs the provided command with the given arguments.
func Execute(cmd *cobra.Command, args []string) (err error) {
	cfg, err := NewConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	if err := handleLogsFlag(cfg, os.Exit); err != nil {
		return err
	}

	opts := clientOptions(cfg)
	if err := opts.WithDefaults().Validate(); err != nil {
		return err
	}

	log, err := initializeLogger(cfg)
	if err != nil {
		return err
	}

	defer log.Close()

	log.Debug("Starting htauto", slog.String("version", version.GetFullVersion()))
	log.Debug("Flags set",
		slog.String("user", cfg.UserID),
		slog.Any("tradePassword", logger.Secret(cfg.TradePassword)),
		slog.Int("timeout", cfg.TimeoutSeconds),
		slog.Bool("skipCleanup", cfg.SkipCleanup),
		slog.Bool("verbose", cfg.Verbose),
	)

	// Recover from panics and log them
	defer func() {
		if r := recover(); r != nil {
			log.Error("PANIC RECOVERED",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)

			fmt.Fprintf(os.Stderr, "\n*** PANIC: %v ***\n", r)
			fmt.Fprintf(os.Stderr, "Check log file for details\n")
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if cfg.Elevate {
		if err := ensureElevated(log); err != nil {
			return err
		}
	}

	checkInstallation(opts, log)

	client, err := huatai.New(log, opts, newDependencies(log))
	if err != nil {
		log.Error("Login failed", slog.Any("error", err))
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), client.MainWindow())
	return nil
}
