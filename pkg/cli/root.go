package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/harrisonrobin/tasklist/pkg/activity"
	"github.com/harrisonrobin/tasklist/pkg/config"
	"github.com/harrisonrobin/tasklist/pkg/google"
	"github.com/harrisonrobin/tasklist/pkg/index"
	"github.com/harrisonrobin/tasklist/pkg/shell"
	"github.com/harrisonrobin/tasklist/pkg/store"
	"github.com/spf13/cobra"
)

var (
	configPath   string
	logFile      string
	historyMode  string
	calendarName string
	calendarSync bool
)

// newRootCmd builds the command tree. The root command runs the menu.
func newRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tasklist",
		Short: "In-memory to-do list with undo and redo",
		Long: `tasklist is an interactive to-do list manager.

Tasks live for the duration of the session. Every add, completion, deletion,
undo and redo is appended to the activity log. Tasks with a due date can be
mirrored to a Google Calendar.`,
		RunE:          runShell,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file; credentials.json and token.json are read from its directory (default ~/.config/tasklist/config.yaml)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "activity log file (overrides config)")
	rootCmd.Flags().StringVar(&historyMode, "history", "", "history mode: legacy or reversible (overrides config)")
	rootCmd.Flags().StringVar(&calendarName, "calendar", "", "Google Calendar name to mirror to (overrides config)")
	rootCmd.Flags().BoolVar(&calendarSync, "sync", false, "mirror due-dated tasks to Google Calendar")

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newSetCalendarCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

// Execute runs the CLI.
func Execute(version string) error {
	if err := newRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("history") {
		cfg.HistoryMode = historyMode
	}
	if flags.Changed("calendar") {
		cfg.Calendar = calendarName
	}
	if flags.Changed("sync") {
		cfg.CalendarSync = calendarSync
	}
	return cfg, cfg.Validate()
}

func runShell(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	logger, closeLog, err := activity.Open(cfg.LogFile, level)
	if err != nil {
		return err
	}
	defer closeActivityLog(closeLog, &err)

	ctx := cmd.Context()
	opts := []store.Option{store.WithLogger(logger), store.WithMode(cfg.Mode())}
	if cfg.CalendarSync {
		credentialsDir, err := config.CredentialsDir(configPath)
		if err != nil {
			return err
		}
		client, err := google.NewClient(ctx, credentialsDir, cfg.Calendar, index.NewEventIndex())
		if err != nil {
			return fmt.Errorf("calendar sync: %w", err)
		}
		opts = append(opts, store.WithListener(google.NewMirror(client, logger)))
		logger.Info("Calendar mirror enabled", "calendar", cfg.Calendar)
	}

	return runSession(ctx, store.New(opts...), cmd.InOrStdin(), cmd.OutOrStdout(), logger)
}

// closeActivityLog closes the log, reporting a failure through err unless
// err already holds one.
func closeActivityLog(closeLog func() error, err *error) {
	if cerr := closeLog(); cerr != nil && *err == nil {
		*err = fmt.Errorf("failed to close activity log: %w", cerr)
	}
}

func runSession(ctx context.Context, st *store.Store, in io.Reader, out io.Writer, logger *slog.Logger) error {
	logger.Info("Session started", "history_mode", string(st.Mode()))
	err := shell.New(st, in, out, logger).Run(ctx)
	logger.Info("Session ended", "tasks", len(st.All()))
	return err
}
