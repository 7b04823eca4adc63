package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"travelsnap/internal/app"
	"travelsnap/internal/config"
	"travelsnap/internal/logger"
	"travelsnap/internal/render"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	jsonOutput bool

	application *app.App
	logFile     *os.File
)

var rootCmd = &cobra.Command{
	Use:   "travelsnap",
	Short: "Explore places: weather, attractions and favorites",
	Long: `TravelSnap searches a place, shows its weather and nearby attractions,
and keeps a list of favorite attractions on the travel backend.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, statusCmd)
	rootCmd.AddCommand(searchCmd, clickCmd, hoverCmd)
	rootCmd.AddCommand(favoritesCmd, exploreCmd)
}

// setup loads configuration and wires the explorer before any command runs
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.Discard()
	switch path := config.GetEnvOrDefault("TRAVELSNAP_LOG_FILE", ""); {
	case path != "":
		if logFile, err = openLogFile(path); err != nil {
			return err
		}
		log = logger.NewWithWriter(logFile)
	// explore owns the terminal and only ever logs to a file
	case verbose && cmd != exploreCmd:
		log = logger.NewWithWriter(cmd.ErrOrStderr())
	}
	logger.SetDefault(log)

	application, err = app.New(cfg, log)
	return err
}

func teardown(cmd *cobra.Command, args []string) error {
	if logFile != nil {
		return logFile.Close()
	}
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, render.ErrorStyle.Render("Error: "+err.Error()))
		}
		stop()
		os.Exit(1)
	}
}
