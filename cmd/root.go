package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/jon4hz/oktasim/internal/api"
	"github.com/jon4hz/oktasim/internal/config"
	"github.com/jon4hz/oktasim/internal/database"
	"github.com/spf13/cobra"
)

var rootCmdPersistentFlags struct {
	LogFile    string
	ConfigFile string
	LogLevel   string
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootCmdPersistentFlags.LogFile, "log-file", "", "File to write logs to")
	rootCmd.PersistentFlags().StringVarP(&rootCmdPersistentFlags.ConfigFile, "config", "c", "", "Path to config file (default: search for config.yml in current dir, ~/.oktasim, /etc/oktasim)")
	rootCmd.PersistentFlags().StringVar(&rootCmdPersistentFlags.LogLevel, "log-level", "", "Log level (debug, info, warn, error) - overrides config file setting")
}

var rootCmd = &cobra.Command{
	Use:   "oktasim",
	Short: "oktasim is a minimal user directory API",
	Long:  `oktasim provisions, lists, retrieves and deprovisions users stored in a local SQLite database.`,
	Example: `oktasim
  SECRET_KEY=changeme DATABASE_PATH=/var/lib/oktasim/users.db oktasim
  oktasim -c /path/to/config.yml --log-level debug`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		loadDotEnv()
		logToFile()
	},
	Run: root,
}

// Root returns the root command.
func Root() *cobra.Command {
	return rootCmd
}

func root(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	level := cfg.LogLevel
	if rootCmdPersistentFlags.LogLevel != "" {
		level = rootCmdPersistentFlags.LogLevel
	}
	setLogLevel(level)

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close() //nolint: errcheck

	logDatabaseInfo(cmd.Context(), db, cfg.Database.Path)

	server, err := api.New(cfg, db, log.GetLevel() == log.DebugLevel)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("🚀 Okta Simulation API is running on http://%s\n", cfg.Listen)
	log.Info("starting API server", "listen", cfg.Listen)

	if err := server.Run(ctx); err != nil {
		log.Error("API server error", "error", err)
		return
	}
	log.Info("shutting down gracefully...")
}

func logDatabaseInfo(ctx context.Context, db database.DB, path string) {
	count, err := db.CountUsers(ctx)
	if err != nil {
		log.Warn("failed to count users", "error", err)
		return
	}
	var size string
	if fi, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(fi.Size())) //nolint:gosec
	}
	log.Info("database ready", "path", path, "users", count, "size", size)
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.Warnf("unknown log level %s, defaulting to info", level)
		log.SetLevel(log.InfoLevel)
	}
}

// loadDotEnv populates the environment from a .env file in the working directory, if any.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("failed to load .env file", "error", err)
	}
}

func logToFile() {
	if rootCmdPersistentFlags.LogFile == "" {
		return
	}
	file, err := os.OpenFile(rootCmdPersistentFlags.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		log.Errorf("failed to open log file: %v", err)
		return
	}

	multiWriter := io.MultiWriter(os.Stderr, file)
	log.SetOutput(multiWriter)
	log.Info("logging to both console and file", "file", rootCmdPersistentFlags.LogFile)
}
