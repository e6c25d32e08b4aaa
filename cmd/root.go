package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnpath/internal/config"
	"github.com/abhisek/learnpath/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "learnpath",
	Short: "Personalized learning journeys",
	Long: "learnpath scores a proficiency quiz, builds a roadmap and assigns one " +
		"practical task at a time on a Monday/Thursday rhythm.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "SQLite path or postgres:// URL (overrides LEARNPATH_DB)")
	pf.String("uploads", "", "Directory for submission attachments (overrides LEARNPATH_UPLOADS_DIR)")
	pf.String("env-file", ".env", "Dotenv file to load before reading the environment")
	pf.String("log-level", "", "Log level: debug, info, warn or error (overrides LEARNPATH_LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(learnersCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the dotenv file and the environment, then applies the
// persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v, _ := cmd.Flags().GetString("uploads"); v != "" {
		cfg.UploadsDir = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	return cfg, nil
}

// resolveDBPath returns the configured DSN, falling back to the default
// XDG location.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DatabaseDSN != "" {
		return cfg.DatabaseDSN, store.EnsureDir(cfg.DatabaseDSN)
	}
	return store.DefaultDBPath()
}

// resolveUploadsDir returns the configured uploads directory, falling back
// to <data home>/uploads.
func resolveUploadsDir(cfg config.Config) (string, error) {
	dir := cfg.UploadsDir
	if dir == "" {
		home, err := store.DataHome()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, "uploads")
	}
	return dir, os.MkdirAll(dir, 0o755)
}
