package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/config"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "edubot",
	Short: "LLM-based educational bot with retrieval-augmented answers",
	Long: "edubot is a tutoring chat bot: guided problem solving, lecture summaries, code review,\n" +
		"video discovery, Q&A over indexed documents, and per-course explanations and tests.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		return config.LoadEnvFile(envFile)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a .env file merged into the environment")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides EDUBOT_DB)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment, applies flag overrides and checks what
// command needs.
func loadConfig(cmd *cobra.Command, command string) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.Path = p
	}
	if err := cfg.ResolvePaths(); err != nil {
		return config.Config{}, fmt.Errorf("resolve paths: %w", err)
	}
	if err := cfg.Validate(command); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}
