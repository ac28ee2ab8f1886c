package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/app"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/config"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/store"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/transport/terminal"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the bot in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		username, _ := cmd.Flags().GetString("username")
		seed, _ := cmd.Flags().GetBool("seed")

		cfg, err := loadConfig(cmd, config.CommandChat)
		if err != nil {
			return err
		}

		// The terminal belongs to the UI; logs go next to the database.
		logPath, err := store.DataPath("chat.log")
		if err != nil {
			return err
		}
		log, err := logger.NewFile(logPath)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer log.Sync()

		ctx := cmd.Context()
		a, err := app.Build(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		if seed {
			demo, err := store.DemoSeed()
			if err != nil {
				return err
			}
			if _, err := demo.Apply(ctx, a.Store.CatalogRepo()); err != nil {
				return err
			}
		}

		return terminal.Run(ctx, a.Orchestrator, terminal.Options{
			UserID:   userID,
			Username: username,
			PhotoDir: filepath.Dir(logPath),
		})
	},
}

func init() {
	chatCmd.Flags().Int64("user", 1, "User ID to chat as")
	chatCmd.Flags().String("username", "local", "Username recorded for the user")
	chatCmd.Flags().Bool("seed", false, "Load the built-in sample course before starting")
}
