package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/app"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/config"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed [catalog.yaml]",
	Short: "Load courses and topics into the catalog",
	Long:  "Upserts courses and topics from a YAML catalog. Without a file the built-in sample course is loaded.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, config.CommandSeed)
		if err != nil {
			return err
		}

		var f store.SeedFile
		if len(args) == 1 {
			f, err = store.LoadSeedFile(args[0])
		} else {
			f, err = store.DemoSeed()
		}
		if err != nil {
			return err
		}

		st, err := app.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		courses, err := f.Apply(cmd.Context(), st.CatalogRepo())
		if err != nil {
			return err
		}
		for i, c := range courses {
			fmt.Printf("%-4d %s (%d topics)\n", c.ID, c.Name, len(f.Courses[i].Topics))
		}
		return nil
	},
}
