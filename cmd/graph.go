package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/app"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/config"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/progress"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/ui/components"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Render a learner's course progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		courseID, _ := cmd.Flags().GetInt64("course")
		out, _ := cmd.Flags().GetString("out")

		cfg, err := loadConfig(cmd, config.CommandGraph)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := app.OpenStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		course, err := st.CatalogRepo().CourseByID(ctx, courseID)
		if err != nil {
			return err
		}
		if course == nil {
			return fmt.Errorf("course %d not found", courseID)
		}
		topics, err := st.CatalogRepo().Progress(ctx, userID, courseID)
		if err != nil {
			return err
		}
		g := progress.Build(topics)

		fmt.Printf("%s: user %d\n\n", course.Name, userID)
		for _, n := range g.Nodes {
			fmt.Println(components.ProgressBar{Label: n.Name, Percent: n.Mark, Color: string(n.Color), Width: 60}.View())
		}

		if out == "" {
			return nil
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := app.NewGraphRenderer(cfg).Render(f, g); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("\nWrote %s\n", out)
		return nil
	},
}

func init() {
	graphCmd.Flags().Int64("user", 0, "User ID")
	graphCmd.Flags().Int64("course", 0, "Course ID")
	graphCmd.Flags().StringP("out", "o", "", "Write the graph as PNG to this file")
	graphCmd.MarkFlagRequired("user")
	graphCmd.MarkFlagRequired("course")
}
