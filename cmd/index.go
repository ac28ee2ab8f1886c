package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/app"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/config"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/docindex"
)

var indexCmd = &cobra.Command{
	Use:   "index <path>...",
	Short: "Embed documents into the Q&A index",
	Long:  "Loads .pdf, .txt and .md files (directories are walked), splits them into chunks and stores their embeddings in the pdf_docs index.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chunkSize, _ := cmd.Flags().GetInt("chunk-size")
		overlap, _ := cmd.Flags().GetInt("chunk-overlap")
		workers, _ := cmd.Flags().GetInt("workers")

		cfg, err := loadConfig(cmd, config.CommandIndex)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx := cmd.Context()
		st, err := app.OpenStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		emb, err := app.NewEmbedder(cfg, st.EventRepo(), log)
		if err != nil {
			return err
		}
		vectors, closeVectors, err := app.OpenVectorStore(ctx, cfg, emb.Dimensions(), log)
		if err != nil {
			return err
		}
		defer closeVectors()

		start := time.Now()
		stats, err := docindex.Ingest(ctx, vectors, emb, args, docindex.IngestOptions{
			ChunkSize:    chunkSize,
			ChunkOverlap: overlap,
			BatchSize:    docindex.DefaultIngestOptions().BatchSize,
			Workers:      workers,
			Log:          log.With("component", "ingest"),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %d chunks from %d files in %s\n", stats.Chunks, stats.Files, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	def := docindex.DefaultIngestOptions()
	indexCmd.Flags().Int("chunk-size", def.ChunkSize, "Characters per chunk")
	indexCmd.Flags().Int("chunk-overlap", def.ChunkOverlap, "Characters shared by neighbouring chunks")
	indexCmd.Flags().Int("workers", def.Workers, "Concurrent embedding requests")
}
