package main

import (
	"os"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
