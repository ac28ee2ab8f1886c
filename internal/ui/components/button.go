package components

import (
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/ui/theme"
)

// Button is one reply keyboard key.
type Button struct {
	Label  string
	Active bool
}

func (b Button) View() string {
	if b.Active {
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	return theme.ButtonInactive.Render(b.Label)
}
