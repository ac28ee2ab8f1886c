package llm

import "strings"

// ModelCost is USD per million tokens. Embedding models have no output
// price.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of one usage row.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1e6
}

// LookupCost returns the price of modelID, or nil when unknown. Dated
// snapshots ("gpt-4o-2024-08-06") fall back to the longest listed family
// prefix ("gpt-4o").
func LookupCost(modelID string) *ModelCost {
	modelID = strings.ToLower(strings.TrimSpace(modelID))
	if c, ok := prices[modelID]; ok {
		return &c
	}

	best := ""
	for family := range prices {
		if len(family) > len(best) && strings.HasPrefix(modelID, family+"-") {
			best = family
		}
	}
	if best == "" {
		return nil
	}
	c := prices[best]
	return &c
}

// prices covers the models edubot can be configured with, chat and
// embeddings. Mock requests are free.
var prices = map[string]ModelCost{
	"mock": {},

	// Chat, OpenAI
	"gpt-3.5-turbo": {0.5, 1.5},
	"gpt-4":         {30, 60},
	"gpt-4-turbo":   {10, 30},
	"gpt-4o":        {2.5, 10},
	"gpt-4o-mini":   {0.15, 0.6},
	"gpt-4.1":       {2, 8},
	"gpt-4.1-mini":  {0.4, 1.6},
	"gpt-4.1-nano":  {0.1, 0.4},
	"gpt-5":         {1.25, 10},
	"gpt-5-mini":    {0.25, 2},
	"gpt-5-nano":    {0.05, 0.4},
	"o3-mini":       {1.1, 4.4},
	"o4-mini":       {1.1, 4.4},

	// Embeddings, OpenAI
	"text-embedding-3-small": {0.02, 0},
	"text-embedding-3-large": {0.13, 0},
	"text-embedding-ada-002": {0.1, 0},

	// Chat, Anthropic
	"claude-3-5-haiku":  {0.8, 4},
	"claude-3-7-sonnet": {3, 15},
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4":   {3, 15},
	"claude-sonnet-4-5": {3, 15},
	"claude-opus-4-1":   {15, 75},

	// Chat, Gemini
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
}
