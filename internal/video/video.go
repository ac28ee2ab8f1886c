// Package video finds educational YouTube videos for a topic.
package video

import (
	"context"
	"regexp"
	"strings"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/agent"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/llm"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"
)

// MaxLinks is how many links Find returns at most.
const MaxLinks = 3

var youTubeURL = regexp.MustCompile(`https?://(www\.)?youtube\.com/watch\?v=[A-Za-z0-9_-]+`)

// ExtractYouTubeLinks returns up to max distinct YouTube watch URLs in the
// order they first appear in s. max <= 0 means no limit.
func ExtractYouTubeLinks(s string, max int) []string {
	var links []string
	seen := make(map[string]bool)
	for _, m := range youTubeURL.FindAllString(s, -1) {
		if seen[m] {
			continue
		}
		seen[m] = true
		links = append(links, m)
		if max > 0 && len(links) == max {
			break
		}
	}
	return links
}

// Agent is the tool-calling loop Finder delegates to.
type Agent interface {
	Run(ctx context.Context, system, user string) (agent.Result, error)
}

var findTemplate = llm.NewTemplate("video-discovery",
	`You help find educational videos on YouTube. Use the provided search tool to look for them. Answer briefly and include only YouTube links, one per line.`,
	`Find the 3 best educational YouTube videos on the topic: {{.topic}}`,
	"topic")

// Finder asks an agent for videos and reduces its answer to links.
type Finder struct {
	agent Agent
	log   *logger.Logger
}

func NewFinder(a Agent, log *logger.Logger) *Finder {
	if log == nil {
		log = logger.Nop()
	}
	return &Finder{agent: a, log: log}
}

// Find returns newline-separated YouTube links for topic. When the agent's
// answer holds no YouTube link, the answer is returned as is. Errors from
// the agent are returned unchanged.
func (f *Finder) Find(ctx context.Context, topic string) (string, error) {
	system, user, err := findTemplate.Render(map[string]any{"topic": topic})
	if err != nil {
		return "", err
	}

	res, err := f.agent.Run(llm.WithPurpose(ctx, findTemplate.Name), system, user)
	if err != nil {
		return "", err
	}

	links := ExtractYouTubeLinks(res.Output, MaxLinks)
	f.log.Debug("video search finished", "tool_calls", res.ToolCalls, "links", len(links))
	if len(links) == 0 {
		return res.Output, nil
	}
	return strings.Join(links, "\n"), nil
}
