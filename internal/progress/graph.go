// Package progress draws a learner's course progress as a path graph.
package progress

import (
	"fmt"
	"strings"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/store"
)

// Color is a node colour by mark band.
type Color string

const (
	Red   Color = "#ff0000"
	Amber Color = "#ff9900"
	Green Color = "#00aa00"
)

// Thresholds of the colour bands, in percent.
const (
	PassMark = 50
	GoodMark = 80
)

// ColorFor maps a mark to its colour; a nil mark is red.
func ColorFor(mark *int) Color {
	switch {
	case mark == nil || *mark < PassMark:
		return Red
	case *mark < GoodMark:
		return Amber
	default:
		return Green
	}
}

// Label returns "<name>\n(<mark>%)", with "-" for a missing mark.
func Label(name string, mark *int) string {
	if mark == nil {
		return name + "\n(-%)"
	}
	return fmt.Sprintf("%s\n(%d%%)", name, *mark)
}

// Node is one topic on the path.
type Node struct {
	TopicID int64
	Name    string
	Mark    *int
	Label   string
	Color   Color
	X, Y    float64
}

// Edge joins Nodes[From] to Nodes[To].
type Edge struct {
	From, To int
}

// Graph is a directed path over a course's topics in position order.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Build lays out topics on the diagonal x = i, y = -i/2 with an edge from
// each topic to the next. topics must already be in position order.
func Build(topics []store.TopicProgress) Graph {
	g := Graph{Nodes: make([]Node, len(topics))}
	for i, t := range topics {
		g.Nodes[i] = Node{
			TopicID: t.ID,
			Name:    t.Name,
			Mark:    t.Mark,
			Label:   Label(t.Name, t.Mark),
			Color:   ColorFor(t.Mark),
			X:       float64(i),
			Y:       -float64(i) / 2,
		}
		if i > 0 {
			g.Edges = append(g.Edges, Edge{From: i - 1, To: i})
		}
	}
	return g
}

// Text renders the graph as one line per node, for clients without images.
func (g Graph) Text() string {
	var b strings.Builder
	for i, n := range g.Nodes {
		if i > 0 {
			b.WriteString("   |\n")
		}
		fmt.Fprintf(&b, "%s %s\n", colorMarker(n.Color), strings.ReplaceAll(n.Label, "\n", " "))
	}
	return b.String()
}

func colorMarker(c Color) string {
	switch c {
	case Green:
		return "[+]"
	case Amber:
		return "[~]"
	default:
		return "[ ]"
	}
}
