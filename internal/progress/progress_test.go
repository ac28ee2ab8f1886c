package progress

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/store"
)

func mark(v int) *int { return &v }

func TestColorFor(t *testing.T) {
	tests := []struct {
		mark *int
		want Color
	}{
		{nil, Red},
		{mark(0), Red},
		{mark(49), Red},
		{mark(50), Amber},
		{mark(79), Amber},
		{mark(80), Green},
		{mark(100), Green},
	}
	for _, tt := range tests {
		if got := ColorFor(tt.mark); got != tt.want {
			t.Errorf("ColorFor(%v) = %s, want %s", tt.mark, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "BFS\n(80%)", Label("BFS", mark(80)))
	assert.Equal(t, "BFS\n(0%)", Label("BFS", mark(0)))
	assert.Equal(t, "BFS\n(-%)", Label("BFS", nil))
}

func sampleTopics() []store.TopicProgress {
	return []store.TopicProgress{
		{Topic: store.Topic{ID: 1, Name: "BFS", Position: 1}, Mark: mark(90)},
		{Topic: store.Topic{ID: 2, Name: "Dijkstra", Position: 2}, Mark: mark(50)},
		{Topic: store.Topic{ID: 3, Name: "A*", Position: 3}},
	}
}

func TestBuild(t *testing.T) {
	g := Build(sampleTopics())
	require.Len(t, g.Nodes, 3)
	assert.Equal(t, []Edge{{0, 1}, {1, 2}}, g.Edges)

	for i, n := range g.Nodes {
		assert.Equal(t, float64(i), n.X)
		assert.Equal(t, -float64(i)/2, n.Y)
	}
	assert.Equal(t, Green, g.Nodes[0].Color)
	assert.Equal(t, Amber, g.Nodes[1].Color)
	assert.Equal(t, Red, g.Nodes[2].Color)
	assert.Equal(t, "Dijkstra\n(50%)", g.Nodes[1].Label)
}

func TestBuildEmpty(t *testing.T) {
	g := Build(nil)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
}

func TestText(t *testing.T) {
	got := Build(sampleTopics()).Text()
	assert.Equal(t, "[+] BFS (90%)\n   |\n[~] Dijkstra (50%)\n   |\n[ ] A* (-%)\n", got)
}

func TestRenderPNG(t *testing.T) {
	data, err := PNGRenderer{}.RenderBytes(Build(sampleTopics()))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	b := img.Bounds()
	assert.Equal(t, int(2*margin+2*unit), b.Dx())
	assert.Equal(t, int(2*margin+unit), b.Dy())

	// Centre of the first node is filled with its colour.
	r, g, bl, _ := img.At(int(margin), int(margin)+nodeRadius/2).RGBA()
	assert.Equal(t, uint32(0), r>>8)
	assert.Equal(t, uint32(0xaa), g>>8)
	assert.Equal(t, uint32(0), bl>>8)
}

func TestRenderEmpty(t *testing.T) {
	err := PNGRenderer{}.Render(&bytes.Buffer{}, Graph{})
	assert.True(t, errors.Is(err, ErrEmptyGraph))
}

func TestRenderMissingFont(t *testing.T) {
	_, err := PNGRenderer{FontPath: "/nonexistent/font.ttf"}.RenderBytes(Build(sampleTopics()))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "load font"))
}
