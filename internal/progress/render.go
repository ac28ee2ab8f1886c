package progress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fogleman/gg"
)

// ErrEmptyGraph is returned when rendering a course without topics.
var ErrEmptyGraph = errors.New("progress: no topics to draw")

// PNGRenderer rasterizes graphs. The zero value draws with gg's built-in
// ASCII face; set FontPath to a TrueType font for other scripts.
type PNGRenderer struct {
	FontPath string
	FontSize float64
}

const (
	unit       = 180.0 // pixels per layout unit
	margin     = 110.0
	nodeRadius = 48.0
	arrowSize  = 12.0
)

// Render writes g as a PNG image.
func (r PNGRenderer) Render(w io.Writer, g Graph) error {
	if len(g.Nodes) == 0 {
		return ErrEmptyGraph
	}

	maxX, minY := 0.0, 0.0
	for _, n := range g.Nodes {
		maxX = math.Max(maxX, n.X)
		minY = math.Min(minY, n.Y)
	}
	width := int(2*margin + maxX*unit)
	height := int(2*margin - minY*unit)
	toPx := func(n Node) (float64, float64) {
		return margin + n.X*unit, margin - n.Y*unit
	}

	dc := gg.NewContext(width, height)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	if r.FontPath != "" {
		size := r.FontSize
		if size <= 0 {
			size = 12
		}
		face, err := gg.LoadFontFace(r.FontPath, size)
		if err != nil {
			return fmt.Errorf("load font %s: %w", r.FontPath, err)
		}
		dc.SetFontFace(face)
	}

	dc.SetHexColor("#555555")
	dc.SetLineWidth(2)
	for _, e := range g.Edges {
		x1, y1 := toPx(g.Nodes[e.From])
		x2, y2 := toPx(g.Nodes[e.To])
		drawArrow(dc, x1, y1, x2, y2)
	}

	for _, n := range g.Nodes {
		x, y := toPx(n)
		dc.SetHexColor(string(n.Color))
		dc.DrawCircle(x, y, nodeRadius)
		dc.Fill()

		dc.SetHexColor("#000000")
		lines := strings.Split(n.Label, "\n")
		_, lh := dc.MeasureString("M")
		top := y - float64(len(lines)-1)*lh*0.75
		for i, line := range lines {
			dc.DrawStringAnchored(line, x, top+float64(i)*lh*1.5, 0.5, 0.5)
		}
	}

	return dc.EncodePNG(w)
}

// RenderBytes renders g into memory.
func (r PNGRenderer) RenderBytes(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawArrow draws a line between two node centres, clipped to the node
// circles, with a head at the target.
func drawArrow(dc *gg.Context, x1, y1, x2, y2 float64) {
	angle := math.Atan2(y2-y1, x2-x1)
	sx, sy := x1+nodeRadius*math.Cos(angle), y1+nodeRadius*math.Sin(angle)
	ex, ey := x2-nodeRadius*math.Cos(angle), y2-nodeRadius*math.Sin(angle)

	dc.DrawLine(sx, sy, ex, ey)
	dc.Stroke()

	dc.MoveTo(ex, ey)
	dc.LineTo(ex-arrowSize*math.Cos(angle-math.Pi/6), ey-arrowSize*math.Sin(angle-math.Pi/6))
	dc.LineTo(ex-arrowSize*math.Cos(angle+math.Pi/6), ey-arrowSize*math.Sin(angle+math.Pi/6))
	dc.ClosePath()
	dc.Fill()
}
