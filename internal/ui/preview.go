package ui

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/atomicstack/tabflip/internal/tabs"
)

const halfBlock = "▀"

type thumbKey struct {
	tab        tabs.ID
	capturedAt int64
	cols       int
	rows       int
}

// thumbnail returns the half-block rendering of d's preview, cached by tab and
// capture time. ok is false when d has no decodable preview.
func (m *Model) thumbnail(d tabs.Descriptor, cols, rows int) (string, bool) {
	if d.Preview == nil || len(d.Preview.Data) == 0 {
		return "", false
	}
	key := thumbKey{tab: d.ID, capturedAt: d.Preview.CapturedAt.UnixNano(), cols: cols, rows: rows}
	if cached, ok := m.thumbs[key]; ok {
		return cached, cached != ""
	}
	out, err := renderThumbnail(d.Preview, cols, rows)
	if err != nil {
		m.thumbs[key] = ""
		return "", false
	}
	m.thumbs[key] = out
	return out, true
}

// renderThumbnail scales p into cols x rows terminal cells, two pixels per
// cell, with nearest-neighbour sampling.
func renderThumbnail(p *tabs.Preview, cols, rows int) (string, error) {
	if cols <= 0 || rows <= 0 {
		return "", fmt.Errorf("invalid thumbnail size %dx%d", cols, rows)
	}
	img, err := jpeg.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return "", fmt.Errorf("decode preview: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return "", fmt.Errorf("empty preview image")
	}
	pixelRows := rows * 2
	lines := make([]string, rows)
	var b strings.Builder
	for y := 0; y < rows; y++ {
		b.Reset()
		for x := 0; x < cols; x++ {
			top := sample(img, bounds, x, 2*y, cols, pixelRows)
			bottom := sample(img, bounds, x, 2*y+1, cols, pixelRows)
			b.WriteString(lipgloss.NewStyle().Foreground(top).Background(bottom).Render(halfBlock))
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n"), nil
}

func sample(img image.Image, bounds image.Rectangle, x, y, cols, rows int) color.Color {
	px := bounds.Min.X + x*bounds.Dx()/cols
	py := bounds.Min.Y + y*bounds.Dy()/rows
	return img.At(px, py)
}
