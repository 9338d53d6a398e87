// Package heatmap renders the solvent screening matrix as PNG images, one
// with a fixed solubility-class palette and one normalized to the matrix's own
// value range.
package heatmap

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/soluscan/soluscan/internal/domain"
)

// Static palette: five solubility classes over fixed LogS boundaries, so the
// same color always means the same solubility regardless of solute.
var (
	staticBounds = []float64{-6, -5, -3, -1, 0.5, 1}
	staticColors = []color.RGBA{
		{R: 0x8B, G: 0x00, B: 0x00, A: 0xFF}, // practically insoluble
		{R: 0xFF, G: 0x8C, B: 0x00, A: 0xFF}, // poorly soluble
		{R: 0xFF, G: 0xD7, B: 0x00, A: 0xFF}, // moderately soluble
		{R: 0x90, G: 0xEE, B: 0x90, A: 0xFF}, // soluble
		{R: 0x00, G: 0x64, B: 0x00, A: 0xFF}, // highly soluble
	}
	staticLabels = []string{"practically insoluble", "poorly", "moderate", "soluble", "highly soluble"}

	failedCell = color.RGBA{R: 0xC8, G: 0xC8, B: 0xC8, A: 0xFF}
)

// Layout constants, in pixels.
const (
	cellW        = 30
	cellH        = 22
	leftMargin   = 210 // solvent names
	topMargin    = 40  // title
	bottomMargin = 36  // temperature labels
	rightMargin  = 150 // legend
)

// Renderer draws screening heatmaps. Stateless and goroutine-safe.
type Renderer struct{}

// New creates a Renderer.
func New() *Renderer { return &Renderer{} }

// RenderStatic draws the matrix with the fixed five-class palette.
func (r *Renderer) RenderStatic(m domain.HeatmapMatrix, title string) ([]byte, error) {
	return r.render(m, title+" (absolute scale)", staticColor, drawStaticLegend)
}

// RenderDynamic draws the matrix normalized to its own min/max on a
// blue-white-red gradient, which surfaces relative differences even for
// solutes whose whole matrix sits in one static class.
func (r *Renderer) RenderDynamic(m domain.HeatmapMatrix, title string) ([]byte, error) {
	lo, hi := valueRange(m)
	cell := func(v float64) color.RGBA { return dynamicColor(v, lo, hi) }
	legend := func(dc *gg.Context, x, y float64) {
		drawDynamicLegend(dc, x, y, lo, hi)
	}
	return r.render(m, title+" (relative scale)", cell, legend)
}

func (r *Renderer) render(
	m domain.HeatmapMatrix,
	title string,
	cellColor func(v float64) color.RGBA,
	legend func(dc *gg.Context, x, y float64),
) ([]byte, error) {
	if len(m.Solvents) == 0 || len(m.Temperatures) == 0 {
		return nil, fmt.Errorf("empty heatmap matrix")
	}

	width := leftMargin + cellW*len(m.Temperatures) + rightMargin
	height := topMargin + cellH*len(m.Solvents) + bottomMargin
	dc := gg.NewContext(width, height)

	dc.SetColor(color.White)
	dc.Clear()

	dc.SetColor(color.Black)
	dc.DrawStringAnchored(title, float64(width)/2, topMargin/2, 0.5, 0.5)

	for si := range m.Solvents {
		y := float64(topMargin + si*cellH)
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(m.Solvents[si].Name, leftMargin-8, y+cellH/2, 1, 0.5)

		for ti := range m.Temperatures {
			x := float64(leftMargin + ti*cellW)
			v := m.Values[si][ti]
			if math.IsNaN(v) {
				dc.SetColor(failedCell)
			} else {
				dc.SetColor(cellColor(v))
			}
			dc.DrawRectangle(x, y, cellW, cellH)
			dc.Fill()
		}
	}

	// Temperature axis, every other tick to keep labels readable.
	dc.SetColor(color.Black)
	for ti, t := range m.Temperatures {
		if ti%2 != 0 {
			continue
		}
		x := float64(leftMargin+ti*cellW) + cellW/2
		dc.DrawStringAnchored(fmt.Sprintf("%.0f", t), x, float64(topMargin+cellH*len(m.Solvents))+14, 0.5, 0.5)
	}
	dc.DrawStringAnchored("T, K", leftMargin+float64(cellW*len(m.Temperatures))/2,
		float64(height)-10, 0.5, 0.5)

	legend(dc, float64(leftMargin+cellW*len(m.Temperatures)+16), topMargin)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode heatmap png: %w", err)
	}
	return buf.Bytes(), nil
}

// staticColor buckets a LogS value into the fixed palette. Values beyond the
// outer boundaries clamp into the edge classes.
func staticColor(v float64) color.RGBA {
	for i := len(staticBounds) - 2; i > 0; i-- {
		if v >= staticBounds[i] {
			return staticColors[i]
		}
	}
	return staticColors[0]
}

// dynamicColor maps v linearly onto blue -> white -> red over [lo, hi].
func dynamicColor(v, lo, hi float64) color.RGBA {
	t := 0.5
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	if t < 0.5 {
		// blue to white
		k := t * 2
		return color.RGBA{R: uint8(255 * k), G: uint8(255 * k), B: 255, A: 255}
	}
	// white to red
	k := (t - 0.5) * 2
	return color.RGBA{R: 255, G: uint8(255 * (1 - k)), B: uint8(255 * (1 - k)), A: 255}
}

// valueRange scans finite matrix values. A matrix with no finite values maps
// everything to the midpoint color.
func valueRange(m domain.HeatmapMatrix) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range m.Values {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

func drawStaticLegend(dc *gg.Context, x, y float64) {
	const swatch = 14
	for i := len(staticColors) - 1; i >= 0; i-- {
		row := float64(len(staticColors)-1-i) * (swatch + 6)
		dc.SetColor(staticColors[i])
		dc.DrawRectangle(x, y+row, swatch, swatch)
		dc.Fill()
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(staticLabels[i], x+swatch+6, y+row+swatch/2, 0, 0.5)
	}
}

func drawDynamicLegend(dc *gg.Context, x, y, lo, hi float64) {
	const barW, barH = 14, 120
	for i := 0; i < barH; i++ {
		v := hi - (hi-lo)*float64(i)/float64(barH-1)
		dc.SetColor(dynamicColor(v, lo, hi))
		dc.DrawRectangle(x, y+float64(i), barW, 1)
		dc.Fill()
	}
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f", hi), x+barW+6, y, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f", lo), x+barW+6, y+barH, 0, 0.5)
	dc.DrawStringAnchored("LogS", x+barW+6, y+barH/2, 0, 0.5)
}
