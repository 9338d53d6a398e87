package heatmap

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/soluscan/soluscan/internal/domain"
)

func testMatrix() domain.HeatmapMatrix {
	panel := domain.SolventPanel()
	grid := domain.TemperatureGrid()

	m := domain.HeatmapMatrix{
		Solvents:     panel,
		Temperatures: grid,
		Values:       make([][]float64, len(panel)),
	}
	for si := range panel {
		row := make([]float64, len(grid))
		for ti, t := range grid {
			row[ti] = -6 + float64(si)*0.4 + (t-250)/100
		}
		m.Values[si] = row
	}
	// One failed cell.
	m.Values[2][3] = math.NaN()
	return m
}

func decodePNG(t *testing.T, data []byte) (width, height int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestRenderStatic(t *testing.T) {
	data, err := New().RenderStatic(testMatrix(), "caffeine")
	if err != nil {
		t.Fatalf("RenderStatic: %v", err)
	}

	w, h := decodePNG(t, data)
	wantW := leftMargin + cellW*domain.GridTempCount + rightMargin
	wantH := topMargin + cellH*domain.PanelSize + bottomMargin
	if w != wantW || h != wantH {
		t.Errorf("expected %dx%d image, got %dx%d", wantW, wantH, w, h)
	}
}

func TestRenderDynamic(t *testing.T) {
	data, err := New().RenderDynamic(testMatrix(), "caffeine")
	if err != nil {
		t.Fatalf("RenderDynamic: %v", err)
	}
	decodePNG(t, data)
}

func TestRender_Deterministic(t *testing.T) {
	r := New()
	m := testMatrix()

	a, err := r.RenderStatic(m, "x")
	if err != nil {
		t.Fatalf("RenderStatic: %v", err)
	}
	b, err := r.RenderStatic(m, "x")
	if err != nil {
		t.Fatalf("RenderStatic: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("rendering must be deterministic")
	}
}

func TestRender_ScalesDiffer(t *testing.T) {
	r := New()
	m := testMatrix()

	static, err := r.RenderStatic(m, "x")
	if err != nil {
		t.Fatalf("RenderStatic: %v", err)
	}
	dynamic, err := r.RenderDynamic(m, "x")
	if err != nil {
		t.Fatalf("RenderDynamic: %v", err)
	}
	if bytes.Equal(static, dynamic) {
		t.Error("static and dynamic renderings must differ")
	}
}

func TestRender_EmptyMatrix(t *testing.T) {
	if _, err := New().RenderStatic(domain.HeatmapMatrix{}, "x"); err == nil {
		t.Error("expected error for empty matrix")
	}
}

func TestStaticColor_Buckets(t *testing.T) {
	tests := []struct {
		value float64
		want  int // palette index
	}{
		{-9, 0},
		{-5.5, 0},
		{-4, 1},
		{-2, 2},
		{0, 3},
		{0.7, 4},
		{3, 4},
	}
	for _, tt := range tests {
		got := staticColor(tt.value)
		if got != staticColors[tt.want] {
			t.Errorf("staticColor(%g): expected palette[%d]", tt.value, tt.want)
		}
	}
}

func TestDynamicColor_Endpoints(t *testing.T) {
	lo := dynamicColor(-3, -3, 1)
	if lo.B != 255 || lo.R != 0 {
		t.Errorf("minimum must be blue, got %+v", lo)
	}
	hi := dynamicColor(1, -3, 1)
	if hi.R != 255 || hi.B != 0 {
		t.Errorf("maximum must be red, got %+v", hi)
	}
	mid := dynamicColor(-1, -3, 1)
	if mid.R != 255 || mid.G != 255 || mid.B != 255 {
		t.Errorf("midpoint must be white, got %+v", mid)
	}
}

func TestValueRange_IgnoresNaN(t *testing.T) {
	m := domain.HeatmapMatrix{Values: [][]float64{{math.NaN(), -2, 1}}}

	lo, hi := valueRange(m)
	if lo != -2 || hi != 1 {
		t.Errorf("expected range [-2, 1], got [%g, %g]", lo, hi)
	}
}
