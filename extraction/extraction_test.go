package extraction

import (
	"image/color"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"
)

func TestGetReadableFreq(t *testing.T) {
	tests := []struct {
		freq float64
		want string
	}{
		{500, "500.00 Hz"},
		{12500, "12.50 kHz"},
		{327.5e6, "327.50 MHz"},
		{1e9, "1.00 GHz"},
	}
	for _, tc := range tests {
		if got := GetReadableFreq(tc.freq); got != tc.want {
			t.Errorf("GetReadableFreq(%f) = %q, want %q", tc.freq, got, tc.want)
		}
	}
}

func TestGetColor(t *testing.T) {
	if got := GetColor(0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("GetColor(0) = %v, want black", got)
	}
	if got := GetColor(math.MaxUint16); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("GetColor(max) = %v, want white", got)
	}
	prev := -1
	for lvl := 0; lvl <= math.MaxUint16; lvl += 4096 {
		c := GetColor(uint16(lvl))
		if c.A != 255 {
			t.Errorf("GetColor(%d) alpha = %d", lvl, c.A)
		}
		sum := int(c.R) + int(c.G) + int(c.B)
		if lvl < math.MaxUint16/6 && sum < prev {
			t.Errorf("GetColor(%d) darker than previous level", lvl)
		}
		prev = sum
	}
}

func TestRender(t *testing.T) {
	t0 := time.Date(2019, 3, 7, 0, 0, 0, 0, time.UTC)
	power := mat.NewDense(3, 2, []float64{
		-118, -60,
		-118, -80,
		-118, -100,
	})
	req := &RenderRequest{
		Power:     power,
		Frequency: []float64{325e6, 327e6, 329e6},
		Times:     []time.Time{t0, t0.Add(15 * time.Minute)},
		Image:     &ImageOptions{ColumnWidth: 2},
	}
	res, err := Render(req)
	if err != nil {
		t.Fatalf("Render() returned %s", err)
	}
	b := res.Image.Bounds()
	if b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("image is %dx%d, want 4x3", b.Dx(), b.Dy())
	}
	if res.Meta.MinDBm != -118 || res.Meta.MaxDBm != -60 {
		t.Errorf("dBm range = %f..%f", res.Meta.MinDBm, res.Meta.MaxDBm)
	}
	// Floor column is the coldest color; row 0 (lowest frequency) is at the bottom.
	if got := res.Image.At(0, 2); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("floor pixel = %v, want black", got)
	}
	if got := res.Image.At(3, 2); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("hottest pixel = %v, want white", got)
	}

	req.Image.AddGrid = true
	res, err = Render(req)
	if err != nil {
		t.Fatalf("Render() with grid returned %s", err)
	}
	if b := res.Image.Bounds(); b.Dx() != 4+gridMarginLeft || b.Dy() != 3+gridMarginTop {
		t.Errorf("grid image is %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderMismatch(t *testing.T) {
	req := &RenderRequest{
		Power:     mat.NewDense(2, 2, nil),
		Frequency: []float64{1},
		Times:     make([]time.Time, 2),
	}
	if _, err := Render(req); err == nil {
		t.Errorf("Render() with short frequency axis = nil error")
	}
}
