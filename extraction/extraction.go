package extraction

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/mat"
)

var (
	// Colors defining the gradient in the heatmap. The higher the index, the warmer.
	colors = []color.RGBA{
		{0, 0, 0, 255},       // black
		{0, 0, 255, 255},     // blue
		{0, 255, 255, 255},   // cyan
		{0, 255, 0, 255},     // green
		{255, 255, 0, 255},   // yellow
		{255, 0, 0, 255},     // red
		{255, 255, 255, 255}, // white
	}

	gridColor           = color.RGBA{0, 0, 0, 255}       // black
	gridBackgroundColor = color.RGBA{255, 255, 255, 255} // white

	expSuffixLookup = map[int]string{
		0: "Hz",  // 10^0
		1: "kHz", // 10^3
		2: "MHz", // 10^6
		3: "GHz", // 10^9
		4: "THz", // 10^12
	}
)

const (
	timeFmt        = "15:04"
	gridMarginTop  = 20  // pixels
	gridMarginLeft = 100 // pixels
	gridTickLen    = 10  // pixel
	gridMinStepX   = 100 // pixels
	gridMinStepY   = 20  // pixels

	defaultColumnWidth = 4 // pixels per slot
)

// GetColor determines the color of a pixel based on a color gradient and a pixel "level".
// http://www.andrewnoske.com/wiki/Code_-_heatmaps_and_color_gradients
func GetColor(lvl uint16) color.RGBA {
	pos := float64(lvl) / math.MaxUint16 * float64(len(colors)-1)
	idx := int(pos)
	if idx >= len(colors)-1 {
		return colors[len(colors)-1]
	}
	fract := pos - float64(idx)
	lo, hi := colors[idx], colors[idx+1]
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*fract))
	}
	return color.RGBA{mix(lo.R, hi.R), mix(lo.G, hi.G), mix(lo.B, hi.B), mix(lo.A, hi.A)}
}

func GetReadableFreq(freq float64) string {
	exp := 0
	for f := freq; f >= 1000; f = f / 1000.0 {
		exp += 1
	}
	suffix, ok := expSuffixLookup[exp]
	if !ok {
		return fmt.Sprintf("%.0f Hz", freq)
	}
	return fmt.Sprintf("%.2f %s", freq/math.Pow(1000, float64(exp)), suffix)
}

func drawTick(canvas *image.RGBA, start image.Point, length int, horizontal bool) {
	for i := 0; i <= length; i++ {
		if horizontal {
			canvas.SetRGBA(start.X+i, start.Y, gridColor)
		} else {
			canvas.SetRGBA(start.X, start.Y+i, gridColor)
		}
	}
}

func findGridStepSize(step int, horizontal bool) int {
	gridMinStep := gridMinStepY
	if horizontal {
		gridMinStep = gridMinStepX
	}
	for step > gridMinStep {
		n := step / 2
		if n < gridMinStep {
			return step
		}
		step = n
	}
	return max(step, 1)
}

func drawLabel(canvas *image.RGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(gridColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// DrawGrid enlarges the waterfall and labels time along the X axis and
// frequency along the Y axis. columnWidth is the width of one slot in pixels.
func DrawGrid(source *image.RGBA, freq []float64, times []time.Time, columnWidth int) *image.RGBA {
	sb := source.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, sb.Dx()+gridMarginLeft, sb.Dy()+gridMarginTop))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{gridBackgroundColor}, image.Point{}, draw.Src)
	r := canvas.Bounds()
	r.Min.X += gridMarginLeft
	r.Min.Y += gridMarginTop
	draw.Draw(canvas, r, source, sb.Min, draw.Src)

	// X ticks: time of the slot under the tick.
	xStep := findGridStepSize(sb.Dx(), true)
	for i := 0; i < sb.Dx(); i += xStep {
		drawTick(canvas, image.Point{gridMarginLeft + i, gridMarginTop - gridTickLen}, gridTickLen, false)
		col := i / columnWidth
		if col < len(times) {
			drawLabel(canvas, gridMarginLeft+i+3, gridMarginTop-2, times[col].Format(timeFmt))
		}
	}

	// Y ticks: frequency of the row, highest frequency on top.
	yStep := findGridStepSize(sb.Dy(), false)
	for i := 0; i < sb.Dy(); i += yStep {
		drawTick(canvas, image.Point{gridMarginLeft - gridTickLen, gridMarginTop + i}, gridTickLen, true)
		row := len(freq) - 1 - i
		if row >= 0 && row < len(freq) {
			drawLabel(canvas, 5, gridMarginTop+i+5, GetReadableFreq(freq[row]))
		}
	}

	return canvas
}

type ImageOptions struct {
	// ColumnWidth is the width of one slot in pixels.
	ColumnWidth int

	AddGrid bool
}

type RenderRequest struct {
	// Power is the frequency x slot matrix in dBm.
	Power     *mat.Dense
	Frequency []float64
	Times     []time.Time
	Image     *ImageOptions
}

type RenderMetadata struct {
	ImageHeight  int
	ImageWidth   int
	MinDBm       float64
	MaxDBm       float64
	FreqPerPixel float64
	SecPerPixel  float64
}

type RenderResult struct {
	Image image.Image
	Meta  *RenderMetadata
}

// Render draws the spectrogram: one column per slot, one row per frequency
// bin, colors scaled between the smallest and largest value.
func Render(req *RenderRequest) (*RenderResult, error) {
	rows, cols := req.Power.Dims()
	if len(req.Frequency) != rows {
		return nil, fmt.Errorf("frequency axis has %d bins, matrix has %d rows", len(req.Frequency), rows)
	}
	if len(req.Times) != cols {
		return nil, fmt.Errorf("%d timestamps for %d matrix columns", len(req.Times), cols)
	}
	opts := req.Image
	if opts == nil {
		opts = &ImageOptions{}
	}
	colWidth := opts.ColumnWidth
	if colWidth <= 0 {
		colWidth = defaultColumnWidth
	}

	minDB, maxDB := mat.Min(req.Power), mat.Max(req.Power)
	dbRange := maxDB - minDB

	canvas := image.NewRGBA(image.Rect(0, 0, cols*colWidth, rows))
	for r := 0; r < rows; r++ {
		y := rows - 1 - r
		for c := 0; c < cols; c++ {
			lvl := uint16(0)
			if dbRange > 0 {
				lvl = uint16((req.Power.At(r, c) - minDB) * math.MaxUint16 / dbRange)
			}
			clr := GetColor(lvl)
			for x := c * colWidth; x < (c+1)*colWidth; x++ {
				canvas.SetRGBA(x, y, clr)
			}
		}
	}

	meta := &RenderMetadata{
		ImageHeight: rows,
		ImageWidth:  cols * colWidth,
		MinDBm:      minDB,
		MaxDBm:      maxDB,
	}
	if rows > 0 {
		meta.FreqPerPixel = (req.Frequency[rows-1] - req.Frequency[0]) / float64(rows)
	}
	if cols > 0 {
		meta.SecPerPixel = req.Times[cols-1].Sub(req.Times[0]).Seconds() / float64(cols*colWidth)
	}

	if opts.AddGrid {
		canvas = DrawGrid(canvas, req.Frequency, req.Times, colWidth)
	}
	return &RenderResult{Image: canvas, Meta: meta}, nil
}
