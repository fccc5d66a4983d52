package texture

import (
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Pattern names a calibration test pattern.
type Pattern string

// Registered test patterns.
const (
	PatternGrid               Pattern = "grid"
	PatternCrosshatch         Pattern = "crosshatch"
	PatternCheckerboard       Pattern = "checkerboard"
	PatternColorBarsSMPTE     Pattern = "color_bars_smpte"
	PatternColorBarsFull      Pattern = "color_bars_full"
	PatternGradientHorizontal Pattern = "gradient_horizontal"
	PatternGradientVertical   Pattern = "gradient_vertical"
	PatternGradientRadial     Pattern = "gradient_radial"
	PatternCircles            Pattern = "geometry_circles"
	PatternSquares            Pattern = "geometry_squares"
	PatternMixed              Pattern = "geometry_mixed"
	PatternFocus              Pattern = "focus"
)

// Default pattern size.
const (
	DefaultPatternWidth  = 1920
	DefaultPatternHeight = 1080
)

var (
	black = rgb(0, 0, 0)
	white = rgb(255, 255, 255)
	red   = rgb(255, 0, 0)
	green = rgb(0, 255, 0)
)

var patterns = []Pattern{
	PatternGrid,
	PatternCrosshatch,
	PatternCheckerboard,
	PatternColorBarsSMPTE,
	PatternColorBarsFull,
	PatternGradientHorizontal,
	PatternGradientVertical,
	PatternGradientRadial,
	PatternCircles,
	PatternSquares,
	PatternMixed,
	PatternFocus,
}

var generators = map[Pattern]func(c *canvas){
	PatternGrid:               drawGrid,
	PatternCrosshatch:         drawCrosshatch,
	PatternCheckerboard:       drawCheckerboard,
	PatternColorBarsSMPTE:     drawSMPTEBars,
	PatternColorBarsFull:      drawFullBars,
	PatternGradientHorizontal: func(c *canvas) { c.gradient(black, white, horizontalT) },
	PatternGradientVertical:   func(c *canvas) { c.gradient(black, white, verticalT) },
	PatternGradientRadial:     func(c *canvas) { c.gradient(black, white, radialT) },
	PatternCircles:            func(c *canvas) { drawConcentric(c, false) },
	PatternSquares:            func(c *canvas) { drawConcentric(c, true) },
	PatternMixed:              drawMixed,
	PatternFocus:              drawFocus,
}

// Patterns returns every registered pattern in menu order.
func Patterns() []Pattern {
	out := make([]Pattern, len(patterns))
	copy(out, patterns)
	return out
}

// ParsePattern resolves a pattern name.
//
// Parameters:
//   - name: the pattern name, e.g. "grid" or "color_bars_smpte"
//
// Returns:
//   - Pattern: the pattern
//   - bool: false when the name is not registered
func ParsePattern(name string) (Pattern, bool) {
	p := Pattern(name)
	_, ok := generators[p]
	return p, ok
}

// GeneratePattern renders a calibration test pattern.
//
// Parameters:
//   - p: the pattern
//   - width: image width in pixels
//   - height: image height in pixels
//
// Returns:
//   - *image.NRGBA: the opaque pattern image
//   - error: ErrUnknownPattern or ErrInvalidSize
func GeneratePattern(p Pattern, width, height int) (*image.NRGBA, error) {
	gen, ok := generators[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, p)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	c := newCanvas(width, height)
	gen(c)
	return c.img, nil
}

// canvas accumulates filled paths and composites them in one colour at a time.
type canvas struct {
	img  *image.NRGBA
	z    *vector.Rasterizer
	w, h float32
}

func newCanvas(width, height int) *canvas {
	c := &canvas{
		img: image.NewNRGBA(image.Rect(0, 0, width, height)),
		z:   vector.NewRasterizer(width, height),
		w:   float32(width),
		h:   float32(height),
	}
	c.background(black)
	return c
}

func (c *canvas) background(col color.NRGBA) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *canvas) clampX(x float32) float32 { return min(max(x, 0), c.w) }
func (c *canvas) clampY(y float32) float32 { return min(max(y, 0), c.h) }

func (c *canvas) rect(x0, y0, x1, y1 float32) {
	x0, x1 = c.clampX(x0), c.clampX(x1)
	y0, y1 = c.clampY(y0), c.clampY(y1)
	if x1 <= x0 || y1 <= y0 {
		return
	}
	c.z.MoveTo(x0, y0)
	c.z.LineTo(x1, y0)
	c.z.LineTo(x1, y1)
	c.z.LineTo(x0, y1)
	c.z.ClosePath()
}

// vline and hline add a line of the given width centred on x or y across the canvas.
func (c *canvas) vline(x, width float32) { c.rect(x-width/2, 0, x+width/2, c.h) }
func (c *canvas) hline(y, width float32) { c.rect(0, y-width/2, c.w, y+width/2) }

func (c *canvas) circle(cx, cy, r float32, reverse bool) {
	n := int(min(max(r/2, 32), 512))
	step := 2 * math32.Pi / float32(n)
	if reverse {
		step = -step
	}
	for i := range n {
		s, co := math32.Sincos(float32(i) * step)
		x, y := c.clampX(cx+r*co), c.clampY(cy+r*s)
		if i == 0 {
			c.z.MoveTo(x, y)
			continue
		}
		c.z.LineTo(x, y)
	}
	c.z.ClosePath()
}

// ring adds a circle outline. The inner edge winds opposite to the outer edge so it cuts a hole.
func (c *canvas) ring(cx, cy, r, width float32) {
	c.circle(cx, cy, r+width/2, false)
	if inner := r - width/2; inner > 0 {
		c.circle(cx, cy, inner, true)
	}
}

// frame adds a square outline of half size half centred on (cx, cy).
func (c *canvas) frame(cx, cy, half, width float32) {
	o, i := half+width/2, half-width/2
	c.rect(cx-o, cy-o, cx+o, cy+o)
	if i <= 0 {
		return
	}
	c.z.MoveTo(cx-i, cy-i)
	c.z.LineTo(cx-i, cy+i)
	c.z.LineTo(cx+i, cy+i)
	c.z.LineTo(cx+i, cy-i)
	c.z.ClosePath()
}

// fill composites the accumulated paths in col and starts a new path set.
func (c *canvas) fill(col color.NRGBA) {
	c.z.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
	c.z.Reset(c.img.Rect.Dx(), c.img.Rect.Dy())
}

func (c *canvas) box(x0, y0, x1, y1 int, col color.NRGBA) {
	draw.Draw(c.img, image.Rect(x0, y0, x1, y1), image.NewUniform(col), image.Point{}, draw.Src)
}

func rgb(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func lerp8(a, b uint8, t float32) uint8 {
	return uint8(float32(a) + (float32(b)-float32(a))*t)
}

func (c *canvas) gradient(from, to color.NRGBA, t func(c *canvas, x, y int) float32) {
	bounds := c.img.Rect
	for y := range bounds.Dy() {
		for x := range bounds.Dx() {
			u := t(c, x, y)
			i := c.img.PixOffset(x, y)
			c.img.Pix[i] = lerp8(from.R, to.R, u)
			c.img.Pix[i+1] = lerp8(from.G, to.G, u)
			c.img.Pix[i+2] = lerp8(from.B, to.B, u)
			c.img.Pix[i+3] = 255
		}
	}
}

func horizontalT(c *canvas, x, _ int) float32 { return float32(x) / c.w }
func verticalT(c *canvas, _, y int) float32   { return float32(y) / c.h }

func radialT(c *canvas, x, y int) float32 {
	cx, cy := float32(int(c.w)/2), float32(int(c.h)/2)
	maxR := math32.Hypot(cx, cy)
	if maxR == 0 {
		return 0
	}
	return min(math32.Hypot(float32(x)-cx, float32(y)-cy)/maxR, 1)
}

func drawGrid(c *canvas) {
	const cell, line = 120, 2
	for x := 0; x < int(c.w); x += cell {
		c.vline(float32(x), line)
	}
	for y := 0; y < int(c.h); y += cell {
		c.hline(float32(y), line)
	}
	c.fill(white)

	c.vline(float32(int(c.w)/2), 4)
	c.hline(float32(int(c.h)/2), 4)
	c.fill(red)

	const marker = 60
	c.rect(0, 0, marker, marker)
	c.rect(c.w-marker, 0, c.w, marker)
	c.rect(0, c.h-marker, marker, c.h)
	c.rect(c.w-marker, c.h-marker, c.w, c.h)
	c.fill(green)
}

func drawCrosshatch(c *canvas) {
	const spacing = 40
	for x := 0; x < int(c.w); x += spacing {
		c.vline(float32(x), 1)
	}
	for y := 0; y < int(c.h); y += spacing {
		c.hline(float32(y), 1)
	}
	c.fill(white)

	cx, cy := float32(int(c.w)/2), float32(int(c.h)/2)
	for r := float32(20); r <= 100; r += 20 {
		c.ring(cx, cy, r, 2)
	}
	c.fill(red)
}

func drawCheckerboard(c *canvas) {
	const square = 64
	cols, rows := int(c.w)/square+1, int(c.h)/square+1
	for row := range rows {
		for col := range cols {
			if (row+col)%2 == 0 {
				x, y := float32(col*square), float32(row*square)
				c.rect(x, y, x+square, y+square)
			}
		}
	}
	c.fill(white)
}

func drawSMPTEBars(c *canvas) {
	top := []color.NRGBA{
		rgb(192, 192, 192),
		rgb(192, 192, 0),
		rgb(0, 192, 192),
		rgb(0, 192, 0),
		rgb(192, 0, 192),
		rgb(192, 0, 0),
		rgb(0, 0, 192),
	}
	bottom := []color.NRGBA{
		rgb(0, 0, 192),
		black,
		rgb(192, 0, 192),
		black,
		rgb(0, 192, 192),
		black,
		rgb(192, 192, 192),
	}
	w, h := int(c.w), int(c.h)
	bar := w / len(top)
	split := int(float32(h) * 0.667)
	for i := range top {
		c.box(i*bar, 0, (i+1)*bar, split, top[i])
		c.box(i*bar, split, (i+1)*bar, h, bottom[i])
	}
}

func drawFullBars(c *canvas) {
	bars := []color.NRGBA{
		white,
		rgb(255, 255, 0),
		rgb(0, 255, 255),
		green,
		rgb(255, 0, 255),
		red,
		rgb(0, 0, 255),
		black,
	}
	bar := int(c.w) / len(bars)
	for i, col := range bars {
		c.box(i*bar, 0, (i+1)*bar, int(c.h), col)
	}
}

func drawConcentric(c *canvas, squares bool) {
	cx, cy := float32(int(c.w)/2), float32(int(c.h)/2)
	limit := min(int(c.w), int(c.h)) / 2
	for i, size := 0, 50; size < limit; i, size = i+1, size+50 {
		v := uint8(255 - (i*30)%255)
		if squares {
			c.frame(cx, cy, float32(size), 2)
		} else {
			c.ring(cx, cy, float32(size), 2)
		}
		c.fill(rgb(v, v, v))
	}
}

func drawMixed(c *canvas) {
	const r = 100
	for _, p := range [][2]float32{{r, r}, {c.w - r, r}, {r, c.h - r}, {c.w - r, c.h - r}} {
		c.ring(p[0], p[1], r, 3)
	}
	c.fill(white)

	cx, cy := float32(int(c.w)/2), float32(int(c.h)/2)
	for rr := float32(20); rr < 120; rr += 20 {
		c.ring(cx, cy, rr, 2)
	}
	c.fill(red)
}

func drawFocus(c *canvas) {
	c.background(rgb(128, 128, 128))
	for x := 0; x < int(c.w); x += 10 {
		c.vline(float32(x), 1)
	}
	for y := 0; y < int(c.h); y += 10 {
		c.hline(float32(y), 1)
	}
	c.fill(black)

	for x := 0; x < int(c.w); x += 50 {
		c.vline(float32(x), 2)
	}
	for y := 0; y < int(c.h); y += 50 {
		c.hline(float32(y), 2)
	}

	const zone = 200
	for density := 1; density <= 5; density++ {
		offset := float32((density - 1) * 40)
		right := c.w - zone - offset
		for i := 0; i < zone; i += density {
			y := offset + float32(i)
			c.rect(offset, y, offset+zone, y+1)
			c.rect(right, y, right+zone, y+1)
		}
	}
	c.fill(white)
}
