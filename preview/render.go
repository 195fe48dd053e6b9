// Package preview renders the detector mosaic and the contour set into a
// still image, encoded as PNG or WebP.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"xrdplan/calculator"
	"xrdplan/geometry"
)

var ErrUnknownFormat = errors.New("unknown image format")

const (
	supersample = 2
	lineWidth   = 1.5 // output pixels
)

var (
	background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	moduleFill = color.RGBA{R: 0xc8, G: 0xc8, B: 0xc8, A: 0xff}
	refColor   = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	textColor  = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
)

// Scene is everything drawn in one preview.
type Scene struct {
	Modules  []geometry.Rect
	Viewport geometry.Extent
	Contours calculator.ContourSet
}

// canvas maps viewport millimetres onto pixels, y pointing up.
type canvas struct {
	view  geometry.Extent
	w, h  int
	scale float64
}

func newCanvas(view geometry.Extent, width int) canvas {
	height := int(math.Round(float64(width) * view.HalfHeight / view.HalfWidth))
	return canvas{view: view, w: width, h: max(height, 1), scale: float64(width) / (2 * view.HalfWidth)}
}

func (c canvas) project(p geometry.Point) (float64, float64) {
	return (p.X + c.view.HalfWidth) * c.scale, (c.view.HalfHeight - p.Y) * c.scale
}

// Render draws the scene width pixels wide. The height follows the viewport
// aspect ratio.
func Render(s Scene, width int) (*image.RGBA, error) {
	if width < 1 || !(s.Viewport.HalfWidth > 0) || !(s.Viewport.HalfHeight > 0) {
		return nil, fmt.Errorf("preview: cannot render %d px wide viewport %+v", width, s.Viewport)
	}
	big := newCanvas(s.Viewport, width*supersample)
	img := image.NewRGBA(image.Rect(0, 0, big.w, big.h))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	r := vector.NewRasterizer(big.w, big.h)
	for _, m := range s.Modules {
		r.Reset(big.w, big.h)
		x0, y0 := big.project(geometry.Pt(m.X, m.Y+m.Height))
		x1, y1 := big.project(geometry.Pt(m.X+m.Width, m.Y))
		r.MoveTo(float32(x0), float32(y0))
		r.LineTo(float32(x1), float32(y0))
		r.LineTo(float32(x1), float32(y1))
		r.LineTo(float32(x0), float32(y1))
		r.ClosePath()
		r.Draw(img, img.Bounds(), image.NewUniform(moduleFill), image.Point{})
	}

	stroke := lineWidth * supersample
	for _, c := range s.Contours.Primary {
		if c.Visible {
			strokeArcs(r, img, big, c.Arcs, stroke, Colormap(c.Color))
		}
	}
	for _, c := range s.Contours.Reference {
		if c.Visible {
			strokeArcs(r, img, big, c.Arcs, stroke, refColor)
		}
	}

	out := newCanvas(s.Viewport, width)
	dst := image.NewRGBA(image.Rect(0, 0, out.w, out.h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	for _, c := range s.Contours.Primary {
		if c.Visible {
			label(dst, out, c.Label, c.Text)
		}
	}
	return dst, nil
}

// strokeArcs draws every arc as a polyline of the given width. Arcs are
// stroked separately so they are never joined.
func strokeArcs(r *vector.Rasterizer, img draw.Image, c canvas, arcs [][]geometry.Point, width float64, col color.Color) {
	src := image.NewUniform(col)
	bounds := [4]float64{-width, -width, float64(c.w) + width, float64(c.h) + width}
	for _, arc := range arcs {
		r.Reset(c.w, c.h)
		drawn := false
		for i := 1; i < len(arc); i++ {
			x0, y0 := c.project(arc[i-1])
			x1, y1 := c.project(arc[i])
			var ok bool
			if x0, y0, x1, y1, ok = clipSegment(x0, y0, x1, y1, bounds); !ok {
				continue
			}
			segment(r, x0, y0, x1, y1, width)
			drawn = true
		}
		if drawn {
			r.Draw(img, img.Bounds(), src, image.Point{})
		}
	}
}

// segment adds the quad covering the line from (x0, y0) to (x1, y1).
func segment(r *vector.Rasterizer, x0, y0, x1, y1, width float64) {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	// extend by half the width so consecutive segments overlap at the joints
	ex, ey := dx/l*width/2, dy/l*width/2
	r.MoveTo(float32(x0+nx-ex), float32(y0+ny-ey))
	r.LineTo(float32(x1+nx+ex), float32(y1+ny+ey))
	r.LineTo(float32(x1-nx+ex), float32(y1-ny+ey))
	r.LineTo(float32(x0-nx-ex), float32(y0-ny-ey))
	r.ClosePath()
}

// clipSegment clips a segment to the box {xmin, ymin, xmax, ymax}
// (Liang-Barsky). ok is false when nothing is left.
func clipSegment(x0, y0, x1, y1 float64, box [4]float64) (float64, float64, float64, float64, bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{
		{-dx, x0 - box[0]},
		{dx, box[2] - x0},
		{-dy, y0 - box[1]},
		{dy, box[3] - y0},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

func label(img draw.Image, c canvas, at geometry.Point, text string) {
	if text == "" {
		return
	}
	x, y := c.project(at)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
	}
	w := d.MeasureString(text).Round()
	px := min(max(int(x)-w/2, 0), c.w-w)
	py := min(max(int(y)-3, 13), c.h-1)
	d.Dot = fixed.P(px, py)
	d.DrawString(text)
}

// viridis anchors, evenly spaced over [0, 1]
var viridis = []color.RGBA{
	{R: 0x44, G: 0x01, B: 0x54, A: 0xff},
	{R: 0x3b, G: 0x52, B: 0x8b, A: 0xff},
	{R: 0x21, G: 0x91, B: 0x8c, A: 0xff},
	{R: 0x5e, G: 0xc9, B: 0x62, A: 0xff},
	{R: 0xfd, G: 0xe7, B: 0x25, A: 0xff},
}

// Colormap maps a fraction in [0, 1] onto the viridis colour scale.
func Colormap(f float64) color.RGBA {
	if !(f > 0) {
		return viridis[0]
	}
	if f >= 1 {
		return viridis[len(viridis)-1]
	}
	pos := f * float64(len(viridis)-1)
	i := int(pos)
	t := pos - float64(i)
	a, b := viridis[i], viridis[i+1]
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + t*(float64(y)-float64(x))))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}

// Format returns the image format selected by the file extension.
func Format(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return "png", nil
	case ".webp":
		return "webp", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "webp":
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile encodes img into path, choosing the format by extension.
func WriteFile(path string, img image.Image) error {
	format, err := Format(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
