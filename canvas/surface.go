package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// DefaultBrushSize is the stroke width in logical pixels; the raster stroke is
// this value times the device pixel ratio.
const DefaultBrushSize = 18

var (
	White = color.RGBA{0xff, 0xff, 0xff, 0xff}
	Black = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

// Viewport reports the logical size of the drawing area and the current
// device pixel ratio. Both are re-read on every Resize.
type Viewport interface {
	Size() (width, height float64)
	DevicePixelRatio() float64
}

// StaticViewport is a Viewport with fixed values, changed explicitly.
type StaticViewport struct {
	Width  float64
	Height float64
	Ratio  float64
}

func (v *StaticViewport) Size() (float64, float64) {
	return v.Width, v.Height
}

func (v *StaticViewport) DevicePixelRatio() float64 {
	return v.Ratio
}

// State of the stroke state machine
type State int

const (
	Idle State = iota
	Drawing
)

func (s State) String() string {
	if s == Drawing {
		return "drawing"
	}
	return "idle"
}

// Surface owns the physical ink raster and the guide overlay. It is not safe
// for concurrent use: every method is expected to run on the event loop.
type Surface struct {
	viewport   Viewport
	brush      float64
	ink        color.RGBA
	background color.RGBA

	left, top float64
	displayed Rect
	dpr       float64

	raster  *image.RGBA
	overlay *image.RGBA
	pen     *pen

	state State
	last  Point

	onClear []func()
}

type Option func(*Surface)

// WithBrushSize sets the logical stroke width.
func WithBrushSize(size float64) Option {
	return func(s *Surface) {
		if size > 0 {
			s.brush = size
		}
	}
}

// WithInk sets the stroke color.
func WithInk(c color.RGBA) Option {
	return func(s *Surface) {
		s.ink = c
	}
}

// WithOffset places the surface at left/top inside the viewport.
func WithOffset(left, top float64) Option {
	return func(s *Surface) {
		s.left = left
		s.top = top
	}
}

// New creates a surface sized from vp and clears it.
func New(vp Viewport, opts ...Option) *Surface {
	s := &Surface{
		viewport:   vp,
		brush:      DefaultBrushSize,
		ink:        Black,
		background: White,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Resize()
	return s
}

// OnClear registers fn to run after every clear, including the one done by
// Resize.
func (s *Surface) OnClear(fn func()) {
	s.onClear = append(s.onClear, fn)
}

// Resize recomputes the physical raster from the viewport and clears it.
// Drawn content does not survive a resize.
func (s *Surface) Resize() {
	width, height := s.viewport.Size()
	s.dpr = math.Max(1, s.viewport.DevicePixelRatio())

	physWidth := int(math.Floor(width * s.dpr))
	if physWidth < 1 {
		physWidth = 1
	}
	physHeight := int(math.Floor(height * s.dpr))
	if physHeight < 1 {
		physHeight = 1
	}

	s.displayed = Rect{Left: s.left, Top: s.top, Width: width, Height: height}
	s.raster = image.NewRGBA(image.Rect(0, 0, physWidth, physHeight))
	s.overlay = image.NewRGBA(image.Rect(0, 0, physWidth, physHeight))
	s.pen = newPen(s.raster)

	s.Clear()
}

// Clear discards the ink, repaints the background and the guide grid.
func (s *Surface) Clear() {
	draw.Draw(s.raster, s.raster.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)
	draw.Draw(s.overlay, s.overlay.Bounds(), image.Transparent, image.Point{}, draw.Src)
	DrawGrid(s.overlay, s.dpr)

	s.state = Idle

	for _, fn := range s.onClear {
		fn()
	}
}

func (s *Surface) PointerDown(ev Positioner) {
	s.last = s.mapEvent(ev)
	s.state = Drawing
}

func (s *Surface) PointerMove(ev Positioner) {
	if s.state != Drawing {
		return
	}
	p := s.mapEvent(ev)
	s.pen.segment(s.last, p, s.LineWidth(), s.ink)
	s.last = p
}

func (s *Surface) PointerUp() {
	s.state = Idle
}

func (s *Surface) PointerCancel() {
	s.state = Idle
}

func (s *Surface) mapEvent(ev Positioner) Point {
	b := s.raster.Bounds()
	return MapToPhysical(ev, s.displayed, b.Dx(), b.Dy())
}

// DrawImage paints img onto the ink raster, stretched to the physical size.
// Transparent parts of img leave the background visible.
func (s *Surface) DrawImage(img image.Image) {
	b := s.raster.Bounds()
	scaled := resize.Resize(uint(b.Dx()), uint(b.Dy()), img, resize.Bilinear)
	draw.Draw(s.raster, b, scaled, scaled.Bounds().Min, draw.Over)
}

// Raster is the sampling source: ink over background, without the grid.
func (s *Surface) Raster() image.Image {
	return s.raster
}

// Composite returns a copy of the ink raster with the grid drawn over it,
// for display only.
func (s *Surface) Composite() *image.RGBA {
	out := image.NewRGBA(s.raster.Bounds())
	draw.Draw(out, out.Bounds(), s.raster, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), s.overlay, image.Point{}, draw.Over)
	return out
}

// Size returns the physical raster size.
func (s *Surface) Size() (width, height int) {
	b := s.raster.Bounds()
	return b.Dx(), b.Dy()
}

func (s *Surface) Displayed() Rect {
	return s.displayed
}

func (s *Surface) DevicePixelRatio() float64 {
	return s.dpr
}

func (s *Surface) State() State {
	return s.state
}

// LineWidth is the physical stroke width.
func (s *Surface) LineWidth() float64 {
	return s.brush * s.dpr
}
