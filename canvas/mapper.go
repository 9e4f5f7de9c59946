// Package canvas holds the drawing surface: the device-resolution ink raster,
// the guide grid overlay and the mapping from pointer events to raster pixels.
package canvas

// Point is a position on the physical (device pixel) raster
type Point struct {
	X float64
	Y float64
}

// Rect is the displayed (logical, CSS pixel) placement of the surface
// inside the viewport.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Positioner is the single capability the surface needs from an input event:
// its current viewport-relative position.
type Positioner interface {
	Position() (clientX, clientY float64)
}

// MouseEvent is a pointer event coming from a mouse-type device
type MouseEvent struct {
	ClientX float64
	ClientY float64
}

func (e MouseEvent) Position() (float64, float64) {
	return e.ClientX, e.ClientY
}

// TouchPoint is one contact of a touch-type event
type TouchPoint struct {
	ID      int
	ClientX float64
	ClientY float64
}

// TouchEvent carries every active contact; only the first one draws.
type TouchEvent struct {
	Touches []TouchPoint
}

func (e TouchEvent) Position() (float64, float64) {
	if len(e.Touches) == 0 {
		return 0, 0
	}
	return e.Touches[0].ClientX, e.Touches[0].ClientY
}

// MapToPhysical converts the viewport position of ev into a raster coordinate.
// It must be called per event: the displayed size and the device pixel ratio
// may change between two events.
func MapToPhysical(ev Positioner, displayed Rect, physWidth, physHeight int) Point {
	clientX, clientY := ev.Position()

	scaleX := 1.0
	if displayed.Width > 0 {
		scaleX = float64(physWidth) / displayed.Width
	}
	scaleY := 1.0
	if displayed.Height > 0 {
		scaleY = float64(physHeight) / displayed.Height
	}

	return Point{
		X: (clientX - displayed.Left) * scaleX,
		Y: (clientY - displayed.Top) * scaleY,
	}
}
