package window

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/juruen/digitpad/canvas"
)

// pointerSource turns the polled ebiten mouse and touch state into pointer
// events. Positions are in layout coordinates, which are logical pixels.
type pointerSource struct {
	canvas.Feed

	mouseDown bool
	touching  bool
	touchID   ebiten.TouchID
	lastX     int
	lastY     int

	touchIDs []ebiten.TouchID
	pressed  []ebiten.TouchID
}

func (p *pointerSource) active() bool {
	return p.mouseDown || p.touching
}

// poll must be called once per Update. It reports whether any event was
// delivered.
func (p *pointerSource) poll() bool {
	if !ebiten.IsFocused() {
		if p.active() {
			p.mouseDown = false
			p.touching = false
			p.Cancel()
			return true
		}
		return false
	}

	if p.pollTouch() || p.touching {
		return true
	}
	return p.pollMouse()
}

func (p *pointerSource) moved(x, y int) bool {
	if x == p.lastX && y == p.lastY {
		return false
	}
	p.lastX, p.lastY = x, y
	return true
}

func (p *pointerSource) pollMouse() bool {
	x, y := ebiten.CursorPosition()
	ev := canvas.MouseEvent{ClientX: float64(x), ClientY: float64(y)}

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		p.mouseDown = true
		p.lastX, p.lastY = x, y
		p.Down(ev)
	case p.mouseDown && !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		p.mouseDown = false
		p.Up()
	case p.mouseDown && p.moved(x, y):
		p.Move(ev)
	default:
		return false
	}
	return true
}

// touchEvent lists every current touch with the tracked one first.
func (p *pointerSource) touchEvent() canvas.TouchEvent {
	x, y := ebiten.TouchPosition(p.touchID)
	ev := canvas.TouchEvent{Touches: []canvas.TouchPoint{{ID: int(p.touchID), ClientX: float64(x), ClientY: float64(y)}}}
	for _, id := range p.touchIDs {
		if id == p.touchID {
			continue
		}
		tx, ty := ebiten.TouchPosition(id)
		ev.Touches = append(ev.Touches, canvas.TouchPoint{ID: int(id), ClientX: float64(tx), ClientY: float64(ty)})
	}
	return ev
}

func (p *pointerSource) pollTouch() bool {
	p.touchIDs = ebiten.AppendTouchIDs(p.touchIDs[:0])

	if !p.touching {
		p.pressed = inpututil.AppendJustPressedTouchIDs(p.pressed[:0])
		if len(p.pressed) == 0 {
			return false
		}
		p.touching = true
		p.touchID = p.pressed[0]
		p.lastX, p.lastY = ebiten.TouchPosition(p.touchID)
		p.Down(p.touchEvent())
		return true
	}

	if inpututil.IsTouchJustReleased(p.touchID) {
		p.touching = false
		p.Up()
		return true
	}

	x, y := ebiten.TouchPosition(p.touchID)
	if !p.moved(x, y) {
		return false
	}
	p.Move(p.touchEvent())
	return true
}
