package canvas

// PointerHandler receives device-independent pointer events. Implementations
// map positions themselves, at the moment the event arrives.
type PointerHandler interface {
	PointerDown(ev Positioner)
	PointerMove(ev Positioner)
	PointerUp()
	PointerCancel()
}

// InputSource is anything that produces pointer events: a desktop window,
// a scripted shell, a test.
type InputSource interface {
	Subscribe(h PointerHandler)
}

// Attach registers the surface as the handler of src.
func (s *Surface) Attach(src InputSource) {
	src.Subscribe(s)
}

// Feed is an InputSource driven by explicit calls. It fans events out to
// every subscribed handler in registration order.
type Feed struct {
	handlers []PointerHandler
}

func (f *Feed) Subscribe(h PointerHandler) {
	f.handlers = append(f.handlers, h)
}

func (f *Feed) Down(ev Positioner) {
	for _, h := range f.handlers {
		h.PointerDown(ev)
	}
}

func (f *Feed) Move(ev Positioner) {
	for _, h := range f.handlers {
		h.PointerMove(ev)
	}
}

func (f *Feed) Up() {
	for _, h := range f.handlers {
		h.PointerUp()
	}
}

func (f *Feed) Cancel() {
	for _, h := range f.handlers {
		h.PointerCancel()
	}
}

// Stroke replays a whole stroke: down on the first event, move through the
// rest, up at the end.
func (f *Feed) Stroke(events ...Positioner) {
	if len(events) == 0 {
		return
	}
	f.Down(events[0])
	for _, ev := range events[1:] {
		f.Move(ev)
	}
	f.Up()
}
