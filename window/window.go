// Package window runs the pad in a desktop window.
package window

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/juruen/digitpad/canvas"
	"github.com/juruen/digitpad/classifier"
	"github.com/juruen/digitpad/config"
	"github.com/juruen/digitpad/log"
	"github.com/juruen/digitpad/pad"
)

const (
	hudHeight = 64
	hudLine   = 16
	helpLine  = "[P]redict  [C]lear  [T]rain label  [A]ll  0-9 label"
)

var hudBackground = color.RGBA{0x20, 0x20, 0x20, 0xff}

// Run opens the window and blocks until it is closed.
func Run(cfg config.Config, client *classifier.Client) error {
	vp := &canvas.StaticViewport{
		Width:  float64(cfg.Window.Width),
		Height: float64(cfg.Window.Height),
		Ratio:  deviceScaleFactor(),
	}
	surface := canvas.New(vp, canvas.WithBrushSize(cfg.BrushSize))

	g := newGame(vp, surface, pad.New(surface, client, cfg.Epochs))

	ebiten.SetWindowTitle("digitpad")
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height+hudHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	log.Info.Printf("classifier at %s", client.BaseURL())
	return ebiten.RunGame(g)
}

func deviceScaleFactor() float64 {
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}

type game struct {
	ctx      context.Context
	viewport *canvas.StaticViewport
	surface  *canvas.Surface
	pad      *pad.Controller
	input    *pointerSource
	label    pad.LabelInput

	outsideWidth  int
	outsideHeight int

	img   *ebiten.Image
	dirty bool
	chars []rune
}

func newGame(vp *canvas.StaticViewport, surface *canvas.Surface, controller *pad.Controller) *game {
	g := &game{
		ctx:           context.Background(),
		viewport:      vp,
		surface:       surface,
		pad:           controller,
		input:         &pointerSource{},
		outsideWidth:  int(vp.Width),
		outsideHeight: int(vp.Height) + hudHeight,
		dirty:         true,
	}
	surface.Attach(g.input)
	surface.OnClear(func() {
		g.dirty = true
	})
	return g
}

// resize follows the window size and the monitor scale. The drawing is lost,
// like any resize of the surface.
func (g *game) resize() {
	width := float64(g.outsideWidth)
	height := float64(g.outsideHeight - hudHeight)
	if height < 1 {
		height = 1
	}
	ratio := deviceScaleFactor()

	if width == g.viewport.Width && height == g.viewport.Height && ratio == g.viewport.Ratio {
		return
	}
	log.Trace.Printf("viewport %gx%g@%g -> %gx%g@%g",
		g.viewport.Width, g.viewport.Height, g.viewport.Ratio, width, height, ratio)

	g.viewport.Width = width
	g.viewport.Height = height
	g.viewport.Ratio = ratio
	g.surface.Resize()
}

func (g *game) handleKeys() {
	g.chars = ebiten.AppendInputChars(g.chars[:0])
	for _, r := range g.chars {
		if r >= '0' && r <= '9' {
			g.label.Type(r)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.label.Backspace()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.surface.Clear()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) ||
		inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
		g.pad.Predict(g.ctx)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		// an invalid label is reported on the result line
		g.pad.Train(g.ctx, g.label.String())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.pad.TrainAll(g.ctx)
	}
}

func (g *game) Update() error {
	g.resize()
	if g.input.poll() {
		g.dirty = true
	}
	g.handleKeys()
	g.pad.Poll()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(hudBackground)

	w, h := g.surface.Size()
	if g.img == nil || g.img.Bounds().Dx() != w || g.img.Bounds().Dy() != h {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(w, h)
		g.dirty = true
	}
	if g.dirty {
		g.img.WritePixels(g.surface.Composite().Pix)
		g.dirty = false
	}

	op := &ebiten.DrawImageOptions{}
	scale := 1 / g.surface.DevicePixelRatio()
	op.GeoM.Scale(scale, scale)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(g.img, op)

	top := g.outsideHeight - hudHeight + 2
	lines := []string{
		fmt.Sprintf("label: %s_   %s", g.label.String(), g.pad.Status()),
		g.pad.Result(),
		helpLine,
	}
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, 4, top+i*hudLine)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.outsideWidth = outsideWidth
	g.outsideHeight = outsideHeight
	return outsideWidth, outsideHeight
}
