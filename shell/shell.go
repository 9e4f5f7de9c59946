// Package shell drives the pad from an interactive prompt: strokes are typed
// as coordinate lists and results are printed as they arrive.
package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/pkg/errors"

	"github.com/juruen/digitpad/canvas"
	"github.com/juruen/digitpad/classifier"
	"github.com/juruen/digitpad/pad"
)

type ShellCtxt struct {
	Surface   *canvas.Surface
	Viewport  *canvas.StaticViewport
	Feed      *canvas.Feed
	Pad       *pad.Controller
	Client    *classifier.Client
	BatchSize int64
}

// NewShellCtxt builds a surface over a fixed viewport and a controller bound
// to client.
func NewShellCtxt(vp *canvas.StaticViewport, client *classifier.Client, epochs int, batchSize int64, opts ...canvas.Option) *ShellCtxt {
	surface := canvas.New(vp, opts...)
	feed := &canvas.Feed{}
	surface.Attach(feed)

	return &ShellCtxt{
		Surface:   surface,
		Viewport:  vp,
		Feed:      feed,
		Pad:       pad.New(surface, client, epochs),
		Client:    client,
		BatchSize: batchSize,
	}
}

func (ctx *ShellCtxt) prompt() string {
	w, h := ctx.Surface.Size()
	return fmt.Sprintf("[%dx%d@%g]>", w, h, ctx.Surface.DevicePixelRatio())
}

func commands(ctx *ShellCtxt) []*ishell.Cmd {
	return []*ishell.Cmd{
		resizeCmd(ctx),
		strokeCmd(ctx),
		touchCmd(ctx),
		clearCmd(ctx),
		predictCmd(ctx),
		trainCmd(ctx),
		trainAllCmd(ctx),
		sampleCmd(ctx),
		previewCmd(ctx),
		loadCmd(ctx),
		batchCmd(ctx),
	}
}

// RunShell processes args as a single command when given, otherwise starts
// the interactive prompt.
func RunShell(ctx *ShellCtxt, args []string) error {
	shell := ishell.New()
	for _, cmd := range commands(ctx) {
		shell.AddCmd(cmd)
	}
	shell.SetPrompt(ctx.prompt())

	if len(args) > 0 {
		return shell.Process(args...)
	}

	shell.Printf("digitpad shell, classifier at %s\n", ctx.Client.BaseURL())
	shell.Run()
	return nil
}

// parsePoints reads "x,y" pairs of client coordinates.
func parsePoints(args []string) ([]canvas.Point, error) {
	points := make([]canvas.Point, 0, len(args))
	for _, arg := range args {
		xs, ys, ok := strings.Cut(arg, ",")
		if !ok {
			return nil, errors.Errorf("bad point %q, expected x,y", arg)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bad x in %q", arg)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bad y in %q", arg)
		}
		points = append(points, canvas.Point{X: x, Y: y})
	}
	return points, nil
}

// createFileCompleter completes local file names.
func createFileCompleter() func([]string) []string {
	return func(args []string) []string {
		prefix := ""
		if len(args) > 0 {
			prefix = args[len(args)-1]
		}
		matches, _ := filepath.Glob(prefix + "*")

		var entries []string
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && fi.IsDir() {
				m += string(filepath.Separator)
			}
			entries = append(entries, m)
		}
		return entries
	}
}
