package shell

import (
	"errors"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/juruen/digitpad/canvas"
)

func resizeCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "resize",
		Help: "resize the drawing area, clearing it",
		LongHelp: `Usage: resize <width> <height> [dpr]

Width and height are logical pixels. The physical raster is
floor(size * dpr) with dpr at least 1.`,
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(errors.New("missing width and height"))
				return
			}

			var values []float64
			for _, arg := range c.Args {
				v, err := strconv.ParseFloat(arg, 64)
				if err != nil || v < 0 {
					c.Err(errors.New("invalid size: " + arg))
					return
				}
				values = append(values, v)
			}

			ctx.Viewport.Width = values[0]
			ctx.Viewport.Height = values[1]
			if len(values) > 2 {
				ctx.Viewport.Ratio = values[2]
			}
			ctx.Surface.Resize()

			c.SetPrompt(ctx.prompt())
		},
	}
}

func strokeCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "stroke",
		Help: "draw a mouse stroke through client coordinates",
		LongHelp: `Usage: stroke x,y x,y ...

The first point presses the button, the others move with it held.`,
		Func: func(c *ishell.Context) {
			points, err := parsePoints(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if len(points) == 0 {
				c.Err(errors.New("missing points"))
				return
			}

			events := make([]canvas.Positioner, len(points))
			for i, p := range points {
				events[i] = canvas.MouseEvent{ClientX: p.X, ClientY: p.Y}
			}
			ctx.Feed.Stroke(events...)
		},
	}
}

func touchCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:     "touch",
		Help:     "draw a single finger stroke through client coordinates",
		LongHelp: `Usage: touch x,y x,y ...`,
		Func: func(c *ishell.Context) {
			points, err := parsePoints(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if len(points) == 0 {
				c.Err(errors.New("missing points"))
				return
			}

			events := make([]canvas.Positioner, len(points))
			for i, p := range points {
				events[i] = canvas.TouchEvent{Touches: []canvas.TouchPoint{{ClientX: p.X, ClientY: p.Y}}}
			}
			ctx.Feed.Stroke(events...)
		},
	}
}

func clearCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "clear",
		Help: "erase the drawing and the result",
		Func: func(c *ishell.Context) {
			ctx.Surface.Clear()
		},
	}
}
