package shell

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
)

// await prints the pending status, then blocks until the request finishes.
func await(c *ishell.Context, ctx *ShellCtxt) {
	c.Println(ctx.Pad.Status())
	if _, err := ctx.Pad.Next(context.Background()); err != nil {
		c.Err(err)
		return
	}
	c.Println(ctx.Pad.Result())
}

func predictCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "predict",
		Help: "classify the current drawing",
		Func: func(c *ishell.Context) {
			ctx.Pad.Predict(context.Background())
			await(c, ctx)
		},
	}
}

func trainCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:     "train",
		Help:     "send the current drawing as an example of a digit",
		LongHelp: `Usage: train <label 0-9>`,
		Func: func(c *ishell.Context) {
			if err := ctx.Pad.Train(context.Background(), strings.Join(c.Args, " ")); err != nil {
				c.Println(ctx.Pad.Result())
				return
			}
			await(c, ctx)
		},
	}
}

func trainAllCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "trainall",
		Help: "train the classifier over all stored samples",
		LongHelp: `Usage: trainall [epochs]

Without epochs the last used value is sent.`,
		Func: func(c *ishell.Context) {
			if len(c.Args) > 0 {
				epochs, err := strconv.Atoi(c.Args[0])
				if err != nil || epochs < 1 {
					c.Err(errors.New("epochs must be a positive integer"))
					return
				}
				ctx.Pad.SetEpochs(epochs)
			}

			ctx.Pad.TrainAll(context.Background())
			await(c, ctx)
		},
	}
}
