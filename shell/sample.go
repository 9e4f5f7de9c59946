package shell

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/juruen/digitpad/classifier"
	"github.com/juruen/digitpad/sample"
)

const defaultPreviewScale = 10

func sampleCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "sample",
		Help: "print the 784 value sample of the current drawing",
		Func: func(c *ishell.Context) {
			output, err := json.Marshal(ctx.Pad.Sample().Slice())
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(string(output))
		},
	}
}

func previewCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "preview",
		Help:      "write the 28x28 sample as an enlarged png",
		Completer: createFileCompleter(),
		LongHelp:  `Usage: preview <out.png> [scale]`,
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(errors.New("missing output file"))
				return
			}

			scale := defaultPreviewScale
			if len(c.Args) > 1 {
				var err error
				scale, err = strconv.Atoi(c.Args[1])
				if err != nil || scale < 1 {
					c.Err(errors.New("scale must be a positive integer"))
					return
				}
			}

			if err := sample.SavePreview(ctx.Pad.Sample(), scale, c.Args[0]); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		},
	}
}

func loadCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "load",
		Help:      "paint an image file onto the drawing",
		Completer: createFileCompleter(),
		LongHelp:  `Usage: load <image.png|image.jpg>`,
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(errors.New("missing image file"))
				return
			}

			img, err := sample.LoadImage(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			ctx.Surface.DrawImage(img)
			c.Println("OK")
		},
	}
}

func batchCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "batch",
		Help:      "train with a set of image files of one digit",
		Completer: createFileCompleter(),
		LongHelp: `Usage: batch [options] <label> <image>...

Options:
  -j <N>  requests in flight (default: batch_size from the config)`,
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("batch", flag.ContinueOnError)
			concurrency := flagSet.Int64("j", ctx.BatchSize, "requests in flight")

			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}

			argRest := flagSet.Args()
			if len(argRest) < 2 {
				c.Err(errors.New("missing label or image files"))
				return
			}

			label, err := sample.ParseLabel(argRest[0])
			if err != nil {
				c.Err(err)
				return
			}

			var items []classifier.LabeledSample
			for _, name := range argRest[1:] {
				img, err := sample.LoadImage(name)
				if err != nil {
					c.Err(err)
					return
				}
				items = append(items, classifier.LabeledSample{Name: name, Sample: sample.FromImage(img), Label: label})
			}

			c.Println(fmt.Sprintf("training %d samples as %d...", len(items), label))
			results, err := ctx.Client.TrainBatch(context.Background(), items, *concurrency)
			if err != nil {
				c.Err(err)
				return
			}

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					c.Println(fmt.Sprintf("%s: %s", r.Name, classifier.FormatError(r.Err)))
					continue
				}
				c.Println(fmt.Sprintf("%s: %s", r.Name, classifier.FormatTrain(r.Ack)))
			}
			c.Println(fmt.Sprintf("done, %d failed", failed))
		},
	}
}
