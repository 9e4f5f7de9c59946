package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/juruen/digitpad/canvas"
	"github.com/juruen/digitpad/classifier"
	"github.com/juruen/digitpad/config"
	"github.com/juruen/digitpad/log"
	"github.com/juruen/digitpad/shell"
	"github.com/juruen/digitpad/window"
)

func main() {
	shellMode := flag.Bool("shell", false, "run the interactive shell instead of the window, remaining args are run as one command")
	configFile := flag.String("config", "", "config file (default: $DIGITPAD_CONFIG or the user config directory)")
	writeConfig := flag.Bool("write-config", false, "write the effective configuration to the config file and exit")
	flag.Parse()

	log.InitLog()

	configPath := *configFile
	if configPath == "" {
		var err error
		if configPath, err = config.ConfigPath(); err != nil {
			log.Warning.Printf("no config path: %v", err)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error.Fatalln(err)
	}

	if *writeConfig {
		if configPath == "" {
			log.Error.Fatalln("no config path, use -config")
		}
		if err := config.Save(cfg, configPath); err != nil {
			log.Error.Fatalln(err)
		}
		return
	}

	var opts []classifier.Option
	if cfg.AuthSecret != "" {
		opts = append(opts, classifier.WithAuthSecret(cfg.AuthSecret))
	}
	client := classifier.NewClient(classifier.ResolveBaseURL(cfg.APIURL, cfg.Origin), opts...)

	if *shellMode {
		vp := &canvas.StaticViewport{
			Width:  float64(cfg.Window.Width),
			Height: float64(cfg.Window.Height),
			Ratio:  1,
		}
		ctx := shell.NewShellCtxt(vp, client, cfg.Epochs, cfg.BatchSize, canvas.WithBrushSize(cfg.BrushSize))
		if err := shell.RunShell(ctx, flag.Args()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := window.Run(cfg, client); err != nil {
		log.Error.Fatalln(err)
	}
}
