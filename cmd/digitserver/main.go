package main

import (
	"context"
	"flag"
	"net/http"

	"github.com/juruen/digitpad/config"
	"github.com/juruen/digitpad/log"
	"github.com/juruen/digitpad/model"
	"github.com/juruen/digitpad/server"
	"github.com/juruen/digitpad/store"
)

func main() {
	log.InitLog()
	cfg := config.LoadServer()

	port := flag.String("port", cfg.Port, "port to listen on")
	databaseURL := flag.String("db", cfg.DatabaseURL, "postgres connection string, memory store when empty")
	hidden := flag.Int("hidden", model.DefaultConfig().Hidden[0], "hidden layer size")
	seed := flag.Int64("seed", model.DefaultConfig().Seed, "weight initialisation seed")
	flag.Parse()

	var st store.Store
	if *databaseURL != "" {
		pg, err := store.OpenPostgres(context.Background(), *databaseURL)
		if err != nil {
			log.Error.Fatalf("Failed to open sample store: %v", err)
		}
		st = pg
	} else {
		log.Info.Println("sample store: memory")
		st = store.NewMemoryStore()
	}
	defer st.Close()

	mcfg := model.DefaultConfig()
	mcfg.Hidden = []int{*hidden}
	mcfg.Seed = *seed

	var opts []server.Option
	if cfg.AuthSecret != "" {
		opts = append(opts, server.WithAuthSecret(cfg.AuthSecret))
	}
	srv := server.NewApiServer(st, model.New(mcfg), opts...)

	log.Info.Printf("Starting HTTP server on port %s", *port)
	if err := http.ListenAndServe(":"+*port, srv.Handler()); err != nil {
		log.Error.Fatalf("Server failed: %v", err)
	}
}
