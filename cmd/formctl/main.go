package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/formvault/internal/adminctl"
	"github.com/dmitrijs2005/formvault/internal/flagx"
	"github.com/dmitrijs2005/formvault/internal/server/config"
)

func main() {

	ctx := context.Background()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := adminctl.NewApp(ctx, cfg, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	err = app.Run(ctx, flagx.Positional(os.Args[1:], config.KnownFlags()))
	if cerr := app.Close(); cerr != nil {
		log.Printf("close: %v", cerr)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}

}
