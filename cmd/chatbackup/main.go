package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/chatbackup/internal/cli"
	"github.com/dmitrijs2005/chatbackup/internal/config"
	"github.com/dmitrijs2005/chatbackup/internal/flagx"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}
	defer app.Close()

	if err := app.Run(ctx, flagx.Positional(os.Args[1:], config.ValueFlags)); err != nil {
		app.Close()
		log.Fatalf("%v", err)
	}

}
