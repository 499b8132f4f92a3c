package main

import (
	"flag"
	"log"
	"os"

	"github.com/avstrong/spotscape/internal/app"
	"github.com/avstrong/spotscape/internal/config"
	"github.com/avstrong/spotscape/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config (defaults to $SPOTSCAPE_CONFIG or configs/config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l := logger.New(logger.Conf{Out: os.Stdout, Level: cfg.Log.Level, Format: cfg.Log.Format})

	var exitCode int

	if err := app.Run(l, cfg); err != nil {
		l.LogErrorf("Failed to run app: %v", err.Error())

		exitCode = 1
	}

	os.Exit(exitCode)
}
