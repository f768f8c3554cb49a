package main

import (
	"flag"

	"esk/training-app/internal/app"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	// Run blocks until SIGINT/SIGTERM and exits non-zero if start-up fails.
	app.New(*configPath).Run()
}
