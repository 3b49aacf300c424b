package main

import (
	"github.com/playwrist/core/internal/app"
	"github.com/playwrist/core/internal/config"
)

func main() {
	app.Go(config.Load())
}
