package main

import (
	"github.com/cityforge/cityforge/app"
	"github.com/gofiber/fiber/v2/log"
)

func main() {
	err := app.SetupAndRunServer()
	if err != nil {
		log.Trace(err)
		panic(err)
	}
}
