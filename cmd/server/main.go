package main

import (
	"context"
	"log"

	"tusk-arena/server/internal/app"
)

func main() {
	if err := app.Run(context.Background(), app.Config{}); err != nil {
		log.Fatal(err)
	}
}
