package main

import (
	"log"
	"os"

	corecmd "github.com/m3rciful/anonrelay/core/cmd"
	"github.com/m3rciful/anonrelay/internal/app"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig:        app.LoadConfig,
		Bootstrap:         app.Bootstrap,
	})
	if err != nil {
		log.Printf("anonrelay: %v", err)
		os.Exit(1)
	}
}
