package main

import (
	"fmt"
	"os"

	"github.com/domino14/gametrace/config"
	"github.com/domino14/gametrace/tui"
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Printf("Could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := tui.NewTUIApp(cfg).Run(); err != nil {
		fmt.Printf("Could not start program :(\n%v\n", err)
		os.Exit(1)
	}
}
