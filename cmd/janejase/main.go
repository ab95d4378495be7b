package main

import (
	"fmt"
	"os"

	"github.com/one2zero1/janejase-backend/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "janejase: %v\n", err)
		os.Exit(1)
	}
}
