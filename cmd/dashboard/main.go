package main

import (
	"context"
	"fmt"
	"os"

	"github.com/adminboard/dashboard-core/internal/app"
)

func main() {
	if err := app.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard: %v\n", err)
		os.Exit(1)
	}
}
