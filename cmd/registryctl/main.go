// Command registryctl administers catalog indexes and runs searches from the shell.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	app := newApp(buildServices, os.Stdout)
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "registryctl:", err)
		os.Exit(1)
	}
}
