// Package main is the gapnav command line tool.
package main

import (
	"log"
	"os"

	"go.viam.com/gapnav/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
