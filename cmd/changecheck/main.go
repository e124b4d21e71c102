package main

import (
	"os"

	"github.com/ariel-frischer/changecheck/internal/cli"
)

func main() {
	os.Exit(cli.ExitCode(cli.Execute()))
}
