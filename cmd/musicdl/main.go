package main

import (
	"os"

	"github.com/ytget/musicdl/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Run(os.Args, version))
}
