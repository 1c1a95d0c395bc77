package main

import (
	"os"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/cli"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
)

var version = "dev"

func main() {
	cfg := cli.NewConfig()
	cfg.Version = version

	err := cli.NewCLI(cfg).Execute(os.Args[1:])
	os.Exit(types.ExitCode(err))
}
