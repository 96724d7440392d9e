package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var configPath = flag.String("config", os.Getenv("FINSTAT_CONFIG"), "path to a YAML config file")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&parseCmd{}, "statements")
	commander.Register(&analyzeCmd{}, "statements")
	commander.Register(&batchCmd{}, "statements")
	commander.Register(&reportCmd{}, "statements")
	commander.Register(&historyCmd{}, "statements")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
