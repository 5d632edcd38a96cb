package main

import (
	"context"
	"os"

	"lac1tool/cmd/cli/commands"
)

var (
	version   = "v0.3.0"
	buildDate = "unknown"
)

func main() {
	info := commands.Info{
		Version: version,
		Date:    buildDate,
	}
	cmd := commands.LAC1Cmd(info)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
