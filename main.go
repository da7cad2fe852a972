package main

import (
	"fmt"
	"os"

	"github.com/flywheel-apps/roi-import/cmd"
	"github.com/flywheel-apps/roi-import/internal/conf"
	"github.com/flywheel-apps/roi-import/internal/logging"
)

func main() {
	os.Exit(mainWithExitCode())
}

// mainWithExitCode keeps deferred cleanups running before the process exits.
func mainWithExitCode() int {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		return 1
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	return 0
}
