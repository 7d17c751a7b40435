package main

import (
	"os"

	"github.com/spacetelescope/caldpctl/internal/cli"
	"github.com/spacetelescope/caldpctl/internal/exitcodes"
	"github.com/spacetelescope/caldpctl/internal/logging"
)

// main is the entry point for the caldpctl CLI binary.
func main() {
	logger := logging.NewLogger(os.Stderr, logging.LevelInfo)
	if err := cli.Execute(os.Args[1:], logger); err != nil {
		code := exitcodes.FromError(err)
		logger.Error("command failed", "error", err, "explain", exitcodes.Explain(code))
		os.Exit(code)
	}
}
