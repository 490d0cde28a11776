// main is the entry point for the schemadiff CLI.
package main

import (
	"errors"
	"os"

	"github.com/huangsam/schemadiff/cmd"
	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/huangsam/schemadiff/internal/history"
	"github.com/huangsam/schemadiff/internal/logger"
)

func main() {
	os.Exit(run())
}

// run executes the CLI and returns the exit code once cleanup is done.
func run() int {
	cmd.SetHistoryManager(history.Manager)
	defer history.CloseStore()
	defer logger.Sync()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("Cannot stop profiling", err)
		}
	}()

	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var exitErr *cmd.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			contract.LogError(exitErr.Msg, exitErr.Err)
		}
		return exitErr.Code
	}
	contract.LogError("Cannot run schemadiff", err)
	return 1
}
