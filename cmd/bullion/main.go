package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bullion/bullion-cli/internal/cmd"
)

var (
	executeCmd  = cmd.Execute
	mapExitCode = cmd.ExitCode
	terminate   = os.Exit
)

// exitInterrupted is the conventional status for a run stopped by SIGINT.
const exitInterrupted = 130

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := executeCmd(ctx, args); err != nil {
		if ctx.Err() != nil {
			return exitInterrupted
		}
		return mapExitCode(err)
	}
	return 0
}

func main() {
	terminate(run(os.Args[1:]))
}
