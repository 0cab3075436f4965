package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/pitchmap/internal/cli"
	"github.com/okian/pitchmap/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		_, _ = io.WriteString(stderr, "failed to initialize logging: "+err.Error()+"\n")
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCommand(cli.WithOutput(stdout))
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Get().Error(ctx, "pitchmap failed", logger.Error(err))
		return 1
	}
	return 0
}
