package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/scopeworks/azscope/cli"
	"github.com/scopeworks/azscope/internal/errors"
	"github.com/scopeworks/azscope/pkg/log"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	logger := log.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(version, logger)

	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Error(err.Error())

		if errStack := errors.ErrorStack(err); errStack != "" {
			logger.Trace(errStack)
		}

		exitCode := 1

		var exitErr errors.ErrorWithExitCode
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode
		}

		os.Exit(exitCode)
	}
}
