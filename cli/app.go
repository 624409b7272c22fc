// Package cli assembles the azscope command-line application.
package cli

import (
	cligo "github.com/urfave/cli/v2"

	"github.com/scopeworks/azscope/cli/commands/pull"
	"github.com/scopeworks/azscope/pkg/log"
)

const (
	appName = "azscope"

	LogLevelFlagName = "log-level"
)

// NewApp builds the CLI application with all commands registered.
func NewApp(version string, logger log.Logger) *cligo.App {
	return &cligo.App{
		Name:    appName,
		Usage:   "Export an Azure scope hierarchy as GitOps-trackable state records.",
		Version: version,
		Flags: []cligo.Flag{
			&cligo.StringFlag{
				Name:    LogLevelFlagName,
				Usage:   "Log level: trace, debug, info, warn, error.",
				EnvVars: []string{"AZSCOPE_LOG_LEVEL"},
				Value:   "info",
			},
		},
		Before: func(ctx *cligo.Context) error {
			return logger.SetLevel(ctx.String(LogLevelFlagName))
		},
		Commands: []*cligo.Command{
			pull.NewCommand(logger),
		},
	}
}
