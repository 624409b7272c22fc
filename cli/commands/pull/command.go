// Package pull implements the `azscope pull` command: discover a scope
// hierarchy and export it as state records.
package pull

import (
	"github.com/urfave/cli/v2"

	"github.com/scopeworks/azscope/internal/discovery"
	"github.com/scopeworks/azscope/pkg/log"
)

const (
	CommandName = "pull"

	ScopeFlagName             = "scope"
	OutputDirFlagName         = "output-dir"
	SkipPolicyFlagName        = "skip-policy"
	SkipResourceGroupFlagName = "skip-resource-group"
	ParallelismFlagName       = "parallelism"
	MaxAttemptsFlagName       = "max-attempts"

	ParallelismEnvVar = "AZSCOPE_PARALLELISM"
)

// Options carries the parsed flag values into the command action.
type Options struct {
	Scope             string
	OutputDir         string
	Parallelism       int
	MaxAttempts       int
	SkipPolicy        bool
	SkipResourceGroup bool
}

// NewCommand builds the pull command.
func NewCommand(logger log.Logger) *cli.Command {
	opts := &Options{}

	return &cli.Command{
		Name:  CommandName,
		Usage: "Discover an Azure scope hierarchy and export it as state records.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        ScopeFlagName,
				Usage:       "ARM resource ID of the scope to discover, e.g. /providers/Microsoft.Management/managementGroups/root.",
				Destination: &opts.Scope,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        OutputDirFlagName,
				Usage:       "Directory the state records are written under.",
				Destination: &opts.OutputDir,
				Value:       ".",
			},
			&cli.BoolFlag{
				Name:        SkipPolicyFlagName,
				Usage:       "Skip discovery of policy definitions, set definitions and assignments.",
				Destination: &opts.SkipPolicy,
			},
			&cli.BoolFlag{
				Name:        SkipResourceGroupFlagName,
				Usage:       "Skip descending from subscriptions into resource groups.",
				Destination: &opts.SkipResourceGroup,
			},
			&cli.IntFlag{
				Name:        ParallelismFlagName,
				Usage:       "Concurrency limit for the resource-group fan-out.",
				Destination: &opts.Parallelism,
				EnvVars:     []string{ParallelismEnvVar},
				Value:       discovery.DefaultParallelism,
			},
			&cli.IntFlag{
				Name:        MaxAttemptsFlagName,
				Usage:       "Retry ceiling for transiently failing provider list calls.",
				Destination: &opts.MaxAttempts,
				Value:       discovery.DefaultMaxAttempts,
			},
		},
		Action: func(ctx *cli.Context) error {
			return Run(ctx.Context, logger, opts)
		},
	}
}
