package pull

import (
	"context"
	"time"

	"github.com/scopeworks/azscope/internal/azure/azurehelper"
	"github.com/scopeworks/azscope/internal/azure/hierarchy"
	"github.com/scopeworks/azscope/internal/azure/scope"
	"github.com/scopeworks/azscope/internal/discovery"
	"github.com/scopeworks/azscope/internal/errors"
	"github.com/scopeworks/azscope/internal/state"
	"github.com/scopeworks/azscope/pkg/env"
	"github.com/scopeworks/azscope/pkg/log"
)

// Exit codes. Branch failures leave gaps in the exported tree; they exit
// non-zero so a GitOps pipeline does not commit a partial snapshot as if it
// were complete.
const (
	ExitCodeValidationError = 1
	ExitCodePartialFailure  = 2
)

// Tuning knobs without a flag. The management-group override exists to relax
// the serialized management-group fan-out once the SDK credential race that
// forced it is fixed.
const (
	retryBaseDelayEnvVar  = "AZSCOPE_RETRY_BASE_DELAY_MS"
	mgParallelismEnvVar   = "AZSCOPE_MG_PARALLELISM"
	defaultRetryBaseDelay = 250
)

// Run executes one discovery pass for the configured scope.
func Run(ctx context.Context, logger log.Logger, opts *Options) error {
	sc, err := scope.Parse(opts.Scope)
	if err != nil {
		return errors.ErrorWithExitCode{Err: err, ExitCode: ExitCodeValidationError}
	}

	client, err := azurehelper.NewClient(ctx, logger)
	if err != nil {
		return err
	}

	// Subscription and management-group passes read the hierarchy; resource
	// and resource-group passes never touch it.
	var tree *hierarchy.Tree

	if sc.Kind == scope.KindSubscription || sc.Kind == scope.KindManagementGroup {
		tree, err = hierarchy.Build(ctx, logger, client)
		if err != nil {
			return err
		}
	}

	writer := state.NewWriter(opts.OutputDir, logger)

	retryBaseDelay := time.Duration(env.GetIntEnv(retryBaseDelayEnvVar, defaultRetryBaseDelay)) * time.Millisecond

	engine := discovery.NewDiscovery(client, writer, tree, logger).
		WithParallelism(opts.Parallelism).
		WithManagementGroupParallelism(env.GetIntEnv(mgParallelismEnvVar, 0)).
		WithMaxAttempts(opts.MaxAttempts).
		WithRetryBaseDelay(retryBaseDelay).
		WithSkipPolicy(opts.SkipPolicy).
		WithSkipResourceGroup(opts.SkipResourceGroup)

	if err := engine.Discover(ctx, sc); err != nil {
		return errors.ErrorWithExitCode{
			Err:      errors.WithStackTraceAndPrefix(err, "discovery finished with gaps"),
			ExitCode: ExitCodePartialFailure,
		}
	}

	logger.Infof("Discovery of %s complete", sc)

	return nil
}
