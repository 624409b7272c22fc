// Package discovery implements the recursive, scope-aware traversal of the
// Azure hierarchy (management group → subscription → resource group →
// resource), exporting every discovered entity as a state record.
//
// The traversal branches by scope kind, fans out over children with a bounded
// worker pool, retries the two list calls known to fail transiently during
// credential initialization, and tolerates partial failure: one broken branch
// never stops its siblings, it only shows up in the aggregated error returned
// from Discover.
package discovery

import (
	"context"
	"time"

	"github.com/scopeworks/azscope/internal/azure/hierarchy"
	"github.com/scopeworks/azscope/internal/azure/scope"
	"github.com/scopeworks/azscope/internal/azure/types"
	"github.com/scopeworks/azscope/internal/errors"
	"github.com/scopeworks/azscope/internal/worker"
	"github.com/scopeworks/azscope/pkg/log"
	"github.com/scopeworks/azscope/util"
)

const (
	// DefaultParallelism bounds the resource-group fan-out when the caller
	// does not configure a limit.
	DefaultParallelism = 4

	// DefaultMaxAttempts is the retry ceiling for the transiently failing
	// list calls.
	DefaultMaxAttempts = 10

	defaultRetryBaseDelay = 250 * time.Millisecond

	// defaultManagementGroupParallelism is 1 because parallel traversal of
	// sibling management groups races the SDK's credential initialization.
	// Workaround, not a design choice; raise it via
	// WithManagementGroupParallelism once the SDK race is fixed.
	defaultManagementGroupParallelism = 1
)

// Discovery walks a scope hierarchy and exports state records for every
// entity it finds. Construct with NewDiscovery and the With* options.
type Discovery struct {
	fetcher EntityFetcher
	writer  StateWriter
	tree    *hierarchy.Tree
	logger  log.Logger

	retryBaseDelay             time.Duration
	parallelism                int
	managementGroupParallelism int
	maxAttempts                int
	skipPolicy                 bool
	skipResourceGroup          bool
}

// NewDiscovery creates a Discovery with default fan-out and retry settings.
// The hierarchy tree must be fully built before the first Discover call; the
// engine only ever reads from it.
func NewDiscovery(fetcher EntityFetcher, writer StateWriter, tree *hierarchy.Tree, logger log.Logger) *Discovery {
	return &Discovery{
		fetcher:                    fetcher,
		writer:                     writer,
		tree:                       tree,
		logger:                     logger,
		parallelism:                DefaultParallelism,
		managementGroupParallelism: defaultManagementGroupParallelism,
		maxAttempts:                DefaultMaxAttempts,
		retryBaseDelay:             defaultRetryBaseDelay,
	}
}

// WithParallelism sets the resource-group fan-out limit.
func (d *Discovery) WithParallelism(n int) *Discovery {
	if n > 0 {
		d.parallelism = n
	}

	return d
}

// WithManagementGroupParallelism overrides the management-group fan-out limit.
func (d *Discovery) WithManagementGroupParallelism(n int) *Discovery {
	if n > 0 {
		d.managementGroupParallelism = n
	}

	return d
}

// WithMaxAttempts sets the retry ceiling for transiently failing list calls.
func (d *Discovery) WithMaxAttempts(n int) *Discovery {
	if n > 0 {
		d.maxAttempts = n
	}

	return d
}

// WithRetryBaseDelay sets the initial backoff delay between retry attempts.
func (d *Discovery) WithRetryBaseDelay(delay time.Duration) *Discovery {
	if delay >= 0 {
		d.retryBaseDelay = delay
	}

	return d
}

// WithSkipPolicy disables policy artifact discovery.
func (d *Discovery) WithSkipPolicy(skip bool) *Discovery {
	d.skipPolicy = skip
	return d
}

// WithSkipResourceGroup disables descending from subscriptions into their
// resource groups.
func (d *Discovery) WithSkipResourceGroup(skip bool) *Discovery {
	d.skipResourceGroup = skip
	return d
}

// Discover exports state records for the given scope and every descendant
// scope reachable under it. The returned error aggregates all branch-level
// failures; a non-nil error means the exported state tree has gaps, not that
// the traversal aborted.
func (d *Discovery) Discover(ctx context.Context, sc *scope.Scope) error {
	if sc == nil {
		return errors.Errorf("discovery requires a scope")
	}

	d.logger.Infof("Discovering %s", sc)

	return d.discover(ctx, sc, nil)
}

// discover runs one per-scope traversal pass. For scopes reached through a
// parent fan-out, entity carries the already-fetched raw entity so it is not
// fetched twice.
func (d *Discovery) discover(ctx context.Context, sc *scope.Scope, entity types.RawEntity) error {
	if err := ctx.Err(); err != nil {
		return errors.New(err)
	}

	var errs *errors.MultiError

	// skipped means the branch wrote no primary record for this scope. The
	// policy pass must not run then: the composite merge re-opens the primary
	// record, and a soft-skip must not leave stray per-artifact records.
	skipped := false

	switch sc.Kind {
	case scope.KindResource:
		if err := d.discoverResource(ctx, sc); err != nil {
			errs = errs.Append(err)
		}

	case scope.KindResourceGroup:
		var err error

		skipped, err = d.discoverResourceGroup(ctx, sc, entity)
		if err != nil {
			errs = errs.Append(err)
		}

	case scope.KindSubscription:
		var err error

		skipped, err = d.discoverSubscription(ctx, sc)
		if err != nil {
			errs = errs.Append(err)
		}

	case scope.KindManagementGroup:
		var err error

		skipped, err = d.discoverManagementGroup(ctx, sc)
		if err != nil {
			errs = errs.Append(err)
		}

	default:
		return errors.WithStackTrace(scope.ValidationError{Input: sc.ID, Reason: "unknown scope kind"})
	}

	if skipped || sc.Kind == scope.KindResource {
		return errs.ErrorOrNil()
	}

	if !d.skipPolicy {
		if err := d.aggregatePolicies(ctx, sc); err != nil {
			errs = errs.Append(err)
		}
	}

	if err := d.discoverRoles(ctx, sc); err != nil {
		errs = errs.Append(err)
	}

	return errs.ErrorOrNil()
}

// discoverResource exports a single resource. A missing resource is a
// warning, not a failure.
func (d *Discovery) discoverResource(ctx context.Context, sc *scope.Scope) error {
	entity, err := d.fetcher.GetResource(ctx, sc.SubscriptionID, sc.ID)
	if err != nil {
		if types.IsNotFound(err) {
			d.logger.Warnf("Resource %s not found, skipping", sc.ID)
			return nil
		}

		return err
	}

	_, err = d.writer.Write(entity, sc.StatePath())

	return err
}

// discoverResourceGroup exports a resource group and the resources inside it.
// Returns skipped=true when the group is platform-managed or absent, in which
// case nothing was written and the policy pass must not run.
func (d *Discovery) discoverResourceGroup(ctx context.Context, sc *scope.Scope, entity types.RawEntity) (bool, error) {
	if entity == nil {
		groups, err := d.listResourceGroupsWithRetry(ctx, sc.SubscriptionID)
		if err != nil {
			return true, err
		}

		for _, group := range groups {
			if group.Name() == sc.ResourceGroup {
				entity = group
				break
			}
		}

		if entity == nil {
			d.logger.Warnf("Resource group %s not found in subscription %s, skipping", sc.ResourceGroup, sc.SubscriptionID)
			return true, nil
		}
	}

	if !eligibleResourceGroup(entity) {
		d.logger.Infof("Resource group %s is managed by %s, skipping", sc.ResourceGroup, entity.ManagedBy())
		return true, nil
	}

	var errs *errors.MultiError

	if _, err := d.writer.Write(entity, sc.StatePath()); err != nil {
		return true, err
	}

	resources, err := d.listResourcesWithRetry(ctx, sc)
	if err != nil {
		d.logger.Errorf("Giving up on resources of %s: %s", sc.ID, err)
		errs = errs.Append(err)
		resources = nil
	}

	for _, resource := range resources {
		resourceScope, err := scope.Parse(resource.ID())
		if err != nil {
			d.logger.Warnf("Skipping resource with unparsable ID %q: %s", resource.ID(), err)
			continue
		}

		if _, err := d.writer.Write(resource, resourceScope.StatePath()); err != nil {
			errs = errs.Append(err)
		}
	}

	return false, errs.ErrorOrNil()
}

// discoverSubscription fans out over the subscription's eligible resource
// groups, then writes the subscription's own record sourced from the cached
// hierarchy. The fan-out join guarantees child records are on disk before the
// subscription composite is written. Returns skipped=true when no primary
// record ended up on disk, so the policy pass has nothing to merge into.
func (d *Discovery) discoverSubscription(ctx context.Context, sc *scope.Scope) (bool, error) {
	var errs *errors.MultiError

	if !d.skipResourceGroup {
		groups, err := d.listResourceGroupsWithRetry(ctx, sc.SubscriptionID)
		if err != nil {
			d.logger.Errorf("Giving up on resource groups of subscription %s: %s", sc.SubscriptionID, err)
			errs = errs.Append(err)
			groups = nil
		}

		pool := worker.NewPool(d.parallelism)

		for _, group := range groups {
			if !eligibleResourceGroup(group) {
				d.logger.Infof("Resource group %s is managed by %s, skipping", group.Name(), group.ManagedBy())
				continue
			}

			groupScope, err := scope.Parse(group.ID())
			if err != nil {
				d.logger.Warnf("Skipping resource group with unparsable ID %q: %s", group.ID(), err)
				continue
			}

			branch := d.branch()
			entity := group

			pool.SubmitContext(ctx, func() error {
				return branch.discover(ctx, groupScope, entity)
			})
		}

		if err := pool.Wait(); err != nil {
			errs = errs.Append(err)
		}
	}

	entity := d.subscriptionEntity(ctx, sc)
	if entity == nil {
		d.logger.Warnf("Subscription %s has no discoverable metadata, skipping its own record", sc.SubscriptionID)
		return true, errs.ErrorOrNil()
	}

	if _, err := d.writer.Write(entity, sc.StatePath()); err != nil {
		errs = errs.Append(err)
		return true, errs.ErrorOrNil()
	}

	return false, errs.ErrorOrNil()
}

// subscriptionEntity prefers the cached hierarchy entry and falls back to a
// direct subscription read for subscriptions outside any management group.
func (d *Discovery) subscriptionEntity(ctx context.Context, sc *scope.Scope) types.RawEntity {
	if d.tree != nil {
		if entry := d.tree.SubscriptionEntry(sc.SubscriptionID); entry != nil {
			return entry.Raw
		}
	}

	entity, err := d.fetcher.GetSubscription(ctx, sc.SubscriptionID)
	if err != nil {
		d.logger.Warnf("Reading subscription %s failed: %s", sc.SubscriptionID, err)
		return nil
	}

	return entity
}

// discoverManagementGroup fans out over the group's children from the cached
// hierarchy, then writes the group's own record. Children complete before the
// parent record is written, so the parent record's presence signals a
// finished subtree. Returns skipped=true when no primary record ended up on
// disk, so the policy pass has nothing to merge into.
func (d *Discovery) discoverManagementGroup(ctx context.Context, sc *scope.Scope) (bool, error) {
	if d.tree == nil || d.tree.Node(sc.Name) == nil {
		d.logger.Warnf("Management group %s not found in cached hierarchy, skipping", sc.Name)
		return true, nil
	}

	var errs *errors.MultiError

	pool := worker.NewPool(d.managementGroupParallelism)

	for _, child := range d.tree.ChildrenOf(sc.Name) {
		childScope, err := childEntryScope(child)
		if err != nil {
			d.logger.Warnf("Skipping hierarchy entry %q: %s", child.ID, err)
			continue
		}

		branch := d.branch()

		pool.SubmitContext(ctx, func() error {
			return branch.discover(ctx, childScope, nil)
		})
	}

	if err := pool.Wait(); err != nil {
		errs = errs.Append(err)
	}

	node := d.tree.Node(sc.Name)
	if _, err := d.writer.Write(node.Raw, sc.StatePath()); err != nil {
		errs = errs.Append(err)
		return true, errs.ErrorOrNil()
	}

	return false, errs.ErrorOrNil()
}

// branch returns a copy of the engine for one fan-out task. The copy carries
// its own hierarchy snapshot and value copies of the toggles, so concurrent
// branches share no mutable state.
func (d *Discovery) branch() *Discovery {
	clone := *d

	if d.tree != nil {
		clone.tree = d.tree.Snapshot()
	}

	return &clone
}

func childEntryScope(child *hierarchy.Entry) (*scope.Scope, error) {
	if child.IsSubscription() {
		return scope.Parse("/subscriptions/" + child.Name)
	}

	return scope.Parse("/providers/Microsoft.Management/managementGroups/" + child.Name)
}

// listResourceGroupsWithRetry wraps the resource-group list call, which is
// known to fail intermittently while provider credentials settle.
func (d *Discovery) listResourceGroupsWithRetry(ctx context.Context, subscriptionID string) ([]types.RawEntity, error) {
	var groups []types.RawEntity

	description := "list resource groups in subscription " + subscriptionID

	err := util.DoWithRetry(ctx, description, d.maxAttempts, d.retryBaseDelay, d.logger, log.DebugLevel, func(ctx context.Context) error {
		var err error
		groups, err = d.fetcher.ListResourceGroups(ctx, subscriptionID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return groups, nil
}

// listResourcesWithRetry wraps the resource list call, same failure mode as
// listResourceGroupsWithRetry.
func (d *Discovery) listResourcesWithRetry(ctx context.Context, sc *scope.Scope) ([]types.RawEntity, error) {
	var resources []types.RawEntity

	description := "list resources in resource group " + sc.ResourceGroup

	err := util.DoWithRetry(ctx, description, d.maxAttempts, d.retryBaseDelay, d.logger, log.DebugLevel, func(ctx context.Context) error {
		var err error
		resources, err = d.fetcher.ListResources(ctx, sc.SubscriptionID, sc.ResourceGroup)

		return err
	})
	if err != nil {
		return nil, err
	}

	return resources, nil
}
