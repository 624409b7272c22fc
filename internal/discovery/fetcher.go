package discovery

import (
	"context"

	"github.com/scopeworks/azscope/internal/azure/scope"
	"github.com/scopeworks/azscope/internal/azure/types"
	"github.com/scopeworks/azscope/internal/state"
)

// EntityFetcher retrieves raw entities from the upstream provider. Implemented
// by azurehelper.Client; tests substitute a fake.
type EntityFetcher interface {
	// ListResourceGroups returns the resource groups of a subscription in
	// provider order.
	ListResourceGroups(ctx context.Context, subscriptionID string) ([]types.RawEntity, error)

	// ListResources returns the resources inside a resource group in
	// provider order.
	ListResources(ctx context.Context, subscriptionID, resourceGroup string) ([]types.RawEntity, error)

	// GetResource reads one resource by its full ARM ID. A missing resource
	// is reported as types.NotFoundError.
	GetResource(ctx context.Context, subscriptionID, resourceID string) (types.RawEntity, error)

	// GetSubscription reads subscription metadata directly.
	GetSubscription(ctx context.Context, subscriptionID string) (types.RawEntity, error)

	// ListPolicyDefinitions returns the policy definitions stored at a scope.
	ListPolicyDefinitions(ctx context.Context, sc *scope.Scope) ([]types.RawEntity, error)

	// ListPolicySetDefinitions returns the policy set definitions stored at
	// a scope.
	ListPolicySetDefinitions(ctx context.Context, sc *scope.Scope) ([]types.RawEntity, error)

	// ListPolicyAssignments returns the policy assignments attached to a
	// scope.
	ListPolicyAssignments(ctx context.Context, sc *scope.Scope) ([]types.RawEntity, error)
}

// StateWriter persists discovered entities. Implemented by state.Writer.
type StateWriter interface {
	// Write persists the entity as a fresh record at the given relative path.
	Write(entity types.RawEntity, statePath string) (string, error)

	// ReadExisting loads a record written earlier in the same run.
	ReadExisting(statePath string) (*state.Record, error)

	// Rewrite replaces a record written earlier in the same run.
	Rewrite(record *state.Record, statePath string) error
}
