package azurehelper

import (
	"context"

	"github.com/scopeworks/azscope/internal/azure/scope"
	"github.com/scopeworks/azscope/internal/azure/types"
	"github.com/scopeworks/azscope/internal/errors"
)

// ListPolicyDefinitions returns the policy definitions stored at the given
// scope. Resource groups cannot hold definitions, so a resource-group scope
// yields an empty set.
func (c *Client) ListPolicyDefinitions(ctx context.Context, sc *scope.Scope) ([]types.RawEntity, error) {
	clients, err := c.policyClientsFor(sc.SubscriptionID)
	if err != nil {
		return nil, err
	}

	var definitions []types.RawEntity

	switch sc.Kind {
	case scope.KindManagementGroup:
		pager := clients.definitions.NewListByManagementGroupPager(sc.Name, nil)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				return nil, errors.WithStackTraceAndPrefix(err, "listing policy definitions at %s", sc.ID)
			}

			for _, definition := range page.Value {
				entity, err := types.FromSDK(definition)
				if err != nil {
					return nil, err
				}

				definitions = append(definitions, entity)
			}
		}

	case scope.KindSubscription:
		pager := clients.definitions.NewListPager(nil)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				return nil, errors.WithStackTraceAndPrefix(err, "listing policy definitions at %s", sc.ID)
			}

			for _, definition := range page.Value {
				entity, err := types.FromSDK(definition)
				if err != nil {
					return nil, err
				}

				definitions = append(definitions, entity)
			}
		}
	}

	return definitions, nil
}

// ListPolicySetDefinitions returns the policy set definitions (initiatives)
// stored at the given scope.
func (c *Client) ListPolicySetDefinitions(ctx context.Context, sc *scope.Scope) ([]types.RawEntity, error) {
	clients, err := c.policyClientsFor(sc.SubscriptionID)
	if err != nil {
		return nil, err
	}

	var setDefinitions []types.RawEntity

	switch sc.Kind {
	case scope.KindManagementGroup:
		pager := clients.setDefinitions.NewListByManagementGroupPager(sc.Name, nil)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				return nil, errors.WithStackTraceAndPrefix(err, "listing policy set definitions at %s", sc.ID)
			}

			for _, setDefinition := range page.Value {
				entity, err := types.FromSDK(setDefinition)
				if err != nil {
					return nil, err
				}

				setDefinitions = append(setDefinitions, entity)
			}
		}

	case scope.KindSubscription:
		pager := clients.setDefinitions.NewListPager(nil)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				return nil, errors.WithStackTraceAndPrefix(err, "listing policy set definitions at %s", sc.ID)
			}

			for _, setDefinition := range page.Value {
				entity, err := types.FromSDK(setDefinition)
				if err != nil {
					return nil, err
				}

				setDefinitions = append(setDefinitions, entity)
			}
		}
	}

	return setDefinitions, nil
}

// ListPolicyAssignments returns the policy assignments attached to the given
// scope.
func (c *Client) ListPolicyAssignments(ctx context.Context, sc *scope.Scope) ([]types.RawEntity, error) {
	clients, err := c.policyClientsFor(sc.SubscriptionID)
	if err != nil {
		return nil, err
	}

	var assignments []types.RawEntity

	switch sc.Kind {
	case scope.KindManagementGroup:
		pager := clients.assignments.NewListForManagementGroupPager(sc.Name, nil)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				return nil, errors.WithStackTraceAndPrefix(err, "listing policy assignments at %s", sc.ID)
			}

			for _, assignment := range page.Value {
				entity, err := types.FromSDK(assignment)
				if err != nil {
					return nil, err
				}

				assignments = append(assignments, entity)
			}
		}

	case scope.KindSubscription:
		pager := clients.assignments.NewListPager(nil)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				return nil, errors.WithStackTraceAndPrefix(err, "listing policy assignments at %s", sc.ID)
			}

			for _, assignment := range page.Value {
				entity, err := types.FromSDK(assignment)
				if err != nil {
					return nil, err
				}

				assignments = append(assignments, entity)
			}
		}

	case scope.KindResourceGroup:
		pager := clients.assignments.NewListForResourceGroupPager(sc.ResourceGroup, nil)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				return nil, errors.WithStackTraceAndPrefix(err, "listing policy assignments at %s", sc.ID)
			}

			for _, assignment := range page.Value {
				entity, err := types.FromSDK(assignment)
				if err != nil {
					return nil, err
				}

				assignments = append(assignments, entity)
			}
		}
	}

	return assignments, nil
}
