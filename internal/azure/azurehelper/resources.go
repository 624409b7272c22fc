package azurehelper

import (
	"context"

	"github.com/scopeworks/azscope/internal/azure/types"
	"github.com/scopeworks/azscope/internal/errors"
)

// defaultResourceAPIVersion is used when reading a single resource by ID.
// GetByID requires an explicit api-version; this is the resources provider
// version, which ARM accepts for generic reads of most resource types.
// TODO: resolve the provider-specific api-version via the Providers API for
// types that reject the generic one.
const defaultResourceAPIVersion = "2021-04-01"

// ListResourceGroups returns every resource group in the subscription, in
// provider order.
func (c *Client) ListResourceGroups(ctx context.Context, subscriptionID string) ([]types.RawEntity, error) {
	client, err := c.resourceGroupsClient(subscriptionID)
	if err != nil {
		return nil, err
	}

	var groups []types.RawEntity

	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, errors.WithStackTraceAndPrefix(err, "listing resource groups in subscription %s", subscriptionID)
		}

		for _, group := range page.Value {
			entity, err := types.FromSDK(group)
			if err != nil {
				return nil, err
			}

			groups = append(groups, entity)
		}
	}

	return groups, nil
}

// ListResources returns every resource inside the given resource group, in
// provider order.
func (c *Client) ListResources(ctx context.Context, subscriptionID, resourceGroup string) ([]types.RawEntity, error) {
	client, err := c.resourcesClient(subscriptionID)
	if err != nil {
		return nil, err
	}

	var resources []types.RawEntity

	pager := client.NewListByResourceGroupPager(resourceGroup, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, errors.WithStackTraceAndPrefix(err, "listing resources in resource group %s", resourceGroup)
		}

		for _, resource := range page.Value {
			entity, err := types.FromSDK(resource)
			if err != nil {
				return nil, err
			}

			resources = append(resources, entity)
		}
	}

	return resources, nil
}

// GetResource reads a single resource by its full ARM ID. A missing resource
// is reported as types.NotFoundError rather than a generic failure.
func (c *Client) GetResource(ctx context.Context, subscriptionID, resourceID string) (types.RawEntity, error) {
	client, err := c.resourcesClient(subscriptionID)
	if err != nil {
		return nil, err
	}

	resp, err := client.GetByID(ctx, resourceID, defaultResourceAPIVersion, nil)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, types.NotFoundError{ResourceID: resourceID}
		}

		return nil, errors.WithStackTraceAndPrefix(err, "getting resource %s", resourceID)
	}

	return types.FromSDK(resp.GenericResource)
}
