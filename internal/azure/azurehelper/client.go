// Package azurehelper wraps the Azure Resource Manager SDK clients behind the
// fetcher interface the discovery engine consumes.
package azurehelper

import (
	"context"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/managementgroups/armmanagementgroups"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armpolicy"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/subscription/armsubscription"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/scopeworks/azscope/internal/errors"
	"github.com/scopeworks/azscope/pkg/log"
)

// Client bundles the ARM clients used during discovery. ARM resource clients
// are scoped to a single subscription, so they are created lazily per
// subscription as the traversal crosses subscription boundaries.
type Client struct {
	cred   azcore.TokenCredential
	logger log.Logger

	resourceGroups *xsync.MapOf[string, *armresources.ResourceGroupsClient]
	resources      *xsync.MapOf[string, *armresources.Client]
	policies       *xsync.MapOf[string, *policyClients]

	entities      *armmanagementgroups.EntitiesClient
	subscriptions *armsubscription.SubscriptionsClient
}

type policyClients struct {
	definitions    *armpolicy.DefinitionsClient
	setDefinitions *armpolicy.SetDefinitionsClient
	assignments    *armpolicy.AssignmentsClient
}

// NewClient builds a Client using the default Azure credential chain
// (environment, workload identity, managed identity, CLI).
func NewClient(ctx context.Context, l log.Logger) (*Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{})
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "getting Azure credentials")
	}

	entities, err := armmanagementgroups.NewEntitiesClient(cred, nil)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "creating management group entities client")
	}

	subscriptions, err := armsubscription.NewSubscriptionsClient(cred, nil)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "creating subscriptions client")
	}

	return &Client{
		cred:           cred,
		logger:         l,
		resourceGroups: xsync.NewMapOf[string, *armresources.ResourceGroupsClient](),
		resources:      xsync.NewMapOf[string, *armresources.Client](),
		policies:       xsync.NewMapOf[string, *policyClients](),
		entities:       entities,
		subscriptions:  subscriptions,
	}, nil
}

func (c *Client) resourceGroupsClient(subscriptionID string) (*armresources.ResourceGroupsClient, error) {
	if client, ok := c.resourceGroups.Load(subscriptionID); ok {
		return client, nil
	}

	client, err := armresources.NewResourceGroupsClient(subscriptionID, c.cred, nil)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "creating resource group client for subscription %s", subscriptionID)
	}

	actual, _ := c.resourceGroups.LoadOrStore(subscriptionID, client)

	return actual, nil
}

func (c *Client) resourcesClient(subscriptionID string) (*armresources.Client, error) {
	if client, ok := c.resources.Load(subscriptionID); ok {
		return client, nil
	}

	client, err := armresources.NewClient(subscriptionID, c.cred, nil)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "creating resources client for subscription %s", subscriptionID)
	}

	actual, _ := c.resources.LoadOrStore(subscriptionID, client)

	return actual, nil
}

// policyClientsFor returns the policy clients bound to the given subscription.
// The subscription ID may be empty for management-group-scoped list calls,
// which do not use the client's subscription in their request path.
func (c *Client) policyClientsFor(subscriptionID string) (*policyClients, error) {
	if clients, ok := c.policies.Load(subscriptionID); ok {
		return clients, nil
	}

	definitions, err := armpolicy.NewDefinitionsClient(subscriptionID, c.cred, nil)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "creating policy definitions client")
	}

	setDefinitions, err := armpolicy.NewSetDefinitionsClient(subscriptionID, c.cred, nil)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "creating policy set definitions client")
	}

	assignments, err := armpolicy.NewAssignmentsClient(subscriptionID, c.cred, nil)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "creating policy assignments client")
	}

	clients := &policyClients{
		definitions:    definitions,
		setDefinitions: setDefinitions,
		assignments:    assignments,
	}

	actual, _ := c.policies.LoadOrStore(subscriptionID, clients)

	return actual, nil
}

// IsNotFoundError reports whether the error is an ARM 404 response.
func IsNotFoundError(err error) bool {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == http.StatusNotFound
	}

	return false
}
