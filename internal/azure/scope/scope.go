// Package scope models positions in the Azure scope hierarchy and parses
// ARM resource IDs into typed scope descriptors.
package scope

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Kind identifies the level of the hierarchy a scope points at.
type Kind string

const (
	KindManagementGroup Kind = "managementGroup"
	KindSubscription    Kind = "subscription"
	KindResourceGroup   Kind = "resourceGroup"
	KindResource        Kind = "resource"
)

const (
	managementGroupPrefix = "/providers/microsoft.management/managementgroups/"
	subscriptionsSegment  = "subscriptions"
	resourceGroupsSegment = "resourcegroups"
	providersSegment      = "providers"
)

// Scope is an immutable descriptor of one position in the resource hierarchy.
// Produced once per traversal call by Parse and never mutated.
type Scope struct {
	// ID is the ARM resource ID the scope was parsed from.
	ID string

	// Kind is the hierarchy level.
	Kind Kind

	// Name is the management group name, subscription ID, resource group
	// name, or resource name, depending on Kind.
	Name string

	// SubscriptionID is set for subscription, resourceGroup and resource
	// scopes.
	SubscriptionID string

	// ResourceGroup is set for resourceGroup and resource scopes.
	ResourceGroup string

	// provider is the provider-qualified remainder of a resource ID,
	// e.g. "Microsoft.Network/virtualNetworks/vnet-hub".
	provider string
}

// ValidationError reports a malformed scope identifier. It is never retried
// and fails the whole invocation.
type ValidationError struct {
	Input  string
	Reason string
}

func (err ValidationError) Error() string {
	return fmt.Sprintf("invalid scope identifier %q: %s", err.Input, err.Reason)
}

// Parse turns an ARM-resource-ID-shaped path into a typed Scope.
//
// Recognized shapes:
//
//	/providers/Microsoft.Management/managementGroups/<name>
//	/subscriptions/<id>
//	/subscriptions/<id>/resourceGroups/<name>
//	/subscriptions/<id>/resourceGroups/<name>/providers/<ns>/<type>/<name>...
func Parse(id string) (*Scope, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(id), "/")
	if trimmed == "" || !strings.HasPrefix(trimmed, "/") {
		return nil, ValidationError{Input: id, Reason: "must be an absolute ARM resource ID"}
	}

	if name, ok := strings.CutPrefix(strings.ToLower(trimmed), managementGroupPrefix); ok {
		if name == "" || strings.Contains(name, "/") {
			return nil, ValidationError{Input: id, Reason: "management group name must be a single path segment"}
		}

		// Preserve the original casing of the name.
		return &Scope{
			ID:   trimmed,
			Kind: KindManagementGroup,
			Name: trimmed[len(trimmed)-len(name):],
		}, nil
	}

	segments := strings.Split(strings.TrimPrefix(trimmed, "/"), "/")
	if len(segments) < 2 || !strings.EqualFold(segments[0], subscriptionsSegment) {
		return nil, ValidationError{Input: id, Reason: "unrecognized scope shape"}
	}

	subscriptionID := segments[1]
	if _, err := uuid.Parse(subscriptionID); err != nil {
		return nil, ValidationError{Input: id, Reason: "subscription ID is not a valid UUID"}
	}

	switch {
	case len(segments) == 2:
		return &Scope{
			ID:             trimmed,
			Kind:           KindSubscription,
			Name:           subscriptionID,
			SubscriptionID: subscriptionID,
		}, nil

	case len(segments) == 4 && strings.EqualFold(segments[2], resourceGroupsSegment):
		return &Scope{
			ID:             trimmed,
			Kind:           KindResourceGroup,
			Name:           segments[3],
			SubscriptionID: subscriptionID,
			ResourceGroup:  segments[3],
		}, nil

	case len(segments) >= 8 && strings.EqualFold(segments[2], resourceGroupsSegment) && strings.EqualFold(segments[4], providersSegment):
		return &Scope{
			ID:             trimmed,
			Kind:           KindResource,
			Name:           segments[len(segments)-1],
			SubscriptionID: subscriptionID,
			ResourceGroup:  segments[3],
			provider:       strings.Join(segments[5:], "/"),
		}, nil
	}

	return nil, ValidationError{Input: id, Reason: "unrecognized scope shape"}
}

// MustParse is a test helper that panics on a parse failure.
func MustParse(id string) *Scope {
	sc, err := Parse(id)
	if err != nil {
		panic(err)
	}

	return sc
}

// StatePath returns the relative path of this scope's state record. The
// mapping from scope to path is injective; concurrent traversal branches rely
// on that to write without locking.
func (s *Scope) StatePath() string {
	switch s.Kind {
	case KindManagementGroup:
		return path.Join("managementgroups", s.Name, "managementgroup."+s.Name+".json")
	case KindSubscription:
		return path.Join("subscriptions", s.SubscriptionID, "subscription."+s.SubscriptionID+".json")
	case KindResourceGroup:
		return path.Join("subscriptions", s.SubscriptionID, "resourcegroups", s.ResourceGroup, "resourcegroup."+s.ResourceGroup+".json")
	case KindResource:
		flattened := strings.ReplaceAll(s.provider, "/", "_")

		return path.Join("subscriptions", s.SubscriptionID, "resourcegroups", s.ResourceGroup, flattened+".json")
	}

	return ""
}

// Dir returns the directory portion of the scope's state path. Per-artifact
// policy records are written underneath it.
func (s *Scope) Dir() string {
	return path.Dir(s.StatePath())
}

// String implements fmt.Stringer.
func (s *Scope) String() string {
	return fmt.Sprintf("%s(%s)", s.Kind, s.ID)
}
