package discovery

import (
	"context"
	"path"

	"github.com/scopeworks/azscope/internal/azure/scope"
	"github.com/scopeworks/azscope/internal/azure/types"
	"github.com/scopeworks/azscope/internal/errors"
)

// Composite property bag keys. Role discovery is disabled, so its two keys
// are always present and always null.
const (
	propPolicyDefinitions    = "policyDefinitions"
	propPolicySetDefinitions = "policySetDefinitions"
	propPolicyAssignments    = "policyAssignments"
	propRoleDefinitions      = "roleDefinitions"
	propRoleAssignments      = "roleAssignments"
)

// policyArtifactBag holds one scope's policy artifacts in provider order.
type policyArtifactBag struct {
	definitions    []types.RawEntity
	setDefinitions []types.RawEntity
	assignments    []types.RawEntity
}

// aggregatePolicies fetches the scope's policy artifacts, writes one state
// record per artifact, and — for subscription and management-group scopes —
// folds the raw buckets into the scope's already-written composite record in
// a single rewrite. Precondition: the scope's primary record is on disk.
func (d *Discovery) aggregatePolicies(ctx context.Context, sc *scope.Scope) error {
	var errs *errors.MultiError

	bag := &policyArtifactBag{}

	var err error

	bag.definitions, err = d.fetcher.ListPolicyDefinitions(ctx, sc)
	if err != nil {
		d.logger.Errorf("Listing policy definitions at %s failed: %s", sc.ID, err)
		errs = errs.Append(err)
	}

	bag.setDefinitions, err = d.fetcher.ListPolicySetDefinitions(ctx, sc)
	if err != nil {
		d.logger.Errorf("Listing policy set definitions at %s failed: %s", sc.ID, err)
		errs = errs.Append(err)
	}

	bag.assignments, err = d.fetcher.ListPolicyAssignments(ctx, sc)
	if err != nil {
		d.logger.Errorf("Listing policy assignments at %s failed: %s", sc.ID, err)
		errs = errs.Append(err)
	}

	errs = errs.Append(d.writePolicyArtifacts(sc, "policydefinition", bag.definitions))
	errs = errs.Append(d.writePolicyArtifacts(sc, "policysetdefinition", bag.setDefinitions))
	errs = errs.Append(d.writePolicyArtifacts(sc, "policyassignment", bag.assignments))

	if sc.Kind == scope.KindSubscription || sc.Kind == scope.KindManagementGroup {
		if err := d.mergeCompositeRecord(sc, bag); err != nil {
			errs = errs.Append(err)
		}
	}

	return errs.ErrorOrNil()
}

// writePolicyArtifacts writes one state record per artifact underneath the
// scope's directory, keeping provider order.
func (d *Discovery) writePolicyArtifacts(sc *scope.Scope, kind string, artifacts []types.RawEntity) error {
	var errs *errors.MultiError

	for _, artifact := range artifacts {
		name := artifact.Name()
		if name == "" {
			d.logger.Warnf("Skipping %s without a name at %s", kind, sc.ID)
			continue
		}

		statePath := path.Join(sc.Dir(), "policies", kind+"."+name+".json")

		if _, err := d.writer.Write(artifact, statePath); err != nil {
			errs = errs.Append(err)
		}
	}

	return errs.ErrorOrNil()
}

// mergeCompositeRecord re-opens the scope's primary record and attaches the
// raw artifact buckets as a properties sub-object. The record is rewritten
// exactly once; the bag is never partially written.
func (d *Discovery) mergeCompositeRecord(sc *scope.Scope, bag *policyArtifactBag) error {
	record, err := d.writer.ReadExisting(sc.StatePath())
	if err != nil {
		return errors.WithStackTraceAndPrefix(err, "re-opening composite record for %s", sc.ID)
	}

	value := record.Parameters.Input.Value
	if value == nil {
		value = types.RawEntity{}
	}

	properties, _ := value["properties"].(map[string]any)
	if properties == nil {
		properties = map[string]any{}
	}

	properties[propPolicyDefinitions] = nonNil(bag.definitions)
	properties[propPolicySetDefinitions] = nonNil(bag.setDefinitions)
	properties[propPolicyAssignments] = nonNil(bag.assignments)
	properties[propRoleDefinitions] = nil
	properties[propRoleAssignments] = nil

	value["properties"] = properties
	record.Parameters.Input.Value = value

	return d.writer.Rewrite(record, sc.StatePath())
}

func nonNil(artifacts []types.RawEntity) []types.RawEntity {
	if artifacts == nil {
		return []types.RawEntity{}
	}

	return artifacts
}
