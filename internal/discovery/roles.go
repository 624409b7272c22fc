package discovery

import (
	"context"

	"github.com/scopeworks/azscope/internal/azure/scope"
)

// discoverRoles is intentionally a no-op. Role definition and assignment
// discovery is disabled upstream; the traversal hook stays in place so the
// feature can be reinstated without reshaping the per-scope pass. The
// composite record meanwhile carries explicit null roleDefinitions and
// roleAssignments fields (see policy.go).
func (d *Discovery) discoverRoles(_ context.Context, _ *scope.Scope) error {
	return nil
}
