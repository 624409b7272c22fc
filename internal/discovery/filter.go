package discovery

import (
	"github.com/scopeworks/azscope/internal/azure/types"
)

// eligibleResourceGroup reports whether a resource group should be discovered.
// Groups carrying a managedBy attribute belong to another platform construct
// (for example a managed application) and are not independently-managed
// infrastructure, so they are excluded together with everything inside them.
func eligibleResourceGroup(entity types.RawEntity) bool {
	return entity.ManagedBy() == ""
}
