package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopeworks/azscope/internal/azure/scope"
)

const testSubscriptionID = "11111111-1111-1111-1111-111111111111"

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		input          string
		expectedKind   scope.Kind
		expectedName   string
		expectedSubID  string
		expectedRG     string
		expectedErrStr string
	}{
		{
			name:         "management group",
			input:        "/providers/Microsoft.Management/managementGroups/Contoso-Root",
			expectedKind: scope.KindManagementGroup,
			expectedName: "Contoso-Root",
		},
		{
			name:          "subscription",
			input:         "/subscriptions/" + testSubscriptionID,
			expectedKind:  scope.KindSubscription,
			expectedName:  testSubscriptionID,
			expectedSubID: testSubscriptionID,
		},
		{
			name:          "subscription with trailing slash",
			input:         "/subscriptions/" + testSubscriptionID + "/",
			expectedKind:  scope.KindSubscription,
			expectedName:  testSubscriptionID,
			expectedSubID: testSubscriptionID,
		},
		{
			name:          "resource group",
			input:         "/subscriptions/" + testSubscriptionID + "/resourceGroups/rg-network",
			expectedKind:  scope.KindResourceGroup,
			expectedName:  "rg-network",
			expectedSubID: testSubscriptionID,
			expectedRG:    "rg-network",
		},
		{
			name:          "resource group lowercase segment",
			input:         "/subscriptions/" + testSubscriptionID + "/resourcegroups/rg-network",
			expectedKind:  scope.KindResourceGroup,
			expectedName:  "rg-network",
			expectedSubID: testSubscriptionID,
			expectedRG:    "rg-network",
		},
		{
			name:          "resource",
			input:         "/subscriptions/" + testSubscriptionID + "/resourceGroups/rg-network/providers/Microsoft.Network/virtualNetworks/vnet-hub",
			expectedKind:  scope.KindResource,
			expectedName:  "vnet-hub",
			expectedSubID: testSubscriptionID,
			expectedRG:    "rg-network",
		},
		{
			name:          "nested child resource",
			input:         "/subscriptions/" + testSubscriptionID + "/resourceGroups/rg-network/providers/Microsoft.Network/virtualNetworks/vnet-hub/subnets/default",
			expectedKind:  scope.KindResource,
			expectedName:  "default",
			expectedSubID: testSubscriptionID,
			expectedRG:    "rg-network",
		},
		{
			name:           "empty",
			input:          "",
			expectedErrStr: "must be an absolute ARM resource ID",
		},
		{
			name:           "relative path",
			input:          "subscriptions/" + testSubscriptionID,
			expectedErrStr: "must be an absolute ARM resource ID",
		},
		{
			name:           "bad subscription id",
			input:          "/subscriptions/not-a-uuid",
			expectedErrStr: "subscription ID is not a valid UUID",
		},
		{
			name:           "unknown shape",
			input:          "/tenants/" + testSubscriptionID,
			expectedErrStr: "unrecognized scope shape",
		},
		{
			name:           "resource without providers segment",
			input:          "/subscriptions/" + testSubscriptionID + "/resourceGroups/rg/extra/bits",
			expectedErrStr: "unrecognized scope shape",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sc, err := scope.Parse(tc.input)

			if tc.expectedErrStr != "" {
				require.Error(t, err)

				var validationErr scope.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Contains(t, err.Error(), tc.expectedErrStr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedKind, sc.Kind)
			assert.Equal(t, tc.expectedName, sc.Name)
			assert.Equal(t, tc.expectedSubID, sc.SubscriptionID)
			assert.Equal(t, tc.expectedRG, sc.ResourceGroup)
		})
	}
}

func TestStatePath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected string
	}{
		{
			input:    "/providers/Microsoft.Management/managementGroups/Contoso-Root",
			expected: "managementgroups/Contoso-Root/managementgroup.Contoso-Root.json",
		},
		{
			input:    "/subscriptions/" + testSubscriptionID,
			expected: "subscriptions/" + testSubscriptionID + "/subscription." + testSubscriptionID + ".json",
		},
		{
			input:    "/subscriptions/" + testSubscriptionID + "/resourceGroups/rg-network",
			expected: "subscriptions/" + testSubscriptionID + "/resourcegroups/rg-network/resourcegroup.rg-network.json",
		},
		{
			input:    "/subscriptions/" + testSubscriptionID + "/resourceGroups/rg-network/providers/Microsoft.Network/virtualNetworks/vnet-hub",
			expected: "subscriptions/" + testSubscriptionID + "/resourcegroups/rg-network/Microsoft.Network_virtualNetworks_vnet-hub.json",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, scope.MustParse(tc.input).StatePath())
		})
	}
}

// Distinct scopes must never share a state path; concurrent branches write
// without locking and rely on this.
func TestStatePathInjective(t *testing.T) {
	t.Parallel()

	ids := []string{
		"/providers/Microsoft.Management/managementGroups/root",
		"/providers/Microsoft.Management/managementGroups/child",
		"/subscriptions/" + testSubscriptionID,
		"/subscriptions/" + testSubscriptionID + "/resourceGroups/rg-a",
		"/subscriptions/" + testSubscriptionID + "/resourceGroups/rg-b",
		"/subscriptions/" + testSubscriptionID + "/resourceGroups/rg-a/providers/Microsoft.Network/virtualNetworks/vnet",
		"/subscriptions/" + testSubscriptionID + "/resourceGroups/rg-b/providers/Microsoft.Network/virtualNetworks/vnet",
	}

	seen := make(map[string]string, len(ids))

	for _, id := range ids {
		statePath := scope.MustParse(id).StatePath()

		previous, dup := seen[statePath]
		require.False(t, dup, "scopes %q and %q map to the same state path %q", previous, id, statePath)

		seen[statePath] = id
	}
}
