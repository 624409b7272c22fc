package hierarchy_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopeworks/azscope/internal/azure/hierarchy"
	"github.com/scopeworks/azscope/internal/azure/types"
	"github.com/scopeworks/azscope/pkg/log"
)

const testSubID = "22222222-2222-2222-2222-222222222222"

type staticLister struct {
	entries []*hierarchy.Entry
}

func (l *staticLister) ListEntities(_ context.Context) ([]*hierarchy.Entry, error) {
	return l.entries, nil
}

func testEntries() []*hierarchy.Entry {
	return []*hierarchy.Entry{
		{
			ID:   "/providers/Microsoft.Management/managementGroups/root",
			Name: "root",
			Type: hierarchy.EntryTypeManagementGroup,
			Raw:  types.RawEntity{"id": "/providers/Microsoft.Management/managementGroups/root", "name": "root"},
		},
		{
			ID:         "/providers/Microsoft.Management/managementGroups/platform",
			Name:       "platform",
			Type:       hierarchy.EntryTypeManagementGroup,
			ParentName: "root",
			Raw:        types.RawEntity{"id": "/providers/Microsoft.Management/managementGroups/platform", "name": "platform"},
		},
		{
			ID:         "/subscriptions/" + testSubID,
			Name:       testSubID,
			Type:       hierarchy.EntryTypeSubscription,
			ParentName: "platform",
			Raw:        types.RawEntity{"id": "/subscriptions/" + testSubID, "displayName": "Platform Sub"},
		},
	}
}

func buildTestTree(t *testing.T) *hierarchy.Tree {
	t.Helper()

	tree, err := hierarchy.Build(context.Background(), log.New(log.WithOutput(io.Discard)), &staticLister{entries: testEntries()})
	require.NoError(t, err)

	return tree
}

func TestBuildIndexesEntries(t *testing.T) {
	t.Parallel()

	tree := buildTestTree(t)

	require.NotNil(t, tree.Node("root"))
	require.NotNil(t, tree.Node("platform"))
	assert.Nil(t, tree.Node("unknown"))

	rootChildren := tree.ChildrenOf("root")
	require.Len(t, rootChildren, 1)
	assert.Equal(t, "platform", rootChildren[0].Name)

	platformChildren := tree.ChildrenOf("platform")
	require.Len(t, platformChildren, 1)
	assert.True(t, platformChildren[0].IsSubscription())

	sub := tree.SubscriptionEntry(testSubID)
	require.NotNil(t, sub)
	assert.Equal(t, "Platform Sub", sub.Raw.StringField("displayName"))

	assert.Len(t, tree.Subscriptions(), 1)
}

// Mutating a snapshot must never leak into the shared tree other branches read.
func TestSnapshotIsIndependent(t *testing.T) {
	t.Parallel()

	tree := buildTestTree(t)
	snapshot := tree.Snapshot()

	snapshot.Node("platform").Raw["name"] = "tampered"
	snapshot.SubscriptionEntry(testSubID).Raw["displayName"] = "tampered"

	assert.Equal(t, "platform", tree.Node("platform").Raw.Name())
	assert.Equal(t, "Platform Sub", tree.SubscriptionEntry(testSubID).Raw.StringField("displayName"))
}

func TestSnapshotPreservesStructure(t *testing.T) {
	t.Parallel()

	tree := buildTestTree(t)
	snapshot := tree.Snapshot()

	require.Len(t, snapshot.ChildrenOf("root"), 1)
	assert.Equal(t, "platform", snapshot.ChildrenOf("root")[0].Name)

	// Children slices must reference the snapshot's own entries.
	assert.Same(t, snapshot.Node("platform"), snapshot.ChildrenOf("root")[0])
}
