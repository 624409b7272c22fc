// Package hierarchy caches the tenant's management-group hierarchy for the
// duration of a discovery run.
//
// The tree is built once from the management-group entities API before any
// traversal starts and is treated as read-only afterwards. Concurrent
// traversal branches each receive their own deep-copied snapshot, so no
// branch can observe (or cause) mutation of another branch's view.
package hierarchy

import (
	"context"
	"strings"

	"github.com/scopeworks/azscope/internal/azure/types"
	"github.com/scopeworks/azscope/internal/errors"
	"github.com/scopeworks/azscope/pkg/log"
)

// Entry type discriminators, matching the "type" field returned by the
// entities API.
const (
	EntryTypeManagementGroup = "Microsoft.Management/managementGroups"
	EntryTypeSubscription    = "/subscriptions"
)

// Entry is one node of the cached hierarchy: a management group or a
// subscription.
type Entry struct {
	// ID is the full ARM resource ID of the entity.
	ID string

	// Name is the management group name or the subscription ID.
	Name string

	// DisplayName is the human-readable name.
	DisplayName string

	// Type is one of the EntryType constants.
	Type string

	// ParentName is the name of the parent management group, empty for the
	// hierarchy root.
	ParentName string

	// Raw holds the entity as returned by the provider; it becomes the body
	// of the entry's state record.
	Raw types.RawEntity
}

// IsSubscription reports whether the entry is a subscription.
func (e *Entry) IsSubscription() bool {
	return strings.EqualFold(e.Type, EntryTypeSubscription)
}

// EntityLister lists every management group and subscription visible to the
// caller. Implemented by the azurehelper client.
type EntityLister interface {
	ListEntities(ctx context.Context) ([]*Entry, error)
}

// Tree is the cached management-group hierarchy. Read-only after Build.
type Tree struct {
	entries       map[string]*Entry
	children      map[string][]*Entry
	subscriptions map[string]*Entry
}

// Build fetches the hierarchy once and indexes it by name and by parent.
func Build(ctx context.Context, l log.Logger, lister EntityLister) (*Tree, error) {
	entities, err := lister.ListEntities(ctx)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "building management group hierarchy")
	}

	tree := &Tree{
		entries:       make(map[string]*Entry, len(entities)),
		children:      make(map[string][]*Entry),
		subscriptions: make(map[string]*Entry),
	}

	for _, entity := range entities {
		tree.entries[entity.Name] = entity

		if entity.ParentName != "" {
			tree.children[entity.ParentName] = append(tree.children[entity.ParentName], entity)
		}

		if entity.IsSubscription() {
			tree.subscriptions[entity.Name] = entity
		}
	}

	l.Debugf("Cached hierarchy with %d entities (%d subscriptions)", len(tree.entries), len(tree.subscriptions))

	return tree, nil
}

// Node returns the entry with the given name, or nil if unknown.
func (t *Tree) Node(name string) *Entry {
	return t.entries[name]
}

// ChildrenOf returns the direct children (management groups and
// subscriptions) of the named management group, in provider order.
func (t *Tree) ChildrenOf(name string) []*Entry {
	return t.children[name]
}

// SubscriptionEntry returns the hierarchy entry for the given subscription
// ID, or nil if the subscription is not part of the cached hierarchy.
func (t *Tree) SubscriptionEntry(subscriptionID string) *Entry {
	return t.subscriptions[subscriptionID]
}

// Subscriptions returns all known subscriptions.
func (t *Tree) Subscriptions() []*Entry {
	subs := make([]*Entry, 0, len(t.subscriptions))
	for _, entry := range t.subscriptions {
		subs = append(subs, entry)
	}

	return subs
}

// Snapshot returns a deep copy of the tree. Every concurrent traversal branch
// gets its own snapshot so that shared hierarchy state cannot be corrupted
// across branches.
func (t *Tree) Snapshot() *Tree {
	clone := &Tree{
		entries:       make(map[string]*Entry, len(t.entries)),
		children:      make(map[string][]*Entry, len(t.children)),
		subscriptions: make(map[string]*Entry, len(t.subscriptions)),
	}

	for name, entry := range t.entries {
		clone.entries[name] = entry.clone()
	}

	for parent, kids := range t.children {
		cloned := make([]*Entry, len(kids))
		for i, kid := range kids {
			cloned[i] = clone.entries[kid.Name]
		}

		clone.children[parent] = cloned
	}

	for id := range t.subscriptions {
		clone.subscriptions[id] = clone.entries[id]
	}

	return clone
}

func (e *Entry) clone() *Entry {
	cloned := *e
	cloned.Raw = e.Raw.Clone()

	return &cloned
}
