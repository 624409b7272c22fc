// Package types holds wire-level representations of entities returned by the
// Azure Resource Manager APIs.
package types

import (
	"encoding/json"

	"github.com/scopeworks/azscope/internal/errors"
)

// RawEntity is the untyped attribute bag of a single provider-returned object
// (resource group, generic resource, or policy artifact). Entities are kept in
// their original wire representation so the persisted state records reflect
// exactly what the provider returned.
type RawEntity map[string]any

// FromSDK converts an Azure SDK model into a RawEntity via a JSON round trip,
// preserving the wire field names and dropping SDK-only structure.
func FromSDK(v any) (RawEntity, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "marshaling provider entity")
	}

	var entity RawEntity
	if err := json.Unmarshal(data, &entity); err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "unmarshaling provider entity")
	}

	return entity, nil
}

// StringField returns the named top-level attribute as a string, or an empty
// string when the attribute is absent or not a string.
func (e RawEntity) StringField(key string) string {
	if e == nil {
		return ""
	}

	if val, ok := e[key].(string); ok {
		return val
	}

	return ""
}

// ID returns the entity's resource ID attribute.
func (e RawEntity) ID() string {
	return e.StringField("id")
}

// Name returns the entity's name attribute.
func (e RawEntity) Name() string {
	return e.StringField("name")
}

// ManagedBy returns the entity's managedBy attribute.
func (e RawEntity) ManagedBy() string {
	return e.StringField("managedBy")
}

// Clone returns a deep copy of the entity. Used when handing entities to
// concurrent traversal branches.
func (e RawEntity) Clone() RawEntity {
	if e == nil {
		return nil
	}

	clone := make(RawEntity, len(e))
	for k, v := range e {
		clone[k] = cloneValue(v)
	}

	return clone
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		clone := make(map[string]any, len(val))
		for k, inner := range val {
			clone[k] = cloneValue(inner)
		}

		return clone
	case []any:
		clone := make([]any, len(val))
		for i, inner := range val {
			clone[i] = cloneValue(inner)
		}

		return clone
	default:
		return v
	}
}
