// Package config holds the endpoint configuration shared by every coin adapter.
//
// Configuration is a tree of Object and Leaf nodes. Defaults are built in code and can be
// overridden at startup or at runtime by merging another tree on top:
//
//	override := config.Object{
//		"eth": config.Object{
//			"networks": config.Object{
//				"mainnet": config.Object{"jsonrpc": config.Leaf{Value: "http://localhost:8545"}},
//			},
//		},
//	}
//	tree := config.Merge(config.Defaults(), override)
//
// Only the overridden leaf changes; sibling networks and keys are kept.
package config

import (
	"fmt"
	"sort"
	"strings"
)

// Node is a value in a configuration tree. It is either an Object or a Leaf.
type Node interface {
	node()
}

// Object is a keyed record of child nodes.
type Object map[string]Node

// Leaf is a scalar (or list) value.
type Leaf struct {
	Value any
}

func (Object) node() {}
func (Leaf) node()   {}

// Merge returns a new tree holding base with override laid on top. When both sides hold an
// Object under the same key the two are merged recursively, otherwise the override value
// replaces the base value. Keys missing from override are never removed. Neither input is
// modified.
func Merge(base, override Object) Object {
	out := base.Clone()
	for key, next := range override {
		if cur, ok := out[key].(Object); ok {
			if obj, ok := next.(Object); ok {
				out[key] = Merge(cur, obj)
				continue
			}
		}
		out[key] = cloneNode(next)
	}
	return out
}

// Clone returns a deep copy of the tree.
func (o Object) Clone() Object {
	out := make(Object, len(o))
	for key, value := range o {
		out[key] = cloneNode(value)
	}
	return out
}

func cloneNode(n Node) Node {
	switch v := n.(type) {
	case Object:
		return v.Clone()
	case Leaf:
		return v
	default:
		return n
	}
}

// Lookup walks the tree along path and returns the node found there.
func (o Object) Lookup(path ...string) (Node, bool) {
	var cur Node = o
	for _, key := range path {
		obj, ok := cur.(Object)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the leaf at path formatted as a string, or "" when there is no leaf there.
func (o Object) String(path ...string) string {
	n, ok := o.Lookup(path...)
	if !ok {
		return ""
	}
	leaf, ok := n.(Leaf)
	if !ok || leaf.Value == nil {
		return ""
	}
	if s, ok := leaf.Value.(string); ok {
		return s
	}
	return fmt.Sprint(leaf.Value)
}

// Keys returns the sorted child keys of the object at path.
func (o Object) Keys(path ...string) []string {
	n, ok := o.Lookup(path...)
	if !ok {
		return nil
	}
	obj, ok := n.(Object)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// FromMap converts decoded JSON/YAML data into a tree. Nested maps become Objects and every
// other value becomes a Leaf.
func FromMap(m map[string]any) Object {
	out := make(Object, len(m))
	for key, value := range m {
		out[key] = fromValue(value)
	}
	return out
}

func fromValue(v any) Node {
	switch t := v.(type) {
	case Node:
		return t
	case map[string]any:
		return FromMap(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for key, value := range t {
			m[fmt.Sprint(key)] = value
		}
		return FromMap(m)
	default:
		return Leaf{Value: v}
	}
}

// ToMap converts the tree back into plain maps.
func (o Object) ToMap() map[string]any {
	out := make(map[string]any, len(o))
	for key, value := range o {
		switch v := value.(type) {
		case Object:
			out[key] = v.ToMap()
		case Leaf:
			out[key] = v.Value
		}
	}
	return out
}

// Set returns a tree holding a single leaf at the dot separated path, ready to be merged.
//
//	config.Set("eth.networks.mainnet.jsonrpc", "http://localhost:8545")
func Set(path string, value any) Object {
	keys := strings.Split(path, ".")
	var n Node = Leaf{Value: value}
	for i := len(keys) - 1; i >= 0; i-- {
		n = Object{keys[i]: n}
	}
	return n.(Object)
}
