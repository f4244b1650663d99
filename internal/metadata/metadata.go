// Package metadata models the structural metadata tree produced alongside a
// converted asset and correlates it with the meshes of a loaded scene.
package metadata

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// SynthesizedKeyPrefix prefixes the index key of a node that has no name.
const SynthesizedKeyPrefix = "node_"

// AssetNode is one record of the original model hierarchy. Any field may be absent.
type AssetNode struct {
	ID       *int    `json:"id,omitempty"`
	Name     *string `json:"name,omitempty"`
	Mesh     *int    `json:"mesh,omitempty"`
	Children []int   `json:"children,omitempty"`
}

// NameOrEmpty returns the node name, or "" when absent.
func (n AssetNode) NameOrEmpty() string {
	if n.Name == nil {
		return ""
	}
	return *n.Name
}

// Key returns the index key for n: its name when non-empty, else the prefix
// plus its id. ok is false when the node has neither.
func (n AssetNode) Key() (key string, ok bool) {
	if name := n.NameOrEmpty(); name != "" {
		return name, true
	}
	if n.ID != nil {
		return SynthesizedKeyPrefix + strconv.Itoa(*n.ID), true
	}
	return "", false
}

// Tree is the metadata payload attached to an asset record.
type Tree struct {
	Nodes         []AssetNode
	MeshCount     *int
	MaterialCount *int
	Error         string // Set by the producer when extraction failed
}

type treeJSON struct {
	Nodes            []AssetNode `json:"nodes"`
	MeshesCount      *int        `json:"meshes_count,omitempty"`
	MaterialsCount   *int        `json:"materials_count,omitempty"`
	MeshCountAlt     *int        `json:"meshCount,omitempty"`
	MaterialCountAlt *int        `json:"materialCount,omitempty"`
	Error            string      `json:"error,omitempty"`
}

// UnmarshalJSON accepts both the producer's snake_case counters and camelCase.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var raw treeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Nodes = raw.Nodes
	t.MeshCount = firstNonNil(raw.MeshesCount, raw.MeshCountAlt)
	t.MaterialCount = firstNonNil(raw.MaterialsCount, raw.MaterialCountAlt)
	t.Error = raw.Error
	return nil
}

// MarshalJSON writes the producer's field names.
func (t Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(treeJSON{
		Nodes:          t.Nodes,
		MeshesCount:    t.MeshCount,
		MaterialsCount: t.MaterialCount,
		Error:          t.Error,
	})
}

func firstNonNil(vals ...*int) *int {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// Parse decodes a metadata tree. An empty or "null" payload yields a nil tree.
func Parse(data []byte) (*Tree, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing metadata tree: %w", err)
	}
	return &t, nil
}

// Index maps node keys to metadata records. It is read-only once built.
type Index map[string]AssetNode

// BuildIndex indexes every keyable node of t in one pass. A nil tree gives
// an empty index. When two nodes share a key the later one wins.
func BuildIndex(t *Tree) Index {
	if t == nil {
		return Index{}
	}
	idx := make(Index, len(t.Nodes))
	for _, n := range t.Nodes {
		if key, ok := n.Key(); ok {
			idx[key] = n
		}
	}
	return idx
}

// Lookup returns the record stored under key.
func (idx Index) Lookup(key string) (AssetNode, bool) {
	if key == "" {
		return AssetNode{}, false
	}
	n, ok := idx[key]
	return n, ok
}
