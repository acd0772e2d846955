// Package hierarchy builds the nested document handed to the external
// tessellator: a root node, one child per continent, one leaf per country.
//
// Continent order is the first-seen order of the input rows, matching the
// insertion-ordered grouping the tessellator's driver script relies on.
// Internal node values are left unset; the tessellator sums leaf values up
// the tree itself.
package hierarchy

import (
	"encoding/json"
	"io"

	"voronoimap/pkg/dataset"
)

// RootName is the name of the synthetic root node. Polygons tagged with it
// are never rendered.
const RootName = "root"

// Node is one node of the hierarchy document.
// Leaves carry a value; internal nodes carry children.
type Node struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value,omitempty"`
	Children []Node  `json:"children,omitempty"`
}

// Build groups rows by continent and returns the two-level hierarchy.
// Grouping key order is the first-seen order of each continent; countries
// keep their input order within a continent.
func Build(rows []dataset.Row) Node {
	root := Node{Name: RootName}
	index := make(map[string]int)

	for _, row := range rows {
		i, ok := index[row.Continent]
		if !ok {
			i = len(root.Children)
			index[row.Continent] = i
			root.Children = append(root.Children, Node{Name: row.Continent})
		}
		root.Children[i].Children = append(root.Children[i].Children, Node{
			Name:  row.Country,
			Value: row.Value,
		})
	}
	return root
}

// Write encodes the hierarchy as JSON to w.
func Write(root Node, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(root)
}

// Marshal returns the hierarchy encoded as JSON.
func Marshal(root Node) ([]byte, error) {
	return json.MarshalIndent(root, "", "  ")
}

// Leaves returns the number of leaf nodes under n.
func (n Node) Leaves() int {
	if len(n.Children) == 0 {
		return 1
	}
	var count int
	for _, c := range n.Children {
		count += c.Leaves()
	}
	return count
}
