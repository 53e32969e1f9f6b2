// Package export renders lineage graphs as cytoscape-style documents:
// flat node and edge lists ready for JSON serialization, with optional
// compound nesting of columns under their owning tables.
package export

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/graph"
)

// Level selects which graph a document is built from.
type Level string

const (
	// LevelTable exports the table-level graph.
	LevelTable Level = "table"
	// LevelColumn exports the column-level graph.
	LevelColumn Level = "column"
)

// Node is one cytoscape node. Parent is set only in compound documents,
// nesting a column under its owning table.
type Node struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Parent string `json:"parent,omitempty"`
}

// Edge is one cytoscape edge.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Doc is a complete exportable graph document.
type Doc struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// FromGraph flattens a lineage graph into a document. With compound set,
// table nodes become parents of their columns and containment edges are
// folded into the nesting instead of being emitted; otherwise containment
// edges appear as ordinary typed edges.
func FromGraph(g *graph.Graph, compound bool) *Doc {
	doc := &Doc{Nodes: []Node{}, Edges: []Edge{}}

	parents := make(map[string]string)
	if compound {
		for _, e := range g.Edges() {
			if e.Type == graph.EdgeHasColumn {
				parents[e.Target] = e.Source
			}
		}
	}

	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, Node{
			ID:     n.ID,
			Label:  nodeLabel(n, compound),
			Parent: parents[n.ID],
		})
	}
	for _, e := range g.Edges() {
		if compound && e.Type == graph.EdgeHasColumn {
			continue
		}
		doc.Edges = append(doc.Edges, Edge{Source: e.Source, Target: e.Target, Type: string(e.Type)})
	}

	sort.Slice(doc.Nodes, func(i, j int) bool { return doc.Nodes[i].ID < doc.Nodes[j].ID })
	return doc
}

// nodeLabel renders the display name. Compound column nodes show the bare
// column name since the owning table is visible as the parent container.
func nodeLabel(n *graph.Node, compound bool) string {
	switch v := n.Data.(type) {
	case core.Table:
		return v.String()
	case core.Column:
		if compound && !v.Unbound() {
			return v.Name
		}
		return v.String()
	default:
		return n.ID
	}
}

// WriteJSON serializes the document with indentation.
func (d *Doc) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
