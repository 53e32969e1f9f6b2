// Package graph provides the directed multigraph underlying lineage
// results: nodes keyed by canonical identifier, edges tagged by type,
// and bounded backward traversal for path reconstruction.
package graph

import (
	"fmt"
	"sort"
)

// EdgeType tags the meaning of an edge.
type EdgeType string

const (
	// EdgeLineage is a data-flow edge: target derives from source.
	EdgeLineage EdgeType = "lineage"
	// EdgeHasColumn is a containment edge: table owns column. Not data flow.
	EdgeHasColumn EdgeType = "has_column"
)

// Node is a graph node keyed by canonical identifier.
type Node struct {
	// ID is the canonical identifier string.
	ID string
	// Data holds the entity (core.Table or core.Column).
	Data any
}

// Edge is a typed directed edge between two node IDs.
type Edge struct {
	Source string
	Target string
	Type   EdgeType
}

// Graph is a directed multigraph with typed, deduplicated edges.
type Graph struct {
	nodes map[string]*Node
	seen  map[Edge]struct{}
	out   map[string][]Edge // source -> outgoing edges
	in    map[string][]Edge // target -> incoming edges
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		seen:  make(map[Edge]struct{}),
		out:   make(map[string][]Edge),
		in:    make(map[string][]Edge),
	}
}

// AddNode adds a node to the graph. Adding an existing ID updates its data.
func (g *Graph) AddNode(id string, data any) {
	if n, exists := g.nodes[id]; exists {
		n.Data = data
		return
	}
	g.nodes[id] = &Node{ID: id, Data: data}
}

// AddEdge adds a typed edge. Identical (source, target, type) triples
// collapse to one edge. Both endpoints must already exist.
func (g *Graph) AddEdge(source, target string, typ EdgeType) error {
	if _, exists := g.nodes[source]; !exists {
		return fmt.Errorf("source node %q does not exist", source)
	}
	if _, exists := g.nodes[target]; !exists {
		return fmt.Errorf("target node %q does not exist", target)
	}
	e := Edge{Source: source, Target: target, Type: typ}
	if _, dup := g.seen[e]; dup {
		return nil
	}
	g.seen[e] = struct{}{}
	g.out[source] = append(g.out[source], e)
	g.in[target] = append(g.in[target], e)
	return nil
}

// Node returns a node by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, exists := g.nodes[id]
	return n, exists
}

// Nodes returns all nodes sorted by ID for deterministic output.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// Edges returns all edges sorted by (source, target, type).
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.seen))
	for e := range g.seen {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		if edges[i].Target != edges[j].Target {
			return edges[i].Target < edges[j].Target
		}
		return edges[i].Type < edges[j].Type
	})
	return edges
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.seen)
}

// Parents returns the sources of incoming edges of the given type.
func (g *Graph) Parents(id string, typ EdgeType) []string {
	var parents []string
	for _, e := range g.in[id] {
		if e.Type == typ {
			parents = append(parents, e.Source)
		}
	}
	sort.Strings(parents)
	return parents
}

// Children returns the targets of outgoing edges of the given type.
func (g *Graph) Children(id string, typ EdgeType) []string {
	var children []string
	for _, e := range g.out[id] {
		if e.Type == typ {
			children = append(children, e.Target)
		}
	}
	sort.Strings(children)
	return children
}

// HasParents reports whether the node has any incoming edge of the type.
func (g *Graph) HasParents(id string, typ EdgeType) bool {
	for _, e := range g.in[id] {
		if e.Type == typ {
			return true
		}
	}
	return false
}

// HasChildren reports whether the node has any outgoing edge of the type.
func (g *Graph) HasChildren(id string, typ EdgeType) bool {
	for _, e := range g.out[id] {
		if e.Type == typ {
			return true
		}
	}
	return false
}

// PathsToRoots enumerates every simple path over edges of the given type
// that starts at a root (a node with no incoming edge of the type) and
// ends at id, following edges in reverse from id. Each path is returned
// in forward order, root first. A node revisited within one path
// terminates that branch, so cyclic statements cannot recurse forever.
func (g *Graph) PathsToRoots(id string, typ EdgeType) [][]string {
	var paths [][]string
	visited := map[string]bool{id: true}

	var walk func(current string, suffix []string)
	walk = func(current string, suffix []string) {
		parents := g.Parents(current, typ)
		if len(parents) == 0 {
			// Reached a root; materialize the forward-order path.
			path := make([]string, 0, len(suffix)+1)
			path = append(path, current)
			for i := len(suffix) - 1; i >= 0; i-- {
				path = append(path, suffix[i])
			}
			paths = append(paths, path)
			return
		}
		for _, p := range parents {
			if visited[p] {
				continue
			}
			visited[p] = true
			walk(p, append(suffix, current))
			delete(visited, p)
		}
	}

	walk(id, nil)
	return paths
}
