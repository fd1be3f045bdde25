package database

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Graph is a debug view of a requirement machine: one node per equivalence
// class, grouped with its facts, and edges for member types.
type Graph struct {
	Nodes  []GraphNode
	Edges  []Edge
	Groups []*Group
}

type GraphNode struct {
	ID    string
	Label string
}

type Edge struct {
	From  string
	To    string
	Label string
}

type Group struct {
	Nodes  []string
	Labels []string
}

func NewGraph() *Graph {
	return &Graph{
		Nodes:  []GraphNode{},
		Edges:  []Edge{},
		Groups: []*Group{},
	}
}

func (g *Graph) Node(id string, label string) {
	if !g.HasNode(id) {
		g.Nodes = append(g.Nodes, GraphNode{ID: id, Label: label})
	}
}

func (g *Graph) Edge(from string, to string, label string) {
	g.Edges = append(g.Edges, Edge{From: from, To: to, Label: label})
}

func (g *Graph) Group(nodes []string, labels []string) {
	g.Groups = append(g.Groups, &Group{Nodes: nodes, Labels: labels})
}

func (g *Graph) HasNode(id string) bool {
	return slices.ContainsFunc(g.Nodes, func(node GraphNode) bool {
		return node.ID == id
	})
}

func (g *Graph) MarshalJSON() ([]byte, error) {
	type data struct {
		Nodes  []map[string]any `json:"nodes"`
		Groups []map[string]any `json:"groups"`
		Edges  []map[string]any `json:"edges"`
	}

	result := data{
		Nodes:  []map[string]any{},
		Groups: []map[string]any{},
		Edges:  []map[string]any{},
	}

	for _, node := range g.Nodes {
		result.Nodes = append(result.Nodes, map[string]any{
			"id":    node.ID,
			"label": node.Label,
		})
	}

	for _, group := range g.Groups {
		// Only keep groups with known nodes
		nodes := slices.DeleteFunc(slices.Clone(group.Nodes), func(id string) bool {
			return !g.HasNode(id)
		})

		if len(nodes) > 0 {
			result.Groups = append(result.Groups, map[string]any{
				"nodes":  nodes,
				"labels": group.Labels,
			})
		}
	}

	for _, edge := range g.Edges {
		if g.HasNode(edge.From) && g.HasNode(edge.To) {
			result.Edges = append(result.Edges, map[string]any{
				"from":  edge.From,
				"to":    edge.To,
				"label": edge.Label,
			})
		}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(result)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
