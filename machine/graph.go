package machine

import (
	"fmt"
	"io"
	"strings"

	"gensig/database"
	"gensig/types"
)

func (m *Machine) classLabels(class *Class) []string {
	var labels []string
	for _, member := range m.Terms(class) {
		labels = append(labels, member.String())
	}

	if class.Concrete != nil {
		labels = append(labels, fmt.Sprintf("== %v", class.Concrete))
	}

	if class.Superclass != nil {
		labels = append(labels, fmt.Sprintf(": %v", class.Superclass))
	}

	if class.Layout != types.LayoutNone {
		labels = append(labels, fmt.Sprintf(": %v", class.Layout))
	}

	for _, proto := range class.MinimalProtocols() {
		labels = append(labels, fmt.Sprintf(": %v", proto))
	}

	if class.Invalid {
		labels = append(labels, "invalid")
	}

	return labels
}

// Graph exports the classes and their nested member edges.
func (m *Machine) Graph() *database.Graph {
	graph := database.NewGraph()

	id := func(class *Class) string {
		return fmt.Sprintf("class%d", class.id)
	}

	for _, class := range m.Classes() {
		graph.Node(id(class), m.Anchor(class).String())
		graph.Group([]string{id(class)}, m.classLabels(class))
	}

	for _, class := range m.Classes() {
		for _, name := range class.NestedNames() {
			graph.Edge(id(class), id(class.Nested[name].find()), name)
		}
	}

	return graph
}

// Dump writes one line per class, for debugging.
func (m *Machine) Dump(w io.Writer) {
	for _, class := range m.Classes() {
		line := strings.Join(m.classLabels(class), " ")
		if names := class.NestedNames(); len(names) > 0 {
			line += fmt.Sprintf(" [%s]", strings.Join(names, ", "))
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			panic(err)
		}
	}

	for _, conflict := range m.conflicts {
		if _, err := fmt.Fprintf(w, "conflict: %v\n", conflict); err != nil {
			panic(err)
		}
	}
}
