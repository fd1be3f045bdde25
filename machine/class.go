package machine

import (
	"fmt"
	"slices"
	"strings"

	"gensig/types"
)

// Class is an equivalence class of type parameters. Only the root of a
// union-find tree holds up-to-date facts.
type Class struct {
	parent *Class
	id     int

	Members    []types.Type
	Protocols  []*types.ProtocolDecl
	Superclass *types.Nominal
	Layout     types.LayoutConstraint
	Concrete   types.Type
	Nested     map[string]*Class

	// Invalid is set when the class's requirements contradict each other.
	Invalid bool
}

func newClass(id int, members ...types.Type) *Class {
	return &Class{
		id:      id,
		Members: members,
		Nested:  map[string]*Class{},
	}
}

func (c *Class) find() *Class {
	root := c
	for root.parent != nil {
		root = root.parent
	}

	// Path compression
	for c != root {
		next := c.parent
		c.parent = root
		c = next
	}

	return root
}

// term returns the shortest realized member, used to spell rules that apply
// to the whole class.
func (c *Class) term() types.Type {
	best := c.Members[0]
	for _, member := range c.Members[1:] {
		if types.CompareTypeParameters(member, best) < 0 {
			best = member
		}
	}

	return best
}

func (c *Class) conformsTo(proto *types.ProtocolDecl) bool {
	return slices.Contains(c.Protocols, proto)
}

// associatedType picks the associated type a member name resolves to among
// the class's protocols.
func (c *Class) associatedType(name string) *types.AssociatedTypeDecl {
	var found *types.AssociatedTypeDecl
	for _, proto := range c.Protocols {
		if assoc := proto.OwnAssociatedType(name); assoc != nil {
			if found == nil || types.CompareAssociatedTypes(assoc, found) < 0 {
				found = assoc
			}
		}
	}

	return found
}

// MinimalProtocols drops every protocol implied by another one in the class.
func (c *Class) MinimalProtocols() []*types.ProtocolDecl {
	var result []*types.ProtocolDecl
	for _, proto := range c.Protocols {
		if !slices.ContainsFunc(c.Protocols, func(other *types.ProtocolDecl) bool {
			return other != proto && other.Inherits(proto)
		}) {
			result = append(result, proto)
		}
	}

	slices.SortFunc(result, types.CompareProtocols)
	return result
}

func (c *Class) NestedNames() []string {
	names := make([]string, 0, len(c.Nested))
	for name := range c.Nested {
		names = append(names, name)
	}

	slices.Sort(names)
	return names
}

func (c *Class) String() string {
	members := make([]string, len(c.Members))
	for i, member := range c.Members {
		members[i] = member.String()
	}

	protocols := make([]string, len(c.Protocols))
	for i, proto := range c.Protocols {
		protocols[i] = proto.Name
	}

	return fmt.Sprintf("Class{Members: [%s], Protocols: [%s]}", strings.Join(members, ", "), strings.Join(protocols, ", "))
}

// merge unions two classes, then their same-named nested classes.
func (m *Machine) merge(left *Class, right *Class) {
	pending := [][2]*Class{{left, right}}
	for len(pending) > 0 {
		pair := pending[0]
		pending = pending[1:]

		left, right := pair[0].find(), pair[1].find()
		if left == right {
			continue
		}

		// Keep the larger class as the root
		if len(right.Members) > len(left.Members) {
			left, right = right, left
		}

		right.parent = left
		left.Members = append(left.Members, right.Members...)
		m.touch()

		moved := make([]string, 0, len(right.Nested))
		for _, name := range right.NestedNames() {
			nested := right.Nested[name]
			if existing, ok := left.Nested[name]; ok {
				pending = append(pending, [2]*Class{existing, nested})
			} else {
				left.Nested[name] = nested
				moved = append(moved, name)
			}
		}

		right.Nested = nil

		if right.Invalid {
			left.Invalid = true
		}

		if right.Superclass != nil {
			m.addSuperclass(left, right.Superclass)
		}

		if right.Layout != types.LayoutNone {
			m.addLayout(left, right.Layout)
		}

		for _, proto := range right.Protocols {
			m.addProtocol(left, proto)
		}

		if right.Concrete != nil {
			m.setConcrete(left, right.Concrete)
		}

		// Nested classes that came from the right side have not seen the left
		// side's protocols yet
		for _, name := range moved {
			m.applyNested(left.find(), name)
		}
	}
}
