package machine

import (
	"fmt"
	"slices"

	"gensig/types"
)

func requireTypeParameter(t types.Type) {
	if !types.IsTypeParameter(t) {
		panic(fmt.Sprintf("%v is not a type parameter", t))
	}
}

// classOf resolves a type parameter and completes the machine.
func (m *Machine) classOf(t types.Type) (*Class, bool) {
	class, ok := m.lookup(t)
	if !ok {
		return nil, false
	}

	m.query()
	return class.find(), true
}

// Classes returns the current equivalence classes ordered by reduced type.
func (m *Machine) Classes() []*Class {
	m.computeAnchors()

	var roots []*Class
	for _, class := range m.classes {
		if class.parent == nil {
			roots = append(roots, class)
		}
	}

	slices.SortFunc(roots, func(left, right *Class) int {
		return types.CompareTypeParameters(m.anchors[left], m.anchors[right])
	})

	return roots
}

// Anchor is the reduced type parameter of a class, ignoring any concrete
// binding.
func (m *Machine) Anchor(class *Class) types.Type {
	m.computeAnchors()
	return m.anchors[class.find()]
}

// computeAnchors finds the shortlex-minimal spelling of every class: one of
// its parameters, or a parent's anchor followed by a member name.
func (m *Machine) computeAnchors() {
	if m.anchorVersion == m.version {
		return
	}

	anchors := map[*Class]types.Type{}
	update := func(class *Class, term types.Type) bool {
		if current, ok := anchors[class]; ok && types.CompareTypeParameters(term, current) >= 0 {
			return false
		}

		anchors[class] = term
		return true
	}

	for _, class := range m.classes {
		root := class.find()
		for _, member := range class.Members {
			if _, ok := member.(*types.GenericTypeParam); ok {
				update(root, member)
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for _, parent := range m.classes {
			if parent.parent != nil || parent.Concrete != nil {
				continue
			}

			anchor, ok := anchors[parent]
			if !ok {
				continue
			}

			for _, name := range parent.NestedNames() {
				term := m.ctx.Member(anchor, name, parent.associatedType(name))
				if update(parent.Nested[name].find(), term) {
					changed = true
				}
			}
		}
	}

	// Classes only reachable through concrete parents keep a realized member
	for _, class := range m.classes {
		if class.parent == nil {
			if _, ok := anchors[class]; !ok {
				anchors[class] = class.term()
			}
		}
	}

	m.anchors = anchors
	m.anchorVersion = m.version
}

// Terms returns the spellings of a class that requirements may mention: its
// parameters and its anchored member types.
func (m *Machine) Terms(class *Class) []types.Type {
	m.computeAnchors()
	class = class.find()

	var terms []types.Type
	for _, member := range class.Members {
		if _, ok := member.(*types.GenericTypeParam); ok && !slices.Contains(terms, member) {
			terms = append(terms, member)
		}
	}

	for _, parent := range m.classes {
		if parent.parent != nil || parent.Concrete != nil {
			continue
		}

		for _, name := range parent.NestedNames() {
			if parent.Nested[name].find() == class {
				var term types.Type = m.ctx.Member(m.anchors[parent], name, parent.associatedType(name))
				if !slices.Contains(terms, term) {
					terms = append(terms, term)
				}
			}
		}
	}

	slices.SortFunc(terms, types.CompareTypeParameters)
	return terms
}

func (m *Machine) Reduce(t types.Type) types.Type {
	return m.reduce(t.Canonical(), nil)
}

func (m *Machine) reduce(t types.Type, stack []*Class) types.Type {
	return types.TraverseType(m.ctx, t, func(t types.Type) (types.Type, bool) {
		if !types.IsTypeParameter(t) {
			return t, false
		}

		return m.reduceTerm(t, stack), true
	})
}

func (m *Machine) reduceTerm(t types.Type, stack []*Class) types.Type {
	class, ok := m.classOf(t)
	if !ok {
		if param, ok := t.(*types.GenericTypeParam); ok && !m.hasParam(param) {
			return t
		}

		return m.ctx.ErrorType()
	}

	if class.Concrete != nil {
		if slices.Contains(stack, class) {
			return m.ctx.ErrorType()
		}

		return m.reduce(class.Concrete, append(stack, class))
	}

	return m.Anchor(class)
}

func (m *Machine) IsReduced(t types.Type) bool {
	return m.Reduce(t) == t
}

func (m *Machine) AreEqual(left types.Type, right types.Type) bool {
	return m.Reduce(left) == m.Reduce(right)
}

func (m *Machine) RequiresProtocol(t types.Type, proto *types.ProtocolDecl) bool {
	requireTypeParameter(t)

	class, ok := m.classOf(t)
	if !ok {
		return false
	}

	if class.Concrete != nil {
		return m.concreteSatisfies(types.ConformanceRequirement(m.ctx, class.Concrete, proto))
	}

	return class.conformsTo(proto)
}

// RequiredProtocols returns the minimal set of protocols a type parameter
// conforms to, in protocol order. Concrete types have none.
func (m *Machine) RequiredProtocols(t types.Type) []*types.ProtocolDecl {
	requireTypeParameter(t)

	class, ok := m.classOf(t)
	if !ok || class.Concrete != nil {
		return nil
	}

	return class.MinimalProtocols()
}

func (m *Machine) SuperclassBound(t types.Type) *types.Nominal {
	requireTypeParameter(t)

	class, ok := m.classOf(t)
	if !ok || class.Concrete != nil || class.Superclass == nil {
		return nil
	}

	superclass, _ := m.Reduce(class.Superclass).(*types.Nominal)
	return superclass
}

func (m *Machine) LayoutConstraint(t types.Type) types.LayoutConstraint {
	requireTypeParameter(t)

	class, ok := m.classOf(t)
	if !ok || class.Concrete != nil {
		return types.LayoutNone
	}

	if class.Superclass != nil {
		if merged, ok := types.MergeLayouts(class.Layout, types.LayoutClass); ok {
			return merged
		}
	}

	return class.Layout
}

func (m *Machine) ConcreteType(t types.Type) types.Type {
	requireTypeParameter(t)

	class, ok := m.classOf(t)
	if !ok || class.Concrete == nil {
		return nil
	}

	return m.reduce(class.Concrete, []*Class{class})
}

// NestedType resolves the associated type a member access on t refers to.
func (m *Machine) NestedType(t types.Type, name string) *types.AssociatedTypeDecl {
	requireTypeParameter(t)

	class, ok := m.classOf(t)
	if !ok {
		return nil
	}

	if assoc := class.associatedType(name); assoc != nil {
		return assoc
	}

	// Concrete types and superclasses provide associated types through their
	// conformances
	var source *types.Nominal
	if nominal, ok := class.Concrete.(*types.Nominal); ok {
		source = nominal
	} else {
		source = class.Superclass
	}

	for ancestor := source; ancestor != nil; ancestor = m.ctx.SuperclassOf(ancestor) {
		for _, conformance := range ancestor.Decl.Conformances {
			if assoc := conformance.Protocol.OwnAssociatedType(name); assoc != nil {
				return assoc
			}
		}
	}

	return nil
}

// IsSatisfied reports whether a requirement follows from this machine.
func (m *Machine) IsSatisfied(req types.Requirement) bool {
	req = req.Canonical()
	if !types.IsTypeParameter(req.Subject) {
		return m.concreteSatisfies(req)
	}

	class, ok := m.classOf(req.Subject)
	if !ok {
		return false
	}

	switch req.Kind {
	case types.RequirementConformance:
		return m.RequiresProtocol(req.Subject, req.Protocol())
	case types.RequirementSuperclass:
		if class.Concrete != nil {
			return m.concreteSatisfies(types.Requirement{Kind: req.Kind, Subject: class.Concrete, Constraint: req.Constraint})
		}

		bound := m.SuperclassBound(req.Subject)
		if bound == nil {
			return false
		}

		superclass, _ := m.Reduce(req.Constraint).(*types.Nominal)
		if superclass == nil {
			return false
		}

		ancestor := m.ctx.ClassAncestor(bound, superclass.Decl)
		return ancestor != nil && m.Reduce(ancestor) == superclass
	case types.RequirementLayout:
		if class.Concrete != nil {
			return m.concreteSatisfies(types.Requirement{Kind: req.Kind, Subject: class.Concrete, Layout: req.Layout})
		}

		return m.LayoutConstraint(req.Subject).Implies(req.Layout)
	case types.RequirementSameType:
		return m.AreEqual(req.Subject, req.Constraint)
	case types.RequirementSameShape:
		left, leftOk := req.Subject.(*types.GenericTypeParam)
		right, rightOk := req.Constraint.(*types.GenericTypeParam)
		return leftOk && rightOk && m.findShape(left) == m.findShape(right)
	default:
		return false
	}
}

func (m *Machine) findShape(param *types.GenericTypeParam) *types.GenericTypeParam {
	for {
		parent, ok := m.shapes[param]
		if !ok || parent == param {
			return param
		}

		param = parent
	}
}

func (m *Machine) unionShapes(left *types.GenericTypeParam, right *types.GenericTypeParam) {
	left, right = m.findShape(left), m.findShape(right)
	if left == right {
		return
	}

	// The smaller parameter is the representative
	if types.CompareParams(right, left) < 0 {
		left, right = right, left
	}

	m.shapes[right] = left
	m.touch()
}

// ShapeClasses returns the pack parameters with a common shape, grouped and
// sorted; singleton groups are omitted.
func (m *Machine) ShapeClasses() [][]*types.GenericTypeParam {
	groups := map[*types.GenericTypeParam][]*types.GenericTypeParam{}
	for _, param := range m.params {
		if !param.IsPack {
			continue
		}

		root := m.findShape(param)
		groups[root] = append(groups[root], param)
	}

	var result [][]*types.GenericTypeParam
	for _, param := range m.params {
		if group := groups[param]; len(group) > 1 {
			slices.SortFunc(group, types.CompareParams)
			result = append(result, group)
		}
	}

	return result
}
