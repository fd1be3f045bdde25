package machine

import (
	"slices"

	"gensig/types"
)

// setConcrete binds a class to a concrete type. A second, different binding
// is unified structurally; if that fails the class becomes invalid and is
// bound to the error type.
func (m *Machine) setConcrete(class *Class, concrete types.Type) {
	class = class.find()
	concrete = concrete.Canonical()

	if class.Concrete == nil {
		if m.occursIn(class, concrete) {
			class.Invalid = true
			class.Concrete = m.ctx.ErrorType()
			m.conflict(types.SameTypeRequirement(class.term(), concrete), "%v would contain itself", class.term())
			m.touch()
			return
		}

		class.Concrete = concrete
		m.touch()

		for _, proto := range class.Protocols {
			m.checkConcreteConformance(class, proto)
		}

		m.checkConcreteBounds(class)

		for _, name := range class.NestedNames() {
			m.applyNested(class, name)
		}

		return
	}

	if class.Concrete == concrete {
		return
	}

	if !m.unify(class.Concrete, concrete) {
		class.Invalid = true
		m.conflict(types.SameTypeRequirement(class.term(), concrete), "%v is already bound to %v", class.term(), class.Concrete)
		class.Concrete = m.ctx.ErrorType()
		m.touch()
	}
}

// unify makes two types equal, queueing rules for the type parameters they
// contain. It returns false if their structure differs.
func (m *Machine) unify(left types.Type, right types.Type) bool {
	left, right = left.Canonical(), right.Canonical()
	if left == right {
		return true
	}

	_, leftError := left.(*types.ErrorType)
	_, rightError := right.(*types.ErrorType)
	if leftError || rightError {
		return true
	}

	if types.IsTypeParameter(left) || types.IsTypeParameter(right) {
		m.AddRequirement(types.SameTypeRequirement(left, right))
		return true
	}

	switch left := left.(type) {
	case *types.Nominal:
		right, ok := right.(*types.Nominal)
		if !ok || left.Decl != right.Decl {
			return false
		}

		return m.unifyAll(left.Args, right.Args)
	case *types.Tuple:
		right, ok := right.(*types.Tuple)
		return ok && m.unifyAll(left.Elements, right.Elements)
	case *types.Pack:
		right, ok := right.(*types.Pack)
		return ok && m.unifyAll(left.Elements, right.Elements)
	case *types.Function:
		right, ok := right.(*types.Function)
		return ok && m.unifyAll(append(slices.Clone(left.Params), left.Result), append(slices.Clone(right.Params), right.Result))
	default:
		// Protocols, existentials and archetypes are only equal to themselves
		return false
	}
}

func (m *Machine) unifyAll(left []types.Type, right []types.Type) bool {
	if len(left) != len(right) {
		return false
	}

	ok := true
	for i := range left {
		if !m.unify(left[i], right[i]) {
			ok = false
		}
	}

	return ok
}

func (m *Machine) occursIn(class *Class, ty types.Type) bool {
	found := false
	types.WalkType(ty, func(ty types.Type) bool {
		if found {
			return false
		}

		if types.IsTypeParameter(ty) {
			if other, ok := m.lookup(ty); ok && other.find() == class.find() {
				found = true
			}

			return false
		}

		return true
	})

	return found
}

// checkConcreteBounds checks the superclass and layout of a concrete class
// against its concrete type.
func (m *Machine) checkConcreteBounds(class *Class) {
	concrete := class.Concrete
	if _, ok := concrete.(*types.ErrorType); ok {
		return
	}

	if class.Superclass != nil {
		nominal, ok := concrete.(*types.Nominal)
		var ancestor *types.Nominal
		if ok {
			ancestor = m.ctx.ClassAncestor(nominal, class.Superclass.Decl)
		}

		if ancestor == nil || !m.unify(ancestor, class.Superclass) {
			class.Invalid = true
			m.conflict(types.SuperclassRequirement(class.term(), class.Superclass), "%v is not a subclass of %v", concrete, class.Superclass)
		}
	}

	if class.Layout != types.LayoutNone && !types.SatisfiesLayout(concrete, class.Layout) {
		class.Invalid = true
		m.conflict(types.LayoutRequirement(class.term(), class.Layout), "%v does not satisfy %v", concrete, class.Layout)
	}
}

// concreteSatisfies checks a requirement whose subject is not a type
// parameter, reducing any type parameters inside it first.
func (m *Machine) concreteSatisfies(req types.Requirement) bool {
	subject := m.Reduce(req.Subject)
	if types.IsTypeParameter(subject) {
		return m.IsSatisfied(types.Requirement{Kind: req.Kind, Subject: subject, Constraint: req.Constraint, Layout: req.Layout})
	}

	if _, ok := subject.(*types.ErrorType); ok {
		return true
	}

	switch req.Kind {
	case types.RequirementConformance:
		lookup := m.ctx.LookupConformance(subject, req.Protocol())
		if lookup == nil {
			return false
		}

		for _, conditional := range lookup.ConditionalRequirements(m.ctx) {
			if !m.IsSatisfied(conditional) {
				return false
			}
		}

		return true
	case types.RequirementSuperclass:
		nominal, ok := subject.(*types.Nominal)
		if !ok {
			return false
		}

		superclass := m.Reduce(req.Constraint).(*types.Nominal)
		ancestor := m.ctx.ClassAncestor(nominal, superclass.Decl)
		return ancestor != nil && m.Reduce(ancestor) == superclass
	case types.RequirementLayout:
		return types.SatisfiesLayout(subject, req.Layout)
	default:
		return m.Reduce(req.Constraint) == subject
	}
}
