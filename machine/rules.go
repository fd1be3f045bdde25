package machine

import (
	"reflect"
	"slices"

	"gensig/types"
)

var ruleOrder = []*[]reflect.Type{
	{reflect.TypeFor[*mergeRule]()},
	{reflect.TypeFor[*concreteRule]()},
	{reflect.TypeFor[*conformanceRule]()},
	{reflect.TypeFor[*boundRule](), reflect.TypeFor[*shapeRule]()},
}

// Rule is one pending step of completion. Run returns false if the rule
// mentions a term that cannot be resolved yet; such rules are requeued.
type Rule interface {
	Run(m *Machine) bool
	Requirement() types.Requirement
}

type Rules struct {
	rules map[*[]reflect.Type][]Rule
}

func (r *Rules) Add(rules ...Rule) {
	if r.rules == nil {
		r.rules = make(map[*[]reflect.Type][]Rule, len(ruleOrder))
	}

	for _, rule := range rules {
		var key *[]reflect.Type
		for _, group := range ruleOrder {
			if slices.Contains(*group, reflect.TypeOf(rule)) {
				key = group
				break
			}
		}

		if key == nil {
			panic("unknown rule type")
		}

		r.rules[key] = append(r.rules[key], rule)
	}
}

// Run dequeues rules in order until the queue is empty, returning the rules
// that could not run.
func (r *Rules) Run(m *Machine) []Rule {
	var requeued []Rule
	for {
		rule, ok := r.dequeue()
		if !ok {
			break
		}

		if !m.step() {
			break
		}

		if rule.Run(m) {
			m.Progress = true
		} else {
			requeued = append(requeued, rule)
		}
	}

	return requeued
}

func (r *Rules) Len() int {
	total := 0
	for _, rules := range r.rules {
		total += len(rules)
	}

	return total
}

func (r *Rules) All() []Rule {
	all := make([]Rule, 0, r.Len())
	for _, key := range ruleOrder {
		all = append(all, r.rules[key]...)
	}

	return all
}

func (r *Rules) Clear() {
	r.rules = nil
}

func (r *Rules) dequeue() (Rule, bool) {
	for _, key := range ruleOrder {
		if rules := r.rules[key]; len(rules) > 0 {
			r.rules[key] = rules[1:]
			return rules[0], true
		}
	}

	return nil, false
}

// mergeRule makes two type parameters equivalent.
type mergeRule struct {
	source      types.Requirement
	left, right types.Type
}

func (rule *mergeRule) Requirement() types.Requirement {
	return rule.source
}

func (rule *mergeRule) Run(m *Machine) bool {
	left, ok := m.lookup(rule.left)
	if !ok {
		return false
	}

	right, ok := m.lookup(rule.right)
	if !ok {
		return false
	}

	m.merge(left, right)
	return true
}

// concreteRule binds a type parameter to a concrete type, or checks that two
// concrete types agree.
type concreteRule struct {
	source   types.Requirement
	subject  types.Type
	concrete types.Type
}

func (rule *concreteRule) Requirement() types.Requirement {
	return rule.source
}

func (rule *concreteRule) Run(m *Machine) bool {
	if !types.IsTypeParameter(rule.subject) {
		if !m.unify(rule.subject, rule.concrete) {
			m.conflict(rule.source, "%v and %v cannot be equal", rule.subject, rule.concrete)
		}

		return true
	}

	class, ok := m.lookup(rule.subject)
	if !ok {
		return false
	}

	m.setConcrete(class, rule.concrete)
	return true
}

type conformanceRule struct {
	source   types.Requirement
	subject  types.Type
	protocol *types.ProtocolDecl
}

func (rule *conformanceRule) Requirement() types.Requirement {
	return rule.source
}

func (rule *conformanceRule) Run(m *Machine) bool {
	class, ok := m.lookup(rule.subject)
	if !ok {
		return false
	}

	m.addProtocol(class, rule.protocol)
	return true
}

// boundRule adds a superclass or layout bound.
type boundRule struct {
	source     types.Requirement
	subject    types.Type
	superclass *types.Nominal
	layout     types.LayoutConstraint
}

func (rule *boundRule) Requirement() types.Requirement {
	return rule.source
}

func (rule *boundRule) Run(m *Machine) bool {
	class, ok := m.lookup(rule.subject)
	if !ok {
		return false
	}

	if rule.superclass != nil {
		m.addSuperclass(class, rule.superclass)
	} else {
		m.addLayout(class, rule.layout)
	}

	return true
}

type shapeRule struct {
	source      types.Requirement
	left, right *types.GenericTypeParam
}

func (rule *shapeRule) Requirement() types.Requirement {
	return rule.source
}

func (rule *shapeRule) Run(m *Machine) bool {
	if !m.hasParam(rule.left) || !m.hasParam(rule.right) {
		m.conflict(rule.source, "%v is not a parameter of this signature", rule.source)
		return true
	}

	m.unionShapes(rule.left, rule.right)
	return true
}
