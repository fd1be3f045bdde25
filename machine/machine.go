package machine

import (
	"fmt"
	"slices"

	"gensig/types"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("gensig.machine")

// Limits bound completion so that pathological requirement sets fail instead
// of looping.
type Limits struct {
	MaxSteps int
	MaxDepth int
}

func DefaultLimits() Limits {
	return Limits{
		MaxSteps: 4000,
		MaxDepth: 12,
	}
}

type Conflict struct {
	Requirement types.Requirement
	Message     string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%v: %s", c.Requirement, c.Message)
}

// Machine answers structural queries about a set of requirements over some
// generic parameters. It is built once and then queried; queries may realize
// new member types, which completes the machine again.
type Machine struct {
	Limits   Limits
	Progress bool

	ctx        *types.Context
	params     []*types.GenericTypeParam
	rules      Rules
	classes    []*Class
	terms      map[types.Type]*Class
	roots      []types.Requirement
	seen       map[types.Requirement]struct{}
	shapes     map[*types.GenericTypeParam]*types.GenericTypeParam
	conflicts  []Conflict
	unresolved []types.Requirement
	checks     []types.Requirement
	failed     bool
	exhausted  bool
	steps      int
	budget     int
	running    bool
	built      bool

	version       int
	anchorVersion int
	anchors       map[*Class]types.Type
}

// New builds and completes a machine. The parameters are canonicalized;
// requirements may be written in terms of sugared parameters.
func New(ctx *types.Context, params []*types.GenericTypeParam, requirements []types.Requirement, limits Limits) *Machine {
	m := &Machine{
		Limits:        limits,
		ctx:           ctx,
		terms:         map[types.Type]*Class{},
		seen:          map[types.Requirement]struct{}{},
		shapes:        map[*types.GenericTypeParam]*types.GenericTypeParam{},
		anchorVersion: -1,
	}

	for _, param := range params {
		m.params = append(m.params, param.Canonical().(*types.GenericTypeParam))
	}

	for _, req := range requirements {
		req = req.Canonical()
		if req.Kind == types.RequirementConformance && types.IsTypeParameter(req.Subject) {
			m.roots = append(m.roots, req)
		}

		m.AddRequirement(req)
	}

	m.budget = limits.MaxSteps
	m.complete()
	m.built = true
	m.runChecks()

	log.Debugf("built machine over %d parameters and %d requirements in %d steps", len(params), len(requirements), m.steps)
	if m.failed {
		log.Warningf("completion failed after %d steps", m.steps)
	}

	for _, conflict := range m.conflicts {
		log.Warningf("conflicting requirement: %v", conflict)
	}

	return m
}

func (m *Machine) Context() *types.Context {
	return m.ctx
}

func (m *Machine) Params() []*types.GenericTypeParam {
	return m.params
}

// Failed reports whether completion ran out of budget.
func (m *Machine) Failed() bool {
	return m.failed
}

func (m *Machine) Conflicts() []Conflict {
	return m.conflicts
}

// Unresolved returns the requirements that mention member types which never
// became resolvable.
func (m *Machine) Unresolved() []types.Requirement {
	return m.unresolved
}

// Invalid reports whether any requirement was contradictory or unresolvable.
func (m *Machine) Invalid() bool {
	return len(m.conflicts) > 0 || len(m.unresolved) > 0
}

func (m *Machine) Steps() int {
	return m.steps
}

// AddRequirement queues the rules for one requirement. Requirements whose
// subject is already concrete are checked directly.
func (m *Machine) AddRequirement(req types.Requirement) {
	req = req.Canonical()
	if _, ok := m.seen[req]; ok {
		return
	}

	m.seen[req] = struct{}{}

	switch req.Kind {
	case types.RequirementSameType:
		switch {
		case types.IsTypeParameter(req.Subject) && types.IsTypeParameter(req.Constraint):
			m.rules.Add(&mergeRule{source: req, left: req.Subject, right: req.Constraint})
		case types.IsTypeParameter(req.Subject):
			m.rules.Add(&concreteRule{source: req, subject: req.Subject, concrete: req.Constraint})
		default:
			m.rules.Add(&concreteRule{source: req, subject: req.Constraint, concrete: req.Subject})
		}
	case types.RequirementConformance:
		if !types.IsTypeParameter(req.Subject) {
			m.checks = append(m.checks, req)
			return
		}

		m.rules.Add(&conformanceRule{source: req, subject: req.Subject, protocol: req.Protocol()})
	case types.RequirementSuperclass:
		if !types.IsTypeParameter(req.Subject) {
			m.checks = append(m.checks, req)
			return
		}

		m.rules.Add(&boundRule{source: req, subject: req.Subject, superclass: req.Constraint.(*types.Nominal)})
	case types.RequirementLayout:
		if !types.IsTypeParameter(req.Subject) {
			m.checks = append(m.checks, req)
			return
		}

		m.rules.Add(&boundRule{source: req, subject: req.Subject, layout: req.Layout})
	case types.RequirementSameShape:
		left, leftOk := req.Subject.(*types.GenericTypeParam)
		right, rightOk := req.Constraint.(*types.GenericTypeParam)
		if !leftOk || !rightOk {
			m.conflict(req, "same-shape requirements relate parameter packs")
			return
		}

		m.rules.Add(&shapeRule{source: req, left: left, right: right})
	}
}

// complete runs the queued rules to a fixed point.
func (m *Machine) complete() {
	if m.running {
		return
	}

	m.running = true
	defer func() {
		m.running = false
	}()

	var pending []Rule
	for m.rules.Len() > 0 {
		m.Progress = false
		pending = append(pending, m.rules.Run(m)...)

		if m.exhausted {
			m.rules.Clear()
			if !m.built {
				m.failed = true
			}

			return
		}

		if !m.Progress {
			break
		}

		// Give the rules that could not run another chance
		m.rules.Add(pending...)
		pending = nil
	}

	for _, rule := range pending {
		req := rule.Requirement()
		if !slices.ContainsFunc(m.unresolved, req.Equal) {
			m.unresolved = append(m.unresolved, req)
			log.Warningf("cannot resolve %v", req)
		}
	}
}

func (m *Machine) step() bool {
	if m.exhausted {
		return false
	}

	m.steps++
	if m.Limits.MaxSteps > 0 && m.steps > m.budget {
		m.exhausted = true
		return false
	}

	return true
}

// query completes the machine after a query realized new terms, with a
// fresh step budget.
func (m *Machine) query() {
	if m.rules.Len() == 0 {
		return
	}

	m.exhausted = false
	m.budget = m.steps + m.Limits.MaxSteps
	m.complete()
	m.runChecks()
}

// runChecks verifies the queued requirements on concrete types once the
// machine is complete.
func (m *Machine) runChecks() {
	for len(m.checks) > 0 {
		req := m.checks[0]
		m.checks = m.checks[1:]

		if !m.concreteSatisfies(req) {
			m.conflict(req, "%v is not satisfied", req)
		}
	}
}

func (m *Machine) touch() {
	m.Progress = true
	m.version++
}

func (m *Machine) conflict(req types.Requirement, format string, args ...any) {
	conflict := Conflict{Requirement: req, Message: fmt.Sprintf(format, args...)}
	if !slices.Contains(m.conflicts, conflict) {
		m.conflicts = append(m.conflicts, conflict)
	}
}

func (m *Machine) hasParam(param *types.GenericTypeParam) bool {
	return slices.Contains(m.params, param.Canonical().(*types.GenericTypeParam))
}

// lookup finds or realizes the class of a type parameter. It returns false
// if the term does not name anything yet.
func (m *Machine) lookup(t types.Type) (*Class, bool) {
	t = t.Canonical()
	if class, ok := m.terms[t]; ok {
		return class.find(), true
	}

	switch t := t.(type) {
	case *types.GenericTypeParam:
		if !slices.Contains(m.params, t) {
			return nil, false
		}

		class := m.newClass(t)
		return class, true
	case *types.DependentMember:
		base, ok := m.lookup(t.Base)
		if !ok {
			return nil, false
		}

		if t.Assoc != nil && !base.conformsTo(t.Assoc.Protocol) {
			// A concrete type or superclass may provide the conformance
			if m.conformanceSource(base, t.Assoc.Protocol) == nil {
				return nil, false
			}

			m.addProtocol(base, t.Assoc.Protocol)
			base = base.find()
		}

		nested, ok := m.nested(base, t.Name)
		if !ok {
			return nil, false
		}

		m.terms[t] = nested
		return nested, true
	default:
		panic(fmt.Sprintf("%v is not a type parameter", t))
	}
}

func (m *Machine) newClass(members ...types.Type) *Class {
	class := newClass(len(m.classes), members...)
	m.classes = append(m.classes, class)
	for _, member := range members {
		m.terms[member] = class
	}

	m.touch()
	return class
}

// nested finds or realizes the member type `name` of a class.
func (m *Machine) nested(class *Class, name string) (*Class, bool) {
	class = class.find()
	if nested, ok := class.Nested[name]; ok {
		return nested.find(), true
	}

	assoc := class.associatedType(name)
	if assoc == nil {
		return nil, false
	}

	base := class.term()
	if types.MemberDepth(base)+1 > m.Limits.MaxDepth && m.Limits.MaxDepth > 0 {
		if !m.built {
			m.failed = true
			m.exhausted = true
		}

		return nil, false
	}

	nested := m.newClass(m.ctx.Member(base, name, assoc))
	class.Nested[name] = nested
	m.applyNested(class, name)

	return nested.find(), true
}

// applyNested queues the requirements the class's protocols place on its
// member type `name`, along with any type witnesses.
func (m *Machine) applyNested(class *Class, name string) {
	for _, proto := range class.Protocols {
		m.applyProtocolTo(class, proto, name)
	}
}

func (m *Machine) applyProtocolTo(class *Class, proto *types.ProtocolDecl, name string) {
	self := class.term()
	for _, req := range proto.Requirements {
		if req.Kind == types.RequirementSameType {
			continue
		}

		if member, ok := req.Subject.(*types.DependentMember); ok && member.Name == name {
			if _, ok := member.Base.(*types.GenericTypeParam); ok {
				m.AddRequirement(substSelf(m.ctx, req, self))
			}
		}
	}

	if proto.OwnAssociatedType(name) != nil {
		if lookup := m.conformanceSource(class, proto); lookup != nil {
			nested := m.ctx.Member(self, name, proto.OwnAssociatedType(name))
			witness := lookup.TypeWitness(m.ctx, name).Canonical()
			m.AddRequirement(types.SameTypeRequirement(nested, witness))
		}
	}
}

// addProtocol adds a protocol and everything it inherits to a class.
func (m *Machine) addProtocol(class *Class, proto *types.ProtocolDecl) {
	for _, p := range proto.AllInherited() {
		class = class.find()
		if class.conformsTo(p) {
			continue
		}

		class.Protocols = append(class.Protocols, p)
		slices.SortFunc(class.Protocols, types.CompareProtocols)
		m.touch()

		if p.ClassBound {
			m.addLayout(class, types.LayoutClass)
		}

		if class.Concrete != nil {
			m.checkConcreteConformance(class, p)
		}

		self := class.term()
		for _, req := range p.Requirements {
			if member, ok := req.Subject.(*types.DependentMember); ok && req.Kind != types.RequirementSameType {
				if _, ok := member.Base.(*types.GenericTypeParam); ok {
					// Applied when the member type is realized
					if _, exists := class.Nested[member.Name]; !exists {
						continue
					}
				}
			}

			m.AddRequirement(substSelf(m.ctx, req, self))
		}

		for _, name := range class.NestedNames() {
			if p.OwnAssociatedType(name) != nil {
				if lookup := m.conformanceSource(class, p); lookup != nil {
					nested := m.ctx.Member(self, name, p.OwnAssociatedType(name))
					m.AddRequirement(types.SameTypeRequirement(nested, lookup.TypeWitness(m.ctx, name).Canonical()))
				}
			}
		}
	}
}

// conformanceSource returns the concrete conformance that provides a
// protocol's witnesses for a class, from its concrete type or superclass.
func (m *Machine) conformanceSource(class *Class, proto *types.ProtocolDecl) *types.ConformanceLookup {
	if class.Concrete != nil {
		return m.ctx.LookupConformance(class.Concrete, proto)
	}

	if class.Superclass != nil {
		return m.ctx.LookupConformance(class.Superclass, proto)
	}

	return nil
}

func (m *Machine) checkConcreteConformance(class *Class, proto *types.ProtocolDecl) {
	if _, ok := class.Concrete.(*types.ErrorType); ok {
		return
	}

	lookup := m.ctx.LookupConformance(class.Concrete, proto)
	if lookup == nil {
		class.Invalid = true
		m.conflict(types.ConformanceRequirement(m.ctx, class.term(), proto), "%v does not conform to %v", class.Concrete, proto)
		return
	}

	for _, req := range lookup.ConditionalRequirements(m.ctx) {
		m.AddRequirement(req)
	}
}

func (m *Machine) addSuperclass(class *Class, superclass *types.Nominal) {
	class = class.find()
	superclass = superclass.Canonical().(*types.Nominal)

	switch {
	case class.Superclass == nil:
	case class.Superclass == superclass:
		return
	case m.ctx.IsSubclass(class.Superclass, superclass):
		return
	case m.ctx.ClassAncestor(class.Superclass, superclass.Decl) != nil:
		m.unify(m.ctx.ClassAncestor(class.Superclass, superclass.Decl), superclass)
		return
	case m.ctx.ClassAncestor(superclass, class.Superclass.Decl) != nil:
		m.unify(m.ctx.ClassAncestor(superclass, class.Superclass.Decl), class.Superclass)
	default:
		class.Invalid = true
		m.conflict(types.SuperclassRequirement(class.term(), superclass), "%v and %v are unrelated classes", class.Superclass, superclass)
		return
	}

	class.Superclass = superclass
	m.touch()

	if class.Layout == types.LayoutTrivial {
		class.Invalid = true
		m.conflict(types.SuperclassRequirement(class.term(), superclass), "a class cannot be trivial")
	}

	if class.Concrete != nil {
		m.checkConcreteBounds(class)
	}

	// Conformances of the superclass hold for the subject too
	for ancestor := superclass; ancestor != nil; ancestor = m.ctx.SuperclassOf(ancestor) {
		for _, conformance := range ancestor.Decl.Conformances {
			m.addProtocol(class, conformance.Protocol)
		}
	}
}

func (m *Machine) addLayout(class *Class, layout types.LayoutConstraint) {
	class = class.find()
	merged, ok := types.MergeLayouts(class.Layout, layout)
	if !ok {
		class.Invalid = true
		m.conflict(types.LayoutRequirement(class.term(), layout), "%v conflicts with %v", layout, class.Layout)
		return
	}

	if merged == types.LayoutTrivial && class.Superclass != nil {
		class.Invalid = true
		m.conflict(types.LayoutRequirement(class.term(), layout), "a class cannot be trivial")
		return
	}

	if merged != class.Layout {
		class.Layout = merged
		m.touch()

		if class.Concrete != nil {
			m.checkConcreteBounds(class)
		}
	}
}

func substSelf(ctx *types.Context, req types.Requirement, self types.Type) types.Requirement {
	return req.Transform(func(ty types.Type) types.Type {
		return types.SubstParams(ctx, ty, func(param *types.GenericTypeParam) types.Type {
			if param.Depth == 0 && param.Index == 0 {
				return self
			}

			return param
		})
	}).Canonical()
}
