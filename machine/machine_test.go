package machine_test

import (
	"bytes"
	"strings"
	"testing"

	"gensig/machine"
	"gensig/types"
)

type world struct {
	ctx                           *types.Context
	t, u                          *types.GenericTypeParam
	equatable, sequence, iterator *types.ProtocolDecl
	intType, stringType           *types.Nominal
}

func newWorld() *world {
	ctx := types.NewContext()
	w := &world{
		ctx: ctx,
		t:   ctx.GenericParam(0, 0, false, "T"),
		u:   ctx.GenericParam(0, 1, false, "U"),
	}

	self := ctx.SelfParam()

	w.equatable = ctx.DeclareProtocol("Equatable")

	w.iterator = ctx.DeclareProtocol("IteratorProtocol")
	iteratorElement := ctx.AddAssociatedType(w.iterator, "Element")

	w.sequence = ctx.DeclareProtocol("Sequence")
	element := ctx.AddAssociatedType(w.sequence, "Element")
	iterator := ctx.AddAssociatedType(w.sequence, "Iterator")
	w.sequence.Requirements = []types.Requirement{
		types.ConformanceRequirement(ctx, ctx.Member(self, "Iterator", iterator), w.iterator),
		types.SameTypeRequirement(
			ctx.Member(ctx.Member(self, "Iterator", iterator), "Element", iteratorElement),
			ctx.Member(self, "Element", element),
		),
	}

	intDecl := ctx.DeclareNominal(types.KindStruct, "Int")
	ctx.AddConformance(intDecl, w.equatable, nil)
	w.intType = intDecl.DeclaredType(ctx)
	w.stringType = ctx.DeclareNominal(types.KindStruct, "String").DeclaredType(ctx)

	return w
}

func (w *world) member(base types.Type, names ...string) types.Type {
	for _, name := range names {
		base = w.ctx.Member(base, name, nil)
	}

	return base
}

func (w *world) machine(reqs ...types.Requirement) *machine.Machine {
	return machine.New(w.ctx, []*types.GenericTypeParam{w.t, w.u}, reqs, machine.DefaultLimits())
}

func TestMergeNestedTypes(t *testing.T) {
	w := newWorld()

	m := w.machine(
		types.ConformanceRequirement(w.ctx, w.t, w.sequence),
		types.ConformanceRequirement(w.ctx, w.u, w.sequence),
		types.SameTypeRequirement(w.t, w.u),
	)

	if m.Invalid() || m.Failed() {
		t.Fatalf("unexpected conflicts %v", m.Conflicts())
	}

	if !m.AreEqual(w.member(w.t, "Element"), w.member(w.u, "Element")) {
		t.Error("merging T and U merges their elements")
	}

	if !m.AreEqual(w.member(w.t, "Iterator", "Element"), w.member(w.u, "Element")) {
		t.Error("the iterator's element is the sequence's element")
	}

	if !m.RequiresProtocol(w.member(w.u, "Iterator"), w.iterator) {
		t.Error("U.Iterator conforms to IteratorProtocol")
	}
}

func TestReduceOrientsTowardsShorterTerms(t *testing.T) {
	w := newWorld()

	m := w.machine(
		types.ConformanceRequirement(w.ctx, w.t, w.sequence),
		types.SameTypeRequirement(w.member(w.t, "Element"), w.u),
	)

	if reduced := m.Reduce(w.member(w.t, "Iterator", "Element")); reduced != w.u.Canonical() {
		t.Errorf("expected %v, got %v", w.u.Canonical(), reduced)
	}

	if reduced := m.Reduce(w.member(w.t, "Iterator")); reduced.String() != "τ_0_0.[Sequence]Iterator" {
		t.Errorf("unexpected reduced type %v", reduced)
	}
}

func TestConcreteBindings(t *testing.T) {
	w := newWorld()

	m := w.machine(
		types.SameTypeRequirement(w.t, w.intType),
		types.SameTypeRequirement(w.u, w.t),
		types.ConformanceRequirement(w.ctx, w.u, w.equatable),
	)

	if m.Invalid() {
		t.Fatalf("unexpected conflicts %v", m.Conflicts())
	}

	if m.ConcreteType(w.u) != w.intType || m.Reduce(w.u) != w.intType {
		t.Error("U is bound to Int through T")
	}

	if !m.RequiresProtocol(w.t, w.equatable) {
		t.Error("Int conforms to Equatable")
	}
}

func TestConflictingBindings(t *testing.T) {
	w := newWorld()

	m := w.machine(
		types.SameTypeRequirement(w.t, w.intType),
		types.SameTypeRequirement(w.t, w.stringType),
	)

	if !m.Invalid() || len(m.Conflicts()) == 0 {
		t.Fatal("Int and String cannot be equal")
	}

	if _, ok := m.ConcreteType(w.t).(*types.ErrorType); !ok {
		t.Errorf("expected the error type, got %v", m.ConcreteType(w.t))
	}
}

func TestMissingConformanceOnConcreteType(t *testing.T) {
	w := newWorld()

	m := w.machine(
		types.SameTypeRequirement(w.t, w.stringType),
		types.ConformanceRequirement(w.ctx, w.t, w.equatable),
	)

	if len(m.Conflicts()) != 1 {
		t.Fatalf("expected one conflict, got %v", m.Conflicts())
	}

	if !strings.Contains(m.Conflicts()[0].Message, "does not conform") {
		t.Errorf("unexpected message %q", m.Conflicts()[0].Message)
	}
}

func TestRecursiveBinding(t *testing.T) {
	w := newWorld()

	m := w.machine(
		types.SameTypeRequirement(w.t, w.ctx.Tuple(w.t, w.intType)),
	)

	if !m.Invalid() {
		t.Fatal("T cannot contain itself")
	}
}

func TestLayoutConflicts(t *testing.T) {
	w := newWorld()

	m := w.machine(
		types.LayoutRequirement(w.t, types.LayoutClass),
		types.LayoutRequirement(w.t, types.LayoutTrivial),
	)

	if !m.Invalid() {
		t.Fatal("a class cannot be trivial")
	}

	ok := w.machine(
		types.LayoutRequirement(w.t, types.LayoutClass),
		types.LayoutRequirement(w.t, types.LayoutNativeClass),
	)

	if ok.Invalid() || ok.LayoutConstraint(w.t) != types.LayoutNativeClass {
		t.Errorf("expected _NativeClass, got %v", ok.LayoutConstraint(w.t))
	}
}

func TestUnresolvedMember(t *testing.T) {
	w := newWorld()

	m := w.machine(
		types.SameTypeRequirement(w.member(w.t, "Element"), w.u),
	)

	if len(m.Unresolved()) != 1 {
		t.Fatalf("expected one unresolved requirement, got %v", m.Unresolved())
	}

	if m.Failed() {
		t.Error("unresolved requirements do not fail completion")
	}
}

func TestStepLimit(t *testing.T) {
	w := newWorld()

	m := machine.New(w.ctx, []*types.GenericTypeParam{w.t, w.u}, []types.Requirement{
		types.ConformanceRequirement(w.ctx, w.t, w.sequence),
		types.ConformanceRequirement(w.ctx, w.u, w.sequence),
		types.SameTypeRequirement(w.member(w.t, "Element"), w.member(w.u, "Element")),
	}, machine.Limits{MaxSteps: 2, MaxDepth: 12})

	if !m.Failed() {
		t.Fatal("expected completion to fail")
	}
}

func TestShapeClasses(t *testing.T) {
	ctx := types.NewContext()
	a := ctx.GenericParam(0, 0, true, "A")
	b := ctx.GenericParam(0, 1, true, "B")
	c := ctx.GenericParam(0, 2, true, "C")

	m := machine.New(ctx, []*types.GenericTypeParam{a, b, c}, []types.Requirement{
		types.SameShapeRequirement(c, a),
	}, machine.DefaultLimits())

	groups := m.ShapeClasses()
	if len(groups) != 1 || len(groups[0]) != 2 {
		t.Fatalf("unexpected shape classes %v", groups)
	}

	if groups[0][0] != a.Canonical() || groups[0][1] != c.Canonical() {
		t.Errorf("unexpected shape class %v", groups[0])
	}

	if !m.IsSatisfied(types.SameShapeRequirement(a, c)) || m.IsSatisfied(types.SameShapeRequirement(a, b)) {
		t.Error("only A and C have the same shape")
	}
}

func TestDumpAndGraph(t *testing.T) {
	w := newWorld()

	m := w.machine(
		types.ConformanceRequirement(w.ctx, w.t, w.sequence),
		types.SameTypeRequirement(w.member(w.t, "Element"), w.u),
	)

	var buf bytes.Buffer
	m.Dump(&buf)

	if !strings.Contains(buf.String(), "τ_0_0 : Sequence [Element, Iterator]") {
		t.Errorf("unexpected dump:\n%s", buf.String())
	}

	graph := m.Graph()
	if len(graph.Nodes) != len(m.Classes()) {
		t.Errorf("expected a node per class, got %d", len(graph.Nodes))
	}

	if len(graph.Edges) == 0 {
		t.Error("expected member edges")
	}
}

func TestRequirementTypeParameterContract(t *testing.T) {
	w := newWorld()
	m := w.machine()

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()

	m.RequiresProtocol(w.intType, w.equatable)
}

func TestTermsIncludeMemberSpellings(t *testing.T) {
	w := newWorld()

	m := w.machine(
		types.ConformanceRequirement(w.ctx, w.t, w.sequence),
		types.SameTypeRequirement(w.member(w.t, "Element"), w.u),
	)

	for _, class := range m.Classes() {
		terms := m.Terms(class)
		if len(terms) == 0 || terms[0] != types.Type(w.u.Canonical()) {
			continue
		}

		for _, term := range terms[1:] {
			if _, ok := term.(*types.DependentMember); ok {
				return
			}
		}

		t.Fatalf("expected a member spelling of U, got %v", terms)
	}

	t.Fatal("no class is spelled as U")
}
