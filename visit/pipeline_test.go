package visit_test

import (
	"testing"

	"gensig/database"
	"gensig/generics"
	"gensig/machine"
	"gensig/types"
	"gensig/visit"
)

type fakeNode struct {
	ty     types.Type
	layout string
	Facts  *database.Facts
}

func (node *fakeNode) GetFacts() *database.Facts {
	return node.Facts
}

func (node *fakeNode) LayoutName() (string, bool) {
	return node.layout, node.layout != ""
}

func typeNode(ty types.Type) *fakeNode {
	return &fakeNode{ty: ty, Facts: database.NewFacts(database.NullSpan())}
}

func layoutNode(name string) *fakeNode {
	return &fakeNode{layout: name, Facts: database.NewFacts(database.NullSpan())}
}

func resolve(node database.Node) types.Type {
	return node.(*fakeNode).ty
}

type fixture struct {
	ctx      *generics.Context
	types    *types.Context
	hashable *types.ProtocolDecl
	set      *types.NominalDecl
	array    *types.NominalDecl
	intType  *types.Nominal
	t        visit.ParamRepr
}

// newFixture declares `struct Set<Element> where Element: Hashable` and an
// unconstrained `struct Array<Element>`.
func newFixture() *fixture {
	tc := types.NewContext()
	f := &fixture{
		ctx:   generics.NewContext(tc, machine.DefaultLimits()),
		types: tc,
		t:     visit.ParamRepr{Name: "T", Depth: 0, Index: 0},
	}

	f.hashable = tc.DeclareProtocol("Hashable")

	intDecl := tc.DeclareNominal(types.KindStruct, "Int")
	tc.AddConformance(intDecl, f.hashable, nil)
	f.intType = intDecl.DeclaredType(tc)

	f.set = tc.DeclareNominal(types.KindStruct, "Set", "Element")
	f.set.Requirements = []types.Requirement{
		types.ConformanceRequirement(tc, tc.GenericParam(0, 0, false, ""), f.hashable),
	}

	f.array = tc.DeclareNominal(types.KindStruct, "Array", "Element")

	return f
}

func (f *fixture) param() *types.GenericTypeParam {
	return f.t.Param(f.types)
}

func TestBuildSignatureInfersFromFunctionTypes(t *testing.T) {
	f := newFixture()

	// func f<T>(_: Array<Set<T>>)
	source := typeNode(f.types.Nominal(f.array, f.types.Nominal(f.set, f.param())))

	result := visit.BuildSignature(f.ctx, visit.Request{
		Params:  []visit.ParamRepr{f.t},
		Sources: []database.Node{source},
		Kind:    visit.DeclFunction,
		Resolve: resolve,
	})

	if result.Errors != 0 {
		t.Fatalf("unexpected errors %v", result.Errors)
	}

	if !result.Signature.RequiresProtocol(f.param(), f.hashable) {
		t.Errorf("expected T: Hashable to be inferred, got %v", result.Signature)
	}
}

func TestBuildSignatureTypesDoNotInfer(t *testing.T) {
	f := newFixture()

	result := visit.BuildSignature(f.ctx, visit.Request{
		Params:  []visit.ParamRepr{f.t},
		Sources: []database.Node{typeNode(f.types.Nominal(f.set, f.param()))},
		Kind:    visit.DeclType,
		Resolve: resolve,
	})

	if result.Signature.RequiresProtocol(f.param(), f.hashable) {
		t.Errorf("type declarations should not infer requirements, got %v", result.Signature)
	}
}

func TestExtensionInferenceIsShallow(t *testing.T) {
	f := newFixture()
	strategy := visit.StrategyFor(visit.DeclExtension)

	if reqs := strategy.Infer(f.types, f.types.Nominal(f.set, f.param())); len(reqs) != 1 {
		t.Errorf("expected one requirement from Set<T>, got %v", reqs)
	}

	nested := f.types.Nominal(f.array, f.types.Nominal(f.set, f.param()))
	if reqs := strategy.Infer(f.types, nested); len(reqs) != 0 {
		t.Errorf("expected no requirements from Array<Set<T>>, got %v", reqs)
	}

	if reqs := visit.StrategyFor(visit.DeclFunction).Infer(f.types, nested); len(reqs) != 1 {
		t.Errorf("expected one requirement from Array<Set<T>>, got %v", reqs)
	}
}

func TestInferenceSkipsConcreteArguments(t *testing.T) {
	f := newFixture()

	reqs := visit.StrategyFor(visit.DeclFunction).Infer(f.types, f.types.Nominal(f.set, f.intType))
	if len(reqs) != 0 {
		t.Errorf("expected no requirements from Set<Int>, got %v", reqs)
	}
}

func TestBuildSignatureInvalidConstraint(t *testing.T) {
	f := newFixture()

	constraint := typeNode(f.intType)
	result := visit.BuildSignature(f.ctx, visit.Request{
		Params: []visit.ParamRepr{f.t},
		Where: []visit.RequirementRepr{{
			Kind:       visit.ReprConstraint,
			Subject:    typeNode(f.param()),
			Constraint: constraint,
			Node:       constraint,
		}},
		Kind:    visit.DeclFunction,
		Resolve: resolve,
	})

	if !result.Errors.Has(generics.HasInvalidRequirements) {
		t.Fatalf("expected HasInvalidRequirements, got %v", result.Errors)
	}

	if len(result.Invalid) != 1 || result.Invalid[0].Node != constraint {
		t.Fatalf("unexpected invalid requirements %v", result.Invalid)
	}

	fact, ok := database.GetFact[visit.InvalidRequirementFact](constraint)
	if !ok || fact.Reason != "Int is not a protocol or class" {
		t.Errorf("unexpected fact %v", fact)
	}

	if len(result.Signature.Requirements()) != 0 {
		t.Errorf("invalid requirements should be dropped, got %v", result.Signature)
	}
}

func TestBuildSignatureSwapsSameType(t *testing.T) {
	f := newFixture()

	// where Int == T
	result := visit.BuildSignature(f.ctx, visit.Request{
		Params: []visit.ParamRepr{f.t},
		Where: []visit.RequirementRepr{{
			Kind:       visit.ReprSameType,
			Subject:    typeNode(f.intType),
			Constraint: typeNode(f.param()),
		}},
		Kind:    visit.DeclFunction,
		Resolve: resolve,
	})

	if result.Errors != 0 {
		t.Fatalf("unexpected errors %v", result.Errors)
	}

	if !result.Signature.IsConcreteType(f.param()) {
		t.Errorf("expected T to be concrete, got %v", result.Signature)
	}
}

func TestBuildSignatureLayout(t *testing.T) {
	f := newFixture()

	// <T: AnyObject>
	param := f.t
	param.Inherited = []database.Node{layoutNode("AnyObject")}

	result := visit.BuildSignature(f.ctx, visit.Request{
		Params:  []visit.ParamRepr{param},
		Kind:    visit.DeclFunction,
		Resolve: resolve,
	})

	if !result.Signature.RequiresClass(f.param()) {
		t.Errorf("expected T to be class-constrained, got %v", result.Signature)
	}
}

func TestBuildSignatureOutOfOrderParams(t *testing.T) {
	f := newFixture()

	node := typeNode(nil)
	result := visit.BuildSignature(f.ctx, visit.Request{
		Params: []visit.ParamRepr{
			{Depth: 0, Index: 1},
			{Depth: 0, Index: 0, Node: node},
		},
		Kind:    visit.DeclSignature,
		Resolve: resolve,
	})

	if !result.Errors.Has(generics.HasInvalidRequirements) {
		t.Fatalf("expected HasInvalidRequirements, got %v", result.Errors)
	}

	if len(result.Signature.Params()) != 1 {
		t.Errorf("expected the out-of-order parameter to be dropped, got %v", result.Signature)
	}

	if _, ok := database.GetFact[visit.InvalidRequirementFact](node); !ok {
		t.Error("expected an InvalidRequirementFact on the parameter")
	}
}

func TestBuildSignatureSharesOuter(t *testing.T) {
	f := newFixture()

	outer := visit.BuildSignature(f.ctx, visit.Request{
		Params:  []visit.ParamRepr{f.t},
		Kind:    visit.DeclType,
		Resolve: resolve,
	}).Signature

	result := visit.BuildSignature(f.ctx, visit.Request{
		Outer:   outer,
		Kind:    visit.DeclFunction,
		Resolve: resolve,
	})

	if result.Signature != outer {
		t.Errorf("expected the outer signature, got %v", result.Signature)
	}

	if empty := visit.BuildSignature(f.ctx, visit.Request{Kind: visit.DeclFunction}); !empty.Signature.IsEmpty() {
		t.Errorf("expected the empty signature, got %v", empty.Signature)
	}
}
