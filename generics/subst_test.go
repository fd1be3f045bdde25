package generics_test

import (
	"testing"

	"gensig/generics"
	"gensig/types"
)

func TestSubstitutionMap(t *testing.T) {
	f := newFixture()

	sig, _ := f.ctx.Build(f.params(f.t, f.u), []types.Requirement{
		f.conforms(f.t, f.sequence),
		f.conforms(f.u, f.hashable),
	})

	subs := sig.SubstitutionMap([]types.Type{f.arrayOf(f.stringType), f.intType})
	if len(subs.Conformances) != 2 {
		t.Fatalf("expected a conformance per conformance requirement, got %v", subs.Conformances)
	}

	for _, ref := range subs.Conformances {
		if ref.Kind != generics.ConcreteConformance {
			t.Errorf("expected a concrete conformance, got %v", ref)
		}
	}

	if ty := subs.Subst(f.types.Tuple(f.u, f.member(f.t, "Element"))); ty != f.types.Tuple(f.intType, f.stringType) {
		t.Errorf("unexpected substitution %v", ty)
	}

	iterator := subs.Subst(f.member(f.t, "Iterator"))
	if nominal, ok := iterator.(*types.Nominal); !ok || nominal.Decl.Name != "ArrayIterator" {
		t.Errorf("unexpected iterator %v", iterator)
	}

	ref := subs.LookupConformance(f.member(f.t, "Iterator"), f.iterator)
	if ref.Kind != generics.ConcreteConformance || ref.Type != iterator {
		t.Errorf("unexpected iterator conformance %v", ref)
	}

	if ref := subs.LookupConformance(f.u, f.equatable); ref.Kind != generics.ConcreteConformance {
		t.Errorf("Int conforms to Equatable through Hashable, got %v", ref)
	}
}

func TestForwardingSubstitutionMap(t *testing.T) {
	f := newFixture()

	sig, _ := f.ctx.Build(f.params(f.t), []types.Requirement{f.conforms(f.t, f.sequence)})
	subs := sig.ForwardingSubstitutionMap()

	element := f.types.Member(f.t, "Element", f.element)
	if ty := subs.Subst(element); ty != element {
		t.Errorf("forwarding should be the identity, got %v", ty)
	}

	if ref := subs.LookupConformance(f.t, f.sequence); ref.Kind != generics.AbstractConformance {
		t.Errorf("expected an abstract conformance, got %v", ref)
	}

	if result := sig.CheckGenericArguments(subs); result.Kind != generics.CheckSuccess {
		t.Errorf("a signature satisfies itself, got %v", result)
	}
}

func TestSubstitutionMapPanicsOnArity(t *testing.T) {
	f := newFixture()

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()

	f.ctx.Get(f.params(f.t, f.u), nil).SubstitutionMap([]types.Type{f.intType})
}

func TestCheckGenericArguments(t *testing.T) {
	f := newFixture()

	sig, _ := f.ctx.Build(f.params(f.t, f.u), []types.Requirement{
		f.conforms(f.t, f.sequence),
		f.conforms(f.member(f.t, "Element"), f.equatable),
		types.SameTypeRequirement(f.u, f.member(f.t, "Element")),
	})

	tests := []struct {
		name      string
		arguments []types.Type
		kind      generics.CheckKind
		failed    types.RequirementKind
	}{
		{"success", []types.Type{f.arrayOf(f.intType), f.intType}, generics.CheckSuccess, 0},
		{"missing conformance", []types.Type{f.intType, f.intType}, generics.RequirementFailure, types.RequirementConformance},
		{"element not equatable", []types.Type{f.arrayOf(f.foo), f.foo}, generics.RequirementFailure, types.RequirementConformance},
		{"mismatched element", []types.Type{f.arrayOf(f.intType), f.stringType}, generics.RequirementFailure, types.RequirementSameType},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := sig.CheckGenericArguments(sig.SubstitutionMap(test.arguments))
			if result.Kind != test.kind {
				t.Fatalf("expected %v, got %v", test.kind, result)
			}

			if result.Kind != generics.CheckSuccess && result.Failed.Kind != test.failed {
				t.Errorf("expected a %v failure, got %v", test.failed, result)
			}
		})
	}
}

func TestCheckConditionalConformance(t *testing.T) {
	f := newFixture()

	sig := f.ctx.Get(f.params(f.t), []types.Requirement{f.conforms(f.t, f.equatable)})

	if result := sig.CheckGenericArguments(sig.SubstitutionMap([]types.Type{f.arrayOf(f.intType)})); result.Kind != generics.CheckSuccess {
		t.Errorf("Array<Int> is Equatable, got %v", result)
	}

	result := sig.CheckGenericArguments(sig.SubstitutionMap([]types.Type{f.arrayOf(f.foo)}))
	if result.Kind != generics.RequirementFailure {
		t.Fatalf("Array<Foo> is not Equatable, got %v", result)
	}

	if result.Substituted.Subject != f.arrayOf(f.foo) {
		t.Errorf("unexpected substituted requirement %v", result.Substituted)
	}
}

func TestCheckSuperclassAndLayout(t *testing.T) {
	f := newFixture()

	base := f.base.DeclaredType(f.types)
	derived := f.derived.DeclaredType(f.types)

	sig, _ := f.ctx.Build(f.params(f.t, f.u), []types.Requirement{
		types.SuperclassRequirement(f.t, base),
		types.LayoutRequirement(f.u, types.LayoutClass),
	})

	if result := sig.CheckGenericArguments(sig.SubstitutionMap([]types.Type{derived, base})); result.Kind != generics.CheckSuccess {
		t.Errorf("expected success, got %v", result)
	}

	result := sig.CheckGenericArguments(sig.SubstitutionMap([]types.Type{derived, f.intType}))
	if result.Kind != generics.RequirementFailure || result.Failed.Kind != types.RequirementLayout {
		t.Errorf("Int is not a class, got %v", result)
	}

	result = sig.CheckGenericArguments(sig.SubstitutionMap([]types.Type{f.intType, base}))
	if result.Kind != generics.RequirementFailure || result.Failed.Kind != types.RequirementSuperclass {
		t.Errorf("Int is not a subclass of Base, got %v", result)
	}
}

func TestCheckArchetypeArguments(t *testing.T) {
	f := newFixture()

	caller, _ := f.ctx.Build(f.params(f.t), []types.Requirement{f.conforms(f.t, f.hashable)})
	archetype := caller.GenericEnvironment().MapTypeIntoContext(f.t)

	callee := f.ctx.Get(f.params(f.t), []types.Requirement{f.conforms(f.t, f.equatable)})
	if result := callee.CheckGenericArguments(callee.SubstitutionMap([]types.Type{archetype})); result.Kind != generics.CheckSuccess {
		t.Errorf("a Hashable archetype is Equatable, got %v", result)
	}

	stricter := f.ctx.Get(f.params(f.t), []types.Requirement{f.conforms(f.t, f.sequence)})
	if result := stricter.CheckGenericArguments(stricter.SubstitutionMap([]types.Type{archetype})); result.Kind != generics.RequirementFailure {
		t.Errorf("a Hashable archetype is not a Sequence, got %v", result)
	}
}

func TestCheckErrorArguments(t *testing.T) {
	f := newFixture()

	sig := f.ctx.Get(f.params(f.t), []types.Requirement{f.conforms(f.t, f.equatable)})
	result := sig.CheckGenericArguments(sig.SubstitutionMap([]types.Type{f.types.ErrorType()}))
	if result.Kind != generics.SubstitutionFailure {
		t.Errorf("expected a substitution failure, got %v", result)
	}
}

func TestCheckForwardedArguments(t *testing.T) {
	f := newFixture()

	sig, _ := f.ctx.Build(f.params(f.t, f.u), []types.Requirement{
		f.conforms(f.t, f.sequence),
		types.SameTypeRequirement(f.member(f.t, "Element"), f.u),
	})

	if result := sig.CheckGenericArguments(sig.ForwardingSubstitutionMap()); result.Kind != generics.CheckSuccess {
		t.Errorf("a signature satisfies its own requirements, got %v", result)
	}
}
