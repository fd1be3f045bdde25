package generics_test

import (
	"testing"

	"gensig/generics"
	"gensig/types"
)

func TestEnvironmentCachesArchetypes(t *testing.T) {
	f := newFixture()

	sig, _ := f.ctx.Build(f.params(f.t, f.u), []types.Requirement{
		f.conforms(f.t, f.sequence),
		types.SameTypeRequirement(f.member(f.t, "Element"), f.u),
	})

	env := sig.GenericEnvironment()
	if sig.GenericEnvironment() != env {
		t.Fatal("the primary environment is created once")
	}

	first := env.MapTypeIntoContext(f.t)
	second := env.MapTypeIntoContext(f.t)
	if first != second {
		t.Fatal("mapping the same type twice should give the same archetype")
	}

	archetype, ok := first.(*types.Archetype)
	if !ok || archetype.Kind != types.PrimaryArchetype {
		t.Fatalf("expected a primary archetype, got %v", first)
	}

	// Equivalent type parameters share an archetype
	if env.MapTypeIntoContext(f.member(f.t, "Element")) != env.MapTypeIntoContext(f.u) {
		t.Error("T.Element and U should map to the same archetype")
	}

	iterator := env.MapTypeIntoContext(f.member(f.t, "Iterator"))
	if env.MapTypeOutOfContext(iterator) != sig.ReducedType(f.member(f.t, "Iterator")) {
		t.Errorf("unexpected interface type for %v", iterator)
	}

	array := env.MapTypeIntoContext(f.arrayOf(f.u))
	if array != f.arrayOf(env.MapTypeIntoContext(f.u)) {
		t.Errorf("unexpected contextual type %v", array)
	}
}

func TestEnvironmentMapsConcreteTypes(t *testing.T) {
	f := newFixture()

	sig, _ := f.ctx.Build(f.params(f.t), []types.Requirement{
		types.SameTypeRequirement(f.t, f.arrayOf(f.intType)),
	})

	env := sig.GenericEnvironment()
	if env.MapTypeIntoContext(f.t) != f.arrayOf(f.intType) {
		t.Fatalf("T should map to its concrete type")
	}

	if env.MapTypeIntoContext(f.member(f.t, "Element")) != f.intType {
		t.Errorf("T.Element should map to the type witness")
	}
}

func TestMapLoweredTypeIntoContext(t *testing.T) {
	f := newFixture()

	sig := f.ctx.Get(f.params(f.t), nil)
	env := sig.GenericEnvironment()

	lowered := env.MapLoweredTypeIntoContext(generics.LoweredType{Type: f.t, Address: true})
	if !lowered.Address || lowered.Type != env.MapTypeIntoContext(f.t) {
		t.Fatalf("unexpected lowered type %v", lowered)
	}
}

func TestMapConformanceIntoContext(t *testing.T) {
	f := newFixture()

	sig, _ := f.ctx.Build(f.params(f.t, f.u), []types.Requirement{
		f.conforms(f.t, f.equatable),
		types.SameTypeRequirement(f.u, f.intType),
	})

	env := sig.GenericEnvironment()

	abstract := generics.LookupConformanceRef(f.types, f.t, f.equatable)
	mapped := env.MapConformanceIntoContext(f.t, abstract)
	if mapped.Kind != generics.AbstractConformance {
		t.Errorf("T: Equatable should stay abstract, got %v", mapped)
	}

	if _, ok := mapped.Type.(*types.Archetype); !ok {
		t.Errorf("expected an archetype, got %v", mapped.Type)
	}

	concrete := env.MapConformanceIntoContext(f.u, generics.LookupConformanceRef(f.types, f.u, f.equatable))
	if concrete.Kind != generics.ConcreteConformance || concrete.Type != f.intType {
		t.Errorf("U: Equatable should become concrete, got %v", concrete)
	}
}

func TestOpenedExistentialEnvironment(t *testing.T) {
	f := newFixture()

	outer := f.ctx.Get(f.params(f.t), []types.Requirement{f.conforms(f.t, f.equatable)})
	existential := f.types.Existential([]*types.ProtocolDecl{f.sequence}, false)

	env := f.ctx.OpenedExistentialEnvironment(existential, outer)
	if env.Kind != generics.OpenedExistentialEnvironment || env.ID == "" {
		t.Fatalf("unexpected environment %v", env)
	}

	other := f.ctx.OpenedExistentialEnvironment(existential, outer)
	if other.ID == env.ID {
		t.Error("every opened existential gets its own id")
	}

	self := f.types.GenericParam(1, 0, false, "Self")
	opened, ok := env.MapTypeIntoContext(self).(*types.Archetype)
	if !ok || opened.Kind != types.OpenedArchetype {
		t.Fatalf("expected an opened archetype")
	}

	if !env.Signature.RequiresProtocol(self, f.sequence) {
		t.Error("the opened Self conforms to the existential's protocols")
	}

	// Outer parameters map to the enclosing context's archetypes
	if env.MapTypeIntoContext(f.t) != outer.GenericEnvironment().MapTypeIntoContext(f.t) {
		t.Error("T should map through the outer environment")
	}
}

func TestOpaqueEnvironment(t *testing.T) {
	f := newFixture()

	outer := f.ctx.Get(f.params(f.t), []types.Requirement{f.conforms(f.t, f.sequence)})
	opaque := f.types.GenericParam(1, 0, false, "R")
	sig, _ := f.ctx.Build(f.params(f.t, opaque), []types.Requirement{
		f.conforms(f.t, f.sequence),
		f.conforms(opaque, f.equatable),
	})

	subs := outer.SubstitutionMap([]types.Type{f.arrayOf(f.intType)})
	env := f.ctx.OpaqueEnvironment("makeValue", sig, subs)

	if env.MapTypeIntoContext(f.t) != f.arrayOf(f.intType) {
		t.Error("outer parameters are substituted first")
	}

	result, ok := env.MapTypeIntoContext(opaque).(*types.Archetype)
	if !ok || result.Kind != types.OpaqueArchetype {
		t.Fatalf("expected an opaque archetype")
	}

	if env.MapTypeIntoContext(f.member(f.t, "Element")) != f.intType {
		t.Error("outer member types resolve through the substitution")
	}
}

func TestOpenedElementEnvironment(t *testing.T) {
	f := newFixture()

	each := f.types.GenericParam(0, 0, true, "Each")
	other := f.types.GenericParam(0, 1, true, "Other")
	sig, _ := f.ctx.Build(f.params(each, other), []types.Requirement{
		types.SameShapeRequirement(other, each),
	})

	env := f.ctx.OpenedElementEnvironment(sig, each, sig.ForwardingSubstitutionMap())

	for _, param := range f.params(each, other) {
		element, ok := env.MapTypeIntoContext(param).(*types.Archetype)
		if !ok || element.Kind != types.ElementArchetype {
			t.Errorf("expected an element archetype for %v", param)
		}
	}
}
