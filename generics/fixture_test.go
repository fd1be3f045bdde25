package generics_test

import (
	"gensig/generics"
	"gensig/machine"
	"gensig/types"
)

type fixture struct {
	ctx                                     *generics.Context
	types                                   *types.Context
	t, u, v                                 *types.GenericTypeParam
	equatable, hashable, sequence, iterator *types.ProtocolDecl
	element                                 *types.AssociatedTypeDecl
	intType, stringType, foo                *types.Nominal
	array                                   *types.NominalDecl
	base, derived                           *types.NominalDecl
}

// newFixture declares a small standard library:
//
//	protocol Equatable
//	protocol Hashable: Equatable
//	protocol IteratorProtocol { associatedtype Element }
//	protocol Sequence {
//	    associatedtype Element
//	    associatedtype Iterator: IteratorProtocol where Iterator.Element == Element
//	}
//	struct Int: Hashable; struct String: Hashable; struct Foo
//	struct Array<Element>: Sequence; extension Array: Equatable where Element: Equatable
//	class Base: Equatable; class Derived: Base
func newFixture() *fixture {
	tc := types.NewContext()
	f := &fixture{
		ctx:   generics.NewContext(tc, machine.DefaultLimits()),
		types: tc,
		t:     tc.GenericParam(0, 0, false, "T"),
		u:     tc.GenericParam(0, 1, false, "U"),
		v:     tc.GenericParam(0, 2, false, "V"),
	}

	self := tc.SelfParam()

	f.equatable = tc.DeclareProtocol("Equatable")
	f.hashable = tc.DeclareProtocol("Hashable")
	f.hashable.Inherited = []*types.ProtocolDecl{f.equatable}

	f.iterator = tc.DeclareProtocol("IteratorProtocol")
	iteratorElement := tc.AddAssociatedType(f.iterator, "Element")

	f.sequence = tc.DeclareProtocol("Sequence")
	f.element = tc.AddAssociatedType(f.sequence, "Element")
	iterator := tc.AddAssociatedType(f.sequence, "Iterator")
	f.sequence.Requirements = []types.Requirement{
		types.ConformanceRequirement(tc, tc.Member(self, "Iterator", iterator), f.iterator),
		types.SameTypeRequirement(
			tc.Member(tc.Member(self, "Iterator", iterator), "Element", iteratorElement),
			tc.Member(self, "Element", f.element),
		),
	}

	intDecl := tc.DeclareNominal(types.KindStruct, "Int")
	tc.AddConformance(intDecl, f.hashable, nil)
	f.intType = intDecl.DeclaredType(tc)

	stringDecl := tc.DeclareNominal(types.KindStruct, "String")
	tc.AddConformance(stringDecl, f.hashable, nil)
	f.stringType = stringDecl.DeclaredType(tc)

	f.foo = tc.DeclareNominal(types.KindStruct, "Foo").DeclaredType(tc)

	iteratorDecl := tc.DeclareNominal(types.KindStruct, "ArrayIterator", "Element")
	tc.AddConformance(iteratorDecl, f.iterator, nil)

	f.array = tc.DeclareNominal(types.KindStruct, "Array", "Element")
	sequenceConformance := tc.AddConformance(f.array, f.sequence, nil)
	sequenceConformance.TypeWitnesses["Iterator"] = tc.Nominal(iteratorDecl, f.array.Params[0])
	tc.AddConformance(f.array, f.equatable, []types.Requirement{
		types.ConformanceRequirement(tc, f.array.Params[0], f.equatable),
	})

	f.base = tc.DeclareNominal(types.KindClass, "Base")
	tc.AddConformance(f.base, f.equatable, nil)

	f.derived = tc.DeclareNominal(types.KindClass, "Derived")
	f.derived.Superclass = f.base.DeclaredType(tc)

	return f
}

func (f *fixture) arrayOf(element types.Type) *types.Nominal {
	return f.types.Nominal(f.array, element)
}

func (f *fixture) member(base types.Type, name string) *types.DependentMember {
	return f.types.Member(base, name, nil)
}

func (f *fixture) conforms(subject types.Type, proto *types.ProtocolDecl) types.Requirement {
	return types.ConformanceRequirement(f.types, subject, proto)
}

func (f *fixture) params(params ...*types.GenericTypeParam) []*types.GenericTypeParam {
	return params
}
