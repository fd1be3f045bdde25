package verify_test

import (
	"testing"

	"gensig/generics"
	"gensig/machine"
	"gensig/types"
	"gensig/verify"
)

type fixture struct {
	ctx                 *generics.Context
	types               *types.Context
	t, u                *types.GenericTypeParam
	equatable, hashable *types.ProtocolDecl
	intType             *types.Nominal
}

func newFixture() *fixture {
	tc := types.NewContext()
	f := &fixture{
		ctx:   generics.NewContext(tc, machine.DefaultLimits()),
		types: tc,
		t:     tc.GenericParam(0, 0, false, "T"),
		u:     tc.GenericParam(0, 1, false, "U"),
	}

	f.equatable = tc.DeclareProtocol("Equatable")
	f.hashable = tc.DeclareProtocol("Hashable")
	f.hashable.Inherited = []*types.ProtocolDecl{f.equatable}

	intDecl := tc.DeclareNominal(types.KindStruct, "Int")
	tc.AddConformance(intDecl, f.hashable, nil)
	f.intType = intDecl.DeclaredType(tc)

	return f
}

func (f *fixture) conforms(subject types.Type, proto *types.ProtocolDecl) types.Requirement {
	return types.ConformanceRequirement(f.types, subject, proto)
}

func expectFault(t *testing.T, sig *generics.GenericSignature) *verify.Fault {
	t.Helper()

	fault := verify.Recover(func() {
		verify.Verify(sig)
	})

	if fault == nil {
		t.Fatalf("expected %v to fail verification", sig)
	}

	return fault
}

func TestVerifyBuiltSignatures(t *testing.T) {
	f := newFixture()

	cases := [][]types.Requirement{
		nil,
		{f.conforms(f.t, f.hashable), f.conforms(f.t, f.equatable)},
		{types.SameTypeRequirement(f.t, f.u), f.conforms(f.u, f.equatable)},
		{types.SameTypeRequirement(f.t, f.intType), f.conforms(f.t, f.equatable)},
	}

	for _, requirements := range cases {
		sig, flags := f.ctx.Build([]*types.GenericTypeParam{f.t, f.u}, requirements)
		if flags != 0 {
			t.Fatalf("unexpected flags %v for %v", flags, requirements)
		}

		verify.Verify(sig)

		if diagnostics := verify.ValidateMinimality(sig); len(diagnostics) != 0 {
			t.Errorf("%v: unexpected diagnostics %v", sig, diagnostics)
		}
	}
}

func TestVerifyRedundantConformance(t *testing.T) {
	f := newFixture()

	sig := f.ctx.Get([]*types.GenericTypeParam{f.t}, []types.Requirement{
		f.conforms(f.t, f.equatable),
		f.conforms(f.t, f.hashable),
	})

	expectFault(t, sig)
}

func TestVerifyDuplicateRequirement(t *testing.T) {
	f := newFixture()

	sig := f.ctx.Get([]*types.GenericTypeParam{f.t}, []types.Requirement{
		f.conforms(f.t, f.equatable),
		f.conforms(f.t, f.equatable),
	})

	fault := expectFault(t, sig)
	if fault.Message != "duplicate requirement" {
		t.Errorf("unexpected message %q", fault.Message)
	}
}

func TestVerifyConcreteSubject(t *testing.T) {
	f := newFixture()

	sig := f.ctx.Get([]*types.GenericTypeParam{f.t}, []types.Requirement{
		f.conforms(f.t, f.equatable),
		types.SameTypeRequirement(f.t, f.intType),
	})

	expectFault(t, sig)
}

func TestValidateMinimality(t *testing.T) {
	f := newFixture()

	sig := f.ctx.Get([]*types.GenericTypeParam{f.t}, []types.Requirement{
		f.conforms(f.t, f.equatable),
		f.conforms(f.t, f.hashable),
	})

	diagnostics := verify.ValidateMinimality(sig)
	if len(diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %v", diagnostics)
	}

	if diagnostics[0].Requirement.Protocol() != f.equatable {
		t.Errorf("expected T: Equatable to be redundant, got %v", diagnostics[0].Requirement)
	}
}
