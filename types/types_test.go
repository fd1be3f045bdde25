package types_test

import (
	"slices"
	"testing"

	"gensig/types"
)

func TestInterning(t *testing.T) {
	ctx := types.NewContext()

	if ctx.GenericParam(0, 1, false, "U") != ctx.GenericParam(0, 1, false, "U") {
		t.Fatal("parameters should be interned")
	}

	sugared := ctx.GenericParam(0, 1, false, "U")
	if sugared.Canonical() != ctx.GenericParam(0, 1, false, "") {
		t.Fatal("the canonical parameter has no name")
	}

	if sugared.Canonical().String() != "τ_0_1" {
		t.Errorf("unexpected canonical name %v", sugared.Canonical())
	}

	proto := ctx.DeclareProtocol("Sequence")
	element := ctx.AddAssociatedType(proto, "Element")
	member := ctx.Member(sugared, "Element", element)
	if member.Canonical() != ctx.Member(sugared.Canonical(), "Element", element) {
		t.Error("member types canonicalize their base")
	}

	if member.String() != "U.[Sequence]Element" {
		t.Errorf("unexpected member %v", member)
	}

	if a, b := ctx.Existential(nil, true), ctx.AnyObject(); a != b {
		t.Error("AnyObject is the empty class-bound existential")
	}
}

func TestCompareTypeParameters(t *testing.T) {
	ctx := types.NewContext()

	sequence := ctx.DeclareProtocol("Sequence")
	element := ctx.AddAssociatedType(sequence, "Element")
	iterator := ctx.AddAssociatedType(sequence, "Iterator")

	tp := ctx.GenericParam(0, 0, false, "T")
	up := ctx.GenericParam(0, 1, false, "U")
	inner := ctx.GenericParam(1, 0, false, "V")

	sorted := []types.Type{
		tp,
		up,
		inner,
		ctx.Member(tp, "Element", element),
		ctx.Member(tp, "Element", nil),
		ctx.Member(tp, "Iterator", iterator),
		ctx.Member(up, "Element", element),
		ctx.Member(ctx.Member(tp, "Element", element), "Element", element),
	}

	shuffled := slices.Clone(sorted)
	slices.Reverse(shuffled)
	slices.SortFunc(shuffled, types.CompareTypeParameters)

	for i := range sorted {
		if shuffled[i] != sorted[i] {
			t.Errorf("position %d: expected %v, got %v", i, sorted[i], shuffled[i])
		}
	}
}

func TestCompareRequirements(t *testing.T) {
	ctx := types.NewContext()

	equatable := ctx.DeclareProtocol("Equatable")
	hashable := ctx.DeclareProtocol("Hashable")
	base := ctx.DeclareNominal(types.KindClass, "Base").DeclaredType(ctx)
	intType := ctx.DeclareNominal(types.KindStruct, "Int").DeclaredType(ctx)

	tp := ctx.GenericParam(0, 0, false, "T")
	up := ctx.GenericParam(0, 1, false, "U")

	sorted := []types.Requirement{
		types.SuperclassRequirement(tp, base),
		types.LayoutRequirement(tp, types.LayoutClass),
		types.ConformanceRequirement(ctx, tp, equatable),
		types.ConformanceRequirement(ctx, tp, hashable),
		types.SameTypeRequirement(up, tp),
		types.SameTypeRequirement(up, intType),
	}

	for i := 1; i < len(sorted); i++ {
		if types.CompareRequirements(sorted[i-1], sorted[i]) >= 0 {
			t.Errorf("%v should come before %v", sorted[i-1], sorted[i])
		}

		if types.CompareRequirements(sorted[i], sorted[i-1]) <= 0 {
			t.Errorf("%v should come after %v", sorted[i], sorted[i-1])
		}
	}

	for _, req := range sorted {
		if types.CompareRequirements(req, req) != 0 {
			t.Errorf("%v should equal itself", req)
		}
	}
}

func TestNewRequirementPanics(t *testing.T) {
	ctx := types.NewContext()
	tp := ctx.GenericParam(0, 0, false, "T")
	intType := ctx.DeclareNominal(types.KindStruct, "Int").DeclaredType(ctx)

	for name, build := range map[string]func(){
		"struct superclass": func() { types.NewRequirement(types.RequirementSuperclass, tp, intType, types.LayoutNone) },
		"non-protocol":      func() { types.NewRequirement(types.RequirementConformance, tp, intType, types.LayoutNone) },
		"empty layout":      func() { types.LayoutRequirement(tp, types.LayoutNone) },
		"non-pack shape":    func() { types.SameShapeRequirement(tp, tp) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected a panic")
				}
			}()

			build()
		})
	}
}

func TestRequirementString(t *testing.T) {
	ctx := types.NewContext()

	each := ctx.GenericParam(0, 0, true, "Each")
	other := ctx.GenericParam(0, 1, true, "Other")
	tp := ctx.GenericParam(0, 2, false, "T")

	for expected, req := range map[string]types.Requirement{
		"shape(Other) == shape(Each)": types.SameShapeRequirement(other, each),
		"T: AnyObject":                types.LayoutRequirement(tp, types.LayoutClass),
		"T == any Equatable":          types.SameTypeRequirement(tp, ctx.Existential([]*types.ProtocolDecl{ctx.DeclareProtocol("Equatable")}, false)),
	} {
		if req.String() != expected {
			t.Errorf("expected %s, got %s", expected, req)
		}
	}
}

func TestLayouts(t *testing.T) {
	if merged, ok := types.MergeLayouts(types.LayoutClass, types.LayoutNativeClass); !ok || merged != types.LayoutNativeClass {
		t.Errorf("unexpected merge %v", merged)
	}

	if _, ok := types.MergeLayouts(types.LayoutClass, types.LayoutTrivial); ok {
		t.Error("a class cannot be trivial")
	}

	if layout, ok := types.ParseLayout("AnyObject"); !ok || layout != types.LayoutClass {
		t.Errorf("unexpected layout %v", layout)
	}

	if _, ok := types.ParseLayout("Equatable"); ok {
		t.Error("Equatable is not a layout")
	}
}

func TestConformanceLookup(t *testing.T) {
	ctx := types.NewContext()

	sequence := ctx.DeclareProtocol("Sequence")
	ctx.AddAssociatedType(sequence, "Element")

	equatable := ctx.DeclareProtocol("Equatable")
	intDecl := ctx.DeclareNominal(types.KindStruct, "Int")
	ctx.AddConformance(intDecl, equatable, nil)

	array := ctx.DeclareNominal(types.KindStruct, "Array", "Element")
	ctx.AddConformance(array, sequence, nil)
	ctx.AddConformance(array, equatable, []types.Requirement{
		types.ConformanceRequirement(ctx, array.Params[0], equatable),
	})

	intArray := ctx.Nominal(array, intDecl.DeclaredType(ctx))

	lookup := ctx.LookupConformance(intArray, sequence)
	if lookup == nil {
		t.Fatal("Array conforms to Sequence")
	}

	if witness := lookup.TypeWitness(ctx, "Element"); witness != intDecl.DeclaredType(ctx) {
		t.Errorf("unexpected witness %v", witness)
	}

	conditional := ctx.LookupConformance(intArray, equatable).ConditionalRequirements(ctx)
	if len(conditional) != 1 || conditional[0].Subject != intDecl.DeclaredType(ctx) {
		t.Errorf("unexpected conditional requirements %v", conditional)
	}

	if ctx.LookupConformance(intDecl.DeclaredType(ctx), sequence) != nil {
		t.Error("Int is not a Sequence")
	}
}

func TestSuperclassChain(t *testing.T) {
	ctx := types.NewContext()

	equatable := ctx.DeclareProtocol("Equatable")
	base := ctx.DeclareNominal(types.KindClass, "Base")
	ctx.AddConformance(base, equatable, nil)

	derived := ctx.DeclareNominal(types.KindClass, "Derived")
	derived.Superclass = base.DeclaredType(ctx)

	if !ctx.IsSubclass(derived.DeclaredType(ctx), base.DeclaredType(ctx)) {
		t.Error("Derived is a subclass of Base")
	}

	if ctx.IsSubclass(base.DeclaredType(ctx), derived.DeclaredType(ctx)) {
		t.Error("Base is not a subclass of Derived")
	}

	if ctx.LookupConformance(derived.DeclaredType(ctx), equatable) == nil {
		t.Error("conformances are inherited from the superclass")
	}
}

func TestTraverseResolvesMembers(t *testing.T) {
	ctx := types.NewContext()

	sequence := ctx.DeclareProtocol("Sequence")
	element := ctx.AddAssociatedType(sequence, "Element")

	array := ctx.DeclareNominal(types.KindStruct, "Array", "Element")
	ctx.AddConformance(array, sequence, nil)
	intType := ctx.DeclareNominal(types.KindStruct, "Int").DeclaredType(ctx)

	tp := ctx.GenericParam(0, 0, false, "T")
	ty := ctx.Tuple(ctx.Member(tp, "Element", element), tp)

	result := types.ReplaceType(ctx, ty, tp, ctx.Nominal(array, intType))
	if result != ctx.Tuple(intType, ctx.Nominal(array, intType)) {
		t.Errorf("unexpected result %v", result)
	}

	if !types.ContainsTypeParameter(ty) || types.ContainsTypeParameter(result) {
		t.Error("unexpected type parameters")
	}

	unknown := types.ReplaceType(ctx, ctx.Member(tp, "Missing", nil), tp, intType)
	if !types.ContainsError(unknown) {
		t.Errorf("unresolvable members become the error type, got %v", unknown)
	}
}
