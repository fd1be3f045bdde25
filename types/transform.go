package types

// TraverseType rebuilds a type bottom-up. f is called on each type before
// its children; if it returns true, the returned type is used as is.
func TraverseType(ctx *Context, ty Type, f func(Type) (Type, bool)) Type {
	ty, done := f(ty)
	if done {
		return ty
	}

	switch ty := ty.(type) {
	case *DependentMember:
		base := TraverseType(ctx, ty.Base, f)
		if base == ty.Base {
			return ty
		}

		return memberOf(ctx, base, ty)
	case *Nominal:
		args, changed := traverseTypes(ctx, ty.Args, f)
		if !changed {
			return ty
		}

		return ctx.Nominal(ty.Decl, args...)
	case *Function:
		params, changed := traverseTypes(ctx, ty.Params, f)
		result := TraverseType(ctx, ty.Result, f)
		if !changed && result == ty.Result {
			return ty
		}

		return ctx.Function(params, result)
	case *Tuple:
		elements, changed := traverseTypes(ctx, ty.Elements, f)
		if !changed {
			return ty
		}

		return ctx.Tuple(elements...)
	case *Pack:
		elements, changed := traverseTypes(ctx, ty.Elements, f)
		if !changed {
			return ty
		}

		return ctx.Pack(elements...)
	default:
		return ty
	}
}

func traverseTypes(ctx *Context, types []Type, f func(Type) (Type, bool)) ([]Type, bool) {
	changed := false
	result := make([]Type, len(types))
	for i, ty := range types {
		result[i] = TraverseType(ctx, ty, f)
		if result[i] != ty {
			changed = true
		}
	}

	return result, changed
}

// memberOf rebuilds a member access on a substituted base. Concrete bases are
// resolved through their conformance's type witness.
func memberOf(ctx *Context, base Type, member *DependentMember) Type {
	if IsTypeParameter(base) {
		return ctx.Member(base, member.Name, member.Assoc)
	}

	if nominal, ok := base.(*Nominal); ok {
		if member.Assoc != nil {
			if lookup := ctx.LookupConformance(nominal, member.Assoc.Protocol); lookup != nil {
				return lookup.TypeWitness(ctx, member.Name)
			}
		}

		if alias, ok := nominal.Decl.Members[member.Name]; ok {
			lookup := &ConformanceLookup{Conformance: &NormalConformance{Nominal: nominal.Decl}, Args: nominal.Args}
			return lookup.Specialize(ctx, alias)
		}
	}

	return ctx.ErrorType()
}

// WalkType visits a type and its children in pre-order. Returning false from
// f skips the children.
func WalkType(ty Type, f func(Type) bool) {
	if !f(ty) {
		return
	}

	switch ty := ty.(type) {
	case *DependentMember:
		WalkType(ty.Base, f)
	case *Nominal:
		for _, arg := range ty.Args {
			WalkType(arg, f)
		}
	case *Function:
		for _, param := range ty.Params {
			WalkType(param, f)
		}

		WalkType(ty.Result, f)
	case *Tuple:
		for _, element := range ty.Elements {
			WalkType(element, f)
		}
	case *Pack:
		for _, element := range ty.Elements {
			WalkType(element, f)
		}
	}
}

func ContainsTypeParameter(ty Type) bool {
	found := false
	WalkType(ty, func(ty Type) bool {
		if IsTypeParameter(ty) {
			found = true
		}

		return !found
	})

	return found
}

func ContainsArchetype(ty Type) bool {
	found := false
	WalkType(ty, func(ty Type) bool {
		if _, ok := ty.(*Archetype); ok {
			found = true
		}

		return !found
	})

	return found
}

func ContainsError(ty Type) bool {
	found := false
	WalkType(ty, func(ty Type) bool {
		if _, ok := ty.(*ErrorType); ok {
			found = true
		}

		return !found
	})

	return found
}

// SubstParams replaces every generic parameter using f.
func SubstParams(ctx *Context, ty Type, f func(*GenericTypeParam) Type) Type {
	return TraverseType(ctx, ty, func(ty Type) (Type, bool) {
		if param, ok := ty.(*GenericTypeParam); ok {
			return f(param), true
		}

		return ty, false
	})
}

// ReplaceType substitutes one type parameter for another wherever it occurs,
// including as the base of member types.
func ReplaceType(ctx *Context, ty Type, from Type, to Type) Type {
	return TraverseType(ctx, ty, func(ty Type) (Type, bool) {
		if ty == from {
			return to, true
		}

		return ty, false
	})
}
