package generics

import (
	"fmt"
	"strings"

	"gensig/types"
)

type ConformanceKind int

const (
	InvalidConformance ConformanceKind = iota
	AbstractConformance
	ConcreteConformance
)

// ConformanceRef says how a type conforms to a protocol: abstractly (the
// type is a type parameter or archetype that requires the protocol), through
// a concrete conformance, or not at all.
type ConformanceRef struct {
	Kind     ConformanceKind
	Type     types.Type
	Protocol *types.ProtocolDecl
	Concrete *types.ConformanceLookup
}

func (ref ConformanceRef) IsInvalid() bool {
	return ref.Kind == InvalidConformance
}

func (ref ConformanceRef) String() string {
	switch ref.Kind {
	case AbstractConformance:
		return fmt.Sprintf("abstract(%v: %v)", ref.Type, ref.Protocol)
	case ConcreteConformance:
		return fmt.Sprintf("concrete(%v: %v)", ref.Type, ref.Protocol)
	default:
		return fmt.Sprintf("invalid(%v: %v)", ref.Type, ref.Protocol)
	}
}

// LookupConformanceRef finds the conformance of an arbitrary type.
func LookupConformanceRef(ctx *types.Context, ty types.Type, proto *types.ProtocolDecl) ConformanceRef {
	switch ty := ty.(type) {
	case *types.GenericTypeParam, *types.DependentMember:
		return ConformanceRef{Kind: AbstractConformance, Type: ty, Protocol: proto}
	case *types.Archetype:
		if env, ok := ty.Env.(*GenericEnvironment); ok && env.Signature.RequiresProtocol(ty.Interface, proto) {
			return ConformanceRef{Kind: AbstractConformance, Type: ty, Protocol: proto}
		}
	case *types.ErrorType:
	default:
		if lookup := ctx.LookupConformance(ty, proto); lookup != nil {
			return ConformanceRef{Kind: ConcreteConformance, Type: ty, Protocol: proto, Concrete: lookup}
		}
	}

	return ConformanceRef{Kind: InvalidConformance, Type: ty, Protocol: proto}
}

// TypeWitness is the type the conformance binds an associated type to.
func (ref ConformanceRef) TypeWitness(ctx *types.Context, name string) types.Type {
	switch ref.Kind {
	case ConcreteConformance:
		return ref.Concrete.TypeWitness(ctx, name)
	case AbstractConformance:
		assoc := ref.Protocol.AssociatedType(name)
		if assoc == nil {
			return ctx.ErrorType()
		}

		if archetype, ok := ref.Type.(*types.Archetype); ok {
			return archetype.Env.(*GenericEnvironment).NestedArchetype(archetype, assoc)
		}

		return ctx.Member(ref.Type, name, assoc)
	default:
		return ctx.ErrorType()
	}
}

// AssociatedConformance follows a conformance requirement of the protocol,
// whose subject is written in terms of `Self`.
func (ref ConformanceRef) AssociatedConformance(ctx *types.Context, subject types.Type, proto *types.ProtocolDecl) ConformanceRef {
	if ref.IsInvalid() {
		return ConformanceRef{Kind: InvalidConformance, Type: subject, Protocol: proto}
	}

	ty := types.TraverseType(ctx, subject, func(t types.Type) (types.Type, bool) {
		switch t := t.(type) {
		case *types.GenericTypeParam:
			return ref.Type, true
		case *types.DependentMember:
			if _, ok := t.Base.(*types.GenericTypeParam); ok {
				return ref.TypeWitness(ctx, t.Name), true
			}
		}

		return t, false
	})

	return LookupConformanceRef(ctx, ty, proto)
}

// SubstitutionMap replaces each parameter of a signature, in order, and
// records the conformances that satisfy its conformance requirements.
type SubstitutionMap struct {
	Signature    *GenericSignature
	Replacements []types.Type
	Conformances []ConformanceRef
}

// SubstitutionMap builds a substitution map, looking up the conformance of
// every conformance requirement's substituted subject.
func (sig *GenericSignature) SubstitutionMap(replacements []types.Type) *SubstitutionMap {
	if len(replacements) != len(sig.params) {
		panic(fmt.Sprintf("%v expects %d replacements, got %d", sig, len(sig.params), len(replacements)))
	}

	subs := &SubstitutionMap{
		Signature:    sig,
		Replacements: replacements,
	}

	for _, req := range sig.Canonical().requirements {
		if req.Kind == types.RequirementConformance {
			subs.Conformances = append(subs.Conformances, LookupConformanceRef(sig.ctx.Types, subs.Subst(req.Subject), req.Protocol()))
		}
	}

	return subs
}

func (subs *SubstitutionMap) IsEmpty() bool {
	return len(subs.Replacements) == 0
}

func (subs *SubstitutionMap) replacement(param *types.GenericTypeParam) types.Type {
	for i, p := range subs.Signature.params {
		if types.CompareParams(p, param) == 0 {
			return subs.Replacements[i]
		}
	}

	return param
}

// Subst applies the map to an interface type. Member types of concrete
// replacements are resolved through the signature's conformances.
func (subs *SubstitutionMap) Subst(ty types.Type) types.Type {
	ctx := subs.Signature.ctx.Types
	return types.TraverseType(ctx, ty, func(t types.Type) (types.Type, bool) {
		switch t := t.(type) {
		case *types.GenericTypeParam:
			return subs.replacement(t), true
		case *types.DependentMember:
			return subs.substMember(t), true
		}

		return t, false
	})
}

func (subs *SubstitutionMap) substMember(member *types.DependentMember) types.Type {
	ctx := subs.Signature.ctx.Types
	base := subs.Subst(member.Base)

	assoc := member.Assoc
	if assoc == nil && types.IsTypeParameter(member.Base) {
		assoc = subs.Signature.NestedType(member.Base, member.Name)
	}

	if types.IsTypeParameter(base) {
		return ctx.Member(base, member.Name, assoc)
	}

	if assoc == nil {
		return ctx.ErrorType()
	}

	var ref ConformanceRef
	if types.IsTypeParameter(member.Base) && subs.Signature.RequiresProtocol(member.Base, assoc.Protocol) {
		ref = subs.LookupConformance(member.Base, assoc.Protocol)
	} else {
		ref = LookupConformanceRef(ctx, base, assoc.Protocol)
	}

	return ref.TypeWitness(ctx, member.Name)
}

// LookupConformance finds the conformance of a substituted interface type by
// following its conformance path from one of the signature's conformance
// requirements.
func (subs *SubstitutionMap) LookupConformance(ty types.Type, proto *types.ProtocolDecl) ConformanceRef {
	ctx := subs.Signature.ctx.Types
	path := subs.Signature.ConformancePath(ty, proto)
	if len(path) == 0 {
		return LookupConformanceRef(ctx, subs.Subst(ty), proto)
	}

	ref := subs.rootConformance(path[0].Subject, path[0].Protocol)
	for i := 1; i < len(path); i++ {
		step := path[i]
		if step.Subject == path[i-1].Subject {
			// Inherited protocol
			ref = LookupConformanceRef(ctx, ref.Type, step.Protocol)
		} else {
			ref = LookupConformanceRef(ctx, subs.Subst(step.Subject), step.Protocol)
		}

		if ref.IsInvalid() {
			break
		}
	}

	return ref
}

func (subs *SubstitutionMap) rootConformance(subject types.Type, proto *types.ProtocolDecl) ConformanceRef {
	i := 0
	for _, req := range subs.Signature.Canonical().requirements {
		if req.Kind != types.RequirementConformance {
			continue
		}

		if req.Subject == subject.Canonical() && req.Protocol() == proto && i < len(subs.Conformances) {
			return subs.Conformances[i]
		}

		i++
	}

	return LookupConformanceRef(subs.Signature.ctx.Types, subs.Subst(subject), proto)
}

func (subs *SubstitutionMap) String() string {
	entries := make([]string, len(subs.Replacements))
	for i, replacement := range subs.Replacements {
		entries[i] = fmt.Sprintf("%v := %v", subs.Signature.params[i], replacement)
	}

	return "[" + strings.Join(entries, ", ") + "]"
}
