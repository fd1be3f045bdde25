package types

import (
	"slices"
)

type ProtocolDecl struct {
	Name            string
	Inherited       []*ProtocolDecl
	AssociatedTypes []*AssociatedTypeDecl

	// Requirements is the requirement signature, written in terms of
	// `Self` (depth 0, index 0). Inherited protocols are not repeated here.
	Requirements []Requirement

	ClassBound bool

	order int
	id    uint
}

func (proto *ProtocolDecl) String() string {
	return proto.Name
}

func (proto *ProtocolDecl) Order() int {
	return proto.order
}

func (proto *ProtocolDecl) OwnAssociatedType(name string) *AssociatedTypeDecl {
	for _, assoc := range proto.AssociatedTypes {
		if assoc.Name == name {
			return assoc
		}
	}

	return nil
}

// AssociatedType finds an associated type declared by the protocol or one of
// the protocols it inherits from, preferring the protocol that comes first.
func (proto *ProtocolDecl) AssociatedType(name string) *AssociatedTypeDecl {
	var found *AssociatedTypeDecl
	for _, p := range proto.AllInherited() {
		if assoc := p.OwnAssociatedType(name); assoc != nil {
			if found == nil || CompareAssociatedTypes(assoc, found) < 0 {
				found = assoc
			}
		}
	}

	return found
}

// AllInherited returns the protocol itself followed by everything it
// inherits from, transitively, in protocol order.
func (proto *ProtocolDecl) AllInherited() []*ProtocolDecl {
	result := []*ProtocolDecl{proto}
	for i := 0; i < len(result); i++ {
		for _, inherited := range result[i].Inherited {
			if !slices.Contains(result, inherited) {
				result = append(result, inherited)
			}
		}
	}

	slices.SortFunc(result[1:], CompareProtocols)
	return result
}

// Inherits reports whether proto is other or refines it.
func (proto *ProtocolDecl) Inherits(other *ProtocolDecl) bool {
	return slices.Contains(proto.AllInherited(), other)
}

// RequiresClass reports whether conforming types must be classes.
func (proto *ProtocolDecl) RequiresClass() bool {
	for _, p := range proto.AllInherited() {
		if p.ClassBound {
			return true
		}
	}

	return false
}

type AssociatedTypeDecl struct {
	Name     string
	Protocol *ProtocolDecl

	order int
	id    uint
}

func (assoc *AssociatedTypeDecl) String() string {
	return assoc.Protocol.Name + "." + assoc.Name
}

type NominalKind int

const (
	KindStruct NominalKind = iota
	KindEnum
	KindClass
)

func (kind NominalKind) String() string {
	switch kind {
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindClass:
		return "class"
	default:
		return "nominal"
	}
}

type NominalDecl struct {
	Kind   NominalKind
	Name   string
	Params []*GenericTypeParam

	// Superclass is written in terms of Params.
	Superclass Type

	Conformances []*NormalConformance

	// Requirements are the canonical requirements of the declaration's own
	// generic signature; inference copies them to use sites.
	Requirements []Requirement

	// Members are type aliases declared in the body.
	Members map[string]Type

	order int
	id    uint
}

func (decl *NominalDecl) String() string {
	return decl.Name
}

func (decl *NominalDecl) Order() int {
	return decl.order
}

// DeclaredType is the nominal applied to its own parameters.
func (decl *NominalDecl) DeclaredType(ctx *Context) *Nominal {
	args := make([]Type, len(decl.Params))
	for i, param := range decl.Params {
		args[i] = param
	}

	return ctx.Nominal(decl, args...)
}

// NormalConformance records that a nominal type conforms to a protocol, with
// its type witnesses (in terms of the nominal's parameters) and any
// conditional requirements.
type NormalConformance struct {
	Nominal       *NominalDecl
	Protocol      *ProtocolDecl
	TypeWitnesses map[string]Type
	Conditional   []Requirement
}

func (conformance *NormalConformance) String() string {
	return conformance.Nominal.Name + ": " + conformance.Protocol.Name
}

// AddConformance declares a conformance and the implied conformances to every
// inherited protocol. Witnesses that are not given are looked up among the
// nominal's members and generic parameters.
func (ctx *Context) AddConformance(decl *NominalDecl, proto *ProtocolDecl, conditional []Requirement) *NormalConformance {
	var result *NormalConformance
	for _, p := range proto.AllInherited() {
		if existing := decl.ownConformance(p); existing != nil {
			if p == proto {
				result = existing
			}

			continue
		}

		conformance := &NormalConformance{
			Nominal:       decl,
			Protocol:      p,
			TypeWitnesses: map[string]Type{},
			Conditional:   slices.Clone(conditional),
		}

		decl.Conformances = append(decl.Conformances, conformance)
		if p == proto {
			result = conformance
		}
	}

	return result
}

func (decl *NominalDecl) ownConformance(proto *ProtocolDecl) *NormalConformance {
	for _, conformance := range decl.Conformances {
		if conformance.Protocol == proto {
			return conformance
		}
	}

	return nil
}

// TypeWitness returns the witness for an associated type, looking at explicit
// witnesses first, then type aliases, then generic parameters of the same name.
func (conformance *NormalConformance) TypeWitness(name string) (Type, bool) {
	if witness, ok := conformance.TypeWitnesses[name]; ok {
		return witness, true
	}

	if member, ok := conformance.Nominal.Members[name]; ok {
		return member, true
	}

	for _, param := range conformance.Nominal.Params {
		if param.Name == name {
			return param, true
		}
	}

	return nil, false
}

// ConformanceLookup is a conformance found for a concrete type, together
// with the generic arguments its witnesses must be specialized with.
type ConformanceLookup struct {
	Conformance *NormalConformance
	Args        []Type
}

// Specialize substitutes the lookup's generic arguments into a type written
// in terms of the conforming nominal's parameters.
func (lookup *ConformanceLookup) Specialize(ctx *Context, ty Type) Type {
	params := lookup.Conformance.Nominal.Params
	return SubstParams(ctx, ty, func(param *GenericTypeParam) Type {
		if param.Depth == 0 && param.Index < len(params) && param.Index < len(lookup.Args) {
			return lookup.Args[param.Index]
		}

		return param
	})
}

func (lookup *ConformanceLookup) TypeWitness(ctx *Context, name string) Type {
	witness, ok := lookup.Conformance.TypeWitness(name)
	if !ok {
		return ctx.ErrorType()
	}

	return lookup.Specialize(ctx, witness)
}

func (lookup *ConformanceLookup) ConditionalRequirements(ctx *Context) []Requirement {
	requirements := make([]Requirement, 0, len(lookup.Conformance.Conditional))
	for _, req := range lookup.Conformance.Conditional {
		requirements = append(requirements, req.Transform(func(ty Type) Type {
			return lookup.Specialize(ctx, ty)
		}))
	}

	return requirements
}

// LookupConformance is the conformance collaborator: it finds how a concrete
// type conforms to a protocol, directly or through its superclass chain.
func (ctx *Context) LookupConformance(ty Type, proto *ProtocolDecl) *ConformanceLookup {
	nominal, ok := ty.(*Nominal)
	if !ok {
		return nil
	}

	for depth := 0; nominal != nil && depth < 64; depth++ {
		if conformance := nominal.Decl.ownConformance(proto); conformance != nil {
			return &ConformanceLookup{Conformance: conformance, Args: nominal.Args}
		}

		nominal = ctx.SuperclassOf(nominal)
	}

	return nil
}

// SuperclassOf returns the specialized superclass of a class type.
func (ctx *Context) SuperclassOf(ty *Nominal) *Nominal {
	if ty.Decl.Superclass == nil {
		return nil
	}

	lookup := &ConformanceLookup{
		Conformance: &NormalConformance{Nominal: ty.Decl},
		Args:        ty.Args,
	}

	superclass, _ := lookup.Specialize(ctx, ty.Decl.Superclass).(*Nominal)
	return superclass
}

// IsSubclass reports whether sub is super or inherits from it (with equal
// generic arguments).
func (ctx *Context) IsSubclass(sub *Nominal, super *Nominal) bool {
	for depth := 0; sub != nil && depth < 64; depth++ {
		if sub == super {
			return true
		}

		sub = ctx.SuperclassOf(sub)
	}

	return false
}

// ClassAncestor returns the ancestor of sub declared by decl, if any.
func (ctx *Context) ClassAncestor(sub *Nominal, decl *NominalDecl) *Nominal {
	for depth := 0; sub != nil && depth < 64; depth++ {
		if sub.Decl == decl {
			return sub
		}

		sub = ctx.SuperclassOf(sub)
	}

	return nil
}
