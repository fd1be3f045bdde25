package types

import (
	"fmt"
	"slices"
	"strings"
)

// Context owns the intern tables and declarations of one compilation. It is
// not safe for concurrent use; independent compilations use independent
// contexts.
type Context struct {
	nextID    uint
	interned  map[string]Type
	protocols map[string]*ProtocolDecl
	nominals  map[string]*NominalDecl
	declOrder int

	errorType *ErrorType
	anyObject *Existential
}

func NewContext() *Context {
	ctx := &Context{
		interned:  map[string]Type{},
		protocols: map[string]*ProtocolDecl{},
		nominals:  map[string]*NominalDecl{},
	}

	ctx.errorType = intern(ctx, "error", func(base typeBase) *ErrorType {
		return &ErrorType{typeBase: base}
	}, nil)

	ctx.anyObject = ctx.Existential(nil, true)

	return ctx
}

func intern[T Type](ctx *Context, key string, make func(base typeBase) T, canonical func() Type) T {
	if existing, ok := ctx.interned[key]; ok {
		return existing.(T)
	}

	ctx.nextID++
	base := typeBase{id: ctx.nextID}

	// Canonical components are interned first, so a sugared type always
	// points at an already interned canonical type
	if canonical != nil {
		base.canonical = canonical()
	}

	ty := make(base)
	if canonical == nil || base.canonical == nil {
		setCanonical(ty, ty)
	}

	ctx.interned[key] = ty
	return ty
}

func setCanonical(ty Type, canonical Type) {
	switch ty := ty.(type) {
	case *GenericTypeParam:
		ty.canonical = canonical
	case *DependentMember:
		ty.canonical = canonical
	case *Nominal:
		ty.canonical = canonical
	case *ProtocolType:
		ty.canonical = canonical
	case *Existential:
		ty.canonical = canonical
	case *Function:
		ty.canonical = canonical
	case *Tuple:
		ty.canonical = canonical
	case *Pack:
		ty.canonical = canonical
	case *Archetype:
		ty.canonical = canonical
	case *ErrorType:
		ty.canonical = canonical
	default:
		panic(fmt.Sprintf("invalid type: %T", ty))
	}
}

func typeKey(prefix string, types ...Type) string {
	var s strings.Builder
	s.WriteString(prefix)
	for _, ty := range types {
		fmt.Fprintf(&s, ":%d", ty.ID())
	}

	return s.String()
}

func canonicalTypes(types []Type) ([]Type, bool) {
	changed := false
	result := make([]Type, len(types))
	for i, ty := range types {
		result[i] = ty.Canonical()
		if result[i] != ty {
			changed = true
		}
	}

	return result, changed
}

func (ctx *Context) ErrorType() *ErrorType {
	return ctx.errorType
}

// AnyObject is the class-bound existential with no protocols.
func (ctx *Context) AnyObject() *Existential {
	return ctx.anyObject
}

func (ctx *Context) GenericParam(depth int, index int, pack bool, name string) *GenericTypeParam {
	key := fmt.Sprintf("param:%d:%d:%t:%s", depth, index, pack, name)

	var canonical func() Type
	if name != "" {
		canonical = func() Type {
			return ctx.GenericParam(depth, index, pack, "")
		}
	}

	return intern(ctx, key, func(base typeBase) *GenericTypeParam {
		return &GenericTypeParam{
			typeBase: base,
			Depth:    depth,
			Index:    index,
			IsPack:   pack,
			Name:     name,
		}
	}, canonical)
}

func (ctx *Context) Member(base Type, name string, assoc *AssociatedTypeDecl) *DependentMember {
	assocID := uint(0)
	if assoc != nil {
		assocID = assoc.id
	}

	key := fmt.Sprintf("member:%d:%s:%d", base.ID(), name, assocID)

	var canonical func() Type
	if base.Canonical() != base {
		canonical = func() Type {
			return ctx.Member(base.Canonical(), name, assoc)
		}
	}

	return intern(ctx, key, func(b typeBase) *DependentMember {
		return &DependentMember{
			typeBase: b,
			Base:     base,
			Name:     name,
			Assoc:    assoc,
		}
	}, canonical)
}

func (ctx *Context) Nominal(decl *NominalDecl, args ...Type) *Nominal {
	if len(args) != len(decl.Params) {
		panic(fmt.Sprintf("%s expects %d generic arguments, got %d", decl.Name, len(decl.Params), len(args)))
	}

	args = slices.Clone(args)
	key := typeKey(fmt.Sprintf("nominal:%d", decl.id), args...)

	var canonical func() Type
	if canonicalArgs, changed := canonicalTypes(args); changed {
		canonical = func() Type {
			return ctx.Nominal(decl, canonicalArgs...)
		}
	}

	return intern(ctx, key, func(base typeBase) *Nominal {
		return &Nominal{typeBase: base, Decl: decl, Args: args}
	}, canonical)
}

func (ctx *Context) Protocol(decl *ProtocolDecl) *ProtocolType {
	return intern(ctx, fmt.Sprintf("protocol:%d", decl.id), func(base typeBase) *ProtocolType {
		return &ProtocolType{typeBase: base, Decl: decl}
	}, nil)
}

func (ctx *Context) Existential(protocols []*ProtocolDecl, classBound bool) *Existential {
	protocols = slices.Clone(protocols)
	slices.SortFunc(protocols, CompareProtocols)
	protocols = slices.Compact(protocols)

	for _, proto := range protocols {
		if proto.ClassBound {
			classBound = true
		}
	}

	var key strings.Builder
	fmt.Fprintf(&key, "existential:%t", classBound)
	for _, proto := range protocols {
		fmt.Fprintf(&key, ":%d", proto.id)
	}

	return intern(ctx, key.String(), func(base typeBase) *Existential {
		return &Existential{typeBase: base, Protocols: protocols, ClassBound: classBound}
	}, nil)
}

func (ctx *Context) Function(params []Type, result Type) *Function {
	params = slices.Clone(params)
	key := typeKey("function", append(slices.Clone(params), result)...)

	var canonical func() Type
	canonicalParams, changed := canonicalTypes(params)
	if changed || result.Canonical() != result {
		canonical = func() Type {
			return ctx.Function(canonicalParams, result.Canonical())
		}
	}

	return intern(ctx, key, func(base typeBase) *Function {
		return &Function{typeBase: base, Params: params, Result: result}
	}, canonical)
}

func (ctx *Context) Tuple(elements ...Type) *Tuple {
	elements = slices.Clone(elements)

	var canonical func() Type
	if canonicalElements, changed := canonicalTypes(elements); changed {
		canonical = func() Type {
			return ctx.Tuple(canonicalElements...)
		}
	}

	return intern(ctx, typeKey("tuple", elements...), func(base typeBase) *Tuple {
		return &Tuple{typeBase: base, Elements: elements}
	}, canonical)
}

func (ctx *Context) Pack(elements ...Type) *Pack {
	elements = slices.Clone(elements)

	var canonical func() Type
	if canonicalElements, changed := canonicalTypes(elements); changed {
		canonical = func() Type {
			return ctx.Pack(canonicalElements...)
		}
	}

	return intern(ctx, typeKey("pack", elements...), func(base typeBase) *Pack {
		return &Pack{typeBase: base, Elements: elements}
	}, canonical)
}

// NewArchetype creates a fresh archetype; it is deliberately not interned.
func (ctx *Context) NewArchetype(kind ArchetypeKind, iface Type, env any) *Archetype {
	ctx.nextID++
	archetype := &Archetype{
		typeBase:  typeBase{id: ctx.nextID},
		Kind:      kind,
		Interface: iface,
		Env:       env,
	}

	archetype.canonical = archetype
	return archetype
}

func (ctx *Context) nextDeclOrder() (int, uint) {
	ctx.declOrder++
	ctx.nextID++
	return ctx.declOrder, ctx.nextID
}

// DeclareProtocol registers an empty protocol; the caller fills it in.
func (ctx *Context) DeclareProtocol(name string) *ProtocolDecl {
	if existing, ok := ctx.protocols[name]; ok {
		return existing
	}

	order, id := ctx.nextDeclOrder()
	proto := &ProtocolDecl{Name: name, order: order, id: id}
	ctx.protocols[name] = proto
	return proto
}

func (ctx *Context) LookupProtocol(name string) (*ProtocolDecl, bool) {
	proto, ok := ctx.protocols[name]
	return proto, ok
}

// DeclareNominal registers a nominal type declaration with its generic
// parameters (all at depth 0).
func (ctx *Context) DeclareNominal(kind NominalKind, name string, params ...string) *NominalDecl {
	if existing, ok := ctx.nominals[name]; ok {
		return existing
	}

	order, id := ctx.nextDeclOrder()
	decl := &NominalDecl{
		Kind:    kind,
		Name:    name,
		Members: map[string]Type{},
		order:   order,
		id:      id,
	}

	for i, param := range params {
		decl.Params = append(decl.Params, ctx.GenericParam(0, i, false, param))
	}

	ctx.nominals[name] = decl
	return decl
}

func (ctx *Context) LookupNominal(name string) (*NominalDecl, bool) {
	decl, ok := ctx.nominals[name]
	return decl, ok
}

// AddAssociatedType declares an associated type on a protocol.
func (ctx *Context) AddAssociatedType(proto *ProtocolDecl, name string) *AssociatedTypeDecl {
	if assoc := proto.OwnAssociatedType(name); assoc != nil {
		return assoc
	}

	order, id := ctx.nextDeclOrder()
	assoc := &AssociatedTypeDecl{Name: name, Protocol: proto, order: order, id: id}
	proto.AssociatedTypes = append(proto.AssociatedTypes, assoc)
	return assoc
}

// SelfParam is the `Self` parameter of protocol requirement signatures.
func (ctx *Context) SelfParam() *GenericTypeParam {
	return ctx.GenericParam(0, 0, false, "Self")
}
