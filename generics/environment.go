package generics

import (
	"fmt"
	"slices"

	"gensig/types"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type EnvironmentKind int

const (
	PrimaryEnvironment EnvironmentKind = iota
	OpaqueEnvironment
	OpenedExistentialEnvironment
	OpenedElementEnvironment
)

func (kind EnvironmentKind) String() string {
	switch kind {
	case PrimaryEnvironment:
		return "primary"
	case OpaqueEnvironment:
		return "opaque"
	case OpenedExistentialEnvironment:
		return "opened existential"
	case OpenedElementEnvironment:
		return "opened element"
	default:
		panic(fmt.Sprintf("unknown environment kind %d", int(kind)))
	}
}

func (kind EnvironmentKind) archetypeKind() types.ArchetypeKind {
	switch kind {
	case OpaqueEnvironment:
		return types.OpaqueArchetype
	case OpenedExistentialEnvironment:
		return types.OpenedArchetype
	case OpenedElementEnvironment:
		return types.ElementArchetype
	default:
		return types.PrimaryArchetype
	}
}

// GenericEnvironment maps between interface types, written with type
// parameters, and contextual types, written with archetypes, for one generic
// context. Parameters that belong to an enclosing context are mapped by the
// outer substitution map first.
type GenericEnvironment struct {
	Kind      EnvironmentKind
	Signature *GenericSignature

	// Opaque result declaration
	Decl string

	// Opened existentials and opened elements
	ID          string
	Existential *types.Existential
	Shape       *types.GenericTypeParam

	Outer *SubstitutionMap

	own        []*types.GenericTypeParam
	archetypes map[types.Type]*types.Archetype
}

func newEnvironment(kind EnvironmentKind, sig *GenericSignature) *GenericEnvironment {
	env := &GenericEnvironment{
		Kind:       kind,
		Signature:  sig,
		archetypes: map[types.Type]*types.Archetype{},
	}

	for _, param := range sig.params {
		env.own = append(env.own, param.Canonical().(*types.GenericTypeParam))
	}

	return env
}

// OpaqueEnvironment creates the environment of an opaque result type. The
// signature's innermost parameters are the opaque ones; outer maps the rest.
func (ctx *Context) OpaqueEnvironment(decl string, sig *GenericSignature, outer *SubstitutionMap) *GenericEnvironment {
	env := newEnvironment(OpaqueEnvironment, sig)
	env.Decl = decl
	env.Outer = outer
	env.own = canonicalParams(sig.InnermostParams())
	return env
}

// OpenedExistentialEnvironment opens an existential inside parent: the
// signature gains a `Self` parameter one level deeper than parent's, bound
// by the existential's protocols.
func (ctx *Context) OpenedExistentialEnvironment(existential *types.Existential, parent *GenericSignature) *GenericEnvironment {
	depth := 0
	if len(parent.params) > 0 {
		depth = parent.params[len(parent.params)-1].Depth + 1
	}

	self := ctx.Types.GenericParam(depth, 0, false, "Self")
	params := append(slices.Clone(parent.params), self)

	requirements := slices.Clone(parent.requirements)
	for _, proto := range existential.Protocols {
		requirements = append(requirements, types.ConformanceRequirement(ctx.Types, self, proto))
	}

	if existential.ClassBound {
		requirements = append(requirements, types.LayoutRequirement(self, types.LayoutClass))
	}

	sig, flags := ctx.Build(params, requirements)
	if flags != 0 {
		log.Warningf("opening %v: %v", existential, flags)
	}

	env := newEnvironment(OpenedExistentialEnvironment, sig)
	env.ID = gonanoid.Must()
	env.Existential = existential
	env.Outer = parent.GenericEnvironment().ContextSubstitutionMap()
	env.own = []*types.GenericTypeParam{self.Canonical().(*types.GenericTypeParam)}
	return env
}

// OpenedElementEnvironment opens the elements of every pack parameter with
// the same shape as shape. Other parameters are mapped by outer.
func (ctx *Context) OpenedElementEnvironment(sig *GenericSignature, shape *types.GenericTypeParam, outer *SubstitutionMap) *GenericEnvironment {
	if !shape.IsPack {
		panic(fmt.Sprintf("%v is not a parameter pack", shape))
	}

	env := newEnvironment(OpenedElementEnvironment, sig)
	env.ID = gonanoid.Must()
	env.Shape = shape
	env.Outer = outer
	env.own = []*types.GenericTypeParam{shape.Canonical().(*types.GenericTypeParam)}

	for _, group := range sig.Machine().ShapeClasses() {
		if slices.Contains(group, env.own[0]) {
			env.own = canonicalParams(group)
		}
	}

	return env
}

func canonicalParams(params []*types.GenericTypeParam) []*types.GenericTypeParam {
	result := make([]*types.GenericTypeParam, len(params))
	for i, param := range params {
		result[i] = param.Canonical().(*types.GenericTypeParam)
	}

	return result
}

func (env *GenericEnvironment) owns(param *types.GenericTypeParam) bool {
	return slices.Contains(env.own, param.Canonical().(*types.GenericTypeParam))
}

// MapTypeIntoContext replaces every type parameter with its archetype, or
// with its concrete type if the signature binds one.
func (env *GenericEnvironment) MapTypeIntoContext(ty types.Type) types.Type {
	return types.TraverseType(env.Signature.ctx.Types, ty, func(t types.Type) (types.Type, bool) {
		if !types.IsTypeParameter(t) {
			return t, false
		}

		return env.mapTerm(t), true
	})
}

func (env *GenericEnvironment) mapTerm(t types.Type) types.Type {
	ctx := env.Signature.ctx.Types

	root := types.RootParam(t)
	if !env.owns(root) {
		if env.Outer != nil {
			return env.Outer.Subst(t)
		}

		return t
	}

	switch t := t.(type) {
	case *types.GenericTypeParam:
		reduced := env.Signature.ReducedType(t)
		if !types.IsTypeParameter(reduced) {
			return env.MapTypeIntoContext(reduced)
		}

		if !env.owns(types.RootParam(reduced)) {
			return env.mapTerm(reduced)
		}

		return env.archetype(reduced)
	case *types.DependentMember:
		base := env.mapTerm(t.Base)

		assoc := t.Assoc
		if assoc == nil {
			assoc = env.Signature.NestedType(t.Base, t.Name)
		}

		if assoc == nil {
			return ctx.ErrorType()
		}

		if archetype, ok := base.(*types.Archetype); ok && archetype.Env == env {
			return env.NestedArchetype(archetype, assoc)
		}

		return LookupConformanceRef(ctx, base, assoc.Protocol).TypeWitness(ctx, t.Name)
	default:
		return t
	}
}

// NestedArchetype resolves a member type of one of this environment's
// archetypes.
func (env *GenericEnvironment) NestedArchetype(base *types.Archetype, assoc *types.AssociatedTypeDecl) types.Type {
	ctx := env.Signature.ctx.Types

	reduced := env.Signature.ReducedType(ctx.Member(base.Interface, assoc.Name, assoc))
	if !types.IsTypeParameter(reduced) {
		return env.MapTypeIntoContext(reduced)
	}

	if !env.owns(types.RootParam(reduced)) {
		return env.mapTerm(reduced)
	}

	return env.archetype(reduced)
}

// archetype returns the cached archetype of a reduced type parameter.
func (env *GenericEnvironment) archetype(reduced types.Type) *types.Archetype {
	reduced = reduced.Canonical()
	if archetype, ok := env.archetypes[reduced]; ok {
		return archetype
	}

	archetype := env.Signature.ctx.Types.NewArchetype(env.Kind.archetypeKind(), reduced, env)
	env.archetypes[reduced] = archetype
	return archetype
}

// MapTypeOutOfContext replaces this environment's archetypes with their
// interface types.
func (env *GenericEnvironment) MapTypeOutOfContext(ty types.Type) types.Type {
	return types.TraverseType(env.Signature.ctx.Types, ty, func(t types.Type) (types.Type, bool) {
		if archetype, ok := t.(*types.Archetype); ok && archetype.Env == env {
			return archetype.Interface, true
		}

		return t, false
	})
}

// LoweredType is a type as seen by code generation, either a value or the
// address of one.
type LoweredType struct {
	Type    types.Type
	Address bool
}

func (lowered LoweredType) String() string {
	if lowered.Address {
		return "*" + lowered.Type.String()
	}

	return lowered.Type.String()
}

func (env *GenericEnvironment) MapLoweredTypeIntoContext(lowered LoweredType) LoweredType {
	return LoweredType{
		Type:    env.MapTypeIntoContext(lowered.Type),
		Address: lowered.Address,
	}
}

// MapConformanceIntoContext maps the conforming type of ref into context. An
// abstract conformance becomes concrete when the type maps to a concrete
// type.
func (env *GenericEnvironment) MapConformanceIntoContext(ty types.Type, ref ConformanceRef) ConformanceRef {
	ctx := env.Signature.ctx.Types
	contextual := env.MapTypeIntoContext(ty)

	switch ref.Kind {
	case AbstractConformance:
		return LookupConformanceRef(ctx, contextual, ref.Protocol)
	case ConcreteConformance:
		args := make([]types.Type, len(ref.Concrete.Args))
		for i, arg := range ref.Concrete.Args {
			args[i] = env.MapTypeIntoContext(arg)
		}

		return ConformanceRef{
			Kind:     ConcreteConformance,
			Type:     contextual,
			Protocol: ref.Protocol,
			Concrete: &types.ConformanceLookup{Conformance: ref.Concrete.Conformance, Args: args},
		}
	default:
		return ConformanceRef{Kind: InvalidConformance, Type: contextual, Protocol: ref.Protocol}
	}
}

// ForwardingSubstitutionMap maps every parameter to itself.
func (env *GenericEnvironment) ForwardingSubstitutionMap() *SubstitutionMap {
	return env.Signature.ForwardingSubstitutionMap()
}

// ContextSubstitutionMap maps every parameter to its contextual type.
func (env *GenericEnvironment) ContextSubstitutionMap() *SubstitutionMap {
	replacements := make([]types.Type, len(env.Signature.params))
	for i, param := range env.Signature.params {
		replacements[i] = env.MapTypeIntoContext(param)
	}

	return env.Signature.SubstitutionMap(replacements)
}

func (env *GenericEnvironment) String() string {
	switch env.Kind {
	case OpaqueEnvironment:
		return fmt.Sprintf("opaque %s %v", env.Decl, env.Signature)
	case OpenedExistentialEnvironment:
		return fmt.Sprintf("opened %v (%s)", env.Existential, env.ID)
	case OpenedElementEnvironment:
		return fmt.Sprintf("element %v (%s)", env.Shape, env.ID)
	default:
		return env.Signature.String()
	}
}
