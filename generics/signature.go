package generics

import (
	"fmt"
	"slices"
	"strings"

	"gensig/machine"
	"gensig/types"

	"github.com/zeebo/xxh3"
)

type slotKind int

const (
	slotUnknown slotKind = iota
	slotSelf
	slotOther
)

// canonicalSlot caches whether a signature is canonical, and if not, which
// signature is its canonical form.
type canonicalSlot struct {
	kind      slotKind
	signature *GenericSignature
}

// GenericSignature is an interned list of generic parameters and the
// requirements on them. Signatures are immutable apart from their caches.
type GenericSignature struct {
	ctx          *Context
	params       []*types.GenericTypeParam
	requirements []types.Requirement
	canonical    canonicalSlot
	environment  *GenericEnvironment
}

// Get interns a signature. The parameters must be sorted and unique; this is
// a caller contract and violating it panics.
func (ctx *Context) Get(params []*types.GenericTypeParam, requirements []types.Requirement) *GenericSignature {
	for i := 1; i < len(params); i++ {
		if types.CompareParams(params[i-1], params[i]) >= 0 {
			panic(fmt.Sprintf("generic parameters out of order: %v before %v", params[i-1], params[i]))
		}
	}

	key := signatureKey(params, requirements)
	if sig, ok := ctx.signatures[key]; ok {
		return sig
	}

	sig := &GenericSignature{
		ctx:          ctx,
		params:       slices.Clone(params),
		requirements: slices.Clone(requirements),
	}

	ctx.signatures[key] = sig
	return sig
}

// GetCanonical interns a signature already known to be canonical.
func (ctx *Context) GetCanonical(params []*types.GenericTypeParam, requirements []types.Requirement) *GenericSignature {
	sig := ctx.Get(params, requirements)
	if sig.canonical.kind == slotUnknown {
		sig.canonical = canonicalSlot{kind: slotSelf}
	}

	return sig
}

func (sig *GenericSignature) Context() *Context {
	return sig.ctx
}

func (sig *GenericSignature) Params() []*types.GenericTypeParam {
	return sig.params
}

// InnermostParams returns the parameters at the deepest depth.
func (sig *GenericSignature) InnermostParams() []*types.GenericTypeParam {
	if len(sig.params) == 0 {
		return nil
	}

	depth := sig.params[len(sig.params)-1].Depth
	start := len(sig.params)
	for start > 0 && sig.params[start-1].Depth == depth {
		start--
	}

	return sig.params[start:]
}

func (sig *GenericSignature) Requirements() []types.Requirement {
	return sig.requirements
}

func (sig *GenericSignature) IsEmpty() bool {
	return len(sig.params) == 0
}

// Canonical strips the sugar from every parameter and requirement. It is
// computed once and cached.
func (sig *GenericSignature) Canonical() *GenericSignature {
	switch sig.canonical.kind {
	case slotSelf:
		return sig
	case slotOther:
		return sig.canonical.signature
	}

	params := make([]*types.GenericTypeParam, len(sig.params))
	changed := false
	for i, param := range sig.params {
		params[i] = param.Canonical().(*types.GenericTypeParam)
		if params[i] != param {
			changed = true
		}
	}

	requirements := make([]types.Requirement, len(sig.requirements))
	for i, req := range sig.requirements {
		requirements[i] = req.Canonical()
		if !requirements[i].Equal(req) {
			changed = true
		}
	}

	if !changed {
		sig.canonical = canonicalSlot{kind: slotSelf}
		return sig
	}

	canonical := sig.ctx.GetCanonical(params, requirements)
	sig.canonical = canonicalSlot{kind: slotOther, signature: canonical}
	return canonical
}

func (sig *GenericSignature) IsCanonical() bool {
	return sig.Canonical() == sig
}

// Machine returns the requirement machine of the canonical signature.
func (sig *GenericSignature) Machine() *machine.Machine {
	return sig.ctx.machine(sig.Canonical())
}

func (sig *GenericSignature) RequiresProtocol(t types.Type, proto *types.ProtocolDecl) bool {
	return sig.Machine().RequiresProtocol(t, proto)
}

func (sig *GenericSignature) RequiredProtocols(t types.Type) []*types.ProtocolDecl {
	return sig.Machine().RequiredProtocols(t)
}

func (sig *GenericSignature) RequiresClass(t types.Type) bool {
	return sig.Machine().LayoutConstraint(t).IsClass()
}

func (sig *GenericSignature) SuperclassBound(t types.Type) *types.Nominal {
	return sig.Machine().SuperclassBound(t)
}

func (sig *GenericSignature) LayoutConstraint(t types.Type) types.LayoutConstraint {
	return sig.Machine().LayoutConstraint(t)
}

func (sig *GenericSignature) IsConcreteType(t types.Type) bool {
	return sig.Machine().ConcreteType(t) != nil
}

func (sig *GenericSignature) ConcreteType(t types.Type) types.Type {
	return sig.Machine().ConcreteType(t)
}

func (sig *GenericSignature) ReducedType(t types.Type) types.Type {
	return sig.Machine().Reduce(t)
}

func (sig *GenericSignature) IsReducedType(t types.Type) bool {
	return sig.Machine().IsReduced(t)
}

func (sig *GenericSignature) AreEqual(left types.Type, right types.Type) bool {
	return sig.Machine().AreEqual(left, right)
}

// ConformancePath explains an abstract conformance as a chain of requirements
// starting at one of the signature's own. It is nil when the conformance is
// concrete, including one inherited from a superclass bound.
func (sig *GenericSignature) ConformancePath(t types.Type, proto *types.ProtocolDecl) machine.ConformancePath {
	return sig.Machine().ConformancePath(t, proto)
}

func (sig *GenericSignature) NestedType(t types.Type, name string) *types.AssociatedTypeDecl {
	return sig.Machine().NestedType(t, name)
}

func (sig *GenericSignature) IsRequirementSatisfied(req types.Requirement) bool {
	return sig.Machine().IsSatisfied(req)
}

// GenericEnvironment returns the primary environment, creating it on first
// use.
func (sig *GenericSignature) GenericEnvironment() *GenericEnvironment {
	if sig.environment == nil {
		sig.environment = newEnvironment(PrimaryEnvironment, sig)
	}

	return sig.environment
}

// RequirementsNotSatisfiedBy returns the requirements of sig that do not
// follow from other.
func (sig *GenericSignature) RequirementsNotSatisfiedBy(other *GenericSignature) []types.Requirement {
	if sig.Canonical() == other.Canonical() {
		return nil
	}

	var result []types.Requirement
	for _, req := range sig.requirements {
		if !other.IsRequirementSatisfied(req) {
			result = append(result, req)
		}
	}

	return result
}

// TypeErased replaces the requirements on the given parameters with
// `param == AnyObject`.
func (sig *GenericSignature) TypeErased(params []*types.GenericTypeParam) *GenericSignature {
	erased := func(t types.Type) bool {
		root := types.RootParam(t)
		return root != nil && slices.ContainsFunc(params, func(param *types.GenericTypeParam) bool {
			return types.CompareParams(param, root) == 0
		})
	}

	changed := false
	var requirements []types.Requirement
	for _, req := range sig.requirements {
		if !erased(req.Subject) {
			requirements = append(requirements, req)
			continue
		}

		changed = true
		if _, ok := req.Subject.(*types.GenericTypeParam); ok {
			replacement := types.SameTypeRequirement(req.Subject, sig.ctx.Types.AnyObject())
			if !slices.ContainsFunc(requirements, replacement.Equal) {
				requirements = append(requirements, replacement)
			}
		}
	}

	if !changed {
		return sig
	}

	slices.SortStableFunc(requirements, types.CompareRequirements)
	return sig.ctx.Get(sig.params, requirements)
}

// ForwardingSubstitutionMap maps every parameter to itself.
func (sig *GenericSignature) ForwardingSubstitutionMap() *SubstitutionMap {
	replacements := make([]types.Type, len(sig.params))
	for i, param := range sig.params {
		replacements[i] = param
	}

	return sig.SubstitutionMap(replacements)
}

func (sig *GenericSignature) String() string {
	params := make([]string, len(sig.params))
	for i, param := range sig.params {
		params[i] = param.Declaration()
	}

	if len(sig.requirements) == 0 {
		return "<" + strings.Join(params, ", ") + ">"
	}

	requirements := make([]string, len(sig.requirements))
	for i, req := range sig.requirements {
		requirements[i] = req.String()
	}

	return "<" + strings.Join(params, ", ") + " where " + strings.Join(requirements, ", ") + ">"
}

// Profile is a structural hash of the canonical signature, stable across
// compilations.
func (sig *GenericSignature) Profile() uint64 {
	return xxh3.HashString(sig.Canonical().String())
}
