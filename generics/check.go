package generics

import (
	"fmt"

	"gensig/types"
)

type CheckKind int

const (
	CheckSuccess CheckKind = iota
	RequirementFailure
	SubstitutionFailure
)

func (kind CheckKind) String() string {
	switch kind {
	case CheckSuccess:
		return "success"
	case RequirementFailure:
		return "requirement failure"
	case SubstitutionFailure:
		return "substitution failure"
	default:
		panic(fmt.Sprintf("unknown check kind %d", int(kind)))
	}
}

// CheckResult names the first requirement the generic arguments violate,
// along with the same requirement after substitution.
type CheckResult struct {
	Kind        CheckKind
	Failed      types.Requirement
	Substituted types.Requirement
}

func (result CheckResult) String() string {
	if result.Kind == CheckSuccess {
		return result.Kind.String()
	}

	return fmt.Sprintf("%v: %v (%v)", result.Kind, result.Failed, result.Substituted)
}

// CheckGenericArguments checks generic arguments against every requirement
// of the signature, in canonical order, stopping at the first failure.
//
// Arguments that are still type parameters after substitution are checked
// against this signature, so they must be this signature's own parameters,
// as with a forwarding map. Map a caller's parameters into its environment
// first; archetypes are checked against the signature that owns them.
func (sig *GenericSignature) CheckGenericArguments(subs *SubstitutionMap) CheckResult {
	for _, req := range sig.Canonical().requirements {
		substituted := req.Transform(subs.Subst)
		if kind := checkRequirement(sig, substituted, 0); kind != CheckSuccess {
			return CheckResult{Kind: kind, Failed: req, Substituted: substituted}
		}
	}

	return CheckResult{Kind: CheckSuccess}
}

// Conditional conformances can recurse through each other's requirements
const maxConditionalDepth = 32

func checkRequirement(sig *GenericSignature, req types.Requirement, depth int) CheckKind {
	ctx := sig.ctx.Types
	if depth > maxConditionalDepth {
		return SubstitutionFailure
	}

	if types.ContainsError(req.Subject) || (req.Constraint != nil && types.ContainsError(req.Constraint)) {
		return SubstitutionFailure
	}

	// Unsubstituted parameters and archetypes are answered by the signature
	// that owns them
	if archetype, ok := req.Subject.(*types.Archetype); ok {
		return checkArchetype(archetype, req)
	}

	if types.IsTypeParameter(req.Subject) {
		if !sig.IsRequirementSatisfied(req) {
			return RequirementFailure
		}

		return CheckSuccess
	}

	switch req.Kind {
	case types.RequirementConformance:
		ref := LookupConformanceRef(ctx, req.Subject, req.Protocol())
		switch ref.Kind {
		case InvalidConformance:
			return RequirementFailure
		case ConcreteConformance:
			for _, conditional := range ref.Concrete.ConditionalRequirements(ctx) {
				if kind := checkRequirement(sig, conditional, depth+1); kind != CheckSuccess {
					return kind
				}
			}
		}

		return CheckSuccess
	case types.RequirementSuperclass:
		sub, ok := req.Subject.(*types.Nominal)
		super, superOk := req.Constraint.(*types.Nominal)
		if !ok || !superOk {
			return RequirementFailure
		}

		if !ctx.IsSubclass(sub, super) {
			return RequirementFailure
		}

		return CheckSuccess
	case types.RequirementLayout:
		if !types.SatisfiesLayout(req.Subject, req.Layout) {
			return RequirementFailure
		}

		return CheckSuccess
	case types.RequirementSameType:
		if req.Subject.Canonical() != req.Constraint.Canonical() {
			return RequirementFailure
		}

		return CheckSuccess
	case types.RequirementSameShape:
		if packLength(req.Subject) != packLength(req.Constraint) {
			return RequirementFailure
		}

		return CheckSuccess
	default:
		panic(fmt.Sprintf("unknown requirement kind %v", req.Kind))
	}
}

func checkArchetype(archetype *types.Archetype, req types.Requirement) CheckKind {
	env, ok := archetype.Env.(*GenericEnvironment)
	if !ok {
		return SubstitutionFailure
	}

	interfaceReq := req.Transform(env.MapTypeOutOfContext)
	if types.ContainsArchetype(interfaceReq.Subject) || (interfaceReq.Constraint != nil && types.ContainsArchetype(interfaceReq.Constraint)) {
		return SubstitutionFailure
	}

	if !env.Signature.IsRequirementSatisfied(interfaceReq) {
		return RequirementFailure
	}

	return CheckSuccess
}

func packLength(t types.Type) int {
	if pack, ok := t.(*types.Pack); ok {
		return len(pack.Elements)
	}

	return 1
}
