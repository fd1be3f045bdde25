package generics

import (
	"slices"
	"strings"

	"gensig/machine"
	"gensig/types"
)

type ErrorFlags uint8

const (
	HasInvalidRequirements ErrorFlags = 1 << iota
	CompletionFailed
)

func (flags ErrorFlags) Has(flag ErrorFlags) bool {
	return flags&flag != 0
}

func (flags ErrorFlags) String() string {
	var names []string
	if flags.Has(HasInvalidRequirements) {
		names = append(names, "HasInvalidRequirements")
	}

	if flags.Has(CompletionFailed) {
		names = append(names, "CompletionFailed")
	}

	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, "|")
}

type candidate struct {
	req types.Requirement

	// Error placeholders record a contradiction and are never dropped
	pinned bool
}

// Build completes a set of raw requirements and returns the signature of
// their minimal canonical form. The signature keeps the parameters' names.
func (ctx *Context) Build(params []*types.GenericTypeParam, requirements []types.Requirement) (*GenericSignature, ErrorFlags) {
	var flags ErrorFlags

	m := machine.New(ctx.Types, params, requirements, ctx.Limits)
	if m.Failed() {
		log.Warningf("generic signature too complex after %d steps", m.Steps())
		return ctx.Get(params, nil), CompletionFailed
	}

	if m.Invalid() {
		flags |= HasInvalidRequirements
	}

	base := ctx.baseCandidates(m)

	var baseRequirements []types.Requirement
	for _, c := range base {
		baseRequirements = append(baseRequirements, c.req)
	}

	derived := machine.New(ctx.Types, params, baseRequirements, ctx.Limits)
	candidates := append(base, ctx.sameTypeCandidates(m, derived)...)

	slices.SortStableFunc(candidates, func(left, right candidate) int {
		return types.CompareRequirements(left.req, right.req)
	})

	candidates = slices.CompactFunc(candidates, func(left, right candidate) bool {
		return left.req.Equal(right.req)
	})

	minimal := ctx.dropRedundant(params, candidates)

	for _, req := range minimal {
		if req.Constraint != nil && types.ContainsError(req.Constraint) {
			flags |= HasInvalidRequirements
		}
	}

	sig := ctx.Get(params, sugar(ctx.Types, params, minimal))
	log.Debugf("built %v (%v)", sig, flags)
	return sig, flags
}

// Conflicts explains why a set of requirements is invalid: the requirements
// the machine found contradictory, and those naming member types that do not
// exist.
func (ctx *Context) Conflicts(params []*types.GenericTypeParam, requirements []types.Requirement) []machine.Conflict {
	m := machine.New(ctx.Types, params, requirements, ctx.Limits)

	conflicts := slices.Clone(m.Conflicts())
	for _, req := range m.Unresolved() {
		conflicts = append(conflicts, machine.Conflict{Requirement: req, Message: "it names a member type that does not exist"})
	}

	return conflicts
}

// baseCandidates lists every fact of every class, spelled with the class's
// anchor, except same-type requirements between type parameters.
func (ctx *Context) baseCandidates(m *machine.Machine) []candidate {
	var candidates []candidate
	for _, class := range m.Classes() {
		anchor := m.Anchor(class)

		if class.Concrete != nil {
			concrete := m.ConcreteType(anchor)
			_, isError := concrete.(*types.ErrorType)
			for _, term := range m.Terms(class) {
				candidates = append(candidates, candidate{
					req:    types.SameTypeRequirement(term, concrete),
					pinned: isError && class.Invalid,
				})
			}

			continue
		}

		if class.Superclass != nil {
			candidates = append(candidates, candidate{req: types.SuperclassRequirement(anchor, m.SuperclassBound(anchor))})
		}

		if class.Layout != types.LayoutNone {
			candidates = append(candidates, candidate{req: types.LayoutRequirement(anchor, class.Layout)})
		}

		for _, proto := range class.MinimalProtocols() {
			candidates = append(candidates, candidate{req: types.ConformanceRequirement(ctx.Types, anchor, proto)})
		}
	}

	for _, group := range m.ShapeClasses() {
		for i := 1; i < len(group); i++ {
			candidates = append(candidates, candidate{req: types.SameShapeRequirement(group[i], group[i-1])})
		}
	}

	return candidates
}

// sameTypeCandidates chains together the parts of each class that the base
// candidates alone do not make equal. Each chain links adjacent parts,
// larger == smaller.
func (ctx *Context) sameTypeCandidates(m *machine.Machine, derived *machine.Machine) []candidate {
	var candidates []candidate
	for _, class := range m.Classes() {
		if class.Concrete != nil {
			continue
		}

		terms := m.Terms(class)
		if len(terms) < 2 {
			continue
		}

		var anchors []types.Type
		for _, term := range terms {
			reduced := derived.Reduce(term)
			if _, ok := reduced.(*types.ErrorType); !ok && slices.ContainsFunc(anchors, func(anchor types.Type) bool {
				return derived.Reduce(anchor) == reduced
			}) {
				continue
			}

			anchors = append(anchors, term)
		}

		for i := 1; i < len(anchors); i++ {
			candidates = append(candidates, candidate{req: types.SameTypeRequirement(anchors[i], anchors[i-1])})
		}
	}

	return candidates
}

// dropRedundant removes, from last to first, every candidate that the
// remaining candidates already imply.
func (ctx *Context) dropRedundant(params []*types.GenericTypeParam, candidates []candidate) []types.Requirement {
	kept := slices.Clone(candidates)
	for i := len(kept) - 1; i >= 0; i-- {
		if kept[i].pinned {
			continue
		}

		rest := make([]types.Requirement, 0, len(kept)-1)
		for j, c := range kept {
			if j != i {
				rest = append(rest, c.req)
			}
		}

		trial := machine.New(ctx.Types, params, rest, ctx.Limits)
		if trial.Failed() || len(trial.Unresolved()) > 0 {
			continue
		}

		if trial.IsSatisfied(kept[i].req) {
			kept = slices.Delete(kept, i, i+1)
		}
	}

	result := make([]types.Requirement, len(kept))
	for i, c := range kept {
		result[i] = c.req
	}

	return result
}

// sugar respells canonical requirements with the named parameters.
func sugar(ctx *types.Context, params []*types.GenericTypeParam, requirements []types.Requirement) []types.Requirement {
	named := func(t types.Type) types.Type {
		return types.SubstParams(ctx, t, func(param *types.GenericTypeParam) types.Type {
			for _, p := range params {
				if types.CompareParams(p, param) == 0 {
					return p
				}
			}

			return param
		})
	}

	result := make([]types.Requirement, len(requirements))
	for i, req := range requirements {
		result[i] = req.Transform(named)
	}

	return result
}
