package visit

import (
	"fmt"
	"slices"

	"gensig/database"
	"gensig/generics"
	"gensig/machine"
	"gensig/types"
)

type DeclKind int

const (
	DeclFunction DeclKind = iota
	DeclSubscript
	DeclExtension
	DeclType
	DeclProtocol
	DeclSignature
)

func (kind DeclKind) String() string {
	switch kind {
	case DeclFunction:
		return "function"
	case DeclSubscript:
		return "subscript"
	case DeclExtension:
		return "extension"
	case DeclType:
		return "type"
	case DeclProtocol:
		return "protocol"
	case DeclSignature:
		return "signature"
	default:
		return "declaration"
	}
}

// ParamRepr is a generic parameter as written, with the constraints in its
// inheritance clause (`T: Sequence`).
type ParamRepr struct {
	Name      string
	Depth     int
	Index     int
	IsPack    bool
	Inherited []database.Node
	Node      database.Node
}

func (param ParamRepr) Param(ctx *types.Context) *types.GenericTypeParam {
	return ctx.GenericParam(param.Depth, param.Index, param.IsPack, param.Name)
}

type RequirementReprKind int

const (
	// `T: X`, where X is a protocol, a composition, a class or a layout
	ReprConstraint RequirementReprKind = iota
	ReprSameType
	ReprSameShape
)

type RequirementRepr struct {
	Kind       RequirementReprKind
	Subject    database.Node
	Constraint database.Node
	Node       database.Node
}

// RequirementNode is a node written in a `where` clause.
type RequirementNode interface {
	database.Node
	Requirement() RequirementRepr
}

// RequirementReprs collects the requirements written in a `where` clause.
func RequirementReprs(nodes []database.Node) []RequirementRepr {
	reprs := make([]RequirementRepr, 0, len(nodes))
	for _, node := range nodes {
		requirement, ok := node.(RequirementNode)
		if !ok {
			panic(fmt.Sprintf("node is not a requirement: %s", database.DisplayNode(node)))
		}

		reprs = append(reprs, requirement.Requirement())
	}

	return reprs
}

// LayoutRepr is implemented by type nodes that may name a layout constraint
// instead of a type.
type LayoutRepr interface {
	LayoutName() (string, bool)
}

type Request struct {
	Params []ParamRepr
	Where  []RequirementRepr
	Outer  *generics.GenericSignature

	// Sources are the types requirements are inferred from, chosen by the
	// declaration's inference strategy.
	Sources []database.Node

	// Added requirements are already resolved, like `Self: P` for the members
	// of a protocol.
	Added []types.Requirement

	Kind    DeclKind
	Resolve func(database.Node) types.Type
}

type InvalidRequirement struct {
	Node   database.Node
	Reason string
}

type Result struct {
	Signature *generics.GenericSignature
	Errors    generics.ErrorFlags
	Invalid   []InvalidRequirement

	// Inputs are the requirements the signature was built from, and Explicit
	// the ones among them written on the declaration itself.
	Inputs   []types.Requirement
	Explicit []types.Requirement

	// Conflicts explain why the requirements were invalid, if they were.
	Conflicts []machine.Conflict
}

func (result Result) Fact() SignatureFact {
	return SignatureFact{
		Signature: result.Signature,
		Errors:    result.Errors,
		Inputs:    result.Inputs,
		Explicit:  result.Explicit,
		Conflicts: result.Conflicts,
	}
}

// BuildSignature assembles the requirements of one declaration and builds
// its signature. Declarations without their own parameters or constraints
// share the outer signature.
func BuildSignature(ctx *generics.Context, request Request) Result {
	if len(request.Params) == 0 && len(request.Where) == 0 && len(request.Added) == 0 {
		if request.Outer != nil {
			return Result{Signature: request.Outer}
		}

		return Result{Signature: ctx.Empty()}
	}

	var result Result

	var params []*types.GenericTypeParam
	if request.Outer != nil {
		params = slices.Clone(request.Outer.Params())
	}

	for _, param := range request.Params {
		next := param.Param(ctx.Types)
		if len(params) > 0 && types.CompareParams(params[len(params)-1], next) >= 0 {
			// Canonical names can be written out of order
			reason := fmt.Sprintf("%v is out of order", next)
			if param.Node != nil {
				database.SetFact(param.Node, InvalidRequirementFact{Reason: reason})
			}

			result.Invalid = append(result.Invalid, InvalidRequirement{Node: param.Node, Reason: reason})
			result.Errors |= generics.HasInvalidRequirements
			continue
		}

		params = append(params, next)
	}

	if len(result.Invalid) > 0 {
		result.Signature = ctx.Get(params, nil)
		return result
	}

	var requirements []types.Requirement
	resolve := func(repr RequirementRepr, subject types.Type) {
		resolved, reason := ResolveRequirement(ctx.Types, repr, subject, request.Resolve)
		if reason != "" {
			if repr.Node != nil {
				database.SetFact(repr.Node, InvalidRequirementFact{Reason: reason})
			}

			result.Invalid = append(result.Invalid, InvalidRequirement{Node: repr.Node, Reason: reason})
			result.Errors |= generics.HasInvalidRequirements
			return
		}

		requirements = append(requirements, resolved...)
	}

	// Inheritance clauses constrain the parameter directly
	for _, param := range request.Params {
		for _, inherited := range param.Inherited {
			resolve(RequirementRepr{
				Kind:       ReprConstraint,
				Subject:    param.Node,
				Constraint: inherited,
				Node:       inherited,
			}, param.Param(ctx.Types))
		}
	}

	for _, repr := range request.Where {
		resolve(repr, request.Resolve(repr.Subject))
	}

	result.Explicit = slices.Clone(requirements)

	requirements = append(requirements, request.Added...)

	// Inferred requirements
	strategy := StrategyFor(request.Kind)
	for _, source := range request.Sources {
		requirements = append(requirements, strategy.Infer(ctx.Types, request.Resolve(source))...)
	}

	// Outer requirements come first
	if request.Outer != nil {
		requirements = append(slices.Clone(request.Outer.Requirements()), requirements...)
	}

	sig, flags := ctx.Build(params, requirements)
	result.Signature = sig
	result.Inputs = requirements
	result.Errors |= flags

	if flags.Has(generics.HasInvalidRequirements) {
		result.Conflicts = ctx.Conflicts(params, requirements)
	}

	log.Debugf("built %s signature %v", request.Kind, sig)
	if result.Errors != 0 {
		log.Warningf("%s signature %v has errors: %v", request.Kind, sig, result.Errors)
	}

	return result
}

// ResolveRequirement turns a written requirement into requirements on
// resolved types. A non-empty reason means the requirement is invalid.
func ResolveRequirement(ctx *types.Context, repr RequirementRepr, subject types.Type, resolve func(database.Node) types.Type) ([]types.Requirement, string) {
	if types.ContainsError(subject) {
		return nil, "unknown subject"
	}

	if repr.Kind == ReprSameType {
		constraint := resolve(repr.Constraint)
		if types.ContainsError(constraint) {
			return nil, "unknown type"
		}

		// `Int == T` is written the other way around
		if !types.ContainsTypeParameter(subject) {
			subject, constraint = constraint, subject
		}

		if !types.ContainsTypeParameter(subject) {
			return nil, fmt.Sprintf("%v == %v does not mention a generic parameter", constraint, subject)
		}

		return []types.Requirement{types.SameTypeRequirement(subject, constraint)}, ""
	}

	if !types.ContainsTypeParameter(subject) {
		return nil, fmt.Sprintf("%v does not mention a generic parameter", subject)
	}

	switch repr.Kind {
	case ReprSameShape:
		constraint := resolve(repr.Constraint)
		if !isPack(subject) || !isPack(constraint) {
			return nil, "shape requirements relate parameter packs"
		}

		return []types.Requirement{types.SameShapeRequirement(subject, constraint)}, ""
	case ReprConstraint:
		if named, ok := repr.Constraint.(LayoutRepr); ok {
			if name, ok := named.LayoutName(); ok {
				if layout, ok := types.ParseLayout(name); ok {
					return []types.Requirement{types.LayoutRequirement(subject, layout)}, ""
				}
			}
		}

		switch constraint := resolve(repr.Constraint).(type) {
		case *types.ProtocolType:
			return []types.Requirement{types.ConformanceRequirement(ctx, subject, constraint.Decl)}, ""
		case *types.Existential:
			var requirements []types.Requirement
			for _, proto := range constraint.Protocols {
				requirements = append(requirements, types.ConformanceRequirement(ctx, subject, proto))
			}

			if constraint.ClassBound {
				requirements = append(requirements, types.LayoutRequirement(subject, types.LayoutClass))
			}

			return requirements, ""
		case *types.Nominal:
			if !constraint.IsClass() {
				return nil, fmt.Sprintf("%v is not a protocol or class", constraint)
			}

			return []types.Requirement{types.SuperclassRequirement(subject, constraint)}, ""
		case *types.ErrorType:
			return nil, "unknown constraint"
		default:
			return nil, fmt.Sprintf("%v cannot be used as a constraint", constraint)
		}
	default:
		panic("unknown requirement kind")
	}
}

func isPack(t types.Type) bool {
	root := types.RootParam(t)
	return root != nil && root.IsPack
}
