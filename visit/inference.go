package visit

import "gensig/types"

// InferenceStrategy decides which requirements a declaration picks up from
// the types it mentions, like `T: Hashable` from a parameter of type
// `Set<T>`.
type InferenceStrategy interface {
	Infer(ctx *types.Context, source types.Type) []types.Requirement
}

func StrategyFor(kind DeclKind) InferenceStrategy {
	switch kind {
	case DeclFunction, DeclSubscript:
		return nestedInference{}
	case DeclExtension:
		return extendedInference{}
	default:
		return noInference{}
	}
}

// Functions and subscripts infer from every nominal in their parameter and
// result types.
type nestedInference struct{}

func (nestedInference) Infer(ctx *types.Context, source types.Type) []types.Requirement {
	var requirements []types.Requirement
	types.WalkType(source, func(ty types.Type) bool {
		if nominal, ok := ty.(*types.Nominal); ok {
			requirements = append(requirements, applied(ctx, nominal)...)
		}

		return true
	})

	return requirements
}

// Extensions infer only from the extended type itself.
type extendedInference struct{}

func (extendedInference) Infer(ctx *types.Context, source types.Type) []types.Requirement {
	nominal, ok := source.(*types.Nominal)
	if !ok {
		return nil
	}

	return applied(ctx, nominal)
}

type noInference struct{}

func (noInference) Infer(*types.Context, types.Type) []types.Requirement {
	return nil
}

// applied returns the requirements of a nominal's declaration with its
// arguments substituted, keeping only those that still constrain a type
// parameter.
func applied(ctx *types.Context, nominal *types.Nominal) []types.Requirement {
	if len(nominal.Args) != len(nominal.Decl.Params) {
		return nil
	}

	var requirements []types.Requirement
	for _, req := range nominal.Decl.Requirements {
		substituted := req.Transform(func(ty types.Type) types.Type {
			return types.SubstParams(ctx, ty, func(param *types.GenericTypeParam) types.Type {
				if param.Depth == 0 && param.Index < len(nominal.Args) {
					return nominal.Args[param.Index]
				}

				return param
			})
		})

		if types.ContainsError(substituted.Subject) {
			continue
		}

		if !types.ContainsTypeParameter(substituted.Subject) {
			if substituted.Kind != types.RequirementSameType || !types.ContainsTypeParameter(substituted.Constraint) {
				continue
			}

			substituted.Subject, substituted.Constraint = substituted.Constraint, substituted.Subject
		}

		requirements = append(requirements, substituted)
	}

	return requirements
}
