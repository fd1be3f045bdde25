package verify

import (
	"fmt"
	"slices"

	"gensig/generics"
	"gensig/types"
)

// Diagnostic reports a requirement that other requirements already imply.
type Diagnostic struct {
	Signature   *generics.GenericSignature
	Requirement types.Requirement
	Message     string
}

func (diagnostic Diagnostic) String() string {
	return fmt.Sprintf("%v: %s", diagnostic.Requirement, diagnostic.Message)
}

// ValidateMinimality rebuilds the signature without each of its
// requirements in turn and reports those the rest still imply.
func ValidateMinimality(sig *generics.GenericSignature) []Diagnostic {
	sig = sig.Canonical()
	ctx := sig.Context()
	requirements := sig.Requirements()

	var diagnostics []Diagnostic
	for i, req := range requirements {
		if req.Constraint != nil && types.ContainsError(req.Constraint) {
			continue
		}

		rest := slices.Concat(requirements[:i], requirements[i+1:])

		rebuilt, flags := ctx.Build(sig.Params(), rest)
		if flags.Has(generics.CompletionFailed) {
			log.Warningf("skipping %v while checking %v for minimality", req, sig)
			continue
		}

		if rebuilt.IsRequirementSatisfied(req) {
			diagnostics = append(diagnostics, Diagnostic{
				Signature:   sig,
				Requirement: req,
				Message:     "is implied by the other requirements",
			})
		}
	}

	return diagnostics
}

// RedundantRequirementsFact is attached to a declaration whose signature
// is not minimal.
type RedundantRequirementsFact []Diagnostic

func (fact RedundantRequirementsFact) String() string {
	return fmt.Sprintf("has %d redundant requirements", len(fact))
}

// Redundant reports the explicit requirements that the rest of the inputs
// already imply. A requirement found redundant is dropped before checking
// the next, so of two duplicates only the first is reported.
func Redundant(sig *generics.GenericSignature, inputs []types.Requirement, explicit []types.Requirement) []Diagnostic {
	ctx := sig.Context()
	pool := slices.Clone(inputs)

	var diagnostics []Diagnostic
	for _, req := range explicit {
		i := slices.IndexFunc(pool, req.Equal)
		if i < 0 {
			continue
		}

		rest := slices.Delete(slices.Clone(pool), i, i+1)

		rebuilt, flags := ctx.Build(sig.Params(), rest)
		if flags != 0 {
			continue
		}

		if rebuilt.IsRequirementSatisfied(req) {
			diagnostics = append(diagnostics, Diagnostic{
				Signature:   sig,
				Requirement: req,
				Message:     "is redundant",
			})

			pool = rest
		}
	}

	return diagnostics
}
