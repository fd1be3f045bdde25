package visit

import (
	"fmt"

	"gensig/generics"
	"gensig/machine"
	"gensig/types"
)

// SignatureFact is the generic signature built for a declaration.
type SignatureFact struct {
	Signature *generics.GenericSignature
	Errors    generics.ErrorFlags
	Inputs    []types.Requirement
	Explicit  []types.Requirement
	Conflicts []machine.Conflict
}

func (fact SignatureFact) String() string {
	if fact.Errors != 0 {
		return fmt.Sprintf("has signature %v (%v)", fact.Signature, fact.Errors)
	}

	return fmt.Sprintf("has signature %v", fact.Signature)
}

type InvalidRequirementFact struct {
	Reason string
}

func (fact InvalidRequirementFact) String() string {
	return "invalid requirement: " + fact.Reason
}

// CheckFact is the outcome of checking generic arguments against a
// declaration's signature.
type CheckFact struct {
	Signature *generics.GenericSignature
	Arguments []types.Type

	// Mismatch is set when the number of arguments is wrong.
	Mismatch bool
	Expected int

	Result generics.CheckResult
}

func (fact CheckFact) Ok() bool {
	return !fact.Mismatch && fact.Result.Kind == generics.CheckSuccess
}

func (fact CheckFact) String() string {
	if fact.Mismatch {
		return fmt.Sprintf("expected %d generic arguments, got %d", fact.Expected, len(fact.Arguments))
	}

	return "check " + fact.Result.String()
}
