package queries

import (
	"gensig/database"
	"gensig/generics"
	"gensig/machine"
	"gensig/verify"
	"gensig/visit"
)

func Signature(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(sig *generics.GenericSignature)) {
	if fact, ok := database.GetFact[visit.SignatureFact](node); ok {
		f(fact.Signature)
	}
}

func InvalidRequirement(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(reason string)) {
	if fact, ok := database.GetFact[visit.InvalidRequirementFact](node); ok {
		f(fact.Reason)
	}
}

func CompletionFailed(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(sig *generics.GenericSignature)) {
	if fact, ok := database.GetFact[visit.SignatureFact](node); ok && fact.Errors.Has(generics.CompletionFailed) {
		f(fact.Signature)
	}
}

func ConflictingRequirements(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(conflicts []machine.Conflict)) {
	if fact, ok := database.GetFact[visit.SignatureFact](node); ok && len(fact.Conflicts) > 0 {
		f(fact.Conflicts)
	}
}

func RedundantRequirements(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(diagnostics []verify.Diagnostic)) {
	if fact, ok := database.GetFact[verify.RedundantRequirementsFact](node); ok && len(fact) > 0 {
		f(fact)
	}
}

func VerificationFault(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(fault *verify.Fault)) {
	if fact, ok := database.GetFact[verify.FaultFact](node); ok {
		f(fact.Fault)
	}
}
