package feedback

import (
	"gensig/database"
	"gensig/generics"
	"gensig/machine"
	"gensig/queries"
	"gensig/verify"
)

func registerSignatures() {
	register(Feedback[string]{
		Id:    "invalid-requirement",
		Rank:  RankRequirements,
		Query: queries.InvalidRequirement,
		Render: func(render *Render, node database.Node, reason string) {
			render.WriteNode(node)
			render.WriteString(" is not a valid requirement: ")
			render.WriteString(reason)
			render.WriteString(".")
		},
	})

	register(Feedback[*generics.GenericSignature]{
		Id:    "completion-failed",
		Rank:  RankRequirements,
		Query: queries.CompletionFailed,
		Render: func(render *Render, node database.Node, sig *generics.GenericSignature) {
			render.WriteString("The requirements of ")
			render.WriteNode(node)
			render.WriteString(" are too complex to check.")
			render.WriteBreak()
			render.WriteString("Try removing some of the same-type requirements.")
		},
	})

	register(Feedback[[]machine.Conflict]{
		Id:    "conflicting-requirements",
		Rank:  RankRequirements,
		Query: queries.ConflictingRequirements,
		Render: func(render *Render, node database.Node, conflicts []machine.Conflict) {
			render.WriteString("The requirements of ")
			render.WriteNode(node)
			render.WriteString(" can't all be satisfied.")

			for _, conflict := range conflicts {
				render.WriteBreak()
				render.WriteConflict(conflict.Requirement)
				render.WriteString(" fails because ")
				render.WriteString(conflict.Message)
				render.WriteString(".")
			}
		},
	})

	register(Feedback[[]verify.Diagnostic]{
		Id:    "redundant-requirements",
		Rank:  RankMinimality,
		Query: queries.RedundantRequirements,
		Render: func(render *Render, node database.Node, diagnostics []verify.Diagnostic) {
			items := make([]func(), 0, len(diagnostics))
			for _, diagnostic := range diagnostics {
				items = append(items, func() {
					render.WriteRedundant(diagnostic.Requirement)
				})
			}

			render.WriteList(items, "and", 3)
			if len(diagnostics) == 1 {
				render.WriteString(" is")
			} else {
				render.WriteString(" are")
			}
			render.WriteString(" implied by the other requirements of ")
			render.WriteNode(node)
			render.WriteString(".")
		},
	})

	register(Feedback[*verify.Fault]{
		Id:    "verification-fault",
		Rank:  RankInternal,
		Query: queries.VerificationFault,
		Render: func(render *Render, node database.Node, fault *verify.Fault) {
			render.WriteString("Internal error: the signature ")
			render.WriteSignature(fault.Signature)
			render.WriteString(" of ")
			render.WriteNode(node)
			render.WriteString(" is invalid at ")
			render.WriteRequirement(fault.Requirement)
			render.WriteString(": ")
			render.WriteString(fault.Message)
			render.WriteString(".")
		},
	})
}
