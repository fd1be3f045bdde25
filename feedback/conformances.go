package feedback

import (
	"strconv"

	"gensig/database"
	"gensig/generics"
	"gensig/queries"
	"gensig/visit"
)

func registerConformances() {
	type overlappingData struct {
		Node         database.Node
		Conformances []database.Node
	}

	register(Feedback[overlappingData]{
		Id:   "overlapping-conformances",
		Rank: RankConformances,
		Query: func(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(data overlappingData)) {
			queries.OverlappingConformances(db, node, filter, func(conformances []database.Node) {
				f(overlappingData{Node: node, Conformances: conformances})
			})
		},
		On: func(data overlappingData) []database.Node {
			return append([]database.Node{data.Node}, data.Conformances...)
		},
		Render: func(render *Render, node database.Node, data overlappingData) {
			render.WriteString("This conformance is also declared at ")

			items := make([]func(), 0, len(data.Conformances))
			for _, conformance := range data.Conformances {
				items = append(items, func() {
					render.WriteNode(conformance)
				})
			}

			if len(items) == 0 {
				render.WriteString("another file")
			} else {
				render.WriteList(items, "and", 3)
			}

			render.WriteString(".")
			render.WriteBreak()
			render.WriteString("Remove the extra conformances.")
		},
	})

	register(Feedback[visit.CheckFact]{
		Id:    "failed-check",
		Rank:  RankChecks,
		Query: queries.FailedCheck,
		Render: func(render *Render, node database.Node, fact visit.CheckFact) {
			if fact.Mismatch {
				render.WriteNode(node)
				render.WriteString(" expects ")
				render.WriteNumber(fact.Expected, "generic argument", "generic arguments")
				render.WriteString(", but got ")
				render.WriteString(strconv.Itoa(len(fact.Arguments)))
				render.WriteString(".")
				return
			}

			render.WriteNode(node)
			render.WriteString(" doesn't satisfy ")
			render.WriteSignature(fact.Signature)
			render.WriteString(".")
			render.WriteBreak()

			switch fact.Result.Kind {
			case generics.RequirementFailure:
				render.WriteRequirement(fact.Result.Substituted)
				render.WriteString(" doesn't hold, so ")
				render.WriteRequirement(fact.Result.Failed)
				render.WriteString(" fails.")
			case generics.SubstitutionFailure:
				render.WriteString("Substituting into ")
				render.WriteRequirement(fact.Result.Failed)
				render.WriteString(" produced an invalid type.")
			}
		},
	})
}
