package queries

import (
	"gensig/database"
	"gensig/visit"
)

func OverlappingConformances(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(conformances []database.Node)) {
	if overlapping, ok := database.GetFact[visit.OverlappingConformancesFact](node); ok {
		var filtered []database.Node
		for _, other := range overlapping {
			if filter(other) {
				filtered = append(filtered, other)
			}
		}

		f(filtered)
	}
}

func FailedCheck(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(fact visit.CheckFact)) {
	if fact, ok := database.GetFact[visit.CheckFact](node); ok && !fact.Ok() {
		f(fact)
	}
}
