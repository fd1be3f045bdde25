package queries

import (
	"gensig/database"
	"gensig/visit"
)

func Unresolved(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(name string)) {
	fact, ok := database.GetFact[visit.ResolvedFact](node)
	if !ok {
		return
	}

	if len(fact.Definitions) == 0 {
		f(fact.Name)
	}
}

func Ambiguous(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(name string)) {
	fact, ok := database.GetFact[visit.ResolvedFact](node)
	if !ok {
		return
	}

	if len(fact.Definitions) > 1 {
		f(fact.Name)
	}
}

type DocumentationData struct {
	Declaration string
	Comments    []string
}

func Documentation(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(name string, data DocumentationData)) {
	fact, ok := database.GetFact[visit.DefinedFact](node)
	if !ok {
		return
	}

	definition := fact.Definition.GetNode()

	f(fact.Definition.GetName(), DocumentationData{
		Declaration: database.NodeSource(database.GetSpanFact(definition).Source),
		Comments:    fact.Definition.GetComments(),
	})
}
