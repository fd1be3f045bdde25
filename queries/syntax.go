package queries

import (
	"gensig/database"
	"gensig/syntax"
)

func SyntaxError(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(error syntax.Error)) {
	if err, ok := syntax.GetSyntaxErrorFact(node); ok {
		f(syntax.Error(err))
	}
}
