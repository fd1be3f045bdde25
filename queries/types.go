package queries

import (
	"gensig/database"
	"gensig/nodes/statements"
	"gensig/nodes/types"
	gentypes "gensig/types"
)

func MissingTypes(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(count int)) {
	if missing, ok := database.GetFact[types.MissingTypesFact](node); ok && missing > 0 {
		f(int(missing))
	}
}

func ExtraType(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(struct{})) {
	if _, ok := database.GetFact[types.ExtraTypeFact](node); ok {
		f(struct{}{})
	}
}

func InvalidInheritance(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(ty gentypes.Type)) {
	if fact, ok := database.GetFact[statements.InvalidInheritanceFact](node); ok {
		f(fact.Type)
	}
}

func NotExtendable(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(name string)) {
	if _, ok := database.GetFact[statements.NotExtendableFact](node); ok {
		if extension, ok := node.(*statements.ExtensionNode); ok {
			f(extension.Name)
		}
	}
}

func OutsideProtocol(db *database.Db, node database.Node, filter func(node database.Node) bool, f func(struct{})) {
	if _, ok := database.GetFact[statements.OutsideProtocolFact](node); ok {
		f(struct{}{})
	}
}
