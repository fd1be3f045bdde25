package feedback

import (
	"gensig/database"
	"gensig/queries"
	gentypes "gensig/types"
)

func registerTypes() {
	register(Feedback[int]{
		Id:    "missing-types",
		Rank:  RankTypes,
		Query: queries.MissingTypes,
		Render: func(render *Render, node database.Node, count int) {
			render.WriteNode(node)
			render.WriteString(" is missing ")
			render.WriteNumber(count, "generic argument", "generic arguments")
			render.WriteString(".")
			render.WriteBreak()
			render.WriteString("Add the missing arguments between ")
			render.WriteCode("<")
			render.WriteString(" and ")
			render.WriteCode(">")
			render.WriteString(".")
		},
	})

	register(Feedback[struct{}]{
		Id:    "extra-type",
		Rank:  RankTypes,
		Query: queries.ExtraType,
		Render: func(render *Render, node database.Node, data struct{}) {
			render.WriteString("Extra generic argument ")
			render.WriteNode(node)
			render.WriteString(".")
			render.WriteBreak()
			render.WriteString("Remove this argument.")
		},
	})

	register(Feedback[gentypes.Type]{
		Id:    "invalid-inheritance",
		Rank:  RankTypes,
		Query: queries.InvalidInheritance,
		Render: func(render *Render, node database.Node, ty gentypes.Type) {
			render.WriteType(ty)
			render.WriteString(" can't be inherited here.")
			render.WriteBreak()
			render.WriteString("Only classes inherit from a single class, and protocols can't inherit from themselves.")
		},
	})

	register(Feedback[string]{
		Id:    "not-extendable",
		Rank:  RankNames,
		Query: queries.NotExtendable,
		Render: func(render *Render, node database.Node, name string) {
			render.WriteCode(name)
			render.WriteString(" can't be extended.")
			render.WriteBreak()
			render.WriteString("Only structs, enums and classes can be extended.")
		},
	})

	register(Feedback[struct{}]{
		Id:    "outside-protocol",
		Rank:  RankSyntax,
		Query: queries.OutsideProtocol,
		Render: func(render *Render, node database.Node, data struct{}) {
			render.WriteNode(node)
			render.WriteString(" is only allowed inside a protocol.")
		},
	})
}
