package feedback

import (
	"bytes"
	"fmt"

	"gensig/colors"
	"gensig/database"
	"gensig/generics"
	"gensig/types"
)

type Render struct {
	db  *database.Db
	buf bytes.Buffer
}

func NewRender(db *database.Db) *Render {
	return &Render{db: db}
}

func (render *Render) WriteString(s string) {
	fmt.Fprintf(&render.buf, "%s", s)
}

func (render *Render) WriteBreak() {
	fmt.Fprintf(&render.buf, "\n\n")
}

func (render *Render) WriteNumber(n int, singular string, plural string) {
	if n == 1 {
		fmt.Fprintf(&render.buf, "%d %s", n, singular)
	} else {
		fmt.Fprintf(&render.buf, "%d %s", n, plural)
	}
}

func (render *Render) WriteOrdinal(n int) {
	suffix := "th"
	switch n % 10 {
	case 1:
		suffix = "st"
	case 2:
		suffix = "nd"
	case 3:
		suffix = "rd"
	}

	fmt.Fprintf(&render.buf, "%d%s", n, suffix)
}

func (render *Render) WriteNode(node database.Node) {
	fmt.Fprintf(&render.buf, "%s", database.RenderNode(node))
}

func (render *Render) WriteDefinition(node database.Node) {
	fmt.Fprintf(&render.buf, "%s", database.RenderDefinition(node))
}

func (render *Render) WriteCode(code string) {
	fmt.Fprintf(&render.buf, "%s", colors.Code(code))
}

func (render *Render) WriteType(ty types.Type) {
	fmt.Fprintf(&render.buf, "%s", colors.Code(ty.String()))
}

func (render *Render) WriteRequirement(req types.Requirement) {
	fmt.Fprintf(&render.buf, "%s", colors.Code(req.String()))
}

func (render *Render) WriteConflict(req types.Requirement) {
	fmt.Fprintf(&render.buf, "%s", colors.Conflict(req.String()))
}

func (render *Render) WriteRedundant(req types.Requirement) {
	fmt.Fprintf(&render.buf, "%s", colors.Redundant(req.String()))
}

func (render *Render) WriteSignature(sig *generics.GenericSignature) {
	fmt.Fprintf(&render.buf, "%s", colors.Code(sig.String()))
}

func (render *Render) WriteList(items []func(), separator string, limit int) {
	if len(items) > 2 {
		for i, item := range items {
			if limit > 0 && i >= limit {
				remaining := len(items) - limit

				var trailing string
				if remaining == 1 {
					trailing = "other"
				} else {
					trailing = "others"
				}

				fmt.Fprintf(&render.buf, ", %s %d %s", separator, remaining, trailing)
				break
			}

			if i > 0 && i == len(items)-1 {
				fmt.Fprintf(&render.buf, ", %s ", separator)
			} else if i > 0 {
				fmt.Fprintf(&render.buf, ", ")
			}

			item()
		}
	} else if len(items) == 2 {
		items[0]()
		fmt.Fprintf(&render.buf, " %s ", separator)
		items[1]()
	} else {
		items[0]()
	}
}

func (render *Render) Finish() string {
	return render.buf.String()
}
