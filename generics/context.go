package generics

import (
	"fmt"
	"strings"

	"gensig/machine"
	"gensig/types"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("gensig.generics")

// Context owns the signatures of one compilation. Like types.Context it is
// not safe for concurrent use.
type Context struct {
	Types  *types.Context
	Limits machine.Limits

	signatures map[string]*GenericSignature
	machines   map[*GenericSignature]*machine.Machine
}

func NewContext(typesContext *types.Context, limits machine.Limits) *Context {
	return &Context{
		Types:      typesContext,
		Limits:     limits,
		signatures: map[string]*GenericSignature{},
		machines:   map[*GenericSignature]*machine.Machine{},
	}
}

// Empty is the signature of non-generic code.
func (ctx *Context) Empty() *GenericSignature {
	return ctx.Get(nil, nil)
}

func signatureKey(params []*types.GenericTypeParam, requirements []types.Requirement) string {
	var key strings.Builder
	for _, param := range params {
		fmt.Fprintf(&key, "%d,", param.ID())
	}

	key.WriteString("|")
	for _, req := range requirements {
		fmt.Fprintf(&key, "%d:%d:", req.Kind, req.Subject.ID())
		if req.Constraint != nil {
			fmt.Fprintf(&key, "%d", req.Constraint.ID())
		}

		fmt.Fprintf(&key, ":%d;", req.Layout)
	}

	return key.String()
}

// machine returns the machine of a canonical signature, building it on
// first use.
func (ctx *Context) machine(sig *GenericSignature) *machine.Machine {
	if m, ok := ctx.machines[sig]; ok {
		return m
	}

	m := machine.New(ctx.Types, sig.params, sig.requirements, ctx.Limits)
	ctx.machines[sig] = m
	return m
}
