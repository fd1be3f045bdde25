package visit

import (
	"fmt"
	"slices"

	"gensig/database"
	"gensig/types"
)

// DeclaredConformance is a conformance as written on a type declaration or
// an extension.
type DeclaredConformance struct {
	Node     database.Node
	Nominal  *types.NominalDecl
	Protocol *types.ProtocolDecl
}

type OverlappingConformancesFact []database.Node

func (fact OverlappingConformancesFact) String() string {
	return fmt.Sprintf("has %d overlapping conformances", len(fact))
}

// DeclareConformance records a written conformance so overlapping ones can
// be reported once every declaration is visited.
func (visitor *Visitor) DeclareConformance(node database.Node, nominal *types.NominalDecl, proto *types.ProtocolDecl, conditional []types.Requirement) {
	visitor.Conformances = append(visitor.Conformances, DeclaredConformance{
		Node:     node,
		Nominal:  nominal,
		Protocol: proto,
	})

	visitor.Ctx.Types.AddConformance(nominal, proto, conditional)
}

// CheckForOverlappingConformances reports every conformance of a type to a
// protocol that is written more than once.
func CheckForOverlappingConformances(conformances []DeclaredConformance) {
	for i, left := range conformances {
		var overlapping []database.Node
		for j, right := range conformances {
			if i == j || left.Nominal != right.Nominal || left.Protocol != right.Protocol {
				continue
			}

			if !slices.Contains(overlapping, right.Node) {
				overlapping = append(overlapping, right.Node)
			}
		}

		if len(overlapping) > 0 {
			log.Debugf("%v: %v is declared %d times", left.Nominal, left.Protocol, len(overlapping)+1)
			database.SetFact(left.Node, OverlappingConformancesFact(overlapping))
		}
	}
}
